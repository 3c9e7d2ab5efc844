// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

var journalKeyPrefix = []byte("journal.")

// journalKey builds a zero-padded blob key so journal entries iterate in
// sequence order.
func journalKey(seq uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", journalKeyPrefix, seq)
}

// AppendJournalEntry stores a journal entry payload under the given
// sequence number.
func (d *Database) AppendJournalEntry(
	seq uint64,
	payload []byte,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.Blob().Set(txn.Blob(), journalKey(seq), payload); err != nil {
		return fmt.Errorf(
			"failed to append journal entry %d: %w",
			seq,
			err,
		)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetJournalEntry returns the payload stored under the given sequence
// number.
func (d *Database) GetJournalEntry(seq uint64) ([]byte, error) {
	txn := d.Blob().NewTransaction(false)
	defer txn.Discard()
	ret, err := d.Blob().Get(txn, journalKey(seq))
	if err != nil {
		return nil, fmt.Errorf(
			"failed to load journal entry %d: %w",
			seq,
			err,
		)
	}
	return ret, nil
}

// GetJournalEntries returns up to limit journal entry payloads starting at
// the given sequence number, in sequence order.
func (d *Database) GetJournalEntries(
	startSeq uint64,
	limit int,
) ([][]byte, error) {
	txn := d.Blob().NewTransaction(false)
	defer txn.Discard()
	iterOpts := badger.IteratorOptions{
		Prefix: journalKeyPrefix,
	}
	iter := txn.NewIterator(iterOpts)
	defer iter.Close()
	ret := make([][]byte, 0, limit)
	for iter.Seek(journalKey(startSeq)); iter.Valid(); iter.Next() {
		if len(ret) >= limit {
			break
		}
		val, err := iter.Item().ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to load journal entry %q: %w",
				iter.Item().Key(),
				err,
			)
		}
		ret = append(ret, val)
	}
	return ret, nil
}

// GetJournalTip returns the highest stored journal sequence number.
// Returns false when the journal is empty.
func (d *Database) GetJournalTip() (uint64, bool, error) {
	txn := d.Blob().NewTransaction(false)
	defer txn.Discard()
	iterOpts := badger.IteratorOptions{
		Prefix:  journalKeyPrefix,
		Reverse: true,
	}
	iter := txn.NewIterator(iterOpts)
	defer iter.Close()
	// Seek past the last possible journal key and step back into the prefix
	seekKey := append([]byte{}, journalKeyPrefix...)
	seekKey = append(seekKey, 0xff)
	iter.Seek(seekKey)
	if !iter.Valid() {
		return 0, false, nil
	}
	key := iter.Item().KeyCopy(nil)
	var seq uint64
	if _, err := fmt.Sscanf(
		string(key[len(journalKeyPrefix):]),
		"%d",
		&seq,
	); err != nil {
		return 0, false, fmt.Errorf(
			"malformed journal key %q: %w",
			key,
			err,
		)
	}
	return seq, true, nil
}
