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

// Package audit persists an append-only journal of election events.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
)

// Entry is the JSON envelope stored for each observed event.
type Entry struct {
	Seq       uint64 `json:"seq"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Journal appends one entry per observed election event to the blob store.
// It implements event.Subscriber and is registered on the event bus for
// each election event type.
type Journal struct {
	logger  *slog.Logger
	db      *database.Database
	nextSeq uint64
	mutex   sync.Mutex
	closed  bool
}

// NewJournal creates a Journal resuming after the highest persisted
// sequence number.
func NewJournal(db *database.Database, logger *slog.Logger) (*Journal, error) {
	j := &Journal{
		db:      db,
		nextSeq: 1,
	}
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		j.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		j.logger = logger
	}
	tip, ok, err := db.GetJournalTip()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal tip: %w", err)
	}
	if ok {
		j.nextSeq = tip + 1
	}
	return j, nil
}

// Deliver appends a journal entry for the event. Part of the
// event.Subscriber interface.
func (j *Journal) Deliver(evt event.Event) error {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	if j.closed {
		return nil
	}
	entry := Entry{
		Seq:       j.nextSeq,
		Type:      string(evt.Type),
		Timestamp: evt.Timestamp.Unix(),
		Data:      evt.Data,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode journal entry: %w", err)
	}
	if err := j.db.AppendJournalEntry(entry.Seq, payload, nil); err != nil {
		return err
	}
	j.nextSeq = entry.Seq + 1
	j.logger.Debug(
		"journal entry appended",
		"component", "audit",
		"seq", entry.Seq,
		"type", entry.Type,
	)
	return nil
}

// Close stops the journal. Entries delivered after Close are discarded.
// Part of the event.Subscriber interface.
func (j *Journal) Close() {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	j.closed = true
}

// Tip returns the highest sequence number appended so far, or 0 when the
// journal is empty.
func (j *Journal) Tip() uint64 {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.nextSeq - 1
}

// Entries returns up to limit decoded entries starting at the given
// sequence number.
func (j *Journal) Entries(startSeq uint64, limit int) ([]Entry, error) {
	payloads, err := j.db.GetJournalEntries(startSeq, limit)
	if err != nil {
		return nil, err
	}
	ret := make([]Entry, 0, len(payloads))
	for _, payload := range payloads {
		var entry Entry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return nil, fmt.Errorf("failed to decode journal entry: %w", err)
		}
		ret = append(ret, entry)
	}
	return ret, nil
}
