// Copyright 2025 Blink Labs Software
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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blinklabs-io/ballot/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	stateKeyTotalVotes   = "total_votes"
	stateKeyPeriodStart  = "period_start"
	stateKeyPeriodEnd    = "period_end"
	stateKeyHighestCount = "highest_count"
	stateKeyLeaders      = "leaders"
)

// GetStateValue retrieves an election state value by key.
// Returns empty string if the key does not exist.
func (d *Database) GetStateValue(key string, txn *Txn) (string, error) {
	var tmpState models.ElectionState
	result := d.resolveMetadata(txn).
		Where("state_key = ?", key).
		First(&tmpState)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf(
			"failed to load state value %q: %w",
			key,
			result.Error,
		)
	}
	return tmpState.Value, nil
}

// SetStateValue stores or updates an election state value.
func (d *Database) SetStateValue(key, value string, txn *Txn) error {
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
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "state_key"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}
	result := txn.Metadata().Clauses(onConflict).Create(&models.ElectionState{
		Key:   key,
		Value: value,
	})
	if result.Error != nil {
		return fmt.Errorf(
			"failed to store state value %q: %w",
			key,
			result.Error,
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

func (d *Database) getStateUint64(key string, txn *Txn) (uint64, error) {
	val, err := d.GetStateValue(key, txn)
	if err != nil {
		return 0, err
	}
	if val == "" {
		return 0, nil
	}
	ret, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf(
			"malformed state value %q=%q: %w",
			key,
			val,
			err,
		)
	}
	return ret, nil
}

// GetTotalVotes returns the persisted count of direct votes.
func (d *Database) GetTotalVotes(txn *Txn) (uint64, error) {
	return d.getStateUint64(stateKeyTotalVotes, txn)
}

// SetTotalVotes stores the count of direct votes.
func (d *Database) SetTotalVotes(totalVotes uint64, txn *Txn) error {
	return d.SetStateValue(
		stateKeyTotalVotes,
		strconv.FormatUint(totalVotes, 10),
		txn,
	)
}

// GetVotingPeriod returns the persisted voting period bounds. Both are 0
// when the period was never set.
func (d *Database) GetVotingPeriod(txn *Txn) (uint64, uint64, error) {
	start, err := d.getStateUint64(stateKeyPeriodStart, txn)
	if err != nil {
		return 0, 0, err
	}
	end, err := d.getStateUint64(stateKeyPeriodEnd, txn)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// SetVotingPeriod stores the voting period bounds.
func (d *Database) SetVotingPeriod(start, end uint64, txn *Txn) error {
	if err := d.SetStateValue(
		stateKeyPeriodStart,
		strconv.FormatUint(start, 10),
		txn,
	); err != nil {
		return err
	}
	return d.SetStateValue(
		stateKeyPeriodEnd,
		strconv.FormatUint(end, 10),
		txn,
	)
}

// GetLeaders returns the persisted leading candidate IDs and the highest
// vote count they share.
func (d *Database) GetLeaders(txn *Txn) ([]uint64, uint64, error) {
	highest, err := d.getStateUint64(stateKeyHighestCount, txn)
	if err != nil {
		return nil, 0, err
	}
	val, err := d.GetStateValue(stateKeyLeaders, txn)
	if err != nil {
		return nil, 0, err
	}
	if val == "" {
		return nil, highest, nil
	}
	parts := strings.Split(val, ",")
	leaders := make([]uint64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf(
				"malformed state value %q=%q: %w",
				stateKeyLeaders,
				val,
				err,
			)
		}
		leaders = append(leaders, id)
	}
	return leaders, highest, nil
}

// SetLeaders stores the leading candidate IDs and their shared vote count.
func (d *Database) SetLeaders(
	leaders []uint64,
	highest uint64,
	txn *Txn,
) error {
	if err := d.SetStateValue(
		stateKeyHighestCount,
		strconv.FormatUint(highest, 10),
		txn,
	); err != nil {
		return err
	}
	parts := make([]string, 0, len(leaders))
	for _, id := range leaders {
		parts = append(parts, strconv.FormatUint(id, 10))
	}
	return d.SetStateValue(stateKeyLeaders, strings.Join(parts, ","), txn)
}
