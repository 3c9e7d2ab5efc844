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

	"github.com/blinklabs-io/ballot/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SetVoter stores or updates a voter row keyed by address. The
// auto-increment row ID is left untouched on update so registration order
// survives.
func (d *Database) SetVoter(
	voter models.Voter,
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
	onConflict := clause.OnConflict{
		Columns: []clause.Column{
			{Name: "address"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"has_voted",
			"voted_candidate_id",
			"delegate_of",
		}),
	}
	result := txn.Metadata().Clauses(onConflict).Create(&voter)
	if result.Error != nil {
		return fmt.Errorf(
			"failed to store voter %s: %w",
			voter.Address,
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

// GetVoters returns all voter rows in registration order.
func (d *Database) GetVoters(txn *Txn) ([]models.Voter, error) {
	var ret []models.Voter
	result := d.resolveMetadata(txn).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf(
			"failed to load voters: %w",
			result.Error,
		)
	}
	return ret, nil
}

// GetVoter returns a single voter row by address.
// Returns nil if the voter does not exist.
func (d *Database) GetVoter(
	address string,
	txn *Txn,
) (*models.Voter, error) {
	var ret models.Voter
	result := d.resolveMetadata(txn).
		Where("address = ?", address).
		First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"failed to load voter %s: %w",
			address,
			result.Error,
		)
	}
	return &ret, nil
}
