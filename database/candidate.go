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

// resolveMetadata returns the metadata handle for the given transaction,
// falling back to the base DB handle for nil transactions.
func (d *Database) resolveMetadata(txn *Txn) *gorm.DB {
	if txn != nil {
		return txn.Metadata()
	}
	return d.Metadata().DB()
}

// SetCandidate stores or updates a candidate row keyed by its assigned ID.
func (d *Database) SetCandidate(
	candidate models.Candidate,
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
			{Name: "id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"votes",
		}),
	}
	result := txn.Metadata().Clauses(onConflict).Create(&candidate)
	if result.Error != nil {
		return fmt.Errorf(
			"failed to store candidate %d: %w",
			candidate.ID,
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

// GetCandidates returns all candidate rows in ID order.
func (d *Database) GetCandidates(txn *Txn) ([]models.Candidate, error) {
	var ret []models.Candidate
	result := d.resolveMetadata(txn).
		Order("id").
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf(
			"failed to load candidates: %w",
			result.Error,
		)
	}
	return ret, nil
}

// GetCandidate returns a single candidate row by ID.
// Returns nil if the candidate does not exist.
func (d *Database) GetCandidate(
	candidateId uint64,
	txn *Txn,
) (*models.Candidate, error) {
	var ret models.Candidate
	result := d.resolveMetadata(txn).
		Where("id = ?", candidateId).
		First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"failed to load candidate %d: %w",
			candidateId,
			result.Error,
		)
	}
	return &ret, nil
}
