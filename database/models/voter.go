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

package models

// Voter represents a registered voter record. The auto-increment primary
// key preserves registration order when loading all voters.
// VotedCandidateID is 0 unless the voter cast a direct vote; DelegateOf
// holds the address that delegated to this voter while it had not yet
// voted.
type Voter struct {
	ID               uint   `gorm:"primarykey"`
	Address          string `gorm:"size:255;uniqueIndex;not null"`
	HasVoted         bool   `gorm:"not null"`
	VotedCandidateID uint64 `gorm:"not null"`
	DelegateOf       string `gorm:"size:255"`
}

// TableName returns the table name
func (Voter) TableName() string {
	return "voter"
}
