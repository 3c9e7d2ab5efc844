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

// Candidate represents a ballot entry. The primary key doubles as the
// public candidate ID, so rows must be written with their dense assigned
// IDs rather than relying on auto-increment.
type Candidate struct {
	ID    uint64 `gorm:"primarykey"`
	Name  string `gorm:"size:255;uniqueIndex;not null"`
	Votes uint64 `gorm:"not null"`
}

// TableName returns the table name
func (Candidate) TableName() string {
	return "candidate"
}
