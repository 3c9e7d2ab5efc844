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

package tally

import (
	"slices"
)

// Tracker maintains the current leading candidate set incrementally. Each
// vote credit reports the candidate's new count via Observe, so reading the
// leaders never requires scanning the full tally.
//
// Correctness depends on counts only ever growing by one per observation:
// a candidate overtakes the highest count by at most one, so it can never
// silently pass a stale leader without being observed at the same count
// first. Under that discipline a candidate appears in the leader set at
// most once.
//
// Tracker is not safe for concurrent use. Callers serialize access behind
// the election lock.
type Tracker struct {
	highest uint64
	leaders []uint64
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Observe feeds one candidate's new vote count:
// 1. Above the highest count seen: the candidate becomes the sole leader.
// 2. Equal to the highest count: the candidate joins the leader set.
// 3. Below the highest count: no change.
func (t *Tracker) Observe(candidateID, newCount uint64) {
	switch {
	case newCount > t.highest:
		t.highest = newCount
		t.leaders = []uint64{candidateID}
	case newCount == t.highest:
		t.leaders = append(t.leaders, candidateID)
	}
}

// Leaders returns a copy of the current leading candidate IDs in the order
// they entered the set.
func (t *Tracker) Leaders() []uint64 {
	return slices.Clone(t.leaders)
}

func (t *Tracker) HighestVoteCount() uint64 {
	return t.highest
}

// Restore replaces the tracker state, e.g. when loading persisted state at
// startup.
func (t *Tracker) Restore(highest uint64, leaders []uint64) {
	t.highest = highest
	t.leaders = slices.Clone(leaders)
}

// Reset returns the tracker to its initial empty state.
func (t *Tracker) Reset() {
	t.highest = 0
	t.leaders = nil
}
