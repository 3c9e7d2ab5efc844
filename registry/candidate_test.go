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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateAdd(t *testing.T) {
	r := NewCandidateRegistry()

	id, err := r.Add("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	id, err = r.Add("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)

	assert.Equal(t, 2, r.Count())

	candidate, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "alice", candidate.Name)
	assert.Equal(t, uint64(0), candidate.Votes)
}

func TestCandidateAddDuplicate(t *testing.T) {
	r := NewCandidateRegistry()

	_, err := r.Add("alice")
	require.NoError(t, err)

	_, err = r.Add("alice")
	assert.ErrorIs(t, err, ErrDuplicateCandidate)
	assert.Equal(t, 1, r.Count())

	// Names are case-sensitive
	id, err := r.Add("Alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}

func TestCandidateGetInvalidID(t *testing.T) {
	r := NewCandidateRegistry()
	_, err := r.Add("alice")
	require.NoError(t, err)

	testCases := []uint64{0, 2, 99}
	for _, id := range testCases {
		_, err := r.Get(id)
		assert.ErrorIs(t, err, ErrInvalidCandidateID)
		_, err = r.IncrementVotes(id)
		assert.ErrorIs(t, err, ErrInvalidCandidateID)
	}
}

func TestCandidateIncrementVotes(t *testing.T) {
	r := NewCandidateRegistry()
	_, err := r.Add("alice")
	require.NoError(t, err)

	newCount, err := r.IncrementVotes(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), newCount)

	newCount, err = r.IncrementVotes(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), newCount)

	candidate, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), candidate.Votes)
}

func TestCandidateSnapshotIsCopy(t *testing.T) {
	r := NewCandidateRegistry()
	_, err := r.Add("alice")
	require.NoError(t, err)
	_, err = r.Add("bob")
	require.NoError(t, err)

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "alice", snapshot[0].Name)
	assert.Equal(t, "bob", snapshot[1].Name)

	// Mutating the snapshot must not touch the registry
	snapshot[0].Votes = 42
	candidate, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), candidate.Votes)
}

func TestCandidateRestore(t *testing.T) {
	r := NewCandidateRegistry()
	err := r.Restore([]Candidate{
		{ID: 1, Name: "alice", Votes: 3},
		{ID: 2, Name: "bob", Votes: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())

	candidate, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), candidate.Votes)

	// IDs must be dense and in entry order
	err = r.Restore([]Candidate{
		{ID: 2, Name: "bob", Votes: 1},
	})
	assert.Error(t, err)

	// Duplicate names are rejected
	err = r.Restore([]Candidate{
		{ID: 1, Name: "alice", Votes: 0},
		{ID: 2, Name: "alice", Votes: 0},
	})
	assert.ErrorIs(t, err, ErrDuplicateCandidate)
}
