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

func TestVoterRegister(t *testing.T) {
	r := NewVoterRegistry()

	require.NoError(t, r.Register("addr1"))
	assert.True(t, r.IsRegistered("addr1"))
	assert.False(t, r.HasVoted("addr1"))
	assert.Equal(t, 1, r.Count())

	err := r.Register("addr1")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, 1, r.Count())
}

func TestVoterUnknownAddressIsZeroValued(t *testing.T) {
	r := NewVoterRegistry()

	voter := r.Get("never-seen")
	assert.Equal(t, "never-seen", voter.Address)
	assert.False(t, voter.Registered)
	assert.False(t, voter.HasVoted)
	assert.Equal(t, uint64(0), voter.VotedCandidateID)
	assert.Empty(t, voter.DelegateOf)
	assert.False(t, r.IsRegistered("never-seen"))
	assert.False(t, r.HasVoted("never-seen"))
}

func TestVoterMarkVoted(t *testing.T) {
	r := NewVoterRegistry()
	require.NoError(t, r.Register("addr1"))

	require.NoError(t, r.MarkVoted("addr1", 3))
	assert.True(t, r.HasVoted("addr1"))
	assert.Equal(t, uint64(3), r.Get("addr1").VotedCandidateID)

	// Voting is a one-way transition
	err := r.MarkVoted("addr1", 1)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
	assert.Equal(t, uint64(3), r.Get("addr1").VotedCandidateID)

	err = r.MarkVoted("unknown", 1)
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestVoterDelegateOf(t *testing.T) {
	r := NewVoterRegistry()
	require.NoError(t, r.Register("target"))

	require.NoError(t, r.SetDelegateOf("target", "from1"))
	assert.Equal(t, "from1", r.Get("target").DelegateOf)

	// Last writer wins
	require.NoError(t, r.SetDelegateOf("target", "from2"))
	assert.Equal(t, "from2", r.Get("target").DelegateOf)

	err := r.SetDelegateOf("unknown", "from1")
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestVoterSnapshotOrder(t *testing.T) {
	r := NewVoterRegistry()
	require.NoError(t, r.Register("c"))
	require.NoError(t, r.Register("a"))
	require.NoError(t, r.Register("b"))

	snapshot := r.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "c", snapshot[0].Address)
	assert.Equal(t, "a", snapshot[1].Address)
	assert.Equal(t, "b", snapshot[2].Address)

	// Mutating the snapshot must not touch the registry
	snapshot[0].HasVoted = true
	assert.False(t, r.HasVoted("c"))
}

func TestVoterRestore(t *testing.T) {
	r := NewVoterRegistry()
	err := r.Restore([]Voter{
		{Address: "addr1", Registered: true, HasVoted: true, VotedCandidateID: 2},
		{Address: "addr2", Registered: true, DelegateOf: "addr1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Count())
	assert.True(t, r.HasVoted("addr1"))
	assert.Equal(t, "addr1", r.Get("addr2").DelegateOf)

	err = r.Restore([]Voter{
		{Address: "addr1", Registered: true},
		{Address: "addr1", Registered: true},
	})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}
