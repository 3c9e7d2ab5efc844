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

package audit

import (
	"testing"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestJournal(t *testing.T) (*Journal, *database.Database) {
	t.Helper()
	db, err := database.New(nil, "")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close() //nolint:errcheck
	})
	journal, err := NewJournal(db, nil)
	require.NoError(t, err)
	return journal, db
}

func TestJournalAppend(t *testing.T) {
	journal, _ := setupTestJournal(t)

	assert.Equal(t, uint64(0), journal.Tip())

	require.NoError(t, journal.Deliver(event.NewEvent(
		event.VoterRegisteredEventType,
		event.VoterRegisteredEvent{Address: "addr1"},
	)))
	require.NoError(t, journal.Deliver(event.NewEvent(
		event.VoteCastEventType,
		event.VoteCastEvent{
			Voter:       "addr1",
			CandidateId: 1,
			NewCount:    1,
			TotalVotes:  1,
		},
	)))

	assert.Equal(t, uint64(2), journal.Tip())

	entries, err := journal.Entries(1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(t, string(event.VoterRegisteredEventType), entries[0].Type)
	assert.Equal(t, uint64(2), entries[1].Seq)
	assert.Equal(t, string(event.VoteCastEventType), entries[1].Type)

	// Payload fields survive the envelope round trip
	data, ok := entries[0].Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "addr1", data["Address"])
}

func TestJournalResume(t *testing.T) {
	journal, db := setupTestJournal(t)

	evt := event.NewEvent(
		event.VoterRegisteredEventType,
		event.VoterRegisteredEvent{Address: "addr1"},
	)
	require.NoError(t, journal.Deliver(evt))
	require.NoError(t, journal.Deliver(evt))
	journal.Close()

	// A new journal over the same store resumes after the stored tip
	resumed, err := NewJournal(db, nil)
	require.NoError(t, err)
	require.NoError(t, resumed.Deliver(evt))
	assert.Equal(t, uint64(3), resumed.Tip())
}

func TestJournalClosedDiscards(t *testing.T) {
	journal, _ := setupTestJournal(t)

	journal.Close()
	require.NoError(t, journal.Deliver(event.NewEvent(
		event.VoterRegisteredEventType,
		event.VoterRegisteredEvent{Address: "addr1"},
	)))
	assert.Equal(t, uint64(0), journal.Tip())
}

func TestJournalOnEventBus(t *testing.T) {
	journal, _ := setupTestJournal(t)

	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	bus.RegisterSubscriber(event.VoteCastEventType, journal)
	bus.Publish(
		event.VoteCastEventType,
		event.NewEvent(event.VoteCastEventType, event.VoteCastEvent{
			Voter:       "addr1",
			CandidateId: 1,
			NewCount:    1,
			TotalVotes:  1,
		}),
	)

	assert.Equal(t, uint64(1), journal.Tip())
	entries, err := journal.Entries(1, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(event.VoteCastEventType), entries[0].Type)
}
