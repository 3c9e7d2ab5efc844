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

package event

const (
	VoterRegisteredEventType EventType = "election.voter_registered"
	CandidateAddedEventType  EventType = "election.candidate_added"
	VoteCastEventType        EventType = "election.vote_cast"
	VoteDelegatedEventType   EventType = "election.vote_delegated"
	PeriodSetEventType       EventType = "election.period_set"
	WinnersSelectedEventType EventType = "election.winners_selected"
)

type VoterRegisteredEvent struct {
	Address string
}

type CandidateAddedEvent struct {
	Name        string
	CandidateId uint64
}

// VoteCastEvent is emitted after a direct vote has been credited.
type VoteCastEvent struct {
	Voter       string
	CandidateId uint64
	// NewCount is the candidate's vote count after this vote
	NewCount uint64
	// TotalVotes is the election-wide direct vote count after this vote
	TotalVotes uint64
}

// VoteDelegatedEvent is emitted after a delegation, in both of its
// outcomes. When the target had already cast a direct vote the delegation
// resolves immediately and CandidateId carries the credited candidate.
// Otherwise the delegation is recorded as pending on the target's record
// and CandidateId is 0; a pending delegation never resolves later.
type VoteDelegatedEvent struct {
	From        string
	To          string
	Resolved    bool
	CandidateId uint64
	NewCount    uint64
}

type PeriodSetEvent struct {
	Start uint64
	End   uint64
}

// WinnersSelectedEvent is emitted when the winner set is computed after
// the voting period closed.
type WinnersSelectedEvent struct {
	CandidateIds []uint64
	HighestCount uint64
}
