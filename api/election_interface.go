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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

package api

import (
	"context"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/audit"
)

// Election is the interface that the REST API server uses
// to query and mutate the election. This decouples the HTTP
// server from the concrete ballot.Election struct and
// enables testing with mock implementations.
type Election interface {
	// RegisterVoter adds a voter while the voting period
	// is open.
	RegisterVoter(ctx context.Context, address string) error

	// AddCandidate puts a new candidate on the ballot and
	// returns its assigned id. Restricted to admins.
	AddCandidate(
		ctx context.Context,
		caller string,
		name string,
	) (uint64, error)

	// Vote casts a direct vote for the given candidate.
	Vote(
		ctx context.Context,
		address string,
		candidateId uint64,
	) error

	// Delegate hands the caller's ballot to another voter.
	Delegate(ctx context.Context, from string, to string) error

	// SetVotingPeriod sets the voting window. Restricted
	// to admins.
	SetVotingPeriod(
		ctx context.Context,
		caller string,
		start uint64,
		end uint64,
	) error

	// Winners returns the leading candidates once voting
	// is over.
	Winners(ctx context.Context) ([]ballot.Candidate, error)

	// Candidates returns all candidates in id order.
	Candidates() []ballot.Candidate

	// Candidate returns the candidate with the given id.
	Candidate(candidateId uint64) (ballot.Candidate, error)

	// Voter returns the record for the given address. The
	// zero value is returned for unknown addresses.
	Voter(address string) ballot.Voter

	// CandidateCount returns the number of candidates.
	CandidateCount() int

	// VoterCount returns the number of registered voters.
	VoterCount() int

	// TotalVotes returns the number of direct votes cast.
	TotalVotes() uint64

	// HighestVoteCount returns the current leading vote
	// count.
	HighestVoteCount() uint64

	// VotingPeriod returns the configured voting window.
	VotingPeriod() (uint64, uint64)

	// IsVotingOpen reports whether voting is currently
	// open.
	IsVotingOpen() bool

	// AuditEntries returns audit journal entries starting
	// at the given sequence number.
	AuditEntries(startSeq uint64, limit int) ([]audit.Entry, error)
}
