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

package ballot

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/registry"
)

// Snapshot is a portable copy of the full election state, used by the
// snapshot export and import commands.
type Snapshot struct {
	TakenAt          int64               `json:"taken_at"`
	TotalVotes       uint64              `json:"total_votes"`
	PeriodStart      uint64              `json:"period_start"`
	PeriodEnd        uint64              `json:"period_end"`
	HighestVoteCount uint64              `json:"highest_vote_count"`
	Leaders          []uint64            `json:"leaders,omitempty"`
	Candidates       []SnapshotCandidate `json:"candidates,omitempty"`
	Voters           []SnapshotVoter     `json:"voters,omitempty"`
}

type SnapshotCandidate struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Votes uint64 `json:"votes"`
}

type SnapshotVoter struct {
	Address          string `json:"address"`
	HasVoted         bool   `json:"has_voted"`
	VotedCandidateID uint64 `json:"voted_candidate_id,omitempty"`
	DelegateOf       string `json:"delegate_of,omitempty"`
}

// Snapshot captures the current election state.
func (e *Election) Snapshot() *Snapshot {
	e.RLock()
	defer e.RUnlock()
	start, end := e.window.Bounds()
	snap := &Snapshot{
		TakenAt:          e.config.nowFunc().Unix(),
		TotalVotes:       e.totalVotes,
		PeriodStart:      start,
		PeriodEnd:        end,
		HighestVoteCount: e.tracker.HighestVoteCount(),
		Leaders:          e.tracker.Leaders(),
	}
	for _, candidate := range e.candidates.Snapshot() {
		snap.Candidates = append(snap.Candidates, SnapshotCandidate{
			ID:    candidate.ID,
			Name:  candidate.Name,
			Votes: candidate.Votes,
		})
	}
	for _, voter := range e.voters.Snapshot() {
		snap.Voters = append(snap.Voters, SnapshotVoter{
			Address:          voter.Address,
			HasVoted:         voter.HasVoted,
			VotedCandidateID: voter.VotedCandidateID,
			DelegateOf:       voter.DelegateOf,
		})
	}
	return snap
}

// RestoreSnapshot loads a snapshot into an election with no existing
// state. Importing over live state is rejected.
func (e *Election) RestoreSnapshot(snap *Snapshot) error {
	e.Lock()
	defer e.Unlock()
	if e.candidates.Count() > 0 || e.voters.Count() > 0 ||
		e.totalVotes > 0 || e.window.IsSet() {
		return errors.New("election state is not empty")
	}
	// Validate the snapshot against scratch registries before anything is
	// persisted
	tmpCandidates := registry.NewCandidateRegistry()
	candidates := make([]registry.Candidate, 0, len(snap.Candidates))
	for _, candidate := range snap.Candidates {
		candidates = append(candidates, registry.Candidate{
			ID:    candidate.ID,
			Name:  candidate.Name,
			Votes: candidate.Votes,
		})
	}
	if err := tmpCandidates.Restore(candidates); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	tmpVoters := registry.NewVoterRegistry()
	voters := make([]registry.Voter, 0, len(snap.Voters))
	for _, voter := range snap.Voters {
		voters = append(voters, registry.Voter{
			Address:          voter.Address,
			Registered:       true,
			HasVoted:         voter.HasVoted,
			VotedCandidateID: voter.VotedCandidateID,
			DelegateOf:       voter.DelegateOf,
		})
	}
	if err := tmpVoters.Restore(voters); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	for _, candidateId := range snap.Leaders {
		if candidateId == 0 || candidateId > uint64(len(candidates)) {
			return fmt.Errorf(
				"invalid snapshot: leader references unknown candidate %d",
				candidateId,
			)
		}
	}
	if err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		for _, candidate := range snap.Candidates {
			if err := e.db.SetCandidate(models.Candidate{
				ID:    candidate.ID,
				Name:  candidate.Name,
				Votes: candidate.Votes,
			}, txn); err != nil {
				return err
			}
		}
		for _, voter := range snap.Voters {
			if err := e.db.SetVoter(models.Voter{
				Address:          voter.Address,
				HasVoted:         voter.HasVoted,
				VotedCandidateID: voter.VotedCandidateID,
				DelegateOf:       voter.DelegateOf,
			}, txn); err != nil {
				return err
			}
		}
		if err := e.db.SetTotalVotes(snap.TotalVotes, txn); err != nil {
			return err
		}
		if err := e.db.SetVotingPeriod(
			snap.PeriodStart,
			snap.PeriodEnd,
			txn,
		); err != nil {
			return err
		}
		return e.db.SetLeaders(snap.Leaders, snap.HighestVoteCount, txn)
	}); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	e.candidates = tmpCandidates
	e.voters = tmpVoters
	e.totalVotes = snap.TotalVotes
	e.window.Restore(snap.PeriodStart, snap.PeriodEnd)
	e.tracker.Restore(snap.HighestVoteCount, snap.Leaders)
	e.metrics.votersRegistered.Set(float64(e.voters.Count()))
	e.metrics.candidates.Set(float64(e.candidates.Count()))
	e.metrics.highestVoteCount.Set(float64(snap.HighestVoteCount))
	e.metrics.leadingCandidates.Set(float64(len(snap.Leaders)))
	e.logger.Info(
		"election state restored from snapshot",
		"component", "election",
		"candidates", e.candidates.Count(),
		"voters", e.voters.Count(),
	)
	return nil
}
