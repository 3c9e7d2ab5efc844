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

// RegisterVoterRequest is the body for POST /v1/voters.
type RegisterVoterRequest struct {
	Address string `json:"address"`
}

// AddCandidateRequest is the body for POST /v1/candidates.
type AddCandidateRequest struct {
	Name string `json:"name"`
}

// VoteRequest is the body for POST /v1/votes.
type VoteRequest struct {
	Address     string `json:"address"`
	CandidateId uint64 `json:"candidate_id"`
}

// DelegateRequest is the body for POST /v1/delegations.
type DelegateRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PeriodRequest is the body for PUT /v1/period.
type PeriodRequest struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// CandidateResponse represents a candidate and its current
// vote count.
type CandidateResponse struct {
	Id    uint64 `json:"id"`
	Name  string `json:"name"`
	Votes uint64 `json:"votes"`
}

// VoterResponse represents a voter record.
type VoterResponse struct {
	Address          string `json:"address"`
	Registered       bool   `json:"registered"`
	HasVoted         bool   `json:"has_voted"`
	VotedCandidateId uint64 `json:"voted_candidate_id"`
	DelegateOf       string `json:"delegate_of,omitempty"`
}

// StatusResponse summarizes the election state, returned by
// GET /v1/status.
type StatusResponse struct {
	VotingOpen       bool   `json:"voting_open"`
	PeriodStart      uint64 `json:"period_start"`
	PeriodEnd        uint64 `json:"period_end"`
	Candidates       int    `json:"candidates"`
	Voters           int    `json:"voters"`
	TotalVotes       uint64 `json:"total_votes"`
	HighestVoteCount uint64 `json:"highest_vote_count"`
}

// HealthcheckResponse is returned by GET /healthcheck.
type HealthcheckResponse struct {
	Healthy bool `json:"healthy"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}
