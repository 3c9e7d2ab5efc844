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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/audit"
)

// maxAuditLimit caps the number of audit entries returned
// in a single response.
const maxAuditLimit = 1000

// writeJSON writes a JSON response.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response with the given
// status code.
func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeElectionError maps election errors to HTTP status
// codes and writes the error response.
func writeElectionError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ballot.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, ballot.ErrAlreadyRegistered),
		errors.Is(err, ballot.ErrAlreadyVoted),
		errors.Is(err, ballot.ErrDuplicateCandidate):
		status = http.StatusConflict
	case errors.Is(err, ballot.ErrNotRegistered),
		errors.Is(err, ballot.ErrInvalidCandidateID):
		status = http.StatusNotFound
	case errors.Is(err, ballot.ErrDelegateNotRegistered),
		errors.Is(err, ballot.ErrInvalidPeriod):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ballot.ErrVotingNotActive):
		status = http.StatusLocked
	}
	writeError(w, status, err.Error())
}

// decodeRequest decodes a JSON request body into dst.
func decodeRequest(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer body.Close()
	decoder := json.NewDecoder(body)
	return decoder.Decode(dst)
}

func candidateResponse(
	candidate ballot.Candidate,
) CandidateResponse {
	return CandidateResponse{
		Id:    candidate.ID,
		Name:  candidate.Name,
		Votes: candidate.Votes,
	}
}

func candidateResponses(
	candidates []ballot.Candidate,
) []CandidateResponse {
	out := make([]CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		out = append(out, candidateResponse(candidate))
	}
	return out
}

func voterResponse(voter ballot.Voter) VoterResponse {
	return VoterResponse{
		Address:          voter.Address,
		Registered:       voter.Registered,
		HasVoted:         voter.HasVoted,
		VotedCandidateId: voter.VotedCandidateID,
		DelegateOf:       voter.DelegateOf,
	}
}

func (s *Server) statusResponse() StatusResponse {
	start, end := s.election.VotingPeriod()
	return StatusResponse{
		VotingOpen:       s.election.IsVotingOpen(),
		PeriodStart:      start,
		PeriodEnd:        end,
		Candidates:       s.election.CandidateCount(),
		Voters:           s.election.VoterCount(),
		TotalVotes:       s.election.TotalVotes(),
		HighestVoteCount: s.election.HighestVoteCount(),
	}
}

// handleHealthcheck handles GET /healthcheck.
func (s *Server) handleHealthcheck(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthcheckResponse{
		Healthy: true,
	})
}

// handleRegisterVoter handles POST /v1/voters and registers
// a new voter.
func (s *Server) handleRegisterVoter(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req RegisterVoterRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid request body",
		)
		return
	}
	if req.Address == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"address is required",
		)
		return
	}
	if err := s.election.RegisterVoter(
		r.Context(),
		req.Address,
	); err != nil {
		writeElectionError(w, err)
		return
	}
	writeJSON(
		w,
		http.StatusCreated,
		voterResponse(s.election.Voter(req.Address)),
	)
}

// handleGetVoter handles GET /v1/voters/{address}.
func (s *Server) handleGetVoter(
	w http.ResponseWriter,
	r *http.Request,
) {
	voter := s.election.Voter(r.PathValue("address"))
	if !voter.Registered {
		writeError(
			w,
			http.StatusNotFound,
			"voter is not registered",
		)
		return
	}
	writeJSON(w, http.StatusOK, voterResponse(voter))
}

// handleAddCandidate handles POST /v1/candidates. The
// caller address is taken from the admin header.
func (s *Server) handleAddCandidate(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req AddCandidateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid request body",
		)
		return
	}
	if req.Name == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"name is required",
		)
		return
	}
	candidateId, err := s.election.AddCandidate(
		r.Context(),
		r.Header.Get(AdminHeader),
		req.Name,
	)
	if err != nil {
		writeElectionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CandidateResponse{
		Id:   candidateId,
		Name: req.Name,
	})
}

// handleListCandidates handles GET /v1/candidates.
func (s *Server) handleListCandidates(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(
		w,
		http.StatusOK,
		candidateResponses(s.election.Candidates()),
	)
}

// handleGetCandidate handles GET /v1/candidates/{id}.
func (s *Server) handleGetCandidate(
	w http.ResponseWriter,
	r *http.Request,
) {
	candidateId, err := strconv.ParseUint(
		r.PathValue("id"),
		10,
		64,
	)
	if err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid candidate id",
		)
		return
	}
	candidate, err := s.election.Candidate(candidateId)
	if err != nil {
		writeElectionError(w, err)
		return
	}
	writeJSON(
		w,
		http.StatusOK,
		candidateResponse(candidate),
	)
}

// handleVote handles POST /v1/votes and casts a direct
// vote.
func (s *Server) handleVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req VoteRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid request body",
		)
		return
	}
	if req.Address == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"address is required",
		)
		return
	}
	if err := s.election.Vote(
		r.Context(),
		req.Address,
		req.CandidateId,
	); err != nil {
		writeElectionError(w, err)
		return
	}
	candidate, err := s.election.Candidate(req.CandidateId)
	if err != nil {
		writeElectionError(w, err)
		return
	}
	writeJSON(
		w,
		http.StatusOK,
		candidateResponse(candidate),
	)
}

// handleDelegate handles POST /v1/delegations and hands the
// caller's ballot to another voter.
func (s *Server) handleDelegate(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req DelegateRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid request body",
		)
		return
	}
	if req.From == "" || req.To == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"from and to are required",
		)
		return
	}
	if err := s.election.Delegate(
		r.Context(),
		req.From,
		req.To,
	); err != nil {
		writeElectionError(w, err)
		return
	}
	writeJSON(
		w,
		http.StatusOK,
		voterResponse(s.election.Voter(req.From)),
	)
}

// handleSetPeriod handles PUT /v1/period. The caller
// address is taken from the admin header.
func (s *Server) handleSetPeriod(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req PeriodRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"invalid request body",
		)
		return
	}
	if err := s.election.SetVotingPeriod(
		r.Context(),
		r.Header.Get(AdminHeader),
		req.Start,
		req.End,
	); err != nil {
		writeElectionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusResponse())
}

// handleWinners handles GET /v1/winners.
func (s *Server) handleWinners(
	w http.ResponseWriter,
	r *http.Request,
) {
	winners, err := s.election.Winners(r.Context())
	if err != nil {
		writeElectionError(w, err)
		return
	}
	writeJSON(
		w,
		http.StatusOK,
		candidateResponses(winners),
	)
}

// handleStatus handles GET /v1/status.
func (s *Server) handleStatus(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, s.statusResponse())
}

// handleAudit handles GET /v1/audit and returns audit
// journal entries. The start and limit query parameters
// control paging.
func (s *Server) handleAudit(
	w http.ResponseWriter,
	r *http.Request,
) {
	startSeq := uint64(1)
	limit := 100
	query := r.URL.Query()
	if v := query.Get("start"); v != "" {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil || parsed == 0 {
			writeError(
				w,
				http.StatusBadRequest,
				"invalid start parameter",
			)
			return
		}
		startSeq = parsed
	}
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 ||
			parsed > maxAuditLimit {
			writeError(
				w,
				http.StatusBadRequest,
				"invalid limit parameter",
			)
			return
		}
		limit = parsed
	}
	entries, err := s.election.AuditEntries(
		startSeq,
		limit,
	)
	if err != nil {
		s.logger.Error(
			"failed to read audit journal",
			"error", err,
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"failed to read audit journal",
		)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
