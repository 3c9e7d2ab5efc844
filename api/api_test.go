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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// mockElection implements Election for testing.
type mockElection struct {
	registerErr        error
	addCandidateId     uint64
	addCandidateErr    error
	addCandidateCaller string
	voteErr            error
	delegateErr        error
	setPeriodErr       error
	setPeriodCaller    string
	winners            []ballot.Candidate
	winnersErr         error
	candidates         []ballot.Candidate
	candidate          ballot.Candidate
	candidateErr       error
	voter              ballot.Voter
	candidateCount     int
	voterCount         int
	totalVotes         uint64
	highestCount       uint64
	periodStart        uint64
	periodEnd          uint64
	votingOpen         bool
	auditEntries       []audit.Entry
	auditErr           error
	auditStartSeq      uint64
	auditLimit         int
}

func (m *mockElection) RegisterVoter(
	_ context.Context, _ string,
) error {
	return m.registerErr
}

func (m *mockElection) AddCandidate(
	_ context.Context, caller string, _ string,
) (uint64, error) {
	m.addCandidateCaller = caller
	return m.addCandidateId, m.addCandidateErr
}

func (m *mockElection) Vote(
	_ context.Context, _ string, _ uint64,
) error {
	return m.voteErr
}

func (m *mockElection) Delegate(
	_ context.Context, _ string, _ string,
) error {
	return m.delegateErr
}

func (m *mockElection) SetVotingPeriod(
	_ context.Context, caller string, _ uint64, _ uint64,
) error {
	m.setPeriodCaller = caller
	return m.setPeriodErr
}

func (m *mockElection) Winners(
	_ context.Context,
) ([]ballot.Candidate, error) {
	return m.winners, m.winnersErr
}

func (m *mockElection) Candidates() []ballot.Candidate {
	return m.candidates
}

func (m *mockElection) Candidate(
	_ uint64,
) (ballot.Candidate, error) {
	return m.candidate, m.candidateErr
}

func (m *mockElection) Voter(_ string) ballot.Voter {
	return m.voter
}

func (m *mockElection) CandidateCount() int {
	return m.candidateCount
}

func (m *mockElection) VoterCount() int {
	return m.voterCount
}

func (m *mockElection) TotalVotes() uint64 {
	return m.totalVotes
}

func (m *mockElection) HighestVoteCount() uint64 {
	return m.highestCount
}

func (m *mockElection) VotingPeriod() (uint64, uint64) {
	return m.periodStart, m.periodEnd
}

func (m *mockElection) IsVotingOpen() bool {
	return m.votingOpen
}

func (m *mockElection) AuditEntries(
	startSeq uint64, limit int,
) ([]audit.Entry, error) {
	m.auditStartSeq = startSeq
	m.auditLimit = limit
	return m.auditEntries, m.auditErr
}

func newTestServer(
	t *testing.T,
	election Election,
) *Server {
	t.Helper()
	srv, err := NewServer(ServerConfig{
		Election:      election,
		ListenAddress: ":0",
	})
	require.NoError(t, err)
	return srv
}

func TestNewServerMissingElection(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Election is required")
}

func TestServerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := newTestServer(t, &mockElection{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := srv.Start(ctx)
	require.NoError(t, err)

	srv.mu.Lock()
	assert.NotNil(t, srv.httpServer)
	srv.mu.Unlock()

	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	err = srv.Stop(stopCtx)
	require.NoError(t, err)

	srv.mu.Lock()
	assert.Nil(t, srv.httpServer)
	srv.mu.Unlock()
}

func TestStartAlreadyStarted(t *testing.T) {
	srv := newTestServer(t, &mockElection{})

	ctx := t.Context()
	err := srv.Start(ctx)
	require.NoError(t, err)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer stopCancel()
		_ = srv.Stop(stopCtx)
	}()

	// Starting again should error
	err = srv.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestHandleHealthcheck(t *testing.T) {
	srv := newTestServer(t, &mockElection{})

	req := httptest.NewRequest(
		http.MethodGet, "/healthcheck", nil,
	)
	w := httptest.NewRecorder()
	srv.handleHealthcheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(
		t,
		"application/json",
		w.Header().Get("Content-Type"),
	)
	var resp HealthcheckResponse
	require.NoError(
		t,
		json.Unmarshal(w.Body.Bytes(), &resp),
	)
	assert.True(t, resp.Healthy)
}

func TestHandleRegisterVoter(t *testing.T) {
	mock := &mockElection{
		voter: ballot.Voter{
			Address:    "addr1",
			Registered: true,
		},
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/v1/voters",
		strings.NewReader(`{"address":"addr1"}`),
	)
	w := httptest.NewRecorder()
	srv.handleRegisterVoter(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp VoterResponse
	require.NoError(
		t,
		json.Unmarshal(w.Body.Bytes(), &resp),
	)
	assert.Equal(t, "addr1", resp.Address)
	assert.True(t, resp.Registered)
}

func TestHandleRegisterVoterBadRequest(t *testing.T) {
	srv := newTestServer(t, &mockElection{})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed body", body: "{"},
		{name: "missing address", body: "{}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(
				http.MethodPost,
				"/v1/voters",
				strings.NewReader(tt.body),
			)
			w := httptest.NewRecorder()
			srv.handleRegisterVoter(w, req)
			assert.Equal(
				t,
				http.StatusBadRequest,
				w.Code,
			)
		})
	}
}

func TestHandleAddCandidate(t *testing.T) {
	mock := &mockElection{addCandidateId: 1}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/v1/candidates",
		strings.NewReader(`{"name":"alice"}`),
	)
	req.Header.Set(AdminHeader, "admin1")
	w := httptest.NewRecorder()
	srv.handleAddCandidate(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "admin1", mock.addCandidateCaller)
	var resp CandidateResponse
	require.NoError(
		t,
		json.Unmarshal(w.Body.Bytes(), &resp),
	)
	assert.Equal(t, uint64(1), resp.Id)
	assert.Equal(t, "alice", resp.Name)
}

func TestHandleGetCandidate(t *testing.T) {
	mock := &mockElection{
		candidate: ballot.Candidate{
			ID:    1,
			Name:  "alice",
			Votes: 3,
		},
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(
		http.MethodGet, "/v1/candidates/1", nil,
	)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()
	srv.handleGetCandidate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp CandidateResponse
	require.NoError(
		t,
		json.Unmarshal(w.Body.Bytes(), &resp),
	)
	assert.Equal(t, uint64(1), resp.Id)
	assert.Equal(t, "alice", resp.Name)
	assert.Equal(t, uint64(3), resp.Votes)
}

func TestHandleGetCandidateBadId(t *testing.T) {
	srv := newTestServer(t, &mockElection{})

	req := httptest.NewRequest(
		http.MethodGet, "/v1/candidates/abc", nil,
	)
	req.SetPathValue("id", "abc")
	w := httptest.NewRecorder()
	srv.handleGetCandidate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetVoterNotRegistered(t *testing.T) {
	srv := newTestServer(t, &mockElection{})

	req := httptest.NewRequest(
		http.MethodGet, "/v1/voters/addr1", nil,
	)
	req.SetPathValue("address", "addr1")
	w := httptest.NewRecorder()
	srv.handleGetVoter(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSetPeriod(t *testing.T) {
	mock := &mockElection{
		periodStart: 1000,
		periodEnd:   2000,
		votingOpen:  true,
	}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(
		http.MethodPut,
		"/v1/period",
		strings.NewReader(`{"start":1000,"end":2000}`),
	)
	req.Header.Set(AdminHeader, "admin1")
	w := httptest.NewRecorder()
	srv.handleSetPeriod(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin1", mock.setPeriodCaller)
	var resp StatusResponse
	require.NoError(
		t,
		json.Unmarshal(w.Body.Bytes(), &resp),
	)
	assert.Equal(t, uint64(1000), resp.PeriodStart)
	assert.Equal(t, uint64(2000), resp.PeriodEnd)
	assert.True(t, resp.VotingOpen)
}

func TestHandleAuditDefaults(t *testing.T) {
	mock := &mockElection{}
	srv := newTestServer(t, mock)

	req := httptest.NewRequest(
		http.MethodGet, "/v1/audit", nil,
	)
	w := httptest.NewRecorder()
	srv.handleAudit(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(1), mock.auditStartSeq)
	assert.Equal(t, 100, mock.auditLimit)
	// A nil entry list is returned as an empty array
	assert.Equal(
		t,
		"[]",
		strings.TrimSpace(w.Body.String()),
	)
}

func TestHandleAuditBadParams(t *testing.T) {
	srv := newTestServer(t, &mockElection{})

	tests := []struct {
		name   string
		target string
	}{
		{name: "bad start", target: "/v1/audit?start=abc"},
		{name: "zero start", target: "/v1/audit?start=0"},
		{name: "bad limit", target: "/v1/audit?limit=abc"},
		{
			name:   "excessive limit",
			target: "/v1/audit?limit=99999",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(
				http.MethodGet, tt.target, nil,
			)
			w := httptest.NewRecorder()
			srv.handleAudit(w, req)
			assert.Equal(
				t,
				http.StatusBadRequest,
				w.Code,
			)
		})
	}
}

func TestElectionErrorStatusCodes(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ballot.ErrUnauthorized, http.StatusForbidden},
		{ballot.ErrAlreadyRegistered, http.StatusConflict},
		{ballot.ErrAlreadyVoted, http.StatusConflict},
		{ballot.ErrDuplicateCandidate, http.StatusConflict},
		{ballot.ErrNotRegistered, http.StatusNotFound},
		{ballot.ErrInvalidCandidateID, http.StatusNotFound},
		{
			ballot.ErrDelegateNotRegistered,
			http.StatusUnprocessableEntity,
		},
		{
			ballot.ErrInvalidPeriod,
			http.StatusUnprocessableEntity,
		},
		{ballot.ErrVotingNotActive, http.StatusLocked},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			writeElectionError(w, tt.err)
			assert.Equal(t, tt.status, w.Code)
			var resp ErrorResponse
			require.NoError(
				t,
				json.Unmarshal(w.Body.Bytes(), &resp),
			)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.err.Error(), resp.Message)
		})
	}
}

// doRequest performs an HTTP request against the test
// server and returns the response status and body.
func doRequest(
	t *testing.T,
	client *http.Client,
	method string,
	url string,
	body string,
	admin string,
) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if admin != "" {
		req.Header.Set(AdminHeader, admin)
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode, data
}

func TestServeElection(t *testing.T) {
	var now atomic.Int64
	now.Store(1500)
	election, err := ballot.New(ballot.NewConfig(
		ballot.WithAdmins("admin1"),
		ballot.WithNowFunc(func() time.Time {
			return time.Unix(now.Load(), 0)
		}),
	))
	require.NoError(t, err)
	t.Cleanup(func() {
		election.Stop() //nolint:errcheck
	})

	srv := newTestServer(t, election)
	mux := http.NewServeMux()
	srv.registerRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	client := ts.Client()

	// Open the voting period as admin
	status, _ := doRequest(
		t, client, http.MethodPut, ts.URL+"/v1/period",
		`{"start":1000,"end":2000}`, "admin1",
	)
	assert.Equal(t, http.StatusOK, status)

	// Non-admin candidate addition is rejected
	status, _ = doRequest(
		t, client, http.MethodPost, ts.URL+"/v1/candidates",
		`{"name":"alice"}`, "",
	)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := doRequest(
		t, client, http.MethodPost, ts.URL+"/v1/candidates",
		`{"name":"alice"}`, "admin1",
	)
	require.Equal(t, http.StatusCreated, status)
	var candidate CandidateResponse
	require.NoError(t, json.Unmarshal(body, &candidate))
	assert.Equal(t, uint64(1), candidate.Id)

	for _, addr := range []string{"addr1", "addr2"} {
		status, _ = doRequest(
			t, client, http.MethodPost, ts.URL+"/v1/voters",
			`{"address":"`+addr+`"}`, "",
		)
		require.Equal(t, http.StatusCreated, status)
	}

	status, body = doRequest(
		t, client, http.MethodPost, ts.URL+"/v1/votes",
		`{"address":"addr1","candidate_id":1}`, "",
	)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &candidate))
	assert.Equal(t, uint64(1), candidate.Votes)

	// Double vote is rejected
	status, _ = doRequest(
		t, client, http.MethodPost, ts.URL+"/v1/votes",
		`{"address":"addr1","candidate_id":1}`, "",
	)
	assert.Equal(t, http.StatusConflict, status)

	// Delegation to a voted target resolves immediately
	status, body = doRequest(
		t, client, http.MethodPost, ts.URL+"/v1/delegations",
		`{"from":"addr2","to":"addr1"}`, "",
	)
	require.Equal(t, http.StatusOK, status)
	var voter VoterResponse
	require.NoError(t, json.Unmarshal(body, &voter))
	assert.True(t, voter.HasVoted)

	status, body = doRequest(
		t, client, http.MethodGet, ts.URL+"/v1/candidates/1",
		"", "",
	)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &candidate))
	assert.Equal(t, uint64(2), candidate.Votes)

	status, body = doRequest(
		t, client, http.MethodGet, ts.URL+"/v1/status",
		"", "",
	)
	require.Equal(t, http.StatusOK, status)
	var electionStatus StatusResponse
	require.NoError(
		t,
		json.Unmarshal(body, &electionStatus),
	)
	assert.True(t, electionStatus.VotingOpen)
	assert.Equal(t, 1, electionStatus.Candidates)
	assert.Equal(t, 2, electionStatus.Voters)
	assert.Equal(t, uint64(1), electionStatus.TotalVotes)
	assert.Equal(
		t,
		uint64(2),
		electionStatus.HighestVoteCount,
	)

	// Winners can be read while voting is still open
	status, body = doRequest(
		t, client, http.MethodGet, ts.URL+"/v1/winners",
		"", "",
	)
	require.Equal(t, http.StatusOK, status)
	var winners []CandidateResponse
	require.NoError(t, json.Unmarshal(body, &winners))
	require.Len(t, winners, 1)
	assert.Equal(t, uint64(1), winners[0].Id)
	assert.Equal(t, uint64(2), winners[0].Votes)

	// And unchanged after the voting period closes
	now.Store(2500)
	status, body = doRequest(
		t, client, http.MethodGet, ts.URL+"/v1/winners",
		"", "",
	)
	require.Equal(t, http.StatusOK, status)
	winners = nil
	require.NoError(t, json.Unmarshal(body, &winners))
	require.Len(t, winners, 1)
	assert.Equal(t, uint64(1), winners[0].Id)

	status, body = doRequest(
		t, client, http.MethodGet, ts.URL+"/v1/audit",
		"", "",
	)
	require.Equal(t, http.StatusOK, status)
	var entries []audit.Entry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 8)
	assert.Equal(t, uint64(1), entries[0].Seq)
	assert.Equal(
		t,
		"election.period_set",
		entries[0].Type,
	)
	assert.Equal(
		t,
		"election.winners_selected",
		entries[7].Type,
	)
}
