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

package ballot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/ballot/audit"
	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/period"
	"github.com/blinklabs-io/ballot/registry"
	"github.com/blinklabs-io/ballot/tally"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Candidate = registry.Candidate

type Voter = registry.Voter

// Election is the single-election voting state machine. It composes the
// candidate and voter registries, the leading-candidate tracker, and the
// voting period gate, and owns the only lock in the system: every mutating
// operation runs to completion under the write lock, so the collaborators
// need no synchronization of their own.
type Election struct {
	config  Config
	metrics struct {
		votersRegistered  prometheus.Gauge
		candidates        prometheus.Gauge
		votesTotal        prometheus.Counter
		delegationsTotal  *prometheus.CounterVec
		highestVoteCount  prometheus.Gauge
		leadingCandidates prometheus.Gauge
	}
	logger        *slog.Logger
	eventBus      *event.EventBus
	db            *database.Database
	journal       *audit.Journal
	candidates    *registry.CandidateRegistry
	voters        *registry.VoterRegistry
	tracker       *tally.Tracker
	window        *period.Window
	admins        map[string]struct{}
	totalVotes    uint64
	ownsEventBus  bool
	shutdownFuncs []func(context.Context) error
	shutdownOnce  sync.Once
	sync.RWMutex
}

// New creates an Election from the given config, opens its backing stores,
// and loads any previously persisted state. The election stores everything
// in memory unless a data directory was configured.
func New(cfg Config) (*Election, error) {
	e := &Election{
		config:     cfg,
		candidates: registry.NewCandidateRegistry(),
		voters:     registry.NewVoterRegistry(),
		tracker:    tally.NewTracker(),
		window:     period.NewWindow(cfg.nowFunc),
		admins:     make(map[string]struct{}),
	}
	if cfg.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	} else {
		e.logger = cfg.logger
	}
	if e.config.nowFunc == nil {
		e.config.nowFunc = time.Now
	}
	if err := e.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, admin := range cfg.admins {
		e.admins[admin] = struct{}{}
	}
	if cfg.eventBus != nil {
		e.eventBus = cfg.eventBus
	} else {
		e.eventBus = event.NewEventBus(cfg.promRegistry, e.logger)
		e.ownsEventBus = true
	}
	e.initMetrics()
	// Configure tracing
	if cfg.tracing {
		if err := e.setupTracing(); err != nil {
			return nil, err
		}
	}
	// Load database
	db, err := database.New(e.logger, cfg.dataDir)
	if db == nil {
		return nil, errors.New("empty database returned")
	}
	e.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		e.logger.Warn(
			"database initialization error, needs recovery",
			"component", "election",
			"error", err,
		)
		if err := e.recoverCommitTimestamp(); err != nil {
			e.db.Close() //nolint:errcheck
			return nil, fmt.Errorf("failed to recover database: %w", err)
		}
	}
	if err := e.loadState(); err != nil {
		e.db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to load election state: %w", err)
	}
	// Attach the audit journal to the event bus
	journal, err := audit.NewJournal(e.db, e.logger)
	if err != nil {
		e.db.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to open audit journal: %w", err)
	}
	e.journal = journal
	for _, eventType := range []event.EventType{
		event.VoterRegisteredEventType,
		event.CandidateAddedEventType,
		event.VoteCastEventType,
		event.VoteDelegatedEventType,
		event.PeriodSetEventType,
		event.WinnersSelectedEventType,
	} {
		e.eventBus.RegisterSubscriber(eventType, e.journal)
	}
	return e, nil
}

func (e *Election) initMetrics() {
	promautoFactory := promauto.With(e.config.promRegistry)
	e.metrics.votersRegistered = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ballot_voters_registered",
			Help: "number of registered voters",
		},
	)
	e.metrics.candidates = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ballot_candidates",
		Help: "number of registered candidates",
	})
	e.metrics.votesTotal = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "ballot_votes_total",
		Help: "total direct votes cast",
	})
	e.metrics.delegationsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ballot_delegations_total",
			Help: "total delegations by outcome",
		},
		[]string{"outcome"},
	)
	e.metrics.highestVoteCount = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ballot_highest_vote_count",
			Help: "highest vote count held by any candidate",
		},
	)
	e.metrics.leadingCandidates = promautoFactory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ballot_leading_candidates",
			Help: "number of candidates tied at the highest vote count",
		},
	)
}

// recoverCommitTimestamp repairs a commit timestamp mismatch between the
// two stores by committing an empty transaction, which stamps both with a
// fresh shared timestamp. The metadata store is the source of truth for
// election state, so nothing else needs to be reconciled.
func (e *Election) recoverCommitTimestamp() error {
	return e.db.Transaction(true).Do(func(_ *database.Txn) error {
		return nil
	})
}

// loadState populates the in-memory engine from the metadata store.
func (e *Election) loadState() error {
	dbCandidates, err := e.db.GetCandidates(nil)
	if err != nil {
		return err
	}
	tmpCandidates := make([]registry.Candidate, 0, len(dbCandidates))
	for _, candidate := range dbCandidates {
		tmpCandidates = append(tmpCandidates, registry.Candidate{
			ID:    candidate.ID,
			Name:  candidate.Name,
			Votes: candidate.Votes,
		})
	}
	if err := e.candidates.Restore(tmpCandidates); err != nil {
		return err
	}
	dbVoters, err := e.db.GetVoters(nil)
	if err != nil {
		return err
	}
	tmpVoters := make([]registry.Voter, 0, len(dbVoters))
	for _, voter := range dbVoters {
		tmpVoters = append(tmpVoters, registry.Voter{
			Address:          voter.Address,
			Registered:       true,
			HasVoted:         voter.HasVoted,
			VotedCandidateID: voter.VotedCandidateID,
			DelegateOf:       voter.DelegateOf,
		})
	}
	if err := e.voters.Restore(tmpVoters); err != nil {
		return err
	}
	totalVotes, err := e.db.GetTotalVotes(nil)
	if err != nil {
		return err
	}
	e.totalVotes = totalVotes
	start, end, err := e.db.GetVotingPeriod(nil)
	if err != nil {
		return err
	}
	if start != 0 || end != 0 {
		e.window.Restore(start, end)
	}
	leaders, highest, err := e.db.GetLeaders(nil)
	if err != nil {
		return err
	}
	e.tracker.Restore(highest, leaders)
	e.metrics.votersRegistered.Set(float64(e.voters.Count()))
	e.metrics.candidates.Set(float64(e.candidates.Count()))
	e.metrics.highestVoteCount.Set(float64(highest))
	e.metrics.leadingCandidates.Set(float64(len(leaders)))
	if e.candidates.Count() > 0 || e.voters.Count() > 0 {
		e.logger.Info(
			"loaded election state",
			"component", "election",
			"candidates", e.candidates.Count(),
			"voters", e.voters.Count(),
			"total_votes", e.totalVotes,
		)
	}
	return nil
}

// Stop shuts down the election, stopping the event bus (when owned) and
// closing the backing stores.
func (e *Election) Stop() error {
	var err error
	e.shutdownOnce.Do(func() {
		err = e.shutdown()
	})
	return err
}

func (e *Election) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if e.config.shutdownTimeout > 0 {
		shutdownTimeout = e.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	e.logger.Debug("starting graceful shutdown", "component", "election")

	if e.journal != nil {
		e.journal.Close()
	}

	if e.ownsEventBus && e.eventBus != nil {
		e.eventBus.Stop()
	}

	// Call registered shutdown functions
	for _, fn := range e.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	e.shutdownFuncs = nil

	if e.db != nil {
		if closeErr := e.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	e.logger.Debug("graceful shutdown complete", "component", "election")
	return err
}

// EventBus returns the event bus election events are published to.
func (e *Election) EventBus() *event.EventBus {
	return e.eventBus
}

// startSpan opens a tracing span for an election operation.
func (e *Election) startSpan(
	ctx context.Context,
	name string,
) (context.Context, trace.Span) {
	return otel.Tracer("ballot").Start(ctx, name)
}

func (e *Election) isAdmin(address string) bool {
	_, ok := e.admins[address]
	return ok
}

// RegisterVoter records a new eligible voter. The voting period must be
// open.
func (e *Election) RegisterVoter(ctx context.Context, address string) error {
	_, span := e.startSpan(ctx, "election.RegisterVoter")
	defer span.End()
	e.Lock()
	defer e.Unlock()
	if !e.window.IsOpen() {
		return ErrVotingNotActive
	}
	if e.voters.IsRegistered(address) {
		return ErrAlreadyRegistered
	}
	if err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		return e.db.SetVoter(models.Voter{Address: address}, txn)
	}); err != nil {
		return fmt.Errorf("failed to persist voter: %w", err)
	}
	if err := e.voters.Register(address); err != nil {
		return err
	}
	e.metrics.votersRegistered.Inc()
	e.eventBus.Publish(
		event.VoterRegisteredEventType,
		event.NewEvent(
			event.VoterRegisteredEventType,
			event.VoterRegisteredEvent{Address: address},
		),
	)
	e.logger.Info(
		"voter registered",
		"component", "election",
		"address", address,
	)
	return nil
}

// AddCandidate adds a candidate to the ballot and returns its assigned ID.
// Only admin callers may add candidates; candidate names are unique and
// case-sensitive.
func (e *Election) AddCandidate(
	ctx context.Context,
	caller string,
	name string,
) (uint64, error) {
	_, span := e.startSpan(ctx, "election.AddCandidate")
	defer span.End()
	e.Lock()
	defer e.Unlock()
	if !e.isAdmin(caller) {
		return 0, ErrUnauthorized
	}
	if e.candidates.HasName(name) {
		return 0, registry.NewDuplicateCandidateError(name)
	}
	candidateId := uint64(e.candidates.Count()) + 1
	if err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		return e.db.SetCandidate(models.Candidate{
			ID:   candidateId,
			Name: name,
		}, txn)
	}); err != nil {
		return 0, fmt.Errorf("failed to persist candidate: %w", err)
	}
	if _, err := e.candidates.Add(name); err != nil {
		return 0, err
	}
	e.metrics.candidates.Inc()
	e.eventBus.Publish(
		event.CandidateAddedEventType,
		event.NewEvent(
			event.CandidateAddedEventType,
			event.CandidateAddedEvent{Name: name, CandidateId: candidateId},
		),
	)
	e.logger.Info(
		"candidate added",
		"component", "election",
		"candidate_id", candidateId,
		"name", name,
	)
	return candidateId, nil
}

// Vote casts a direct vote for the given candidate. The voting period must
// be open, the voter registered and not yet voted, and the candidate ID
// valid. A failed vote leaves all state untouched.
func (e *Election) Vote(
	ctx context.Context,
	address string,
	candidateId uint64,
) error {
	_, span := e.startSpan(ctx, "election.Vote")
	defer span.End()
	e.Lock()
	defer e.Unlock()
	if !e.window.IsOpen() {
		return ErrVotingNotActive
	}
	if !e.voters.IsRegistered(address) {
		return ErrNotRegistered
	}
	if e.voters.HasVoted(address) {
		return ErrAlreadyVoted
	}
	candidate, err := e.candidates.Get(candidateId)
	if err != nil {
		return err
	}
	voter := e.voters.Get(address)
	newCount := candidate.Votes + 1
	newTotal := e.totalVotes + 1
	// Update the tracker up front so the new leader set lands in the same
	// transaction as the vote; restored on persistence failure
	prevHighest := e.tracker.HighestVoteCount()
	prevLeaders := e.tracker.Leaders()
	e.tracker.Observe(candidateId, newCount)
	if err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := e.db.SetVoter(models.Voter{
			Address:          address,
			HasVoted:         true,
			VotedCandidateID: candidateId,
			DelegateOf:       voter.DelegateOf,
		}, txn); err != nil {
			return err
		}
		if err := e.db.SetCandidate(models.Candidate{
			ID:    candidate.ID,
			Name:  candidate.Name,
			Votes: newCount,
		}, txn); err != nil {
			return err
		}
		if err := e.db.SetTotalVotes(newTotal, txn); err != nil {
			return err
		}
		return e.db.SetLeaders(
			e.tracker.Leaders(),
			e.tracker.HighestVoteCount(),
			txn,
		)
	}); err != nil {
		e.tracker.Restore(prevHighest, prevLeaders)
		return fmt.Errorf("failed to persist vote: %w", err)
	}
	if err := e.voters.MarkVoted(address, candidateId); err != nil {
		return err
	}
	if _, err := e.candidates.IncrementVotes(candidateId); err != nil {
		return err
	}
	e.totalVotes = newTotal
	e.metrics.votesTotal.Inc()
	e.metrics.highestVoteCount.Set(float64(e.tracker.HighestVoteCount()))
	e.metrics.leadingCandidates.Set(float64(len(e.tracker.Leaders())))
	e.eventBus.Publish(
		event.VoteCastEventType,
		event.NewEvent(event.VoteCastEventType, event.VoteCastEvent{
			Voter:       address,
			CandidateId: candidateId,
			NewCount:    newCount,
			TotalVotes:  newTotal,
		}),
	)
	e.logger.Info(
		"vote cast",
		"component", "election",
		"address", address,
		"candidate_id", candidateId,
	)
	return nil
}

// Delegate spends the delegator's ballot on another voter. When the target
// has already cast a direct vote, the target's candidate is credited
// immediately; the credit does not count toward the direct vote total.
// Otherwise the delegation is recorded on the target's record as a pending
// relation that is never applied later, not even when the target votes.
func (e *Election) Delegate(
	ctx context.Context,
	fromAddress string,
	toAddress string,
) error {
	_, span := e.startSpan(ctx, "election.Delegate")
	defer span.End()
	e.Lock()
	defer e.Unlock()
	if !e.window.IsOpen() {
		return ErrVotingNotActive
	}
	if !e.voters.IsRegistered(fromAddress) {
		return ErrNotRegistered
	}
	if e.voters.HasVoted(fromAddress) {
		return ErrAlreadyVoted
	}
	if !e.voters.IsRegistered(toAddress) {
		return ErrDelegateNotRegistered
	}
	fromVoter := e.voters.Get(fromAddress)
	toVoter := e.voters.Get(toAddress)
	if toVoter.HasVoted && toVoter.VotedCandidateID != 0 {
		return e.delegateResolved(fromVoter, toVoter)
	}
	return e.delegatePending(fromVoter, toVoter)
}

// delegateResolved credits the target's chosen candidate with the
// delegated ballot.
func (e *Election) delegateResolved(fromVoter, toVoter Voter) error {
	candidate, err := e.candidates.Get(toVoter.VotedCandidateID)
	if err != nil {
		return err
	}
	newCount := candidate.Votes + 1
	prevHighest := e.tracker.HighestVoteCount()
	prevLeaders := e.tracker.Leaders()
	e.tracker.Observe(candidate.ID, newCount)
	if err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := e.db.SetVoter(models.Voter{
			Address:    fromVoter.Address,
			HasVoted:   true,
			DelegateOf: fromVoter.DelegateOf,
		}, txn); err != nil {
			return err
		}
		if err := e.db.SetCandidate(models.Candidate{
			ID:    candidate.ID,
			Name:  candidate.Name,
			Votes: newCount,
		}, txn); err != nil {
			return err
		}
		return e.db.SetLeaders(
			e.tracker.Leaders(),
			e.tracker.HighestVoteCount(),
			txn,
		)
	}); err != nil {
		e.tracker.Restore(prevHighest, prevLeaders)
		return fmt.Errorf("failed to persist delegation: %w", err)
	}
	if err := e.voters.MarkVoted(fromVoter.Address, 0); err != nil {
		return err
	}
	if _, err := e.candidates.IncrementVotes(candidate.ID); err != nil {
		return err
	}
	e.metrics.delegationsTotal.WithLabelValues("resolved").Inc()
	e.metrics.highestVoteCount.Set(float64(e.tracker.HighestVoteCount()))
	e.metrics.leadingCandidates.Set(float64(len(e.tracker.Leaders())))
	e.eventBus.Publish(
		event.VoteDelegatedEventType,
		event.NewEvent(event.VoteDelegatedEventType, event.VoteDelegatedEvent{
			From:        fromVoter.Address,
			To:          toVoter.Address,
			Resolved:    true,
			CandidateId: candidate.ID,
			NewCount:    newCount,
		}),
	)
	e.logger.Info(
		"vote delegated",
		"component", "election",
		"from", fromVoter.Address,
		"to", toVoter.Address,
		"candidate_id", candidate.ID,
	)
	return nil
}

// delegatePending spends the delegator's ballot and records the pending
// relation on the target.
func (e *Election) delegatePending(fromVoter, toVoter Voter) error {
	fromRecord := models.Voter{
		Address:    fromVoter.Address,
		HasVoted:   true,
		DelegateOf: fromVoter.DelegateOf,
	}
	if fromVoter.Address == toVoter.Address {
		// Self-delegation: the voter becomes their own pending target
		fromRecord.DelegateOf = fromVoter.Address
	}
	if err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := e.db.SetVoter(fromRecord, txn); err != nil {
			return err
		}
		if fromVoter.Address == toVoter.Address {
			return nil
		}
		return e.db.SetVoter(models.Voter{
			Address:          toVoter.Address,
			HasVoted:         toVoter.HasVoted,
			VotedCandidateID: toVoter.VotedCandidateID,
			DelegateOf:       fromVoter.Address,
		}, txn)
	}); err != nil {
		return fmt.Errorf("failed to persist delegation: %w", err)
	}
	if err := e.voters.MarkVoted(fromVoter.Address, 0); err != nil {
		return err
	}
	if err := e.voters.SetDelegateOf(toVoter.Address, fromVoter.Address); err != nil {
		return err
	}
	e.metrics.delegationsTotal.WithLabelValues("pending").Inc()
	e.eventBus.Publish(
		event.VoteDelegatedEventType,
		event.NewEvent(event.VoteDelegatedEventType, event.VoteDelegatedEvent{
			From:     fromVoter.Address,
			To:       toVoter.Address,
			Resolved: false,
		}),
	)
	e.logger.Info(
		"delegation pending",
		"component", "election",
		"from", fromVoter.Address,
		"to", toVoter.Address,
	)
	return nil
}

// SetVotingPeriod sets the election's open window. Only admin callers may
// change the period.
func (e *Election) SetVotingPeriod(
	ctx context.Context,
	caller string,
	start uint64,
	end uint64,
) error {
	_, span := e.startSpan(ctx, "election.SetVotingPeriod")
	defer span.End()
	e.Lock()
	defer e.Unlock()
	if !e.isAdmin(caller) {
		return ErrUnauthorized
	}
	prevStart, prevEnd := e.window.Bounds()
	if err := e.window.Set(start, end); err != nil {
		return err
	}
	if err := e.db.Transaction(true).Do(func(txn *database.Txn) error {
		return e.db.SetVotingPeriod(start, end, txn)
	}); err != nil {
		e.window.Restore(prevStart, prevEnd)
		return fmt.Errorf("failed to persist voting period: %w", err)
	}
	e.eventBus.Publish(
		event.PeriodSetEventType,
		event.NewEvent(
			event.PeriodSetEventType,
			event.PeriodSetEvent{Start: start, End: end},
		),
	)
	e.logger.Info(
		"voting period set",
		"component", "election",
		"start", start,
		"end", end,
	)
	return nil
}

// Winners returns the candidates tied at the highest vote count, in the
// order they reached it. Safe to call at any time, including while voting
// is still open; before any ballot has been counted the winner set is
// empty.
func (e *Election) Winners(ctx context.Context) ([]Candidate, error) {
	_, span := e.startSpan(ctx, "election.Winners")
	defer span.End()
	e.RLock()
	defer e.RUnlock()
	leaders := e.tracker.Leaders()
	winners := make([]Candidate, 0, len(leaders))
	for _, candidateId := range leaders {
		candidate, err := e.candidates.Get(candidateId)
		if err != nil {
			return nil, err
		}
		winners = append(winners, candidate)
	}
	e.eventBus.Publish(
		event.WinnersSelectedEventType,
		event.NewEvent(
			event.WinnersSelectedEventType,
			event.WinnersSelectedEvent{
				CandidateIds: leaders,
				HighestCount: e.tracker.HighestVoteCount(),
			},
		),
	)
	return winners, nil
}

// CandidateCount returns the number of candidates on the ballot.
func (e *Election) CandidateCount() int {
	e.RLock()
	defer e.RUnlock()
	return e.candidates.Count()
}

// Candidates returns all candidates in ballot order.
func (e *Election) Candidates() []Candidate {
	e.RLock()
	defer e.RUnlock()
	return e.candidates.Snapshot()
}

// Candidate returns the candidate with the given ID.
func (e *Election) Candidate(candidateId uint64) (Candidate, error) {
	e.RLock()
	defer e.RUnlock()
	return e.candidates.Get(candidateId)
}

// Voter returns the voter record for the given address. Unknown addresses
// yield a zero-valued record.
func (e *Election) Voter(address string) Voter {
	e.RLock()
	defer e.RUnlock()
	return e.voters.Get(address)
}

// VoterCount returns the number of registered voters.
func (e *Election) VoterCount() int {
	e.RLock()
	defer e.RUnlock()
	return e.voters.Count()
}

// TotalVotes returns the number of ballots counted via direct votes.
// Ballots credited through delegation are not included.
func (e *Election) TotalVotes() uint64 {
	e.RLock()
	defer e.RUnlock()
	return e.totalVotes
}

// HighestVoteCount returns the highest vote count held by any candidate.
func (e *Election) HighestVoteCount() uint64 {
	e.RLock()
	defer e.RUnlock()
	return e.tracker.HighestVoteCount()
}

// VotingPeriod returns the configured voting window bounds as Unix
// timestamps. Both are zero when no period has been set.
func (e *Election) VotingPeriod() (uint64, uint64) {
	e.RLock()
	defer e.RUnlock()
	return e.window.Bounds()
}

// IsVotingOpen returns whether the voting period is currently open.
func (e *Election) IsVotingOpen() bool {
	e.RLock()
	defer e.RUnlock()
	return e.window.IsOpen()
}

// AuditEntries returns decoded audit journal entries starting at the given
// sequence number.
func (e *Election) AuditEntries(
	startSeq uint64,
	limit int,
) ([]audit.Entry, error) {
	return e.journal.Entries(startSeq, limit)
}
