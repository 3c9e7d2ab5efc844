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
	"errors"
	"fmt"
	"slices"
)

var (
	ErrDuplicateCandidate = errors.New(
		"candidate with this name already exists",
	)
	ErrInvalidCandidateID = errors.New("invalid candidate ID")
)

type DuplicateCandidateError struct {
	name string
}

func NewDuplicateCandidateError(name string) DuplicateCandidateError {
	return DuplicateCandidateError{name: name}
}

func (e DuplicateCandidateError) Name() string {
	return e.name
}

func (e DuplicateCandidateError) Error() string {
	return fmt.Sprintf("candidate %q already exists", e.name)
}

func (e DuplicateCandidateError) Unwrap() error {
	return ErrDuplicateCandidate
}

type InvalidCandidateIDError struct {
	id    uint64
	count int
}

func NewInvalidCandidateIDError(id uint64, count int) InvalidCandidateIDError {
	return InvalidCandidateIDError{id: id, count: count}
}

func (e InvalidCandidateIDError) ID() uint64 {
	return e.id
}

func (e InvalidCandidateIDError) Error() string {
	return fmt.Sprintf(
		"candidate ID %d outside valid range 1..%d",
		e.id,
		e.count,
	)
}

func (e InvalidCandidateIDError) Unwrap() error {
	return ErrInvalidCandidateID
}

// Candidate is a single ballot entry. IDs are dense and assigned in
// registration order starting at 1. ID 0 is reserved as the "no direct
// vote" marker on voter records and never names a candidate.
type Candidate struct {
	ID    uint64
	Name  string
	Votes uint64
}

// CandidateRegistry holds candidates in entry order. It is not safe for
// concurrent use. Callers serialize access behind the election lock.
type CandidateRegistry struct {
	candidates []Candidate
	byName     map[string]uint64
}

func NewCandidateRegistry() *CandidateRegistry {
	return &CandidateRegistry{
		byName: make(map[string]uint64),
	}
}

// Add appends a candidate and returns its assigned ID. Names are
// case-sensitive and must be unique.
func (r *CandidateRegistry) Add(name string) (uint64, error) {
	if _, ok := r.byName[name]; ok {
		return 0, NewDuplicateCandidateError(name)
	}
	id := uint64(len(r.candidates)) + 1
	r.candidates = append(r.candidates, Candidate{
		ID:   id,
		Name: name,
	})
	r.byName[name] = id
	return id, nil
}

// IncrementVotes adds a single vote to the candidate and returns the new
// count.
func (r *CandidateRegistry) IncrementVotes(id uint64) (uint64, error) {
	if !r.validID(id) {
		return 0, NewInvalidCandidateIDError(id, len(r.candidates))
	}
	r.candidates[id-1].Votes++
	return r.candidates[id-1].Votes, nil
}

func (r *CandidateRegistry) Get(id uint64) (Candidate, error) {
	if !r.validID(id) {
		return Candidate{}, NewInvalidCandidateIDError(id, len(r.candidates))
	}
	return r.candidates[id-1], nil
}

// HasName reports whether a candidate with the given name exists. Names
// are matched case-sensitively.
func (r *CandidateRegistry) HasName(name string) bool {
	_, ok := r.byName[name]
	return ok
}

func (r *CandidateRegistry) Count() int {
	return len(r.candidates)
}

// Snapshot returns a copy of all candidates in entry order.
func (r *CandidateRegistry) Snapshot() []Candidate {
	return slices.Clone(r.candidates)
}

// Restore replaces the registry contents, e.g. when loading persisted
// state at startup. Candidates must arrive in entry order with dense IDs.
func (r *CandidateRegistry) Restore(candidates []Candidate) error {
	tmpCandidates := make([]Candidate, 0, len(candidates))
	tmpByName := make(map[string]uint64, len(candidates))
	for i, candidate := range candidates {
		if candidate.ID != uint64(i)+1 {
			return fmt.Errorf(
				"candidate %q has ID %d, expected %d",
				candidate.Name,
				candidate.ID,
				i+1,
			)
		}
		if _, ok := tmpByName[candidate.Name]; ok {
			return NewDuplicateCandidateError(candidate.Name)
		}
		tmpCandidates = append(tmpCandidates, candidate)
		tmpByName[candidate.Name] = candidate.ID
	}
	r.candidates = tmpCandidates
	r.byName = tmpByName
	return nil
}

func (r *CandidateRegistry) validID(id uint64) bool {
	return id >= 1 && id <= uint64(len(r.candidates))
}
