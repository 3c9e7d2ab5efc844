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
)

var (
	ErrAlreadyRegistered = errors.New("voter is already registered")
	ErrNotRegistered     = errors.New("voter is not registered")
	ErrAlreadyVoted      = errors.New("voter has already voted")
)

// Voter is the per-address election record. A never-registered address is
// indistinguishable from the zero value. HasVoted is a one-way flag; it is
// set both by direct votes and by delegating. VotedCandidateID is 0 unless
// the voter cast a direct vote. DelegateOf names the address that delegated
// to this voter while this voter had not yet voted; the relation is
// informational only and is never read back to apply a vote.
type Voter struct {
	Address          string
	Registered       bool
	HasVoted         bool
	VotedCandidateID uint64
	DelegateOf       string
}

// VoterRegistry holds voter records keyed by address in registration
// order. It is not safe for concurrent use. Callers serialize access
// behind the election lock.
type VoterRegistry struct {
	voters map[string]*Voter
	order  []string
}

func NewVoterRegistry() *VoterRegistry {
	return &VoterRegistry{
		voters: make(map[string]*Voter),
	}
}

func (r *VoterRegistry) Register(address string) error {
	if _, ok := r.voters[address]; ok {
		return ErrAlreadyRegistered
	}
	r.voters[address] = &Voter{
		Address:    address,
		Registered: true,
	}
	r.order = append(r.order, address)
	return nil
}

// Get returns a copy of the voter record. Unknown addresses yield the
// zero-valued record for that address.
func (r *VoterRegistry) Get(address string) Voter {
	if voter, ok := r.voters[address]; ok {
		return *voter
	}
	return Voter{Address: address}
}

func (r *VoterRegistry) IsRegistered(address string) bool {
	_, ok := r.voters[address]
	return ok
}

func (r *VoterRegistry) HasVoted(address string) bool {
	if voter, ok := r.voters[address]; ok {
		return voter.HasVoted
	}
	return false
}

// MarkVoted flips the voter's one-way voted flag. A direct vote records
// the candidate ID; a delegation records candidate ID 0.
func (r *VoterRegistry) MarkVoted(address string, candidateID uint64) error {
	voter, ok := r.voters[address]
	if !ok {
		return ErrNotRegistered
	}
	if voter.HasVoted {
		return ErrAlreadyVoted
	}
	voter.HasVoted = true
	voter.VotedCandidateID = candidateID
	return nil
}

// SetDelegateOf records that fromAddress delegated to this voter. A later
// pending delegation to the same voter overwrites an earlier one.
func (r *VoterRegistry) SetDelegateOf(address, fromAddress string) error {
	voter, ok := r.voters[address]
	if !ok {
		return ErrNotRegistered
	}
	voter.DelegateOf = fromAddress
	return nil
}

func (r *VoterRegistry) Count() int {
	return len(r.voters)
}

// Snapshot returns a copy of all voter records in registration order.
func (r *VoterRegistry) Snapshot() []Voter {
	ret := make([]Voter, 0, len(r.order))
	for _, address := range r.order {
		ret = append(ret, *r.voters[address])
	}
	return ret
}

// Restore replaces the registry contents, e.g. when loading persisted
// state at startup.
func (r *VoterRegistry) Restore(voters []Voter) error {
	tmpVoters := make(map[string]*Voter, len(voters))
	tmpOrder := make([]string, 0, len(voters))
	for _, voter := range voters {
		if _, ok := tmpVoters[voter.Address]; ok {
			return ErrAlreadyRegistered
		}
		if !voter.Registered {
			return ErrNotRegistered
		}
		tmpVoters[voter.Address] = &voter
		tmpOrder = append(tmpOrder, voter.Address)
	}
	r.voters = tmpVoters
	r.order = tmpOrder
	return nil
}
