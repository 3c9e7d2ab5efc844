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
	"errors"

	"github.com/blinklabs-io/ballot/period"
	"github.com/blinklabs-io/ballot/registry"
)

var (
	// ErrVotingNotActive is returned when a mutating operation runs
	// outside the configured voting window.
	ErrVotingNotActive = errors.New("voting is not active")
	ErrUnauthorized    = errors.New("caller is not an election admin")
	ErrDelegateNotRegistered = errors.New(
		"delegate target is not registered",
	)
)

// Failures raised by collaborating packages, re-exported so callers can
// match the full election error taxonomy against this package alone.
var (
	ErrAlreadyRegistered  = registry.ErrAlreadyRegistered
	ErrNotRegistered      = registry.ErrNotRegistered
	ErrAlreadyVoted       = registry.ErrAlreadyVoted
	ErrDuplicateCandidate = registry.ErrDuplicateCandidate
	ErrInvalidCandidateID = registry.ErrInvalidCandidateID
	ErrInvalidPeriod      = period.ErrInvalidPeriod
)
