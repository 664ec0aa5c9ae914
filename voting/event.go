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

package voting

import (
	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/event"
)

const (
	PollInitializedEventType      = event.EventType("voting.poll_initialized")
	PollUpdatedEventType          = event.EventType("voting.poll_updated")
	CandidateInitializedEventType = event.EventType("voting.candidate_initialized")
	VoteCastEventType             = event.EventType("voting.vote_cast")
)

// PollEvent is emitted when a poll is created or its details are updated
type PollEvent struct {
	Address     address.Address
	Caller      Caller
	Description string
	PollId      uint64
	PollStart   uint64
	PollEnd     uint64
}

// CandidateInitializedEvent is emitted when a candidate is added to a poll
type CandidateInitializedEvent struct {
	Address         address.Address
	Caller          Caller
	CandidateName   string
	PollId          uint64
	CandidateAmount uint64
}

// VoteCastEvent is emitted when a vote has been committed
type VoteCastEvent struct {
	Caller         Caller
	CandidateName  string
	PollId         uint64
	CandidateVotes uint64
}
