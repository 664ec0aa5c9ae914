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

package models

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
)

// Field limits, in bytes or entries
const (
	MaxDescriptionLength   = 200
	MaxCandidateNameLength = 32
	MaxImageUrlLength      = 128
	MaxCandidateListLength = 32
	MaxDetailNameLength    = 128
)

var ErrFieldTooLong = errors.New("field exceeds maximum length")

const PollKind = "Poll"

// Poll is the stored state of a single poll
type Poll struct {
	cbor.StructAsArray
	PollId          uint64
	Description     string
	PollStart       uint64
	PollEnd         uint64
	CandidateAmount uint64
	CandidateList   []CandidateDetail
}

// CandidateDetail is the roster entry for a candidate within a poll
type CandidateDetail struct {
	cbor.StructAsArray
	CandidateName  string
	CandidateVotes uint64
}

func (Poll) RecordKind() string {
	return PollKind
}

// Validate checks the stored size limits of the poll
func (p *Poll) Validate() error {
	if len(p.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description", ErrFieldTooLong)
	}
	if len(p.CandidateList) > MaxCandidateListLength {
		return fmt.Errorf("%w: candidate list", ErrFieldTooLong)
	}
	for _, detail := range p.CandidateList {
		if len(detail.CandidateName) > MaxDetailNameLength {
			return fmt.Errorf("%w: candidate detail name", ErrFieldTooLong)
		}
	}
	return nil
}

// HasCandidate reports whether name is in the roster
func (p *Poll) HasCandidate(name string) bool {
	return p.CandidateIndex(name) >= 0
}

// CandidateIndex returns the roster position of name, or -1
func (p *Poll) CandidateIndex(name string) int {
	for i, detail := range p.CandidateList {
		if detail.CandidateName == name {
			return i
		}
	}
	return -1
}
