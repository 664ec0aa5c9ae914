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
	"fmt"

	"github.com/blinklabs-io/gouroboros/cbor"
)

const CandidateKind = "Candidate"

// Candidate is the stored state of a candidate registered to a poll
type Candidate struct {
	cbor.StructAsArray
	CandidateName  string
	CandidateVotes uint64
	ImageUrl       string
}

func (Candidate) RecordKind() string {
	return CandidateKind
}

func (c *Candidate) Validate() error {
	if len(c.CandidateName) > MaxCandidateNameLength {
		return fmt.Errorf("%w: candidate name", ErrFieldTooLong)
	}
	if len(c.ImageUrl) > MaxImageUrlLength {
		return fmt.Errorf("%w: image URL", ErrFieldTooLong)
	}
	return nil
}
