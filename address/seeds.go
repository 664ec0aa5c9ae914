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

package address

import (
	"encoding/binary"
)

func pollIdSeed(pollId uint64) []byte {
	ret := make([]byte, 8)
	binary.LittleEndian.PutUint64(ret, pollId)
	return ret
}

// PollSeeds returns the seeds for a poll record
func PollSeeds(pollId uint64) [][]byte {
	return [][]byte{pollIdSeed(pollId)}
}

// CandidateSeeds returns the seeds for a candidate record within a poll
func CandidateSeeds(pollId uint64, candidateName string) [][]byte {
	return [][]byte{pollIdSeed(pollId), []byte(candidateName)}
}

// ReceiptSeeds returns the seeds for the vote receipt of a caller within a poll
func ReceiptSeeds(pollId uint64, caller []byte) [][]byte {
	return [][]byte{pollIdSeed(pollId), caller}
}

// Poll derives the address of a poll record
func Poll(programId ProgramId, pollId uint64) (Address, uint8, error) {
	return FindProgramAddress(programId, PollSeeds(pollId)...)
}

// Candidate derives the address of a candidate record
func Candidate(
	programId ProgramId,
	pollId uint64,
	candidateName string,
) (Address, uint8, error) {
	return FindProgramAddress(
		programId,
		CandidateSeeds(pollId, candidateName)...,
	)
}

// Receipt derives the address of a vote receipt record
func Receipt(
	programId ProgramId,
	pollId uint64,
	caller []byte,
) (Address, uint8, error) {
	return FindProgramAddress(programId, ReceiptSeeds(pollId, caller)...)
}
