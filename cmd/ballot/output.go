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

package main

import (
	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/voting"
)

type candidateDetailOutput struct {
	Name  string `yaml:"name"`
	Votes uint64 `yaml:"votes"`
}

type pollOutput struct {
	Address         string                  `yaml:"address"`
	Description     string                  `yaml:"description"`
	Candidates      []candidateDetailOutput `yaml:"candidates"`
	PollId          uint64                  `yaml:"pollId"`
	PollStart       uint64                  `yaml:"pollStart"`
	PollEnd         uint64                  `yaml:"pollEnd"`
	CandidateAmount uint64                  `yaml:"candidateAmount"`
}

type candidateOutput struct {
	Address  string `yaml:"address"`
	Name     string `yaml:"name"`
	ImageUrl string `yaml:"imageUrl"`
	PollId   uint64 `yaml:"pollId"`
	Votes    uint64 `yaml:"votes"`
}

type receiptOutput struct {
	Address string `yaml:"address"`
	Caller  string `yaml:"caller"`
	PollId  uint64 `yaml:"pollId"`
	Vote    bool   `yaml:"vote"`
}

type addressOutput struct {
	Address string `yaml:"address"`
	Bump    uint8  `yaml:"bump"`
}

func newPollOutput(programId address.ProgramId, poll *models.Poll) (pollOutput, error) {
	addr, _, err := address.Poll(programId, poll.PollId)
	if err != nil {
		return pollOutput{}, err
	}
	ret := pollOutput{
		Address:         addr.String(),
		Description:     poll.Description,
		Candidates:      make([]candidateDetailOutput, 0, len(poll.CandidateList)),
		PollId:          poll.PollId,
		PollStart:       poll.PollStart,
		PollEnd:         poll.PollEnd,
		CandidateAmount: poll.CandidateAmount,
	}
	for _, detail := range poll.CandidateList {
		ret.Candidates = append(
			ret.Candidates,
			candidateDetailOutput{
				Name:  detail.CandidateName,
				Votes: detail.CandidateVotes,
			},
		)
	}
	return ret, nil
}

func newCandidateOutput(
	programId address.ProgramId,
	pollId uint64,
	candidate *models.Candidate,
) (candidateOutput, error) {
	addr, _, err := address.Candidate(programId, pollId, candidate.CandidateName)
	if err != nil {
		return candidateOutput{}, err
	}
	return candidateOutput{
		Address:  addr.String(),
		Name:     candidate.CandidateName,
		ImageUrl: candidate.ImageUrl,
		PollId:   pollId,
		Votes:    candidate.CandidateVotes,
	}, nil
}

func newReceiptOutput(
	programId address.ProgramId,
	pollId uint64,
	caller voting.Caller,
	receipt *models.VoteReceipt,
) (receiptOutput, error) {
	addr, _, err := address.Receipt(programId, pollId, caller)
	if err != nil {
		return receiptOutput{}, err
	}
	return receiptOutput{
		Address: addr.String(),
		Caller:  caller.String(),
		PollId:  pollId,
		Vote:    receipt.Vote,
	}, nil
}
