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
	"context"
	"errors"
	"fmt"

	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
)

// Vote casts the caller's single vote in a poll for a rostered candidate. The
// receipt, the candidate record and the roster entry are updated together
func (p *Program) Vote(
	ctx context.Context,
	caller Caller,
	candidateName string,
	pollId uint64,
) (*models.Candidate, error) {
	var candidate *models.Candidate
	err := p.transition(
		ctx,
		transitionVote,
		candidateAttrs(pollId, candidateName),
		func() error {
			if err := caller.Validate(); err != nil {
				return err
			}
			receiptAddr, _, err := address.Receipt(p.programId, pollId, caller)
			if err != nil {
				return fmt.Errorf("derive receipt address: %w", err)
			}
			return p.db.Update(ctx, func(txn *database.Txn) error {
				pollAddr, poll, err := p.getPoll(txn, pollId)
				if err != nil {
					return err
				}
				rosterIdx := poll.CandidateIndex(candidateName)
				if rosterIdx < 0 {
					return ErrUnauthorisedCandidate
				}
				receipt := &models.VoteReceipt{}
				result, err := txn.TryCreateRecord(receiptAddr, receipt)
				if err != nil {
					return err
				}
				if result == database.AlreadyExists {
					if err := txn.GetRecord(receiptAddr, receipt); err != nil {
						return err
					}
				}
				if receipt.Vote {
					return ErrAlreadyVoted
				}
				receipt.Vote = true
				if err := txn.PutRecord(receiptAddr, receipt); err != nil {
					return err
				}
				var candidateAddr address.Address
				candidateAddr, candidate, err = p.getCandidate(
					txn,
					pollId,
					candidateName,
				)
				if err != nil {
					return err
				}
				candidate.CandidateVotes++
				if err := txn.PutRecord(candidateAddr, candidate); err != nil {
					return err
				}
				poll.CandidateList[rosterIdx].CandidateVotes++
				return txn.PutRecord(pollAddr, poll)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.votesCast.Inc()
	}
	p.logger.Info(
		"vote cast",
		"component", "voting",
		"poll_id", pollId,
		"candidate", candidateName,
		"votes", candidate.CandidateVotes,
	)
	p.publish(
		VoteCastEventType,
		VoteCastEvent{
			Caller:         caller,
			CandidateName:  candidateName,
			PollId:         pollId,
			CandidateVotes: candidate.CandidateVotes,
		},
	)
	return candidate, nil
}

// Receipt returns the vote receipt of a caller within a poll
func (p *Program) Receipt(
	ctx context.Context,
	pollId uint64,
	caller Caller,
) (*models.VoteReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	receiptAddr, _, err := address.Receipt(p.programId, pollId, caller)
	if err != nil {
		return nil, fmt.Errorf("derive receipt address: %w", err)
	}
	receipt := &models.VoteReceipt{}
	err = p.db.View(func(txn *database.Txn) error {
		return txn.GetRecord(receiptAddr, receipt)
	})
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, err
	}
	return receipt, nil
}
