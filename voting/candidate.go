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
	"go.opentelemetry.io/otel/attribute"
)

func candidateAttrs(pollId uint64, candidateName string) []attribute.KeyValue {
	return append(
		pollAttrs(pollId),
		attribute.String("ballot.candidate_name", candidateName),
	)
}

// InitializeCandidate registers a candidate in a poll. The poll roster entry
// and the candidate record are written in the same transaction
func (p *Program) InitializeCandidate(
	ctx context.Context,
	caller Caller,
	candidateName string,
	imageUrl string,
	pollId uint64,
) (*models.Candidate, error) {
	var candidate *models.Candidate
	var candidateAddr address.Address
	var candidateAmount uint64
	err := p.transition(
		ctx,
		transitionInitializeCandidate,
		candidateAttrs(pollId, candidateName),
		func() error {
			if err := caller.Validate(); err != nil {
				return err
			}
			if len(candidateName) > models.MaxCandidateNameLength ||
				len(imageUrl) > models.MaxImageUrlLength {
				return ErrExceedsWordLimit
			}
			var err error
			candidateAddr, _, err = address.Candidate(
				p.programId,
				pollId,
				candidateName,
			)
			if err != nil {
				return fmt.Errorf("derive candidate address: %w", err)
			}
			return p.db.Update(ctx, func(txn *database.Txn) error {
				pollAddr, poll, err := p.getPoll(txn, pollId)
				if err != nil {
					return err
				}
				if poll.HasCandidate(candidateName) {
					return ErrCandidateAlreadyExists
				}
				if len(poll.CandidateList) >= models.MaxCandidateListLength {
					return ErrCandidateLimitReached
				}
				poll.CandidateList = append(
					poll.CandidateList,
					models.CandidateDetail{CandidateName: candidateName},
				)
				poll.CandidateAmount++
				candidate = &models.Candidate{
					CandidateName: candidateName,
					ImageUrl:      imageUrl,
				}
				result, err := txn.TryCreateRecord(candidateAddr, candidate)
				if err != nil {
					return err
				}
				if result == database.AlreadyExists {
					return ErrCandidateAlreadyExists
				}
				candidateAmount = poll.CandidateAmount
				return txn.PutRecord(pollAddr, poll)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	p.logger.Info(
		"candidate initialized",
		"component", "voting",
		"poll_id", pollId,
		"candidate", candidateName,
		"address", candidateAddr.String(),
	)
	p.publish(
		CandidateInitializedEventType,
		CandidateInitializedEvent{
			Address:         candidateAddr,
			Caller:          caller,
			CandidateName:   candidateName,
			PollId:          pollId,
			CandidateAmount: candidateAmount,
		},
	)
	return candidate, nil
}

// Candidate returns the candidate record for a name within a poll
func (p *Program) Candidate(
	ctx context.Context,
	pollId uint64,
	candidateName string,
) (*models.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Names past the limit can never have been registered
	if len(candidateName) > models.MaxCandidateNameLength {
		return nil, ErrCandidateNotFound
	}
	var candidate *models.Candidate
	err := p.db.View(func(txn *database.Txn) error {
		var err error
		_, candidate, err = p.getCandidate(txn, pollId, candidateName)
		return err
	})
	if err != nil {
		return nil, err
	}
	return candidate, nil
}

func (p *Program) getCandidate(
	txn *database.Txn,
	pollId uint64,
	candidateName string,
) (address.Address, *models.Candidate, error) {
	candidateAddr, _, err := address.Candidate(
		p.programId,
		pollId,
		candidateName,
	)
	if err != nil {
		return candidateAddr, nil, fmt.Errorf("derive candidate address: %w", err)
	}
	candidate := &models.Candidate{}
	if err := txn.GetRecord(candidateAddr, candidate); err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return candidateAddr, nil, ErrCandidateNotFound
		}
		return candidateAddr, nil, err
	}
	return candidateAddr, candidate, nil
}
