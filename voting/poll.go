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

func pollAttrs(pollId uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("ballot.poll_id", int64(pollId)), //nolint:gosec
	}
}

// InitializePoll creates a poll with an empty roster. It fails with
// ErrPollAlreadyExists if the poll address already holds a record
func (p *Program) InitializePoll(
	ctx context.Context,
	caller Caller,
	pollId uint64,
	description string,
	pollStart uint64,
	pollEnd uint64,
) (*models.Poll, error) {
	var poll *models.Poll
	var pollAddr address.Address
	err := p.transition(
		ctx,
		transitionInitializePoll,
		pollAttrs(pollId),
		func() error {
			if err := caller.Validate(); err != nil {
				return err
			}
			if len(description) > models.MaxDescriptionLength {
				return ErrExceedsWordLimit
			}
			var err error
			pollAddr, _, err = address.Poll(p.programId, pollId)
			if err != nil {
				return fmt.Errorf("derive poll address: %w", err)
			}
			return p.db.Update(ctx, func(txn *database.Txn) error {
				poll = &models.Poll{
					PollId:        pollId,
					Description:   description,
					PollStart:     pollStart,
					PollEnd:       pollEnd,
					CandidateList: []models.CandidateDetail{},
				}
				result, err := txn.TryCreateRecord(pollAddr, poll)
				if err != nil {
					return err
				}
				if result == database.AlreadyExists {
					return ErrPollAlreadyExists
				}
				return nil
			})
		},
	)
	if err != nil {
		return nil, err
	}
	p.logger.Info(
		"poll initialized",
		"component", "voting",
		"poll_id", pollId,
		"address", pollAddr.String(),
	)
	p.publish(
		PollInitializedEventType,
		PollEvent{
			Address:     pollAddr,
			Caller:      caller,
			Description: description,
			PollId:      pollId,
			PollStart:   pollStart,
			PollEnd:     pollEnd,
		},
	)
	return poll, nil
}

// UpsertPoll creates a poll, or replaces the description and timestamps of
// an existing poll. The roster and candidate count of an existing poll are
// kept
func (p *Program) UpsertPoll(
	ctx context.Context,
	caller Caller,
	pollId uint64,
	description string,
	pollStart uint64,
	pollEnd uint64,
) (*models.Poll, error) {
	var poll *models.Poll
	var pollAddr address.Address
	var created bool
	err := p.transition(
		ctx,
		transitionUpsertPoll,
		pollAttrs(pollId),
		func() error {
			if err := caller.Validate(); err != nil {
				return err
			}
			if len(description) > models.MaxDescriptionLength {
				return ErrExceedsWordLimit
			}
			var err error
			pollAddr, _, err = address.Poll(p.programId, pollId)
			if err != nil {
				return fmt.Errorf("derive poll address: %w", err)
			}
			return p.db.Update(ctx, func(txn *database.Txn) error {
				poll = &models.Poll{}
				created = false
				if err := txn.GetRecord(pollAddr, poll); err != nil {
					if !errors.Is(err, types.ErrRecordNotFound) {
						return err
					}
					created = true
					poll = &models.Poll{
						PollId:        pollId,
						CandidateList: []models.CandidateDetail{},
					}
				}
				poll.Description = description
				poll.PollStart = pollStart
				poll.PollEnd = pollEnd
				return txn.PutRecord(pollAddr, poll)
			})
		},
	)
	if err != nil {
		return nil, err
	}
	eventType := PollUpdatedEventType
	if created {
		eventType = PollInitializedEventType
	}
	p.logger.Info(
		"poll upserted",
		"component", "voting",
		"poll_id", pollId,
		"created", created,
	)
	p.publish(
		eventType,
		PollEvent{
			Address:     pollAddr,
			Caller:      caller,
			Description: description,
			PollId:      pollId,
			PollStart:   pollStart,
			PollEnd:     pollEnd,
		},
	)
	return poll, nil
}

// Poll returns the poll with the given ID
func (p *Program) Poll(ctx context.Context, pollId uint64) (*models.Poll, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var poll *models.Poll
	err := p.db.View(func(txn *database.Txn) error {
		var err error
		_, poll, err = p.getPoll(txn, pollId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return poll, nil
}

// getPoll loads a poll within a transaction, mapping a missing record to ErrPollNotFound
func (p *Program) getPoll(
	txn *database.Txn,
	pollId uint64,
) (address.Address, *models.Poll, error) {
	pollAddr, _, err := address.Poll(p.programId, pollId)
	if err != nil {
		return pollAddr, nil, fmt.Errorf("derive poll address: %w", err)
	}
	poll := &models.Poll{}
	if err := txn.GetRecord(pollAddr, poll); err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return pollAddr, nil, ErrPollNotFound
		}
		return pollAddr, nil, err
	}
	return pollAddr, poll, nil
}
