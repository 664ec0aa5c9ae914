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
	"errors"
	"fmt"
)

// Error is a ballot failure with a stable numeric code
type Error struct {
	Code uint32
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

var (
	ErrAlreadyVoted = &Error{
		Code: 6000,
		Name: "AlreadyVoted",
		Msg:  "You have already voted in this poll.",
	}
	ErrExceedsWordLimit = &Error{
		Code: 6001,
		Name: "ExceedsWordLimit",
		Msg:  "You exceeded the word limit",
	}
	ErrUnauthorisedCandidate = &Error{
		Code: 6002,
		Name: "UnauthorisedCandidate",
		Msg:  "This candidate is not registered",
	}
	ErrCandidateAlreadyExists = &Error{
		Code: 6003,
		Name: "CandidateAlreadyExists",
		Msg:  "Candidate already exists",
	}
	ErrPollAlreadyExists = &Error{
		Code: 6004,
		Name: "PollAlreadyExists",
		Msg:  "A poll with this id already exists",
	}
	ErrPollNotFound = &Error{
		Code: 6005,
		Name: "PollNotFound",
		Msg:  "Poll not found",
	}
	ErrCandidateNotFound = &Error{
		Code: 6006,
		Name: "CandidateNotFound",
		Msg:  "Candidate record not found",
	}
	ErrCandidateLimitReached = &Error{
		Code: 6007,
		Name: "CandidateLimitReached",
		Msg:  "The poll has reached its candidate limit",
	}
	ErrInvalidCaller = &Error{
		Code: 6008,
		Name: "InvalidCaller",
		Msg:  "Caller identity must be a 32-byte public key",
	}
	ErrReceiptNotFound = &Error{
		Code: 6009,
		Name: "ReceiptNotFound",
		Msg:  "Vote receipt not found",
	}
)

var allErrors = []*Error{
	ErrAlreadyVoted,
	ErrExceedsWordLimit,
	ErrUnauthorisedCandidate,
	ErrCandidateAlreadyExists,
	ErrPollAlreadyExists,
	ErrPollNotFound,
	ErrCandidateNotFound,
	ErrCandidateLimitReached,
	ErrInvalidCaller,
	ErrReceiptNotFound,
}

// ErrorByCode returns the error with the given code, or nil
func ErrorByCode(code uint32) *Error {
	for _, err := range allErrors {
		if err.Code == code {
			return err
		}
	}
	return nil
}

// errorName returns the name of the ballot error wrapped by err, if any
func errorName(err error) (string, bool) {
	var ballotErr *Error
	if errors.As(err, &ballotErr) {
		return ballotErr.Name, true
	}
	return "", false
}
