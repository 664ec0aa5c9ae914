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

package voting_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/blinklabs-io/ballot/voting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	testDefs := []struct {
		err  *voting.Error
		code uint32
	}{
		{voting.ErrAlreadyVoted, 6000},
		{voting.ErrExceedsWordLimit, 6001},
		{voting.ErrUnauthorisedCandidate, 6002},
		{voting.ErrCandidateAlreadyExists, 6003},
		{voting.ErrPollAlreadyExists, 6004},
		{voting.ErrPollNotFound, 6005},
		{voting.ErrCandidateNotFound, 6006},
		{voting.ErrCandidateLimitReached, 6007},
		{voting.ErrInvalidCaller, 6008},
		{voting.ErrReceiptNotFound, 6009},
	}
	for _, testDef := range testDefs {
		assert.Equal(t, testDef.code, testDef.err.Code, testDef.err.Name)
		assert.Same(t, testDef.err, voting.ErrorByCode(testDef.code))
	}
	assert.Nil(t, voting.ErrorByCode(1))
}

func TestErrorWrapping(t *testing.T) {
	err := fmt.Errorf("vote: %w", voting.ErrAlreadyVoted)
	assert.True(t, errors.Is(err, voting.ErrAlreadyVoted))
	assert.False(t, errors.Is(err, voting.ErrPollNotFound))
	var ballotErr *voting.Error
	require.True(t, errors.As(err, &ballotErr))
	assert.Equal(t, uint32(6000), ballotErr.Code)
	assert.Equal(
		t,
		"AlreadyVoted (6000): You have already voted in this poll.",
		voting.ErrAlreadyVoted.Error(),
	)
}

func TestParseCaller(t *testing.T) {
	hexKey := strings.Repeat("ab", 32)
	caller, err := voting.ParseCaller(hexKey)
	require.NoError(t, err)
	assert.Equal(t, hexKey, caller.String())
	caller, err = voting.ParseCaller("0x" + hexKey)
	require.NoError(t, err)
	assert.Len(t, caller, 32)
	for _, bad := range []string{"", "zz", strings.Repeat("ab", 31), strings.Repeat("ab", 33)} {
		_, err := voting.ParseCaller(bad)
		assert.ErrorIs(t, err, voting.ErrInvalidCaller, bad)
	}
}
