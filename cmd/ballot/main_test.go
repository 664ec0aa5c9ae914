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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/voting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	testCallerA = "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a"
	testCallerB = "3d4017c3e843895a92b70aa74d1b7ebc9c982ccf2ec4968cc0cd55f12af4660c"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "ballot.yaml")
	content := "databasePath: " + filepath.Join(tmpDir, "data") + "\nblobPlugin: badger\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd, err := newRootCommand()
	require.NoError(t, err)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), err
}

func TestCommandsEndToEnd(t *testing.T) {
	configPath := writeTestConfig(t)

	out, err := runCommand(t,
		"--config", configPath,
		"poll", "create",
		"--poll-id", "1",
		"--description", "Best Language",
		"--start", "1000",
		"--end", "2000",
		"--caller", testCallerA,
	)
	require.NoError(t, err)
	var poll pollOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &poll))
	assert.Equal(t, uint64(1), poll.PollId)
	assert.Equal(t, "Best Language", poll.Description)
	assert.Equal(t, uint64(0), poll.CandidateAmount)
	assert.Empty(t, poll.Candidates)
	expectedAddr, _, err := address.Poll(address.DefaultProgramId, 1)
	require.NoError(t, err)
	assert.Equal(t, expectedAddr.String(), poll.Address)

	_, err = runCommand(t,
		"--config", configPath,
		"candidate", "add",
		"--poll-id", "1",
		"--name", "Go",
		"--image-url", "http://x/go.png",
		"--caller", testCallerA,
	)
	require.NoError(t, err)

	out, err = runCommand(t,
		"--config", configPath,
		"vote",
		"--poll-id", "1",
		"--name", "Go",
		"--caller", testCallerA,
	)
	require.NoError(t, err)
	var candidate candidateOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &candidate))
	assert.Equal(t, "Go", candidate.Name)
	assert.Equal(t, uint64(1), candidate.Votes)

	_, err = runCommand(t,
		"--config", configPath,
		"vote",
		"--poll-id", "1",
		"--name", "Go",
		"--caller", testCallerA,
	)
	require.ErrorIs(t, err, voting.ErrAlreadyVoted)

	_, err = runCommand(t,
		"--config", configPath,
		"vote",
		"--poll-id", "1",
		"--name", "Rust",
		"--caller", testCallerB,
	)
	require.ErrorIs(t, err, voting.ErrUnauthorisedCandidate)

	out, err = runCommand(t,
		"--config", configPath,
		"receipt", "show",
		"--poll-id", "1",
		"--caller", testCallerA,
	)
	require.NoError(t, err)
	var receipt receiptOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &receipt))
	assert.True(t, receipt.Vote)
	assert.Equal(t, testCallerA, receipt.Caller)

	out, err = runCommand(t,
		"--config", configPath,
		"poll", "show",
		"--poll-id", "1",
	)
	require.NoError(t, err)
	poll = pollOutput{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &poll))
	assert.Equal(t, uint64(1), poll.CandidateAmount)
	assert.Equal(
		t,
		[]candidateDetailOutput{{Name: "Go", Votes: 1}},
		poll.Candidates,
	)
}

func TestAddressCommand(t *testing.T) {
	configPath := writeTestConfig(t)
	out, err := runCommand(t,
		"--config", configPath,
		"address", "candidate",
		"--poll-id", "3",
		"--name", "Go",
	)
	require.NoError(t, err)
	var addrOut addressOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &addrOut))
	expectedAddr, expectedBump, err := address.Candidate(address.DefaultProgramId, 3, "Go")
	require.NoError(t, err)
	assert.Equal(t, expectedAddr.String(), addrOut.Address)
	assert.Equal(t, expectedBump, addrOut.Bump)
}

func TestInvalidCallerFlag(t *testing.T) {
	configPath := writeTestConfig(t)
	_, err := runCommand(t,
		"--config", configPath,
		"vote",
		"--poll-id", "1",
		"--name", "Go",
		"--caller", "abcd",
	)
	require.ErrorIs(t, err, voting.ErrInvalidCaller)
}

func TestListCommand(t *testing.T) {
	out, err := runCommand(t, "--config", writeTestConfig(t), "list")
	require.NoError(t, err)
	for _, name := range []string{"badger", "mysql", "postgres", "sqlite"} {
		assert.True(t, strings.Contains(out, "  "+name+": "), name)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "--config", writeTestConfig(t), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, programName+" "))
}
