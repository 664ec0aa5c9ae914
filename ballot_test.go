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

package ballot

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/voting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, address.DefaultProgramId, cfg.programId)
	assert.Empty(t, cfg.dataDir)
	assert.False(t, cfg.tracing)
}

func TestConfigOptions(t *testing.T) {
	logger := slog.Default()
	reg := prometheus.NewRegistry()
	programId := address.ProgramId{0x42}
	cfg := NewConfig(
		WithLogger(logger),
		WithPrometheusRegistry(reg),
		WithDatabasePath("/tmp/ballot"),
		WithBlobPlugin("sqlite"),
		WithProgramId(programId),
		WithTracing(true),
		WithTracingStdout(true),
		WithShutdownTimeout(5*time.Second),
	)
	assert.Same(t, logger, cfg.logger)
	assert.Equal(t, reg, cfg.promRegistry)
	assert.Equal(t, "/tmp/ballot", cfg.dataDir)
	assert.Equal(t, "sqlite", cfg.blobPlugin)
	assert.Equal(t, programId, cfg.programId)
	assert.True(t, cfg.tracing)
	assert.True(t, cfg.tracingStdout)
	assert.Equal(t, 5*time.Second, cfg.shutdownTimeout)
}

func TestNewRequiresLogger(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestStartStop(t *testing.T) {
	b, err := New(NewConfig(WithPrometheusRegistry(prometheus.NewRegistry())))
	require.NoError(t, err)
	assert.Nil(t, b.Program())
	require.NoError(t, b.Start())
	// Start is idempotent
	require.NoError(t, b.Start())
	p := b.Program()
	require.NotNil(t, p)
	require.NotNil(t, b.EventBus())

	_, voteCh := b.EventBus().Subscribe(voting.VoteCastEventType)
	ctx := context.Background()
	caller, err := voting.ParseCaller(
		"d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a",
	)
	require.NoError(t, err)
	_, err = p.InitializePoll(ctx, caller, 1, "Best Language", 1000, 2000)
	require.NoError(t, err)
	_, err = p.InitializeCandidate(ctx, caller, "Go", "http://x/go.png", 1)
	require.NoError(t, err)
	candidate, err := p.Vote(ctx, caller, "Go", 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), candidate.CandidateVotes)
	select {
	case evt := <-voteCh:
		assert.Equal(t, voting.VoteCastEventType, evt.Type)
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for vote event")
	}

	require.NoError(t, b.Stop())
	assert.Nil(t, b.Program())
	// Stop is idempotent
	require.NoError(t, b.Stop())
}

func TestRestartWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	b, err := New(NewConfig(WithPrometheusRegistry(reg)))
	require.NoError(t, err)
	ctx := context.Background()
	caller, err := voting.ParseCaller(
		"d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a",
	)
	require.NoError(t, err)
	for range 2 {
		require.NoError(t, b.Start())
		p := b.Program()
		require.NotNil(t, p)
		_, err = p.InitializePoll(ctx, caller, 1, "poll", 0, 0)
		require.NoError(t, err)
		_, err = p.InitializeCandidate(ctx, caller, "Go", "", 1)
		require.NoError(t, err)
		_, err = p.Vote(ctx, caller, "Go", 1)
		require.NoError(t, err)
		expected := `
# HELP ballot_votes_cast_total number of votes committed
# TYPE ballot_votes_cast_total counter
ballot_votes_cast_total 1
`
		require.NoError(
			t,
			testutil.GatherAndCompare(
				reg,
				strings.NewReader(expected),
				"ballot_votes_cast_total",
			),
		)
		require.NoError(t, b.Stop())
		families, err := reg.Gather()
		require.NoError(t, err)
		for _, family := range families {
			assert.False(
				t,
				strings.HasPrefix(family.GetName(), "ballot_"),
				"metric %s still registered after stop",
				family.GetName(),
			)
		}
	}
}

func TestStartUnknownPlugin(t *testing.T) {
	b, err := New(NewConfig(WithBlobPlugin("nonexistent")))
	require.NoError(t, err)
	require.Error(t, b.Start())
	assert.Nil(t, b.Program())
}

func TestStartWithStdoutTracing(t *testing.T) {
	b, err := New(
		NewConfig(
			WithTracing(true),
			WithTracingStdout(true),
			WithShutdownTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)
	require.NoError(t, b.Start())
	assert.NotNil(t, b.tracerProvider)
	caller, err := voting.ParseCaller(
		"3d4017c3e843895a92b70aa74d1b7ebc9c982ccf2ec4968cc0cd55f12af4660c",
	)
	require.NoError(t, err)
	_, err = b.Program().InitializePoll(context.Background(), caller, 7, "traced", 0, 0)
	require.NoError(t, err)
	require.NoError(t, b.Stop())
	assert.Nil(t, b.tracerProvider)
}

func TestStdoutTracingWritesToStderr(t *testing.T) {
	origStdout := os.Stdout
	origStderr := os.Stderr
	stdoutReader, stdoutWriter, err := os.Pipe()
	require.NoError(t, err)
	stderrReader, stderrWriter, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter
	defer func() {
		os.Stdout = origStdout
		os.Stderr = origStderr
	}()
	stdoutCh := make(chan []byte, 1)
	stderrCh := make(chan []byte, 1)
	go func() {
		data, _ := io.ReadAll(stdoutReader)
		stdoutCh <- data
	}()
	go func() {
		data, _ := io.ReadAll(stderrReader)
		stderrCh <- data
	}()

	b, err := New(
		NewConfig(
			WithTracing(true),
			WithTracingStdout(true),
			WithShutdownTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)
	require.NoError(t, b.Start())
	caller, err := voting.ParseCaller(
		"3d4017c3e843895a92b70aa74d1b7ebc9c982ccf2ec4968cc0cd55f12af4660c",
	)
	require.NoError(t, err)
	_, err = b.Program().InitializePoll(context.Background(), caller, 7, "traced", 0, 0)
	require.NoError(t, err)
	// Stop flushes the batched spans
	require.NoError(t, b.Stop())
	os.Stdout = origStdout
	os.Stderr = origStderr
	require.NoError(t, stdoutWriter.Close())
	require.NoError(t, stderrWriter.Close())
	stdoutData := <-stdoutCh
	stderrData := <-stderrCh
	assert.Empty(t, string(stdoutData))
	assert.Contains(t, string(stderrData), "voting.initialize_poll")
}
