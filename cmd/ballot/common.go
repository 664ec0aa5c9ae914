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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/ballot"
	"github.com/blinklabs-io/ballot/internal/config"
	"github.com/blinklabs-io/ballot/internal/version"
	"github.com/blinklabs-io/ballot/voting"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"gopkg.in/yaml.v3"
)

func slogPrintf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...),
		"component", programName,
	)
}

// commonRun configures logging and the runtime. Logs go to stderr so that
// command output on stdout stays machine readable
func commonRun() (*slog.Logger, error) {
	// Configure logger
	logLevel := slog.LevelInfo
	addSource := false
	if globalFlags.debug {
		logLevel = slog.LevelDebug
		addSource = true
	}
	logger := slog.New(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			AddSource: addSource,
			Level:     logLevel,
		}),
	)
	slog.SetDefault(logger)
	// Configure max processes with our logger wrapper, toss undo func
	if _, err := maxprocs.Set(maxprocs.Logger(slogPrintf)); err != nil {
		return nil, err
	}
	logger.Debug(
		"version: "+version.GetVersionString(),
		"component", programName,
	)
	return logger, nil
}

// runWithBallot starts a ballot instance from the loaded config, runs fn and
// stops the instance again
func runWithBallot(
	cmd *cobra.Command,
	fn func(*voting.Program) (any, error),
) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	logger, err := commonRun()
	if err != nil {
		return err
	}
	programId, err := cfg.ParsedProgramId()
	if err != nil {
		return err
	}
	shutdownTimeout, err := cfg.ParsedShutdownTimeout()
	if err != nil {
		return err
	}
	b, err := ballot.New(
		ballot.NewConfig(
			ballot.WithLogger(logger),
			ballot.WithDatabasePath(cfg.DatabasePath),
			ballot.WithBlobPlugin(cfg.BlobPlugin),
			ballot.WithProgramId(programId),
			ballot.WithTracing(cfg.Tracing),
			ballot.WithTracingStdout(cfg.TracingStdout),
			ballot.WithShutdownTimeout(shutdownTimeout),
		),
	)
	if err != nil {
		return err
	}
	if err := b.Start(); err != nil {
		return err
	}
	out, err := fn(b.Program())
	if stopErr := b.Stop(); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	if err != nil {
		return err
	}
	return printYaml(cmd.OutOrStdout(), out)
}

func printYaml(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}

func callerFromFlags(cmd *cobra.Command) (voting.Caller, error) {
	callerHex, err := cmd.Flags().GetString("caller")
	if err != nil {
		return nil, err
	}
	caller, err := voting.ParseCaller(callerHex)
	if err != nil {
		return nil, fmt.Errorf("--caller: %w", err)
	}
	return caller, nil
}

func addCallerFlag(cmd *cobra.Command) {
	cmd.Flags().String("caller", "", "hex-encoded 32-byte public key of the caller")
	_ = cmd.MarkFlagRequired("caller")
}

func addPollIdFlag(cmd *cobra.Command) {
	cmd.Flags().Uint64("poll-id", 0, "poll identifier")
	_ = cmd.MarkFlagRequired("poll-id")
}
