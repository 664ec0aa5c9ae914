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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/blinklabs-io/ballot/voting"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const defaultShutdownTimeout = 30 * time.Second

// Ballot wires the record store, event bus and voting program together
type Ballot struct {
	db             *database.Database
	eventBus       *event.EventBus
	program        *voting.Program
	metrics        *metricsRegisterer
	tracerProvider trace.TracerProvider
	shutdownFuncs  []func(context.Context) error
	config         Config
	mu             sync.Mutex
	started        bool
}

func New(cfg Config) (*Ballot, error) {
	if cfg.logger == nil {
		return nil, errors.New("invalid configuration: no logger")
	}
	b := &Ballot{
		config: cfg,
	}
	return b, nil
}

// Start opens the database and prepares the voting program
func (b *Ballot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}
	// Configure tracing
	if b.config.tracing {
		if err := b.setupTracing(); err != nil {
			return err
		}
	}
	// Metrics are registered per run and removed again by Stop
	var promRegistry prometheus.Registerer
	if b.config.promRegistry != nil {
		b.metrics = newMetricsRegisterer(b.config.promRegistry)
		promRegistry = b.metrics
	}
	db, err := database.New(&database.Config{
		BlobPlugin:   b.config.blobPlugin,
		DataDir:      b.config.dataDir,
		Logger:       b.config.logger,
		PromRegistry: promRegistry,
	})
	if err != nil {
		b.unregisterMetrics()
		return errors.Join(
			fmt.Errorf("failed to open database: %w", err),
			b.runShutdownFuncs(),
		)
	}
	b.db = db
	b.eventBus = event.NewEventBus(promRegistry, b.config.logger)
	programOpts := []voting.ProgramOptionFunc{
		voting.WithLogger(b.config.logger),
		voting.WithEventBus(b.eventBus),
		voting.WithPromRegistry(promRegistry),
		voting.WithProgramId(b.config.programId),
	}
	if b.tracerProvider != nil {
		programOpts = append(
			programOpts,
			voting.WithTracerProvider(b.tracerProvider),
		)
	}
	b.program = voting.NewProgram(b.db, programOpts...)
	b.started = true
	b.config.logger.Debug(
		"ballot started",
		"component", "ballot",
		"blob_plugin", b.config.blobPlugin,
		"data_dir", b.config.dataDir,
	)
	return nil
}

// Program returns the voting program. It is nil until Start has succeeded
func (b *Ballot) Program() *voting.Program {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.program
}

// EventBus returns the event bus that committed transitions are published to
func (b *Ballot) EventBus() *event.EventBus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.eventBus
}

// Stop shuts down the event bus, closes the database and flushes traces
func (b *Ballot) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nil
	}
	b.started = false
	var err error
	if b.eventBus != nil {
		b.eventBus.Stop()
		b.eventBus = nil
	}
	if b.db != nil {
		if dbErr := b.db.Close(); dbErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", dbErr))
		}
		b.db = nil
	}
	b.program = nil
	b.unregisterMetrics()
	err = errors.Join(err, b.runShutdownFuncs())
	b.config.logger.Debug("ballot stopped", "component", "ballot")
	return err
}

func (b *Ballot) unregisterMetrics() {
	if b.metrics != nil {
		b.metrics.unregisterAll()
		b.metrics = nil
	}
}

func (b *Ballot) runShutdownFuncs() error {
	shutdownTimeout := defaultShutdownTimeout
	if b.config.shutdownTimeout > 0 {
		shutdownTimeout = b.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var err error
	for _, fn := range b.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	b.shutdownFuncs = nil
	b.tracerProvider = nil
	return err
}
