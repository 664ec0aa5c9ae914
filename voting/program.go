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
	"io"
	"log/slog"

	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/database"
	"github.com/blinklabs-io/ballot/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/ballot/voting"

// Program applies ballot transitions to records in a database. It holds no
// mutable state of its own and is safe for concurrent use
type Program struct {
	db        *database.Database
	logger    *slog.Logger
	eventBus  *event.EventBus
	metrics   *programMetrics
	tracer    trace.Tracer
	programId address.ProgramId
}

type ProgramOptionFunc func(*Program)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) ProgramOptionFunc {
	return func(p *Program) {
		p.logger = logger
	}
}

// WithEventBus specifies the event bus that committed transitions are published to
func WithEventBus(eventBus *event.EventBus) ProgramOptionFunc {
	return func(p *Program) {
		p.eventBus = eventBus
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(promRegistry prometheus.Registerer) ProgramOptionFunc {
	return func(p *Program) {
		if promRegistry != nil {
			p.initMetrics(promRegistry)
		}
	}
}

// WithProgramId specifies the program ID that record addresses are derived under
func WithProgramId(programId address.ProgramId) ProgramOptionFunc {
	return func(p *Program) {
		p.programId = programId
	}
}

// WithTracerProvider specifies the tracer provider used for transition spans
func WithTracerProvider(tp trace.TracerProvider) ProgramOptionFunc {
	return func(p *Program) {
		p.tracer = tp.Tracer(tracerName)
	}
}

// NewProgram creates a Program that stores records in db
func NewProgram(db *database.Database, opts ...ProgramOptionFunc) *Program {
	p := &Program{
		db:        db,
		programId: address.DefaultProgramId,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		p.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if p.tracer == nil {
		p.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return p
}

// ProgramId returns the program ID that record addresses are derived under
func (p *Program) ProgramId() address.ProgramId {
	return p.programId
}

// transition runs fn inside a span and records its outcome
func (p *Program) transition(
	ctx context.Context,
	name string,
	attrs []attribute.KeyValue,
	fn func() error,
) error {
	_, span := p.tracer.Start(
		ctx,
		"voting."+name,
		trace.WithAttributes(attrs...),
	)
	defer span.End()
	err := ctx.Err()
	if err == nil {
		err = fn()
	}
	if p.metrics != nil {
		p.metrics.transitions.WithLabelValues(name, resultLabel(err)).Inc()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var ballotErr *Error
		if errors.As(err, &ballotErr) {
			p.logger.Debug(
				"transition rejected",
				"component", "voting",
				"transition", name,
				"error", err,
			)
		} else {
			p.logger.Error(
				"transition failed",
				"component", "voting",
				"transition", name,
				"error", err,
			)
		}
	}
	return err
}

func (p *Program) publish(eventType event.EventType, data any) {
	if p.eventBus == nil {
		return
	}
	p.eventBus.PublishAsync(event.NewEvent(eventType, data))
}
