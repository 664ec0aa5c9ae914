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

package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/blinklabs-io/ballot/database/plugin/blob"
	"github.com/blinklabs-io/ballot/database/types"
	"github.com/cenkalti/backoff/v5"
	"github.com/prometheus/client_golang/prometheus"

	// Register blob plugins
	_ "github.com/blinklabs-io/ballot/database/plugin/blob/badger"
	_ "github.com/blinklabs-io/ballot/database/plugin/blob/mysql"
	_ "github.com/blinklabs-io/ballot/database/plugin/blob/postgres"
	_ "github.com/blinklabs-io/ballot/database/plugin/blob/sqlite"
)

const (
	DefaultBlobPlugin = "badger"

	conflictRetryInitialInterval = 5 * time.Millisecond
	conflictRetryMaxInterval     = time.Second
)

// Config holds the database configuration
type Config struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// BlobPlugin selects the blob store by name. Defaults to badger
	BlobPlugin string
	// DataDir is passed to plugins that support it. An empty value selects
	// in-memory storage
	DataDir string
}

type Database struct {
	logger  *slog.Logger
	blob    blob.BlobStore
	dataDir string
	// writeMutex serializes Update calls within this process
	writeMutex sync.Mutex
}

// Blob returns the underling blob store instance
func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

// DataDir returns the path to the data directory used for storage
func (d *Database) DataDir() string {
	return d.dataDir
}

// Logger returns the logger instance
func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Transaction starts a new database transaction and returns a handle to it
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

// View runs fn in a read-only transaction
func (d *Database) View(fn func(*Txn) error) error {
	txn := d.Transaction(false)
	defer txn.Release()
	return fn(txn)
}

// Update runs fn in a read-write transaction and commits it. Updates from
// the same Database run one at a time. If the transaction fails because of a
// conflicting write from outside this Database, it is re-run against the new
// state after a jittered backoff until it succeeds or ctx is done. Any other
// error is returned to the caller without a retry
func (d *Database) Update(ctx context.Context, fn func(*Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.writeMutex.Lock()
	defer d.writeMutex.Unlock()
	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.InitialInterval = conflictRetryInitialInterval
	retryBackoff.MaxInterval = conflictRetryMaxInterval
	retryBackoff.Reset()
	for attempt := 1; ; attempt++ {
		txn := d.Transaction(true)
		err := txn.Do(fn)
		if err == nil || !errors.Is(err, types.ErrTxnConflict) {
			return err
		}
		wait := retryBackoff.NextBackOff()
		d.logger.Debug(
			"transaction conflict, retrying",
			"component", "database",
			"attempt", attempt,
			"wait", wait,
		)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf(
				"transaction abandoned after %d attempts: %w",
				attempt,
				errors.Join(ctx.Err(), err),
			)
		}
	}
}

// Close cleans up the database connections
func (d *Database) Close() error {
	if d.blob == nil {
		return nil
	}
	return d.blob.Close()
}

// New creates a new database instance using the configured blob plugin
func New(config *Config) (*Database, error) {
	if config == nil {
		config = &Config{}
	}
	logger := config.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	pluginName := config.BlobPlugin
	if pluginName == "" {
		pluginName = DefaultBlobPlugin
	}
	if err := plugin.SetPluginOption(
		plugin.PluginTypeBlob,
		pluginName,
		"data-dir",
		config.DataDir,
	); err != nil {
		return nil, err
	}
	blobDb, err := blob.New(pluginName, logger, config.PromRegistry)
	if err != nil {
		return nil, err
	}
	return &Database{
		logger:  logger,
		blob:    blobDb,
		dataDir: config.DataDir,
	}, nil
}
