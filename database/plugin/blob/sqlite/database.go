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

package sqlite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/blinklabs-io/ballot/database/plugin/blob/internal/sqlstore"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// memoryDbCounter gives every in-memory store its own named database
var memoryDbCounter atomic.Uint64

// BlobStoreSqlite stores records in a SQLite database
type BlobStoreSqlite struct {
	*sqlstore.Store
	logger  *slog.Logger
	dataDir string
}

// New creates a SQLite blob store. The database is opened by Start()
func New(opts ...BlobStoreSqliteOptionFunc) *BlobStoreSqlite {
	s := &BlobStoreSqlite{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure implements the blob.Configurable interface
func (d *BlobStoreSqlite) Configure(
	logger *slog.Logger,
	_ prometheus.Registerer,
) {
	if logger != nil {
		d.logger = logger
	}
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreSqlite) Start() error {
	if d.Store != nil {
		return nil
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var dsn string
	if d.dataDir == "" {
		// Use a uniquely named in-memory database, useful for testing.
		// cache=shared allows the pooled connections to share the same database
		dsn = fmt.Sprintf(
			"file:ballot-%d?mode=memory&cache=shared",
			memoryDbCounter.Add(1),
		)
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(d.dataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(d.dataDir, fs.ModePerm); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		dbPath := filepath.Join(d.dataDir, "blob.sqlite")
		// WAL journal mode and a busy timeout for writers waiting on the lock
		dsn = fmt.Sprintf(
			"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
			dbPath,
		)
	}
	gormDb, err := gorm.Open(
		sqlite.Open(dsn),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return err
	}
	sqlDb, err := gormDb.DB()
	if err != nil {
		return err
	}
	// SQLite allows a single writer. Limiting the pool to one connection
	// serializes all transactions instead of failing them with SQLITE_BUSY
	sqlDb.SetMaxOpenConns(1)
	store, err := sqlstore.New(
		gormDb,
		sqlstore.WithLogger(d.logger),
	)
	if err != nil {
		_ = sqlDb.Close()
		return err
	}
	d.Store = store
	d.logger.Debug(
		"opened sqlite blob store",
		"component", "database",
		"in_memory", d.dataDir == "",
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreSqlite) Stop() error {
	return d.Close()
}

// Close closes the database
func (d *BlobStoreSqlite) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}
