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

package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/blinklabs-io/ballot/database/plugin/blob/internal/sqlstore"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLSTATE codes for failures that are resolved by retrying the transaction
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// BlobStorePostgres stores records in Postgres
type BlobStorePostgres struct {
	*sqlstore.Store
	logger   *slog.Logger
	host     string
	port     uint
	user     string
	password string
	database string
	sslMode  string
	timeZone string
	dsn      string // Data source name (postgres connection string)
}

// New creates a Postgres blob store. The connection is opened by Start()
func New(opts ...BlobStorePostgresOptionFunc) *BlobStorePostgres {
	d := &BlobStorePostgres{}
	for _, opt := range opts {
		opt(d)
	}
	// Set defaults after options are applied
	if d.host == "" {
		d.host = "localhost"
	}
	if d.port == 0 {
		d.port = 5432
	}
	if d.user == "" {
		d.user = "postgres"
	}
	if d.database == "" {
		d.database = "postgres"
	}
	if d.sslMode == "" {
		d.sslMode = "disable"
	}
	if d.timeZone == "" {
		d.timeZone = "UTC"
	}
	return d
}

// Configure implements the blob.Configurable interface
func (d *BlobStorePostgres) Configure(
	logger *slog.Logger,
	_ prometheus.Registerer,
) {
	if logger != nil {
		d.logger = logger
	}
}

// DSN returns the connection string used to connect to Postgres
func (d *BlobStorePostgres) DSN() string {
	if d.dsn != "" {
		return d.dsn
	}
	parts := []string{
		"host=" + d.host,
		fmt.Sprintf("port=%d", d.port),
		"user=" + d.user,
		"dbname=" + d.database,
		"sslmode=" + d.sslMode,
		"TimeZone=" + d.timeZone,
	}
	if d.password != "" {
		parts = append(parts, "password="+d.password)
	}
	return strings.Join(parts, " ")
}

// Start implements the plugin.Plugin interface
func (d *BlobStorePostgres) Start() error {
	if d.Store != nil {
		return nil
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	gormDb, err := gorm.Open(
		postgres.Open(d.DSN()),
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
		},
	)
	if err != nil {
		return err
	}
	store, err := sqlstore.New(
		gormDb,
		sqlstore.WithLogger(d.logger),
		sqlstore.WithTxOptions(
			&sql.TxOptions{Isolation: sql.LevelSerializable},
		),
		sqlstore.WithConflictFunc(IsConflict),
	)
	if err != nil {
		if sqlDb, dbErr := gormDb.DB(); dbErr == nil {
			_ = sqlDb.Close()
		}
		return err
	}
	d.Store = store
	d.logger.Debug(
		"connected to postgres blob store",
		"component", "database",
		"host", d.host,
		"database", d.database,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStorePostgres) Stop() error {
	return d.Close()
}

// Close closes the database connections
func (d *BlobStorePostgres) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}

// IsConflict reports whether err is a Postgres serialization failure
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected:
		return true
	default:
		return false
	}
}
