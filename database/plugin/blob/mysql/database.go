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

package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/blinklabs-io/ballot/database/plugin/blob/internal/sqlstore"
	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// MySQL error numbers for failures that are resolved by retrying the transaction
const (
	errLockWaitTimeout = 1205
	errLockDeadlock    = 1213
)

// BlobStoreMysql stores records in MySQL
type BlobStoreMysql struct {
	*sqlstore.Store
	logger   *slog.Logger
	host     string
	port     uint
	user     string
	password string
	database string
	sslMode  string
	timeZone string
	dsn      string // Data source name (MySQL connection string)
}

// New creates a MySQL blob store. The connection is opened by Start()
func New(opts ...BlobStoreMysqlOptionFunc) *BlobStoreMysql {
	d := &BlobStoreMysql{}
	for _, opt := range opts {
		opt(d)
	}
	if d.host == "" {
		d.host = "localhost"
	}
	if d.port == 0 {
		d.port = 3306
	}
	if d.user == "" {
		d.user = "root"
	}
	if d.database == "" {
		d.database = "ballot"
	}
	if d.timeZone == "" {
		d.timeZone = "UTC"
	}
	return d
}

// Configure implements the blob.Configurable interface
func (d *BlobStoreMysql) Configure(
	logger *slog.Logger,
	_ prometheus.Registerer,
) {
	if logger != nil {
		d.logger = logger
	}
}

// DSN returns the connection string used to connect to MySQL
func (d *BlobStoreMysql) DSN() string {
	if dsn := strings.TrimSpace(d.dsn); dsn != "" {
		return dsn
	}
	cfg := mysql.NewConfig()
	cfg.User = d.user
	cfg.Passwd = d.password
	cfg.Net = "tcp"
	cfg.Addr = d.host + ":" + strconv.FormatUint(uint64(d.port), 10)
	cfg.DBName = d.database
	cfg.ParseTime = true
	if loc, err := time.LoadLocation(d.timeZone); err == nil {
		cfg.Loc = loc
	}
	if d.sslMode != "" {
		cfg.TLSConfig = d.sslMode
	}
	return cfg.FormatDSN()
}

// Start implements the plugin.Plugin interface
func (d *BlobStoreMysql) Start() error {
	if d.Store != nil {
		return nil
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	gormDb, err := gorm.Open(
		gormmysql.Open(d.DSN()),
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
	sqlDb.SetMaxIdleConns(10)
	sqlDb.SetConnMaxLifetime(time.Hour)
	store, err := sqlstore.New(
		gormDb,
		sqlstore.WithLogger(d.logger),
		sqlstore.WithTxOptions(
			&sql.TxOptions{Isolation: sql.LevelSerializable},
		),
		sqlstore.WithConflictFunc(IsConflict),
	)
	if err != nil {
		_ = sqlDb.Close()
		return fmt.Errorf("initialize mysql blob store: %w", err)
	}
	d.Store = store
	d.logger.Debug(
		"connected to mysql blob store",
		"component", "database",
		"host", d.host,
		"database", d.database,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreMysql) Stop() error {
	return d.Close()
}

// Close closes the database connections
func (d *BlobStoreMysql) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}

// IsConflict reports whether err is a MySQL deadlock or lock wait timeout
func IsConflict(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == errLockDeadlock ||
		mysqlErr.Number == errLockWaitTimeout
}
