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

// Package sqlstore implements the blob store interface on top of a relational
// database accessed through GORM. It is shared by the SQL-backed blob plugins
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/ballot/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Record represents the table used to hold blob keys and values
type Record struct {
	Key   []byte `gorm:"column:record_key;primaryKey;size:64"`
	Value []byte `gorm:"column:record_value;not null"`
}

func (Record) TableName() string {
	return "blob_record"
}

// ConflictFunc reports whether a commit error is a serialization failure that
// the caller may resolve by re-running the transaction
type ConflictFunc func(error) bool

type Store struct {
	db         *gorm.DB
	logger     *slog.Logger
	txOptions  *sql.TxOptions
	isConflict ConflictFunc
}

type StoreOptionFunc func(*Store)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) StoreOptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTxOptions specifies the options used when beginning read-write transactions
func WithTxOptions(txOptions *sql.TxOptions) StoreOptionFunc {
	return func(s *Store) {
		s.txOptions = txOptions
	}
}

// WithConflictFunc specifies how commit errors are classified as conflicts
func WithConflictFunc(fn ConflictFunc) StoreOptionFunc {
	return func(s *Store) {
		s.isConflict = fn
	}
}

// New wraps an open GORM database and creates the record table
func New(db *gorm.DB, opts ...StoreOptionFunc) (*Store, error) {
	s := &Store{
		db: db,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	// Configure tracing for GORM
	if err := s.db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	s.logger.Debug(
		fmt.Sprintf("creating table: %#v", &Record{}),
		"component", "database",
	)
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return s, nil
}

// DB returns the underlying GORM database handle
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying database connections
func (s *Store) Close() error {
	sqlDb, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDb.Close()
}

// sqlTxn wraps a gorm transaction and implements types.Txn
type sqlTxn struct {
	store     *Store
	tx        *gorm.DB
	beginErr  error
	readWrite bool
	finished  bool
}

// NewTransaction begins a new transaction. Errors beginning the transaction
// are reported by the first operation that uses it
func (s *Store) NewTransaction(readWrite bool) types.Txn {
	var tx *gorm.DB
	if readWrite {
		tx = s.db.Begin(s.txOptions)
	} else {
		tx = s.db.Begin()
	}
	return &sqlTxn{
		store:     s,
		tx:        tx,
		beginErr:  tx.Error,
		readWrite: readWrite,
	}
}

func (t *sqlTxn) Commit() error {
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	t.finished = true
	// Nothing to persist for read-only transactions
	if !t.readWrite {
		return t.tx.Rollback().Error
	}
	return t.store.classify(t.tx.Commit().Error)
}

// classify marks serialization failures as transaction conflicts. Some
// engines report them on the statement that observed the conflict rather
// than on commit
func (s *Store) classify(err error) error {
	if err == nil {
		return nil
	}
	if s.isConflict != nil && s.isConflict(err) {
		return fmt.Errorf("%w: %w", types.ErrTxnConflict, err)
	}
	return err
}

func (t *sqlTxn) Rollback() error {
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	t.finished = true
	if err := t.tx.Rollback().Error; err != nil &&
		!errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

func (s *Store) validateTxn(txn types.Txn) (*sqlTxn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	tmpTxn, ok := txn.(*sqlTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if tmpTxn.store != s {
		return nil, errors.New("transaction from different store")
	}
	if tmpTxn.beginErr != nil {
		return nil, tmpTxn.beginErr
	}
	if tmpTxn.finished {
		return nil, types.ErrTxnFinished
	}
	return tmpTxn, nil
}

// Get retrieves a value within a transaction
func (s *Store) Get(txn types.Txn, key []byte) ([]byte, error) {
	tmpTxn, err := s.validateTxn(txn)
	if err != nil {
		return nil, err
	}
	var tmpRecord Record
	result := tmpTxn.tx.Where("record_key = ?", key).First(&tmpRecord)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, types.ErrRecordNotFound
		}
		return nil, s.classify(result.Error)
	}
	return tmpRecord.Value, nil
}

// Set stores a key-value pair within a transaction
func (s *Store) Set(txn types.Txn, key, val []byte) error {
	tmpTxn, err := s.validateTxn(txn)
	if err != nil {
		return err
	}
	if !tmpTxn.readWrite {
		return types.ErrTxnReadOnly
	}
	tmpRecord := Record{
		Key:   key,
		Value: val,
	}
	result := tmpTxn.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"record_value"}),
	}).Create(&tmpRecord)
	return s.classify(result.Error)
}

// Delete removes a key within a transaction
func (s *Store) Delete(txn types.Txn, key []byte) error {
	tmpTxn, err := s.validateTxn(txn)
	if err != nil {
		return err
	}
	if !tmpTxn.readWrite {
		return types.ErrTxnReadOnly
	}
	result := tmpTxn.tx.Where("record_key = ?", key).Delete(&Record{})
	return s.classify(result.Error)
}
