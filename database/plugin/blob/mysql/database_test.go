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

package mysql_test

import (
	"errors"
	"fmt"
	"testing"

	blobmysql "github.com/blinklabs-io/ballot/database/plugin/blob/mysql"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDSN(t *testing.T) {
	d := blobmysql.New()
	cfg, err := mysql.ParseDSN(d.DSN())
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "localhost:3306", cfg.Addr)
	assert.Equal(t, "ballot", cfg.DBName)
	assert.True(t, cfg.ParseTime)
}

func TestDSNFromOptions(t *testing.T) {
	d := blobmysql.New(
		blobmysql.WithHost("db.example.com"),
		blobmysql.WithPort(3307),
		blobmysql.WithUser("ballot"),
		blobmysql.WithPassword("secret"),
		blobmysql.WithDatabase("ballots"),
		blobmysql.WithTimeZone("Europe/Berlin"),
	)
	cfg, err := mysql.ParseDSN(d.DSN())
	require.NoError(t, err)
	assert.Equal(t, "ballot", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "db.example.com:3307", cfg.Addr)
	assert.Equal(t, "ballots", cfg.DBName)
}

func TestDSNOverride(t *testing.T) {
	dsn := "ballot:secret@tcp(localhost:3306)/ballots"
	d := blobmysql.New(
		blobmysql.WithHost("ignored"),
		blobmysql.WithDSN(dsn),
	)
	assert.Equal(t, dsn, d.DSN())
}

func TestIsConflict(t *testing.T) {
	deadlock := &mysql.MySQLError{Number: 1213}
	assert.True(t, blobmysql.IsConflict(deadlock))
	assert.True(t, blobmysql.IsConflict(fmt.Errorf("commit: %w", deadlock)))
	assert.True(t, blobmysql.IsConflict(&mysql.MySQLError{Number: 1205}))
	assert.False(t, blobmysql.IsConflict(&mysql.MySQLError{Number: 1062}))
	assert.False(t, blobmysql.IsConflict(errors.New("connection refused")))
}
