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
	"log/slog"
)

type BlobStorePostgresOptionFunc func(*BlobStorePostgres)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.logger = logger
	}
}

// WithHost specifies the Postgres host
func WithHost(host string) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.host = host
	}
}

// WithPort specifies the Postgres port
func WithPort(port uint) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.port = port
	}
}

// WithUser specifies the Postgres user
func WithUser(user string) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.user = user
	}
}

// WithPassword specifies the Postgres password
func WithPassword(password string) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.password = password
	}
}

// WithDatabase specifies the Postgres database name
func WithDatabase(database string) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.database = database
	}
}

// WithSSLMode specifies the Postgres sslmode
func WithSSLMode(sslMode string) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.sslMode = sslMode
	}
}

// WithTimeZone specifies the Postgres TimeZone
func WithTimeZone(timeZone string) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.timeZone = timeZone
	}
}

// WithDSN specifies a full Postgres DSN string and takes precedence over
// individual connection options
func WithDSN(dsn string) BlobStorePostgresOptionFunc {
	return func(d *BlobStorePostgres) {
		d.dsn = dsn
	}
}
