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
	"log/slog"
)

type BlobStoreMysqlOptionFunc func(*BlobStoreMysql)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.logger = logger
	}
}

// WithHost specifies the MySQL host
func WithHost(host string) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.host = host
	}
}

// WithPort specifies the MySQL port
func WithPort(port uint) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.port = port
	}
}

func WithUser(user string) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.user = user
	}
}

func WithPassword(password string) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.password = password
	}
}

func WithDatabase(database string) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.database = database
	}
}

// WithSSLMode specifies the TLS mode, mapped to tls= in the DSN
func WithSSLMode(sslMode string) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.sslMode = sslMode
	}
}

// WithTimeZone specifies the time zone location of the connection
func WithTimeZone(timeZone string) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.timeZone = timeZone
	}
}

// WithDSN specifies a full MySQL DSN and takes precedence over individual
// connection options
func WithDSN(dsn string) BlobStoreMysqlOptionFunc {
	return func(d *BlobStoreMysql) {
		d.dsn = dsn
	}
}
