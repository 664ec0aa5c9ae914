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

package types

import (
	"errors"
)

// ErrRecordNotFound is returned by record operations when an address holds no record
var ErrRecordNotFound = errors.New("record not found")

// ErrRecordKindMismatch is returned when the record at an address is not of the requested kind
var ErrRecordKindMismatch = errors.New("record kind mismatch")

// ErrTxnWrongType is returned when a transaction has the wrong type
var ErrTxnWrongType = errors.New("invalid transaction type")

// ErrTxnReadOnly is returned when a write is attempted in a read-only transaction
var ErrTxnReadOnly = errors.New("transaction is read-only")

// ErrTxnFinished is returned when a committed or rolled back transaction is used
var ErrTxnFinished = errors.New("transaction already finished")

// ErrTxnConflict is returned on commit when a concurrent transaction modified
// an address read or written by this transaction. The transaction can be
// safely re-run from the start
var ErrTxnConflict = errors.New("transaction conflict")

// ErrNilTxn is returned when a nil transaction is provided where a valid transaction is required
var ErrNilTxn = errors.New("nil transaction")

// ErrBlobStoreUnavailable is returned when blob store cannot be accessed
var ErrBlobStoreUnavailable = errors.New("blob store unavailable")

// Txn is a simple transaction handle for commit/rollback only
type Txn interface {
	Commit() error
	Rollback() error
}
