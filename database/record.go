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
	"errors"
	"fmt"

	"github.com/blinklabs-io/ballot/address"
	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
)

// CreateResult is the outcome of TryCreateRecord
type CreateResult int

const (
	Created       CreateResult = 1
	AlreadyExists CreateResult = 2
)

func (r CreateResult) String() string {
	switch r {
	case Created:
		return "created"
	case AlreadyExists:
		return "already-exists"
	default:
		return "unknown"
	}
}

// GetRecord reads the record at addr into dst. It returns
// types.ErrRecordNotFound if nothing is stored at addr and
// types.ErrRecordKindMismatch if the stored record is of another kind
func (t *Txn) GetRecord(addr address.Address, dst models.Record) error {
	data, err := t.getRaw(addr)
	if err != nil {
		return err
	}
	return models.Decode(data, dst)
}

// HasRecord reports whether any record is stored at addr
func (t *Txn) HasRecord(addr address.Address) (bool, error) {
	_, err := t.getRaw(addr)
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TryCreateRecord stores rec at addr only if the address is empty. An
// existing record is left untouched and AlreadyExists is returned
func (t *Txn) TryCreateRecord(
	addr address.Address,
	rec models.Record,
) (CreateResult, error) {
	exists, err := t.HasRecord(addr)
	if err != nil {
		return 0, err
	}
	if exists {
		return AlreadyExists, nil
	}
	if err := t.PutRecord(addr, rec); err != nil {
		return 0, err
	}
	return Created, nil
}

// PutRecord stores rec at addr, replacing any existing record. The write is
// visible to later reads in the same transaction
func (t *Txn) PutRecord(addr address.Address, rec models.Record) error {
	if !t.readWrite {
		return types.ErrTxnReadOnly
	}
	if t.blobTxn == nil {
		return types.ErrBlobStoreUnavailable
	}
	data, err := models.Encode(rec)
	if err != nil {
		return err
	}
	key := types.RecordBlobKey(addr.Bytes())
	if err := t.db.Blob().Set(t.blobTxn, key, data); err != nil {
		return fmt.Errorf("set record %s: %w", addr.String(), err)
	}
	return nil
}

func (t *Txn) getRaw(addr address.Address) ([]byte, error) {
	if t.blobTxn == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	key := types.RecordBlobKey(addr.Bytes())
	data, err := t.db.Blob().Get(t.blobTxn, key)
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get record %s: %w", addr.String(), err)
	}
	return data, nil
}
