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

package models

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/blinklabs-io/ballot/database/types"
	"github.com/blinklabs-io/gouroboros/cbor"
	"golang.org/x/crypto/blake2b"
)

// DiscriminatorLength is the length of the kind prefix on every stored record
const DiscriminatorLength = 8

var ErrRecordTruncated = errors.New("record shorter than discriminator")

// Record is implemented by every value stored at a derived address
type Record interface {
	RecordKind() string
	Validate() error
}

// Discriminator returns the prefix identifying records of the given kind
func Discriminator(kind string) []byte {
	sum := blake2b.Sum256([]byte("record:" + kind))
	return sum[:DiscriminatorLength]
}

// Encode returns the stored form of a record: its kind discriminator
// followed by the CBOR encoding of the record
func Encode(rec Record) ([]byte, error) {
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("encode %s: %w", rec.RecordKind(), err)
	}
	recCbor, err := cbor.Encode(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", rec.RecordKind(), err)
	}
	return append(Discriminator(rec.RecordKind()), recCbor...), nil
}

// Decode checks the kind discriminator of stored data and decodes it into dst
func Decode(data []byte, dst Record) error {
	if len(data) < DiscriminatorLength {
		return ErrRecordTruncated
	}
	if !bytes.Equal(data[:DiscriminatorLength], Discriminator(dst.RecordKind())) {
		return fmt.Errorf(
			"%w: expected %s",
			types.ErrRecordKindMismatch,
			dst.RecordKind(),
		)
	}
	if _, err := cbor.Decode(data[DiscriminatorLength:], dst); err != nil {
		return fmt.Errorf("decode %s: %w", dst.RecordKind(), err)
	}
	if err := dst.Validate(); err != nil {
		return fmt.Errorf("decode %s: %w", dst.RecordKind(), err)
	}
	return nil
}
