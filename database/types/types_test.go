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

package types_test

import (
	"bytes"
	"testing"

	"github.com/blinklabs-io/ballot/database/types"
)

func TestRecordBlobKey(t *testing.T) {
	addr := bytes.Repeat([]byte{0x5a}, 32)
	key := types.RecordBlobKey(addr)
	if len(key) != len(types.RecordBlobKeyPrefix)+len(addr) {
		t.Fatalf("unexpected key length: %d", len(key))
	}
	if !bytes.HasPrefix(key, []byte(types.RecordBlobKeyPrefix)) {
		t.Fatalf("key does not start with record prefix: %x", key)
	}
	if !bytes.Equal(key[len(types.RecordBlobKeyPrefix):], addr) {
		t.Fatalf("key does not end with address: %x", key)
	}
	// The input address must not be modified
	if !bytes.Equal(addr, bytes.Repeat([]byte{0x5a}, 32)) {
		t.Fatalf("input address was modified")
	}
}
