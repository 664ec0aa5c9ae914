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

package voting

import (
	"crypto/ed25519"
	"encoding/hex"
	"strings"
)

// Caller is the public key of the identity invoking a transition. It is a
// seed of the caller's vote receipt address
type Caller []byte

// NewCaller returns the caller identity for an ed25519 public key
func NewCaller(pubKey ed25519.PublicKey) (Caller, error) {
	c := Caller(pubKey)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseCaller decodes a hex-encoded caller public key
func ParseCaller(s string) (Caller, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, ErrInvalidCaller
	}
	return NewCaller(data)
}

func (c Caller) Validate() error {
	if len(c) != ed25519.PublicKeySize {
		return ErrInvalidCaller
	}
	return nil
}

func (c Caller) String() string {
	return hex.EncodeToString(c)
}
