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

package address

import (
	"bytes"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

const (
	// AddressLength is the size in bytes of a derived address
	AddressLength = 32
	// MaxSeeds is the maximum number of seeds accepted for a single derivation
	MaxSeeds = 16
	// MaxSeedLength is the maximum length in bytes of a single seed
	MaxSeedLength = 32

	addressHrp    = "ballot"
	derivationTag = "ProgramDerivedAddress"
	programLabel  = "ballot/voting/v1"
)

var (
	ErrMaxSeeds          = errors.New("too many seeds")
	ErrMaxSeedLength     = errors.New("seed exceeds maximum length")
	ErrNoViableBump      = errors.New("unable to find a viable bump seed")
	ErrOnCurve           = errors.New("derived address lies on the ed25519 curve")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidAddressHrp = errors.New("invalid address prefix")
)

// Address identifies the location of a record in the record store
type Address [AddressLength]byte

// ProgramId identifies the program that owns a family of derived addresses.
// Addresses derived from the same seeds under different programs never collide
type ProgramId = Address

// DefaultProgramId is the program ID used when none is configured
var DefaultProgramId = ProgramId(blake2b.Sum256([]byte(programLabel)))

func (a Address) Bytes() []byte {
	return bytes.Clone(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the bech32 representation of the address
func (a Address) String() string {
	convData, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		return fmt.Sprintf("%x", a[:])
	}
	encoded, err := bech32.Encode(addressHrp, convData)
	if err != nil {
		return fmt.Sprintf("%x", a[:])
	}
	return encoded
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	tmp, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// ParseAddress decodes a bech32 address string
func ParseAddress(addr string) (Address, error) {
	var ret Address
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if hrp != addressHrp {
		return ret, fmt.Errorf("%w: %s", ErrInvalidAddressHrp, hrp)
	}
	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return ret, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(decoded) != AddressLength {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidAddress,
			AddressLength,
			len(decoded),
		)
	}
	copy(ret[:], decoded)
	return ret, nil
}

// CreateProgramAddress derives the address for the given seeds and bump under
// the given program. The result must lie off the ed25519 curve, which ensures
// that no private key exists for it
func CreateProgramAddress(
	programId ProgramId,
	bump uint8,
	seeds ...[]byte,
) (Address, error) {
	var ret Address
	if len(seeds) > MaxSeeds {
		return ret, ErrMaxSeeds
	}
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return ret, err
	}
	for idx, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return ret, fmt.Errorf(
				"%w: seed %d is %d bytes",
				ErrMaxSeedLength,
				idx,
				len(seed),
			)
		}
		// Length-prefix each seed so that seed boundaries are part of the hash input
		hasher.Write([]byte{byte(len(seed))})
		hasher.Write(seed)
	}
	hasher.Write([]byte{bump})
	hasher.Write(programId[:])
	hasher.Write([]byte(derivationTag))
	copy(ret[:], hasher.Sum(nil))
	if isOnCurve(ret[:]) {
		return Address{}, ErrOnCurve
	}
	return ret, nil
}

// FindProgramAddress searches for the highest bump value that produces a valid
// (off-curve) address for the given seeds
func FindProgramAddress(
	programId ProgramId,
	seeds ...[]byte,
) (Address, uint8, error) {
	for bump := 255; bump >= 0; bump-- {
		addr, err := CreateProgramAddress(programId, uint8(bump), seeds...)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Address{}, 0, err
		}
	}
	return Address{}, 0, ErrNoViableBump
}

func isOnCurve(data []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(data)
	return err == nil
}
