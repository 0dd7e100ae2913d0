// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nullifier - the set of revealed nullifiers
//
// every spend reveals one nullifier; recording it here is what
// prevents the same note being spent twice.  the primary pool maps
// nullifier onto the height it was revealed at, a second pool keyed
// by height supports the per block listing that compact blocks need.
package nullifier

import (
	"encoding/hex"

	"github.com/ejmg/penumbra/fault"
)

// Length - nullifiers are fixed size byte strings
const Length = 32

// Nullifier - a revealed spend tag
type Nullifier [Length]byte

// String - hex string for printf
func (nullifier Nullifier) String() string {
	return hex.EncodeToString(nullifier[:])
}

// MarshalText - hex for JSON and config use
func (nullifier Nullifier) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(Length))
	hex.Encode(buffer, nullifier[:])
	return buffer, nil
}

// UnmarshalText - hex to nullifier
func (nullifier *Nullifier) UnmarshalText(s []byte) error {
	if hex.EncodedLen(Length) != len(s) {
		return fault.InvalidNullifier
	}
	buffer := make([]byte, Length)
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(nullifier[:], buffer)
	return nil
}

// NullifierFromBytes - convert a byte slice, which must be exactly
// Length bytes
func NullifierFromBytes(nullifier *Nullifier, buffer []byte) error {
	if Length != len(buffer) {
		return fault.InvalidNullifier
	}
	copy(nullifier[:], buffer)
	return nil
}
