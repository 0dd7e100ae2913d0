// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stake

import (
	"github.com/mr-tron/base58"

	"github.com/ejmg/penumbra/fault"
)

// IdentityKeyLength - identity keys are fixed size
const IdentityKeyLength = 32

// IdentityKey - a validator's long term identity
type IdentityKey [IdentityKeyLength]byte

// String - base58 string for printf
func (identity IdentityKey) String() string {
	return base58.Encode(identity[:])
}

// MarshalText - base58 for JSON use
func (identity IdentityKey) MarshalText() ([]byte, error) {
	return []byte(base58.Encode(identity[:])), nil
}

// UnmarshalText - base58 to identity key
func (identity *IdentityKey) UnmarshalText(s []byte) error {
	buffer, err := base58.Decode(string(s))
	if nil != err {
		return err
	}
	return IdentityKeyFromBytes(identity, buffer)
}

// IdentityKeyFromBytes - convert a byte slice, which must be exactly
// IdentityKeyLength bytes
func IdentityKeyFromBytes(identity *IdentityKey, buffer []byte) error {
	if IdentityKeyLength != len(buffer) {
		return fault.InvalidIdentityKey
	}
	copy(identity[:], buffer)
	return nil
}
