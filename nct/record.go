// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nct

import (
	"encoding/binary"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/merkle"
)

// byte sizes of the fixed length fragment fields
const (
	EphemeralKeyLength  = 32
	EncryptedNoteLength = 132
	TransactionIDLength = 32
)

// NoteFragment - the per-output data a light client needs for trial
// decryption
//
// Height and Position are carried in the pool key; the stored value
// holds only the remaining fields
type NoteFragment struct {
	Height        uint64
	Position      uint64
	Commitment    merkle.Digest
	EphemeralKey  [EphemeralKeyLength]byte
	EncryptedNote [EncryptedNoteLength]byte
	TransactionID [TransactionIDLength]byte
}

const packedFragmentSize = merkle.DigestLength + EphemeralKeyLength + EncryptedNoteLength + TransactionIDLength

// noteKey - big endian height then position, so a whole pool scan
// yields fragments in chain order
func noteKey(height uint64, position uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], height)
	binary.BigEndian.PutUint64(key[8:], position)
	return key
}

// pack the stored value portion of a fragment
func (fragment *NoteFragment) pack() []byte {
	buffer := make([]byte, 0, packedFragmentSize)
	buffer = append(buffer, fragment.Commitment[:]...)
	buffer = append(buffer, fragment.EphemeralKey[:]...)
	buffer = append(buffer, fragment.EncryptedNote[:]...)
	buffer = append(buffer, fragment.TransactionID[:]...)
	return buffer
}

// unpack a stored value, taking height and position from the key
func unpackFragment(key []byte, value []byte) (*NoteFragment, error) {
	if 16 != len(key) || packedFragmentSize != len(value) {
		return nil, fault.InvalidNoteRecord
	}

	fragment := &NoteFragment{
		Height:   binary.BigEndian.Uint64(key[:8]),
		Position: binary.BigEndian.Uint64(key[8:]),
	}

	n := copy(fragment.Commitment[:], value)
	n += copy(fragment.EphemeralKey[:], value[n:])
	n += copy(fragment.EncryptedNote[:], value[n:])
	copy(fragment.TransactionID[:], value[n:])

	return fragment, nil
}
