// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package compactblock - light client sync payloads
//
// a compact block is the minimal per height bundle a wallet needs to
// update its view: the note fragments created at that height and the
// nullifiers spent there.  the producer walks a height range one
// block at a time over committed state only, keeps no locks between
// pulls and can be repositioned at will, so a cancelled consumer
// costs nothing.
package compactblock

import (
	"github.com/ejmg/penumbra/chainstate"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/nct"
	"github.com/ejmg/penumbra/nullifier"
)

// StateFragment - the client visible part of one note fragment
type StateFragment struct {
	Position      uint64                        `json:"position"`
	Commitment    merkle.Digest                 `json:"note_commitment"`
	EphemeralKey  [nct.EphemeralKeyLength]byte  `json:"ephemeral_key"`
	EncryptedNote [nct.EncryptedNoteLength]byte `json:"encrypted_note"`
}

// CompactBlock - one height's payload
type CompactBlock struct {
	Height     uint64                `json:"height"`
	Fragments  []StateFragment       `json:"fragments"`
	Nullifiers []nullifier.Nullifier `json:"nullifiers"`
}

// Producer - a restartable walk over a height range
type Producer struct {
	next uint64
	last uint64
}

// NewProducer - create a producer for [lowHeight, highHeight]
//
// the range must be ascending and end at or below the committed tip
func NewProducer(lowHeight uint64, highHeight uint64) (*Producer, error) {
	if lowHeight > highHeight || highHeight > chainstate.Height() {
		return nil, fault.OutOfRangeHeight
	}
	return &Producer{
		next: lowHeight,
		last: highHeight,
	}, nil
}

// Seek - reposition within the producer's range
func (producer *Producer) Seek(height uint64) error {
	if height > producer.last {
		return fault.OutOfRangeHeight
	}
	producer.next = height
	return nil
}

// Next - pull one compact block
//
// the second result is false once the range is exhausted
func (producer *Producer) Next() (*CompactBlock, bool, error) {
	if producer.next > producer.last {
		return nil, false, nil
	}
	height := producer.next

	block, err := Get(height)
	if nil != err {
		return nil, false, err
	}

	producer.next = height + 1
	return block, true, nil
}

// Get - build the compact block for one committed height
func Get(height uint64) (*CompactBlock, error) {
	fragments, err := nct.NotesInRange(height, height)
	if nil != err {
		return nil, err
	}

	nullifiers, err := nullifier.SpentAt(height)
	if nil != err {
		return nil, err
	}

	block := &CompactBlock{
		Height:     height,
		Fragments:  make([]StateFragment, 0, len(fragments)),
		Nullifiers: nullifiers,
	}
	for _, fragment := range fragments {
		block.Fragments = append(block.Fragments, StateFragment{
			Position:      fragment.Position,
			Commitment:    fragment.Commitment,
			EphemeralKey:  fragment.EphemeralKey,
			EncryptedNote: fragment.EncryptedNote,
		})
	}
	return block, nil
}
