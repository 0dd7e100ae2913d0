// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nullifier

import (
	"encoding/binary"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/storage"
)

// Spend - record a revealed nullifier inside a block transaction
//
// the existence check observes writes already pending in the same
// transaction, so two spends of one note inside one block are also
// caught
func Spend(trx storage.Transaction, nullifier Nullifier, height uint64) error {
	if trx.Has(storage.Pool.Nullifiers, nullifier[:]) {
		return fault.DoubleSpend
	}

	trx.PutN(storage.Pool.Nullifiers, nullifier[:], height)

	heightKey := make([]byte, 8+Length)
	binary.BigEndian.PutUint64(heightKey[:8], height)
	copy(heightKey[8:], nullifier[:])
	trx.Put(storage.Pool.NullifiersByHeight, heightKey, []byte{})

	return nil
}

// IsSpent - check a single nullifier, returning the height it was
// revealed at
func IsSpent(nullifier Nullifier) (uint64, bool) {
	return storage.Pool.Nullifiers.GetN(nullifier[:])
}

// AreSpent - filter a batch of nullifiers down to the already spent
// ones
//
// an empty input yields an empty result
func AreSpent(nullifiers []Nullifier) []Nullifier {
	spent := []Nullifier{}
	for _, nullifier := range nullifiers {
		if storage.Pool.Nullifiers.Has(nullifier[:]) {
			spent = append(spent, nullifier)
		}
	}
	return spent
}

// SpendRecord - one revealed nullifier and the height that revealed it
type SpendRecord struct {
	Height    uint64
	Nullifier Nullifier
}

// SpentAt - all nullifiers revealed in one block, in byte order
func SpentAt(height uint64) ([]Nullifier, error) {
	spends, err := scanByHeight(height, height)
	if nil != err {
		return nil, err
	}
	nullifiers := make([]Nullifier, len(spends))
	for i, s := range spends {
		nullifiers[i] = s.Nullifier
	}
	return nullifiers, nil
}

// SpentInRange - all spends with: lowHeight <= height <= highHeight
//
// ordered by height then nullifier bytes
func SpentInRange(lowHeight uint64, highHeight uint64) ([]SpendRecord, error) {
	if lowHeight > highHeight {
		return nil, fault.OutOfRangeHeight
	}
	return scanByHeight(lowHeight, highHeight)
}

func scanByHeight(lowHeight uint64, highHeight uint64) ([]SpendRecord, error) {
	start := make([]byte, 8)
	binary.BigEndian.PutUint64(start, lowHeight)

	cursor := storage.Pool.NullifiersByHeight.NewFetchCursor().Seek(start)
	if limit := highHeight + 1; limit > highHeight {
		limitKey := make([]byte, 8)
		binary.BigEndian.PutUint64(limitKey, limit)
		cursor.LimitTo(limitKey)
	}

	spends := []SpendRecord{}
	err := cursor.Map(func(key []byte, value []byte) error {
		var nullifier Nullifier
		err := NullifierFromBytes(&nullifier, key[8:])
		if nil != err {
			return err
		}
		spends = append(spends, SpendRecord{
			Height:    binary.BigEndian.Uint64(key[:8]),
			Nullifier: nullifier,
		})
		return nil
	})
	if nil != err {
		return nil, err
	}
	return spends, nil
}
