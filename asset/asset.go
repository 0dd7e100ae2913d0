// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package asset - registry of known asset denominations and supplies
//
// assets are upserted as blocks record mint and burn effects; the
// registry remembers the height an entry was last touched at so
// queries can report how fresh the supply figure is.
package asset

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/storage"
)

// IDLength - asset ids are fixed size
const IDLength = 32

// ID - an asset identifier
type ID [IDLength]byte

// String - hex string for printf
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// MarshalText - hex for JSON use
func (id ID) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(IDLength))
	hex.Encode(buffer, id[:])
	return buffer, nil
}

// UnmarshalText - hex to asset id
func (id *ID) UnmarshalText(s []byte) error {
	if hex.EncodedLen(IDLength) != len(s) {
		return fault.AssetNotFound
	}
	buffer := make([]byte, IDLength)
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(id[:], buffer)
	return nil
}

// IDFromBytes - convert a byte slice, which must be exactly IDLength
// bytes
func IDFromBytes(id *ID, buffer []byte) error {
	if IDLength != len(buffer) {
		return fault.AssetNotFound
	}
	copy(id[:], buffer)
	return nil
}

// Record - one registry entry
type Record struct {
	ID          ID     `json:"asset_id"`
	Denom       string `json:"denom"`
	TotalSupply int64  `json:"total_supply"`
	AsOfHeight  uint64 `json:"as_of_block_height"`
}

// stored value: height(8 BE) supply(8 BE) denom(rest)
func packRecord(record *Record) []byte {
	buffer := make([]byte, 16, 16+len(record.Denom))
	binary.BigEndian.PutUint64(buffer[:8], record.AsOfHeight)
	binary.BigEndian.PutUint64(buffer[8:], uint64(record.TotalSupply))
	return append(buffer, record.Denom...)
}

func unpackRecord(id ID, buffer []byte) (*Record, error) {
	if len(buffer) < 16 {
		return nil, fault.InvalidAssetRecord
	}
	return &Record{
		ID:          id,
		Denom:       string(buffer[16:]),
		TotalSupply: int64(binary.BigEndian.Uint64(buffer[8:16])),
		AsOfHeight:  binary.BigEndian.Uint64(buffer[:8]),
	}, nil
}

// Upsert - create or adjust a registry entry inside a block
// transaction
//
// a new asset starts with supply = delta; an existing one has the
// delta applied; the resulting supply may not go negative
func Upsert(trx storage.Transaction, id ID, denom string, supplyDelta int64, height uint64) error {
	record := &Record{
		ID:          id,
		Denom:       denom,
		TotalSupply: supplyDelta,
		AsOfHeight:  height,
	}

	if stored := trx.Get(storage.Pool.Assets, id[:]); nil != stored {
		existing, err := unpackRecord(id, stored)
		if nil != err {
			return err
		}
		record.Denom = existing.Denom
		record.TotalSupply = existing.TotalSupply + supplyDelta
	}

	if record.TotalSupply < 0 {
		return fault.InvalidSupply
	}

	trx.Put(storage.Pool.Assets, id[:], packRecord(record))
	return nil
}

// Get - fetch one registry entry
func Get(id ID) (*Record, error) {
	stored := storage.Pool.Assets.Get(id[:])
	if nil == stored {
		return nil, fault.AssetNotFound
	}
	return unpackRecord(id, stored)
}

// List - page through the registry in asset id order
//
// start is the key to resume from, nil for the beginning; returns up
// to count records
func List(start []byte, count int) ([]Record, error) {
	if count <= 0 {
		return nil, fault.InvalidCount
	}

	cursor := storage.Pool.Assets.NewFetchCursor()
	if nil != start {
		cursor.Seek(start)
	}

	elements, err := cursor.Fetch(count)
	if nil != err {
		return nil, err
	}

	records := make([]Record, 0, len(elements))
	for _, element := range elements {
		var id ID
		err := IDFromBytes(&id, element.Key)
		if nil != err {
			return nil, err
		}
		record, err := unpackRecord(id, element.Value)
		if nil != err {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}
