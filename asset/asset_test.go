// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package asset_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ejmg/penumbra/asset"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/storage"
)

// test database file
const (
	databaseFileName = "test.leveldb"
)

func removeFiles() {
	os.RemoveAll(databaseFileName)
}

func setup(t *testing.T) {
	removeFiles()
	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	storage.Finalise()
	removeFiles()
}

func makeID(n byte) asset.ID {
	id := asset.ID{}
	id[0] = n
	return id
}

func upsert(t *testing.T, id asset.ID, denom string, delta int64, height uint64) error {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}
	err = asset.Upsert(trx, id, denom, delta, height)
	if nil != err {
		trx.Abort()
		return err
	}
	err = trx.Commit()
	if nil != err {
		t.Fatalf("transaction commit error: %s", err)
	}
	return nil
}

// mint then burn adjusts supply and tracks the touching height; the
// original denom is kept on later upserts
func TestUpsertAndGet(t *testing.T) {
	setup(t)
	defer teardown(t)

	id := makeID(1)

	err := upsert(t, id, "upenumbra", 1000, 1)
	assert.Nil(t, err, "upsert error")

	record, err := asset.Get(id)
	assert.Nil(t, err, "get error")
	assert.Equal(t, "upenumbra", record.Denom, "wrong denom")
	assert.Equal(t, int64(1000), record.TotalSupply, "wrong supply")
	assert.Equal(t, uint64(1), record.AsOfHeight, "wrong height")

	err = upsert(t, id, "ignored", -400, 5)
	assert.Nil(t, err, "upsert error")

	record, err = asset.Get(id)
	assert.Nil(t, err, "get error")
	assert.Equal(t, "upenumbra", record.Denom, "denom must not change on update")
	assert.Equal(t, int64(600), record.TotalSupply, "wrong adjusted supply")
	assert.Equal(t, uint64(5), record.AsOfHeight, "wrong as-of height")

	// burning more than exists fails and commits nothing
	err = upsert(t, id, "", -601, 6)
	assert.Equal(t, fault.InvalidSupply, err, "wrong error for negative supply")

	record, err = asset.Get(id)
	assert.Nil(t, err, "get error")
	assert.Equal(t, int64(600), record.TotalSupply, "failed burn changed supply")

	_, err = asset.Get(makeID(9))
	assert.Equal(t, fault.AssetNotFound, err, "wrong error for unknown asset")
}

// listing pages through the registry in id order
func TestList(t *testing.T) {
	setup(t)
	defer teardown(t)

	for n := byte(1); n <= 5; n += 1 {
		err := upsert(t, makeID(n), "denom", int64(n), 1)
		assert.Nil(t, err, "upsert error")
	}

	page, err := asset.List(nil, 3)
	assert.Nil(t, err, "list error")
	assert.Equal(t, 3, len(page), "wrong page size")
	assert.Equal(t, makeID(1), page[0].ID, "wrong first id")
	assert.Equal(t, makeID(3), page[2].ID, "wrong last id")

	// resume from after the last returned id
	next := make([]byte, asset.IDLength)
	copy(next, page[2].ID[:])
	next[asset.IDLength-1] += 1
	page, err = asset.List(next, 10)
	assert.Nil(t, err, "list error")
	assert.Equal(t, 2, len(page), "wrong remainder size")
	assert.Equal(t, makeID(4), page[0].ID, "wrong resumed id")

	_, err = asset.List(nil, 0)
	assert.Equal(t, fault.InvalidCount, err, "wrong error for zero count")
}
