// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/ejmg/penumbra/fault"
)

// Access - database access with an in-flight write batch
type Access interface {
	Abort()
	Begin() error
	Commit() error
	DBGet([]byte) ([]byte, error)
	DBHas([]byte) (bool, error)
	Delete([]byte)
	Get([]byte) ([]byte, error)
	Has([]byte) (bool, error)
	InUse() bool
	Iterator(*ldb_util.Range) iterator.Iterator
	Put([]byte, []byte)
}

type AccessData struct {
	sync.Mutex
	inUse bool
	db    *leveldb.DB
	batch *leveldb.Batch
	cache Cache
}

func newDA(db *leveldb.DB, batch *leveldb.Batch, cache Cache) Access {
	return &AccessData{
		inUse: false,
		db:    db,
		batch: batch,
		cache: cache,
	}
}

func (d *AccessData) Begin() error {
	d.Lock()
	defer d.Unlock()

	if d.inUse {
		return fault.TransactionAlreadyInUse
	}

	d.inUse = true
	return nil
}

// Put - record a pending write
//
// the cache mirrors the batch so that reads inside the open
// transaction observe their own writes before commit
func (d *AccessData) Put(key []byte, value []byte) {
	d.cache.Set(dbPut, string(key), value)
	d.batch.Put(key, value)
}

func (d *AccessData) Delete(key []byte) {
	d.cache.Set(dbDelete, string(key), []byte{})
	d.batch.Delete(key)
}

// Commit - flush the batch to disk
//
// the batch and its cache mirror are discarded whether the write
// succeeds or not; on failure the transaction is over and the caller
// must re-apply its effects under a fresh Begin
func (d *AccessData) Commit() error {
	d.Lock()
	defer d.Unlock()

	err := d.db.Write(d.batch, nil)
	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
	return err
}

func (d *AccessData) Abort() {
	d.Lock()
	defer d.Unlock()

	d.batch.Reset()
	d.cache.Clear()
	d.inUse = false
}

// DBGet - read committed state only
//
// pending writes of an open transaction stay invisible until Commit
func (d *AccessData) DBGet(key []byte) ([]byte, error) {
	return d.db.Get(key, nil)
}

// DBHas - committed-state existence check
func (d *AccessData) DBHas(key []byte) (bool, error) {
	return d.db.Has(key, nil)
}

// Get - read through the batch mirror
//
// only for use inside an open transaction: a pending Put or Delete
// shadows the committed row
func (d *AccessData) Get(key []byte) ([]byte, error) {
	val, found, deleted := d.getFromCache(key)
	if deleted {
		return nil, leveldb.ErrNotFound
	}
	if found {
		return val, nil
	}
	return d.db.Get(key, nil)
}

func (d *AccessData) Has(key []byte) (bool, error) {
	_, found, deleted := d.getFromCache(key)
	if deleted {
		return false, nil
	}
	if found {
		return true, nil
	}
	return d.db.Has(key, nil)
}

func (d *AccessData) getFromCache(key []byte) ([]byte, bool, bool) {
	return d.cache.Get(string(key))
}

func (d *AccessData) Iterator(searchRange *ldb_util.Range) iterator.Iterator {
	return d.db.NewIterator(searchRange, nil)
}

func (d *AccessData) InUse() bool {
	d.Lock()
	defer d.Unlock()
	return d.inUse
}
