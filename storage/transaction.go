// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/bitmark-inc/logger"
)

// Transaction - atomic multi-pool write batch
//
// all writes of one block commit go through a single transaction, so
// either every effect of the block becomes visible or none does
type Transaction interface {
	Begin() error
	Abort()
	Commit() error
	InUse() bool
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	GetN(*PoolHandle, []byte) (uint64, bool)
	Has(*PoolHandle, []byte) bool
}

type TransactionImpl struct {
	dataAccess Access
}

func newTransaction(access Access) Transaction {
	return &TransactionImpl{
		dataAccess: access,
	}
}

func (t *TransactionImpl) Begin() error {
	return t.dataAccess.Begin()
}

func (t *TransactionImpl) Abort() {
	t.dataAccess.Abort()
}

func (t *TransactionImpl) Commit() error {
	return t.dataAccess.Commit()
}

func (t *TransactionImpl) InUse() bool {
	return t.dataAccess.InUse()
}

func (t *TransactionImpl) Put(pool *PoolHandle, key []byte, value []byte) {
	pool.put(key, value)
}

// PutN - store a big endian uint64 record
func (t *TransactionImpl) PutN(pool *PoolHandle, key []byte, value uint64) {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, value)
	pool.put(key, buffer)
}

func (t *TransactionImpl) Delete(pool *PoolHandle, key []byte) {
	pool.remove(key)
}

// Get - read through the pending batch then the database
func (t *TransactionImpl) Get(pool *PoolHandle, key []byte) []byte {
	return pool.getPending(key)
}

func (t *TransactionImpl) GetN(pool *PoolHandle, key []byte) (uint64, bool) {
	buffer := pool.getPending(key)
	if nil == buffer {
		return 0, false
	}
	if len(buffer) < 8 {
		logger.Panicf("transaction.GetN truncated record for: %x: %x", key, buffer)
	}
	return binary.BigEndian.Uint64(buffer[:8]), true
}

// Has - existence check that also observes writes pending in this
// transaction, closing check-then-insert races within one commit
func (t *TransactionImpl) Has(pool *PoolHandle, key []byte) bool {
	return pool.hasPending(key)
}
