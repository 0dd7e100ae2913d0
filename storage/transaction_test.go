// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/storage"
)

func TestTransactionSingleWriter(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")

	// a second begin must fail while the first is open
	_, err = storage.NewDBTransaction()
	assert.Equal(t, fault.TransactionAlreadyInUse, err, "expected transaction in use")

	trx.Abort()

	// after abort a new transaction is possible
	trx, err = storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")
	err = trx.Commit()
	assert.Nil(t, err, "transaction commit failed")
}

func TestTransactionReadYourWrites(t *testing.T) {
	setup(t)
	defer teardown(t)

	pool := storage.Pool.Nullifiers

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")

	key := []byte("pending-key")
	trx.Put(pool, key, []byte("pending-value"))

	// the pending write must be observable inside the transaction
	assert.True(t, trx.Has(pool, key), "pending write not visible")
	assert.Equal(t, []byte("pending-value"), trx.Get(pool, key), "pending value not visible")

	trx.Abort()

	// after abort nothing must remain
	assert.False(t, pool.Has(key), "aborted write became visible")
	assert.Nil(t, pool.Get(key), "aborted value became visible")
}

func TestTransactionAbortDiscardsAll(t *testing.T) {
	setup(t)
	defer teardown(t)

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")
	trx.Put(storage.Pool.Blocks, []byte("b"), []byte("1"))
	trx.Put(storage.Pool.Notes, []byte("n"), []byte("2"))
	trx.Put(storage.Pool.Nullifiers, []byte("u"), []byte("3"))
	trx.Abort()

	assert.Nil(t, storage.Pool.Blocks.Get([]byte("b")), "block survived abort")
	assert.Nil(t, storage.Pool.Notes.Get([]byte("n")), "note survived abort")
	assert.Nil(t, storage.Pool.Nullifiers.Get([]byte("u")), "nullifier survived abort")
}

func TestCommittedReadIgnoresPending(t *testing.T) {
	setup(t)
	defer teardown(t)

	pool := storage.Pool.TestData

	storeElements(t, pool, makeElements([]stringElement{
		{"stable", "old"},
	}))

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")
	trx.Put(pool, []byte("fresh"), []byte("new"))
	trx.Delete(pool, []byte("stable"))

	// the committed view must not move while the transaction is open
	assert.False(t, pool.Has([]byte("fresh")), "pending write leaked to a reader")
	assert.Nil(t, pool.Get([]byte("fresh")), "pending value leaked to a reader")
	assert.Equal(t, []byte("old"), pool.Get([]byte("stable")), "pending delete leaked to a reader")

	err = trx.Commit()
	assert.Nil(t, err, "transaction commit failed")

	// after commit the new state is the committed view
	assert.Equal(t, []byte("new"), pool.Get([]byte("fresh")), "committed value missing")
	assert.Nil(t, pool.Get([]byte("stable")), "committed delete missing")
}

func TestCommitFailureReleasesWriter(t *testing.T) {
	setup(t)
	defer removeFiles()

	pool := storage.Pool.TestData

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")
	trx.Put(pool, []byte("doomed"), []byte("value"))

	// close the database underneath the open transaction
	storage.Finalise()

	err = trx.Commit()
	assert.NotNil(t, err, "commit on a closed database must fail")

	// a failed commit must not wedge the single writer
	assert.False(t, trx.InUse(), "writer still held after failed commit")
	_, err = storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed after failed commit")

	// reopen and check that nothing of the failed batch survived
	err = storage.Initialise(databaseFileName, storage.ReadWrite)
	assert.Nil(t, err, "storage initialise failed")
	defer storage.Finalise()
	assert.Nil(t, storage.Pool.TestData.Get([]byte("doomed")), "failed commit left data behind")
}

func TestTransactionDeleteMasksCommitted(t *testing.T) {
	setup(t)
	defer teardown(t)

	pool := storage.Pool.TestData
	key := []byte("to-delete")

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")
	trx.Put(pool, key, []byte("value"))
	err = trx.Commit()
	assert.Nil(t, err, "transaction commit failed")

	trx, err = storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin failed")
	trx.Delete(pool, key)

	// pending delete must mask the committed record
	assert.False(t, trx.Has(pool, key), "deleted key still visible")

	err = trx.Commit()
	assert.Nil(t, err, "transaction commit failed")
	assert.False(t, pool.Has(key), "deleted key still stored")
}
