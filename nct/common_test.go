// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nct_test

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/nct"
	"github.com/ejmg/penumbra/storage"
)

// test files
const (
	testingDirName   = "testing"
	databaseFileName = "test.leveldb"
)

// remove all files created by test
func removeFiles() {
	os.RemoveAll(testingDirName)
	os.RemoveAll(databaseFileName)
}

// configure for testing
func setup(t *testing.T) {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)

	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}

	err = nct.Initialise()
	if nil != err {
		t.Fatalf("nct initialise error: %s", err)
	}
}

// post test cleanup
func teardown(t *testing.T) {
	_ = nct.Finalise()
	storage.Finalise()
	removeFiles()
}

// build a distinguishable fragment for a given sequence number
func makeFragment(n byte) *nct.NoteFragment {
	fragment := &nct.NoteFragment{}
	fragment.Commitment = merkle.NewDigest([]byte{'c', n})
	fragment.EphemeralKey[0] = n
	fragment.EncryptedNote[0] = n
	fragment.TransactionID[0] = n
	return fragment
}

// append fragments at one height and commit, simulating the per
// block write path
func commitNotes(t *testing.T, height uint64, fragments []*nct.NoteFragment) {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}

	for _, fragment := range fragments {
		_, err := nct.AddNote(trx, height, fragment)
		if nil != err {
			trx.Abort()
			t.Fatalf("add note error: %s", err)
		}
	}

	nct.Checkpoint(trx)

	// block record: anchor then app hash
	anchor := nct.CurrentAnchor()
	blockKey := make([]byte, 8)
	binary.BigEndian.PutUint64(blockKey, height)
	blockValue := make([]byte, 0, 2*merkle.DigestLength)
	blockValue = append(blockValue, anchor[:]...)
	blockValue = append(blockValue, anchor[:]...)
	trx.Put(storage.Pool.Blocks, blockKey, blockValue)

	err = trx.Commit()
	if nil != err {
		t.Fatalf("transaction commit error: %s", err)
	}

	nct.PublishAnchor(anchor)
}
