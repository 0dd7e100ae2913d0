// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstate_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/chain"
	"github.com/ejmg/penumbra/chainstate"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/nct"
	"github.com/ejmg/penumbra/nullifier"
	"github.com/ejmg/penumbra/stake"
	"github.com/ejmg/penumbra/storage"
)

// test files
const (
	testingDirName   = "testing"
	databaseFileName = "test.leveldb"
)

func removeFiles() {
	os.RemoveAll(testingDirName)
	os.RemoveAll(databaseFileName)
}

// bring up the whole committer stack on a fresh store
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

	_ = mode.Initialise(chain.Local)

	err := storage.Initialise(databaseFileName, storage.ReadWrite)
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}

	writeGenesisRates(t)

	err = nct.Initialise()
	if nil != err {
		t.Fatalf("nct initialise error: %s", err)
	}

	err = chainstate.Initialise(stake.FixedIssuance(0))
	if nil != err {
		t.Fatalf("chainstate initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	_ = chainstate.Finalise()
	_ = nct.Finalise()
	storage.Finalise()
	_ = mode.Finalise()
	removeFiles()
}

// base and validator rates for epochs 0 and 1: zero reward, unit
// exchange rate
func writeGenesisRates(t *testing.T) {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}

	validator := &stake.Validator{
		IdentityKey:    makeIdentity(1),
		ConsensusKey:   []byte{'k', 1},
		SequenceNumber: 1,
		Name:           "genesis validator",
		VotingPower:    100,
		State:          stake.Active,
	}
	err = stake.DefineValidator(trx, validator, nil)
	if nil != err {
		trx.Abort()
		t.Fatalf("define validator error: %s", err)
	}

	stake.WriteGenesisRates(trx, []stake.IdentityKey{validator.IdentityKey})

	err = trx.Commit()
	if nil != err {
		t.Fatalf("transaction commit error: %s", err)
	}
}

func makeIdentity(n byte) stake.IdentityKey {
	identity := stake.IdentityKey{}
	identity[0] = n
	return identity
}

func makeNote(n byte) chainstate.NoteOutput {
	note := chainstate.NoteOutput{}
	note.Commitment = merkle.NewDigest([]byte{'c', n})
	note.EphemeralKey[0] = n
	note.EncryptedNote[0] = n
	note.TransactionID[0] = n
	return note
}

func makeNullifier(n byte) nullifier.Nullifier {
	value := nullifier.Nullifier{}
	value[0] = n
	return value
}
