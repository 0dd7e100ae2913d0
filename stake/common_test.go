// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stake_test

import (
	"os"
	"testing"

	"github.com/ejmg/penumbra/stake"
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

// make a distinguishable identity key
func makeIdentity(n byte) stake.IdentityKey {
	identity := stake.IdentityKey{}
	identity[0] = n
	identity[stake.IdentityKeyLength-1] = n
	return identity
}

func makeValidator(n byte, power int64) *stake.Validator {
	return &stake.Validator{
		IdentityKey:    makeIdentity(n),
		ConsensusKey:   []byte{'k', n},
		SequenceNumber: 1,
		Name:           "validator",
		Website:        "https://example.com",
		Description:    "a test validator",
		VotingPower:    power,
		State:          stake.Active,
	}
}

// write the genesis baseline: zero reward, unit exchange rate for
// epochs 0 and 1, defined validators with their epoch 0 and 1 rates
func setupGenesisRates(t *testing.T, validators []*stake.Validator, streams map[byte][]stake.FundingStream) {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}

	identities := make([]stake.IdentityKey, len(validators))
	for i, validator := range validators {
		identities[i] = validator.IdentityKey
	}
	stake.WriteGenesisRates(trx, identities)

	for _, validator := range validators {
		validatorStreams := []stake.FundingStream{}
		if nil != streams {
			validatorStreams = streams[validator.IdentityKey[0]]
		}
		err = stake.DefineValidator(trx, validator, validatorStreams)
		if nil != err {
			trx.Abort()
			t.Fatalf("define validator error: %s", err)
		}
	}

	err = trx.Commit()
	if nil != err {
		t.Fatalf("transaction commit error: %s", err)
	}
}

// run one epoch advance in its own transaction
func advance(t *testing.T, epoch uint64, issuance stake.IssuanceSchedule, unbondingEpochs uint64) error {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}
	err = stake.AdvanceEpoch(trx, epoch, issuance, unbondingEpochs)
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

// record a delegation delta in its own transaction
func delegate(t *testing.T, identity stake.IdentityKey, epoch uint64, delta int64) {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		t.Fatalf("transaction begin error: %s", err)
	}
	err = stake.RecordDelegationChange(trx, identity, epoch, delta)
	if nil != err {
		trx.Abort()
		t.Fatalf("record delegation change error: %s", err)
	}
	err = trx.Commit()
	if nil != err {
		t.Fatalf("transaction commit error: %s", err)
	}
}
