// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstate

import (
	"encoding/binary"

	"github.com/ejmg/penumbra/asset"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/jmt"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/nct"
	"github.com/ejmg/penumbra/nullifier"
	"github.com/ejmg/penumbra/stake"
	"github.com/ejmg/penumbra/storage"
)

// NoteOutput - one shielded output created by a block
type NoteOutput struct {
	Commitment    merkle.Digest
	EphemeralKey  [nct.EphemeralKeyLength]byte
	EncryptedNote [nct.EncryptedNoteLength]byte
	TransactionID [nct.TransactionIDLength]byte
}

// Definition - a validator (re)definition carried in a block
type Definition struct {
	Validator      *stake.Validator
	FundingStreams []stake.FundingStream
}

// Delegation - a delegation delta targeting an epoch
//
// the consensus layer decides which epoch a delegation takes effect
// in; the committer only records it
type Delegation struct {
	IdentityKey stake.IdentityKey
	Epoch       uint64
	Delta       int64
}

// SupplyUpdate - a mint or burn effect on one asset
type SupplyUpdate struct {
	AssetID asset.ID
	Denom   string
	Delta   int64
}

// BlockEffects - the already validated mutations of one block
type BlockEffects struct {
	Notes         []NoteOutput
	Nullifiers    []nullifier.Nullifier
	Definitions   []Definition
	Delegations   []Delegation
	SupplyUpdates []SupplyUpdate
}

// Commit - apply one block at the next height
//
// all effects are written through a single transaction; any failure
// aborts the whole block, rewinds the in-memory frontier and leaves
// the prior committed state untouched
func Commit(height uint64, effects *BlockEffects) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	if height != globalData.height+1 {
		globalData.log.Errorf("commit height: actual: %d  expected: %d", height, globalData.height+1)
		return fault.OutOfSequenceBlock
	}

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return err
	}

	err = applyEffects(trx, height, effects)
	if nil != err {
		trx.Abort()
		if rollbackErr := nct.Rollback(); nil != rollbackErr {
			globalData.log.Criticalf("frontier rollback error: %s", rollbackErr)
			return rollbackErr
		}
		globalData.log.Warnf("block %d aborted: %s", height, err)
		return err
	}

	anchor := nct.CurrentAnchor()
	appHash := globalData.tree.Put(trx, height, jmt.KeyDigest(anchorEntryName), anchor[:])

	nct.Checkpoint(trx)

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, height)
	row := make([]byte, 0, 2*merkle.DigestLength)
	row = append(row, anchor[:]...)
	row = append(row, appHash[:]...)
	trx.Put(storage.Pool.Blocks, key, row)

	err = trx.Commit()
	if nil != err {
		globalData.log.Criticalf("block %d commit error: %s", height, err)
		if rollbackErr := nct.Rollback(); nil != rollbackErr {
			return rollbackErr
		}
		return err
	}

	globalData.height = height
	globalData.lastAnchor = anchor
	globalData.lastAppHash = appHash
	nct.PublishAnchor(anchor)

	globalData.log.Infof("committed block: %d  anchor: %v", height, anchor)

	return nil
}

// write every block effect into the open transaction
func applyEffects(trx storage.Transaction, height uint64, effects *BlockEffects) error {
	for _, definition := range effects.Definitions {
		err := stake.DefineValidator(trx, definition.Validator, definition.FundingStreams)
		if nil != err {
			return err
		}
	}

	for i := range effects.Notes {
		note := &effects.Notes[i]
		fragment := &nct.NoteFragment{
			Commitment:    note.Commitment,
			EphemeralKey:  note.EphemeralKey,
			EncryptedNote: note.EncryptedNote,
			TransactionID: note.TransactionID,
		}
		_, err := nct.AddNote(trx, height, fragment)
		if nil != err {
			return err
		}
	}

	for _, spent := range effects.Nullifiers {
		err := nullifier.Spend(trx, spent, height)
		if nil != err {
			return err
		}
	}

	for _, delegation := range effects.Delegations {
		err := stake.RecordDelegationChange(trx, delegation.IdentityKey, delegation.Epoch, delegation.Delta)
		if nil != err {
			return err
		}
	}

	for _, update := range effects.SupplyUpdates {
		err := asset.Upsert(trx, update.AssetID, update.Denom, update.Delta, height)
		if nil != err {
			return err
		}
	}

	// the first block of an epoch fixes the rates one epoch ahead,
	// keeping the next epoch's rates always known for delegations
	if 0 == height%globalData.params.EpochDuration {
		newEpoch := height / globalData.params.EpochDuration
		err := stake.AdvanceEpoch(trx, newEpoch+1, globalData.issuance, globalData.params.UnbondingEpochs)
		if nil != err {
			return err
		}
	}

	return nil
}
