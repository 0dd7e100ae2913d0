// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ejmg/penumbra/chainstate"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/nct"
	"github.com/ejmg/penumbra/nullifier"
	"github.com/ejmg/penumbra/stake"
)

// heights are strictly sequential and even empty blocks leave a row
// with an anchor and app hash
func TestCommitSequence(t *testing.T) {
	setup(t)
	defer teardown(t)

	// out of sequence is refused before anything happens
	err := chainstate.Commit(2, &chainstate.BlockEffects{})
	assert.Equal(t, fault.OutOfSequenceBlock, err, "wrong error for skipped height")

	err = chainstate.Commit(1, &chainstate.BlockEffects{})
	assert.Nil(t, err, "commit error")
	assert.Equal(t, uint64(1), chainstate.Height(), "wrong height")

	anchor, appHash, err := chainstate.Block(1)
	assert.Nil(t, err, "block read error")
	assert.Equal(t, nct.CurrentAnchor(), anchor, "stored anchor differs from frontier root")
	assert.Equal(t, chainstate.LastAppHash(), appHash, "stored app hash differs")
	assert.True(t, nct.IsRecentAnchor(anchor), "committed anchor not published")

	// repeating a height is also out of sequence
	err = chainstate.Commit(1, &chainstate.BlockEffects{})
	assert.Equal(t, fault.OutOfSequenceBlock, err, "wrong error for repeated height")

	_, _, err = chainstate.Block(9)
	assert.Equal(t, fault.BlockNotFound, err, "wrong error for missing block")
}

// notes and nullifiers written by a block are readable afterwards and
// the app hash authenticates each height distinctly
func TestCommitEffects(t *testing.T) {
	setup(t)
	defer teardown(t)

	err := chainstate.Commit(1, &chainstate.BlockEffects{
		Notes:      []chainstate.NoteOutput{makeNote(1), makeNote(2)},
		Nullifiers: []nullifier.Nullifier{makeNullifier(1)},
	})
	assert.Nil(t, err, "commit error")

	err = chainstate.Commit(2, &chainstate.BlockEffects{
		Notes: []chainstate.NoteOutput{makeNote(3)},
	})
	assert.Nil(t, err, "commit error")

	fragments, err := nct.NotesInRange(1, 2)
	assert.Nil(t, err, "notes in range error")
	assert.Equal(t, 3, len(fragments), "wrong fragment count")
	assert.Equal(t, uint64(0), fragments[0].Position, "wrong first position")
	assert.Equal(t, uint64(2), fragments[2].Position, "wrong last position")

	height, spent := nullifier.IsSpent(makeNullifier(1))
	assert.True(t, spent, "nullifier not recorded")
	assert.Equal(t, uint64(1), height, "wrong spend height")

	anchor1, appHash1, err := chainstate.Block(1)
	assert.Nil(t, err, "block read error")
	anchor2, appHash2, err := chainstate.Block(2)
	assert.Nil(t, err, "block read error")
	assert.NotEqual(t, anchor1, anchor2, "anchor did not change")
	assert.NotEqual(t, appHash1, appHash2, "app hash did not change")
	assert.Equal(t, anchor2, chainstate.LastAnchor(), "wrong last anchor")
}

// a failing effect aborts the whole block: no row, no notes, no
// anchor movement
func TestCommitAtomicity(t *testing.T) {
	setup(t)
	defer teardown(t)

	err := chainstate.Commit(1, &chainstate.BlockEffects{
		Nullifiers: []nullifier.Nullifier{makeNullifier(7)},
	})
	assert.Nil(t, err, "commit error")

	anchor := chainstate.LastAnchor()
	position := nct.Position()

	// block 2 carries notes and a doubly spent nullifier
	err = chainstate.Commit(2, &chainstate.BlockEffects{
		Notes:      []chainstate.NoteOutput{makeNote(1), makeNote(2)},
		Nullifiers: []nullifier.Nullifier{makeNullifier(8), makeNullifier(7)},
	})
	assert.Equal(t, fault.DoubleSpend, err, "wrong error for double spend")

	assert.Equal(t, uint64(1), chainstate.Height(), "height moved on aborted block")
	assert.Equal(t, anchor, chainstate.LastAnchor(), "anchor moved on aborted block")
	assert.Equal(t, position, nct.Position(), "frontier moved on aborted block")

	_, _, err = chainstate.Block(2)
	assert.Equal(t, fault.BlockNotFound, err, "aborted block row is visible")

	fragments, err := nct.NotesInRange(2, 2)
	assert.Nil(t, err, "notes in range error")
	assert.Equal(t, 0, len(fragments), "aborted notes are visible")

	_, spent := nullifier.IsSpent(makeNullifier(8))
	assert.False(t, spent, "aborted nullifier is visible")

	// the same height commits cleanly without the conflict
	err = chainstate.Commit(2, &chainstate.BlockEffects{
		Notes:      []chainstate.NoteOutput{makeNote(1), makeNote(2)},
		Nullifiers: []nullifier.Nullifier{makeNullifier(8)},
	})
	assert.Nil(t, err, "commit error")
	assert.Equal(t, uint64(2), chainstate.Height(), "wrong height after retry")
}

// the first block of an epoch advances the rate ledger one epoch
// ahead and settles that epoch's delegations
func TestCommitEpochBoundary(t *testing.T) {
	setup(t)
	defer teardown(t)

	identity := makeIdentity(1)

	// drain the genesis validator's stake, effective at epoch 2
	err := chainstate.Commit(1, &chainstate.BlockEffects{
		Delegations: []chainstate.Delegation{
			{IdentityKey: identity, Epoch: 2, Delta: -100},
		},
	})
	assert.Nil(t, err, "commit error")

	// local chain epoch duration is 20 blocks
	for height := uint64(2); height < 20; height += 1 {
		err = chainstate.Commit(height, &chainstate.BlockEffects{})
		assert.Nil(t, err, "commit error")
	}

	epoch, found := stake.Epoch()
	assert.True(t, found, "no committed epoch")
	assert.Equal(t, uint64(1), epoch, "epoch advanced early")

	// height 20 opens epoch 1 and fixes the epoch 2 rates
	err = chainstate.Commit(20, &chainstate.BlockEffects{})
	assert.Nil(t, err, "commit error")

	epoch, _ = stake.Epoch()
	assert.Equal(t, uint64(2), epoch, "epoch not advanced")

	validator, err := stake.GetValidator(identity)
	assert.Nil(t, err, "get validator error")
	assert.Equal(t, int64(0), validator.VotingPower, "delegation not settled")
	assert.Equal(t, stake.Unbonding, validator.State, "expected unbonding")

	rate, err := stake.RateOf(identity, 2)
	assert.Nil(t, err, "rate of error")
	assert.Equal(t, uint64(stake.RateScale), rate.ExchangeRate, "wrong zero issuance exchange rate")
}
