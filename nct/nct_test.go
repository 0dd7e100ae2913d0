// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nct_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/nct"
	"github.com/ejmg/penumbra/storage"
)

// appended notes get sequential positions and are readable back by
// range and by commitment
func TestAddNoteStoresFragments(t *testing.T) {
	setup(t)
	defer teardown(t)

	fragments := []*nct.NoteFragment{
		makeFragment(1),
		makeFragment(2),
		makeFragment(3),
	}
	commitNotes(t, 1, fragments)

	assert.Equal(t, uint64(3), nct.Position(), "wrong tree position")

	for i, fragment := range fragments {
		assert.Equal(t, uint64(1), fragment.Height, "wrong height")
		assert.Equal(t, uint64(i), fragment.Position, "wrong position")
	}

	stored, err := nct.NotesInRange(1, 1)
	assert.Nil(t, err, "notes in range error")
	assert.Equal(t, 3, len(stored), "wrong fragment count")
	for i, fragment := range stored {
		assert.Equal(t, fragments[i].Commitment, fragment.Commitment, "wrong commitment")
		assert.Equal(t, fragments[i].EphemeralKey, fragment.EphemeralKey, "wrong ephemeral key")
		assert.Equal(t, fragments[i].EncryptedNote, fragment.EncryptedNote, "wrong encrypted note")
		assert.Equal(t, fragments[i].TransactionID, fragment.TransactionID, "wrong transaction id")
	}

	found, err := nct.NoteByCommitment(fragments[1].Commitment)
	assert.Nil(t, err, "note by commitment error")
	assert.Equal(t, uint64(1), found.Position, "wrong indexed position")

	_, err = nct.NoteByCommitment(merkle.NewDigest([]byte("missing")))
	assert.Equal(t, fault.NoteNotFound, err, "wrong error for missing note")
}

// fragments from several blocks come back in height then position
// order and the range bounds are inclusive
func TestNotesInRangeOrdering(t *testing.T) {
	setup(t)
	defer teardown(t)

	commitNotes(t, 1, []*nct.NoteFragment{makeFragment(1)})
	commitNotes(t, 2, []*nct.NoteFragment{makeFragment(2), makeFragment(3)})
	commitNotes(t, 3, []*nct.NoteFragment{makeFragment(4)})

	stored, err := nct.NotesInRange(2, 3)
	assert.Nil(t, err, "notes in range error")
	assert.Equal(t, 3, len(stored), "wrong fragment count")
	assert.Equal(t, uint64(2), stored[0].Height, "wrong first height")
	assert.Equal(t, uint64(1), stored[0].Position, "wrong first position")
	assert.Equal(t, uint64(3), stored[2].Height, "wrong last height")

	_, err = nct.NotesInRange(3, 2)
	assert.Equal(t, fault.OutOfRangeHeight, err, "wrong error for inverted range")

	empty, err := nct.NotesInRange(10, 20)
	assert.Nil(t, err, "empty range error")
	assert.Equal(t, 0, len(empty), "expected no fragments")
}

// aborting a block restores the frontier to its last committed state
func TestRollbackRestoresFrontier(t *testing.T) {
	setup(t)
	defer teardown(t)

	commitNotes(t, 1, []*nct.NoteFragment{makeFragment(1)})
	anchor := nct.CurrentAnchor()
	position := nct.Position()

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction begin error")

	_, err = nct.AddNote(trx, 2, makeFragment(2))
	assert.Nil(t, err, "add note error")
	assert.NotEqual(t, anchor, nct.CurrentAnchor(), "anchor did not advance")

	trx.Abort()
	err = nct.Rollback()
	assert.Nil(t, err, "rollback error")

	assert.Equal(t, anchor, nct.CurrentAnchor(), "anchor not restored")
	assert.Equal(t, position, nct.Position(), "position not restored")

	stored, err := nct.NotesInRange(2, 2)
	assert.Nil(t, err, "notes in range error")
	assert.Equal(t, 0, len(stored), "aborted fragment was stored")
}

// a restart resumes from the checkpoint with the same anchor and a
// refilled recent anchor ring
func TestCheckpointSurvivesRestart(t *testing.T) {
	setup(t)
	defer teardown(t)

	commitNotes(t, 1, []*nct.NoteFragment{makeFragment(1), makeFragment(2)})
	commitNotes(t, 2, []*nct.NoteFragment{makeFragment(3)})

	anchor := nct.CurrentAnchor()
	position := nct.Position()

	err := nct.Finalise()
	assert.Nil(t, err, "finalise error")

	err = nct.Initialise()
	assert.Nil(t, err, "initialise error")

	assert.Equal(t, anchor, nct.CurrentAnchor(), "anchor lost over restart")
	assert.Equal(t, position, nct.Position(), "position lost over restart")
	assert.True(t, nct.IsRecentAnchor(anchor), "latest anchor missing from ring")

	// appending after restart continues the same tree
	commitNotes(t, 3, []*nct.NoteFragment{makeFragment(4)})
	assert.Equal(t, position+1, nct.Position(), "wrong position after restart append")
}

// the ring holds only the most recent anchors, newest first
func TestRecentAnchorRing(t *testing.T) {
	setup(t)
	defer teardown(t)

	anchors := make([]merkle.Digest, 0, nct.NumRecentAnchors+4)
	for i := 0; i < nct.NumRecentAnchors+4; i += 1 {
		anchor := merkle.NewDigest([]byte{'a', byte(i)})
		nct.PublishAnchor(anchor)
		anchors = append(anchors, anchor)
	}

	assert.False(t, nct.IsRecentAnchor(anchors[0]), "expired anchor still recent")
	assert.False(t, nct.IsRecentAnchor(anchors[3]), "expired anchor still recent")
	assert.True(t, nct.IsRecentAnchor(anchors[4]), "oldest retained anchor missing")
	assert.True(t, nct.IsRecentAnchor(anchors[len(anchors)-1]), "newest anchor missing")

	recent := nct.RecentAnchors(3)
	assert.Equal(t, 3, len(recent), "wrong anchor count")
	assert.Equal(t, anchors[len(anchors)-1], recent[0], "wrong newest anchor")
	assert.Equal(t, anchors[len(anchors)-3], recent[2], "wrong third anchor")
}

// the pruning floor only moves forward and stays within the tree
func TestMarkPruned(t *testing.T) {
	setup(t)
	defer teardown(t)

	commitNotes(t, 1, []*nct.NoteFragment{
		makeFragment(1), makeFragment(2), makeFragment(3),
	})

	assert.Equal(t, uint64(0), nct.PrunedFloor(), "initial floor not zero")

	err := nct.MarkPruned(2)
	assert.Nil(t, err, "mark pruned error")
	assert.Equal(t, uint64(2), nct.PrunedFloor(), "floor not raised")

	// regressions are ignored
	err = nct.MarkPruned(1)
	assert.Nil(t, err, "mark pruned error")
	assert.Equal(t, uint64(2), nct.PrunedFloor(), "floor moved backwards")

	// beyond the end of the tree is rejected
	err = nct.MarkPruned(100)
	assert.Equal(t, fault.OutOfRangeHeight, err, "wrong error for out of range floor")
	assert.Equal(t, uint64(2), nct.PrunedFloor(), "floor changed on error")
}
