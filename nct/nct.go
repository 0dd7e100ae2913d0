// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nct

import (
	"encoding/binary"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/storage"
)

// AddNote - append a note commitment to the tree and store its
// fragment inside the supplied transaction
//
// returns the tree position assigned to the commitment
//
// the in-memory frontier advances immediately; a caller that aborts
// the transaction must also call Rollback to rewind the frontier to
// the last committed checkpoint
func AddNote(trx storage.Transaction, height uint64, fragment *NoteFragment) (uint64, error) {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return 0, fault.NotInitialised
	}

	position, err := globalData.frontier.Append(fragment.Commitment)
	if nil != err {
		return 0, err
	}

	fragment.Height = height
	fragment.Position = position

	key := noteKey(height, position)
	trx.Put(storage.Pool.Notes, key, fragment.pack())
	trx.Put(storage.Pool.NoteCommitmentIndex, fragment.Commitment[:], key)

	return position, nil
}

// CurrentAnchor - root of the tree as it stands now, including any
// uncommitted appends
func CurrentAnchor() merkle.Digest {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.frontier.Root()
}

// Position - number of commitments appended so far
func Position() uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.frontier.Position()
}

// Checkpoint - write the packed frontier into the transaction so it
// commits atomically with the block that produced it
func Checkpoint(trx storage.Transaction) {
	globalData.RLock()
	defer globalData.RUnlock()
	trx.Put(storage.Pool.Blobs, frontierBlobKey, globalData.frontier.Pack())
}

// Rollback - discard uncommitted appends by restoring the frontier
// from the last committed checkpoint
//
// call after aborting the transaction the appends were part of
func Rollback() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	packed := storage.Pool.Blobs.Get(frontierBlobKey)
	if nil == packed {
		globalData.frontier = merkle.NewFrontier()
		return nil
	}

	frontier, err := merkle.UnpackFrontier(packed)
	if nil != err {
		return err
	}
	globalData.frontier = frontier
	return nil
}

// PublishAnchor - record a committed block's anchor in the recent
// ring, making it acceptable for incoming transactions
func PublishAnchor(anchor merkle.Digest) {
	globalData.Lock()
	ringPush(anchor)
	globalData.Unlock()
}

// must hold lock to call this
func ringPush(anchor merkle.Digest) {
	globalData.ring[globalData.ringIndex] = anchor
	globalData.ringIndex += 1
	if globalData.ringIndex >= NumRecentAnchors {
		globalData.ringIndex = 0
	}
	if globalData.ringCount < NumRecentAnchors {
		globalData.ringCount += 1
	}
}

// IsRecentAnchor - check an anchor is one of the recent published
// roots
func IsRecentAnchor(anchor merkle.Digest) bool {
	globalData.RLock()
	defer globalData.RUnlock()

	for i := 0; i < globalData.ringCount; i += 1 {
		j := globalData.ringIndex - 1 - i
		if j < 0 {
			j += NumRecentAnchors
		}
		if anchor == globalData.ring[j] {
			return true
		}
	}
	return false
}

// RecentAnchors - up to n anchors, most recent first
func RecentAnchors(n int) []merkle.Digest {
	globalData.RLock()
	defer globalData.RUnlock()

	if n > globalData.ringCount {
		n = globalData.ringCount
	}
	if n <= 0 {
		return nil
	}

	anchors := make([]merkle.Digest, 0, n)
	for i := 0; i < n; i += 1 {
		j := globalData.ringIndex - 1 - i
		if j < 0 {
			j += NumRecentAnchors
		}
		anchors = append(anchors, globalData.ring[j])
	}
	return anchors
}

// NotesInRange - all note fragments with: lowHeight <= height <= highHeight
//
// results are ordered by height then tree position
func NotesInRange(lowHeight uint64, highHeight uint64) ([]*NoteFragment, error) {
	if lowHeight > highHeight {
		return nil, fault.OutOfRangeHeight
	}

	start := make([]byte, 8)
	binary.BigEndian.PutUint64(start, lowHeight)

	fragments := []*NoteFragment{}

	cursor := storage.Pool.Notes.NewFetchCursor().Seek(start)
	if limit := highHeight + 1; limit > highHeight { // skip on wrap at max height
		limitKey := make([]byte, 8)
		binary.BigEndian.PutUint64(limitKey, limit)
		cursor.LimitTo(limitKey)
	}

	err := cursor.Map(func(key []byte, value []byte) error {
		fragment, err := unpackFragment(key, value)
		if nil != err {
			return err
		}
		fragments = append(fragments, fragment)
		return nil
	})
	if nil != err {
		return nil, err
	}
	return fragments, nil
}

// NoteByCommitment - locate a stored fragment by its commitment
//
// the index pool maps a commitment onto the note pool key it was
// stored under
func NoteByCommitment(commitment merkle.Digest) (*NoteFragment, error) {
	key := storage.Pool.NoteCommitmentIndex.Get(commitment[:])
	if nil == key {
		return nil, fault.NoteNotFound
	}

	value := storage.Pool.Notes.Get(key)
	if nil == value {
		return nil, fault.NoteNotFound
	}

	return unpackFragment(key, value)
}
