// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nct

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/background"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/storage"
)

// NumRecentAnchors - how many historical anchors stay valid for
// incoming transactions
const NumRecentAnchors = 32

// blob ids inside the Blobs pool
var (
	frontierBlobKey = []byte("nct")
	gcBlobKey       = []byte("gc")
)

// globals for this module
type nctData struct {
	sync.RWMutex

	log *logger.L

	frontier *merkle.Frontier

	ring      [NumRecentAnchors]merkle.Digest
	ringIndex int
	ringCount int

	prunedFloor uint64
	gcDirty     bool

	// for background processes
	background *background.T

	// set once during initialise
	initialised bool
}

// global data
var globalData nctData

// Initialise - restore the frontier from its checkpoint and rebuild
// the recent anchor ring from the block pool
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("nct")
	globalData.log.Info("starting…")

	lastBlock, haveBlocks := storage.Pool.Blocks.LastElement()

	packed := storage.Pool.Blobs.Get(frontierBlobKey)
	if nil == packed {
		if haveBlocks {
			// blocks on disk but no checkpoint to resume from
			globalData.log.Critical("blocks present but frontier checkpoint is missing")
			return fault.CheckpointCorruption
		}
		globalData.log.Info("no checkpoint, starting from an empty tree")
		globalData.frontier = merkle.NewFrontier()
	} else {
		frontier, err := merkle.UnpackFrontier(packed)
		if nil != err {
			globalData.log.Criticalf("frontier checkpoint unusable: %s", err)
			return err
		}
		globalData.frontier = frontier
	}

	// the checkpoint must reproduce the anchor of the last block
	if haveBlocks {
		anchor := globalData.frontier.Root()
		if len(lastBlock.Value) < merkle.DigestLength {
			return fault.InvalidBlockHeaderRecord
		}
		var stored merkle.Digest
		copy(stored[:], lastBlock.Value[:merkle.DigestLength])
		if stored != anchor {
			globalData.log.Criticalf(
				"frontier checkpoint anchor: %v does not match last block anchor: %v",
				anchor, stored,
			)
			return fault.CheckpointCorruption
		}
	} else if 0 != globalData.frontier.Position() {
		globalData.log.Critical("frontier checkpoint is ahead of an empty block pool")
		return fault.CheckpointCorruption
	}

	fillAnchorRing(lastBlock, haveBlocks)

	// pruning floor survives restarts but is allowed to be absent
	globalData.prunedFloor = 0
	if gcValue := storage.Pool.Blobs.Get(gcBlobKey); 8 == len(gcValue) {
		globalData.prunedFloor = binary.BigEndian.Uint64(gcValue)
	}

	processes := background.Processes{
		&gcSaver{},
	}
	globalData.background = background.Start(processes, globalData.log)

	globalData.initialised = true

	globalData.log.Infof(
		"tree position: %d  anchor: %v  pruned floor: %d",
		globalData.frontier.Position(), globalData.frontier.Root(), globalData.prunedFloor,
	)

	return nil
}

// must hold lock to call this
func fillAnchorRing(lastBlock storage.Element, haveBlocks bool) {
	globalData.ringIndex = 0
	globalData.ringCount = 0

	if !haveBlocks || 8 != len(lastBlock.Key) {
		return
	}

	height := binary.BigEndian.Uint64(lastBlock.Key)
	start := uint64(0)
	if height >= NumRecentAnchors {
		start = height - NumRecentAnchors + 1
	}

	key := make([]byte, 8)
	for h := start; h <= height; h += 1 {
		binary.BigEndian.PutUint64(key, h)
		value := storage.Pool.Blocks.Get(key)
		if len(value) < merkle.DigestLength {
			continue
		}
		var anchor merkle.Digest
		copy(anchor[:], value[:merkle.DigestLength])
		ringPush(anchor)
	}
}

// Finalise - shut down the manager
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.background.Stop()

	globalData.frontier = nil
	globalData.background = nil
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
