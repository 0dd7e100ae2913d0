// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nct

import (
	"encoding/binary"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/storage"
)

// how often the pruning floor is flushed to disk
const gcSaveInterval = 60 * time.Second

// MarkPruned - raise the pruning floor after witness data below a
// tree position has been discarded
//
// the floor never moves backwards; the new value is persisted by a
// background process
func MarkPruned(position uint64) error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	if position <= globalData.prunedFloor {
		return nil
	}
	if position > globalData.frontier.Position() {
		return fault.OutOfRangeHeight
	}

	globalData.prunedFloor = position
	globalData.gcDirty = true
	return nil
}

// PrunedFloor - lowest tree position with witness data retained
func PrunedFloor() uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.prunedFloor
}

// background process to persist the pruning floor
//
// uses its own short transaction; if the block committer holds the
// write transaction the save just waits for the next tick
type gcSaver struct{}

func (saver *gcSaver) Run(args interface{}, shutdown <-chan struct{}) {
	log := args.(*logger.L)

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(gcSaveInterval):
			saveGCCheckpoint(log)
		}
	}

	// final flush on the way down
	saveGCCheckpoint(log)
}

func saveGCCheckpoint(log *logger.L) {
	globalData.Lock()
	dirty := globalData.gcDirty
	floor := globalData.prunedFloor
	globalData.gcDirty = false
	globalData.Unlock()

	if !dirty {
		return
	}

	trx, err := storage.NewDBTransaction()
	if nil != err {
		// committer is busy, retry on the next tick
		globalData.Lock()
		globalData.gcDirty = true
		globalData.Unlock()
		return
	}

	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, floor)
	trx.Put(storage.Pool.Blobs, gcBlobKey, value)

	err = trx.Commit()
	if nil != err {
		log.Errorf("gc checkpoint commit error: %s", err)
		globalData.Lock()
		globalData.gcDirty = true
		globalData.Unlock()
		return
	}

	log.Debugf("gc checkpoint saved: pruned floor: %d", floor)
}
