// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainstate - the per height block committer
//
// applies one block's already validated effects to the store inside
// a single transaction: note outputs, spent nullifiers, validator
// definitions, delegation changes and supply updates, plus the epoch
// rate computation when a block opens a new epoch.  either every
// effect of a height becomes visible or none does.
package chainstate

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/chain"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/jmt"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/stake"
	"github.com/ejmg/penumbra/storage"
)

// jmt key naming the per height anchor entry
const anchorEntryName = "nct_anchor"

// globals for this module
type chainstateData struct {
	sync.RWMutex

	log *logger.L

	height      uint64
	lastAnchor  merkle.Digest
	lastAppHash merkle.Digest

	tree     jmt.Tree
	params   chain.Params
	issuance stake.IssuanceSchedule

	// set once during initialise
	initialised bool
}

// global data
var globalData chainstateData

// Initialise - recover the committed chain tip from the store
//
// the issuance schedule drives epoch rate computation and comes from
// the chain configuration
func Initialise(issuance stake.IssuanceSchedule) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("chainstate")
	globalData.log.Info("starting…")

	if nil == storage.Pool.Blocks {
		globalData.log.Critical("storage pool is not initialised")
		return fault.NotInitialised
	}

	params, err := chain.GetParams(mode.ChainName())
	if nil != err {
		return err
	}
	globalData.params = params
	globalData.issuance = issuance
	globalData.tree = jmt.New(storage.Pool.AuthenticatedEntries)

	globalData.height = 0
	globalData.lastAnchor = merkle.Digest{}
	globalData.lastAppHash = merkle.Digest{}

	if last, found := storage.Pool.Blocks.LastElement(); found {
		height, anchor, appHash, err := unpackBlock(last.Key, last.Value)
		if nil != err {
			return err
		}
		globalData.height = height
		globalData.lastAnchor = anchor
		globalData.lastAppHash = appHash
	}

	globalData.initialised = true

	globalData.log.Infof("height: %d  anchor: %v", globalData.height, globalData.lastAnchor)

	return nil
}

// Finalise - shut down the committer
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.tree = nil
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}

// Height - height of the last committed block
func Height() uint64 {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.height
}

// LastAnchor - anchor of the last committed block
func LastAnchor() merkle.Digest {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.lastAnchor
}

// LastAppHash - authenticated state root of the last committed block
func LastAppHash() merkle.Digest {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.lastAppHash
}

// Block - read one committed block row
func Block(height uint64) (merkle.Digest, merkle.Digest, error) {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, height)
	value := storage.Pool.Blocks.Get(key)
	if nil == value {
		return merkle.Digest{}, merkle.Digest{}, fault.BlockNotFound
	}
	_, anchor, appHash, err := unpackBlock(key, value)
	return anchor, appHash, err
}

// block row: key height(8 BE), value anchor(32) appHash(32)
func unpackBlock(key []byte, value []byte) (uint64, merkle.Digest, merkle.Digest, error) {
	if 8 != len(key) || 2*merkle.DigestLength != len(value) {
		return 0, merkle.Digest{}, merkle.Digest{}, fault.InvalidBlockHeaderRecord
	}
	var anchor, appHash merkle.Digest
	copy(anchor[:], value[:merkle.DigestLength])
	copy(appHash[:], value[merkle.DigestLength:])
	return binary.BigEndian.Uint64(key), anchor, appHash, nil
}
