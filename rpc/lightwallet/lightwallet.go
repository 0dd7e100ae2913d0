// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package lightwallet - RPC supplying the data a scanning wallet
// needs: compact blocks for trial decryption and recent anchors for
// building proofs
package lightwallet

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/chainstate"
	"github.com/ejmg/penumbra/compactblock"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/nct"
	"github.com/ejmg/penumbra/rpc/ratelimit"
)

const (
	maximumBlockCount  = 1000
	maximumAnchorCount = 32
	rateLimitWallet    = 200
	rateBurstWallet    = 100
)

// LightWallet - type for the RPC
type LightWallet struct {
	Log          *logger.L
	Limiter      *rate.Limiter
	IsNormalMode func(mode.Mode) bool
}

func New(log *logger.L, isNormalMode func(mode.Mode) bool) *LightWallet {
	return &LightWallet{
		Log:          log,
		Limiter:      rate.NewLimiter(rateLimitWallet, rateBurstWallet),
		IsNormalMode: isNormalMode,
	}
}

// ---

// CompactBlocksArguments - arguments for RPC request
type CompactBlocksArguments struct {
	Start uint64 `json:"start"`
	Count int    `json:"count"`
}

// CompactBlocksReply - results from compact blocks RPC request
type CompactBlocksReply struct {
	Blocks     []compactblock.CompactBlock `json:"blocks"`
	NextHeight uint64                      `json:"nextHeight"`
	Height     uint64                      `json:"height"`
}

// CompactBlocks - a batch of compact blocks starting at a height
//
// next height is where the client resumes; it equals start when
// start is past the chain tip
func (wallet *LightWallet) CompactBlocks(arguments *CompactBlocksArguments, reply *CompactBlocksReply) error {

	if err := ratelimit.LimitN(wallet.Limiter, arguments.Count, maximumBlockCount); nil != err {
		return err
	}

	if !wallet.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	wallet.Log.Infof("LightWallet.CompactBlocks: %+v", arguments)

	height := chainstate.Height()
	reply.Height = height
	reply.NextHeight = arguments.Start

	if 0 == arguments.Start || arguments.Start > height {
		return nil
	}

	last := arguments.Start + uint64(arguments.Count) - 1
	if last > height {
		last = height
	}

	producer, err := compactblock.NewProducer(arguments.Start, last)
	if nil != err {
		return err
	}

	blocks := make([]compactblock.CompactBlock, 0, last-arguments.Start+1)
	for {
		b, ok, err := producer.Next()
		if nil != err {
			return err
		}
		if !ok {
			break
		}
		blocks = append(blocks, *b)
	}

	reply.Blocks = blocks
	reply.NextHeight = last + 1
	return nil
}

// ---

// AnchorsArguments - arguments for RPC request
type AnchorsArguments struct {
	Count int `json:"count"`
}

// AnchorsReply - results from anchors RPC request
type AnchorsReply struct {
	Anchors []merkle.Digest `json:"anchors"`
}

// Anchors - the most recent tree anchors, newest first
func (wallet *LightWallet) Anchors(arguments *AnchorsArguments, reply *AnchorsReply) error {

	if err := ratelimit.Limit(wallet.Limiter); nil != err {
		return err
	}

	if !wallet.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	count := arguments.Count
	if count <= 0 || count > maximumAnchorCount {
		count = maximumAnchorCount
	}

	reply.Anchors = nct.RecentAnchors(count)
	return nil
}
