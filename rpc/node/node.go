// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/chainstate"
	"github.com/ejmg/penumbra/counter"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/rpc/ratelimit"
)

const (
	rateLimitNode = 200
	rateBurstNode = 100
)

// Node - type for RPC calls
type Node struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Start   time.Time
	Version string
	counter *counter.Counter
}

func New(log *logger.L, start time.Time, version string, counter *counter.Counter) *Node {
	return &Node{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitNode, rateBurstNode),
		Start:   start,
		Version: version,
		counter: counter,
	}
}

// ---

// InfoArguments - empty arguments for info request
type InfoArguments struct{}

// InfoReply - results from info request
type InfoReply struct {
	Chain   string    `json:"chain"`
	Mode    string    `json:"mode"`
	Block   BlockInfo `json:"block"`
	RPCs    uint64    `json:"rpcs"`
	Version string    `json:"Version"`
	Uptime  string    `json:"uptime"`
}

// BlockInfo - the highest committed block
type BlockInfo struct {
	Height  uint64 `json:"height"`
	Anchor  string `json:"anchor"`
	AppHash string `json:"appHash"`
}

// Info - return some information about this node
// only enough for clients to determine node state
// for more detail information use HTTP GET requests
func (node *Node) Info(_ *InfoArguments, reply *InfoReply) error {

	if err := ratelimit.Limit(node.Limiter); nil != err {
		return err
	}

	reply.Chain = mode.ChainName()
	reply.Mode = mode.String()
	reply.Block = BlockInfo{
		Height:  chainstate.Height(),
		Anchor:  chainstate.LastAnchor().String(),
		AppHash: chainstate.LastAppHash().String(),
	}
	reply.RPCs = node.counter.Uint64()
	reply.Version = node.Version
	reply.Uptime = time.Since(node.Start).String()
	return nil
}
