// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainparams

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/chain"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/rpc/ratelimit"
)

const (
	rateLimitChainParams = 200
	rateBurstChainParams = 100
)

// ChainParams - type for the RPC
type ChainParams struct {
	Log     *logger.L
	Limiter *rate.Limiter
}

func New(log *logger.L) *ChainParams {
	return &ChainParams{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitChainParams, rateBurstChainParams),
	}
}

// GetArguments - empty arguments for parameters request
type GetArguments struct{}

// GetReply - results from parameters request
type GetReply struct {
	ChainID         string `json:"chain_id"`
	EpochDuration   uint64 `json:"epoch_duration"`
	UnbondingEpochs uint64 `json:"unbonding_epochs"`
}

// Get - return the consensus parameters of the running chain
func (params *ChainParams) Get(_ *GetArguments, reply *GetReply) error {

	if err := ratelimit.Limit(params.Limiter); nil != err {
		return err
	}

	p, err := chain.GetParams(mode.ChainName())
	if nil != err {
		return err
	}

	reply.ChainID = p.ChainID
	reply.EpochDuration = p.EpochDuration
	reply.UnbondingEpochs = p.UnbondingEpochs
	return nil
}
