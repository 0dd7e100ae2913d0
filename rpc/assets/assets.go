// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package assets

import (
	"encoding/hex"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/asset"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/rpc/ratelimit"
)

// Assets - type for the RPC
type Assets struct {
	Log          *logger.L
	Limiter      *rate.Limiter
	IsNormalMode func(mode.Mode) bool
}

const (
	maximumAssets   = 100
	rateLimitAssets = 200
	rateBurstAssets = 100
)

func New(log *logger.L, isNormalMode func(mode.Mode) bool) *Assets {
	return &Assets{
		Log:          log,
		Limiter:      rate.NewLimiter(rateLimitAssets, rateBurstAssets),
		IsNormalMode: isNormalMode,
	}
}

// GetArguments - arguments for RPC request
type GetArguments struct {
	AssetIds []asset.ID `json:"ids"`
}

// Record - structure of asset records in the response
type Record struct {
	Found bool          `json:"found"`
	Data  *asset.Record `json:"data,omitempty"`
}

// GetReply - results from get RPC request
type GetReply struct {
	Assets []Record `json:"assets"`
}

// Get - RPC to fetch asset registry entries
func (assets *Assets) Get(arguments *GetArguments, reply *GetReply) error {

	log := assets.Log
	count := len(arguments.AssetIds)

	if err := ratelimit.LimitN(assets.Limiter, count, maximumAssets); nil != err {
		return err
	}

	if !assets.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	log.Infof("Assets.Get: %+v", arguments)

	a := make([]Record, count)
loop:
	for i, assetId := range arguments.AssetIds {
		record, err := asset.Get(assetId)
		if nil != err {
			continue loop
		}
		a[i] = Record{
			Found: true,
			Data:  record,
		}
	}

	reply.Assets = a

	return nil
}

// ---

// ListArguments - arguments for RPC request
//
// start is the value of next from a previous reply, empty for the
// beginning of the registry
type ListArguments struct {
	Start string `json:"start"`
	Count int    `json:"count"`
}

// ListReply - results from list RPC request
type ListReply struct {
	Assets []asset.Record `json:"assets"`
	Next   string         `json:"next,omitempty"`
}

// List - RPC to page through the asset registry in id order
func (assets *Assets) List(arguments *ListArguments, reply *ListReply) error {

	log := assets.Log

	count := arguments.Count
	if count <= 0 || count > maximumAssets {
		count = maximumAssets
	}

	if err := ratelimit.Limit(assets.Limiter); nil != err {
		return err
	}

	if !assets.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	log.Infof("Assets.List: %+v", arguments)

	var start []byte
	if "" != arguments.Start {
		s, err := hex.DecodeString(arguments.Start)
		if nil != err {
			return fault.InvalidCursor
		}
		start = s
	}

	records, err := asset.List(start, count)
	if nil != err {
		return err
	}

	reply.Assets = records
	if count == len(records) {
		// resume key: one byte past the last id returned
		last := records[len(records)-1].ID
		reply.Next = hex.EncodeToString(append(last[:], 0x00))
	}

	return nil
}
