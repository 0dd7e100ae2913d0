// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package validators

import (
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/rpc/ratelimit"
	"github.com/ejmg/penumbra/stake"
)

const (
	rateLimitValidators = 200
	rateBurstValidators = 100
)

// Validators - type for the RPC
type Validators struct {
	Log          *logger.L
	Limiter      *rate.Limiter
	IsNormalMode func(mode.Mode) bool
}

func New(log *logger.L, isNormalMode func(mode.Mode) bool) *Validators {
	return &Validators{
		Log:          log,
		Limiter:      rate.NewLimiter(rateLimitValidators, rateBurstValidators),
		IsNormalMode: isNormalMode,
	}
}

// ---

// Entry - one validator with its newest rate in the response
type Entry struct {
	Validator *stake.Validator     `json:"validator"`
	Rate      *stake.ValidatorRate `json:"rate,omitempty"`
}

// ListArguments - arguments for RPC request
type ListArguments struct {
	ShowInactive bool `json:"show_inactive"`
}

// ListReply - results from list RPC request
type ListReply struct {
	Epoch      uint64  `json:"epoch"`
	Validators []Entry `json:"validators"`
}

// List - the validator set joined with current rates
func (validators *Validators) List(arguments *ListArguments, reply *ListReply) error {

	if err := ratelimit.Limit(validators.Limiter); nil != err {
		return err
	}

	if !validators.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	validators.Log.Infof("Validators.List: %+v", arguments)

	// the default view is the consensus set: active validators
	// carrying voting power
	var data []stake.RateData
	var err error
	if arguments.ShowInactive {
		data, err = stake.AllValidators()
	} else {
		data, err = stake.ActiveValidators(true)
	}
	if nil != err {
		return err
	}

	entries := make([]Entry, len(data))
	for i, d := range data {
		entries[i] = Entry{
			Validator: d.Validator,
			Rate:      d.Rate,
		}
	}

	epoch, _ := stake.Epoch()
	reply.Epoch = epoch
	reply.Validators = entries
	return nil
}

// ---

// StatusArguments - arguments for RPC request
type StatusArguments struct {
	IdentityKey stake.IdentityKey `json:"identity_key"`
}

// StatusReply - results from status RPC request
type StatusReply struct {
	Validator      *stake.Validator      `json:"validator"`
	FundingStreams []stake.FundingStream `json:"funding_streams"`
}

// Status - one validator's stored definition and funding streams
func (validators *Validators) Status(arguments *StatusArguments, reply *StatusReply) error {

	if err := ratelimit.Limit(validators.Limiter); nil != err {
		return err
	}

	if !validators.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	validators.Log.Infof("Validators.Status: %+v", arguments)

	validator, err := stake.GetValidator(arguments.IdentityKey)
	if nil != err {
		return err
	}
	streams, err := stake.FundingStreamsOf(arguments.IdentityKey)
	if nil != err {
		return err
	}

	reply.Validator = validator
	reply.FundingStreams = streams
	return nil
}

// ---

// RateArguments - arguments for RPC request
type RateArguments struct {
	IdentityKey stake.IdentityKey `json:"identity_key"`
	Epoch       uint64            `json:"epoch"`
}

// RateReply - results from rate RPC request
type RateReply struct {
	Rate     *stake.ValidatorRate `json:"rate"`
	BaseRate *stake.BaseRate      `json:"base_rate"`
}

// Rate - a validator's rate and the base rate for one epoch
func (validators *Validators) Rate(arguments *RateArguments, reply *RateReply) error {

	if err := ratelimit.Limit(validators.Limiter); nil != err {
		return err
	}

	if !validators.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	validators.Log.Infof("Validators.Rate: %+v", arguments)

	r, err := stake.RateOf(arguments.IdentityKey, arguments.Epoch)
	if nil != err {
		return err
	}
	base, err := stake.BaseRateOf(arguments.Epoch)
	if nil != err {
		return err
	}

	reply.Rate = r
	reply.BaseRate = base
	return nil
}
