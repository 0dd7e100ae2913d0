// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stake

import (
	"encoding/binary"

	"github.com/ejmg/penumbra/fault"
)

// RateScale - fixed point scale for all reward and exchange rates
const RateScale = 1_0000_0000

// BaseRate - chain wide rates for one epoch
type BaseRate struct {
	Epoch        uint64 `json:"epoch"`
	RewardRate   uint64 `json:"base_reward_rate"`
	ExchangeRate uint64 `json:"base_exchange_rate"`
}

// ValidatorRate - one validator's rates for one epoch, derived from
// the base rate net of funding stream commission
type ValidatorRate struct {
	IdentityKey  IdentityKey `json:"identity_key"`
	Epoch        uint64      `json:"epoch"`
	RewardRate   uint64      `json:"validator_reward_rate"`
	ExchangeRate uint64      `json:"validator_exchange_rate"`
}

// IssuanceSchedule - externally supplied reward issuance
//
// returns the scaled base reward rate for an epoch; the genesis
// schedule is all zero
type IssuanceSchedule interface {
	BaseRewardRate(epoch uint64) uint64
}

// FixedIssuance - a constant per epoch reward rate
type FixedIssuance uint64

// BaseRewardRate - the same rate for every epoch
func (issuance FixedIssuance) BaseRewardRate(epoch uint64) uint64 {
	return uint64(issuance)
}

// the stored rate value: reward then exchange, big endian
func packRates(rewardRate uint64, exchangeRate uint64) []byte {
	buffer := make([]byte, 16)
	binary.BigEndian.PutUint64(buffer[:8], rewardRate)
	binary.BigEndian.PutUint64(buffer[8:], exchangeRate)
	return buffer
}

func unpackRates(buffer []byte) (uint64, uint64, error) {
	if 16 != len(buffer) {
		return 0, 0, fault.InvalidRateRecord
	}
	return binary.BigEndian.Uint64(buffer[:8]), binary.BigEndian.Uint64(buffer[8:]), nil
}

// compound an exchange rate by one epoch's reward rate
//
// exchange' = exchange * (1 + reward)  in fixed point
func compound(exchangeRate uint64, rewardRate uint64) uint64 {
	return exchangeRate * (RateScale + rewardRate) / RateScale
}

// commission adjusted reward rate
//
// the funding streams take commissionBps of the reward, the rest
// compounds for delegators
func netRewardRate(baseRewardRate uint64, commissionBps uint64) uint64 {
	return baseRewardRate * (CommissionLimitBps - commissionBps) / CommissionLimitBps
}
