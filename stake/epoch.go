// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stake

import (
	"encoding/binary"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/storage"
)

// AdvanceEpoch - compute all rate rows for a new epoch and settle
// the delegation changes recorded for it
//
// runs inside the committing block transaction; epoch must be
// exactly one greater than the highest committed epoch, anything
// else is fault.EpochMismatch
//
// the registry cursor reads committed state only, so a validator
// defined earlier in the same transaction joins the rate tables at
// the next boundary, not this one
//
// for every validator in the registry:
//   - the reward rate is the new base reward net of funding stream
//     commission, so a zero commission validator tracks the base
//     rate exactly
//   - the exchange rate compounds the validator's prior exchange
//     rate by its net reward
//   - the delegation delta recorded for this epoch is applied to
//     voting power, then lifecycle transitions are evaluated
func AdvanceEpoch(trx storage.Transaction, epoch uint64, issuance IssuanceSchedule, unbondingEpochs uint64) error {
	last, found := Epoch()
	if !found {
		return fault.EpochNotFound
	}
	if epoch != last+1 {
		return fault.EpochMismatch
	}

	priorBase, err := BaseRateOf(last)
	if nil != err {
		return err
	}

	rewardRate := issuance.BaseRewardRate(epoch)
	base := BaseRate{
		Epoch:        epoch,
		RewardRate:   rewardRate,
		ExchangeRate: compound(priorBase.ExchangeRate, rewardRate),
	}
	trx.Put(storage.Pool.BaseRates, epochKey(epoch), packRates(base.RewardRate, base.ExchangeRate))

	return storage.Pool.Validators.NewFetchCursor().
		Map(func(key []byte, value []byte) error {
			var identity IdentityKey
			err := IdentityKeyFromBytes(&identity, key)
			if nil != err {
				return err
			}
			validator, err := UnpackValidator(identity, value)
			if nil != err {
				return err
			}
			return advanceValidator(trx, validator, &base, epoch, unbondingEpochs)
		})
}

// must run inside the committing transaction
func advanceValidator(trx storage.Transaction, validator *Validator, base *BaseRate, epoch uint64, unbondingEpochs uint64) error {
	identity := validator.IdentityKey

	streams, err := FundingStreamsOf(identity)
	if nil != err {
		return err
	}

	priorExchange := uint64(RateScale)
	if prior, found := latestRate(identity); found {
		priorExchange = prior.ExchangeRate
	}

	rewardRate := netRewardRate(base.RewardRate, TotalCommissionBps(streams))
	trx.Put(
		storage.Pool.ValidatorRates,
		validatorRateKey(identity, epoch),
		packRates(rewardRate, compound(priorExchange, rewardRate)),
	)

	// settle this epoch's delegation delta
	if stored := trx.Get(storage.Pool.DelegationChanges, delegationKey(epoch, identity)); nil != stored {
		if 8 != len(stored) {
			return fault.InvalidRateRecord
		}
		validator.VotingPower += int64(binary.BigEndian.Uint64(stored))
		if validator.VotingPower < 0 {
			validator.VotingPower = 0
		}
	}

	switch validator.State {
	case Active:
		if 0 == validator.VotingPower {
			validator.State = Unbonding
			validator.UnbondingEpoch = epoch + unbondingEpochs
		}
	case Unbonding:
		if validator.VotingPower > 0 {
			// re-delegated before the unbonding period ended
			validator.State = Active
			validator.UnbondingEpoch = 0
		} else if epoch >= validator.UnbondingEpoch {
			validator.State = Inactive
			validator.UnbondingEpoch = 0
		}
	case Inactive:
		if validator.VotingPower > 0 {
			validator.State = Active
		}
	}

	trx.Put(storage.Pool.Validators, identity[:], validator.Pack())
	return nil
}
