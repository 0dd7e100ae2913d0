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

// key layouts
//
//	Validators:        identity(32)            -> packed validator
//	FundingStreams:    identity(32)            -> packed stream set
//	BaseRates:         epoch(8 BE)             -> reward(8 BE) exchange(8 BE)
//	ValidatorRates:    identity(32) epoch(8)   -> reward(8 BE) exchange(8 BE)
//	DelegationChanges: epoch(8 BE) identity(32)-> delta(8 BE two's complement)

func epochKey(epoch uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, epoch)
	return key
}

func validatorRateKey(identity IdentityKey, epoch uint64) []byte {
	key := make([]byte, IdentityKeyLength+8)
	copy(key, identity[:])
	binary.BigEndian.PutUint64(key[IdentityKeyLength:], epoch)
	return key
}

func delegationKey(epoch uint64, identity IdentityKey) []byte {
	key := make([]byte, 8+IdentityKeyLength)
	binary.BigEndian.PutUint64(key, epoch)
	copy(key[8:], identity[:])
	return key
}

// WriteGenesisRates - seed the rate tables for a new chain
//
// epochs 0 and 1 both get zero reward and a unit exchange rate, for
// the base rate and for every listed validator; rates for epoch 1
// must exist before the first block so delegations can target the
// upcoming epoch
func WriteGenesisRates(trx storage.Transaction, identities []IdentityKey) {
	rates := packRates(0, RateScale)
	for epoch := uint64(0); epoch <= 1; epoch += 1 {
		trx.Put(storage.Pool.BaseRates, epochKey(epoch), rates)
		for _, identity := range identities {
			trx.Put(storage.Pool.ValidatorRates, validatorRateKey(identity, epoch), rates)
		}
	}
}

// DefineValidator - create or update a validator registry entry with
// its funding streams
//
// a redefinition must carry a strictly greater sequence number and
// keeps the stored voting power and lifecycle state; only the
// metadata and streams change
func DefineValidator(trx storage.Transaction, validator *Validator, streams []FundingStream) error {
	if TotalCommissionBps(streams) > CommissionLimitBps {
		return fault.InvalidFundingStream
	}

	stored := trx.Get(storage.Pool.Validators, validator.IdentityKey[:])
	if nil != stored {
		existing, err := UnpackValidator(validator.IdentityKey, stored)
		if nil != err {
			return err
		}
		if validator.SequenceNumber <= existing.SequenceNumber {
			return fault.StaleValidatorDefinition
		}
		validator.VotingPower = existing.VotingPower
		validator.State = existing.State
		validator.UnbondingEpoch = existing.UnbondingEpoch
	}

	trx.Put(storage.Pool.Validators, validator.IdentityKey[:], validator.Pack())
	trx.Put(storage.Pool.FundingStreams, validator.IdentityKey[:], packFundingStreams(streams))
	return nil
}

// GetValidator - fetch one registry entry
func GetValidator(identity IdentityKey) (*Validator, error) {
	stored := storage.Pool.Validators.Get(identity[:])
	if nil == stored {
		return nil, fault.ValidatorNotFound
	}
	return UnpackValidator(identity, stored)
}

// FundingStreamsOf - fetch a validator's commission splits
func FundingStreamsOf(identity IdentityKey) ([]FundingStream, error) {
	stored := storage.Pool.FundingStreams.Get(identity[:])
	if nil == stored {
		if !storage.Pool.Validators.Has(identity[:]) {
			return nil, fault.ValidatorNotFound
		}
		return []FundingStream{}, nil
	}
	return unpackFundingStreams(stored)
}

// RecordDelegationChange - accumulate a signed delegation delta for
// one validator in one epoch
func RecordDelegationChange(trx storage.Transaction, identity IdentityKey, epoch uint64, delta int64) error {
	if !trx.Has(storage.Pool.Validators, identity[:]) {
		return fault.ValidatorNotFound
	}

	key := delegationKey(epoch, identity)
	total := delta
	if stored := trx.Get(storage.Pool.DelegationChanges, key); nil != stored {
		if 8 != len(stored) {
			return fault.InvalidRateRecord
		}
		total += int64(binary.BigEndian.Uint64(stored))
	}
	trx.PutN(storage.Pool.DelegationChanges, key, uint64(total))
	return nil
}

// DelegationChangeOf - accumulated delta for one validator in one
// epoch, zero when nothing was recorded
func DelegationChangeOf(identity IdentityKey, epoch uint64) int64 {
	value, found := storage.Pool.DelegationChanges.GetN(delegationKey(epoch, identity))
	if !found {
		return 0
	}
	return int64(value)
}

// Epoch - highest epoch with a committed base rate
func Epoch() (uint64, bool) {
	last, found := storage.Pool.BaseRates.LastElement()
	if !found || 8 != len(last.Key) {
		return 0, false
	}
	return binary.BigEndian.Uint64(last.Key), true
}

// BaseRateOf - the base rate row for one epoch
func BaseRateOf(epoch uint64) (*BaseRate, error) {
	stored := storage.Pool.BaseRates.Get(epochKey(epoch))
	if nil == stored {
		return nil, fault.EpochNotFound
	}
	reward, exchange, err := unpackRates(stored)
	if nil != err {
		return nil, err
	}
	return &BaseRate{
		Epoch:        epoch,
		RewardRate:   reward,
		ExchangeRate: exchange,
	}, nil
}

// RateOf - one validator's rate row at one epoch
func RateOf(identity IdentityKey, epoch uint64) (*ValidatorRate, error) {
	stored := storage.Pool.ValidatorRates.Get(validatorRateKey(identity, epoch))
	if nil == stored {
		if !storage.Pool.Validators.Has(identity[:]) {
			return nil, fault.ValidatorNotFound
		}
		return nil, fault.EpochNotFound
	}
	reward, exchange, err := unpackRates(stored)
	if nil != err {
		return nil, err
	}
	return &ValidatorRate{
		IdentityKey:  identity,
		Epoch:        epoch,
		RewardRate:   reward,
		ExchangeRate: exchange,
	}, nil
}

// latestRate - newest rate row for a validator, may predate the
// current epoch if the validator was defined later
func latestRate(identity IdentityKey) (*ValidatorRate, bool) {
	element, found := storage.Pool.ValidatorRates.LastElementUnder(identity[:])
	if !found || IdentityKeyLength+8 != len(element.Key) {
		return nil, false
	}
	reward, exchange, err := unpackRates(element.Value)
	if nil != err {
		return nil, false
	}
	return &ValidatorRate{
		IdentityKey:  identity,
		Epoch:        binary.BigEndian.Uint64(element.Key[IdentityKeyLength:]),
		RewardRate:   reward,
		ExchangeRate: exchange,
	}, true
}

// CurrentRates - every validator's newest rate row, ordered by
// identity key bytes
func CurrentRates() ([]ValidatorRate, error) {
	rates := []ValidatorRate{}
	err := storage.Pool.Validators.NewFetchCursor().
		Map(func(key []byte, value []byte) error {
			var identity IdentityKey
			err := IdentityKeyFromBytes(&identity, key)
			if nil != err {
				return err
			}
			if rate, found := latestRate(identity); found {
				rates = append(rates, *rate)
			}
			return nil
		})
	if nil != err {
		return nil, err
	}
	return rates, nil
}

// RateData - a validator joined with its newest rate
type RateData struct {
	Validator *Validator
	Rate      *ValidatorRate
}

// ActiveValidators - validators in the consensus set joined with
// their newest rates, ordered by identity key bytes
//
// excludeZeroPower additionally drops entries whose voting power has
// reached zero but whose unbonding has not completed
func ActiveValidators(excludeZeroPower bool) ([]RateData, error) {
	return listValidators(false, excludeZeroPower)
}

// AllValidators - the whole registry including inactive entries
func AllValidators() ([]RateData, error) {
	return listValidators(true, false)
}

func listValidators(showInactive bool, excludeZeroPower bool) ([]RateData, error) {
	result := []RateData{}
	err := storage.Pool.Validators.NewFetchCursor().
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
			if !showInactive && Inactive == validator.State {
				return nil
			}
			if excludeZeroPower && 0 == validator.VotingPower {
				return nil
			}
			entry := RateData{
				Validator: validator,
			}
			if rate, found := latestRate(identity); found {
				entry.Rate = rate
			}
			result = append(result, entry)
			return nil
		})
	if nil != err {
		return nil, err
	}
	return result, nil
}
