// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stake

import (
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/util"
)

// State - validator lifecycle state
type State byte

// the possible validator states
const (
	Active    State = iota // bonded, counted in consensus
	Unbonding              // exiting, stake still locked
	Inactive               // not part of the consensus set
)

// String - printable state name
func (state State) String() string {
	switch state {
	case Active:
		return "Active"
	case Unbonding:
		return "Unbonding"
	case Inactive:
		return "Inactive"
	default:
		return "*unknown*"
	}
}

// Validator - registry entry for one validator
type Validator struct {
	IdentityKey    IdentityKey `json:"identity_key"`
	ConsensusKey   []byte      `json:"consensus_key"`
	SequenceNumber uint64      `json:"sequence_number"`
	Name           string      `json:"name"`
	Website        string      `json:"website"`
	Description    string      `json:"description"`
	VotingPower    int64       `json:"voting_power"`
	State          State       `json:"state"`
	UnbondingEpoch uint64      `json:"unbonding_epoch"` // meaningful only while Unbonding
}

// FundingStream - a commission split directing part of a validator's
// reward to an address
type FundingStream struct {
	Address string `json:"address"`
	RateBps uint64 `json:"rate_bps"`
}

// CommissionLimitBps - funding streams cannot claim more than the
// whole reward
const CommissionLimitBps = 10000

// TotalCommissionBps - sum of a stream set's rates
//
// saturates just above the limit so oversized rates cannot wrap the
// sum back into the valid range
func TotalCommissionBps(streams []FundingStream) uint64 {
	total := uint64(0)
	for _, stream := range streams {
		if stream.RateBps > CommissionLimitBps {
			return CommissionLimitBps + 1
		}
		total += stream.RateBps
		if total > CommissionLimitBps {
			return CommissionLimitBps + 1
		}
	}
	return total
}

// Pack - serialize a validator for the store
//
// identity key is the pool key and is not repeated in the value
func (validator *Validator) Pack() []byte {
	buffer := util.ToVarint64(uint64(len(validator.ConsensusKey)))
	buffer = append(buffer, validator.ConsensusKey...)
	buffer = append(buffer, util.ToVarint64(validator.SequenceNumber)...)
	buffer = appendString(buffer, validator.Name)
	buffer = appendString(buffer, validator.Website)
	buffer = appendString(buffer, validator.Description)
	buffer = append(buffer, util.ToVarint64(uint64(validator.VotingPower))...)
	buffer = append(buffer, byte(validator.State))
	buffer = append(buffer, util.ToVarint64(validator.UnbondingEpoch)...)
	return buffer
}

// UnpackValidator - deserialize a stored validator record
func UnpackValidator(identity IdentityKey, buffer []byte) (*Validator, error) {
	validator := &Validator{
		IdentityKey: identity,
	}

	keyLength, n := util.FromVarint64(buffer)
	if 0 == n || uint64(len(buffer)) < uint64(n)+keyLength {
		return nil, fault.InvalidValidatorRecord
	}
	buffer = buffer[n:]
	validator.ConsensusKey = append([]byte{}, buffer[:keyLength]...)
	buffer = buffer[keyLength:]

	sequence, n := util.FromVarint64(buffer)
	if 0 == n {
		return nil, fault.InvalidValidatorRecord
	}
	validator.SequenceNumber = sequence
	buffer = buffer[n:]

	var err error
	validator.Name, buffer, err = takeString(buffer)
	if nil != err {
		return nil, err
	}
	validator.Website, buffer, err = takeString(buffer)
	if nil != err {
		return nil, err
	}
	validator.Description, buffer, err = takeString(buffer)
	if nil != err {
		return nil, err
	}

	power, n := util.FromVarint64(buffer)
	if 0 == n {
		return nil, fault.InvalidValidatorRecord
	}
	validator.VotingPower = int64(power)
	buffer = buffer[n:]

	if 0 == len(buffer) {
		return nil, fault.InvalidValidatorRecord
	}
	validator.State = State(buffer[0])
	if validator.State > Inactive {
		return nil, fault.InvalidValidatorRecord
	}
	buffer = buffer[1:]

	unbonding, n := util.FromVarint64(buffer)
	if 0 == n {
		return nil, fault.InvalidValidatorRecord
	}
	validator.UnbondingEpoch = unbonding

	return validator, nil
}

// packFundingStreams - serialize a validator's stream set
func packFundingStreams(streams []FundingStream) []byte {
	buffer := util.ToVarint64(uint64(len(streams)))
	for _, stream := range streams {
		buffer = appendString(buffer, stream.Address)
		buffer = append(buffer, util.ToVarint64(stream.RateBps)...)
	}
	return buffer
}

// unpackFundingStreams - deserialize a stored stream set
func unpackFundingStreams(buffer []byte) ([]FundingStream, error) {
	count, n := util.FromVarint64(buffer)
	if 0 == n {
		return nil, fault.InvalidValidatorRecord
	}
	buffer = buffer[n:]

	streams := make([]FundingStream, 0, count)
	for i := uint64(0); i < count; i += 1 {
		address, rest, err := takeString(buffer)
		if nil != err {
			return nil, err
		}
		buffer = rest

		rate, n := util.FromVarint64(buffer)
		if 0 == n {
			return nil, fault.InvalidValidatorRecord
		}
		buffer = buffer[n:]

		streams = append(streams, FundingStream{
			Address: address,
			RateBps: rate,
		})
	}
	return streams, nil
}

// varint length prefixed string append
func appendString(buffer []byte, s string) []byte {
	buffer = append(buffer, util.ToVarint64(uint64(len(s)))...)
	return append(buffer, s...)
}

// varint length prefixed string extract
func takeString(buffer []byte) (string, []byte, error) {
	length, n := util.FromVarint64(buffer)
	if 0 == n || uint64(len(buffer)) < uint64(n)+length {
		return "", nil, fault.InvalidValidatorRecord
	}
	buffer = buffer[n:]
	return string(buffer[:length]), buffer[length:], nil
}
