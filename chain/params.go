// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"github.com/ejmg/penumbra/fault"
)

// Params - fixed parameters of one chain
//
// epoch duration is the number of blocks over which staking rates are
// held constant; unbonding epochs is the delay before an unbonding
// validator becomes inactive
type Params struct {
	ChainID         string
	EpochDuration   uint64
	UnbondingEpochs uint64
}

// per-chain parameter table
var paramsTable = map[string]Params{
	Mainnet: {
		ChainID:         Mainnet,
		EpochDuration:   8640, // one day of 10 second blocks
		UnbondingEpochs: 2,
	},
	Testing: {
		ChainID:         Testing,
		EpochDuration:   719,
		UnbondingEpochs: 2,
	},
	Local: {
		ChainID:         Local,
		EpochDuration:   20,
		UnbondingEpochs: 2,
	},
}

// GetParams - fetch the parameters for a chain by name
func GetParams(name string) (Params, error) {
	params, ok := paramsTable[name]
	if !ok {
		return Params{}, fault.InvalidChain
	}
	return params, nil
}
