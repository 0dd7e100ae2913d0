// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package genesis - initial application state for a new chain
//
// the app state names the starting validator set with voting powers
// and funding streams, plus any pre-registered assets; committing it
// seeds the rate tables for epochs 0 and 1 so the staking ledger can
// run from the first block
package genesis

import (
	"encoding/json"
	"io/ioutil"

	"github.com/ejmg/penumbra/asset"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/stake"
	"github.com/ejmg/penumbra/storage"
)

// Allocation - one genesis validator with its funding streams
type Allocation struct {
	Validator      stake.Validator       `json:"validator"`
	FundingStreams []stake.FundingStream `json:"funding_streams"`
}

// AssetEntry - one pre-registered asset denomination
type AssetEntry struct {
	ID     asset.ID `json:"asset_id"`
	Denom  string   `json:"denom"`
	Supply int64    `json:"supply"`
}

// AppState - everything a new chain starts with
type AppState struct {
	Allocations []Allocation `json:"allocations"`
	Assets      []AssetEntry `json:"assets"`
}

// ReadAppStateFile - decode a JSON app state file
func ReadAppStateFile(fileName string) (*AppState, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	state := &AppState{}
	err = json.Unmarshal(data, state)
	if nil != err {
		return nil, err
	}
	return state, nil
}

// Commit - write the genesis application state
//
// refuses to run on a store that already has rate data; all writes
// happen in one transaction so a failure leaves the store empty
func Commit(state *AppState) error {

	if _, committed := stake.Epoch(); committed {
		return fault.GenesisAlreadyCommitted
	}

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return err
	}

	identities := make([]stake.IdentityKey, len(state.Allocations))
	for i, allocation := range state.Allocations {
		validator := allocation.Validator
		err = stake.DefineValidator(trx, &validator, allocation.FundingStreams)
		if nil != err {
			trx.Abort()
			return err
		}
		identities[i] = validator.IdentityKey
	}

	stake.WriteGenesisRates(trx, identities)

	for _, entry := range state.Assets {
		err = asset.Upsert(trx, entry.ID, entry.Denom, entry.Supply, 0)
		if nil != err {
			trx.Abort()
			return err
		}
	}

	return trx.Commit()
}
