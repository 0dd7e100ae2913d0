// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stake - the staking ledger
//
// holds the validator registry with its funding streams, the per
// epoch base and validator rates, and the delegation changes that
// accumulate during an epoch and are consumed at its boundary.
//
// rates are fixed point integers scaled by 1e8; an exchange rate of
// 1_0000_0000 means one delegation token redeems for exactly one
// staking token.  all rate rows are append only, one per epoch, and
// the epoch sequence can neither skip nor repeat.
package stake
