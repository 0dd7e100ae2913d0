// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"net/rpc"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/counter"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/rpc/assets"
	"github.com/ejmg/penumbra/rpc/chainparams"
	"github.com/ejmg/penumbra/rpc/lightwallet"
	"github.com/ejmg/penumbra/rpc/node"
	"github.com/ejmg/penumbra/rpc/transaction"
	"github.com/ejmg/penumbra/rpc/validators"
)

func Create(log *logger.L, version string, rpcCount *counter.Counter) *rpc.Server {

	start := time.Now().UTC()

	server := rpc.NewServer()

	_ = server.Register(assets.New(log, mode.Is))
	_ = server.Register(chainparams.New(log))
	_ = server.Register(lightwallet.New(log, mode.Is))
	_ = server.Register(node.New(log, start, version, rpcCount))
	_ = server.Register(transaction.New(log, mode.Is))
	_ = server.Register(validators.New(log, mode.Is))

	return server
}
