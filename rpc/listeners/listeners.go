// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package listeners - tls listeners carrying the json rpc service
//
// two transports share one rpc.Server: a raw tls stream accepting
// json rpc connections, and an https gateway for clients that can
// only POST
package listeners

// Listener - serve a configured transport until shutdown
type Listener interface {
	Serve() error
}
