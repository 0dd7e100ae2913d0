// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"encoding/hex"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/mode"
	"github.com/ejmg/penumbra/nct"
	"github.com/ejmg/penumbra/nullifier"
	"github.com/ejmg/penumbra/rpc/ratelimit"
)

const (
	rateLimitTransaction = 200
	rateBurstTransaction = 100
)

// Transaction - an RPC entry for transaction related functions
type Transaction struct {
	Log          *logger.L
	Limiter      *rate.Limiter
	IsNormalMode func(mode.Mode) bool
}

func New(log *logger.L, isNormalMode func(mode.Mode) bool) *Transaction {
	return &Transaction{
		Log:          log,
		Limiter:      rate.NewLimiter(rateLimitTransaction, rateBurstTransaction),
		IsNormalMode: isNormalMode,
	}
}

// ---

// ByNoteArguments - arguments for source lookup RPC request
type ByNoteArguments struct {
	Commitment merkle.Digest `json:"commitment"`
}

// ByNoteReply - results from source lookup RPC
type ByNoteReply struct {
	TxId     string `json:"txId"`
	Height   uint64 `json:"height"`
	Position uint64 `json:"position"`
}

// ByNote - find the transaction that produced a note commitment
func (t *Transaction) ByNote(arguments *ByNoteArguments, reply *ByNoteReply) error {

	if err := ratelimit.Limit(t.Limiter); nil != err {
		return err
	}

	if !t.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	t.Log.Infof("Transaction.ByNote: %+v", arguments)

	fragment, err := nct.NoteByCommitment(arguments.Commitment)
	if nil != err {
		return err
	}

	reply.TxId = hex.EncodeToString(fragment.TransactionID[:])
	reply.Height = fragment.Height
	reply.Position = fragment.Position
	return nil
}

// ---

// SpentArguments - arguments for nullifier status RPC request
type SpentArguments struct {
	Nullifiers []nullifier.Nullifier `json:"nullifiers"`
}

// SpentStatus - one nullifier's status in the response
type SpentStatus struct {
	Spent  bool   `json:"spent"`
	Height uint64 `json:"height,omitempty"`
}

// SpentReply - results from nullifier status RPC
type SpentReply struct {
	Nullifiers []SpentStatus `json:"nullifiers"`
}

// maximum nullifiers in one status request
const maximumNullifiers = 100

// Spent - query whether nullifiers have been revealed
func (t *Transaction) Spent(arguments *SpentArguments, reply *SpentReply) error {

	if err := ratelimit.LimitN(t.Limiter, len(arguments.Nullifiers), maximumNullifiers); nil != err {
		return err
	}

	if !t.IsNormalMode(mode.Normal) {
		return fault.NotAvailableDuringResync
	}

	statuses := make([]SpentStatus, len(arguments.Nullifiers))
	for i, n := range arguments.Nullifiers {
		height, spent := nullifier.IsSpent(n)
		statuses[i] = SpentStatus{
			Spent:  spent,
			Height: height,
		}
	}
	reply.Nullifiers = statuses
	return nil
}
