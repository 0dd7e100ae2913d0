// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// error instances
//
// Provides a single instance of errors to allow easy comparison
package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyInitialised           = ProcessError("already initialised")
	AssetNotFound                = NotFoundError("asset not found")
	BlockNotFound                = NotFoundError("block not found")
	CertificateFileAlreadyExists = ExistsError("certificate file already exists")
	CheckpointCorruption         = ProcessError("checkpoint corruption")
	DatabaseIsNotSet             = ProcessError("database is not set")
	DoubleSpend                  = ExistsError("double spend")
	EpochMismatch                = InvalidError("epoch mismatch")
	EpochNotFound                = NotFoundError("epoch not found")
	GenesisAlreadyCommitted      = ExistsError("genesis already committed")
	InitialisationFailed         = ProcessError("initialisation failed")
	InvalidAssetRecord           = InvalidError("invalid asset record")
	InvalidBlockHeaderRecord     = InvalidError("invalid block header record")
	InvalidChain                 = InvalidError("invalid chain")
	InvalidCount                 = InvalidError("invalid count")
	InvalidCursor                = InvalidError("invalid cursor")
	InvalidFundingStream         = InvalidError("invalid funding stream")
	InvalidIdentityKey           = InvalidError("invalid identity key")
	InvalidIpAddress             = InvalidError("invalid ip address")
	InvalidLoggerChannel         = InvalidError("invalid logger channel")
	InvalidNoteRecord            = InvalidError("invalid note record")
	InvalidNullifier             = InvalidError("invalid nullifier")
	InvalidRateRecord            = InvalidError("invalid rate record")
	InvalidSupply                = InvalidError("invalid supply")
	InvalidValidatorRecord       = InvalidError("invalid validator record")
	KeyFileAlreadyExists         = ExistsError("key file already exists")
	MerkleTreeFull               = ProcessError("merkle tree full")
	MissingParameters            = InvalidError("missing parameters")
	NotAvailableDuringResync     = ProcessError("not available during resynchronise")
	NotInitialised               = ProcessError("not initialised")
	NoteNotFound                 = NotFoundError("note not found")
	OutOfRangeHeight             = InvalidError("height is out of range")
	OutOfSequenceBlock           = InvalidError("out of sequence block")
	RateLimiting                 = ProcessError("rate limiting")
	StaleValidatorDefinition     = InvalidError("stale validator definition")
	TransactionAlreadyInUse      = ProcessError("transaction already in use")
	ValidatorNotFound            = NotFoundError("validator not found")
	WrongNetworkForChainParams   = InvalidError("wrong network for chain params")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
