// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package jmt - versioned authenticated key-value entries
//
// a second authenticated structure parallel to the note commitment
// tree; the root over all recorded entries is the app hash published
// in every block record
//
// the backing is deliberately a capability interface so the daemon is
// not wired to one particular merkle tree implementation; the default
// implementation chains entry digests over the AuthenticatedEntries
// pool
package jmt

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/ejmg/penumbra/merkle"
	"github.com/ejmg/penumbra/storage"
)

// Tree - authenticated versioned key-value capability
//
// versions are block heights; versions are encoded big endian so the
// store's lexicographic key order is also version order and "latest"
// is a last-in-range lookup
type Tree interface {
	// record a key/value at a version inside the open transaction,
	// returning the new root
	Put(trx storage.Transaction, version uint64, key merkle.Digest, value []byte) merkle.Digest

	// latest recorded value and its version for a key
	Latest(key merkle.Digest) ([]byte, uint64, bool)

	// root as of a specific version
	RootAt(version uint64) (merkle.Digest, bool)

	// root of the highest committed version
	CurrentRoot() merkle.Digest
}

// key namespaces inside the AuthenticatedEntries pool
const (
	rootTag  = 0x00
	entryTag = 0x01
)

// KeyDigest - domain-separated digest of a logical entry name
//
// all entry keys are fixed-length digests so versioned range scans
// cannot run across neighbouring keys
func KeyDigest(name string) merkle.Digest {
	return sha3.Sum256(append([]byte("penumbra.jmt.key:"), name...))
}

type tree struct {
	pool *storage.PoolHandle
}

// New - an entry tree over the supplied pool
func New(pool *storage.PoolHandle) Tree {
	return &tree{
		pool: pool,
	}
}

func rootKey(version uint64) []byte {
	key := make([]byte, 9)
	key[0] = rootTag
	binary.BigEndian.PutUint64(key[1:], version)
	return key
}

func entryKey(key merkle.Digest, version uint64) []byte {
	buffer := make([]byte, 1+merkle.DigestLength+8)
	buffer[0] = entryTag
	copy(buffer[1:], key[:])
	binary.BigEndian.PutUint64(buffer[1+merkle.DigestLength:], version)
	return buffer
}

func (t *tree) Put(trx storage.Transaction, version uint64, key merkle.Digest, value []byte) merkle.Digest {

	// leaf digest binds key, value and version together
	leafData := make([]byte, 0, merkle.DigestLength+len(value)+8)
	leafData = append(leafData, key[:]...)
	leafData = append(leafData, value...)
	versionBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(versionBytes, version)
	leafData = append(leafData, versionBytes...)
	leaf := merkle.NewDigest(leafData)

	// chain onto an earlier entry at the same version, if any,
	// otherwise onto the highest committed root
	var previous merkle.Digest
	if buffer := trx.Get(t.pool, rootKey(version)); nil != buffer {
		copy(previous[:], buffer)
	} else {
		previous = t.CurrentRoot()
	}

	root := merkle.HashPair(previous, leaf)

	trx.Put(t.pool, entryKey(key, version), value)
	trx.Put(t.pool, rootKey(version), root[:])

	return root
}

func (t *tree) Latest(key merkle.Digest) ([]byte, uint64, bool) {
	partial := make([]byte, 1+merkle.DigestLength)
	partial[0] = entryTag
	copy(partial[1:], key[:])

	element, found := t.pool.LastElementUnder(partial)
	if !found {
		return nil, 0, false
	}

	version := binary.BigEndian.Uint64(element.Key[1+merkle.DigestLength:])
	return element.Value, version, true
}

func (t *tree) RootAt(version uint64) (merkle.Digest, bool) {
	buffer := t.pool.Get(rootKey(version))
	if nil == buffer || merkle.DigestLength != len(buffer) {
		return merkle.Digest{}, false
	}
	var root merkle.Digest
	copy(root[:], buffer)
	return root, true
}

func (t *tree) CurrentRoot() merkle.Digest {
	element, found := t.pool.LastElementUnder([]byte{rootTag})
	if !found {
		return merkle.Digest{}
	}
	var root merkle.Digest
	copy(root[:], element.Value)
	return root
}
