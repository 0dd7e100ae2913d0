// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintains a single LevelDB database split into prefixed pools, one
// pool per record kind of the chain state: blocks, note fragments,
// nullifiers, assets, validators, rates, delegation changes,
// authenticated entries and checkpoint blobs
//
// every key is prefixed by one byte to separate the pools:
//
//   B ++ height               - block record: anchor ++ app hash
//   N ++ height ++ position   - note fragment
//   C ++ commitment           - note position index: height ++ position
//   U ++ nullifier            - spend record: height
//   S ++ height ++ nullifier  - spend-by-height index (no value)
//   A ++ asset id             - asset registry record
//   V ++ identity key         - validator record
//   F ++ identity key         - funding stream list
//   R ++ epoch                - base rate record
//   E ++ identity ++ epoch    - validator rate record
//   D ++ epoch ++ identity    - delegation change accumulator
//   J ++ key ++ version       - authenticated entry (versioned)
//   X ++ blob id              - checkpoint blobs ("nct", "gc")
//   Z ++ key                  - test data
//
// all multi-byte integers are stored big endian so that the natural
// LevelDB key ordering is also the numeric ordering, making ordered
// range scans by height, position and epoch a simple prefix iteration
//
// writes only happen through a Transaction: a single LevelDB write
// batch committed atomically, so a block's effects are all-or-nothing
package storage
