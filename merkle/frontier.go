// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"encoding/binary"

	"github.com/ejmg/penumbra/fault"
)

// TreeDepth - fixed depth of the note commitment tree
//
// positions are dense from zero so the tree holds 2^32 leaves
const TreeDepth = 32

// Frontier - minimal state of the incremental merkle accumulator
//
// holds one filled subtree digest per level; this is sufficient to
// keep appending leaves without replaying history and to recompute
// the root after every append
//
// the root is a pure function of the ordered leaf sequence: appending
// the same commitments in the same order always reproduces the same
// anchor
type Frontier struct {
	position uint64            // number of leaves appended so far
	filled   [TreeDepth]Digest // filled left subtree per level
}

// digests of all-empty subtrees, one per level; index 0 is the empty leaf
var emptySubtree [TreeDepth + 1]Digest

func init() {
	for level := 1; level <= TreeDepth; level += 1 {
		emptySubtree[level] = HashPair(emptySubtree[level-1], emptySubtree[level-1])
	}
}

// NewFrontier - an empty accumulator
func NewFrontier() *Frontier {
	return &Frontier{}
}

// Position - the position the next appended leaf will receive
func (f *Frontier) Position() uint64 {
	return f.position
}

// Append - add one leaf, returning its position
func (f *Frontier) Append(leaf Digest) (uint64, error) {
	if f.position >= 1<<TreeDepth {
		return 0, fault.MerkleTreeFull
	}

	position := f.position

	node := leaf
	index := position
	for level := 0; level < TreeDepth; level += 1 {
		if 0 == index&1 {
			// left child: record and stop, the right side is still empty
			f.filled[level] = node
			break
		}
		// right child: merge with the recorded left sibling and carry up
		node = HashPair(f.filled[level], node)
		index >>= 1
	}

	f.position = position + 1
	return position, nil
}

// Root - current root of the accumulator
//
// folds the frontier against empty subtrees on the right
func (f *Frontier) Root() Digest {
	node := emptySubtree[0]
	index := f.position
	for level := 0; level < TreeDepth; level += 1 {
		if 0 == index&1 {
			node = HashPair(node, emptySubtree[level])
		} else {
			node = HashPair(f.filled[level], node)
		}
		index >>= 1
	}
	return node
}

// serialised layout: position ++ filled subtrees ++ checksum
const (
	packedFrontierSize = 8 + TreeDepth*DigestLength + DigestLength
)

// Pack - serialise the frontier for checkpointing
//
// the trailing digest detects a corrupted or truncated checkpoint on
// restore
func (f *Frontier) Pack() []byte {
	buffer := make([]byte, packedFrontierSize)
	binary.BigEndian.PutUint64(buffer[:8], f.position)
	for level := 0; level < TreeDepth; level += 1 {
		copy(buffer[8+level*DigestLength:], f.filled[level][:])
	}
	checksum := NewDigest(buffer[:packedFrontierSize-DigestLength])
	copy(buffer[packedFrontierSize-DigestLength:], checksum[:])
	return buffer
}

// UnpackFrontier - restore a frontier from checkpoint bytes
//
// restores the exact same frontier bit-for-bit or fails with
// checkpoint corruption
func UnpackFrontier(buffer []byte) (*Frontier, error) {
	if packedFrontierSize != len(buffer) {
		return nil, fault.CheckpointCorruption
	}

	checksum := NewDigest(buffer[:packedFrontierSize-DigestLength])
	var stored Digest
	copy(stored[:], buffer[packedFrontierSize-DigestLength:])
	if checksum != stored {
		return nil, fault.CheckpointCorruption
	}

	f := &Frontier{
		position: binary.BigEndian.Uint64(buffer[:8]),
	}
	for level := 0; level < TreeDepth; level += 1 {
		copy(f.filled[level][:], buffer[8+level*DigestLength:])
	}
	return f, nil
}
