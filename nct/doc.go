// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package nct - note commitment tree manager
//
// maintains the in-memory frontier of the incremental merkle tree of
// note commitments, the ring of recent anchors accepted for
// transaction validity, and the on-disk note fragment records that
// light clients scan.
//
// the frontier is checkpointed into the Blobs pool under the id
// "nct" inside every block transaction, so a restart resumes from
// the exact state of the last committed block.  a separate "gc"
// checkpoint records the lowest tree position that still has its
// witness data retained.
package nct
