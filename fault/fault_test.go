// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/ejmg/penumbra/fault"
)

// test that the classification functions work correctly
func TestClassification(t *testing.T) {

	errorList := []struct {
		err      error
		exists   bool
		invalid  bool
		notFound bool
		process  bool
	}{
		{fault.DoubleSpend, true, false, false, false},
		{fault.GenesisAlreadyCommitted, true, false, false, false},
		{fault.EpochMismatch, false, true, false, false},
		{fault.InvalidFundingStream, false, true, false, false},
		{fault.StaleValidatorDefinition, false, true, false, false},
		{fault.OutOfSequenceBlock, false, true, false, false},
		{fault.AssetNotFound, false, false, true, false},
		{fault.ValidatorNotFound, false, false, true, false},
		{fault.EpochNotFound, false, false, true, false},
		{fault.CheckpointCorruption, false, false, false, true},
		{fault.NotInitialised, false, false, false, true},
	}

	for i, item := range errorList {
		if fault.IsErrExists(item.err) != item.exists {
			t.Errorf("%d: exists misclassified: %v", i, item.err)
		}
		if fault.IsErrInvalid(item.err) != item.invalid {
			t.Errorf("%d: invalid misclassified: %v", i, item.err)
		}
		if fault.IsErrNotFound(item.err) != item.notFound {
			t.Errorf("%d: not found misclassified: %v", i, item.err)
		}
		if fault.IsErrProcess(item.err) != item.process {
			t.Errorf("%d: process misclassified: %v", i, item.err)
		}
	}
}
