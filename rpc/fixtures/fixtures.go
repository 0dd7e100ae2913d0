// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test helpers for the rpc packages
package fixtures

import (
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
)

// LogCategory - logger channel used by rpc tests
const LogCategory = "testing"

const testingDirName = "testing"

// SetupTestLogger - start logging into a scratch directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(testingDirName, 0700)

	logging := logger.Configuration{
		Directory: testingDirName,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - remove test logging files
func TeardownTestLogger() {
	removeFiles()
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

// Certificate - self signed test certificate PEM, generated on first
// use and cached in dir
func Certificate(dir string) string {
	certificate, _ := certificatePair(dir)
	return certificate
}

// Key - private key PEM matching Certificate
func Key(dir string) string {
	_, key := certificatePair(dir)
	return key
}

func certificatePair(dir string) (string, string) {
	certificateFileName := path.Join(dir, "test.crt")
	keyFileName := path.Join(dir, "test.key")

	certificate, err1 := ioutil.ReadFile(certificateFileName)
	key, err2 := ioutil.ReadFile(keyFileName)
	if nil == err1 && nil == err2 {
		return string(certificate), string(key)
	}

	validUntil := time.Now().Add(365 * 24 * time.Hour)
	certificate, key, err := certgen.NewTLSCertPair("rpc testing", validUntil, true, nil)
	if nil != err {
		panic(fmt.Sprintf("certificate generation failed: %s", err))
	}

	_ = ioutil.WriteFile(certificateFileName, certificate, 0666)
	_ = ioutil.WriteFile(keyFileName, key, 0600)

	return string(certificate), string(key)
}
