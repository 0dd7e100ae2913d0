// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - this is to setup and handle all of the incoming JSON RPC requests
package rpc

import (
	"io/ioutil"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/ejmg/penumbra/counter"
	"github.com/ejmg/penumbra/fault"
	"github.com/ejmg/penumbra/rpc/certificate"
	"github.com/ejmg/penumbra/rpc/handler"
	"github.com/ejmg/penumbra/rpc/listeners"
	"github.com/ejmg/penumbra/rpc/server"
)

const (
	tlsName   = "client_rpc"
	httpsName = "http_rpc"
)

// connection count for rate limiting
var connectionCountRPC counter.Counter

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// Initialise - start the rpc listeners
func Initialise(rpcConfiguration *listeners.RPCConfiguration, httpsConfiguration *listeners.HTTPSConfiguration, version string) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to Start if already started
	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	// configuration carries file names; the PEM content is what the
	// certificate loader wants
	certificatePEM, keyPEM, err := readCertificatePair(
		rpcConfiguration.Certificate, rpcConfiguration.PrivateKey)
	if nil != err {
		return err
	}

	tlsConfig, certificateFingerprint, err := certificate.Get(
		log, tlsName, certificatePEM, keyPEM)
	if nil != err {
		return err
	}

	s := server.Create(log, version, &connectionCountRPC)

	rpcListener, err := listeners.NewRPC(
		rpcConfiguration,
		log,
		&connectionCountRPC,
		s,
		tlsConfig,
		certificateFingerprint,
	)
	if nil != err {
		return err
	}
	err = rpcListener.Serve()
	if nil != err {
		return err
	}

	if 0 != len(httpsConfiguration.Listen) {
		httpsCertificatePEM, httpsKeyPEM, err := readCertificatePair(
			httpsConfiguration.Certificate, httpsConfiguration.PrivateKey)
		if nil != err {
			return err
		}

		httpsTLSConfig, fingerprint, err := certificate.Get(
			log, httpsName, httpsCertificatePEM, httpsKeyPEM)
		if nil != err {
			return err
		}
		log.Infof("%s: SHA3-256 fingerprint: %x", httpsName, fingerprint)

		h := handler.New(log, s, time.Now(), version, httpsConfiguration.MaximumConnections)

		httpsListener, err := listeners.NewHTTPS(
			httpsConfiguration,
			log,
			httpsTLSConfig,
			h,
		)
		if nil != err {
			return err
		}
		err = httpsListener.Serve()
		if nil != err {
			return err
		}
	}

	// all data initialised
	globalData.initialised = true

	return nil
}

func readCertificatePair(certificateFileName string, keyFileName string) (string, string, error) {
	certificate, err := ioutil.ReadFile(certificateFileName)
	if nil != err {
		return "", "", err
	}
	key, err := ioutil.ReadFile(keyFileName)
	if nil != err {
		return "", "", err
	}
	return string(certificate), string(key), nil
}

// Finalise - stop all background tasks
func Finalise() error {

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
