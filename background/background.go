// Copyright (c) 2014-2016 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background

import (
	"sync"
)

// Process - type signature for the Run method of a background process
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// T - handle for later stopping
type T struct {
	sync.WaitGroup
	finish chan struct{}
}

// Start - start up a set of background processes
// all processes share the same args value
func Start(processes Processes, args interface{}) *T {

	register := &T{
		finish: make(chan struct{}),
	}
	register.Add(len(processes))

	// start each background
	for _, p := range processes {
		go func(p Process) {
			p.Run(args, register.finish)
			register.Done()
		}(p)
	}
	return register
}

// Stop - stop a set of background processes
func (t *T) Stop() {

	if nil == t {
		return
	}

	// shutdown all background tasks
	close(t.finish)

	// wait for all to finish
	t.Wait()
}
