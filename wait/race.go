// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package wait

import (
	"sync"
	"sync/atomic"
	"time"
)

// Detector arms a mechanism that eventually reports success through signal, or an unrecoverable
// error through fail. It returns the function that disarms the mechanism, which may be nil when
// there is nothing to disarm.
//
// Both callbacks may be invoked synchronously, before Detector returns. Calls made after the race
// has been settled are ignored. The returned stop function must not block on the mechanism's own
// goroutines, since it may be invoked from within signal or fail.
type Detector[T any] func(signal func(T), fail func(error)) (stop func())

// cleanup holds every cancel handle of one race. Running it more than once is a no-op, and any
// handle registered after it ran is cancelled on registration.
type cleanup struct {
	mu    sync.Mutex
	done  bool
	timer *time.Timer
	stop  func()
}

func (c *cleanup) setTimer(timer *time.Timer) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		timer.Stop()
		return
	}
	c.timer = timer
	c.mu.Unlock()
}

func (c *cleanup) setStop(stop func()) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		stop()
		return
	}
	c.stop = stop
	c.mu.Unlock()
}

func (c *cleanup) isDone() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.done
}

func (c *cleanup) run() {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	timer, stop := c.timer, c.stop
	c.timer, c.stop = nil, nil
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if stop != nil {
		stop()
	}
}

// Race arms the given detector against a timeout and returns a channel that receives exactly one
// Result before being closed. A non-positive timeout means DefaultTimeout.
//
// The winning path cancels the losing one before the result is sent, so once the result can be
// received the timer is stopped and the detector is disarmed.
func Race[T any](detect Detector[T], timeout time.Duration) <-chan Result[T] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var (
		out     = make(chan Result[T], 1)
		cu      = &cleanup{}
		settled atomic.Bool
	)
	settle := func(res Result[T]) {
		if !settled.CompareAndSwap(false, true) {
			return
		}
		cu.run()
		out <- res
		close(out)
	}

	stop := detect(
		func(v T) { settle(Result[T]{Status: Ready, Value: v}) },
		func(err error) { settle(Result[T]{Status: Failed, Err: err}) },
	)
	if stop != nil {
		cu.setStop(stop)
	}

	// Settled while arming: there is nothing left to time out.
	if cu.isDone() {
		return out
	}
	cu.setTimer(time.AfterFunc(timeout, func() { settle(Result[T]{Status: TimedOut}) }))

	return out
}
