// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package wait

import "sync"

// Feed is a coalescing mailbox of mutation records, usable as the delivery half of an Observation.
// Push never blocks. Records pushed while the consumer is still busy with a previous batch are
// delivered together as the next batch.
type Feed[N any] struct {
	mu      sync.Mutex
	pending []Mutation[N]
	closed  bool

	wake chan struct{}
	done chan struct{}
	out  chan []Mutation[N]
}

// NewFeed creates a Feed and starts its delivery goroutine, which runs until Disconnect is called.
func NewFeed[N any]() *Feed[N] {
	f := &Feed[N]{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
		out:  make(chan []Mutation[N]),
	}
	go f.run()

	return f
}

// Push queues the given records for delivery. Records pushed after Disconnect are dropped.
func (f *Feed[N]) Push(records ...Mutation[N]) {
	if len(records) == 0 {
		return
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.pending = append(f.pending, records...)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Records returns the batch channel. It is closed once the feed is disconnected.
func (f *Feed[N]) Records() <-chan []Mutation[N] {
	return f.out
}

// Disconnect stops delivery and drops any pending records.
func (f *Feed[N]) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	f.pending = nil
	close(f.done)
}

func (f *Feed[N]) run() {
	defer close(f.out)

	for {
		select {
		case <-f.done:
			return
		case <-f.wake:
		}

		f.mu.Lock()
		batch := f.pending
		f.pending = nil
		f.mu.Unlock()

		if len(batch) == 0 {
			continue
		}

		select {
		case f.out <- batch:
		case <-f.done:
			return
		}
	}
}
