// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package wait

import "time"

// check evaluates a wait condition once.
type check[T any] func() (T, bool, error)

// pollDetector re-runs check every pollFreq. The first tick happens one pollFreq after arming;
// the caller is expected to have checked once already.
func pollDetector[T any](pollFreq time.Duration, cond check[T]) Detector[T] {
	return func(signal func(T), fail func(error)) func() {
		done := make(chan struct{})

		go func() {
			ticker := time.NewTicker(pollFreq)
			defer ticker.Stop()

			for {
				select {
				case <-done:
					return
				case <-ticker.C:
				}

				// Both channels may be ready at once, so prefer stopping. A stop racing the check
				// below can still let one late check run; its signal is ignored by the race.
				select {
				case <-done:
					return
				default:
				}

				v, ok, err := cond()
				if err != nil {
					fail(err)
					return
				}
				if ok {
					signal(v)
					return
				}
			}
		}()

		return func() { close(done) }
	}
}
