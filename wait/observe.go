// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package wait

// inspector evaluates a wait condition against one batch of mutation records.
type inspector[N comparable, T any] func(batch []Mutation[N]) (T, bool, error)

// observeDetector subscribes to structural changes under root and runs inspect on every batch.
//
// The condition is checked once more right after subscribing: a change landing between the
// caller's early check and the subscription would otherwise go unnoticed until the timeout.
func observeDetector[N comparable, T any](
	tree Tree[N],
	root N,
	cond check[T],
	inspect inspector[N, T],
) Detector[T] {

	return func(signal func(T), fail func(error)) func() {
		obs, err := tree.Observe(root)
		if err != nil {
			fail(err)
			return nil
		}

		done := make(chan struct{})
		stop := func() {
			close(done)
			obs.Disconnect()
		}

		if v, ok, err := cond(); err != nil {
			fail(err)
			return stop
		} else if ok {
			signal(v)
			return stop
		}

		go func() {
			for {
				select {
				case <-done:
					return
				case batch, open := <-obs.Records():
					if !open {
						return
					}
					v, ok, err := inspect(batch)
					if err != nil {
						fail(err)
						return
					}
					if ok {
						signal(v)
						return
					}
				}
			}
		}()

		return stop
	}
}

// appearedIn looks for the first node matching selector in a batch. For each record the changed
// target is checked first, then each added node followed by its descendants. The root itself is
// never a candidate.
func appearedIn[N comparable](tree Tree[N], root N, selector string) inspector[N, N] {
	return func(batch []Mutation[N]) (N, bool, error) {
		var zero N

		for _, m := range batch {
			if m.Target != zero && m.Target != root {
				ok, err := tree.Matches(m.Target, selector)
				if err != nil {
					return zero, false, err
				}
				if ok {
					return m.Target, true, nil
				}
			}

			for _, added := range m.Added {
				if added == zero {
					continue
				}
				ok, err := tree.Matches(added, selector)
				if err != nil {
					return zero, false, err
				}
				if ok {
					return added, true, nil
				}
				el, found, err := tree.QuerySelector(added, selector)
				if err != nil || found {
					return el, found, err
				}
			}
		}

		return zero, false, nil
	}
}
