// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package wait

// Tree is the document capability the waiters consume. N is the node handle type of the host, and
// its zero value is never a valid node.
type Tree[N comparable] interface {
	// Document returns the top-level node of the document.
	Document() N
	// QuerySelector returns the first descendant of root matching selector. Root itself is never
	// a candidate.
	QuerySelector(root N, selector string) (N, bool, error)
	// Matches reports whether n itself matches selector.
	Matches(n N, selector string) (bool, error)
	// IsConnected reports whether n is reachable from the document's top-level node.
	IsConnected(n N) (bool, error)
	// Observe subscribes to child insertions and removals anywhere in the subtree of root.
	Observe(root N) (Observation[N], error)
}

// Mutation is a single structural change: nodes added to or removed from Target.
type Mutation[N any] struct {
	Target  N
	Added   []N
	Removed []N
}

// Observation is a live structural change subscription.
type Observation[N any] interface {
	// Records delivers batches of mutations in the order they happened.
	Records() <-chan []Mutation[N]
	// Disconnect stops the subscription. It is safe to call more than once.
	Disconnect()
}
