// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

// Package wait is a library for waiting on document trees. It provides functions for waiting until
// an element matching a CSS selector appears under a root node, and until a known element is
// detached from its document.
//
// Both waits are bounded by a timeout and come in two strategies: Interval re-checks the condition
// at a fixed poll frequency, while Observer re-checks it whenever the tree reports a structural
// change. The tree itself is anything implementing Tree, see the dom and rodhost packages.
package wait
