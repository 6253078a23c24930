// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package dom

import (
	"golang.org/x/net/html"

	"github.com/bow/domwait/wait"
)

// observation is a subtree subscription registered on a Document.
type observation struct {
	*wait.Feed[*html.Node]
	doc  *Document
	root *html.Node
}

// Disconnect unregisters the observation and stops its delivery.
func (o *observation) Disconnect() {
	o.doc.mu.Lock()
	delete(o.doc.observers, o)
	o.doc.mu.Unlock()

	o.Feed.Disconnect()
}

// Observe subscribes to child insertions and removals anywhere in the subtree of root, including
// root itself. Records are delivered in batches.
func (d *Document) Observe(root *html.Node) (wait.Observation[*html.Node], error) {
	obs := &observation{Feed: wait.NewFeed[*html.Node](), doc: d, root: root}

	d.mu.Lock()
	d.observers[obs] = struct{}{}
	d.mu.Unlock()

	return obs, nil
}

// notifyLocked queues a record for every observation whose root contains target. It must be
// called with the write lock held.
func (d *Document) notifyLocked(rec wait.Mutation[*html.Node]) {
	for obs := range d.observers {
		if contains(obs.root, rec.Target) {
			obs.Push(rec)
		}
	}
}

// detachLocked removes n from its current parent, if any, and records the removal.
func (d *Document) detachLocked(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	// Record against the tree shape before removal, so observers of n's old ancestors see it.
	rec := wait.Mutation[*html.Node]{Target: parent, Removed: []*html.Node{n}}
	d.notifyLocked(rec)
	parent.RemoveChild(n)
}

// AppendChild appends child as the last child of parent. A child that already has a parent is
// moved.
func (d *Document) AppendChild(parent, child *html.Node) error {
	return d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts child into parent, before ref. A nil ref appends. A child that already has
// a parent is moved. It returns ErrHierarchy when child is parent or one of its ancestors, and
// ErrNotChild when ref is not a child of parent.
func (d *Document) InsertBefore(parent, child, ref *html.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if contains(child, parent) {
		return ErrHierarchy
	}
	if ref != nil && (ref.Parent != parent || ref == child) {
		return ErrNotChild
	}

	d.detachLocked(child)
	parent.InsertBefore(child, ref)
	d.notifyLocked(wait.Mutation[*html.Node]{Target: parent, Added: []*html.Node{child}})

	return nil
}

// RemoveChild removes child from parent.
func (d *Document) RemoveChild(parent, child *html.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if child.Parent != parent {
		return ErrNotChild
	}
	d.detachLocked(child)

	return nil
}

// Remove detaches n from its parent. It is a no-op for nodes without a parent.
func (d *Document) Remove(n *html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.detachLocked(n)
}

// ReplaceChildren replaces every child of parent with the given nodes, reported as a single
// record. Given nodes that already have a parent are moved. It returns ErrHierarchy, leaving the
// tree untouched, when any given node is parent or one of its ancestors.
func (d *Document) ReplaceChildren(parent *html.Node, children ...*html.Node) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range children {
		if contains(c, parent) {
			return ErrHierarchy
		}
	}

	var removed []*html.Node
	for c := parent.FirstChild; c != nil; c = parent.FirstChild {
		parent.RemoveChild(c)
		removed = append(removed, c)
	}

	added := make([]*html.Node, 0, len(children))
	for _, c := range children {
		if c.Parent != nil {
			d.detachLocked(c)
		}
		parent.AppendChild(c)
		added = append(added, c)
	}

	d.notifyLocked(wait.Mutation[*html.Node]{Target: parent, Added: added, Removed: removed})

	return nil
}
