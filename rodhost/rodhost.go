// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

// Package rodhost lets the wait package run against a live browser page driven by go-rod.
//
// Nodes are *rod.Element values. The nil element stands for the page's document: it is what
// Document returns, and querying under it searches the whole page.
package rodhost

import (
	"context"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/bow/domwait/wait"
)

var _ wait.Tree[*rod.Element] = (*Page)(nil)

// Option configures a Page.
type Option func(*Page)

// WithLogger sets the logger for CDP event handling.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Page) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Page adapts a rod page to wait.Tree.
type Page struct {
	page   *rod.Page
	logger *zap.Logger
}

// New wraps the given page.
func New(page *rod.Page, opts ...Option) *Page {
	p := &Page{page: page, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Document returns nil, which stands for the page's document.
func (p *Page) Document() *rod.Element {
	return nil
}

// QuerySelector returns the first element under root matching selector, without rod's implicit
// retrying.
func (p *Page) QuerySelector(root *rod.Element, selector string) (*rod.Element, bool, error) {
	var (
		els rod.Elements
		err error
	)
	if root == nil {
		els, err = p.page.Elements(selector)
	} else {
		els, err = root.Elements(selector)
	}
	if err != nil {
		return nil, false, err
	}
	if els.Empty() {
		return nil, false, nil
	}

	return els.First(), true, nil
}

// Matches reports whether el is an element matching selector. The document never matches.
func (p *Page) Matches(el *rod.Element, selector string) (bool, error) {
	if el == nil {
		return false, nil
	}

	// Comments and other non-element nodes have no matches method.
	res, err := el.Eval(`(s) => this.nodeType === Node.ELEMENT_NODE && this.matches(s)`, selector)
	if err != nil {
		return false, err
	}

	return res.Value.Bool(), nil
}

// IsConnected reports whether el is still attached to the page's document.
func (p *Page) IsConnected(el *rod.Element) (bool, error) {
	if el == nil {
		return true, nil
	}

	res, err := el.Eval(`() => this.isConnected`)
	if err != nil {
		return false, err
	}

	return res.Value.Bool(), nil
}

// position is where a node sits relative to an observed root.
type position int

const (
	outside position = iota
	atRoot
	inside
)

// locate reports where el sits relative to root. Under the document, every node is inside.
func (p *Page) locate(root, el *rod.Element) (position, error) {
	if root == nil {
		return inside, nil
	}

	res, err := root.Eval(`(el) => this === el ? 1 : this.contains(el) ? 2 : 0`, el.Object)
	if err != nil {
		return outside, err
	}

	return position(res.Value.Int()), nil
}

// insertion decides how a child insertion is reported. Insertions outside root are dropped. The
// parent is the record's target unless it is root itself, and only element children are
// candidates; other node types still trigger a re-check of the target.
func insertion(pos position, nodeType int) (report, withTarget, withAdded bool) {
	if pos == outside {
		return false, false, false
	}
	return true, pos == inside, nodeType == elementNode
}

// elementNode is the DOM node type of elements.
const elementNode = 1

// observation is a CDP DOM event subscription.
type observation struct {
	*wait.Feed[*rod.Element]
	cancel context.CancelFunc
}

func (o *observation) Disconnect() {
	o.cancel()
	o.Feed.Disconnect()
}

// Observe subscribes to DOM child insertions and removals in the page, keeping insertions that
// land under root. Removals and whole-document updates are reported as records without nodes,
// which is enough to trigger a re-check.
func (p *Page) Observe(root *rod.Element) (wait.Observation[*rod.Element], error) {
	// CDP only reports changes to nodes it has already sent to the client.
	depth := -1
	if _, err := (proto.DOMGetDocument{Depth: &depth, Pierce: true}).Call(p.page); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(p.page.GetContext())
	var (
		page = p.page.Context(ctx)
		feed = wait.NewFeed[*rod.Element]()
		obs  = &observation{Feed: feed, cancel: cancel}
	)

	events := page.EachEvent(
		func(ev *proto.DOMChildNodeInserted) {
			rec, ok := p.inserted(page, root, ev)
			if ok {
				feed.Push(rec)
			}
		},
		func(ev *proto.DOMChildNodeRemoved) {
			feed.Push(wait.Mutation[*rod.Element]{})
		},
		func(ev *proto.DOMDocumentUpdated) {
			feed.Push(wait.Mutation[*rod.Element]{})
		},
	)
	go events()

	return obs, nil
}

// inserted builds the record for a CDP child insertion. Nodes that cannot be resolved are left out
// of the record, which then only triggers a re-check.
func (p *Page) inserted(
	page *rod.Page,
	root *rod.Element,
	ev *proto.DOMChildNodeInserted,
) (wait.Mutation[*rod.Element], bool) {

	var rec wait.Mutation[*rod.Element]

	parent, err := p.resolve(page, ev.ParentNodeID)
	if err != nil {
		p.logger.Debug("unresolved insertion parent", zap.Error(err))
		return rec, true
	}
	pos, err := p.locate(root, parent)
	if err != nil {
		p.logger.Debug("unresolved insertion parent", zap.Error(err))
		return rec, true
	}

	report, withTarget, withAdded := insertion(pos, ev.Node.NodeType)
	if !report {
		return rec, false
	}
	if withTarget {
		rec.Target = parent
	}
	if withAdded {
		el, err := page.ElementFromNode(ev.Node)
		if err != nil {
			p.logger.Debug("unresolved inserted node", zap.Error(err))
			return rec, true
		}
		rec.Added = []*rod.Element{el}
	}

	return rec, true
}

// resolve returns the element of a CDP node ID.
func (p *Page) resolve(page *rod.Page, id proto.DOMNodeID) (*rod.Element, error) {
	res, err := proto.DOMResolveNode{NodeID: id}.Call(page)
	if err != nil {
		return nil, err
	}
	return page.ElementFromObject(res.Object)
}
