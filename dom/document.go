// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

// Package dom provides an in-memory HTML document that can be waited on with the wait package.
//
// A Document wraps a golang.org/x/net/html tree. It is safe for concurrent use as long as the tree
// is only mutated through Document methods. Selectors follow CSS syntax, as implemented by
// github.com/andybalholm/cascadia.
package dom

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/net/html"

	"github.com/bow/domwait/wait"
)

// selectorCacheSize is the number of compiled selectors kept per document.
const selectorCacheSize = 128

// ErrNotChild is returned when removing a node from a parent it does not belong to.
var ErrNotChild = errors.New("node is not a child of the given parent")

// ErrHierarchy is returned when an insertion would make a node its own ancestor.
var ErrHierarchy = errors.New("node cannot be inserted under itself or its descendants")

var _ wait.Tree[*html.Node] = (*Document)(nil)

// Document is a mutable HTML tree with CSS queries and structural change observation.
type Document struct {
	mu        sync.RWMutex
	root      *html.Node
	observers map[*observation]struct{}
	selectors *lru.Cache[string, cascadia.Selector]
}

// New creates a document containing an empty html, head and body skeleton.
func New() *Document {
	doc, err := ParseString("")
	if err != nil {
		// html.Parse only fails on reader errors.
		panic(err)
	}
	return doc
}

// Parse reads an HTML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	return newDocument(root)
}

// ParseString parses an HTML document from the given string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func newDocument(root *html.Node) (*Document, error) {
	cache, err := lru.New[string, cascadia.Selector](selectorCacheSize)
	if err != nil {
		return nil, err
	}

	return &Document{
		root:      root,
		observers: make(map[*observation]struct{}),
		selectors: cache,
	}, nil
}

// Document returns the top-level document node.
func (d *Document) Document() *html.Node {
	return d.root
}

// Body returns the body element, or nil if the document has none.
func (d *Document) Body() *html.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return findElement(d.root, "body")
}

// Render writes the current document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return html.Render(w, d.root)
}

// compile returns the compiled form of selector, using the document's cache.
func (d *Document) compile(selector string) (cascadia.Selector, error) {
	if sel, ok := d.selectors.Get(selector); ok {
		return sel, nil
	}

	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, err
	}
	d.selectors.Add(selector, sel)

	return sel, nil
}

// QuerySelector returns the first descendant of root, in document order, that matches selector.
func (d *Document) QuerySelector(root *html.Node, selector string) (*html.Node, bool, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if root == nil {
		return nil, false, nil
	}
	el := cascadia.Query(root, sel)

	return el, el != nil, nil
}

// QuerySelectorAll returns every descendant of root that matches selector, in document order.
func (d *Document) QuerySelectorAll(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if root == nil {
		return nil, nil
	}

	return cascadia.QueryAll(root, sel), nil
}

// Matches reports whether n matches selector.
func (d *Document) Matches(n *html.Node, selector string) (bool, error) {
	sel, err := d.compile(selector)
	if err != nil {
		return false, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	return n != nil && sel.Match(n), nil
}

// IsConnected reports whether n is the document node or one of its descendants.
func (d *Document) IsConnected(n *html.Node) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return contains(d.root, n), nil
}

// contains reports whether n is ancestor or n itself.
func contains(ancestor, n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// CreateElement creates a detached element. Attributes are given as alternating key and value
// strings; a trailing key without value gets an empty value.
func CreateElement(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i < len(attrs); i += 2 {
		attr := html.Attribute{Key: attrs[i]}
		if i+1 < len(attrs) {
			attr.Val = attrs[i+1]
		}
		n.Attr = append(n.Attr, attr)
	}
	return n
}
