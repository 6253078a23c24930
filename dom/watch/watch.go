// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

// Package watch keeps a dom.Document in sync with an HTML file on disk.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/bow/domwait/dom"
)

// DefaultDebounce is how long the file must stay quiet after a change before it is reloaded.
const DefaultDebounce = 20 * time.Millisecond

// ErrClosed is returned when reloading a closed File.
var ErrClosed = errors.New("watched file is closed")

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger for reload and watcher events.
func WithLogger(logger *zap.Logger) Option {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithDebounce sets how long the file must stay quiet before a reload.
func WithDebounce(d time.Duration) Option {
	return func(f *File) {
		f.debounce = d
	}
}

// File is an HTML file loaded into a Document. Every time the file changes on disk, it is parsed
// again and the document's children are replaced with the new ones in a single mutation. Nodes of
// the previous version thus become detached, and observers of the document see the new nodes as
// added.
type File struct {
	path     string
	doc      *dom.Document
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration

	mu     sync.Mutex
	closed bool
	stopCh chan struct{}
	doneCh chan struct{}
}

// Open loads the HTML file at path and starts watching it.
func Open(path string, opts ...Option) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(raw)
	raw.Close()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file rather than write into it.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	f := &File{
		path:     abs,
		doc:      doc,
		watcher:  watcher,
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(zap.String("file", abs))

	go f.run()

	return f, nil
}

// Document returns the live document of the file.
func (f *File) Document() *dom.Document {
	return f.doc
}

// Reload parses the file again and swaps the document's contents.
func (f *File) Reload() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}

	raw, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer raw.Close()

	fresh, err := html.Parse(raw)
	if err != nil {
		return err
	}

	var children []*html.Node
	for c := fresh.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	if err := f.doc.ReplaceChildren(f.doc.Document(), children...); err != nil {
		return err
	}
	f.logger.Debug("document reloaded")

	return nil
}

// Close stops watching the file. The document stays usable.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	close(f.stopCh)
	<-f.doneCh

	return f.watcher.Close()
}

func (f *File) run() {
	defer close(f.doneCh)

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-f.stopCh:
			return

		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			f.logger.Debug("file changed", zap.Stringer("op", event.Op))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(f.debounce)
			reload = timer.C

		case <-reload:
			reload = nil
			if err := f.Reload(); err != nil && !errors.Is(err, ErrClosed) {
				f.logger.Warn("reload failed", zap.Error(err))
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("watcher error", zap.Error(err))
		}
	}
}
