// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package wait

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Option configures a Waiter.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger used to report wait resolutions at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Waiter runs appearance and detachment waits against a Tree.
type Waiter[N comparable] struct {
	tree   Tree[N]
	logger *zap.Logger
}

// New creates a Waiter for the given tree.
func New[N comparable](tree Tree[N], opts ...Option) *Waiter[N] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Waiter[N]{tree: tree, logger: o.logger}
}

// SelectElement waits until an element matching selector exists anywhere in the document. See
// SelectElementUnder.
func (w *Waiter[N]) SelectElement(selector string, strategy Strategy) (N, bool, error) {
	return w.SelectElementUnder(w.tree.Document(), selector, strategy)
}

// SelectElementUnder waits until a descendant of root matches selector, and returns it. When the
// strategy's timeout elapses first, it returns false and a nil error. Errors come only from the
// tree, such as a malformed selector.
//
// If a match already exists, it is returned without arming any timer or subscription.
func (w *Waiter[N]) SelectElementUnder(root N, selector string, strategy Strategy) (N, bool, error) {
	var zero N

	cond := func() (N, bool, error) {
		return w.tree.QuerySelector(root, selector)
	}
	if el, found, err := cond(); err != nil || found {
		return el, found, err
	}

	p := normalize(strategy)
	var detect Detector[N]
	if p.variant == VariantObserver {
		detect = observeDetector[N, N](w.tree, root, cond, appearedIn(w.tree, root, selector))
	} else {
		detect = pollDetector[N](p.poll, cond)
	}

	res := await(w.logger, detect, p, zap.String("selector", selector))
	if !res.ok() {
		return zero, false, res.Err
	}

	return res.Value, true, nil
}

// WaitForDetachment waits until element is no longer connected to the document. It returns true
// when it is, and false when the strategy's timeout elapses first.
//
// With the Observer strategy, any structural change anywhere in the document triggers a
// connectivity check, since detachment can happen at any ancestor.
func (w *Waiter[N]) WaitForDetachment(element N, strategy Strategy) (bool, error) {
	cond := func() (bool, bool, error) {
		connected, err := w.tree.IsConnected(element)
		if err != nil {
			return false, false, err
		}
		return !connected, !connected, nil
	}
	if detached, _, err := cond(); err != nil || detached {
		return detached, err
	}

	p := normalize(strategy)
	var detect Detector[bool]
	if p.variant == VariantObserver {
		detect = observeDetector[N, bool](
			w.tree,
			w.tree.Document(),
			cond,
			func([]Mutation[N]) (bool, bool, error) { return cond() },
		)
	} else {
		detect = pollDetector[bool](p.poll, cond)
	}

	res := await(w.logger, detect, p, zap.String("condition", "detached"))

	return res.ok(), res.Err
}

// await runs one race to completion and logs how it was resolved.
func await[T any](logger *zap.Logger, detect Detector[T], p plan, fields ...zap.Field) Result[T] {
	var (
		start = time.Now()
		log   = logger.With(
			append(fields, zap.String("wait_id", uuid.NewString()), zap.Stringer("strategy", p))...,
		)
	)
	log.Debug("waiting")

	res := <-Race(detect, p.timeout)

	log.Debug(
		"wait resolved",
		zap.Stringer("status", res.Status),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(res.Err),
	)

	return res
}
