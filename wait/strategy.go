// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package wait

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the wait timeout used when none is given.
	DefaultTimeout = 10 * time.Second
	// DefaultPollFreq is the Interval poll frequency used when none is given.
	DefaultPollFreq = 50 * time.Millisecond
)

// Strategy variant names, as used in Descriptor and on the command line.
const (
	VariantInterval = "interval"
	VariantObserver = "observer"
)

// ErrUnknownVariant is returned when a strategy variant name is neither "interval" nor "observer".
var ErrUnknownVariant = errors.New("unknown strategy variant")

// Strategy selects how a wait detects that its condition holds. It is one of Interval, Observer
// or Timeout. A nil Strategy is the same as Interval{}.
type Strategy interface {
	plan() plan
}

// Interval re-checks the condition every Poll until Timeout elapses. Zero fields take the
// defaults.
type Interval struct {
	Timeout time.Duration
	Poll    time.Duration
}

// Observer re-checks the condition whenever the tree reports a structural change, until Timeout
// elapses. A zero Timeout takes the default.
type Observer struct {
	Timeout time.Duration
}

// Timeout is shorthand for an Interval strategy with the given timeout and the default poll
// frequency.
type Timeout time.Duration

func (s Interval) plan() plan {
	return plan{
		variant: VariantInterval,
		timeout: orDefault(s.Timeout, DefaultTimeout),
		poll:    orDefault(s.Poll, DefaultPollFreq),
	}
}

func (s Observer) plan() plan {
	return plan{variant: VariantObserver, timeout: orDefault(s.Timeout, DefaultTimeout)}
}

func (t Timeout) plan() plan {
	return Interval{Timeout: time.Duration(t)}.plan()
}

// plan is the normalized form of every Strategy.
type plan struct {
	variant string
	timeout time.Duration
	poll    time.Duration
}

func (p plan) String() string {
	if p.variant == VariantObserver {
		return fmt.Sprintf("%s(timeout=%s)", p.variant, p.timeout)
	}
	return fmt.Sprintf("%s(timeout=%s, poll=%s)", p.variant, p.timeout, p.poll)
}

func normalize(s Strategy) plan {
	if s == nil {
		return Interval{}.plan()
	}
	return s.plan()
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// NewStrategy builds the Strategy named by variant. An empty variant means "interval". The poll
// frequency is ignored by the observer variant.
func NewStrategy(variant string, timeout, pollFreq time.Duration) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(variant)) {
	case "", VariantInterval:
		return Interval{Timeout: timeout, Poll: pollFreq}, nil
	case VariantObserver:
		return Observer{Timeout: timeout}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
}

// Descriptor is the serialized form of a Strategy, as found in configuration files.
type Descriptor struct {
	// Variant is either "interval" or "observer".
	Variant string `yaml:"variant" toml:"variant"`
	// TimeoutInMil is the wait timeout in milliseconds.
	TimeoutInMil int `yaml:"timeoutInMil" toml:"timeoutInMil"`
	// IntervalInMil is the poll frequency in milliseconds. Only used by the interval variant.
	IntervalInMil int `yaml:"intervalInMil,omitempty" toml:"intervalInMil,omitempty"`
}

// Strategy converts the descriptor into a Strategy.
func (d Descriptor) Strategy() (Strategy, error) {
	return NewStrategy(
		d.Variant,
		time.Duration(d.TimeoutInMil)*time.Millisecond,
		time.Duration(d.IntervalInMil)*time.Millisecond,
	)
}
