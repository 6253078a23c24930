// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bow/domwait/wait"
)

// printer writes status lines for concurrent waits, one whole line at a time.
type printer struct {
	mu      sync.Mutex
	out     io.Writer
	isQuiet bool
	msgFmt  string
}

func newPrinter(out io.Writer, selectors []string, isQuiet bool) *printer {
	statusVerb := mkFmtVerb(
		[]string{wait.Waiting.String(), wait.Ready.String(), wait.Failed.String(), "OK", "ERROR"},
		0,
		false,
	)
	selectorVerb := mkFmtVerb(selectors, 1, true)

	return &printer{
		out:     out,
		isQuiet: isQuiet,
		msgFmt:  fmt.Sprintf("%s: %s %%s\n", statusVerb, selectorVerb),
	}
}

func (p *printer) waiting(selector string, timeout time.Duration) {
	if p.isQuiet {
		return
	}
	p.line(wait.Waiting.String(), selector, "for "+timeout.String())
}

func (p *printer) ready(selector string, elapsed time.Duration) {
	if p.isQuiet {
		return
	}
	p.line(wait.Ready.String(), selector, "in "+fmtElapsedTime(elapsed))
}

// failed is shown even when quiet.
func (p *printer) failed(selector string, err error) {
	p.line(wait.Failed.String(), selector, err.Error())
}

func (p *printer) done(elapsed time.Duration) {
	if p.isQuiet {
		return
	}
	p.printf("%7s: all ready in %s\n", "OK", fmtElapsedTime(elapsed))
}

func (p *printer) error(err error) {
	p.printf("%7s: %s\n", "ERROR", err)
}

func (p *printer) line(status, selector, detail string) {
	p.printf(p.msgFmt, status, selector, detail)
}

func (p *printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

// fmtElapsedTime creates a string representation of the given message elapsed time that is more
// human-readable (max 2 digits after decimal).
func fmtElapsedTime(et time.Duration) string {
	// Sub-microsecond time needs no special formatting.
	if et < time.Microsecond {
		return et.String()
	}

	var div uint64
	switch {
	case et < time.Millisecond:
		div = uint64(10 * time.Nanosecond)
	case et < time.Second:
		div = uint64(10 * time.Microsecond)
	default:
		div = uint64(10 * time.Millisecond)
	}

	var (
		rounder = div / 2
		val     = uint64(et)
		rem     = val % div
	)
	if rem >= rounder {
		val += rounder
	}
	et = time.Duration(val / div * div)

	return et.String()
}

// maxLength calculates the maximum length of the given strings.
func maxLength(values []string) int {
	var result int

	for _, value := range values {
		if curLen := len(value); curLen > result {
			result = curLen
		}
	}

	return result
}

// mkFmtVerb creates a format verb with a the proper spacing and padding suitable for all the given
// string values.
func mkFmtVerb(values []string, padding int, leftJustify bool) string {
	ml := maxLength(values)

	multiplier := -1
	if !leftJustify {
		multiplier = 1
	}

	verb := fmt.Sprintf("%%%ds", multiplier*(ml+padding))

	return verb
}
