// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

/*
Package progress reports monotonically increasing counts against a known
total while the client pages through a remote record collection.

# Problem Statement

A full dataset fetch can take minutes over a slow link. Callers need
feedback (n of total records fetched) once per page, without the library
committing to any particular rendering. The rendering itself belongs to the
embedding application; this package only defines the producing side and two
reference consumers.

# Usage

	reporter := progress.NewWriter(os.Stderr, "Fetching records")
	reporter.Start(total)
	for each page {
	    reporter.Advance(len(page))
	}
	reporter.Finish()

A nil-safe Nop reporter is available for library call sites where the
caller didn't configure one.
*/
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

// Reporter receives progress updates during a paged fetch.
//
// Start is called once with the remote-reported total before the first
// Advance. Advance is called once per fetched page with the page size.
// Finish is called when the fetch completes or is abandoned. Counts are
// monotonically increasing; implementations must tolerate totals of zero.
type Reporter interface {
	// Start begins a progress sequence against the given total.
	Start(total int)

	// Advance adds n to the current count.
	Advance(n int)

	// Finish ends the sequence. Safe to call more than once.
	Finish()
}

// -----------------------------------------------------------------------------
// Nop
// -----------------------------------------------------------------------------

// Nop is a Reporter that discards all updates.
type Nop struct{}

// Start discards the total.
func (Nop) Start(total int) {}

// Advance discards the increment.
func (Nop) Advance(n int) {}

// Finish does nothing.
func (Nop) Finish() {}

// -----------------------------------------------------------------------------
// Writer
// -----------------------------------------------------------------------------

// Writer renders a single self-overwriting count line to an io.Writer.
//
// When the writer is a *os.File that is not a terminal, output is reduced
// to one final summary line so that piped output stays readable.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	tty   bool

	total   int
	current int
	done    bool
}

// NewWriter creates a Writer reporter with the given label
// (e.g. "Fetching records from Curio").
func NewWriter(w io.Writer, label string) *Writer {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{w: w, label: label, tty: tty}
}

// Start begins a progress sequence against the given total.
func (p *Writer) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.current = 0
	p.done = false
	if p.tty {
		fmt.Fprintf(p.w, "\r%s: 0/%d", p.label, total)
	}
}

// Advance adds n to the current count and re-renders when on a terminal.
func (p *Writer) Advance(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	if p.tty {
		fmt.Fprintf(p.w, "\r%s: %d/%d", p.label, p.current, p.total)
	}
}

// Finish terminates the line on a terminal, or prints the one summary line
// when piped. Subsequent calls are no-ops.
func (p *Writer) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	if p.tty {
		fmt.Fprintln(p.w)
		return
	}
	fmt.Fprintf(p.w, "%s: %d/%d\n", p.label, p.current, p.total)
}

// -----------------------------------------------------------------------------
// Counting (Testing Support)
// -----------------------------------------------------------------------------

// Counting records every update it receives, for test assertions.
type Counting struct {
	mu       sync.Mutex
	Total    int
	Current  int
	Starts   int
	Advances []int
	Finishes int
}

// Start records the total.
func (c *Counting) Start(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Total = total
	c.Starts++
}

// Advance records the increment.
func (c *Counting) Advance(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Current += n
	c.Advances = append(c.Advances, n)
}

// Finish records the call.
func (c *Counting) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Finishes++
}
