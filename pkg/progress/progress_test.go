// Copyright (C) 2025 Curio Data (oss@curiodata.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriter_PipedOutputIsSingleLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewWriter(&buf, "Fetching records")

	p.Start(3)
	p.Advance(1)
	p.Advance(1)
	p.Advance(1)
	p.Finish()

	got := buf.String()
	if got != "Fetching records: 3/3\n" {
		t.Errorf("piped output = %q, want single summary line", got)
	}
}

func TestWriter_FinishIdempotent(t *testing.T) {
	var buf bytes.Buffer
	p := NewWriter(&buf, "x")

	p.Start(1)
	p.Advance(1)
	p.Finish()
	p.Finish()

	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Errorf("expected one line after double Finish, got %d", n)
	}
}

func TestWriter_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewWriter(&buf, "empty")

	p.Start(0)
	p.Finish()

	if got := buf.String(); got != "empty: 0/0\n" {
		t.Errorf("zero-total output = %q", got)
	}
}

func TestCounting_RecordsSequence(t *testing.T) {
	c := &Counting{}
	c.Start(5)
	c.Advance(2)
	c.Advance(3)
	c.Finish()

	if c.Total != 5 || c.Current != 5 || c.Starts != 1 || c.Finishes != 1 {
		t.Errorf("unexpected state: %+v", c)
	}
	if len(c.Advances) != 2 || c.Advances[0] != 2 || c.Advances[1] != 3 {
		t.Errorf("Advances = %v", c.Advances)
	}
}

func TestNop_Implements(t *testing.T) {
	var r Reporter = Nop{}
	r.Start(10)
	r.Advance(1)
	r.Finish()
}
