// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitpack

import (
	"bytes"
	"testing"

	"github.com/alicefw/alice/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func TestWriter(t *testing.T) {
	var vectors = []struct {
		desc   string
		block  int
		fields []Field
		output []byte
		cps    []Checkpoint
	}{{
		desc:   "empty stream",
		block:  32,
		output: []byte{},
	}, {
		desc:   "single short field",
		block:  32,
		fields: []Field{{3, 5}},
		output: testutil.MustDecodeBitGen("D3:5"),
		cps:    []Checkpoint{{1, 3}},
	}, {
		desc:   "field filling a byte exactly",
		block:  32,
		fields: []Field{{3, 1}, {5, 31}},
		output: testutil.MustDecodeBitGen("D3:1 D5:31"),
		cps:    []Checkpoint{{1, 8}},
	}, {
		desc:   "fields straddling bytes with realignment",
		block:  2,
		fields: []Field{{3, 5}, {9, 0x1ff}, {19, 0x7ffff}},
		output: testutil.MustDecodeBitGen("D3:5 D9:511 | D19:524287"),
		cps:    []Checkpoint{{2, 12}, {5, 19}},
	}, {
		desc:   "aligned block needs no padding",
		block:  1,
		fields: []Field{{16, 0xabcd}, {8, 0x12}},
		output: []byte{0xab, 0xcd, 0x12},
		cps:    []Checkpoint{{2, 16}, {3, 8}},
	}, {
		desc:   "single block when realignment is disabled",
		block:  0,
		fields: []Field{{7, 0}, {7, 0}, {19, 7 << 16}},
		output: testutil.MustDecodeBitGen("D7:0*2 D3:7 H16:0000"),
		cps:    []Checkpoint{{5, 33}},
	}, {
		desc:   "zero length fields still count towards the block",
		block:  2,
		fields: []Field{{0, 0}, {0, 0}, {4, 0xf}},
		output: []byte{0xf0},
		cps:    []Checkpoint{{0, 0}, {1, 4}},
	}}

	for i, v := range vectors {
		w := NewWriter(v.block)
		for _, f := range v.fields {
			w.WriteField(f)
		}
		output, cps := w.Finish()

		if !bytes.Equal(output, v.output) {
			t.Errorf("test %d (%s), mismatching output:\ngot  %x\nwant %x", i, v.desc, output, v.output)
		}
		if diff := cmp.Diff(v.cps, cps); diff != "" {
			t.Errorf("test %d (%s), mismatching checkpoints (-want +got):\n%s", i, v.desc, diff)
		}
		if w.FieldCount != int64(len(v.fields)) {
			t.Errorf("test %d (%s), field count = %d, want %d", i, v.desc, w.FieldCount, len(v.fields))
		}
	}
}

func TestWriterAlignment(t *testing.T) {
	w := NewWriter(32)
	for i := 0; i < 32*5; i++ {
		w.WriteField(Field{Len: uint(1 + i%19), Val: 1})
		if (i+1)%32 == 0 && !w.Aligned() {
			t.Fatalf("writer is not aligned after %d fields", i+1)
		}
	}
	if got := len(w.Checkpoints()); got != 5 {
		t.Errorf("checkpoint count = %d, want 5", got)
	}
}

func TestWriterPanics(t *testing.T) {
	defer func() {
		if ex := recover(); ex != errFieldTooLong {
			t.Errorf("recover() = %v, want %v", ex, errFieldTooLong)
		}
	}()
	NewWriter(1).WriteField(Field{Len: 33})
}

func TestEndBit(t *testing.T) {
	var vectors = []struct {
		desc string
		cps  []Checkpoint
		end  uint
		ok   bool
	}{
		{desc: "no checkpoints"},
		{desc: "single partial byte", cps: []Checkpoint{{2, 12}}, end: 12, ok: true},
		{desc: "two blocks", cps: []Checkpoint{{2, 12}, {5, 19}}, end: 35, ok: true},
		{desc: "aligned end", cps: []Checkpoint{{28, 224}, {56, 224}}, end: 448, ok: true},
		{desc: "truncated bit count", cps: []Checkpoint{{40, 316 & 0xff}}, end: 316, ok: true},
		{desc: "padding too large", cps: []Checkpoint{{2, 12}, {5, 3}}},
		{desc: "offsets out of order", cps: []Checkpoint{{4, 0}, {2, 0}}},
	}

	for i, v := range vectors {
		end, ok := EndBit(v.cps)
		if ok != v.ok || (ok && end != v.end) {
			t.Errorf("test %d (%s), EndBit() = (%d, %v), want (%d, %v)", i, v.desc, end, ok, v.end, v.ok)
		}
	}
}
