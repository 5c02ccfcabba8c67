// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitpack

import "github.com/alicefw/alice/internal"

// Writer packs fields into an in-memory buffer.
//
// The zero value is not usable; use NewWriter.
type Writer struct {
	buf []byte // The last byte is the partially filled output byte
	bit int    // Index of the next free bit in the last byte; 7 when aligned

	blk  int    // Number of fields per block; 0 disables realignment
	cnt  int    // Number of fields in the current block
	bits uint32 // Number of bits in the current block
	cps  []Checkpoint

	FieldCount int64 // Total number of fields written
}

// NewWriter creates a Writer that realigns after every blockFields fields.
// If blockFields is zero, the whole stream is treated as a single block.
func NewWriter(blockFields int) *Writer {
	w := new(Writer)
	w.Reset(blockFields)
	return w
}

// Reset discards all written data and checkpoints.
func (w *Writer) Reset(blockFields int) {
	*w = Writer{
		buf: []byte{0},
		bit: 7,
		blk: blockFields,
	}
}

// Aligned reports whether the cursor sits on a byte boundary.
func (w *Writer) Aligned() bool { return w.bit == 7 }

// BitPos reports the number of bits written so far, including padding.
func (w *Writer) BitPos() int { return 8*(len(w.buf)-1) + (7 - w.bit) }

// Checkpoints returns the checkpoints recorded so far.
func (w *Writer) Checkpoints() []Checkpoint { return w.cps }

// WriteField appends a field to the stream.
// It panics if the field is longer than MaxFieldBits.
func (w *Writer) WriteField(f Field) {
	if f.Len > MaxFieldBits {
		panic(errFieldTooLong)
	}
	if internal.Debug && f.Len < 32 && f.Val>>f.Len != 0 {
		panic(errFieldValue)
	}

	// Emit the value in chunks of at most 8 bits, high bits first.
	// The leading chunk takes the remainder so that the rest are whole bytes.
	for n := f.Len; n > 0; {
		c := n - 8*((n-1)/8)
		n -= c
		w.writeChunk(c, byte((f.Val>>n)&(1<<c-1)))
	}

	w.FieldCount++
	w.cnt++
	w.bits += uint32(f.Len)
	if w.blk > 0 && w.cnt == w.blk {
		w.endBlock()
	}
}

// writeChunk writes the low n bits of v, where 1 <= n <= 8.
func (w *Writer) writeChunk(n uint, v byte) {
	last := len(w.buf) - 1
	switch shift := int(n) - w.bit - 1; {
	case shift < 0:
		w.buf[last] |= v << uint(-shift)
		w.bit -= int(n)
	case shift == 0:
		w.buf[last] |= v
		w.buf = append(w.buf, 0)
		w.bit = 7
	default:
		w.buf[last] |= v >> uint(shift)
		w.buf = append(w.buf, v<<uint(8-shift))
		w.bit = 7 - shift
	}
}

// endBlock pads to the next byte boundary and records a checkpoint.
func (w *Writer) endBlock() {
	if w.bit != 7 {
		w.buf = append(w.buf, 0)
		w.bit = 7
	}
	w.cps = append(w.cps, Checkpoint{
		Offset: uint32(len(w.buf) - 1),
		Bits:   w.bits,
	})
	w.cnt, w.bits = 0, 0
}

// Finish closes any partial block and returns the packed bytes together with
// one checkpoint per block. The Writer must be Reset before reuse.
func (w *Writer) Finish() ([]byte, []Checkpoint) {
	if w.cnt > 0 {
		w.endBlock()
	}
	return w.buf[:len(w.buf)-1], w.cps
}
