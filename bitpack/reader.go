// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitpack

// Reader reads MSB-first bit fields from a byte slice.
type Reader struct {
	src []byte
	pos uint // Current bit position
}

// NewReader creates a Reader over src.
func NewReader(src []byte) *Reader {
	return &Reader{src: src}
}

// Reset positions the Reader at the start of src.
func (r *Reader) Reset(src []byte) { *r = Reader{src: src} }

// BitPos reports the current bit position.
func (r *Reader) BitPos() uint { return r.pos }

// BitLen reports the total number of bits in the source.
func (r *Reader) BitLen() uint { return 8 * uint(len(r.src)) }

// BitsLeft reports the number of unread bits.
func (r *Reader) BitsLeft() uint { return r.BitLen() - r.pos }

// load returns the 64 bits starting at the byte containing bit pos,
// padded with zeros past the end of the source.
func (r *Reader) load(pos uint) (v uint64) {
	i := pos / 8
	for k := uint(0); k < 8; k++ {
		v <<= 8
		if i+k < uint(len(r.src)) {
			v |= uint64(r.src[i+k])
		}
	}
	return v
}

// Window returns the next 64 bits without consuming them.
// Bits past the end of the source read as zero.
func (r *Reader) Window() uint64 {
	s := r.pos % 8
	v := r.load(r.pos) << s
	if s > 0 {
		if i := r.pos/8 + 8; i < uint(len(r.src)) {
			v |= uint64(r.src[i]) >> (8 - s)
		}
	}
	return v
}

// PeekBits returns the next n bits without consuming them, where n <= 32.
// It reports false if fewer than n bits remain.
func (r *Reader) PeekBits(n uint) (uint32, bool) {
	if n > r.BitsLeft() {
		return 0, false
	}
	if n == 0 {
		return 0, true
	}
	v := r.load(r.pos) << (r.pos % 8)
	return uint32(v >> (64 - n)), true
}

// ReadBits consumes the next n bits, where n <= 32.
// It reports false, consuming nothing, if fewer than n bits remain.
func (r *Reader) ReadBits(n uint) (uint32, bool) {
	v, ok := r.PeekBits(n)
	if ok {
		r.pos += n
	}
	return v, ok
}

// Align advances to the next byte boundary and reports the skipped bits.
func (r *Reader) Align() uint {
	pad := (8 - r.pos%8) % 8
	r.pos += pad
	return pad
}
