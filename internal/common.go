// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package internal is a collection of helpers shared by the ALICE packages.
//
// For performance reasons, these helpers lack strong error checking and
// require that the caller ensure that strict invariants are kept.
package internal

import "encoding/binary"

// Error is the wrapper type for errors specific to this library.
type Error string

func (e Error) Error() string { return "alice: " + string(e) }

var (
	// ErrOddLength reports an instruction image that is not a whole number
	// of 16-bit halfwords.
	ErrOddLength error = Error("image length is not a multiple of 2")
)

// ReverseLUT returns the input key with its bits reversed.
var ReverseLUT [256]byte

func init() {
	for i := range ReverseLUT {
		b := uint8(i)
		b = (b&0xaa)>>1 | (b&0x55)<<1
		b = (b&0xcc)>>2 | (b&0x33)<<2
		b = (b&0xf0)>>4 | (b&0x0f)<<4
		ReverseLUT[i] = b
	}
}

// ReverseUint64 reverses all bits of v.
func ReverseUint64(v uint64) (x uint64) {
	for i := uint(0); i < 64; i += 8 {
		x |= uint64(ReverseLUT[byte(v>>i)]) << (56 - i)
	}
	return x
}

// ReverseUint64N reverses the lower n bits of v.
func ReverseUint64N(v uint64, n uint) (x uint64) {
	if n == 0 {
		return 0
	}
	return ReverseUint64(v << (64 - n))
}

// Halfwords splits a little-endian image into 16-bit instructions.
// The result never aliases b.
func Halfwords(b []byte) ([]uint16, error) {
	if len(b)%2 != 0 {
		return nil, ErrOddLength
	}
	hw := make([]uint16, len(b)/2)
	for i := range hw {
		hw[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return hw, nil
}

// AppendHalfwords appends the little-endian encoding of hw to dst.
func AppendHalfwords(dst []byte, hw []uint16) []byte {
	var buf [2]byte
	for _, v := range hw {
		binary.LittleEndian.PutUint16(buf[:], v)
		dst = append(dst, buf[:]...)
	}
	return dst
}
