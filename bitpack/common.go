// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bitpack implements the MSB-first bit packing used by ALICE streams.
//
// Fields of up to 32 bits are written most-significant bit first. After every
// block of fields the stream is padded to the next byte boundary and a
// Checkpoint is recorded, which allows a reader to resynchronize at block
// starts and to recover the exact end of the stream.
package bitpack

import "runtime"

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "bitpack: " + string(e) }

var (
	errFieldTooLong error = Error("field is longer than 32 bits")
	errFieldValue   error = Error("field value exceeds its length")
)

// MaxFieldBits is the longest field that may be packed.
const MaxFieldBits = 32

// Field is a single packed code of Len bits. Only the low Len bits of Val
// may be set.
type Field struct {
	Len uint
	Val uint32
}

// Checkpoint marks the end of a block.
type Checkpoint struct {
	Offset uint32 // Byte offset where the next block starts
	Bits   uint32 // Number of field bits written in the block
}

// EndBit derives the exact bit length of a stream from its trailing
// checkpoints. Only the low 8 bits of each Bits value are used, since that is
// all the container retains. It reports false if the checkpoints do not
// describe a consistent end.
func EndBit(cps []Checkpoint) (uint, bool) {
	if len(cps) == 0 {
		return 0, false
	}
	last := cps[len(cps)-1]
	var start uint32
	if len(cps) > 1 {
		start = cps[len(cps)-2].Offset
	}
	if last.Offset < start {
		return 0, false
	}
	span := 8 * (last.Offset - start)
	pad := (span - last.Bits) & 0xff
	if pad >= 8 || pad > span {
		return 0, false
	}
	return uint(8*last.Offset - pad), true
}

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}
