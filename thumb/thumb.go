// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package thumb rewrites the 22-bit branch offsets of Thumb BL and BLX
// instruction pairs.
//
// Firmware images hold PC-relative offsets, so calls to the same function
// from different sites are encoded differently. Relocating them to the
// absolute halfword target makes such calls identical, which is what allows
// the dictionary to capture them.
package thumb

// Direction selects which way Relocate rewrites branch offsets.
type Direction int

const (
	Encode Direction = iota // PC-relative to absolute
	Decode                  // Absolute to PC-relative
)

func (d Direction) String() string {
	switch d {
	case Encode:
		return "encode"
	case Decode:
		return "decode"
	}
	return "unknown"
}

const (
	prefixMask = 0xf800
	firstHalf  = 0xf000 // BL or BLX prefix carrying the high offset bits
	markBL     = 0xf800
	markBLX    = 0xe800
	immMask    = 0x7ff
	signBit    = 0x400

	// A call pair never starts in the last slot of a 32 instruction group.
	groupSize = 32

	immBits = 22
)

// Stats counts the instruction pairs rewritten by Relocate.
type Stats struct {
	BL  int
	BLX int
}

// Pairs reports the total number of rewritten pairs.
func (s Stats) Pairs() int { return s.BL + s.BLX }

// Relocate rewrites every BL and BLX pair in stream in place.
// Relocating with Encode and then Decode restores any stream.
func Relocate(stream []uint16, dir Direction) (s Stats) {
	for i := 0; i < len(stream)-1; {
		if (i+1)%groupSize == 0 {
			i++
			continue
		}
		hi, lo := stream[i], stream[i+1]
		if hi&prefixMask != firstHalf {
			i++
			continue
		}
		switch lo & prefixMask {
		case markBL:
			s.BL++
		case markBLX:
			s.BLX++
		default:
			i++
			continue
		}

		var imm uint32
		if dir == Encode {
			imm = absolute(i, hi, lo)
		} else {
			imm = relative(i, hi, lo)
		}
		stream[i] = firstHalf | uint16(imm>>11)&immMask
		stream[i+1] = lo&prefixMask | uint16(imm)&immMask
		i += 2
	}
	return s
}

// absolute converts the offset of the pair at index i into its target.
func absolute(i int, hi, lo uint16) uint32 {
	t := 2 * (int64(i) + int64(hi&immMask)<<11 + int64(lo&immMask))
	if hi&signBit != 0 {
		t -= 0x7ffffffe
	} else {
		t += 2
	}
	return uint32(t>>1) & (1<<immBits - 1)
}

// relative converts the target of the pair at index i back into an offset.
func relative(i int, hi, lo uint16) uint32 {
	t := int64(hi&immMask)<<11 | int64(lo&immMask)
	return uint32(t-int64(i)-1) & (1<<immBits - 1)
}
