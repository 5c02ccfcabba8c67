// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

// commonOps is a small palette of instructions that dominate real Thumb code.
var commonOps = []uint16{
	0x4770, // bx lr
	0xb500, // push {lr}
	0xbd00, // pop {pc}
	0x2000, // movs r0, #0
	0x2001, // movs r0, #1
	0x4618, // mov r0, r3
	0x6800, // ldr r0, [r0]
	0x6008, // str r0, [r1]
	0xe7fe, // b .
	0x46c0, // nop
	0x1c40, // adds r0, r0, #1
	0x2800, // cmp r0, #0
	0xd001, // beq
	0xd1fc, // bne
	0xb510, // push {r4, lr}
	0xbd10, // pop {r4, pc}
}

// ThumbImage generates a deterministic stream of n plausible Thumb
// instructions. Roughly three quarters of the stream is drawn from a small
// skewed palette, a tenth are BL or BLX pairs calling a handful of targets,
// and the rest are uniformly random halfwords.
func ThumbImage(seed, n int) []uint16 {
	r := NewRand(seed)
	targets := make([]int, 8)
	for i := range targets {
		targets[i] = r.Intn(1 << 20)
	}

	out := make([]uint16, 0, n)
	for len(out) < n {
		i := len(out)
		switch p := r.Intn(100); {
		case p < 10 && i+1 < n && (i+1)%32 != 0:
			// Encode a call to one of the shared targets relative to this site.
			off := (targets[r.Intn(len(targets))] - i - 1) & 0x3fffff
			lo := uint16(0xf800)
			if r.Intn(4) == 0 {
				lo = 0xe800
			}
			out = append(out, 0xf000|uint16(off>>11)&0x7ff, lo|uint16(off)&0x7ff)
		case p < 85:
			// Skew towards the front of the palette.
			k := r.Intn(len(commonOps))
			k = k * r.Intn(len(commonOps)) / len(commonOps)
			out = append(out, commonOps[k])
		default:
			out = append(out, r.Uint16())
		}
	}
	return out
}
