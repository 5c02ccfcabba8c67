// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitpack

import "go.uber.org/zap"

// ClassBits is the width of the class prefix that leads every field.
const ClassBits = 3

// A Codebook resolves packed fields back into instructions.
type Codebook interface {
	// FieldBits reports the total width, prefix included, of fields whose
	// leading ClassBits bits equal class.
	FieldBits(class uint) uint

	// Instruction decodes a complete field of the given class.
	Instruction(class uint, field uint32) (uint16, error)
}

// checkStride is how often, in blocks, the reader verifies its position
// against the recorded checkpoints.
const checkStride = 2

// Unpacker decodes a packed instruction stream.
type Unpacker struct {
	Codebook    Codebook
	BlockFields int          // Fields per block; 0 disables realignment
	Checkpoints []Checkpoint // Parsed checkpoint table, possibly empty
	Policy      StopPolicy   // If nil, DefaultStopPolicy is used
	Logger      *zap.Logger  // If nil, nothing is logged
}

// Result summarizes an Unpack call.
type Result struct {
	Reason     StopReason
	BitPos     uint // Bit position where decoding stopped
	Blocks     int  // Number of block boundaries crossed
	Checked    int  // Number of checkpoints verified
	Mismatches int  // Number of checkpoints that disagreed with the stream
}

// Unpack decodes fields from src until the stop policy ends the stream.
// Checkpoint mismatches are logged and counted but are not fatal.
func (u *Unpacker) Unpack(src []byte) (out []uint16, res Result, err error) {
	defer errRecover(&err)

	log := u.Logger
	if log == nil {
		log = zap.NewNop()
	}
	policy := u.Policy
	if policy == nil {
		policy = DefaultStopPolicy
	}

	r := NewReader(src)
	st := State{Len: r.BitLen(), Limit: r.BitLen()}
	cps := u.Checkpoints
	if end, ok := EndBit(cps); ok && end <= st.Len {
		st.End, st.Exact = end, true
	} else if len(cps) == 0 && len(src) == 0 {
		st.Exact = true
	}
	var tail uint
	if n := len(cps); n > 0 {
		if lim := 8 * uint(cps[n-1].Offset); lim < st.Limit {
			st.Limit = lim
		}
		if n > 1 {
			tail = 8 * uint(cps[n-2].Offset)
		}
	}

	var inBlock int
	var blockStart uint
	for {
		if u.BlockFields > 0 && inBlock == u.BlockFields {
			blockEnd := r.BitPos()
			r.Align()
			res.Blocks++
			inBlock = 0
			if k := res.Blocks; k%checkStride == 0 && k <= len(cps) {
				cp := cps[k-1]
				res.Checked++
				if uint32(r.BitPos()/8) != cp.Offset || uint32(blockEnd-blockStart)&0xff != cp.Bits&0xff {
					res.Mismatches++
					log.Warn("checkpoint mismatch",
						zap.Int("block", k),
						zap.Uint32("wantOffset", cp.Offset),
						zap.Uint("gotOffset", r.BitPos()/8),
						zap.Uint32("wantBits", cp.Bits&0xff),
						zap.Uint("gotBits", (blockEnd-blockStart)&0xff))
				}
			}
			blockStart = r.BitPos()
		}

		st.Pos = r.BitPos()
		st.Tail = st.Pos >= tail
		st.Window = r.Window()
		st.Decoded = len(out)
		if reason := policy.Stop(&st); reason != StopNone {
			res.Reason = reason
			break
		}

		class, ok := r.PeekBits(ClassBits)
		if !ok {
			res.Reason = StopExhausted
			break
		}
		field, ok := r.ReadBits(u.Codebook.FieldBits(uint(class)))
		if !ok {
			res.Reason = StopExhausted
			break
		}
		v, err := u.Codebook.Instruction(uint(class), field)
		if err != nil {
			res.BitPos = r.BitPos()
			return out, res, err
		}
		out = append(out, v)
		st.Last = [2]uint16{st.Last[1], v}
		inBlock++
	}
	res.BitPos = r.BitPos()
	return out, res, nil
}
