// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bitpack

import "math/bits"

// StopReason describes why unpacking ended.
type StopReason int

const (
	StopNone      StopReason = iota // Keep going
	StopEnd                         // Reached the exact end from the checkpoints
	StopLimit                       // Reached the byte bound of the packed region
	StopExhausted                   // Ran out of bits in the middle of a field
	StopPadding                     // Lookahead holds too few set bits
	StopSentinel                    // Decoded the erased-flash sentinel pair
)

var reasonNames = [...]string{
	StopNone:      "none",
	StopEnd:       "end",
	StopLimit:     "limit",
	StopExhausted: "exhausted",
	StopPadding:   "padding",
	StopSentinel:  "sentinel",
}

func (r StopReason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Heuristic reports whether the stream end was guessed rather than known.
func (r StopReason) Heuristic() bool {
	return r == StopPadding || r == StopSentinel || r == StopExhausted
}

// State is the view of the stream offered to a StopPolicy before each field.
type State struct {
	Pos     uint      // Current bit position
	Len     uint      // Bit length of the packed region
	End     uint      // Exact end bit; valid only if Exact is set
	Exact   bool      // Whether End was derived from the checkpoints
	Limit   uint      // Upper bound in bits implied by the last checkpoint
	Tail    bool      // Whether Pos lies in the final block
	Window  uint64    // Next 64 bits, zero padded
	Last    [2]uint16 // Last two decoded instructions, most recent last
	Decoded int       // Number of instructions decoded so far
}

// StopPolicy decides when unpacking should end.
type StopPolicy interface {
	Stop(st *State) StopReason
}

// PolicyFunc adapts a function to a StopPolicy.
type PolicyFunc func(st *State) StopReason

func (f PolicyFunc) Stop(st *State) StopReason { return f(st) }

// Chain consults each policy in order and returns the first decision to stop.
func Chain(ps ...StopPolicy) StopPolicy {
	return PolicyFunc(func(st *State) StopReason {
		for _, p := range ps {
			if r := p.Stop(st); r != StopNone {
				return r
			}
		}
		return StopNone
	})
}

// SentinelErased is the instruction pair left behind by erased flash.
var SentinelErased = [2]uint16{0xffff, 0xffff}

// HeuristicPolicy guesses the end of a stream whose exact length is unknown.
// It is only consulted in the final block.
type HeuristicPolicy struct {
	// MinOnes is the minimum number of set bits the 64-bit lookahead must
	// contain for decoding to continue. Trailing zero padding fails this test.
	MinOnes int

	// Sentinel, if set, stops decoding once the last two instructions
	// decoded match it.
	Sentinel *[2]uint16
}

func (p HeuristicPolicy) Stop(st *State) StopReason {
	if !st.Tail {
		return StopNone
	}
	if bits.OnesCount64(st.Window) < p.MinOnes {
		return StopPadding
	}
	if p.Sentinel != nil && st.Decoded >= 2 && st.Last == *p.Sentinel {
		return StopSentinel
	}
	return StopNone
}

// DefaultPolicy stops at the exact end when the checkpoints provide one.
// Otherwise it stops at the byte limit, consulting Heuristic in the tail.
type DefaultPolicy struct {
	Heuristic StopPolicy
}

func (p DefaultPolicy) Stop(st *State) StopReason {
	if st.Exact {
		if st.Pos >= st.End {
			return StopEnd
		}
		return StopNone
	}
	if st.Pos >= st.Limit {
		return StopLimit
	}
	if p.Heuristic != nil {
		return p.Heuristic.Stop(st)
	}
	return StopNone
}

// DefaultStopPolicy is used when no other policy is configured.
var DefaultStopPolicy StopPolicy = DefaultPolicy{
	Heuristic: HeuristicPolicy{MinOnes: 2, Sentinel: &SentinelErased},
}
