// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package dict builds the frequency-ranked instruction dictionary of an
// ALICE stream and assigns each instruction its packed code.
//
// Instructions are ranked by descending frequency, ties broken by ascending
// value. The ranked list is split into seven classes of 1<<length entries
// each; a code is the 3-bit class number followed by the rank within the
// class. Instructions that do not fit are stored literally in the overflow
// class 7.
package dict

import (
	"fmt"

	"github.com/alicefw/alice/bitpack"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "dict: " + string(e) }

const (
	NumClasses    = 8  // Number of classes, including overflow
	OverflowClass = 7  // Class storing literal instructions
	MaxLength     = 16 // Maximum payload length of any class
)

// Lengths holds the payload length of classes 0 through 6.
type Lengths [OverflowClass]uint

// DefaultLengths are the class lengths used by the vendor tool.
var DefaultLengths = Lengths{4, 6, 7, 8, 9, 11, 12}

// Layout holds the per-class tables derived from a set of Lengths.
type Layout struct {
	lengths  [NumClasses]uint
	width    [NumClasses]uint
	capacity [NumClasses]int
	start    [NumClasses]int
	prefix   [NumClasses]uint32
	size     int
}

// NewLayout validates the class lengths and precomputes the layout tables.
func NewLayout(lens Lengths) (*Layout, error) {
	l := new(Layout)
	for c, n := range lens {
		if n > MaxLength {
			return nil, Error(fmt.Sprintf("class %d length %d exceeds %d", c, n, MaxLength))
		}
		l.lengths[c] = n
	}
	l.lengths[OverflowClass] = MaxLength

	var start int
	for c := range l.lengths {
		n := l.lengths[c]
		l.width[c] = bitpack.ClassBits + n
		l.prefix[c] = uint32(c) << n
		l.start[c] = start
		if c != OverflowClass {
			l.capacity[c] = 1 << n
			start += l.capacity[c]
		}
	}
	l.size = start
	return l, nil
}

// Lengths returns the class lengths the layout was built from.
func (l *Layout) Lengths() (lens Lengths) {
	copy(lens[:], l.lengths[:OverflowClass])
	return lens
}

// FieldBits reports the packed width of a field in class c.
func (l *Layout) FieldBits(c uint) uint { return l.width[c] }

// Capacity reports how many dictionary entries class c may hold.
// The overflow class has no entries.
func (l *Layout) Capacity(c uint) int { return l.capacity[c] }

// Start reports the index of the first entry of class c in the dictionary.
func (l *Layout) Start(c uint) int { return l.start[c] }

// Prefix reports the class bits of class c, already shifted into place.
func (l *Layout) Prefix(c uint) uint32 { return l.prefix[c] }

// Size reports the total capacity of classes 0 through 6.
func (l *Layout) Size() int { return l.size }
