// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package dict

import (
	"encoding/binary"
	"sort"

	"github.com/alicefw/alice/bitpack"
	"github.com/alicefw/alice/internal"
)

const numValues = 1 << 16

// Dictionary maps every 16-bit instruction to its class and payload.
type Dictionary struct {
	layout *Layout
	ranked []uint16 // All distinct values in rank order
	counts []int    // Occurrences of each ranked value
	values []uint16 // Prefix of ranked that is stored in the dictionary

	class [numValues]uint8
	code  [numValues]uint32
}

// Build counts the instructions in stream and ranks them by descending
// count, ties broken by ascending value. The output depends only on the
// multiset of values in stream.
func Build(stream []uint16, layout *Layout) *Dictionary {
	d := &Dictionary{layout: layout}

	var hist [numValues]int
	for _, v := range stream {
		hist[v]++
	}
	for v, n := range hist {
		if n > 0 {
			d.ranked = append(d.ranked, uint16(v))
		}
	}
	// The values are already ascending, so a stable sort keeps ties in order.
	sort.SliceStable(d.ranked, func(i, j int) bool {
		return hist[d.ranked[i]] > hist[d.ranked[j]]
	})
	d.counts = make([]int, len(d.ranked))
	for i, v := range d.ranked {
		d.counts[i] = hist[v]
	}

	for v := range d.code {
		d.class[v] = OverflowClass
		d.code[v] = layout.prefix[OverflowClass] | uint32(v)
	}
	var rank int
	for c := uint(0); c < OverflowClass; c++ {
		for r := 0; r < layout.capacity[c] && rank < len(d.ranked); r++ {
			v := d.ranked[rank]
			d.class[v] = uint8(c)
			d.code[v] = layout.prefix[c] | uint32(r)
			rank++
		}
	}
	d.values = d.ranked[:rank]
	return d
}

// Layout returns the class layout of the dictionary.
func (d *Dictionary) Layout() *Layout { return d.layout }

// Class reports the class assigned to v.
func (d *Dictionary) Class(v uint16) uint { return uint(d.class[v]) }

// Field returns the packed code for v. Values absent from the stream the
// dictionary was built from are encoded as overflow literals.
func (d *Dictionary) Field(v uint16) bitpack.Field {
	return bitpack.Field{Len: d.layout.width[d.class[v]], Val: d.code[v]}
}

// Values returns the stored dictionary entries, classes 0 through 6 in rank
// order. The overflow class is not stored.
func (d *Dictionary) Values() []uint16 { return d.values }

// Segment returns the entries of class c.
func (d *Dictionary) Segment(c uint) []uint16 { return segment(d.layout, d.values, c) }

func segment(l *Layout, values []uint16, c uint) []uint16 {
	lo, hi := l.start[c], l.start[c]+l.capacity[c]
	if lo > len(values) {
		lo = len(values)
	}
	if hi > len(values) {
		hi = len(values)
	}
	return values[lo:hi]
}

// Blob returns the dictionary as stored in a container: little-endian
// halfwords in rank order.
func (d *Dictionary) Blob() []byte {
	return internal.AppendHalfwords(make([]byte, 0, 2*len(d.values)), d.values)
}

// Entry describes one distinct instruction of the source stream.
type Entry struct {
	Value uint16
	Count int
	Class uint
	Rank  int // Rank within the class; the global rank for overflow
}

// Ranked lists every distinct instruction in rank order, overflow included.
func (d *Dictionary) Ranked() []Entry {
	es := make([]Entry, len(d.ranked))
	for i, v := range d.ranked {
		c := d.class[v]
		rank := i
		if c != OverflowClass {
			rank = int(d.code[v] - d.layout.prefix[c])
		}
		es[i] = Entry{Value: v, Count: d.counts[i], Class: uint(c), Rank: rank}
	}
	return es
}

// CodeLengths returns the field width of every instruction value, or zero
// for values that do not occur. It is indexed by instruction.
func (d *Dictionary) CodeLengths() []byte {
	b := make([]byte, numValues)
	for _, v := range d.ranked {
		b[v] = byte(d.layout.width[d.class[v]])
	}
	return b
}

// CodeTable returns the payload of every instruction value as a little-endian
// 32-bit word, or zero for values that do not occur.
func (d *Dictionary) CodeTable() []byte {
	b := make([]byte, 4*numValues)
	for _, v := range d.ranked {
		binary.LittleEndian.PutUint32(b[4*int(v):], d.code[v])
	}
	return b
}

// Inverse returns the decoding view of the dictionary.
func (d *Dictionary) Inverse() *Inverse { return NewInverse(d.layout, d.values) }
