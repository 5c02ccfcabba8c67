// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package dict

import "fmt"

// InversionError reports a field whose rank lies past the end of the stored
// dictionary.
type InversionError struct {
	Class uint
	Rank  int
	Index int // Index into the dictionary the rank resolves to
	Size  int // Number of stored dictionary entries
}

func (e *InversionError) Error() string {
	return fmt.Sprintf("dict: class %d rank %d resolves to entry %d of a %d entry dictionary",
		e.Class, e.Rank, e.Index, e.Size)
}

// Inverse decodes packed fields using a stored dictionary.
// It implements bitpack.Codebook.
type Inverse struct {
	layout *Layout
	values []uint16
}

// NewInverse creates an Inverse over the flat dictionary values.
func NewInverse(layout *Layout, values []uint16) *Inverse {
	return &Inverse{layout: layout, values: values}
}

// FieldBits reports the packed width of a field in class c.
func (d *Inverse) FieldBits(c uint) uint { return d.layout.width[c] }

// Instruction decodes a complete field of class c.
func (d *Inverse) Instruction(c uint, field uint32) (uint16, error) {
	if c == OverflowClass {
		return uint16(field), nil
	}
	rank := int(field - d.layout.prefix[c])
	idx := d.layout.start[c] + rank
	if idx >= len(d.values) {
		return 0, &InversionError{Class: c, Rank: rank, Index: idx, Size: len(d.values)}
	}
	return d.values[idx], nil
}

// Segment returns the stored entries of class c.
func (d *Inverse) Segment(c uint) []uint16 { return segment(d.layout, d.values, c) }
