// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package dict

import (
	"encoding/binary"
	"fmt"

	"github.com/alicefw/alice/bitpack"
)

var errTableSize error = Error("code tables have the wrong size")

func tableError(v int, format string, args ...interface{}) error {
	return Error(fmt.Sprintf("instruction %04x: ", v) + fmt.Sprintf(format, args...))
}

// LoadTables reconstructs a dictionary from the code length and code tables
// written by CodeLengths and CodeTable. This reproduces the ordering of a
// dictionary produced elsewhere, such as by the vendor tool.
//
// Every listed instruction must carry a code of a class in layout whose
// width matches its code length. The listed ranks must fill the classes
// in order without gaps. Instructions with a zero code length are coded as
// overflow literals. Occurrence counts are not part of the tables and are
// reported as zero.
func LoadTables(layout *Layout, lengths, table []byte) (*Dictionary, error) {
	if len(lengths) != numValues || len(table) != 4*numValues {
		return nil, errTableSize
	}

	d := &Dictionary{layout: layout}
	for v := range d.code {
		d.class[v] = OverflowClass
		d.code[v] = layout.prefix[OverflowClass] | uint32(v)
	}

	values := make([]uint16, layout.size)
	filled := make([]bool, layout.size)
	var n int
	var overflow []uint16
	for v := 0; v < numValues; v++ {
		w := uint(lengths[v])
		if w == 0 {
			continue
		}
		if w < bitpack.ClassBits || w > bitpack.ClassBits+MaxLength {
			return nil, tableError(v, "invalid code length %d", w)
		}
		code := binary.LittleEndian.Uint32(table[4*v:])
		c := uint(code >> (w - bitpack.ClassBits))
		if c >= NumClasses || layout.width[c] != w {
			return nil, tableError(v, "code %x of length %d matches no class", code, w)
		}
		if c == OverflowClass {
			if code != layout.prefix[c]|uint32(v) {
				return nil, tableError(v, "overflow code %x is not the literal", code)
			}
			overflow = append(overflow, uint16(v))
			continue
		}

		idx := layout.start[c] + int(code-layout.prefix[c])
		if filled[idx] {
			return nil, tableError(v, "class %d rank %d is already taken by %04x",
				c, idx-layout.start[c], values[idx])
		}
		filled[idx] = true
		values[idx] = uint16(v)
		d.class[v] = uint8(c)
		d.code[v] = code
		if idx >= n {
			n = idx + 1
		}
	}
	for i, ok := range filled[:n] {
		if !ok {
			return nil, Error(fmt.Sprintf("dictionary entry %d is missing", i))
		}
	}

	d.values = values[:n:n]
	d.ranked = append(d.values, overflow...)
	d.counts = make([]int, len(d.ranked))
	return d, nil
}
