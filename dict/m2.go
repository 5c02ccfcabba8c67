// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package dict

import (
	"encoding/binary"
	"math/bits"

	"github.com/alicefw/alice/internal"
)

// M2HeaderLen is the size of the header of a standalone dictionary.
const M2HeaderLen = 40

var (
	ErrM2Header    error = Error("invalid standalone dictionary header")
	ErrM2Truncated error = Error("standalone dictionary is truncated")
	ErrM2Ranges    error = Error("range registers do not describe a class layout")
)

// M2File is a standalone dictionary as left behind by the vendor tool in
// its ~M2.tmp scratch file. It holds the same entries as the dictionary
// region of a container, preceded by a header of little-endian 32-bit words:
// the header length, the entry length in bytes, and eight range registers.
type M2File struct {
	HeaderLen uint32
	DictLen   uint32

	// Ranges holds the index of the first entry of each class. The entry
	// for the overflow class is the total capacity of classes 0 through 6.
	Ranges [NumClasses]uint32

	Values []uint16
}

// ParseM2 decodes a standalone dictionary. The entries do not alias data.
func ParseM2(data []byte) (*M2File, error) {
	if len(data) < M2HeaderLen {
		return nil, ErrM2Truncated
	}
	le := binary.LittleEndian
	m := &M2File{HeaderLen: le.Uint32(data[0:]), DictLen: le.Uint32(data[4:])}
	for i := range m.Ranges {
		m.Ranges[i] = le.Uint32(data[8+4*i:])
	}
	if m.HeaderLen < M2HeaderLen || m.DictLen%2 != 0 {
		return nil, ErrM2Header
	}
	if uint64(m.HeaderLen)+uint64(m.DictLen) > uint64(len(data)) {
		return nil, ErrM2Truncated
	}
	m.Values, _ = internal.Halfwords(data[m.HeaderLen : m.HeaderLen+m.DictLen])
	return m, nil
}

// Lengths derives the class lengths from the range registers.
func (m *M2File) Lengths() (lens Lengths, err error) {
	if m.Ranges[0] != 0 {
		return lens, ErrM2Ranges
	}
	for c := range lens {
		n := m.Ranges[c+1] - m.Ranges[c]
		if m.Ranges[c+1] < m.Ranges[c] || bits.OnesCount32(n) != 1 || n > 1<<MaxLength {
			return lens, ErrM2Ranges
		}
		lens[c] = uint(bits.TrailingZeros32(n))
	}
	return lens, nil
}

// AppendM2 appends the dictionary in the standalone format to dst.
func (d *Dictionary) AppendM2(dst []byte) []byte {
	var hdr [M2HeaderLen]byte
	le := binary.LittleEndian
	le.PutUint32(hdr[0:], M2HeaderLen)
	le.PutUint32(hdr[4:], uint32(2*len(d.values)))
	for c := range d.layout.start {
		le.PutUint32(hdr[8+4*c:], uint32(d.layout.start[c]))
	}
	dst = append(dst, hdr[:]...)
	return internal.AppendHalfwords(dst, d.values)
}
