// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package alice

import (
	"bytes"
	"encoding/binary"

	"github.com/alicefw/alice/bitpack"
	"github.com/alicefw/alice/internal"
)

// File is a container split into its regions.
type File struct {
	Header      Header
	Packed      []byte               // Packed stream, including trailing padding
	Checkpoints []bitpack.Checkpoint // Only the low 8 bits of Bits survive storage
	Dictionary  []uint16
}

// Parse splits data into its regions. The returned File aliases data.
func Parse(data []byte) (*File, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	mapOff, dictOff := h.Offset(h.Mapping), h.Offset(h.Dict)
	if mapOff < int64(h.Size) || dictOff < mapOff {
		return nil, ErrRegions
	}
	if mapOff > int64(len(data)) {
		return nil, &TruncatedInputError{Region: "packed stream", Want: int(mapOff), Have: len(data)}
	}
	if dictOff > int64(len(data)) {
		return nil, &TruncatedInputError{Region: "checkpoint table", Want: int(dictOff), Have: len(data)}
	}
	if (dictOff-mapOff)%recordLen != 0 {
		return nil, ErrCheckpointTable
	}
	if (int64(len(data))-dictOff)%2 != 0 {
		return nil, &TruncatedInputError{Region: "dictionary", Want: len(data) + 1, Have: len(data)}
	}

	f := &File{Header: h, Packed: data[h.Size:mapOff]}
	table := data[mapOff:dictOff]
	for len(table) > 0 {
		rec := binary.LittleEndian.Uint32(table)
		f.Checkpoints = append(f.Checkpoints, bitpack.Checkpoint{
			Offset: (rec - h.Base) & addrMask,
			Bits:   rec >> 24,
		})
		table = table[recordLen:]
	}
	f.Dictionary, _ = internal.Halfwords(data[dictOff:])
	return f, nil
}

// headerSize picks the header length for the file. Version 1 files use the
// reduced header unless the packed stream would be mistaken for the end
// marker of a full header.
func (f *File) headerSize() int {
	h := &f.Header
	if h.Version != Version1 {
		return HeaderLen
	}
	if bytes.HasPrefix(f.Packed, v1Marker) {
		return HeaderLen
	}
	if h.Size == HeaderLen {
		return HeaderLen
	}
	return ReducedHeaderLen
}

// MarshalBinary lays out the regions of f and fills in the header addresses.
// The header of f is updated to match the output.
func (f *File) MarshalBinary() ([]byte, error) {
	h := &f.Header
	switch h.Version {
	case Version1:
		if h.BlockSize != 0 && h.BlockSize != DefaultBlockSize {
			return nil, ErrVersionBlock
		}
		h.BlockSize = 0
	case Version2:
	default:
		return nil, ErrVersion
	}
	h.Size = f.headerSize()

	packedLen := (len(f.Packed) + 3) &^ 3
	mapOff := h.Size + packedLen
	dictOff := mapOff + recordLen*len(f.Checkpoints)
	h.Mapping = h.Addr(mapOff)
	h.Dict = h.Addr(dictOff)

	out := make([]byte, 0, dictOff+2*len(f.Dictionary))
	out = h.Append(out)
	out = append(out, f.Packed...)
	out = append(out, make([]byte, packedLen-len(f.Packed))...)
	var rec [recordLen]byte
	for _, cp := range f.Checkpoints {
		binary.LittleEndian.PutUint32(rec[:], (h.Base+cp.Offset)&addrMask|(cp.Bits&0xff)<<24)
		out = append(out, rec[:]...)
	}
	out = internal.AppendHalfwords(out, f.Dictionary)
	return out, nil
}
