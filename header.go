// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package alice

import (
	"bytes"
	"encoding/binary"

	"github.com/alicefw/alice/dict"
)

// Version identifies the container revision.
type Version int

const (
	Version1 Version = 1
	Version2 Version = 2
)

const (
	// HeaderLen is the size of the full header.
	HeaderLen = 40

	// ReducedHeaderLen is the size of a version 1 header that omits the
	// block size and end marker.
	ReducedHeaderLen = 36

	// DefaultBlockSize is the block size in bytes when none is stored.
	DefaultBlockSize = 64

	magicCheck = 7 // Only the leading bytes of the magic are significant
	recordLen  = 4 // Size of a checkpoint record
	addrMask   = 0xffffff
)

var (
	magic1 = []byte("ALICE_1\x00")
	magic2 = []byte("ALICE_2\x00")

	endMarker = []byte{0xff, 0xff}
	v1Marker  = []byte{0x00, 0x00, 0xff, 0xff}

	// DefaultReserved is written in the two bytes following the class lengths.
	DefaultReserved = [2]byte{0x09, 0x01}
)

// Header is the decoded container header.
type Header struct {
	Version   Version
	Base      uint32                     // Load address of the packed stream
	Mapping   uint32                     // Address of the checkpoint table
	Dict      uint32                     // Address of the dictionary
	Lengths   [dict.OverflowClass]uint16 // Payload length of classes 0 through 6
	Reserved  [2]byte
	BlockSize uint16 // Bytes per block as stored; 0 means DefaultBlockSize
	Size      int    // Header length in bytes: HeaderLen or ReducedHeaderLen
}

// ParseHeader decodes the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) < magicCheck {
		return h, ErrHeader
	}
	switch {
	case bytes.Equal(data[:magicCheck], magic1[:magicCheck]):
		h.Version = Version1
	case bytes.Equal(data[:magicCheck], magic2[:magicCheck]):
		h.Version = Version2
	default:
		return h, ErrMagic
	}

	h.Size = HeaderLen
	if h.Version == Version1 && !(len(data) >= HeaderLen && bytes.Equal(data[36:40], v1Marker)) {
		h.Size = ReducedHeaderLen
	}
	if len(data) < h.Size {
		return h, ErrHeader
	}

	le := binary.LittleEndian
	h.Base = le.Uint32(data[8:])
	h.Mapping = le.Uint32(data[12:])
	h.Dict = le.Uint32(data[16:])
	for i := range h.Lengths {
		h.Lengths[i] = le.Uint16(data[20+2*i:])
	}
	copy(h.Reserved[:], data[34:36])
	if h.Size == HeaderLen {
		h.BlockSize = le.Uint16(data[36:])
	}
	return h, nil
}

// Append appends the binary form of the header to dst.
// The header length is taken from Size.
func (h *Header) Append(dst []byte) []byte {
	var b [HeaderLen]byte
	if h.Version == Version1 {
		copy(b[:], magic1)
	} else {
		copy(b[:], magic2)
	}
	le := binary.LittleEndian
	le.PutUint32(b[8:], h.Base)
	le.PutUint32(b[12:], h.Mapping)
	le.PutUint32(b[16:], h.Dict)
	for i, n := range h.Lengths {
		le.PutUint16(b[20+2*i:], n)
	}
	copy(b[34:36], h.Reserved[:])
	if h.Size == ReducedHeaderLen {
		return append(dst, b[:ReducedHeaderLen]...)
	}
	le.PutUint16(b[36:], h.BlockSize)
	copy(b[38:], endMarker)
	return append(dst, b[:]...)
}

// ClassLengths converts the stored class lengths.
func (h *Header) ClassLengths() (lens dict.Lengths) {
	for i, n := range h.Lengths {
		lens[i] = uint(n)
	}
	return lens
}

// BlockBytes reports the block size in bytes.
func (h *Header) BlockBytes() int {
	if h.BlockSize == 0 {
		return DefaultBlockSize
	}
	return int(h.BlockSize)
}

// BlockFields reports the number of instructions per block.
func (h *Header) BlockFields() int { return h.BlockBytes() / 2 }

// Offset converts a stored address into a file offset. Addresses wrap
// around the 32-bit address space, so an address more than 2GiB past Base
// is taken to lie before it and yields a negative offset.
func (h *Header) Offset(addr uint32) int64 {
	return int64(int32(addr-h.Base)) + int64(h.Size)
}

// Addr converts a file offset into a stored address.
func (h *Header) Addr(off int) uint32 {
	return h.Base + uint32(off-h.Size)
}
