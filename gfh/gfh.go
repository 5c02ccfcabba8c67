// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package gfh parses the Mediatek GFH FILE_INFO header that prefixes
// firmware images, and locates the content it describes.
package gfh

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Error is the wrapper type for errors specific to this package.
type Error string

func (e Error) Error() string { return "gfh: " + string(e) }

var (
	ErrMagic     error = Error("missing FILE_INFO identifier")
	ErrTruncated error = Error("header is truncated")
	ErrContent   error = Error("content offset lies outside the file")
)

const (
	// Magic is the zero-padded identifier at the start of the header.
	Magic = "FILE_INFO"

	// HeaderLen is the size of the FILE_INFO header in bytes.
	HeaderLen = 48

	idLen = 12
)

// FileInfo is the decoded FILE_INFO header.
type FileInfo struct {
	ID            string
	FileVersion   uint32
	FileType      uint16
	FlashDevice   uint8
	SigType       uint8
	LoadAddr      uint32
	FileLen       uint32
	MaxSize       uint32
	ContentOffset uint32
	SigLen        uint32
	JumpOffset    uint32
	Attr          uint32
}

// Detect reports whether data starts with a FILE_INFO header.
func Detect(data []byte) bool {
	return len(data) >= idLen && bytes.HasPrefix(data, []byte(Magic))
}

// Parse decodes the FILE_INFO header at the start of data.
func Parse(data []byte) (*FileInfo, error) {
	if len(data) < HeaderLen {
		if len(data) >= idLen && !Detect(data) {
			return nil, ErrMagic
		}
		return nil, ErrTruncated
	}
	if !Detect(data) {
		return nil, ErrMagic
	}

	le := binary.LittleEndian
	fi := &FileInfo{
		ID:            string(bytes.TrimRight(data[:idLen], "\x00")),
		FileVersion:   le.Uint32(data[12:]),
		FileType:      le.Uint16(data[16:]),
		FlashDevice:   data[18],
		SigType:       data[19],
		LoadAddr:      le.Uint32(data[20:]),
		FileLen:       le.Uint32(data[24:]),
		MaxSize:       le.Uint32(data[28:]),
		ContentOffset: le.Uint32(data[32:]),
		SigLen:        le.Uint32(data[36:]),
		JumpOffset:    le.Uint32(data[40:]),
		Attr:          le.Uint32(data[44:]),
	}
	return fi, nil
}

// Content returns the image bytes that follow the header. The content ends
// before the trailing signature when FileLen and SigLen are consistent with
// the size of data, and at the end of data otherwise.
func (fi *FileInfo) Content(data []byte) ([]byte, error) {
	start := uint64(fi.ContentOffset)
	if start > uint64(len(data)) {
		return nil, ErrContent
	}
	end := uint64(len(data))
	if n := uint64(fi.FileLen); n <= end && n >= start+uint64(fi.SigLen) {
		end = n - uint64(fi.SigLen)
	}
	return data[start:end], nil
}

// Append appends the binary form of the header to dst.
func (fi *FileInfo) Append(dst []byte) []byte {
	var b [HeaderLen]byte
	copy(b[:idLen], fi.ID)
	le := binary.LittleEndian
	le.PutUint32(b[12:], fi.FileVersion)
	le.PutUint16(b[16:], fi.FileType)
	b[18] = fi.FlashDevice
	b[19] = fi.SigType
	le.PutUint32(b[20:], fi.LoadAddr)
	le.PutUint32(b[24:], fi.FileLen)
	le.PutUint32(b[28:], fi.MaxSize)
	le.PutUint32(b[32:], fi.ContentOffset)
	le.PutUint32(b[36:], fi.SigLen)
	le.PutUint32(b[40:], fi.JumpOffset)
	le.PutUint32(b[44:], fi.Attr)
	return append(dst, b[:]...)
}

func (fi *FileInfo) String() string {
	return fmt.Sprintf("id: %s\nfile_ver: %d\nfile_type: 0x%x\nflash_dev: %d\nsig_type: %d\n"+
		"load_addr: 0x%x\nfile_len: %d\nmax_size: %d\ncontent_offset: 0x%x\nsig_len: %d\n"+
		"jump_offset: 0x%x\nattr: %d\n",
		fi.ID, fi.FileVersion, fi.FileType, fi.FlashDevice, fi.SigType,
		fi.LoadAddr, fi.FileLen, fi.MaxSize, fi.ContentOffset, fi.SigLen,
		fi.JumpOffset, fi.Attr)
}
