// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package alice

import (
	"hash/crc32"

	"github.com/alicefw/alice/bitpack"
	"github.com/alicefw/alice/internal"
	"github.com/alicefw/alice/thumb"
	"github.com/dsnet/golib/hashmerge"
)

// Image is a decoded instruction stream with diagnostics.
type Image struct {
	Instructions []uint16
	Result       bitpack.Result
	Relocation   thumb.Stats

	// BlockCRCs holds the CRC-32 of each block of decoded bytes, and CRC the
	// CRC-32 of the whole image.
	BlockCRCs []uint32
	CRC       uint32
}

func newImage(stream []uint16, blockFields int, res bitpack.Result, st thumb.Stats) *Image {
	img := &Image{Instructions: stream, Result: res, Relocation: st}
	buf := img.Bytes()
	blockLen := 2 * blockFields
	for len(buf) > 0 {
		n := blockLen
		if n > len(buf) {
			n = len(buf)
		}
		crc := crc32.ChecksumIEEE(buf[:n])
		img.BlockCRCs = append(img.BlockCRCs, crc)
		img.CRC = hashmerge.CombineCRC32(crc32.IEEE, img.CRC, crc, int64(n))
		buf = buf[n:]
	}
	return img
}

// Reason reports why decoding stopped.
func (img *Image) Reason() bitpack.StopReason { return img.Result.Reason }

// Bytes returns the image in little-endian byte form.
func (img *Image) Bytes() []byte {
	return internal.AppendHalfwords(make([]byte, 0, 2*len(img.Instructions)), img.Instructions)
}
