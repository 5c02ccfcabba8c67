// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build !no_lib_kp
// +build !no_lib_kp

package bench

import (
	"io"
	"io/ioutil"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

func init() {
	RegisterEncoder("flate",
		func(w io.Writer, lvl int) io.WriteCloser {
			zw, err := flate.NewWriter(w, lvl)
			if err != nil {
				panic(err)
			}
			return zw
		})
	RegisterDecoder("flate",
		func(r io.Reader) io.ReadCloser {
			return flate.NewReader(r)
		})

	RegisterEncoder("zstd",
		func(w io.Writer, lvl int) io.WriteCloser {
			zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(lvl)))
			if err != nil {
				panic(err)
			}
			return zw
		})
	RegisterDecoder("zstd",
		func(r io.Reader) io.ReadCloser {
			zr, err := zstd.NewReader(r)
			if err != nil {
				panic(err)
			}
			return zr.IOReadCloser()
		})

	RegisterEncoder("s2",
		func(w io.Writer, lvl int) io.WriteCloser {
			// Levels above the default trade speed for the better matcher.
			if lvl > 6 {
				return s2.NewWriter(w, s2.WriterBetterCompression())
			}
			return s2.NewWriter(w)
		})
	RegisterDecoder("s2",
		func(r io.Reader) io.ReadCloser {
			return ioutil.NopCloser(s2.NewReader(r))
		})
}
