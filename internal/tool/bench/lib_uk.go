// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

//go:build !no_lib_uk
// +build !no_lib_uk

package bench

import (
	"io"
	"io/ioutil"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// lzmaDictCap emulates the level to dictionary size conversion found in
// LZMA2Options.java from http://git.tukaani.org/xz-java.git.
func lzmaDictCap(lvl int) int {
	if lvl < 0 || lvl > 9 {
		panic("invalid level")
	}
	return [...]int{
		1 << 18, 1 << 20, 1 << 21, 1 << 22, 1 << 22,
		1 << 23, 1 << 23, 1 << 24, 1 << 25, 1 << 26,
	}[lvl]
}

func init() {
	RegisterEncoder("lzma2",
		func(w io.Writer, lvl int) io.WriteCloser {
			zw, err := lzma.Writer2Config{DictCap: lzmaDictCap(lvl), Matcher: lzma.HashTable4}.NewWriter2(w)
			if err != nil {
				panic(err)
			}
			return zw
		})
	RegisterDecoder("lzma2",
		func(r io.Reader) io.ReadCloser {
			zr, err := lzma.NewReader2(r)
			if err != nil {
				panic(err)
			}
			return ioutil.NopCloser(zr)
		})

	RegisterEncoder("xz",
		func(w io.Writer, lvl int) io.WriteCloser {
			zw, err := xz.WriterConfig{DictCap: lzmaDictCap(lvl)}.NewWriter(w)
			if err != nil {
				panic(err)
			}
			return zw
		})
	RegisterDecoder("xz",
		func(r io.Reader) io.ReadCloser {
			zr, err := xz.NewReader(r)
			if err != nil {
				panic(err)
			}
			return ioutil.NopCloser(zr)
		})
}
