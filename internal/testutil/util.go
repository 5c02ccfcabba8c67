// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package testutil is a collection of testing helper methods.
package testutil

import (
	"encoding/hex"
	"io/ioutil"
	"strconv"
	"strings"
)

// ResizeData resizes the input. If n < 0, then the original input will be
// returned as is. The size is rounded down to a whole number of halfwords.
// If n <= len(input), then the input slice will be truncated.
// However, if n > len(input), then the input will be replicated to fill in
// the missing bytes, but each replicated copy has every halfword XORed by a
// mask so that the instruction histogram keeps growing with the size.
//
// If n > len(input), then len(input) must be >= 2.
func ResizeData(input []byte, n int) []byte {
	if n < 0 {
		return input
	}
	input = input[:len(input)&^1]
	n &^= 1
	if len(input) >= n {
		return input[:n]
	}
	if len(input) == 0 {
		panic("unable to replicate an empty image")
	}

	var mask uint16
	output := make([]byte, n)
	for i := 0; i < n; i += 2 {
		idx := i % len(input)
		output[i+0] = input[idx+0] ^ byte(mask)
		output[i+1] = input[idx+1] ^ byte(mask>>8)
		if idx == len(input)-2 {
			mask++
		}
	}
	return output
}

// MustLoadFile must load a file or else panics.
func MustLoadFile(file string) []byte {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		panic(err)
	}
	return b
}

// MustDecodeHex must decode a hexadecimal string or else panics.
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MustDecodeHalfwords parses white-space separated hexadecimal instructions
// (e.g. "4770 b500 f000 f802") or else panics.
// A trailing quantifier of the form "*n" repeats a single instruction.
func MustDecodeHalfwords(s string) []uint16 {
	var hw []uint16
	for _, t := range strings.Fields(s) {
		rep := 1
		if i := strings.IndexByte(t, '*'); i >= 0 {
			n, err := strconv.Atoi(t[i+1:])
			if err != nil {
				panic(err)
			}
			t, rep = t[:i], n
		}
		v, err := strconv.ParseUint(t, 16, 16)
		if err != nil {
			panic(err)
		}
		for i := 0; i < rep; i++ {
			hw = append(hw, uint16(v))
		}
	}
	return hw
}

// MustDecodeBitGen must decode a BitGen formatted string or else panics.
func MustDecodeBitGen(s string) []byte {
	b, err := DecodeBitGen(s)
	if err != nil {
		panic(err)
	}
	return b
}
