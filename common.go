// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package alice implements the ALICE compressed firmware format used by
// Mediatek feature phone and wearable images.
//
// An ALICE file holds a table of 16-bit Thumb instructions. The instructions
// are ranked by frequency into a dictionary, and every instruction is then
// replaced by a variable-length code of at most 19 bits. The packed stream is
// realigned to a byte boundary after every block, and a checkpoint table
// records where each block ends. BL and BLX call pairs are rewritten to their
// absolute targets before ranking so that calls to the same function share a
// code.
//
// A file is laid out as follows:
//
//	header | packed stream | checkpoint table | dictionary
//
// The header stores the addresses of the later regions relative to a base
// load address chosen by the firmware.
package alice

import (
	"fmt"
	"runtime"

	"github.com/alicefw/alice/dict"
)

// FormatError reports a malformed container or an image that cannot be
// encoded.
type FormatError string

func (e FormatError) Error() string { return "alice: invalid format: " + string(e) }

var (
	ErrMagic           error = FormatError("unrecognized magic")
	ErrHeader          error = FormatError("truncated header")
	ErrRegions         error = FormatError("inconsistent region offsets")
	ErrOddImage        error = FormatError("image length is not a multiple of 2")
	ErrLengths         error = FormatError("invalid class lengths")
	ErrBlockSize       error = FormatError("invalid block size")
	ErrVersion         error = FormatError("unknown version")
	ErrVersionBlock    error = FormatError("version 1 headers cannot store a block size")
	ErrCheckpointTable error = FormatError("checkpoint table is not a whole number of records")
)

// TruncatedInputError reports a region that extends past the end of the
// input.
type TruncatedInputError struct {
	Region string
	Want   int // Number of bytes the region requires
	Have   int // Number of bytes available
}

func (e *TruncatedInputError) Error() string {
	return fmt.Sprintf("alice: truncated %s: need %d bytes, have %d", e.Region, e.Want, e.Have)
}

// DictionaryInversionError reports a packed field whose rank lies past the
// end of the stored dictionary.
type DictionaryInversionError = dict.InversionError

func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case error:
		*err = ex
	default:
		panic(ex)
	}
}
