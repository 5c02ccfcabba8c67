// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bench compares ALICE against general purpose compressors with
// respect to encode speed, decode speed, and ratio on firmware images.
package bench

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/dsnet/golib/unitconv"
)

// Section: Test enumerations

type Test int

const (
	TestEncodeRate Test = iota
	TestDecodeRate
	TestCompressRatio
)

var (
	testToEnum = map[string]Test{
		"encRate": TestEncodeRate,
		"decRate": TestDecodeRate,
		"ratio":   TestCompressRatio,
	}
	enumToTest = map[Test]string{
		TestEncodeRate:    "encRate",
		TestDecodeRate:    "decRate",
		TestCompressRatio: "ratio",
	}
)

func (t Test) String() string { return enumToTest[t] }

// Section: Encoders and Decoders
//
// Every codec is registered under a single name. Since each codec produces
// its own format, the output of an encoder is only ever fed to the decoder
// of the same name. Source files can use an init function to register a
// codec.

type Encoder func(io.Writer, int) io.WriteCloser
type Decoder func(io.Reader) io.ReadCloser

var (
	encoders map[string]Encoder
	decoders map[string]Decoder
)

func RegisterEncoder(name string, enc Encoder) {
	if encoders == nil {
		encoders = make(map[string]Encoder)
	}
	encoders[name] = enc
}

func RegisterDecoder(name string, dec Decoder) {
	if decoders == nil {
		decoders = make(map[string]Decoder)
	}
	decoders[name] = dec
}

// Section: Configuration

// Paths is the list of directories searched for relative input files.
var Paths []string

// DefaultTests lists every benchmark test in order.
func DefaultTests() []Test {
	var d []int
	for k := range enumToTest {
		d = append(d, int(k))
	}
	sort.Ints(d)
	var ts []Test
	for _, t := range d {
		ts = append(ts, Test(t))
	}
	return ts
}

// DefaultCodecs lists every registered codec, with "alice" first so that it
// serves as the reference for the delta columns.
func DefaultCodecs() []string {
	m := make(map[string]bool)
	for k := range encoders {
		m[k] = true
	}
	for k := range decoders {
		m[k] = true
	}
	hasAlice := m["alice"]
	delete(m, "alice")
	var cs []string
	for k := range m {
		cs = append(cs, k)
	}
	sort.Strings(cs)
	if hasAlice {
		cs = append([]string{"alice"}, cs...)
	}
	return cs
}

var reDelim = regexp.MustCompile("[,:]")

// SplitList splits a comma or colon separated list.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	return reDelim.Split(s, -1)
}

// ParseTests parses a list of test names.
func ParseTests(s string) ([]Test, error) {
	var ts []Test
	for _, s := range SplitList(s) {
		t, ok := testToEnum[s]
		if !ok {
			return nil, fmt.Errorf("unknown test: %s", s)
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// ParseInts parses a list of integers that may carry SI or binary suffixes
// (e.g. "1e4,64Ki,1M").
func ParseInts(s string) ([]int, error) {
	var ds []int
	for _, s := range SplitList(s) {
		d, err := unitconv.ParsePrefix(s, unitconv.AutoParse)
		if err != nil {
			return nil, err
		}
		ds = append(ds, int(d))
	}
	return ds, nil
}

// intName returns a shorter representation of the input integer.
// It uses scientific notation for exact powers of 10.
// It uses SI suffixes for powers of 1024.
// If the number is small enough, it will be printed as is.
func intName(n int) string {
	switch n {
	case 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11, 1e12:
		s := fmt.Sprintf("%e", float64(n))
		re := regexp.MustCompile("\\.0*e\\+0*")
		return re.ReplaceAllString(s, "e")
	default:
		s := unitconv.FormatPrefix(float64(n), unitconv.Base1024, 2)
		return strings.Replace(s, ".00", "", -1)
	}
}

func getPath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	for _, p := range Paths {
		p = filepath.Join(p, file)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return file
}
