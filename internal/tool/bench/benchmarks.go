// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/alicefw/alice/internal/testutil"
)

type Result struct {
	R float64 // Rate (MB/s) or ratio (rawSize/compSize)
	D float64 // Delta ratio relative to the first codec
}

// Suite is the grid of inputs a benchmark test runs over. Every file is
// resized to every size and compressed at every level by every codec.
type Suite struct {
	Codecs []string
	Files  []string
	Levels []int
	Sizes  []int // Negative sizes use the whole file

	Tick func() // If set, called before each measurement
}

// Run measures test t over the suite. There is one row of results per
// file, level, and size, named "file:level:size", with one column per codec.
func (s *Suite) Run(t Test) (results [][]Result, names []string) {
	var measure func(input []byte, codec string, lvl int) float64
	switch t {
	case TestEncodeRate:
		measure = measureEncode
	case TestDecodeRate:
		measure = measureDecode
	case TestCompressRatio:
		measure = measureRatio
	default:
		panic(fmt.Sprintf("unknown test: %d", t))
	}

	for _, f := range s.Files {
		b, err := ioutil.ReadFile(getPath(f))
		for _, l := range s.Levels {
			for _, n := range s.Sizes {
				input := b
				if err == nil && len(b) >= 2 {
					input = testutil.ResizeData(b, n)
				}
				row := make([]Result, len(s.Codecs))
				for j, c := range s.Codecs {
					if s.Tick != nil {
						s.Tick()
					}
					if err == nil {
						row[j].R = measure(input, c, l)
					}
					row[j].D = row[j].R / row[0].R
				}
				results = append(results, row)
				names = append(names, fmt.Sprintf("%s:%d:%s", filepath.Base(f), l, intName(len(input))))
			}
		}
	}
	return results, names
}

// measureRatio reports the compression ratio, or zero if encoding failed.
func measureRatio(input []byte, codec string, lvl int) float64 {
	output, err := compress(encoders[codec], input, lvl)
	if err != nil || len(output) == 0 {
		return 0
	}
	return float64(len(input)) / float64(len(output))
}

// measureEncode reports the encoding rate in MB/s.
func measureEncode(input []byte, codec string, lvl int) float64 {
	enc := encoders[codec]
	if enc == nil {
		return 0
	}
	return rate(testing.Benchmark(func(b *testing.B) {
		runtime.GC()
		b.ResetTimer()
		b.SetBytes(int64(len(input)))
		for i := 0; i < b.N; i++ {
			wr := enc(ioutil.Discard, lvl)
			_, err := io.Copy(wr, bytes.NewReader(input))
			if cerr := wr.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
		}
	}))
}

// measureDecode reports the decoding rate in MB/s of uncompressed output.
// The input is first compressed by the encoder of the same name.
func measureDecode(input []byte, codec string, lvl int) float64 {
	dec := decoders[codec]
	output, err := compress(encoders[codec], input, lvl)
	if dec == nil || err != nil {
		return 0
	}
	return rate(testing.Benchmark(func(b *testing.B) {
		runtime.GC()
		b.ResetTimer()
		b.SetBytes(int64(len(input)))
		for i := 0; i < b.N; i++ {
			rd := dec(bytes.NewReader(output))
			_, err := io.Copy(ioutil.Discard, rd)
			if cerr := rd.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
		}
	}))
}

func rate(r testing.BenchmarkResult) float64 {
	if r.N == 0 || r.T <= 0 {
		return 0
	}
	us := float64(r.T.Nanoseconds()) / 1e3
	return float64(r.Bytes) * float64(r.N) / us
}

func compress(enc Encoder, input []byte, lvl int) ([]byte, error) {
	if enc == nil {
		return nil, fmt.Errorf("nil Encoder")
	}
	buf := new(bytes.Buffer)
	wr := enc(buf, lvl)
	if _, err := io.Copy(wr, bytes.NewReader(input)); err != nil {
		return nil, err
	}
	if err := wr.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
