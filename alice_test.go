// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package alice

import (
	"bytes"
	"hash/crc32"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicefw/alice/bitpack"
	"github.com/alicefw/alice/dict"
	"github.com/alicefw/alice/internal"
	"github.com/alicefw/alice/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func image(hw []uint16) []byte { return internal.AppendHalfwords(nil, hw) }

func TestEncodeRepeatedInstruction(t *testing.T) {
	img := image(testutil.MustDecodeHalfwords("4770*64"))
	want := testutil.MustDecodeHex("" +
		"414c4943455f3200" + // ALICE_2
		"00000010" + // Base
		"38000010" + // Mapping
		"40000010" + // Dictionary
		"04000600070008000900" + "0b000c00" + // Class lengths
		"0901" + // Reserved
		"4000" + // Block size
		"ffff" + // End of header
		strings.Repeat("00", 56) + // 64 fields of class 0, rank 0
		"1c0000e0" + "380000e0" + // Checkpoints
		"7047", // Dictionary
	)

	got, err := Encode(img, &EncoderConfig{Base: 0x10000000})
	require.NoError(t, err)
	if !bytes.Equal(got, want) {
		t.Fatalf("mismatching output:\ngot  %x\nwant %x", got, want)
	}

	f, err := Parse(got)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x4770}, f.Dictionary)
	assert.Equal(t, []bitpack.Checkpoint{{Offset: 28, Bits: 224}, {Offset: 56, Bits: 224}}, f.Checkpoints)

	dec, err := DecodeFile(f, nil)
	require.NoError(t, err)
	assert.Equal(t, img, dec.Bytes())
	assert.Equal(t, bitpack.StopEnd, dec.Reason())
	assert.Zero(t, dec.Result.Mismatches)
	assert.Len(t, dec.BlockCRCs, 2)
	assert.Equal(t, crc32.ChecksumIEEE(img), dec.CRC)
}

func TestEncodeCallPair(t *testing.T) {
	hw := testutil.MustDecodeHalfwords("46c0*10 f000 f802 46c0*4")
	img := image(hw)

	d, err := BuildDictionary(img, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x46c0, 0xf000, 0xf80d}, d.Values())

	d, err = BuildDictionary(img, &EncoderConfig{NoRelocate: true})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x46c0, 0xf000, 0xf802}, d.Values())

	for _, noRelocate := range []bool{false, true} {
		data, err := Encode(img, &EncoderConfig{NoRelocate: noRelocate})
		require.NoError(t, err)
		got, err := Decode(data, &DecoderConfig{NoRelocate: noRelocate})
		require.NoError(t, err)
		assert.Equal(t, img, got, "NoRelocate: %v", noRelocate)
	}

	// Decoding must use the same relocation setting as encoding.
	data, err := Encode(img, nil)
	require.NoError(t, err)
	got, err := Decode(data, &DecoderConfig{NoRelocate: true})
	require.NoError(t, err)
	assert.Equal(t, image(testutil.MustDecodeHalfwords("46c0*10 f000 f80d 46c0*4")), got)
}

func TestReducedHeader(t *testing.T) {
	img := image(testutil.MustDecodeHalfwords("4770*40 b500*20 bd00*7"))
	data, err := Encode(img, &EncoderConfig{Version: Version1, Base: 0x1000})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("ALICE_1\x00")))

	h, err := ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, Version1, h.Version)
	assert.Equal(t, ReducedHeaderLen, h.Size)
	assert.Equal(t, uint16(0), h.BlockSize)
	assert.Equal(t, DefaultBlockSize, h.BlockBytes())
	assert.Equal(t, 32, h.BlockFields())
	assert.Equal(t, DefaultReserved, h.Reserved)
	assert.Equal(t, int64(ReducedHeaderLen), h.Offset(h.Base))

	got, err := Decode(data, nil)
	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestHeaderMarker(t *testing.T) {
	f := &File{
		Header:      Header{Version: Version1, Base: 0x2000, Reserved: DefaultReserved},
		Packed:      []byte{0x00, 0x00, 0xff, 0xff, 0x80},
		Checkpoints: []bitpack.Checkpoint{{Offset: 5, Bits: 33}},
		Dictionary:  []uint16{0x4770},
	}
	data, err := f.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, HeaderLen, f.Header.Size)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, HeaderLen, got.Header.Size)
	assert.Equal(t, f.Header, got.Header)
	assert.Equal(t, []byte{0x00, 0x00, 0xff, 0xff, 0x80, 0x00, 0x00, 0x00}, got.Packed)
	assert.Equal(t, f.Checkpoints, got.Checkpoints)
	assert.Equal(t, f.Dictionary, got.Dictionary)

	// Re-marshaling a parsed file reproduces it.
	again, err := got.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestEncodeWrappedBase(t *testing.T) {
	img := image(testutil.ThumbImage(3, 2000))
	for _, base := range []uint32{0, 0x10000000, 0xffffffd8, 0xfffffff8, 0xffffffff} {
		data, err := Encode(img, &EncoderConfig{Base: base})
		require.NoError(t, err)
		f, err := Parse(data)
		require.NoError(t, err, "base 0x%08x", base)
		assert.Equal(t, int64(len(f.Packed)+HeaderLen), f.Header.Offset(f.Header.Mapping))

		dec, err := DecodeFile(f, nil)
		require.NoError(t, err, "base 0x%08x", base)
		assert.Equal(t, img, dec.Bytes(), "base 0x%08x", base)
	}

	h := Header{Base: 0xfffffff0, Size: HeaderLen}
	var vectors = []struct {
		addr uint32
		off  int64
	}{
		{0xfffffff0, HeaderLen},
		{0xffffffff, HeaderLen + 15},
		{0x00000000, HeaderLen + 16},
		{0x00000100, HeaderLen + 0x110},
		{0xffffff00, HeaderLen - 0xf0},
	}
	for i, v := range vectors {
		if got := h.Offset(v.addr); got != v.off {
			t.Errorf("test %d, Offset(0x%08x) = %d, want %d", i, v.addr, got, v.off)
		}
		if v.off >= HeaderLen {
			if got := h.Addr(int(v.off)); got != v.addr {
				t.Errorf("test %d, Addr(%d) = 0x%08x, want 0x%08x", i, v.off, got, v.addr)
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	valid, err := Encode(image(testutil.ThumbImage(5, 1000)), &EncoderConfig{Base: 0x4000})
	require.NoError(t, err)
	h, err := ParseHeader(valid)
	require.NoError(t, err)

	patch := func(off int, b ...byte) []byte {
		out := append([]byte(nil), valid...)
		copy(out[off:], b)
		return out
	}
	mapOff := int(h.Offset(h.Mapping))

	var vectors = []struct {
		desc  string
		input []byte
		err   error
	}{
		{desc: "empty", input: nil, err: ErrHeader},
		{desc: "bad magic", input: patch(0, 'B'), err: ErrMagic},
		{desc: "version 3", input: patch(6, '3'), err: ErrMagic},
		{desc: "short header", input: valid[:39], err: ErrHeader},
		{desc: "mapping before header", input: patch(12, 0x00, 0x00, 0x00, 0x00), err: ErrRegions},
		{desc: "dictionary before mapping", input: patch(16, 0x00, 0x40, 0x00, 0x00), err: ErrRegions},
		{desc: "packed stream cut", input: valid[:mapOff-1], err: &TruncatedInputError{Region: "packed stream", Want: mapOff, Have: mapOff - 1}},
		{desc: "checkpoint table cut", input: valid[:mapOff+1], err: &TruncatedInputError{Region: "checkpoint table", Want: int(h.Offset(h.Dict)), Have: mapOff + 1}},
		{desc: "dictionary cut", input: valid[:len(valid)-1], err: &TruncatedInputError{Region: "dictionary", Want: len(valid), Have: len(valid) - 1}},
	}

	for i, v := range vectors {
		_, err := Decode(v.input, nil)
		if !cmp.Equal(err, v.err) {
			t.Errorf("test %d (%s), Decode() error = %v, want %v", i, v.desc, err, v.err)
		}
	}
}

func TestDecodeTruncatedDictionary(t *testing.T) {
	data, err := Encode(image(testutil.ThumbImage(7, 5000)), nil)
	require.NoError(t, err)
	f, err := Parse(data)
	require.NoError(t, err)
	require.NotEmpty(t, f.Dictionary)

	f.Dictionary = f.Dictionary[:len(f.Dictionary)-1]
	_, err = DecodeFile(f, nil)
	require.Error(t, err)
	ie, ok := err.(*DictionaryInversionError)
	require.True(t, ok, "error %T is not a *DictionaryInversionError", err)
	assert.Equal(t, len(f.Dictionary), ie.Index)
	assert.Equal(t, len(f.Dictionary), ie.Size)
}

func TestDecodeWithoutCheckpoints(t *testing.T) {
	img := image(testutil.ThumbImage(9, 3000))
	data, err := Encode(img, nil)
	require.NoError(t, err)
	f, err := Parse(data)
	require.NoError(t, err)
	f.Checkpoints = nil

	dec, err := DecodeFile(f, &DecoderConfig{StopPolicy: bitpack.DefaultPolicy{}})
	require.NoError(t, err)
	got := dec.Bytes()
	require.True(t, len(got) >= len(img), "decoded %d bytes, want at least %d", len(got), len(img))
	assert.Equal(t, img, got[:len(img)])
	assert.Contains(t, []bitpack.StopReason{bitpack.StopLimit, bitpack.StopExhausted}, dec.Reason())
}

func TestEncoderConfigErrors(t *testing.T) {
	img := image(testutil.MustDecodeHalfwords("4770 b500"))
	var vectors = []struct {
		desc  string
		image []byte
		conf  *EncoderConfig
		err   error
	}{
		{desc: "odd image", image: img[:3], err: ErrOddImage},
		{desc: "odd block size", image: img, conf: &EncoderConfig{BlockSize: 63}, err: ErrBlockSize},
		{desc: "huge block size", image: img, conf: &EncoderConfig{BlockSize: 1 << 16}, err: ErrBlockSize},
		{desc: "long class", image: img, conf: &EncoderConfig{Lengths: &dict.Lengths{17}}, err: ErrLengths},
		{desc: "bad version", image: img, conf: &EncoderConfig{Version: 3}, err: ErrVersion},
		{desc: "version 1 block size", image: img, conf: &EncoderConfig{Version: Version1, BlockSize: 32}, err: ErrVersionBlock},
	}

	for i, v := range vectors {
		if _, err := Encode(v.image, v.conf); err != v.err {
			t.Errorf("test %d (%s), Encode() error = %v, want %v", i, v.desc, err, v.err)
		}
	}
}

func TestEncodeLengths(t *testing.T) {
	img := image(testutil.ThumbImage(13, 600))
	var vectors = []struct {
		lens *dict.Lengths
		want [dict.OverflowClass]uint16
	}{
		{nil, [dict.OverflowClass]uint16{4, 6, 7, 8, 9, 11, 12}},
		{&dict.Lengths{}, [dict.OverflowClass]uint16{}},
		{&dict.Lengths{0, 0, 0, 0, 0, 0, 16}, [dict.OverflowClass]uint16{0, 0, 0, 0, 0, 0, 16}},
	}
	for i, v := range vectors {
		data, err := Encode(img, &EncoderConfig{Lengths: v.lens})
		require.NoError(t, err)
		f, err := Parse(data)
		require.NoError(t, err)
		if f.Header.Lengths != v.want {
			t.Errorf("test %d, header lengths = %v, want %v", i, f.Header.Lengths, v.want)
		}
		dec, err := DecodeFile(f, nil)
		require.NoError(t, err)
		assert.Equal(t, img, dec.Bytes(), "test %d", i)
	}
}

func TestEncodeLoadedTables(t *testing.T) {
	img := image(testutil.ThumbImage(15, 8000))
	conf := &EncoderConfig{Lengths: &dict.Lengths{3, 5, 7, 8, 9, 11, 13}, BlockSize: 48}
	want, err := Encode(img, conf)
	require.NoError(t, err)

	d, err := BuildDictionary(img, conf)
	require.NoError(t, err)
	loaded, err := dict.LoadTables(d.Layout(), d.CodeLengths(), d.CodeTable())
	require.NoError(t, err)

	got, err := Encode(img, &EncoderConfig{Dictionary: loaded, BlockSize: 48})
	require.NoError(t, err)
	if !bytes.Equal(got, want) {
		t.Fatalf("mismatching output from loaded tables")
	}

	// A dictionary built from another image still round trips, with the
	// instructions it lacks stored as overflow literals.
	other := dict.Build(testutil.ThumbImage(16, 500), d.Layout())
	data, err := Encode(img, &EncoderConfig{Dictionary: other})
	require.NoError(t, err)
	f, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, other.Values(), f.Dictionary)
	dec, err := Decode(data, nil)
	require.NoError(t, err)
	assert.Equal(t, img, dec)
}

func TestEncodeDeterministic(t *testing.T) {
	img := image(testutil.ThumbImage(11, 20000))
	a, err := Encode(img, nil)
	require.NoError(t, err)
	b, err := Encode(img, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Less(t, len(a), len(img))
}

func TestRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	seed := time.Now().UnixNano()
	parameters.MinSuccessfulTests = 200
	parameters.MaxSize = 1000
	parameters.Rng.Seed(seed)
	props := gopter.NewProperties(parameters)

	genStream := gen.SliceOf(gen.OneGenOf(
		gen.UInt16Range(0, 15),
		gen.UInt16Range(0xe800, 0xffff),
		gen.UInt16(),
	))
	genConfig := gopter.CombineGens(
		gen.SliceOfN(7, gen.UIntRange(0, 16)),
		gen.IntRange(1, 64),
		gen.Bool(),
		gen.Bool(),
		gen.UInt32(),
	).Map(func(vals []interface{}) *EncoderConfig {
		conf := &EncoderConfig{
			BlockSize:  2 * vals[1].(int),
			Base:       vals[4].(uint32),
			NoRelocate: vals[3].(bool),
		}
		conf.Lengths = new(dict.Lengths)
		copy(conf.Lengths[:], vals[0].([]uint))
		if vals[2].(bool) {
			conf.Version, conf.BlockSize = Version1, 0
		}
		return conf
	})

	props.Property("decode inverts encode", prop.ForAll(
		func(stream []uint16, conf *EncoderConfig) (bool, error) {
			img := image(stream)
			data, err := Encode(img, conf)
			if err != nil {
				return false, err
			}
			f, err := Parse(data)
			if err != nil {
				return false, err
			}
			dec, err := DecodeFile(f, &DecoderConfig{NoRelocate: conf.NoRelocate})
			if err != nil {
				return false, err
			}
			return bytes.Equal(dec.Bytes(), img) && dec.Reason() == bitpack.StopEnd &&
				dec.Result.Mismatches == 0 && dec.CRC == crc32.ChecksumIEEE(img), nil
		},
		genStream,
		genConfig,
	))

	reporter := gopter.NewFormatedReporter(true, 160, os.Stdout)
	if !props.Run(reporter) {
		t.Errorf("failed with initial seed: %d", seed)
	}
}

func BenchmarkEncode(b *testing.B) {
	img := image(testutil.ThumbImage(1, 1<<16))
	b.SetBytes(int64(len(img)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(img, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	img := image(testutil.ThumbImage(1, 1<<16))
	data, err := Encode(img, nil)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(img)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data, nil); err != nil {
			b.Fatal(err)
		}
	}
}
