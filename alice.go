// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package alice

import (
	"github.com/alicefw/alice/bitpack"
	"github.com/alicefw/alice/dict"
	"github.com/alicefw/alice/internal"
	"github.com/alicefw/alice/thumb"
	"go.uber.org/zap"
)

// EncoderConfig configures Encode. The zero value of every field selects
// the vendor defaults.
type EncoderConfig struct {
	// Lengths are the class payload lengths.
	// If nil, dict.DefaultLengths is used.
	Lengths *dict.Lengths

	// Dictionary, if set, codes the instructions instead of a dictionary
	// built from the image. Its layout takes the place of Lengths.
	// Instructions it does not list are stored as overflow literals.
	Dictionary *dict.Dictionary

	// BlockSize is the number of packed bytes per block before
	// realignment, counted as two per instruction. It must be even.
	// Zero selects DefaultBlockSize.
	BlockSize int

	// Base is the load address recorded in the header.
	Base uint32

	// Version is the container revision to write. Zero selects Version2.
	Version Version

	// NoRelocate disables rewriting of BL and BLX call pairs.
	NoRelocate bool

	Logger *zap.Logger // If nil, nothing is logged
}

// DecoderConfig configures Decode.
type DecoderConfig struct {
	// NoRelocate disables rewriting of BL and BLX call pairs.
	NoRelocate bool

	// StopPolicy decides where the packed stream ends.
	// If nil, bitpack.DefaultStopPolicy is used.
	StopPolicy bitpack.StopPolicy

	Logger *zap.Logger // If nil, nothing is logged
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

type encoderSettings struct {
	layout     *dict.Layout
	preset     *dict.Dictionary
	blockSize  int
	version    Version
	base       uint32
	noRelocate bool
	log        *zap.Logger
}

func (conf *EncoderConfig) settings() (s encoderSettings, err error) {
	if conf == nil {
		conf = &EncoderConfig{}
	}
	if conf.Dictionary != nil {
		s.preset = conf.Dictionary
		s.layout = conf.Dictionary.Layout()
	} else {
		lens := dict.DefaultLengths
		if conf.Lengths != nil {
			lens = *conf.Lengths
		}
		if s.layout, err = dict.NewLayout(lens); err != nil {
			return s, ErrLengths
		}
	}

	s.blockSize = conf.BlockSize
	if s.blockSize == 0 {
		s.blockSize = DefaultBlockSize
	}
	if s.blockSize < 2 || s.blockSize > 0xfffe || s.blockSize%2 != 0 {
		return s, ErrBlockSize
	}

	s.version = conf.Version
	switch s.version {
	case 0:
		s.version = Version2
	case Version1:
		if s.blockSize != DefaultBlockSize {
			return s, ErrVersionBlock
		}
	case Version2:
	default:
		return s, ErrVersion
	}

	s.base = conf.Base
	s.noRelocate = conf.NoRelocate
	s.log = logger(conf.Logger)
	return s, nil
}

// prepare converts the image into instructions and relocates them.
func (s *encoderSettings) prepare(image []byte) ([]uint16, error) {
	stream, err := internal.Halfwords(image)
	if err != nil {
		return nil, ErrOddImage
	}
	if !s.noRelocate {
		st := thumb.Relocate(stream, thumb.Encode)
		s.log.Debug("relocated call pairs", zap.Int("bl", st.BL), zap.Int("blx", st.BLX))
	}
	return stream, nil
}

// BuildDictionary returns the dictionary Encode would use for image.
func BuildDictionary(image []byte, conf *EncoderConfig) (*dict.Dictionary, error) {
	s, err := conf.settings()
	if err != nil {
		return nil, err
	}
	stream, err := s.prepare(image)
	if err != nil {
		return nil, err
	}
	return s.dictionary(stream), nil
}

func (s *encoderSettings) dictionary(stream []uint16) *dict.Dictionary {
	if s.preset != nil {
		return s.preset
	}
	return dict.Build(stream, s.layout)
}

// EncodeFile compresses a little-endian Thumb image into its regions.
func EncodeFile(image []byte, conf *EncoderConfig) (f *File, err error) {
	defer errRecover(&err)

	s, err := conf.settings()
	if err != nil {
		return nil, err
	}
	stream, err := s.prepare(image)
	if err != nil {
		return nil, err
	}

	d := s.dictionary(stream)
	w := bitpack.NewWriter(s.blockSize / 2)
	for _, v := range stream {
		w.WriteField(d.Field(v))
	}
	packed, cps := w.Finish()

	f = &File{
		Header: Header{
			Version:   s.version,
			Base:      s.base,
			Reserved:  DefaultReserved,
			BlockSize: uint16(s.blockSize),
		},
		Packed:      packed,
		Checkpoints: cps,
		Dictionary:  d.Values(),
	}
	for i, n := range s.layout.Lengths() {
		f.Header.Lengths[i] = uint16(n)
	}
	if s.version == Version1 {
		f.Header.BlockSize = 0
	}

	s.log.Debug("encoded image",
		zap.Int("instructions", len(stream)),
		zap.Int("dictionary", len(f.Dictionary)),
		zap.Int("packed", len(packed)),
		zap.Int("blocks", len(cps)))
	return f, nil
}

// Encode compresses a little-endian Thumb image into an ALICE container.
func Encode(image []byte, conf *EncoderConfig) ([]byte, error) {
	f, err := EncodeFile(image, conf)
	if err != nil {
		return nil, err
	}
	return f.MarshalBinary()
}

// DecodeFile decompresses the regions of an ALICE container.
func DecodeFile(f *File, conf *DecoderConfig) (*Image, error) {
	if conf == nil {
		conf = &DecoderConfig{}
	}
	log := logger(conf.Logger)

	layout, err := dict.NewLayout(f.Header.ClassLengths())
	if err != nil {
		return nil, ErrLengths
	}
	if f.Header.BlockFields() == 0 {
		return nil, ErrBlockSize
	}

	u := bitpack.Unpacker{
		Codebook:    dict.NewInverse(layout, f.Dictionary),
		BlockFields: f.Header.BlockFields(),
		Checkpoints: f.Checkpoints,
		Policy:      conf.StopPolicy,
		Logger:      log,
	}
	stream, res, err := u.Unpack(f.Packed)
	if err != nil {
		return nil, err
	}
	if res.Reason.Heuristic() {
		log.Warn("end of packed stream was guessed",
			zap.Stringer("reason", res.Reason),
			zap.Int("instructions", len(stream)),
			zap.Uint("bitPos", res.BitPos))
	}

	var st thumb.Stats
	if !conf.NoRelocate {
		st = thumb.Relocate(stream, thumb.Decode)
		log.Debug("relocated call pairs", zap.Int("bl", st.BL), zap.Int("blx", st.BLX))
	}
	return newImage(stream, f.Header.BlockFields(), res, st), nil
}

// Decode decompresses an ALICE container into a little-endian Thumb image.
func Decode(data []byte, conf *DecoderConfig) ([]byte, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	img, err := DecodeFile(f, conf)
	if err != nil {
		return nil, err
	}
	return img.Bytes(), nil
}
