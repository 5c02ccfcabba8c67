// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"testing"

	"github.com/alicefw/alice"
	"github.com/alicefw/alice/dict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfile(t *testing.T) {
	p, err := parseProfile([]byte(`
lengths: [3, 5, 7, 8, 9, 11, 13]
block_size: 128
base: 0x10000000
version: 2
relocate: false
`))
	require.NoError(t, err)

	conf := p.encoderConfig()
	assert.Equal(t, &dict.Lengths{3, 5, 7, 8, 9, 11, 13}, conf.Lengths)
	assert.Equal(t, 128, conf.BlockSize)
	assert.Equal(t, uint32(0x10000000), conf.Base)
	assert.Equal(t, alice.Version2, conf.Version)
	assert.True(t, conf.NoRelocate)
}

func TestParseProfileDefaults(t *testing.T) {
	p, err := parseProfile([]byte("base: 4096\n"))
	require.NoError(t, err)

	conf := p.encoderConfig()
	assert.Nil(t, conf.Lengths)
	assert.Equal(t, 0, conf.BlockSize)
	assert.Equal(t, alice.Version(0), conf.Version)
	assert.False(t, conf.NoRelocate)

	// The zero config must be accepted by the encoder.
	_, err = alice.Encode([]byte{0x70, 0x47}, conf)
	assert.NoError(t, err)
}

func TestParseProfileZeroLengths(t *testing.T) {
	p, err := parseProfile([]byte("lengths: [0, 0, 0, 0, 0, 0, 0]\n"))
	require.NoError(t, err)

	conf := p.encoderConfig()
	require.NotNil(t, conf.Lengths)
	assert.Equal(t, dict.Lengths{}, *conf.Lengths)

	data, err := alice.Encode([]byte{0x70, 0x47, 0x00, 0xb5}, conf)
	require.NoError(t, err)
	f, err := alice.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, [dict.OverflowClass]uint16{}, f.Header.Lengths)
}

func TestParseProfileErrors(t *testing.T) {
	var vectors = []struct {
		desc string
		in   string
	}{
		{"unknown key", "blocksize: 64\n"},
		{"too few lengths", "lengths: [4, 6, 7]\n"},
		{"length too long", "lengths: [4, 6, 7, 8, 9, 11, 17]\n"},
		{"odd block size", "block_size: 63\n"},
		{"block size too small", "block_size: 1\n"},
		{"block size too large", "block_size: 65536\n"},
		{"unknown version", "version: 3\n"},
		{"malformed", "lengths: {\n"},
	}
	for _, v := range vectors {
		_, err := parseProfile([]byte(v.in))
		assert.Error(t, err, v.desc)
	}
}
