// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"github.com/alicefw/alice"
	"github.com/alicefw/alice/gfh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type decodeFlags struct {
	input, output string
	noRelocate    bool
	stripGFH      bool
}

func newDecodeCmd(g *globalFlags) *cobra.Command {
	f := new(decodeFlags)
	cmd := &cobra.Command{
		Use:     "decode",
		Short:   "Decompress an ALICE container into a Thumb image",
		Example: `alice decode -i ALICE -o image.bin`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(g, f)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "ALICE container")
	fs.StringVarP(&f.output, "output", "o", "", "raw image to write")
	fs.BoolVar(&f.noRelocate, "no-relocate", false, "do not rewrite BL and BLX call pairs")
	fs.BoolVar(&f.stripGFH, "strip-gfh", false, "remove a leading GFH FILE_INFO header")
	return cmd
}

func runDecode(g *globalFlags, f *decodeFlags) error {
	data, err := readInput(f.input)
	if err != nil {
		return err
	}
	if f.stripGFH {
		if data, err = stripGFH(data); err != nil {
			return errors.Wrapf(err, "unable to strip GFH header of %s", f.input)
		}
	}

	file, err := alice.Parse(data)
	if err != nil {
		return errors.Wrapf(err, "unable to parse %s", f.input)
	}
	img, err := alice.DecodeFile(file, &alice.DecoderConfig{
		NoRelocate: f.noRelocate,
		Logger:     g.logger,
	})
	if err != nil {
		return errors.Wrapf(err, "unable to decode %s", f.input)
	}
	if err := writeOutput(f.output, img.Bytes()); err != nil {
		return err
	}
	g.logger.Info("decoded image",
		zap.String("output", f.output),
		zap.Int("instructions", len(img.Instructions)),
		zap.Stringer("end", img.Reason()),
		zap.Int("bl", img.Relocation.BL),
		zap.Int("blx", img.Relocation.BLX),
		zap.String("crc", formatCRC(img.CRC)))
	return nil
}

// stripGFH returns the content of a GFH wrapped file. Other files are
// returned unchanged.
func stripGFH(data []byte) ([]byte, error) {
	if !gfh.Detect(data) {
		return data, nil
	}
	fi, err := gfh.Parse(data)
	if err != nil {
		return nil, err
	}
	return fi.Content(data)
}
