// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"path/filepath"

	"github.com/alicefw/alice"
	"github.com/alicefw/alice/dict"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Names of the vendor table dumps written by --tables.
const (
	codeLengthsFile = "magic.bin"
	codeTableFile   = "before_encode.bin"
	m2File          = "~M2.tmp"
)

type encodeFlags struct {
	input, output string
	config        string
	noRelocate    bool
	version       int
	tables        string
	loadTables    string
}

func newEncodeCmd(g *globalFlags) *cobra.Command {
	f := new(encodeFlags)
	cmd := &cobra.Command{
		Use:     "encode",
		Short:   "Compress a Thumb image into an ALICE container",
		Example: `alice encode -i image.bin -o ALICE --config profile.yaml --tables out/`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd, g, f)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "raw little-endian Thumb image")
	fs.StringVarP(&f.output, "output", "o", "", "ALICE container to write")
	fs.StringVar(&f.config, "config", "", "YAML encoder profile")
	fs.BoolVar(&f.noRelocate, "no-relocate", false, "do not rewrite BL and BLX call pairs")
	fs.IntVar(&f.version, "version", 2, "container version (1 or 2)")
	fs.StringVar(&f.tables, "tables", "", "directory to dump the vendor code tables into")
	fs.StringVar(&f.loadTables, "load-tables", "", "directory to read vendor code tables from instead of ranking the image")
	return cmd
}

func runEncode(cmd *cobra.Command, g *globalFlags, f *encodeFlags) error {
	p := new(profile)
	if f.config != "" {
		var err error
		if p, err = loadProfile(f.config); err != nil {
			return err
		}
	}
	conf := p.encoderConfig()
	if cmd.Flags().Changed("version") || conf.Version == 0 {
		conf.Version = alice.Version(f.version)
	}
	if cmd.Flags().Changed("no-relocate") {
		conf.NoRelocate = f.noRelocate
	}
	conf.Logger = g.logger
	if f.loadTables != "" {
		d, err := loadTables(f.loadTables, conf.Lengths)
		if err != nil {
			return err
		}
		conf.Dictionary = d
	}

	image, err := readInput(f.input)
	if err != nil {
		return err
	}
	file, err := alice.EncodeFile(image, conf)
	if err != nil {
		return errors.Wrapf(err, "unable to encode %s", f.input)
	}
	out, err := file.MarshalBinary()
	if err != nil {
		return errors.Wrapf(err, "unable to encode %s", f.input)
	}
	if err := writeOutput(f.output, out); err != nil {
		return err
	}
	g.logger.Info("encoded image",
		zap.String("output", f.output),
		zap.Int("imageSize", len(image)),
		zap.Int("containerSize", len(out)),
		zap.Int("dictionary", len(file.Dictionary)),
		zap.Int("checkpoints", len(file.Checkpoints)))

	if f.tables == "" {
		return nil
	}
	d, err := alice.BuildDictionary(image, conf)
	if err != nil {
		return errors.Wrap(err, "unable to build code tables")
	}
	if err := writeOutput(filepath.Join(f.tables, codeLengthsFile), d.CodeLengths()); err != nil {
		return err
	}
	if err := writeOutput(filepath.Join(f.tables, codeTableFile), d.CodeTable()); err != nil {
		return err
	}
	return writeOutput(filepath.Join(f.tables, m2File), d.AppendM2(nil))
}

// loadTables reads the vendor code tables in dir. The class lengths must
// match those the tables were produced with.
func loadTables(dir string, lens *dict.Lengths) (*dict.Dictionary, error) {
	if lens == nil {
		lens = &dict.DefaultLengths
	}
	layout, err := dict.NewLayout(*lens)
	if err != nil {
		return nil, errors.Wrap(err, "invalid class lengths")
	}
	lengths, err := readInput(filepath.Join(dir, codeLengthsFile))
	if err != nil {
		return nil, err
	}
	table, err := readInput(filepath.Join(dir, codeTableFile))
	if err != nil {
		return nil, err
	}
	d, err := dict.LoadTables(layout, lengths, table)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load code tables from %s", dir)
	}
	return d, nil
}
