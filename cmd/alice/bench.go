// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"github.com/alicefw/alice/internal/tool/bench"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type benchFlags struct {
	inputs string
	paths  string
	codecs string
	tests  string
	levels string
	sizes  string
}

func newBenchCmd(g *globalFlags) *cobra.Command {
	f := new(benchFlags)
	cmd := &cobra.Command{
		Use:     "bench",
		Short:   "Compare ALICE against general purpose compressors",
		Example: `alice bench -i image.bin,boot.bin --codecs alice,flate,zstd --tests ratio --sizes 64Ki,1e6`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, g, f)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&f.inputs, "input", "i", "", "list of images to benchmark")
	fs.StringVar(&f.paths, "paths", "", "list of directories to search for relative inputs")
	fs.StringVar(&f.codecs, "codecs", "", "list of codecs to compare (default all)")
	fs.StringVar(&f.tests, "tests", "", "list of tests: encRate, decRate, ratio (default all)")
	fs.StringVar(&f.levels, "levels", "6", "list of compression levels")
	fs.StringVar(&f.sizes, "sizes", "", "list of input sizes (default whole file)")
	return cmd
}

func runBench(cmd *cobra.Command, g *globalFlags, f *benchFlags) error {
	files := bench.SplitList(f.inputs)
	if len(files) == 0 {
		return errors.New("no input files given")
	}
	bench.Paths = bench.SplitList(f.paths)

	codecs := bench.DefaultCodecs()
	if f.codecs != "" {
		known := make(map[string]bool)
		for _, c := range codecs {
			known[c] = true
		}
		codecs = bench.SplitList(f.codecs)
		for _, c := range codecs {
			if !known[c] {
				return errors.Errorf("unknown codec: %s", c)
			}
		}
	}
	tests := bench.DefaultTests()
	if f.tests != "" {
		var err error
		if tests, err = bench.ParseTests(f.tests); err != nil {
			return err
		}
	}
	levels, err := bench.ParseInts(f.levels)
	if err != nil {
		return errors.Wrap(err, "invalid levels")
	}
	sizes := []int{-1}
	if f.sizes != "" {
		if sizes, err = bench.ParseInts(f.sizes); err != nil {
			return errors.Wrap(err, "invalid sizes")
		}
	}

	var n int
	total := len(files) * len(levels) * len(sizes) * len(codecs)
	suite := &bench.Suite{
		Codecs: codecs,
		Files:  files,
		Levels: levels,
		Sizes:  sizes,
		Tick: func() {
			n++
			g.logger.Debug("running benchmark", zap.Int("run", n), zap.Int("total", total))
		},
	}
	w := cmd.OutOrStdout()
	for _, t := range tests {
		n = 0
		results, names := suite.Run(t)
		g.logger.Info("benchmark finished", zap.Stringer("test", t))
		title, suffix := "MB/s", ""
		if t == bench.TestCompressRatio {
			title, suffix = "ratio", "x"
		}
		bench.WriteTable(w, results, names, codecs, title, suffix)
	}
	return nil
}
