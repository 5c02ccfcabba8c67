// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalFlags struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := new(globalFlags)
	cmd := &cobra.Command{
		Use:           "alice",
		Short:         "ALICE firmware codec",
		Long:          "Compress, decompress, and inspect ALICE containers of Thumb firmware images.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			g.logger, err = newLogger(g.verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				g.logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newEncodeCmd(g),
		newDecodeCmd(g),
		newInfoCmd(g),
		newGFHCmd(g),
		newBenchCmd(g),
	)
	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create logger")
	}
	return logger, nil
}

func readInput(file string) ([]byte, error) {
	if file == "" {
		return nil, errors.New("no input file given")
	}
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", file)
	}
	return b, nil
}

func writeOutput(file string, b []byte) error {
	if file == "" {
		return errors.New("no output file given")
	}
	if err := ioutil.WriteFile(file, b, 0644); err != nil {
		return errors.Wrapf(err, "unable to write %s", file)
	}
	return nil
}
