// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"fmt"
	"io"

	"github.com/alicefw/alice"
	"github.com/alicefw/alice/bitpack"
	"github.com/alicefw/alice/dict"
	"github.com/dsnet/golib/unitconv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type infoFlags struct {
	input       string
	checkpoints bool
	dict        bool
	m2          bool
}

func newInfoCmd(g *globalFlags) *cobra.Command {
	f := new(infoFlags)
	cmd := &cobra.Command{
		Use:     "info",
		Short:   "Print the header and regions of an ALICE container",
		Example: `alice info -i ALICE --checkpoints --dict
alice info -i ~M2.tmp --m2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(f.input)
			if err != nil {
				return err
			}
			if f.m2 {
				m, err := dict.ParseM2(data)
				if err != nil {
					return errors.Wrapf(err, "unable to parse %s", f.input)
				}
				return writeM2Info(cmd.OutOrStdout(), m)
			}
			file, err := alice.Parse(data)
			if err != nil {
				return errors.Wrapf(err, "unable to parse %s", f.input)
			}
			return writeInfo(cmd.OutOrStdout(), file, f)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "ALICE container")
	fs.BoolVar(&f.checkpoints, "checkpoints", false, "dump the checkpoint table")
	fs.BoolVar(&f.dict, "dict", false, "dump the dictionary per class")
	fs.BoolVar(&f.m2, "m2", false, "input is a standalone ~M2.tmp dictionary")
	return cmd
}

func writeInfo(w io.Writer, f *alice.File, flags *infoFlags) error {
	h := &f.Header
	fmt.Fprintf(w, "version:     %d\n", h.Version)
	fmt.Fprintf(w, "header:      %d bytes\n", h.Size)
	fmt.Fprintf(w, "base:        0x%08x\n", h.Base)
	fmt.Fprintf(w, "mapping:     0x%08x\n", h.Mapping)
	fmt.Fprintf(w, "dictionary:  0x%08x\n", h.Dict)
	fmt.Fprintf(w, "lengths:     %v\n", h.Lengths)
	fmt.Fprintf(w, "block size:  %d bytes\n", h.BlockBytes())
	fmt.Fprintf(w, "reserved:    %02x\n", h.Reserved[:])

	fmt.Fprintf(w, "packed:      %sB\n", formatSize(len(f.Packed)))
	fmt.Fprintf(w, "checkpoints: %d\n", len(f.Checkpoints))
	fmt.Fprintf(w, "entries:     %d\n", len(f.Dictionary))
	if end, ok := bitpack.EndBit(f.Checkpoints); ok {
		fmt.Fprintf(w, "end:         bit %d\n", end)
	} else {
		fmt.Fprintf(w, "end:         unknown\n")
	}

	if flags.checkpoints {
		fmt.Fprintf(w, "\ncheckpoint table:\n")
		for i, cp := range f.Checkpoints {
			fmt.Fprintf(w, "\t%4d: addr=0x%08x offset=%d bits=%d\n",
				i, h.Addr(h.Size+int(cp.Offset)), cp.Offset, cp.Bits)
		}
	}

	if flags.dict {
		layout, err := dict.NewLayout(h.ClassLengths())
		if err != nil {
			return err
		}
		writeDict(w, layout, f.Dictionary)
	}
	return nil
}

func writeM2Info(w io.Writer, m *dict.M2File) error {
	fmt.Fprintf(w, "header:      %d bytes\n", m.HeaderLen)
	fmt.Fprintf(w, "dictionary:  %d bytes\n", m.DictLen)
	fmt.Fprintf(w, "entries:     %d\n", len(m.Values))
	fmt.Fprintf(w, "ranges:      %#x\n", m.Ranges[:])

	lens, err := m.Lengths()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "lengths:     %v\n", lens[:])
	layout, err := dict.NewLayout(lens)
	if err != nil {
		return err
	}
	writeDict(w, layout, m.Values)
	return nil
}

// writeDict dumps the dictionary entries of each class.
func writeDict(w io.Writer, layout *dict.Layout, values []uint16) {
	inv := dict.NewInverse(layout, values)
	for c := uint(0); c < dict.OverflowClass; c++ {
		seg := inv.Segment(c)
		fmt.Fprintf(w, "\nclass %d (%d of %d entries, %d bit fields):\n",
			c, len(seg), layout.Capacity(c), inv.FieldBits(c))
		for i, v := range seg {
			if i%8 == 0 {
				fmt.Fprintf(w, "\t%4d:", i)
			}
			fmt.Fprintf(w, " %04x", v)
			if i%8 == 7 || i == len(seg)-1 {
				fmt.Fprintln(w)
			}
		}
	}
}

func formatSize(n int) string {
	return unitconv.FormatPrefix(float64(n), unitconv.Base1024, 2)
}

func formatCRC(crc uint32) string { return fmt.Sprintf("0x%08x", crc) }
