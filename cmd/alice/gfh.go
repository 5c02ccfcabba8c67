// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package main

import (
	"fmt"

	"github.com/alicefw/alice/gfh"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newGFHCmd(g *globalFlags) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "gfh",
		Short: "Print the GFH FILE_INFO header of a firmware file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(input)
			if err != nil {
				return err
			}
			fi, err := gfh.Parse(data)
			if err != nil {
				return errors.Wrapf(err, "unable to parse %s", input)
			}
			content, err := fi.Content(data)
			if err != nil {
				return errors.Wrapf(err, "unable to locate content of %s", input)
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, fi.String())
			fmt.Fprintf(w, "content: %sB\n", formatSize(len(content)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "firmware file")
	return cmd
}
