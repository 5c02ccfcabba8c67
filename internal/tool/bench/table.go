// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// WriteTable prints benchmark results as an aligned table, one row per
// input and a value and delta column per codec.
func WriteTable(w io.Writer, results [][]Result, names, codecs []string, title, suffix string) {
	// Allocate result table.
	cells := make([][]string, 1+len(names))
	for i := range cells {
		cells[i] = make([]string, 1+2*len(codecs))
	}

	// Label the first row.
	cells[0][0] = "benchmark"
	for i, c := range codecs {
		cells[0][1+2*i] = c + " " + title
		cells[0][2+2*i] = "delta"
	}

	// Insert all rows.
	for j, row := range results {
		cells[1+j][0] = names[j]
		for i, r := range row {
			if r.R != 0 && !math.IsNaN(r.R) && !math.IsInf(r.R, 0) {
				cells[1+j][1+2*i] = fmt.Sprintf("%.2f", r.R) + suffix
			}
			if r.D != 0 && !math.IsNaN(r.D) && !math.IsInf(r.D, 0) {
				cells[1+j][2+2*i] = fmt.Sprintf("%.2f", r.D) + "x"
			}
		}
	}

	// Compute the maximum lengths.
	maxLens := make([]int, 1+2*len(codecs))
	for _, row := range cells {
		for i, s := range row {
			if maxLens[i] < len(s) {
				maxLens[i] = len(s)
			}
		}
	}

	// Print padded versions of all cells.
	for _, row := range cells {
		var sb strings.Builder
		sb.WriteString("\t")
		for i, s := range row {
			switch {
			case i == 0: // Column 0
				sb.WriteString(s + strings.Repeat(" ", maxLens[i]-len(s)))
			case i%2 == 1: // Column 1, 3, 5, 7, ...
				sb.WriteString(strings.Repeat(" ", 6+maxLens[i]-len(s)) + s)
			case i%2 == 0: // Column 2, 4, 6, 8, ...
				sb.WriteString(strings.Repeat(" ", 2+maxLens[i]-len(s)) + s)
			}
		}
		fmt.Fprintln(w, sb.String())
	}
}
