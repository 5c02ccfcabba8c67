// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Command alice compresses, decompresses, and inspects ALICE firmware
// containers.
//
// Example usage:
//	$ alice encode -i image.bin -o ALICE
//	$ alice decode -i ALICE -o image.bin
//	$ alice info -i ALICE --checkpoints --dict
//	$ alice bench -i image.bin --codecs alice,flate,xz --tests ratio
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
