// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"bytes"
	"io"
	"io/ioutil"

	"github.com/alicefw/alice"
)

// The ALICE codec works on whole images, so the writer buffers everything
// until Close and the reader decodes the whole container on first use.
// The compression level is ignored.

type aliceWriter struct {
	w   io.Writer
	buf bytes.Buffer
}

func (zw *aliceWriter) Write(b []byte) (int, error) { return zw.buf.Write(b) }

func (zw *aliceWriter) Close() error {
	out, err := alice.Encode(zw.buf.Bytes(), nil)
	if err != nil {
		return err
	}
	_, err = zw.w.Write(out)
	return err
}

type aliceReader struct {
	r   io.Reader
	out *bytes.Reader
}

func (zr *aliceReader) Read(b []byte) (int, error) {
	if zr.out == nil {
		data, err := ioutil.ReadAll(zr.r)
		if err != nil {
			return 0, err
		}
		img, err := alice.Decode(data, nil)
		if err != nil {
			return 0, err
		}
		zr.out = bytes.NewReader(img)
	}
	return zr.out.Read(b)
}

func (zr *aliceReader) Close() error { return nil }

func init() {
	RegisterEncoder("alice",
		func(w io.Writer, lvl int) io.WriteCloser {
			return &aliceWriter{w: w}
		})
	RegisterDecoder("alice",
		func(r io.Reader) io.ReadCloser {
			return &aliceReader{r: r}
		})
}
