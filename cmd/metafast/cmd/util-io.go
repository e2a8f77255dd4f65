// Copyright © 2024 The metafast Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	humanize "github.com/dustin/go-humanize"
	gzip "github.com/klauspost/pgzip"
	"github.com/shenwei356/xopen"
)

// ensureDir makes sure the directory containing file exists, so outStream
// can create the file itself.
func ensureDir(file string) {
	dir := filepath.Dir(file)
	if dir == "" || dir == "." {
		return
	}
	checkError(os.MkdirAll(dir, 0755))
}

// inStream opens file for reading, transparently decompressing gzip
// whether or not the name carries a .gz suffix (xopen sniffs the magic
// bytes), following unikmer/cmd/util.go's inStream.
func inStream(file string) (io.ReadCloser, error) {
	return xopen.Ropen(file)
}

// outStream opens file for writing, gzip-compressing on the fly with a
// parallel writer when the name ends in .gz.
func outStream(file string) (io.WriteCloser, error) {
	if !gzipSuffix(file) {
		return xopen.Wopen(file)
	}

	w, err := xopen.Wopen(file)
	if err != nil {
		return nil, err
	}
	return &gzipWriteCloser{gw: gzip.NewWriter(w), under: w}, nil
}

func gzipSuffix(file string) bool {
	return filepath.Ext(file) == ".gz"
}

type gzipWriteCloser struct {
	gw    *gzip.Writer
	under io.WriteCloser
}

func (g *gzipWriteCloser) Write(p []byte) (int, error) { return g.gw.Write(p) }

func (g *gzipWriteCloser) Close() error {
	if err := g.gw.Close(); err != nil {
		g.under.Close()
		return err
	}
	return g.under.Close()
}

// bufferedWriter wraps w with a page-sized bufio.Writer, flushed by the
// caller before closing the underlying stream.
func bufferedWriter(w io.Writer) *bufio.Writer {
	return bufio.NewWriterSize(w, os.Getpagesize())
}

// humanizeParseBytes parses human-friendly byte sizes such as "4G" or
// "512MB", following unikmer/cmd/stats.go's use of go-humanize for the
// reverse (formatting) direction.
func humanizeParseBytes(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return humanize.ParseBytes(s)
}
