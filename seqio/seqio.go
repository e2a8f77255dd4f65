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

// Package seqio wraps shenwei356/bio's FASTA/FASTQ decoder behind a small
// Iterator interface, so the pipeline package (C3) doesn't need to know
// which format or file a read sample came from.
package seqio

import (
	"io"

	"github.com/pkg/errors"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/ivartb/metafast/ferrors"
)

// Iterator yields successive reads as raw byte slices. Next returns
// io.EOF when the underlying source is exhausted.
type Iterator interface {
	Next() ([]byte, error)
	Close() error
}

// fastxIterator adapts a *fastx.Reader, which already handles FASTA,
// FASTQ and gzip/bgzip transparently by content sniffing.
type fastxIterator struct {
	r *fastx.Reader
}

// Open returns an Iterator over path, auto-detecting FASTA/FASTQ and gzip
// compression the same way unikmer/cmd/count.go's fastx.NewDefaultReader
// does. The binary quality (BINQ) format is not read.
func Open(path string) (Iterator, error) {
	r, err := fastx.NewDefaultReader(path)
	if err != nil {
		return nil, errors.Wrapf(ferrors.ErrIOFailure, "opening %s: %v", path, err)
	}
	return &fastxIterator{r: r}, nil
}

func (it *fastxIterator) Next() ([]byte, error) {
	record, err := it.r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, errors.Wrap(ferrors.ErrInvalidInput, err.Error())
	}
	return record.Seq.Seq, nil
}

func (it *fastxIterator) Close() error {
	return nil
}

// Chain concatenates several Iterators into one, exhausting each in turn.
// Used when a pipeline run is given more than one reads file.
type Chain struct {
	iters []Iterator
	i     int
}

// NewChain builds a Chain over the given iterators, in order.
func NewChain(iters ...Iterator) *Chain {
	return &Chain{iters: iters}
}

func (c *Chain) Next() ([]byte, error) {
	for c.i < len(c.iters) {
		seq, err := c.iters[c.i].Next()
		if err == io.EOF {
			c.i++
			continue
		}
		return seq, err
	}
	return nil, io.EOF
}

func (c *Chain) Close() error {
	var first error
	for _, it := range c.iters {
		if err := it.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
