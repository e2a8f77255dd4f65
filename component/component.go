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

// Package component reads and writes the binary list of connected
// components: each component is a 4-byte count followed by that many
// 8-byte canonical k-mers, concatenated, all little-endian. This is
// intentionally different from unikmer's .unik format (big-endian, with a
// magic/version header); a component file has no such preamble, just a
// stream of records, so Reader/Writer keep the teacher's
// lazily-open-stream-record-by-record-surface-io.EOF shape without its
// header machinery.
package component

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/ivartb/metafast/ferrors"
)

// Component is an unordered set of canonical k-mers forming one connected
// subgraph of the unitig graph.
type Component struct {
	Kmers []uint64
}

// Reader streams Components out of an underlying io.Reader.
type Reader struct {
	r io.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Read returns the next Component, or io.EOF once the stream is exhausted.
func (r *Reader) Read() (Component, error) {
	var count uint32
	if err := binary.Read(r.r, binary.LittleEndian, &count); err != nil {
		if err == io.EOF {
			return Component{}, io.EOF
		}
		return Component{}, errors.Wrap(ferrors.ErrIOFailure, err.Error())
	}

	kmers := make([]uint64, count)
	for i := range kmers {
		if err := binary.Read(r.r, binary.LittleEndian, &kmers[i]); err != nil {
			return Component{}, errors.Wrap(ferrors.ErrIOFailure, "truncated component record")
		}
	}
	return Component{Kmers: kmers}, nil
}

// ReadAll reads every Component until io.EOF.
func (r *Reader) ReadAll() ([]Component, error) {
	var out []Component
	for {
		c, err := r.Read()
		if err == io.EOF {
			if len(out) == 0 {
				return nil, ferrors.ErrEmptyResult
			}
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
}

// Writer streams Components to an underlying io.Writer.
type Writer struct {
	w io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write appends one Component record to the stream.
func (w *Writer) Write(c Component) error {
	count := uint32(len(c.Kmers))
	if err := binary.Write(w.w, binary.LittleEndian, count); err != nil {
		return errors.Wrap(ferrors.ErrIOFailure, err.Error())
	}
	for _, key := range c.Kmers {
		if err := binary.Write(w.w, binary.LittleEndian, key); err != nil {
			return errors.Wrap(ferrors.ErrIOFailure, err.Error())
		}
	}
	return nil
}

// WriteAll writes every Component in order.
func (w *Writer) WriteAll(cs []Component) error {
	for _, c := range cs {
		if err := w.Write(c); err != nil {
			return err
		}
	}
	return nil
}
