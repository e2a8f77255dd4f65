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

// Package kmerfile reads and writes k-mer count files: a flat,
// header-less stream of (key uint64, count uint16) records, little-endian,
// keys canonical. This is the external wire format for C7's pre-counted
// sample representation; like component's format and unlike unikmer's
// .unik format, no magic number or version header is written, so that any external
// producer of such a file round-trips without needing this package.
package kmerfile

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/ivartb/metafast/ferrors"
)

var le = binary.LittleEndian

// Record is one (canonical k-mer, occurrence count) pair.
type Record struct {
	Key   uint64
	Count uint16
}

// recordSize is the encoded size of one Record: 8 bytes for Key, 2 for Count.
const recordSize = 8 + 2

// Reader streams Records out of a k-mer count file.
type Reader struct {
	r io.Reader
}

// NewReader returns a Reader over r, positioned at the first record.
func NewReader(r io.Reader) (*Reader, error) {
	return &Reader{r: r}, nil
}

// Read returns the next Record, or io.EOF once the stream is exhausted.
func (r *Reader) Read() (Record, error) {
	var buf [recordSize]byte
	if _, err := io.ReadFull(r.r, buf[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, errors.Wrap(ferrors.ErrIOFailure, "truncated kmer count record")
	}
	return Record{
		Key:   le.Uint64(buf[0:8]),
		Count: le.Uint16(buf[8:10]),
	}, nil
}

// Writer writes a k-mer count file as a flat stream of Records.
type Writer struct {
	w io.Writer
}

// NewWriter prepares a Writer. k is accepted but plays no role in the wire
// format, which carries no header.
func NewWriter(w io.Writer, k int) *Writer {
	return &Writer{w: w}
}

// Write appends one Record.
func (w *Writer) Write(rec Record) error {
	var buf [recordSize]byte
	le.PutUint64(buf[0:8], rec.Key)
	le.PutUint16(buf[8:10], rec.Count)
	if _, err := w.w.Write(buf[:]); err != nil {
		return errors.Wrap(ferrors.ErrIOFailure, err.Error())
	}
	return nil
}
