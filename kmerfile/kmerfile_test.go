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

package kmerfile

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	want := []Record{{Key: 1, Count: 10}, {Key: 2, Count: 20}, {Key: 0xFFFFFFFFFFFFFFFF, Count: 1}}

	var buf bytes.Buffer
	w := NewWriter(&buf, 21)
	for _, rec := range want {
		if err := w.Write(rec); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	var got []Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, rec)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestEmptyFileReadsAsEOF(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Read(); err != io.EOF {
		t.Fatalf("Read on empty file = %v, want io.EOF", err)
	}
}

func TestTruncatedRecordIsAnError(t *testing.T) {
	buf := bytes.NewBuffer([]byte{1, 2, 3, 4, 5})
	r, err := NewReader(buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if _, err := r.Read(); err == nil || err == io.EOF {
		t.Fatalf("Read on truncated record = %v, want a non-EOF error", err)
	}
}

// TestWireLayoutIsHeaderlessLittleEndian confirms the on-wire bytes are
// exactly a flat little-endian (key, count) pair with no magic or header,
// per spec.md §6.
func TestWireLayoutIsHeaderlessLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 21)
	if err := w.Write(Record{Key: 0x0102030405060708, Count: 0xABCD}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if buf.Len() != 10 {
		t.Fatalf("encoded length = %d, want 10", buf.Len())
	}

	wantKey := uint64(0x0102030405060708)
	gotKey := binary.LittleEndian.Uint64(buf.Bytes()[0:8])
	if gotKey != wantKey {
		t.Fatalf("key bytes decode to %x, want %x", gotKey, wantKey)
	}
	gotCount := binary.LittleEndian.Uint16(buf.Bytes()[8:10])
	if gotCount != 0xABCD {
		t.Fatalf("count bytes decode to %x, want ABCD", gotCount)
	}
}
