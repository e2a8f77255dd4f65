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

package kmer

import (
	"bytes"
	"math/rand"
	"testing"
)

var randomMers [][]byte
var randomMersN = 10000

func init() {
	randomMers = make([][]byte, randomMersN)
	for i := 0; i < randomMersN; i++ {
		randomMers[i] = make([]byte, rand.Intn(MaxK)+1)
		for j := range randomMers[i] {
			randomMers[i][j] = bit2base[rand.Intn(4)]
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, mer := range randomMers {
		code, err := New(mer)
		if err != nil {
			t.Fatalf("Encode error: %s: %v", mer, err)
		}
		if !bytes.Equal(mer, code.Bytes()) {
			t.Errorf("Decode error: %s != %s", mer, code.Bytes())
		}
	}
}

func TestEncodeRejectsNonACGT(t *testing.T) {
	cases := [][]byte{[]byte("ACGN"), []byte("ACGR"), []byte("acgx"), []byte("ACG-")}
	for _, c := range cases {
		if _, err := Encode(c); err != ErrIllegalBase {
			t.Errorf("Encode(%s): want ErrIllegalBase, got %v", c, err)
		}
	}
}

func TestEncodeKOverflow(t *testing.T) {
	if _, err := Encode(nil); err != ErrKOverflow {
		t.Errorf("Encode(empty): want ErrKOverflow, got %v", err)
	}
	long := make([]byte, MaxK+1)
	for i := range long {
		long[i] = 'A'
	}
	if _, err := Encode(long); err != ErrKOverflow {
		t.Errorf("Encode(k=%d): want ErrKOverflow, got %v", len(long), err)
	}
}

func TestRevCompInvolution(t *testing.T) {
	for _, mer := range randomMers {
		code, _ := New(mer)
		if code.RevComp().RevComp().Value != code.Value {
			t.Errorf("RevComp(RevComp(%s)) != original", mer)
		}
	}
}

func TestCanonicalIsSmaller(t *testing.T) {
	for _, mer := range randomMers {
		code, _ := New(mer)
		c := code.Canonical()
		rc := code.RevComp()
		if c.Value != code.Value && c.Value != rc.Value {
			t.Errorf("Canonical(%s) = %d is neither code nor its rev-comp", mer, c.Value)
		}
		if c.Value > code.Value || c.Value > rc.Value {
			t.Errorf("Canonical(%s) is not the smaller of the pair", mer)
		}
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	for _, mer := range randomMers {
		code, _ := New(mer)
		c1 := code.Canonical()
		c2 := c1.Canonical()
		if c1.Value != c2.Value {
			t.Errorf("Canonical not idempotent for %s", mer)
		}
	}
}

func TestShiftRightLeftRoundTrip(t *testing.T) {
	k := 5
	code, _ := Encode([]byte("ACGTA"))
	shifted := ShiftRight(code, k, 2) // append G -> CGTAG
	if string(Decode(shifted, k)) != "CGTAG" {
		t.Errorf("ShiftRight: got %s, want CGTAG", Decode(shifted, k))
	}
	back := ShiftLeft(shifted, k, NucAt(code, k, 0)) // prepend original first base
	if string(Decode(back, k)) != "ACGTA" {
		t.Errorf("ShiftLeft: got %s, want ACGTA", Decode(back, k))
	}
}

func TestNucAt(t *testing.T) {
	code, _ := Encode([]byte("ACGT"))
	want := []byte("ACGT")
	for i := 0; i < 4; i++ {
		got := bit2base[NucAt(code, 4, i)]
		if got != want[i] {
			t.Errorf("NucAt(%d) = %c, want %c", i, got, want[i])
		}
	}
}

func TestEncodeLowerUpperMix(t *testing.T) {
	upper, err1 := Encode([]byte("ACGTACGT"))
	lower, err2 := Encode([]byte("acgtacgt"))
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if upper != lower {
		t.Errorf("case should not affect encoding: %d != %d", upper, lower)
	}
}
