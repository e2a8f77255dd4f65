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

// Package kmer implements canonical 2-bit k-mer encoding.
//
// Codes:
//
//	  A    00
//	  C    01
//	  G    10
//	  T    11
//
// Unlike degenerate-base decoders, encode is strict: any byte outside
// A/C/G/T (either case) is rejected rather than folded to a representative
// base, since a caller that silently widened an N into an A would corrupt
// the frequency table it feeds.
package kmer

import "errors"

// MaxK is the largest supported k-mer length. One bit of headroom below
// the 64-bit code space is kept clear so the sharded table can use a
// canonical k-mer's own encoding space for a value type that also needs a
// negative ban marker, without the two ever colliding (see
// shardmap.BanMarker).
const MaxK = 31

// ErrIllegalBase means a byte outside A/C/G/T (either case) was found.
var ErrIllegalBase = errors.New("kmer: illegal base, only A/C/G/T allowed")

// ErrKOverflow means k is outside [1, MaxK].
var ErrKOverflow = errors.New("kmer: k must be in [1, 31]")

// Encode converts an ASCII DNA string of length k (1..MaxK) into its 2-bit
// packed uint64 representation. It fails on the first non-ACGT byte.
func Encode(s []byte) (code uint64, err error) {
	k := len(s)
	if k == 0 || k > MaxK {
		return 0, ErrKOverflow
	}
	for i := 0; i < k; i++ {
		code <<= 2
		switch s[i] {
		case 'A', 'a':
		case 'C', 'c':
			code |= 1
		case 'G', 'g':
			code |= 2
		case 'T', 't':
			code |= 3
		default:
			return 0, ErrIllegalBase
		}
	}
	return code, nil
}

// bit2base maps a 2-bit value to its base.
var bit2base = [4]byte{'A', 'C', 'G', 'T'}

// Decode converts a 2-bit packed k-mer back to its ASCII representation.
func Decode(code uint64, k int) []byte {
	if k <= 0 || k > MaxK {
		panic(ErrKOverflow)
	}
	out := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		out[i] = bit2base[code&3]
		code >>= 2
	}
	return out
}

// Base maps a single 2-bit value (0..3) to its ASCII base.
func Base(b uint64) byte {
	return bit2base[b&3]
}

// mask returns the low 2*k bits set, masking off anything shifted past the
// k-mer's width.
func mask(k int) uint64 {
	return (uint64(1) << uint(2*k)) - 1
}

// ReverseComplement complements every base and reverses the 2-bit pairs
// within the low 2*k bits.
func ReverseComplement(code uint64, k int) (c uint64) {
	if k <= 0 || k > MaxK {
		panic(ErrKOverflow)
	}
	for i := 0; i < k; i++ {
		c <<= 2
		c |= code&3 ^ 3
		code >>= 2
	}
	return
}

// Canonical returns the numerically smaller of code and its reverse
// complement.
func Canonical(code uint64, k int) uint64 {
	rc := ReverseComplement(code, k)
	if rc < code {
		return rc
	}
	return code
}

// ShiftRight appends base (0..3) on the right, dropping the leftmost base:
// ((x << 2) | base) & ((1 << 2k) - 1).
func ShiftRight(code uint64, k int, base uint64) uint64 {
	return ((code << 2) | (base & 3)) & mask(k)
}

// ShiftLeft prepends base (0..3) on the left, dropping the rightmost base:
// (x >> 2) | (base << (2(k-1))).
func ShiftLeft(code uint64, k int, base uint64) uint64 {
	return (code >> 2) | ((base & 3) << uint(2*(k-1)))
}

// NucAt returns the 2-bit base at position i, counted from the left (0-based).
func NucAt(code uint64, k int, i int) uint64 {
	shift := uint(2 * (k - 1 - i))
	return (code >> shift) & 3
}

// Code is a convenience wrapper pairing an encoded k-mer with its length,
// mirroring the KmerCode value type this package's design is modeled on.
type Code struct {
	Value uint64
	K     int
}

// New encodes s into a Code.
func New(s []byte) (Code, error) {
	v, err := Encode(s)
	if err != nil {
		return Code{}, err
	}
	return Code{Value: v, K: len(s)}, nil
}

// Equal reports whether two Codes represent the same k-mer.
func (c Code) Equal(o Code) bool {
	return c.K == o.K && c.Value == o.Value
}

// RevComp returns the reverse-complement Code.
func (c Code) RevComp() Code {
	return Code{Value: ReverseComplement(c.Value, c.K), K: c.K}
}

// Canonical returns the canonical-orientation Code.
func (c Code) Canonical() Code {
	return Code{Value: Canonical(c.Value, c.K), K: c.K}
}

// Bytes decodes the Code back to an ASCII k-mer.
func (c Code) Bytes() []byte {
	return Decode(c.Value, c.K)
}

// String decodes the Code to a string.
func (c Code) String() string {
	return string(c.Bytes())
}
