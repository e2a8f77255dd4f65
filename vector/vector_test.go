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

package vector

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/ivartb/metafast/component"
	"github.com/ivartb/metafast/kmer"
	"github.com/ivartb/metafast/kmerfile"
	"github.com/ivartb/metafast/shardmap"
)

type sliceIterator struct {
	seqs [][]byte
	i    int
}

func (s *sliceIterator) Next() ([]byte, error) {
	if s.i >= len(s.seqs) {
		return nil, io.EOF
	}
	v := s.seqs[s.i]
	s.i++
	return v, nil
}

func (s *sliceIterator) Close() error { return nil }

func encodeAll(t *testing.T, k int, mers ...string) []uint64 {
	t.Helper()
	out := make([]uint64, len(mers))
	for i, m := range mers {
		code, err := kmer.Encode([]byte(m))
		if err != nil {
			t.Fatalf("encode %s: %v", m, err)
		}
		out[i] = code
	}
	return out
}

// TestFeatureVectorScenario is spec scenario 5: two components {ACG, CGT}
// and {GTA, TAC}, read ACGTAC inserted twice, tau=0. ACG/CGT and GTA/TAC
// are reverse-complement pairs, so each pair shares one table entry with
// count 4 and each component lists it twice: raw v=[8,8], normalized by
// N=16 (the raw vector's own L1 mass) -> v=[0.5,0.5].
func TestFeatureVectorScenario(t *testing.T) {
	k := 3
	m := shardmap.New(1<<20, 4, k)

	components := []component.Component{
		{Kmers: encodeAll(t, k, "ACG", "CGT")},
		{Kmers: encodeAll(t, k, "GTA", "TAC")},
	}

	b := &Builder{Table: m, Components: components, K: k, Tau: 0, Workers: 2}
	b.Seed()

	it := &sliceIterator{seqs: [][]byte{[]byte("ACGTAC"), []byte("ACGTAC")}}
	got, err := b.FromReads(context.Background(), it)
	if err != nil {
		t.Fatalf("FromReads: %v", err)
	}

	if got[0] != 0.5 || got[1] != 0.5 {
		t.Fatalf("vector = %v, want [0.5 0.5]", got)
	}
}

func TestBuilderSeedResetsBetweenSamples(t *testing.T) {
	k := 3
	m := shardmap.New(1<<20, 4, k)
	components := []component.Component{{Kmers: encodeAll(t, k, "ACG")}}

	b := &Builder{Table: m, Components: components, K: k, Tau: 0, Workers: 1}
	b.Seed()

	it1 := &sliceIterator{seqs: [][]byte{[]byte("ACGT")}}
	v1, err := b.FromReads(context.Background(), it1)
	if err != nil {
		t.Fatalf("FromReads: %v", err)
	}
	if v1[0] != 1 {
		t.Fatalf("v1 = %v, want [1]", v1)
	}

	b.Seed()
	it2 := &sliceIterator{seqs: [][]byte{}}
	v2, err := b.FromReads(context.Background(), it2)
	if err != nil {
		t.Fatalf("FromReads: %v", err)
	}
	if v2[0] != 0 {
		t.Fatalf("v2 = %v, want [0] after reseeding", v2)
	}
}

func TestFromKmerCountsNormalizesByTotal(t *testing.T) {
	k := 3
	m := shardmap.New(1<<20, 4, k)
	keys := encodeAll(t, k, "ACG")
	components := []component.Component{{Kmers: keys}}

	b := &Builder{Table: m, Components: components, K: k, Tau: 0, Workers: 1}
	b.Seed()

	var buf bytes.Buffer
	w := kmerfile.NewWriter(&buf, k)
	if err := w.Write(kmerfile.Record{Key: keys[0], Count: 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Write(kmerfile.Record{Key: keys[0] ^ 0xFF, Count: 95}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r, err := kmerfile.NewReader(&buf)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	got, err := b.FromKmerCounts(r)
	if err != nil {
		t.Fatalf("FromKmerCounts: %v", err)
	}
	// total = 100, component sum = 5 -> v = 0.05
	if got[0] != 0.05 {
		t.Fatalf("v = %v, want [0.05]", got)
	}
}

func TestTauFiltersLowCounts(t *testing.T) {
	k := 3
	m := shardmap.New(1<<20, 4, k)
	components := []component.Component{{Kmers: encodeAll(t, k, "ACG")}}

	b := &Builder{Table: m, Components: components, K: k, Tau: 1, Workers: 1}
	b.Seed()

	it := &sliceIterator{seqs: [][]byte{[]byte("ACG")}}
	got, err := b.FromReads(context.Background(), it)
	if err != nil {
		t.Fatalf("FromReads: %v", err)
	}
	if got[0] != 0 {
		t.Fatalf("v = %v, want [0] (count 1 does not exceed tau=1)", got)
	}
}

func TestFormatFeatureStripsTrailingZeros(t *testing.T) {
	cases := map[float64]string{
		0.5:     "0.5",
		0:       "0",
		0.123:   "0.123",
		1.0:     "1",
		0.05:    "0.05",
		0.33333: "0.33333",
	}
	for in, want := range cases {
		if got := FormatFeature(in); got != want {
			t.Errorf("FormatFeature(%v) = %q, want %q", in, got, want)
		}
	}
}
