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

package graph

import (
	"testing"

	"github.com/ivartb/metafast/kmer"
	"github.com/ivartb/metafast/shardmap"
)

func insertRead(t *testing.T, m *shardmap.ShardedMap, k int, read string) {
	t.Helper()
	s := []byte(read)
	for i := 0; i+k <= len(s); i++ {
		code, err := kmer.Encode(s[i : i+k])
		if err != nil {
			t.Fatalf("encode %s: %v", s[i:i+k], err)
		}
		if err := m.Insert(code, 1); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
}

// TestLinearChain is scenario 1 of the spec: a single read with no branch
// yields a simple path through all its k-mers.
func TestLinearChain(t *testing.T) {
	k := 3
	m := shardmap.New(1<<20, 4, k)
	insertRead(t, m, k, "ACGTAC")

	start, _ := kmer.Encode([]byte("ACG"))
	b, ok := UniqueRight(m, start, k, 0)
	if !ok {
		t.Fatal("expected a unique right neighbor from ACG")
	}
	next := kmer.ShiftRight(start, k, uint64(b))
	if string(kmer.Decode(next, k)) != "CGT" {
		t.Fatalf("UniqueRight(ACG) walked to %s, want CGT", kmer.Decode(next, k))
	}
}

// TestBranchBansSharedKmer is scenario 2: two reads sharing the 4-base
// prefix ACGT create a branch at CGT, which the ban pass must mark.
func TestBranchBansSharedKmer(t *testing.T) {
	k := 3
	m := shardmap.New(1<<20, 4, k)
	insertRead(t, m, k, "ACGTA")
	insertRead(t, m, k, "ACGTC")

	// Both reads share the prefix ACGT; they diverge at the 5th base, so
	// the branch point is CGT (successors GTA and GTC). CGT is the reverse
	// complement of ACG, so both name the same canonical table entry.
	cgt, _ := kmer.Encode([]byte("CGT"))
	neighbors := RightNeighbors(m, cgt, k, 0)
	if len(neighbors) != 2 {
		t.Fatalf("CGT should have 2 right neighbors (GTA, GTC), got %d", len(neighbors))
	}

	BanBranching(m, k, 0, 2)

	ck := kmer.Canonical(cgt, k)
	if !shardmap.IsBanned(m.Get(ck)) {
		t.Fatal("CGT should be banned after BanBranching")
	}

	if _, ok := UniqueRight(m, cgt, k, 0); ok {
		t.Fatal("banned neighbor should not be reachable via UniqueRight")
	}
}

func TestBanBranchingIdempotent(t *testing.T) {
	k := 3
	m := shardmap.New(1<<20, 4, k)
	insertRead(t, m, k, "ACGTA")
	insertRead(t, m, k, "ACGTC")
	insertRead(t, m, k, "GACGT")

	BanBranching(m, k, 0, 4)
	first := snapshot(m)

	BanBranching(m, k, 0, 4)
	second := snapshot(m)

	if len(first) != len(second) {
		t.Fatalf("snapshot sizes differ: %d vs %d", len(first), len(second))
	}
	for key, v1 := range first {
		if v2, ok := second[key]; !ok || v1 != v2 {
			t.Errorf("entry %d changed across repeated ban pass: %d -> %d", key, v1, v2)
		}
	}
}

func snapshot(m *shardmap.ShardedMap) map[uint64]int64 {
	out := map[uint64]int64{}
	m.Entries(func(key uint64, value int64) bool {
		out[key] = value
		return true
	})
	return out
}

func TestNoBranchNoUniqueNeighbors(t *testing.T) {
	k := 7
	m := shardmap.New(1<<20, 4, k)
	insertRead(t, m, k, linearRead)

	end, _ := kmer.Encode([]byte("TACAGTC"))
	if _, ok := UniqueRight(m, end, k, 0); ok {
		t.Fatal("end of chain should have no right neighbor")
	}
}
