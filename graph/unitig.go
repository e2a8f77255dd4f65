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
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ivartb/metafast/kmer"
	"github.com/ivartb/metafast/shardmap"
)

// Unitig is one maximal non-branching path emitted by a Traverser.
type Unitig struct {
	Seq           []byte
	Sum, Min, Max int64
	Weight        float64 // Sum / (len(Seq) - k + 1), the mean k-mer count.
}

// Length returns the length of the unitig's DNA sequence.
func (u Unitig) Length() int {
	return len(u.Seq)
}

// Traverser produces each maximal non-branching path of a
// frequency-filtered k-mer table exactly once across the
// forward/reverse-complement symmetry. The table must already have had
// BanBranching applied; Traverser only reads the table.
type Traverser struct {
	Table   *shardmap.ShardedMap
	K       int
	Tau     int64
	MinLen  int
	Workers int
}

// usedSet serializes the palindrome/self-loop dedup check described in
// the traversal's canonicalization rule: check-then-insert must be
// atomic, which a sync.Map alone cannot guarantee.
type usedSet struct {
	mu sync.Mutex
	m  map[uint64]struct{}
}

// claim returns true the first time key is claimed.
func (u *usedSet) claim(key uint64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.m[key]; ok {
		return false
	}
	u.m[key] = struct{}{}
	return true
}

// Run starts the parallel traversal: the table is partitioned by shard
// across Workers goroutines, each scanning its shards for left ends and
// emitting to a shared bounded output channel. The returned error channel
// carries at most one value (nil-or-closed on success).
func (tr *Traverser) Run(ctx context.Context) (<-chan Unitig, <-chan error) {
	workers := tr.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make(chan Unitig, workers*2)
	errCh := make(chan error, 1)
	used := &usedSet{m: map[uint64]struct{}{}}

	var nextShard int64
	var wg sync.WaitGroup
	var errOnce sync.Once
	reportErr := func(err error) {
		if err == nil {
			return
		}
		errOnce.Do(func() { errCh <- err })
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&nextShard, 1)) - 1
				if i >= tr.Table.NumShards() {
					return
				}
				if err := tr.scanShard(ctx, i, used, out); err != nil {
					reportErr(err)
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
		close(errCh)
	}()

	return out, errCh
}

func (tr *Traverser) scanShard(ctx context.Context, shardIdx int, used *usedSet, out chan<- Unitig) error {
	snapshot := tr.Table.SnapshotShard(shardIdx)
	for key, value := range snapshot {
		if shardmap.IsBanned(value) {
			continue
		}
		orientations := [2]uint64{key, kmer.ReverseComplement(key, tr.K)}
		for _, orient := range orientations {
			if !tr.isLeftEnd(orient) {
				continue
			}
			unitig, emit := tr.extend(orient, used)
			if !emit || unitig.Length() < tr.MinLen {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- unitig:
			}
		}
	}
	return nil
}

// isLeftEnd reports whether x is a left end: a unique right neighbor
// exists and a unique left neighbor does not.
func (tr *Traverser) isLeftEnd(x uint64) bool {
	_, hasRight := UniqueRight(tr.Table, x, tr.K, tr.Tau)
	_, hasLeft := UniqueLeft(tr.Table, x, tr.K, tr.Tau)
	return hasRight && !hasLeft
}

// extend walks from start (a left end) until no unique right neighbor
// exists or the candidate extension lacks a unique left neighbor of its
// own (protecting against entering a junction from the right), then
// applies the canonicalization/dedup rule.
func (tr *Traverser) extend(start uint64, used *usedSet) (Unitig, bool) {
	k := tr.K
	current := start
	startCount := tr.Table.Get(start)

	seq := append([]byte(nil), kmer.Decode(start, k)...)
	sum, min, max := startCount, startCount, startCount

	for {
		b, ok := UniqueRight(tr.Table, current, k, tr.Tau)
		if !ok {
			break
		}
		next := kmer.ShiftRight(current, k, uint64(b))
		if _, ok2 := UniqueLeft(tr.Table, next, k, tr.Tau); !ok2 {
			break
		}

		seq = append(seq, kmer.Base(uint64(b)))
		current = next

		cnt := tr.Table.Get(next)
		sum += cnt
		if cnt < min {
			min = cnt
		}
		if cnt > max {
			max = cnt
		}
	}

	u := kmer.Canonical(start, k)
	v := kmer.Canonical(current, k)

	switch {
	case u > v:
		return Unitig{}, false
	case u == v:
		if !used.claim(u) {
			return Unitig{}, false
		}
	}

	windows := len(seq) - k + 1
	weight := float64(sum) / float64(windows)

	return Unitig{Seq: seq, Sum: sum, Min: min, Max: max, Weight: weight}, true
}
