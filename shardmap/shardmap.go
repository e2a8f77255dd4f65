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

// Package shardmap implements the sharded, concurrent k-mer frequency
// table: an ordered sequence of S independent sub-tables, each guarded by
// its own mutex, selected by a farmhash-based avalanche function. Threads
// routing to different shards never contend.
package shardmap

import (
	"runtime"
	"sync"

	farm "github.com/dgryski/go-farm"

	"github.com/ivartb/metafast/ferrors"
	"github.com/ivartb/metafast/kmer"
)

// BanMarker is the reserved negative sentinel written over a k-mer's count
// by the branching-kmer ban pass. It is strictly less than zero and can
// never collide with a legitimate (always non-negative) count.
const BanMarker int64 = -1 << 31

// IsBanned reports whether a value read from the table is the ban marker.
func IsBanned(value int64) bool {
	return value < 0
}

// bytesPerEntry is a rough estimate of the per-key overhead of a Go
// map[uint64]int64 bucket (key, value, and hash/tophash bookkeeping),
// used only to translate a memory budget into an initial shard capacity.
const bytesPerEntry = 40

// minShardCapacity is the smallest initial capacity a shard is given,
// regardless of how small the memory budget is.
const minShardCapacity = 4

// maxGrowthFactor bounds how many times a shard's initial capacity it may
// grow to before Insert refuses with ErrCapacityExhausted.
const maxGrowthFactor = 1 << 16

type shard struct {
	mu      sync.Mutex
	m       map[uint64]int64
	maxSize uint64
}

// ShardedMap is a concurrent key(uint64)->count(int64) map partitioned by
// hash into independent shards. All public methods canonicalize the
// supplied key before routing, so callers never need to canonicalize
// themselves.
type ShardedMap struct {
	k      int
	shards []*shard
}

// nextPow2 returns the smallest power of two >= n (at least 1).
func nextPow2(n int) int {
	if n < 1 {
		n = 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// New creates a ShardedMap for k-mers of length k, sized from a memory
// budget in bytes. If shards <= 0, the shard count defaults to the next
// power of two >= runtime.NumCPU()*4.
func New(memoryBudget uint64, shards int, k int) *ShardedMap {
	if shards <= 0 {
		shards = nextPow2(runtime.NumCPU() * 4)
	} else {
		shards = nextPow2(shards)
	}

	totalCapacity := memoryBudget / bytesPerEntry
	perShard := totalCapacity / uint64(shards)
	if perShard < minShardCapacity {
		perShard = minShardCapacity
	}

	// Occupancy starts below 0.5: allocate the Go map with half the
	// planned capacity so the builtin map's own growth heuristics don't
	// immediately kick in on first use.
	initCap := perShard / 2
	if initCap < 2 {
		initCap = 2
	}

	maxSize := perShard * maxGrowthFactor

	sm := &ShardedMap{k: k, shards: make([]*shard, shards)}
	for i := range sm.shards {
		sm.shards[i] = &shard{
			m:       make(map[uint64]int64, initCap),
			maxSize: maxSize,
		}
	}
	return sm
}

// mix is the bit-avalanche function used to route a canonical k-mer to a
// shard; the same function is used at insertion and lookup.
func mix(x uint64) uint64 {
	return farm.Hash64WithSeed(nil, x)
}

func (m *ShardedMap) shardFor(canonicalKey uint64) *shard {
	idx := mix(canonicalKey) & uint64(len(m.shards)-1)
	return m.shards[idx]
}

// K returns the k-mer length this table was constructed for.
func (m *ShardedMap) K() int {
	return m.k
}

// NumShards returns the number of shards.
func (m *ShardedMap) NumShards() int {
	return len(m.shards)
}

// Insert atomically adds delta to the entry for canonical(key), inserting
// with value delta if absent.
func (m *ShardedMap) Insert(key uint64, delta int64) error {
	ck := kmer.Canonical(key, m.k)
	sh := m.shardFor(ck)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	if cur, ok := sh.m[ck]; ok {
		sh.m[ck] = cur + delta
		return nil
	}
	if uint64(len(sh.m)) >= sh.maxSize {
		return ferrors.ErrCapacityExhausted
	}
	sh.m[ck] = delta
	return nil
}

// Get returns 0 for missing keys.
func (m *ShardedMap) Get(key uint64) int64 {
	ck := kmer.Canonical(key, m.k)
	sh := m.shardFor(ck)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.m[ck]
}

// HasKey reports whether canonical(key) has an entry, independent of its
// value (a value of 0 is not otherwise distinguishable from "absent").
func (m *ShardedMap) HasKey(key uint64) bool {
	ck := kmer.Canonical(key, m.k)
	sh := m.shardFor(ck)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.m[ck]
	return ok
}

// IncrementIfPresent adds delta to the entry for canonical(key) only if it
// already exists, leaving absent keys untouched. It reports whether the
// entry existed. Used by C7's presence-and-count projection, where a
// sample must only update k-mers already seeded from a component list.
func (m *ShardedMap) IncrementIfPresent(key uint64, delta int64) bool {
	ck := kmer.Canonical(key, m.k)
	sh := m.shardFor(ck)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	cur, ok := sh.m[ck]
	if !ok {
		return false
	}
	sh.m[ck] = cur + delta
	return true
}

// Set overwrites the entry for canonical(key), present or not.
func (m *ShardedMap) Set(key uint64, value int64) {
	ck := kmer.Canonical(key, m.k)
	sh := m.shardFor(ck)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.m[ck] = value
}

// ResetValues sets every entry's value to zero without touching keys. It
// must only be called while no other operation (Insert/Get/Set/Entries)
// is in flight.
func (m *ShardedMap) ResetValues() {
	for _, sh := range m.shards {
		sh.mu.Lock()
		for k := range sh.m {
			sh.m[k] = 0
		}
		sh.mu.Unlock()
	}
}

// Size returns the total number of keys across all shards.
func (m *ShardedMap) Size() uint64 {
	var n uint64
	for _, sh := range m.shards {
		sh.mu.Lock()
		n += uint64(len(sh.m))
		sh.mu.Unlock()
	}
	return n
}

// EachInShard calls yield for every (key, value) pair in shard i, holding
// that shard's lock for the duration of the scan. yield returning false
// stops the scan early. yield must not call back into this ShardedMap
// (Get/Set/Insert on any shard): the lock held for the scan is not
// reentrant, and a callback that probes neighbors living in the same
// shard would deadlock.
func (m *ShardedMap) EachInShard(i int, yield func(key uint64, value int64) bool) {
	sh := m.shards[i]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	for k, v := range sh.m {
		if !yield(k, v) {
			return
		}
	}
}

// SnapshotShard copies shard i's (key, value) pairs into a fresh map,
// holding the shard's lock only for the duration of the copy. This is
// what C4's ban pass and C5's unitig traversal use to partition scan work
// by shard across workers, since both need to call back into the table
// (neighbor probes that may land in the very shard being scanned) while
// visiting each key — something EachInShard's held lock forbids.
func (m *ShardedMap) SnapshotShard(i int) map[uint64]int64 {
	sh := m.shards[i]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	out := make(map[uint64]int64, len(sh.m))
	for k, v := range sh.m {
		out[k] = v
	}
	return out
}

// Entries iterates over every (key, value) pair across all shards. It is
// stable only when no concurrent mutation is in flight.
func (m *ShardedMap) Entries(yield func(key uint64, value int64) bool) {
	for i := range m.shards {
		stop := false
		m.EachInShard(i, func(key uint64, value int64) bool {
			if !yield(key, value) {
				stop = true
				return false
			}
			return true
		})
		if stop {
			return
		}
	}
}
