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

// Package graph implements the De Bruijn graph primitives (neighbor
// probes, branch detection, the branching-kmer ban) and the unitig
// traversal engine built on top of them.
package graph

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ivartb/metafast/kmer"
	"github.com/ivartb/metafast/shardmap"
)

// RightNeighbors returns the set of bases b such that
// T.Get(canonical(shift_right(x, b))) > tau.
func RightNeighbors(t *shardmap.ShardedMap, code uint64, k int, tau int64) []byte {
	var out []byte
	for b := uint64(0); b < 4; b++ {
		next := kmer.ShiftRight(code, k, b)
		if t.Get(next) > tau {
			out = append(out, byte(b))
		}
	}
	return out
}

// LeftNeighbors returns the set of bases b such that
// T.Get(canonical(shift_left(x, b))) > tau.
func LeftNeighbors(t *shardmap.ShardedMap, code uint64, k int, tau int64) []byte {
	var out []byte
	for b := uint64(0); b < 4; b++ {
		prev := kmer.ShiftLeft(code, k, b)
		if t.Get(prev) > tau {
			out = append(out, byte(b))
		}
	}
	return out
}

// UniqueRight returns the unique right-neighbor base if exactly one
// exists, else ok is false (branch or dead-end).
func UniqueRight(t *shardmap.ShardedMap, code uint64, k int, tau int64) (base byte, ok bool) {
	neighbors := RightNeighbors(t, code, k, tau)
	if len(neighbors) == 1 {
		return neighbors[0], true
	}
	return 0, false
}

// UniqueLeft is the symmetric counterpart of UniqueRight.
func UniqueLeft(t *shardmap.ShardedMap, code uint64, k int, tau int64) (base byte, ok bool) {
	neighbors := LeftNeighbors(t, code, k, tau)
	if len(neighbors) == 1 {
		return neighbors[0], true
	}
	return 0, false
}

// BanBranching marks every k-mer with >= 2 right-neighbors or >= 2
// left-neighbors by overwriting its count with shardmap.BanMarker, so
// later UniqueRight/UniqueLeft probes on banned neighbors see "no
// neighbor" without any key being removed from the table. The pass is
// parallel across shards (workers claim shard indices off a shared
// counter, the same work-stealing-by-shard idiom the unitig traversal
// below uses) and idempotent: running it twice is a no-op on the second
// pass, since a banned key's Get is always < 0 and so never passes the
// ">tau" neighbor test again.
func BanBranching(t *shardmap.ShardedMap, k int, tau int64, workers int) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var nextShard int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&nextShard, 1)) - 1
				if i >= t.NumShards() {
					return
				}
				banShard(t, k, tau, i)
			}
		}()
	}
	wg.Wait()
}

func banShard(t *shardmap.ShardedMap, k int, tau int64, shardIdx int) {
	snapshot := t.SnapshotShard(shardIdx)
	var toBan []uint64
	for key, value := range snapshot {
		if shardmap.IsBanned(value) {
			continue
		}
		if len(RightNeighbors(t, key, k, tau)) >= 2 || len(LeftNeighbors(t, key, k, tau)) >= 2 {
			toBan = append(toBan, key)
		}
	}
	for _, key := range toBan {
		t.Set(key, shardmap.BanMarker)
	}
}
