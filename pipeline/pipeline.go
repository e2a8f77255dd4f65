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

// Package pipeline streams reads from a seqio.Iterator into a
// shardmap.ShardedMap through a bounded producer/worker-pool pipeline, the
// same batching-over-a-channel shape as grailbio-bio/fusion's gene lookup
// pipeline, generalized to batches of reads.
package pipeline

import (
	"context"
	"io"
	"runtime"
	"sync"

	"github.com/pkg/errors"

	"github.com/ivartb/metafast/kmer"
	"github.com/ivartb/metafast/seqio"
	"github.com/ivartb/metafast/shardmap"
)

// defaultBatchLen is the number of reads grouped into one Batch before it
// is handed to a worker.
const defaultBatchLen = 32768

// Batch is a group of reads handed from the producer to a worker as one
// unit, amortizing channel-send overhead.
type Batch struct {
	Seqs [][]byte
}

// UpdateMode selects how a worker applies an extracted k-mer to the table.
type UpdateMode int

const (
	// InsertMode adds to (or creates) a table entry unconditionally. This
	// is what C3 uses to build the frequency table from scratch.
	InsertMode UpdateMode = iota
	// PresenceMode only increments an entry already present in the table,
	// leaving absent keys untouched. This is what C7 uses to project a
	// sample onto a fixed component table.
	PresenceMode
)

// Pipeline streams reads into Table, canonicalizing each k-mer window and
// applying it according to Mode.
type Pipeline struct {
	K        int
	Workers  int
	BatchLen int
	Table    *shardmap.ShardedMap
	Mode     UpdateMode
}

// Run drains it, feeding batches of reads to p.Workers goroutines until it
// is exhausted, ctx is cancelled, or a worker reports an error. The first
// error from any worker wins; Run then stops the producer and waits for
// in-flight workers to drain before returning it.
func (p *Pipeline) Run(ctx context.Context, it seqio.Iterator) error {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	batchLen := p.BatchLen
	if batchLen <= 0 {
		batchLen = defaultBatchLen
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batches := make(chan Batch, workers*2)
	firstErr := make(chan error, workers)
	var errOnce sync.Once
	reportErr := func(err error) {
		if err == nil {
			return
		}
		errOnce.Do(func() {
			firstErr <- err
			cancel()
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				if err := p.processBatch(batch); err != nil {
					reportErr(err)
					return
				}
			}
		}()
	}

	producerErr := p.produce(ctx, it, batchLen, batches)
	close(batches)
	wg.Wait()
	close(firstErr)

	if err := <-firstErr; err != nil {
		return err
	}
	return producerErr
}

func (p *Pipeline) produce(ctx context.Context, it seqio.Iterator, batchLen int, out chan<- Batch) error {
	current := make([][]byte, 0, batchLen)
	flush := func() bool {
		if len(current) == 0 {
			return true
		}
		select {
		case out <- Batch{Seqs: current}:
		case <-ctx.Done():
			return false
		}
		current = make([][]byte, 0, batchLen)
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		seq, err := it.Next()
		if err == io.EOF {
			if !flush() {
				return ctx.Err()
			}
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "reading sample")
		}

		current = append(current, seq)
		if len(current) >= batchLen {
			if !flush() {
				return ctx.Err()
			}
		}
	}
}

func (p *Pipeline) processBatch(b Batch) error {
	k := p.K
	for _, seq := range b.Seqs {
		if len(seq) < k {
			continue
		}
		for i := 0; i+k <= len(seq); i++ {
			code, err := kmer.Encode(seq[i : i+k])
			if err != nil {
				continue // window straddles a non-ACGT base; skip it, not fatal
			}
			switch p.Mode {
			case PresenceMode:
				p.Table.IncrementIfPresent(code, 1)
			default:
				if err := p.Table.Insert(code, 1); err != nil {
					return errors.Wrap(err, "inserting kmer")
				}
			}
		}
	}
	return nil
}
