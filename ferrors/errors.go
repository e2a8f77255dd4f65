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

// Package ferrors defines the sentinel error kinds shared across the
// engine's packages. Call sites wrap these with github.com/pkg/errors for
// stack context; callers match on kind with errors.Is.
package ferrors

import "errors"

// ErrInvalidInput covers malformed FASTQ/BINQ/FASTA input, bad k, and
// conflicting options (e.g. both --maximal-bad-frequency and
// --bottom-cut-percent given).
var ErrInvalidInput = errors.New("metafast: invalid input")

// ErrCapacityExhausted means a shard refused to grow past its configured
// absolute maximum capacity.
var ErrCapacityExhausted = errors.New("metafast: shard capacity exhausted")

// ErrIOFailure wraps any file read/write error.
var ErrIOFailure = errors.New("metafast: I/O failure")

// ErrEmptyResult means no components were found in the components file,
// or no reads yielded a single k-mer when at least one was required.
var ErrEmptyResult = errors.New("metafast: empty result")

// ErrCancelled means a cooperative stop was requested and honored.
var ErrCancelled = errors.New("metafast: cancelled")
