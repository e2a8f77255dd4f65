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

// Package threshold selects the erroneous/real k-mer frequency cutoff from
// a count histogram, by one of three mutually exclusive strategies.
package threshold

import "github.com/ivartb/metafast/ferrors"

// STAT_LEN is the histogram width: h[i] counts k-mers occurring exactly i
// times, for i in [0, STAT_LEN), with the last bucket saturating counts at
// or above STAT_LEN-1. 4096 is generous headroom beyond typical sequencing
// depth.
const STAT_LEN = 4096

// Config carries the mutually exclusive threshold options a Select call
// dispatches on.
type Config struct {
	MaximalBadFrequency *int
	BottomCutPercent    *float64
}

// Absolute returns tau unchanged; the caller already decided the cutoff.
func Absolute(tau int) int {
	return tau
}

// BottomPercent walks the histogram from i=1 accumulating i*h[i] until the
// running total reaches kmersToCut = totalKmers * p / 100, returning the
// first i at which that happens.
func BottomPercent(h []int64, p float64) int {
	var totalKmers int64
	for i := 1; i < len(h); i++ {
		totalKmers += int64(i) * h[i]
	}
	kmersToCut := float64(totalKmers) * p / 100

	var accum int64
	for i := 1; i < len(h); i++ {
		accum += int64(i) * h[i]
		if float64(accum) >= kmersToCut {
			return i
		}
	}
	return len(h) - 1
}

// Auto locates the valley between the low-frequency error peak and the
// true-k-mer peak: starting at tau=1, it advances while h[tau]*tau >
// h[tau+1]*(tau+1) (a tie stops the advance), but never advances past the
// point where the cumulative count of k-mers with frequency in [1, tau]
// exceeds half the total distinct k-mer count.
func Auto(h []int64) int {
	var distinct int64
	for i := 1; i < len(h); i++ {
		distinct += h[i]
	}
	half := float64(distinct) / 2

	tau := 1
	var cum int64 = h[1]
	for tau+1 < len(h) {
		if !(h[tau]*int64(tau) > h[tau+1]*int64(tau+1)) {
			break
		}
		if float64(cum) > half {
			break
		}
		tau++
		cum += h[tau]
	}
	return tau
}

// Select dispatches to Absolute, BottomPercent, or Auto according to cfg,
// enforcing that MaximalBadFrequency and BottomCutPercent are not both
// set. Auto is used when neither is given.
func Select(cfg Config, h []int64) (int, error) {
	if cfg.MaximalBadFrequency != nil && cfg.BottomCutPercent != nil {
		return 0, ferrors.ErrInvalidInput
	}
	if cfg.MaximalBadFrequency != nil {
		return Absolute(*cfg.MaximalBadFrequency), nil
	}
	if cfg.BottomCutPercent != nil {
		return BottomPercent(h, *cfg.BottomCutPercent), nil
	}
	return Auto(h), nil
}
