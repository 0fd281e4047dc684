// Package alias implements Vose's alias method for O(1) sampling from a
// discrete distribution with arbitrary, non-uniform weights, used by the
// random-resample truncation policy to pick which entries of an
// overgrown state survive a shrink.
package alias

import (
	"math"

	"golang.org/x/exp/rand"

	"github.com/twesterhout/walking-lanczos/qerr"
)

// noAlias marks a bucket that never donates probability mass to another
// index; sampling never needs to follow it.
const noAlias = ^uint64(0)

// Sampler draws indices in [0, n) with probability proportional to the
// weights it was built from.
type Sampler struct {
	prob  []float64
	alias []uint64
}

// New builds a Sampler over weights. weights must be non-empty and sum to
// a strictly positive value; a copy is taken, so the caller's slice is
// left untouched.
func New(weights []float64) (*Sampler, error) {
	n := len(weights)
	if n == 0 {
		return nil, qerr.New(qerr.InvalidArgument, "cannot build a Sampler over zero weights")
	}
	if !weightsFinite(weights) {
		return nil, qerr.New(qerr.InvalidArgument, "weights must be finite and non-negative")
	}
	w := make([]float64, n)
	copy(w, weights)

	sum := 0.0
	for _, x := range w {
		sum += x
	}
	if sum == 0 {
		return nil, qerr.New(qerr.NumericError, "failed to normalize: all weights are zero")
	}
	scale := float64(n) / sum
	for i := range w {
		w[i] *= scale
	}

	small := make([]uint64, 0, n)
	large := make([]uint64, 0, n)
	for i, x := range w {
		if x < 1.0 {
			small = append(small, uint64(i))
		} else {
			large = append(large, uint64(i))
		}
	}

	prob := make([]float64, n)
	al := make([]uint64, n)

	si, li := 0, 0
	for si < len(small) && li < len(large) {
		low, high := small[si], large[li]
		prob[low] = w[low]
		al[low] = high
		w[high] = (w[low] + w[high]) - 1.0
		if w[high] < 1.0 {
			small[si] = high
			li++
		} else {
			si++
		}
	}
	for ; li < len(large); li++ {
		prob[large[li]] = 1.0
		al[large[li]] = noAlias
	}
	// Only reached through floating-point rounding, never in exact
	// arithmetic.
	for ; si < len(small); si++ {
		prob[small[si]] = 1.0
		al[small[si]] = noAlias
	}

	return &Sampler{prob: prob, alias: al}, nil
}

// Len returns the number of indices the Sampler can draw.
func (s *Sampler) Len() int {
	return len(s.prob)
}

// Sample draws a single index using gen for randomness.
func (s *Sampler) Sample(gen *rand.Rand) int {
	n := len(s.prob)
	index := gen.Intn(n)
	choice := gen.Float64()
	if choice < s.prob[index] {
		return index
	}
	return int(s.alias[index])
}

// SampleN draws k indices (with replacement) using gen.
func (s *Sampler) SampleN(gen *rand.Rand, k int) []int {
	out := make([]int, k)
	for i := range out {
		out[i] = s.Sample(gen)
	}
	return out
}

// weightsFinite reports whether every weight is finite and non-negative;
// New rejects weights that fail this check.
func weightsFinite(weights []float64) bool {
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return false
		}
	}
	return true
}
