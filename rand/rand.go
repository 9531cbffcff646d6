// rand/rand.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package rand provides a small, seedable random number source used
// throughout the simulation engine. A session's Rand is seeded once at
// session creation so that, given the same seed and the same sequence of
// commands, a session reproduces identically tick for tick.
package rand

import (
	"iter"
	gomath "math"
	"slices"

	"github.com/MichaelTJones/pcg"
)

// Rand wraps a PCG32 generator. It is not safe for concurrent use; each
// simulation session owns a single Rand, consistent with the engine's
// single-threaded-per-session concurrency model.
type Rand struct {
	pcg *pcg.PCG32
}

// New returns a Rand seeded from a fixed, well-known state so that tests
// that don't care about a particular seed still get determinism.
func New() *Rand {
	r := &Rand{pcg: pcg.NewPCG32()}
	return r
}

// Seed reseeds the generator. The same seed always produces the same
// subsequent sequence of draws.
func (r *Rand) Seed(seed int64) {
	r.pcg.Seed(uint64(seed), uint64(seed)>>1|1)
}

// Intn returns a pseudo-random number in [0,n).
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.pcg.Bounded(uint32(n)))
}

// Int31n returns a pseudo-random int32 in [0,n).
func (r *Rand) Int31n(n int32) int32 {
	return int32(r.Intn(int(n)))
}

// Float32 returns a pseudo-random value in [0,1).
func (r *Rand) Float32() float32 {
	return float32(r.pcg.Random()>>8) / (1 << 24)
}

// Uniform returns a pseudo-random value in [lo,hi).
func (r *Rand) Uniform(lo, hi float32) float32 {
	return lo + r.Float32()*(hi-lo)
}

// Bool returns true with probability p.
func (r *Rand) Bool(p float32) bool {
	return r.Float32() < p
}

// Exponential draws from an exponential distribution with the given rate
// (events per unit time), used by the scenario generator to space out
// spawn arrivals.
func (r *Rand) Exponential(rate float32) float32 {
	// Inverse transform sampling: -ln(1-U)/rate. Float32() never returns
	// exactly 1, so 1-u is never zero.
	u := r.Float32()
	return -logf(1-u) / rate
}

func logf(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return float32(gomath.Log(float64(x)))
}

// Uint32 returns a raw pseudo-random 32-bit value.
func (r *Rand) Uint32() uint32 {
	return r.pcg.Random()
}

// PermutationElement returns the ith element of a random permutation of
// the set of integers [0,n), using Andrew Kensler's hashed-permutation
// trick so that elements can be drawn one at a time without allocating
// the full permutation.
func PermutationElement(i int, n int, p uint32) int {
	ui, l := uint32(i), uint32(n)
	w := l - 1
	w |= w >> 1
	w |= w >> 2
	w |= w >> 4
	w |= w >> 8
	w |= w >> 16
	for {
		ui ^= p
		ui *= 0xe170893d
		ui ^= p >> 16
		ui ^= (ui & w) >> 4
		ui ^= p >> 8
		ui *= 0x0929eb3f
		ui ^= p >> 23
		ui ^= (ui & w) >> 1
		ui *= 1 | p>>27
		ui *= 0x6935fa69
		ui ^= (ui & w) >> 11
		ui *= 0x74dcb303
		ui ^= (ui & w) >> 2
		ui *= 0x9e501cc3
		ui ^= (ui & w) >> 2
		ui *= 0xc860a3df
		ui &= w
		ui ^= ui >> 5
		if ui < l {
			break
		}
	}
	return int((ui + p) % l)
}

// SampleSlice uniformly samples an element of a non-empty slice.
func (r *Rand) SampleSlice(s []int) int { return s[r.Intn(len(s))] }

// PermuteSlice iterates a slice in a random order without mutating it or
// allocating an index slice, using PermutationElement per position.
func PermuteSlice[Slice ~[]E, E any](s Slice, seed uint32) iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i := range len(s) {
			ip := PermutationElement(i, len(s), seed)
			if !yield(ip, s[ip]) {
				break
			}
		}
	}
}

// SampleWeighted randomly samples an element from slice with probability
// proportional to weight(element), via weighted reservoir sampling.
func (r *Rand) SampleWeighted(s []int, weight func(int) int) (int, bool) {
	return r.sampleWeightedSeq(slices.Values(s), weight)
}

func (r *Rand) sampleWeightedSeq(it iter.Seq[int], weight func(int) int) (sample int, ok bool) {
	sumWt := 0
	for v := range it {
		w := weight(v)
		if w == 0 {
			continue
		}
		sumWt += w
		p := float32(w) / float32(sumWt)
		if r.Float32() < p {
			sample = v
			ok = true
		}
	}
	return
}
