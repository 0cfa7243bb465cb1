// SPDX-License-Identifier: MIT
// Package engine - RNG utilities for the local engine.
//
// Goals:
//   - Determinism: same seed ⇒ identical variates across platforms.
//   - Encapsulation: a single RNG factory; no time-based sources hidden in the engine.
//
// Concurrency:
//   - *rand.Rand is NOT goroutine-safe. A Local engine owns exactly one stream;
//     create one engine per generation request.
package engine

import "math/rand/v2"

// defaultRNGSeed is the fixed "zero" seed used when callers pass seed==0.
const defaultRNGSeed uint64 = 1

// rngFromSeed returns a deterministic PCG-backed *rand.Rand.
// Policy: seed==0 ⇒ use defaultRNGSeed; the PCG stream word is derived via deriveSeed.
//
// Complexity: O(1).
func rngFromSeed(seed uint64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultRNGSeed
	}
	return rand.New(rand.NewPCG(s, deriveSeed(s, 1)))
}

// deriveSeed mixes a parent seed and a stream identifier into a new 64-bit seed
// with a SplitMix64 finalizer, so nearby inputs land on well-separated outputs.
//
// Complexity: O(1).
func deriveSeed(parent uint64, stream uint64) uint64 {
	var x uint64
	x = parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// DeriveSeed exposes deriveSeed for callers that need an independent stream per
// purpose from one user seed (e.g. variates vs. RANDOM correlation cells).
func DeriveSeed(parent uint64, stream uint64) uint64 { return deriveSeed(parent, stream) }
