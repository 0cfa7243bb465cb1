// SPDX-License-Identifier: MIT
// Package: correlation
//
// Functional options for Build. Only RANDOM consumes randomness; every other
// structure ignores the RNG. Option constructors panic on programmer errors
// (nil RNG); Build itself never panics.

package correlation

import "math/rand/v2"

// defaultSeed is used when no RNG option is given, so an unseeded RANDOM build is
// still reproducible.
const defaultSeed uint64 = 1

// streamSalt separates the PCG stream word from the state word of a seeded source.
const streamSalt uint64 = 0x9e3779b97f4a7c15

type buildConfig struct {
	rng *rand.Rand
}

// Option customizes Build.
type Option func(*buildConfig)

// WithRand supplies the RNG for RANDOM cells. It panics if r is nil.
// The RNG is consumed (advanced) by Build and must not be shared across goroutines.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("correlation: WithRand(nil)")
	}
	return func(c *buildConfig) { c.rng = r }
}

// WithSeed seeds a private PCG stream for RANDOM cells.
func WithSeed(seed uint64) Option {
	return func(c *buildConfig) { c.rng = rand.New(rand.NewPCG(seed, seed^streamSalt)) }
}

func newBuildConfig(opts []Option) *buildConfig {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewPCG(defaultSeed, defaultSeed^streamSalt))
	}
	return cfg
}
