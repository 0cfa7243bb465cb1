// SPDX-License-Identifier: MIT
// Package: engine
//
// Functional options for NewLocal. Constructors panic only on programmer errors
// (nil RNG, nil logger); engine operations never panic on user input.

package engine

import (
	"log/slog"
	"math/rand/v2"

	"github.com/katalvlaran/makecases/matrix"
)

type localConfig struct {
	rng      *rand.Rand
	logger   *slog.Logger
	eigenTol float64
	maxIter  int
}

// Option customizes a Local engine.
type Option func(*localConfig)

// WithSeed seeds the engine's variate stream (seed 0 uses the fixed default seed).
func WithSeed(seed uint64) Option {
	return func(c *localConfig) { c.rng = rngFromSeed(seed) }
}

// WithRand installs r as the variate stream. It panics if r is nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("engine: WithRand(nil)")
	}
	return func(c *localConfig) { c.rng = r }
}

// WithLogger sets the logger for per-operation debug records. It panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("engine: WithLogger(nil)")
	}
	return func(c *localConfig) { c.logger = l }
}

// WithEigen overrides the Jacobi tolerance and rotation cap used by ExtractComponents.
// Non-positive values keep the defaults.
func WithEigen(tol float64, maxIter int) Option {
	return func(c *localConfig) {
		if tol > 0 {
			c.eigenTol = tol
		}
		if maxIter > 0 {
			c.maxIter = maxIter
		}
	}
}

func newLocalConfig(opts []Option) *localConfig {
	cfg := &localConfig{
		eigenTol: matrix.DefaultEigenTol,
		maxIter:  matrix.DefaultEigenMaxIter,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.rng == nil {
		cfg.rng = rngFromSeed(0)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}
