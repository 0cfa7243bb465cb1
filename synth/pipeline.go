// SPDX-License-Identifier: MIT
// Package synth runs the synthesis pipeline:
//
//	Draw → Orthogonalize (optional) → Correlate (structure ≠ NONE) → Finalize
//
// Stages run strictly in order on one goroutine. Every request check happens before
// the first engine call; an engine failure aborts the remaining stages and nothing is
// registered. There are no retries.
//
// A Pipeline is safe for concurrent Run calls as long as its EngineFactory hands out a
// fresh engine per call (LocalEngines does).
package synth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/katalvlaran/makecases/correlation"
	"github.com/katalvlaran/makecases/dataset"
	"github.com/katalvlaran/makecases/engine"
	"github.com/katalvlaran/makecases/matrix"
)

// Derived stream identifiers for the effective seed.
const (
	streamVariates    uint64 = 1
	streamCorrelation uint64 = 2
)

// DisplayTitle prefixes the dataset name in the matrix display title.
const DisplayTitle = "Correlation Matrix Specified for New Random Dataset"

// EngineFactory returns the engine for one request, seeded with its effective seed.
type EngineFactory func(seed uint64, logger *slog.Logger) engine.Engine

// LocalEngines returns a factory of engine.Local values. opts are applied after the
// seed and logger, so they may override either.
func LocalEngines(opts ...engine.Option) EngineFactory {
	return func(seed uint64, logger *slog.Logger) engine.Engine {
		all := append([]engine.Option{
			engine.WithSeed(engine.DeriveSeed(seed, streamVariates)),
			engine.WithLogger(logger),
		}, opts...)
		return engine.NewLocal(all...)
	}
}

// FixedEngine returns a factory that always hands out e. The seed is ignored and e
// must tolerate the caller's concurrency.
func FixedEngine(e engine.Engine) EngineFactory {
	return func(uint64, *slog.Logger) engine.Engine { return e }
}

// DisplayFunc receives the target matrix before the Correlate multiply.
type DisplayFunc func(title string, m *matrix.Dense)

// Pipeline binds an engine factory to a registry.
type Pipeline struct {
	engines  EngineFactory
	registry dataset.Registry
	logger   *slog.Logger
	display  DisplayFunc
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger. It panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("synth: WithLogger(nil)")
	}
	return func(p *Pipeline) { p.logger = l }
}

// WithDisplay installs the sink for matrix displays requested via Request.Display.
func WithDisplay(fn DisplayFunc) Option {
	return func(p *Pipeline) { p.display = fn }
}

// WithClock replaces time.Now for seeds and creation stamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New returns a Pipeline. It panics on a nil factory or registry.
func New(engines EngineFactory, registry dataset.Registry, opts ...Option) *Pipeline {
	if engines == nil || registry == nil {
		panic("synth: New requires an engine factory and a registry")
	}
	p := &Pipeline{
		engines:  engines,
		registry: registry,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the registry datasets are finalized into.
func (p *Pipeline) Registry() dataset.Registry { return p.registry }

// Run executes req and returns the registered dataset.
func (p *Pipeline) Run(ctx context.Context, req Request) (*dataset.Dataset, error) {
	pl, err := req.plan()
	if err != nil {
		return nil, err
	}
	created := p.now().UTC()
	seed := req.Seed
	if seed == 0 {
		seed = uint64(created.UnixNano())
	}
	log := p.logger.With(slog.String("dataset", req.Dataset))

	var target *matrix.Dense
	if pl.corr.Structure != correlation.None {
		target, err = correlation.Build(pl.corr, req.NumVars,
			correlation.WithSeed(engine.DeriveSeed(seed, streamCorrelation)))
		if err != nil {
			return nil, err
		}
	}

	eng := p.engines(seed, log)

	log.DebugContext(ctx, "draw",
		slog.Int("numvars", req.NumVars),
		slog.Int("numcases", req.NumCases),
		slog.String("distribution", pl.expr.String()))
	res, err := engine.Execute(ctx, eng, engine.DrawRequest{
		Expression: pl.expr,
		NumVars:    req.NumVars,
		NumCases:   req.NumCases,
	})
	if err != nil {
		return nil, err
	}
	data := res.Data

	if req.Orthogonalize {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		log.DebugContext(ctx, "orthogonalize", slog.Int("factors", req.NumVars))
		res, err = engine.Execute(ctx, eng, engine.OrthogonalizeRequest{Data: data, Factors: req.NumVars})
		if err != nil {
			return nil, err
		}
		data = res.Data
	}

	meta := dataset.Meta{
		Distribution:   pl.expr.String(),
		Params:         pl.params,
		Orthogonalized: bool(req.Orthogonalize),
		Structure:      pl.corr.Structure.String(),
		Seed:           seed,
		Created:        created,
	}

	if target != nil {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if req.Display && p.display != nil {
			p.display(fmt.Sprintf("%s %s", DisplayTitle, req.Dataset), target)
		}
		log.DebugContext(ctx, "correlate", slog.String("structure", pl.corr.Structure.String()))
		res, err = engine.Execute(ctx, eng, engine.CorrelateRequest{Data: data, Target: target})
		if err != nil {
			return nil, err
		}
		data = res.Data
		meta.StructureParams = pl.corr.Params
		if meta.Target, err = matrix.FormatTokens(target); err != nil {
			return nil, err
		}
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := dataset.New(req.Dataset, data, meta)
	if err != nil {
		return nil, err
	}
	if err = p.registry.Put(ctx, ds, !req.NoReplace); err != nil {
		return nil, err
	}
	log.InfoContext(ctx, "dataset created",
		slog.String("id", ds.ID),
		slog.Int("numvars", ds.NumVars()),
		slog.Int("numcases", ds.NumCases()),
		slog.String("distribution", meta.Distribution),
		slog.String("structure", meta.Structure),
		slog.Uint64("seed", seed))
	return ds, nil
}

// MatrixRequest describes a correlation matrix without generating data.
type MatrixRequest struct {
	NumVars   int                   `json:"numvars" yaml:"numvars"`
	Structure correlation.Structure `json:"structure" yaml:"structure"`
	Corrs     []float64             `json:"corrs" yaml:"corrs"`
	Seed      uint64                `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Matrix builds the target matrix of req. With check set, the engine also factorizes
// it, so a non positive-definite matrix fails with makecases.ErrDelegateExecution.
// RANDOM matrices draw from the same derived stream Run uses, so equal seeds agree.
func (p *Pipeline) Matrix(ctx context.Context, req MatrixRequest, check bool) (*matrix.Dense, error) {
	structure, err := correlation.ParseStructure(string(req.Structure))
	if err != nil {
		return nil, err
	}
	if err = checkVars(req.NumVars); err != nil {
		return nil, err
	}
	seed := req.Seed
	if seed == 0 {
		seed = uint64(p.now().UnixNano())
	}
	m, err := correlation.Build(correlation.Spec{Structure: structure, Params: req.Corrs}, req.NumVars,
		correlation.WithSeed(engine.DeriveSeed(seed, streamCorrelation)))
	if err != nil {
		return nil, err
	}
	if check {
		if _, err = p.engines(seed, p.logger).Factorize(ctx, m); err != nil {
			return nil, err
		}
	}
	return m, nil
}
