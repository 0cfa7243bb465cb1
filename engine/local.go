package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/katalvlaran/makecases/distribution"
	"github.com/katalvlaran/makecases/matrix"
)

// ctxCheckEvery is how many variates Sample draws between context checks.
const ctxCheckEvery = 4096

// singularEps is the smallest eigenvalue a retained component may have.
const singularEps = 1e-10

// Local is the in-process Engine. It owns one RNG stream and is not safe for
// concurrent use; create one per request.
type Local struct {
	cfg *localConfig
}

// NewLocal returns a Local engine configured by opts.
func NewLocal(opts ...Option) *Local {
	return &Local{cfg: newLocalConfig(opts)}
}

var _ Engine = (*Local)(nil)

// Sample draws n variates from expr using the engine's stream.
// Parameter arity and domain violations fail with ErrParameterRange.
func (l *Local) Sample(ctx context.Context, expr distribution.Expression, n int) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, execErr(OpSample, err)
	}
	if n < 0 {
		return nil, execErr(OpSample, fmt.Errorf("%w: negative sample size %d", ErrBadRequest, n))
	}
	draw, err := newSampler(expr, l.cfg.rng)
	if err != nil {
		return nil, execErr(OpSample, err)
	}

	out := make([]float64, n)
	var i int
	for i = 0; i < n; i++ {
		if i%ctxCheckEvery == 0 && i > 0 {
			if err = ctx.Err(); err != nil {
				return nil, execErr(OpSample, err)
			}
		}
		out[i] = draw()
	}
	l.cfg.logger.DebugContext(ctx, "sampled variates",
		slog.String("expression", expr.String()),
		slog.Int("n", n))
	return out, nil
}

// Factorize returns the upper Cholesky factor U of m, UᵀU = m.
func (l *Local) Factorize(ctx context.Context, m *matrix.Dense) (*matrix.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, execErr(OpFactorize, err)
	}
	u, err := matrix.Cholesky(m)
	if err != nil {
		return nil, execErr(OpFactorize, err)
	}
	l.cfg.logger.DebugContext(ctx, "factorized target", slog.Int("order", u.Rows()))
	return u, nil
}

// ExtractComponents returns principal-component regression scores of data.
//
// Steps:
//  1. Z = column z-scores of data; R = correlation of data.
//  2. Eigen-decompose R, sort descending and keep the first k eigenpairs.
//  3. Orient each eigenvector so its entries sum to a non-negative value.
//  4. Scores = Z·Q·Λ^(-1/2), which have zero mean and identity sample covariance.
//
// Errors: k outside 1..cols, fewer than two rows, a retained eigenvalue ≤ 1e-10
// (matrix.ErrSingular), or Jacobi non-convergence.
func (l *Local) ExtractComponents(ctx context.Context, data *matrix.Dense, k int) (*matrix.Dense, error) {
	if err := ctx.Err(); err != nil {
		return nil, execErr(OpExtractComponents, err)
	}
	if err := matrix.ValidateNotNil(data); err != nil {
		return nil, execErr(OpExtractComponents, err)
	}
	cols := data.Cols()
	if k < 1 || k > cols {
		return nil, execErr(OpExtractComponents,
			fmt.Errorf("%w: %d factors requested for %d variables", ErrBadRequest, k, cols))
	}

	z, _, _, err := matrix.Standardize(data)
	if err != nil {
		return nil, execErr(OpExtractComponents, err)
	}
	r, _, _, err := matrix.Correlation(data)
	if err != nil {
		return nil, execErr(OpExtractComponents, err)
	}
	vals, vecs, err := matrix.Eigen(r, l.cfg.eigenTol, l.cfg.maxIter)
	if err != nil {
		return nil, execErr(OpExtractComponents, err)
	}
	vals, vecs, err = matrix.SortEigen(vals, vecs)
	if err != nil {
		return nil, execErr(OpExtractComponents, err)
	}
	if err = ctx.Err(); err != nil {
		return nil, execErr(OpExtractComponents, err)
	}

	w, err := scoreWeights(vals, vecs, k)
	if err != nil {
		return nil, execErr(OpExtractComponents, err)
	}
	scores, err := matrix.Mul(z, w)
	if err != nil {
		return nil, execErr(OpExtractComponents, err)
	}
	l.cfg.logger.DebugContext(ctx, "extracted components",
		slog.Int("factors", k),
		slog.Float64("first_eigenvalue", vals[0]),
		slog.Float64("last_eigenvalue", vals[k-1]))
	return scores, nil
}

// scoreWeights builds the cols×k matrix Q_k·Λ_k^(-1/2) with sign-normalized columns.
func scoreWeights(vals []float64, vecs *matrix.Dense, k int) (*matrix.Dense, error) {
	n := vecs.Rows()
	w, err := matrix.NewDense(n, k)
	if err != nil {
		return nil, err
	}
	var (
		i, j     int
		sum, inv float64
		v        float64
	)
	for j = 0; j < k; j++ {
		if !(vals[j] > singularEps) {
			return nil, fmt.Errorf("component %d has eigenvalue %g: %w", j+1, vals[j], matrix.ErrSingular)
		}
		inv = 1 / math.Sqrt(vals[j])
		sum = 0
		for i = 0; i < n; i++ {
			v, _ = vecs.At(i, j)
			sum += v
		}
		if sum < 0 {
			inv = -inv
		}
		for i = 0; i < n; i++ {
			v, _ = vecs.At(i, j)
			if err = w.Set(i, j, v*inv); err != nil {
				return nil, err
			}
		}
	}
	return w, nil
}
