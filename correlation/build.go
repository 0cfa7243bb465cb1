package correlation

import (
	"fmt"
	"math"

	"github.com/katalvlaran/makecases"
	"github.com/katalvlaran/makecases/matrix"
)

// Build constructs the numvar×numvar matrix described by spec.
//
// The result is symmetric by construction. Every structure except RANDOM is fully
// deterministic: rebuilding the same Spec yields bit-identical cells.
//
// Errors (all wrap makecases.ErrInvalidParameters):
//   - numvar < 1, unknown structure, or structure NONE (there is nothing to build);
//   - a parameter count different from Arity(spec.Structure, numvar);
//   - TOEPLITZ whose first parameter is not exactly 1;
//   - a non-finite parameter.
func Build(spec Spec, numvar int, opts ...Option) (*matrix.Dense, error) {
	want, err := Arity(spec.Structure, numvar)
	if err != nil {
		return nil, err
	}
	if spec.Structure == None {
		return nil, fmt.Errorf("%w: structure NONE has no correlation matrix", makecases.ErrInvalidParameters)
	}
	p := spec.Params
	if len(p) != want {
		return nil, fmt.Errorf("%w: %s correlations for %d variables require %d parameters, got %d",
			makecases.ErrInvalidParameters, spec.Structure, numvar, want, len(p))
	}
	for i, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %s parameter %d is not finite", makecases.ErrInvalidParameters, spec.Structure, i+1)
		}
	}

	m, err := matrix.NewDense(numvar, numvar)
	if err != nil {
		return nil, err
	}

	switch spec.Structure {
	case Equal:
		err = fill(m, func(i, j int) float64 {
			if i == j {
				return 1
			}
			return p[0]
		})
	case Toeplitz:
		if p[0] != 1 {
			return nil, fmt.Errorf("%w: invalid data for Toeplitz matrix: first parameter must be 1, got %g",
				makecases.ErrInvalidParameters, p[0])
		}
		err = fill(m, func(i, j int) float64 { return p[absInt(i-j)] })
	case FA:
		d, loadings := p[0], p[1:]
		err = fill(m, func(i, j int) float64 {
			v := loadings[i] * loadings[j]
			if i == j {
				v += d
			}
			return v
		})
	case Arbitrary:
		// row i of the lower triangle starts at offset i(i+1)/2
		err = fill(m, func(i, j int) float64 {
			if j > i {
				i, j = j, i
			}
			return p[i*(i+1)/2+j]
		})
	case Random:
		err = fillRandom(m, p[0], p[1], newBuildConfig(opts))
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func fill(m *matrix.Dense, cell func(i, j int) float64) error {
	n := m.Rows()
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if err := m.Set(i, j, cell(i, j)); err != nil {
				return err
			}
		}
	}
	return nil
}

// fillRandom draws each lower-triangle cell once, row by row, and mirrors it.
// The bounds may be given in either order.
func fillRandom(m *matrix.Dense, low, high float64, cfg *buildConfig) error {
	n := m.Rows()
	var (
		i, j int
		v    float64
	)
	for i = 0; i < n; i++ {
		for j = 0; j < i; j++ {
			v = low + (high-low)*cfg.rng.Float64()
			if err := m.Set(i, j, v); err != nil {
				return err
			}
			if err := m.Set(j, i, v); err != nil {
				return err
			}
		}
		if err := m.Set(i, i, 1); err != nil {
			return err
		}
	}
	return nil
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
