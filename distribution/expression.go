// Package distribution builds the per-variable generator expression used by the Draw stage.
//
// Every family except triangular is a parametrised draw that the numeric engine
// evaluates natively; count and range checks for those are the engine's job.
// Triangular is evaluated here by inverse transform of a Uniform(0,1) draw:
//
//	Fc = (c−a)/(b−a)
//	u <  Fc : a + sqrt(u·(b−a)·(c−a))
//	u >= Fc : b − sqrt((1−u)·(b−a)·(b−c))
package distribution

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/katalvlaran/makecases"
)

// MaxParams is the largest parameter list a family accepts.
const MaxParams = 3

// Expression is an immutable generator description: a family plus its parameters.
// The zero value is not usable; build one with Build.
type Expression struct {
	name   Name
	params []float64
	fc     float64
}

// Build validates name and params and returns the expression.
//
// Errors (all wrap makecases.ErrInvalidParameters):
//   - unknown family;
//   - more than MaxParams parameters, or a non-finite parameter;
//   - triangular without exactly 3 parameters, or without a ≤ c ≤ b and a ≠ b.
func Build(name Name, params []float64) (Expression, error) {
	if !name.Valid() {
		return Expression{}, fmt.Errorf("%w: unknown distribution %q", makecases.ErrInvalidParameters, name)
	}
	if len(params) > MaxParams {
		return Expression{}, fmt.Errorf("%w: %s takes at most %d parameters, got %d",
			makecases.ErrInvalidParameters, name, MaxParams, len(params))
	}
	for i, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Expression{}, fmt.Errorf("%w: %s parameter %d is not finite", makecases.ErrInvalidParameters, name, i+1)
		}
	}

	e := Expression{name: name, params: append([]float64(nil), params...)}
	if name != Triangular {
		return e, nil
	}

	if len(params) != 3 {
		return Expression{}, fmt.Errorf("%w: the triangular distribution requires three parameters, got %d",
			makecases.ErrInvalidParameters, len(params))
	}
	a, b, c := params[0], params[1], params[2]
	if !(a <= c && c <= b) || a == b {
		return Expression{}, fmt.Errorf("%w: invalid parameters for triangular distribution: %s, %s, %s",
			makecases.ErrInvalidParameters, formatFloat(a), formatFloat(b), formatFloat(c))
	}
	e.fc = (c - a) / (b - a)
	return e, nil
}

// Name returns the family.
func (e Expression) Name() Name { return e.name }

// Params returns a copy of the parameters.
func (e Expression) Params() []float64 { return append([]float64(nil), e.params...) }

// IsInverseTransform reports whether the expression is evaluated locally from a
// Uniform(0,1) draw (triangular) rather than by a native engine generator.
func (e Expression) IsInverseTransform() bool { return e.name == Triangular }

// Inverse maps u ∈ [0,1] through the triangular inverse CDF. The branch
// boundary is strict: u < Fc takes the lower branch.
// For non-triangular expressions it returns NaN.
func (e Expression) Inverse(u float64) float64 {
	if !e.IsInverseTransform() {
		return math.NaN()
	}
	a, b, c := e.params[0], e.params[1], e.params[2]
	if u < e.fc {
		return a + math.Sqrt(u*(b-a)*(c-a))
	}
	return b - math.Sqrt((1-u)*(b-a)*(b-c))
}

// String renders the expression for display and logs,
// e.g. "normal(0,1)" or "triangular(a=0,b=10,c=3)".
func (e Expression) String() string {
	var sb strings.Builder
	sb.WriteString(string(e.name))
	sb.WriteByte('(')
	names := catalog[e.name].Params
	for i, p := range e.params {
		if i > 0 {
			sb.WriteByte(',')
		}
		if e.name == Triangular {
			sb.WriteString(names[i])
			sb.WriteByte('=')
		}
		sb.WriteString(formatFloat(p))
	}
	sb.WriteByte(')')
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
