// Package engine defines the numeric execution engine the synthesis pipeline delegates to,
// and ships Local, an in-process engine built on gonum samplers and the matrix kernel.
//
// The engine owns three capabilities:
//
//	Sample             draw n variates from a distribution expression
//	Factorize          upper Cholesky factor U of a target matrix (UᵀU = R)
//	ExtractComponents  principal-component regression scores with k retained factors
//
// Pipelines talk to an engine through structured requests (DrawRequest,
// OrthogonalizeRequest, CorrelateRequest) dispatched by Execute. Every failure an
// engine reports is an *ExecutionError, which matches makecases.ErrDelegateExecution
// as well as the engine's own cause under errors.Is.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/makecases"
	"github.com/katalvlaran/makecases/distribution"
	"github.com/katalvlaran/makecases/matrix"
)

// Operation tags carried by ExecutionError.
const (
	OpSample            = "sample"
	OpFactorize         = "factorize"
	OpExtractComponents = "extract components"
	OpDraw              = "draw"
	OpOrthogonalize     = "orthogonalize"
	OpCorrelate         = "correlate"
)

// ErrParameterRange is the engine-side cause for a distribution whose parameter
// count or values are outside the generator's domain.
var ErrParameterRange = errors.New("engine: parameter out of range")

// ErrBadRequest is the engine-side cause for a malformed structured request
// (nil data, mismatched shapes, unknown request kind).
var ErrBadRequest = errors.New("engine: bad request")

// Engine is the numeric capability set the pipeline needs.
type Engine interface {
	// Sample draws n independent variates from expr.
	Sample(ctx context.Context, expr distribution.Expression, n int) ([]float64, error)
	// Factorize returns upper-triangular U with UᵀU = m. Non positive-definite input fails.
	Factorize(ctx context.Context, m *matrix.Dense) (*matrix.Dense, error)
	// ExtractComponents replaces the columns of data with k principal-component
	// regression scores (zero mean, unit variance, mutually uncorrelated).
	ExtractComponents(ctx context.Context, data *matrix.Dense, k int) (*matrix.Dense, error)
}

// ExecutionError reports a failure inside an engine operation.
type ExecutionError struct {
	Op  string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the delegate-failure sentinel and the engine's own cause.
func (e *ExecutionError) Unwrap() []error {
	return []error{makecases.ErrDelegateExecution, e.Err}
}

// execErr wraps err as an *ExecutionError unless it already is one.
func execErr(op string, err error) error {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return err
	}
	return &ExecutionError{Op: op, Err: err}
}
