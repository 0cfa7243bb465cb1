package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/makecases/distribution"
	"github.com/katalvlaran/makecases/matrix"
)

// Kind tags a Request.
type Kind int

// Request kinds, in pipeline order.
const (
	KindDraw Kind = iota + 1
	KindOrthogonalize
	KindCorrelate
)

func (k Kind) String() string {
	switch k {
	case KindDraw:
		return OpDraw
	case KindOrthogonalize:
		return OpOrthogonalize
	case KindCorrelate:
		return OpCorrelate
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Request is the tagged variant over DrawRequest, OrthogonalizeRequest and CorrelateRequest.
type Request interface {
	Kind() Kind
	isRequest()
}

// DrawRequest asks for NumCases rows of NumVars independent variates each.
type DrawRequest struct {
	Expression distribution.Expression
	NumVars    int
	NumCases   int
}

// OrthogonalizeRequest asks for Factors principal-component scores of Data.
type OrthogonalizeRequest struct {
	Data    *matrix.Dense
	Factors int
}

// CorrelateRequest asks to factorize Target and right-multiply Data by the factor.
type CorrelateRequest struct {
	Data   *matrix.Dense
	Target *matrix.Dense
}

func (DrawRequest) Kind() Kind          { return KindDraw }
func (OrthogonalizeRequest) Kind() Kind { return KindOrthogonalize }
func (CorrelateRequest) Kind() Kind     { return KindCorrelate }

func (DrawRequest) isRequest()          {}
func (OrthogonalizeRequest) isRequest() {}
func (CorrelateRequest) isRequest()     {}

// Result is the outcome of one Execute call.
// Factor is set only for correlate requests (the U that was applied).
type Result struct {
	Data   *matrix.Dense
	Factor *matrix.Dense
}

// Execute dispatches req to the matching capabilities of e.
//
// Draw fills the matrix case by case (row-major), matching one Sample call of
// NumCases*NumVars variates. Correlate computes Data·U where UᵀU = Target.
// All errors are *ExecutionError values.
func Execute(ctx context.Context, e Engine, req Request) (Result, error) {
	if req == nil {
		return Result{}, execErr("execute", fmt.Errorf("%w: nil request", ErrBadRequest))
	}
	switch r := req.(type) {
	case DrawRequest:
		return executeDraw(ctx, e, r)
	case OrthogonalizeRequest:
		if r.Data == nil {
			return Result{}, execErr(OpOrthogonalize, fmt.Errorf("%w: nil data", ErrBadRequest))
		}
		out, err := e.ExtractComponents(ctx, r.Data, r.Factors)
		if err != nil {
			return Result{}, execErr(OpOrthogonalize, err)
		}
		return Result{Data: out}, nil
	case CorrelateRequest:
		return executeCorrelate(ctx, e, r)
	default:
		return Result{}, execErr("execute", fmt.Errorf("%w: unsupported request %T", ErrBadRequest, req))
	}
}

func executeDraw(ctx context.Context, e Engine, r DrawRequest) (Result, error) {
	if r.NumVars < 1 || r.NumCases < 0 || r.NumCases > math.MaxInt/r.NumVars {
		return Result{}, execErr(OpDraw, fmt.Errorf("%w: shape %d×%d", ErrBadRequest, r.NumCases, r.NumVars))
	}
	vals, err := e.Sample(ctx, r.Expression, r.NumCases*r.NumVars)
	if err != nil {
		return Result{}, execErr(OpDraw, err)
	}
	data, err := matrix.NewDenseFrom(r.NumCases, r.NumVars, vals)
	if err != nil {
		return Result{}, execErr(OpDraw, err)
	}
	return Result{Data: data}, nil
}

func executeCorrelate(ctx context.Context, e Engine, r CorrelateRequest) (Result, error) {
	if r.Data == nil || r.Target == nil {
		return Result{}, execErr(OpCorrelate, fmt.Errorf("%w: nil data or target", ErrBadRequest))
	}
	if r.Target.Rows() != r.Data.Cols() {
		return Result{}, execErr(OpCorrelate, fmt.Errorf("%w: target is %d×%d for %d variables",
			ErrBadRequest, r.Target.Rows(), r.Target.Cols(), r.Data.Cols()))
	}
	u, err := e.Factorize(ctx, r.Target)
	if err != nil {
		return Result{}, execErr(OpCorrelate, err)
	}
	if err = ctx.Err(); err != nil {
		return Result{}, execErr(OpCorrelate, err)
	}
	out, err := matrix.Mul(r.Data, u)
	if err != nil {
		return Result{}, execErr(OpCorrelate, err)
	}
	return Result{Data: out, Factor: u}, nil
}
