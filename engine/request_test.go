package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/katalvlaran/makecases"
	"github.com/katalvlaran/makecases/distribution"
	"github.com/katalvlaran/makecases/engine"
	"github.com/katalvlaran/makecases/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEngine returns 1,2,3,... from Sample and identity factors, recording each call.
type countingEngine struct {
	calls []string
	fail  error
}

func (c *countingEngine) Sample(_ context.Context, _ distribution.Expression, n int) ([]float64, error) {
	c.calls = append(c.calls, engine.OpSample)
	if c.fail != nil {
		return nil, c.fail
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out, nil
}

func (c *countingEngine) Factorize(_ context.Context, m *matrix.Dense) (*matrix.Dense, error) {
	c.calls = append(c.calls, engine.OpFactorize)
	if c.fail != nil {
		return nil, c.fail
	}
	return matrix.Identity(m.Rows())
}

func (c *countingEngine) ExtractComponents(_ context.Context, d *matrix.Dense, _ int) (*matrix.Dense, error) {
	c.calls = append(c.calls, engine.OpExtractComponents)
	return d.CloneDense(), c.fail
}

func TestExecute_DrawFillsRowMajor(t *testing.T) {
	t.Parallel()
	fake := &countingEngine{}
	res, err := engine.Execute(context.Background(), fake, engine.DrawRequest{
		Expression: mustExpr(t, distribution.Normal, 0, 1),
		NumVars:    2,
		NumCases:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, res.Data.ToRows())
	assert.Nil(t, res.Factor)
	assert.Equal(t, []string{engine.OpSample}, fake.calls)
}

func TestExecute_CorrelateReturnsFactor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	data := mustDense(t, [][]float64{{1, 0}, {0, 1}, {1, 1}})
	target := mustDense(t, [][]float64{{1, 0.6}, {0.6, 1}})

	res, err := engine.Execute(ctx, engine.NewLocal(), engine.CorrelateRequest{Data: data, Target: target})
	require.NoError(t, err)
	require.NotNil(t, res.Factor)

	// Row (1,0) picks the first row of U, row (0,1) the second.
	u := res.Factor.ToRows()
	got := res.Data.ToRows()
	assert.Equal(t, u[0], got[0])
	assert.Equal(t, u[1], got[1])
	assert.InDelta(t, 0.6, u[0][1], 1e-12)
	assert.InDelta(t, 0, u[1][0], 0)
}

func TestExecute_CorrelateNonPD(t *testing.T) {
	t.Parallel()
	data := mustDense(t, [][]float64{{1, 0}, {0, 1}})
	target := mustDense(t, [][]float64{{1, 1.2}, {1.2, 1}})

	_, err := engine.Execute(context.Background(), engine.NewLocal(), engine.CorrelateRequest{Data: data, Target: target})
	require.ErrorIs(t, err, makecases.ErrDelegateExecution)
	require.ErrorIs(t, err, matrix.ErrNotPositiveDefinite)

	var ee *engine.ExecutionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, engine.OpFactorize, ee.Op)
}

func TestExecute_BadRequests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	two := mustDense(t, [][]float64{{1, 0}, {0, 1}})
	three, err := matrix.Identity(3)
	require.NoError(t, err)

	cases := []struct {
		name string
		req  engine.Request
	}{
		{"nil", nil},
		{"draw no vars", engine.DrawRequest{Expression: mustExpr(t, distribution.Exp, 1), NumVars: 0, NumCases: 3}},
		{"draw cell count overflows", engine.DrawRequest{Expression: mustExpr(t, distribution.Exp, 1), NumVars: 1 << 32, NumCases: 1 << 32}},
		{"orthogonalize nil", engine.OrthogonalizeRequest{Factors: 1}},
		{"correlate nil target", engine.CorrelateRequest{Data: two}},
		{"correlate order mismatch", engine.CorrelateRequest{Data: two, Target: three}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fake := &countingEngine{}
			_, err := engine.Execute(ctx, fake, tc.req)
			require.ErrorIs(t, err, engine.ErrBadRequest)
			require.ErrorIs(t, err, makecases.ErrDelegateExecution)
			assert.Empty(t, fake.calls)
		})
	}
}

func TestExecute_WrapsForeignErrorsOnce(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	fake := &countingEngine{fail: boom}

	_, err := engine.Execute(context.Background(), fake, engine.OrthogonalizeRequest{
		Data:    mustDense(t, [][]float64{{1, 2}, {3, 4}}),
		Factors: 2,
	})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, makecases.ErrDelegateExecution)
	assert.Equal(t, "engine: orthogonalize: boom", err.Error())
}

func TestKind_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "draw", engine.KindDraw.String())
	assert.Equal(t, "orthogonalize", engine.OrthogonalizeRequest{}.Kind().String())
	assert.Equal(t, "kind(9)", engine.Kind(9).String())
}
