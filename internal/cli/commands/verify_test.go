package commands

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/makecases/matrix"
)

func mustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseRows(rows)
	require.NoError(t, err)
	return m
}

func TestCompareTarget(t *testing.T) {
	r := 0.42 / math.Sqrt(0.76*0.89)
	tests := []struct {
		name      string
		sample    [][]float64
		target    [][]float64
		wantDelta float64
		wantCell  float64
	}{
		{
			name:      "unit diagonal is compared as stored",
			sample:    [][]float64{{1, 0.5}, {0.5, 1}},
			target:    [][]float64{{1, 0.4}, {0.4, 1}},
			wantDelta: 0.1,
			wantCell:  0.4,
		},
		{
			name:      "factor target is rescaled before comparing",
			sample:    [][]float64{{1, r}, {r, 1}},
			target:    [][]float64{{0.76, 0.42}, {0.42, 0.89}},
			wantDelta: 0,
			wantCell:  r,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corr, delta, err := compareTarget(mustRows(t, tt.sample), mustRows(t, tt.target))
			require.NoError(t, err)
			assert.InDelta(t, tt.wantDelta, delta, 1e-12)
			got, err := corr.At(0, 1)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantCell, got, 1e-12)
			diag, err := corr.At(1, 1)
			require.NoError(t, err)
			assert.Equal(t, 1.0, diag)
		})
	}

	_, _, err := compareTarget(mustRows(t, [][]float64{{1}}), mustRows(t, [][]float64{{1, 0}, {0, 1}}))
	require.ErrorContains(t, err, "sample is 1x1 but target is 2x2")
}
