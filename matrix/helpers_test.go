// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers.
//
// Purpose:
//   - Small deterministic fixtures for kernels; all data finite and well-formed.

package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/makecases/matrix"
	"github.com/stretchr/testify/require"
)

// hide wraps any Matrix to hide its concrete type and force the At/Set fallback paths.
type hide struct{ matrix.Matrix }

// MustDense builds a *Dense from rows or fails the test.
func MustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	d, err := matrix.NewDenseRows(rows)
	require.NoError(t, err)
	return d
}

// MustAt reads (i,j) or fails the test.
func MustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err)
	return v
}

// RequireAllClose asserts |a[i,j] − b[i,j]| ≤ tol everywhere.
func RequireAllClose(t *testing.T, want, got matrix.Matrix, tol float64) {
	t.Helper()
	require.Equal(t, want.Rows(), got.Rows(), "rows")
	require.Equal(t, want.Cols(), got.Cols(), "cols")
	var i, j int
	for i = 0; i < want.Rows(); i++ {
		for j = 0; j < want.Cols(); j++ {
			w, g := MustAt(t, want, i, j), MustAt(t, got, i, j)
			require.LessOrEqualf(t, math.Abs(w-g), tol, "cell (%d,%d): want %g, got %g", i, j, w, g)
		}
	}
}

// spd3 is a fixed 3×3 symmetric positive-definite correlation matrix.
func spd3() [][]float64 {
	return [][]float64{
		{1, 0.5, 0.3},
		{0.5, 1, 0.2},
		{0.3, 0.2, 1},
	}
}
