// SPDX-License-Identifier: MIT
// Package: matrix
//
// Purpose:
//   - Column statistics over a data matrix (rows = cases, columns = variables).
//
// Exposed API:
//   - CenterColumns(X) -> (Xc, means)          // subtract per-column mean
//   - Standardize(X)   -> (Z, means, stds)     // z-scores with sample std; std==0 → zero column
//   - Covariance(X)    -> (Cov, means)         // sample covariance: (Xcᵀ Xc)/(r-1)
//   - Correlation(X)   -> (Corr, means, stds)  // Pearson correlation: Cov scaled to unit diagonal
//   - CovarianceToCorrelation(C) -> (Corr, stds) // D^-½ C D^-½ with D = diag(C)
//
// Determinism:
//   - Fixed i→j traversal; sums accumulate in row order.

package matrix

import "math"

const (
	opCenterColumns = "CenterColumns"
	opStandardize   = "Standardize"
	opCovariance    = "Covariance"
	opCorrelation   = "Correlation"
	opCovToCorr     = "CovarianceToCorrelation"
)

// CenterColumns subtracts the per-column mean from every element.
// A zero-row matrix is returned as an empty copy with zero means.
func CenterColumns(x Matrix) (*Dense, []float64, error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, nil, matrixErrorf(opCenterColumns, err)
	}
	d, err := asDense(x)
	if err != nil {
		return nil, nil, matrixErrorf(opCenterColumns, err)
	}
	r, c := d.r, d.c
	means := make([]float64, c)
	out := d.CloneDense()
	if r == 0 {
		return out, means, nil
	}

	var i, j int
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			means[j] += d.data[i*c+j]
		}
	}
	for j = 0; j < c; j++ {
		means[j] /= float64(r)
	}
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			out.data[i*c+j] -= means[j]
		}
	}
	return out, means, nil
}

// Standardize returns column z-scores Z = (X − mean)/std using the sample std (r−1).
// Degenerate columns (std==0) become all zeros.
//
// Errors:
//   - ErrNilMatrix; ErrDimensionMismatch when r<2 (sample std undefined).
func Standardize(x Matrix) (*Dense, []float64, []float64, error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, nil, nil, matrixErrorf(opStandardize, err)
	}
	if x.Rows() < 2 {
		return nil, nil, nil, matrixErrorf(opStandardize, ErrDimensionMismatch)
	}
	xc, means, err := CenterColumns(x)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opStandardize, err)
	}
	r, c := xc.r, xc.c
	stds := make([]float64, c)

	var (
		i, j int
		v    float64
	)
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			v = xc.data[i*c+j]
			stds[j] += v * v
		}
	}
	inv := make([]float64, c)
	for j = 0; j < c; j++ {
		stds[j] = math.Sqrt(stds[j] / float64(r-1))
		if stds[j] > 0 {
			inv[j] = 1 / stds[j]
		}
	}
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			xc.data[i*c+j] *= inv[j]
		}
	}
	return xc, means, stds, nil
}

// Covariance computes the sample covariance of columns, (Xcᵀ Xc)/(r−1).
//
// Errors:
//   - ErrNilMatrix; ErrDimensionMismatch when r<2.
func Covariance(x Matrix) (*Dense, []float64, error) {
	if err := ValidateNotNil(x); err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	if x.Rows() < 2 {
		return nil, nil, matrixErrorf(opCovariance, ErrDimensionMismatch)
	}
	xc, means, err := CenterColumns(x)
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	cov, err := gram(xc, float64(xc.r-1))
	if err != nil {
		return nil, nil, matrixErrorf(opCovariance, err)
	}
	return cov, means, nil
}

// Correlation computes the Pearson correlation of columns by rescaling the sample
// covariance. The diagonal is 1 for non-degenerate columns and 0 for constant columns.
//
// Errors:
//   - ErrNilMatrix; ErrDimensionMismatch when r<2.
//
// Notes:
//   - Scale-invariant: Correlation(α*X) == Correlation(X) for α>0.
func Correlation(x Matrix) (*Dense, []float64, []float64, error) {
	cov, means, err := Covariance(x)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	corr, stds, err := CovarianceToCorrelation(cov)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opCorrelation, err)
	}
	return corr, means, stds, nil
}

// CovarianceToCorrelation rescales a square covariance-like matrix C to
// C[i,j]/sqrt(C[i,i]·C[j,j]) and returns sqrt(C[i,i]) per row. Rows and columns
// with a non-positive diagonal become zero; every other diagonal cell is exactly 1.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNaNInf.
func CovarianceToCorrelation(c Matrix) (*Dense, []float64, error) {
	if err := ValidateSquare(c); err != nil {
		return nil, nil, matrixErrorf(opCovToCorr, err)
	}
	d, err := asDense(c)
	if err != nil {
		return nil, nil, matrixErrorf(opCovToCorr, err)
	}
	n := d.r
	out := d.CloneDense()
	stds := make([]float64, n)
	inv := make([]float64, n)

	var i, j int
	for i = 0; i < n; i++ {
		v := d.data[i*n+i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, matrixErrorf(opCovToCorr, ErrNaNInf)
		}
		if v > 0 {
			stds[i] = math.Sqrt(v)
			inv[i] = 1 / stds[i]
		}
	}
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			out.data[i*n+j] *= inv[i] * inv[j]
		}
		if inv[i] > 0 {
			out.data[i*n+i] = 1
		}
	}
	return out, stds, nil
}

// gram returns (Xᵀ X)/div, filling the upper triangle and mirroring it so the
// result is exactly symmetric.
func gram(x *Dense, div float64) (*Dense, error) {
	r, c := x.r, x.c
	out, err := NewDense(c, c)
	if err != nil {
		return nil, err
	}
	var (
		i, j, k int
		base    int
		xij     float64
	)
	for i = 0; i < r; i++ {
		base = i * c
		for j = 0; j < c; j++ {
			xij = x.data[base+j]
			for k = j; k < c; k++ {
				out.data[j*c+k] += xij * x.data[base+k]
			}
		}
	}
	for j = 0; j < c; j++ {
		for k = j; k < c; k++ {
			out.data[j*c+k] /= div
			out.data[k*c+j] = out.data[j*c+k]
		}
	}
	return out, nil
}
