// SPDX-License-Identifier: MIT
// Package matrix: canonical linear-algebra kernels.
//
// Purpose:
//   - Mul / Transpose for the sample pipeline (DATA·U and score projections).
//   - Cholesky (upper factor) for imposing a correlation structure.
//   - Eigen (Jacobi) + SortEigen for principal-component extraction.
//
// Notes:
//   - All kernels validate first and wrap failures via matrixErrorf(op*, err).
//   - Results are freshly allocated *Dense values; inputs are never mutated.

package matrix

import (
	"fmt"
	"math"
	"sort"
)

// Operation name constants for unified error wrapping.
const (
	opMul       = "Mul"
	opTranspose = "Transpose"
	opEigen     = "Eigen"
	opCholesky  = "Cholesky"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// asDense returns m as *Dense, copying through At when m is another implementation.
func asDense(m Matrix) (*Dense, error) {
	if d, ok := m.(*Dense); ok {
		return d, nil
	}
	r, c := m.Rows(), m.Cols()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	var (
		i, j int
		v    float64
	)
	for i = 0; i < r; i++ {
		for j = 0; j < c; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, err
			}
			out.data[i*c+j] = v
		}
	}
	return out, nil
}

// Mul computes the matrix product a×b.
//
// Implementation:
//   - Stage 1: ValidateMulCompatible(a, b); materialize both as *Dense (no copy when already Dense).
//   - Stage 2: i→k→j accumulation over flat slices; the k-loop hoists a[i,k].
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch (wrapped with "Mul").
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b Matrix) (*Dense, error) {
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	ad, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	bd, err := asDense(b)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	r, n, c := ad.r, ad.c, bd.c
	out, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	var (
		i, k, j int
		aik     float64
		rowOut  int
		rowB    int
	)
	for i = 0; i < r; i++ {
		rowOut = i * c
		for k = 0; k < n; k++ {
			aik = ad.data[i*n+k]
			if aik == 0 {
				continue
			}
			rowB = k * c
			for j = 0; j < c; j++ {
				out.data[rowOut+j] += aik * bd.data[rowB+j]
			}
		}
	}
	return out, nil
}

// Transpose returns mᵀ.
func Transpose(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	d, err := asDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	out, err := NewDense(d.c, d.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	var i, j int
	for i = 0; i < d.r; i++ {
		for j = 0; j < d.c; j++ {
			out.data[j*d.r+i] = d.data[i*d.c+j]
		}
	}
	return out, nil
}

// Cholesky factorizes a symmetric positive-definite matrix A into an upper-triangular U
// with UᵀU = A.
//
// Implementation:
//   - Stage 1: ValidateSymmetric(A, DefaultSymmetryTol).
//   - Stage 2: Cholesky–Banachiewicz on the lower factor L (row by row), then U = Lᵀ.
//     A pivot d = A[j,j] − Σ L[j,k]² that is not strictly positive (or not finite) stops
//     the factorization with ErrNotPositiveDefinite.
//
// Behavior highlights:
//   - No pivoting, no jitter: a semidefinite or indefinite input is reported, never repaired.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrAsymmetry, ErrNotPositiveDefinite (wrapped with "Cholesky").
//
// Determinism:
//   - Fixed i→j→k order.
//
// Complexity:
//   - Time O(n³/3), Space O(n²).
func Cholesky(a Matrix) (*Dense, error) {
	if err := ValidateSymmetric(a, DefaultSymmetryTol); err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	ad, err := asDense(a)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	n := ad.r
	l, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}

	var (
		i, j, k int
		sum     float64
	)
	for i = 0; i < n; i++ {
		for j = 0; j <= i; j++ {
			sum = ad.data[i*n+j]
			for k = 0; k < j; k++ {
				sum -= l.data[i*n+k] * l.data[j*n+k]
			}
			if i == j {
				if !(sum > 0) || math.IsInf(sum, 0) {
					return nil, matrixErrorf(opCholesky,
						fmt.Errorf("leading minor %d has pivot %g: %w", i+1, sum, ErrNotPositiveDefinite))
				}
				l.data[i*n+i] = math.Sqrt(sum)
				continue
			}
			l.data[i*n+j] = sum / l.data[j*n+j]
		}
	}

	u, err := Transpose(l)
	if err != nil {
		return nil, matrixErrorf(opCholesky, err)
	}
	return u, nil
}

// Eigen computes eigenvalues and eigenvectors of a symmetric matrix via Jacobi rotations.
//
// Implementation:
//   - Stage 1: ValidateSymmetric(m, DefaultSymmetryTol).
//   - Stage 2: repeatedly pick (p,q) with the largest |A[p,q]| in i→j order and rotate it to zero;
//     accumulate rotations into Q.
//
// Returns:
//   - []float64: eigenvalues (diagonal of the rotated matrix, unsorted).
//   - *Dense: Q whose columns are the matching unit eigenvectors.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrAsymmetry, ErrMatrixEigenFailed (max off-diagonal ≥ tol after maxIter).
//
// Determinism:
//   - Fixed pivot scan and update order.
//
// Complexity:
//   - Time O(iter * n), pivot scan O(n²) per rotation; Space O(n²).
func Eigen(m Matrix, tol float64, maxIter int) ([]float64, *Dense, error) {
	if err := ValidateSymmetric(m, DefaultSymmetryTol); err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	src, err := asDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	a := src.CloneDense()
	n := a.r
	q, err := Identity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}

	var (
		iter           int
		i, j, p, r     int
		maxOff, off    float64
		app, aqq, apq  float64
		aip, aiq       float64
		qip, qiq       float64
		theta, t, c, s float64
	)
	for iter = 0; iter < maxIter; iter++ {
		maxOff = 0
		for i = 0; i < n; i++ {
			for j = i + 1; j < n; j++ {
				off = math.Abs(a.data[i*n+j])
				if off > maxOff {
					maxOff, p, r = off, i, j
				}
			}
		}
		if maxOff < tol {
			break
		}

		app = a.data[p*n+p]
		aqq = a.data[r*n+r]
		apq = a.data[p*n+r]

		theta = (aqq - app) / (2 * apq)
		t = math.Copysign(1.0/(math.Abs(theta)+math.Hypot(theta, 1)), theta)
		c = 1.0 / math.Sqrt(t*t+1)
		s = t * c

		for i = 0; i < n; i++ {
			if i == p || i == r {
				continue
			}
			aip = a.data[i*n+p]
			aiq = a.data[i*n+r]
			a.data[i*n+p] = c*aip - s*aiq
			a.data[p*n+i] = a.data[i*n+p]
			a.data[i*n+r] = s*aip + c*aiq
			a.data[r*n+i] = a.data[i*n+r]
		}
		a.data[p*n+p] = c*c*app - 2*c*s*apq + s*s*aqq
		a.data[r*n+r] = s*s*app + 2*c*s*apq + c*c*aqq
		a.data[p*n+r], a.data[r*n+p] = 0, 0

		for i = 0; i < n; i++ {
			qip = q.data[i*n+p]
			qiq = q.data[i*n+r]
			q.data[i*n+p] = c*qip - s*qiq
			q.data[i*n+r] = s*qip + c*qiq
		}
	}

	maxOff = 0
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			if off = math.Abs(a.data[i*n+j]); off > maxOff {
				maxOff = off
			}
		}
	}
	if maxOff >= tol {
		return nil, nil, matrixErrorf(opEigen, ErrMatrixEigenFailed)
	}

	eigs := make([]float64, n)
	for i = 0; i < n; i++ {
		eigs[i] = a.data[i*n+i]
	}
	return eigs, q, nil
}

// SortEigen reorders eigenpairs by descending eigenvalue (ties keep their original order)
// and returns new slices; the inputs are left untouched.
func SortEigen(vals []float64, vecs *Dense) ([]float64, *Dense, error) {
	if vecs == nil {
		return nil, nil, matrixErrorf(opEigen, ErrNilMatrix)
	}
	n := len(vals)
	if vecs.r != n || vecs.c != n {
		return nil, nil, matrixErrorf(opEigen, ErrDimensionMismatch)
	}
	idx := make([]int, n)
	var i, j int
	for i = range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool { return vals[idx[x]] > vals[idx[y]] })

	outVals := make([]float64, n)
	outVecs, err := NewDense(n, n)
	if err != nil {
		return nil, nil, matrixErrorf(opEigen, err)
	}
	for j = 0; j < n; j++ {
		outVals[j] = vals[idx[j]]
		for i = 0; i < n; i++ {
			outVecs.data[i*n+j] = vecs.data[i*n+idx[j]]
		}
	}
	return outVals, outVecs, nil
}
