// SPDX-License-Identifier: MIT
// Package matrix: sentinel error set.
// Algorithms return these sentinels (optionally wrapped with an operation tag) and
// tests check them via errors.Is. No kernel panics on user-triggered conditions.

package matrix

import "errors"

// Every message is prefixed with "matrix: ..." so the origin is obvious in logs.
// Wrap with context at the boundary (fmt.Errorf("Op: %w", ErrX)); callers still match via errors.Is.

var (
	// ErrBadShape is returned when a requested shape is invalid (r<0 or c<0, r*c overflow, or data length mismatch).
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible dimensions between operands.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required but the input wasn't.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrAsymmetry signals a matrix expected to be symmetric violated symmetry within tolerance.
	ErrAsymmetry = errors.New("matrix: matrix is not symmetric within eps")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are required.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNilMatrix indicates that a nil Matrix (receiver or argument) was used.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrMatrixEigenFailed indicates the Jacobi routine did not converge within maxIter.
	ErrMatrixEigenFailed = errors.New("matrix: eigen decomposition failed")

	// ErrNotPositiveDefinite is returned by Cholesky when a pivot is not strictly positive.
	ErrNotPositiveDefinite = errors.New("matrix: matrix is not positive definite")

	// ErrSingular is returned when a (near) zero eigenvalue or pivot prevents an inverse scaling.
	ErrSingular = errors.New("matrix: singular matrix")

	// ErrBadToken is returned by ParseTokens on a malformed cell or ragged row.
	ErrBadToken = errors.New("matrix: malformed token")
)
