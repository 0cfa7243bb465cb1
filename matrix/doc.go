// SPDX-License-Identifier: MIT

// Package matrix is the dense linear-algebra kernel behind the local numeric engine.
//
// What is here:
//   - Dense: a row-major float64 store with safe At/Set accessors (errors, never panics).
//   - Kernels: Mul, Transpose, Cholesky (upper factor, UᵀU = A) and Eigen (Jacobi sweeps).
//   - Statistics: CenterColumns, Covariance, Correlation, Standardize over the columns of a data matrix.
//   - Token codec: FormatTokens / ParseTokens, the ";"-rows / ","-cells text form of a matrix.
//
// Conventions:
//   - Every kernel validates first (nil, shape, symmetry) and wraps failures as "<Op>: <sentinel>",
//     so callers match with errors.Is(err, ErrX).
//   - Loop orders are fixed (i→j→k); identical inputs give bit-identical outputs.
//   - *Dense operands hit flat-slice fast paths; other Matrix implementations go through At/Set.
//
// AI-Hints:
//   - Cholesky is the only place where positive-definiteness is decided; it reports
//     ErrNotPositiveDefinite rather than trying to repair the input.
//   - Eigen returns eigenvalues unsorted; sort with SortEigen when component order matters.
package matrix
