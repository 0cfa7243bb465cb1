// SPDX-License-Identifier: MIT

package matrix

// Matrix is the minimal read/write surface every kernel accepts.
// Implementations must be rectangular; At/Set return ErrOutOfRange on bad indices.
type Matrix interface {
	// Rows returns the number of rows.
	Rows() int
	// Cols returns the number of columns.
	Cols() int
	// At returns the element at (i, j).
	At(i, j int) (float64, error)
	// Set assigns v at (i, j).
	Set(i, j int, v float64) error
	// Clone returns a deep copy.
	Clone() Matrix
}

// Default numeric policy for kernels that need one.
const (
	// DefaultEigenTol is the off-diagonal threshold for Jacobi convergence.
	DefaultEigenTol = 1e-12
	// DefaultEigenMaxIter caps the number of Jacobi rotations.
	DefaultEigenMaxIter = 100000
	// DefaultSymmetryTol is the tolerance used when validating symmetric inputs.
	DefaultSymmetryTol = 1e-9
)
