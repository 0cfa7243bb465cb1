// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Reject NaN/Inf on Set so generated datasets never carry non-finite cells silently.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); Row/Col: O(c)/O(r).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

const (
	ctxAt  = "At"
	ctxSet = "Set"
	ctxRow = "Row"
	ctxCol = "Col"
)

const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	r, c int
	data []float64
}

// NewDense allocates a zero-filled rows×cols matrix.
// Zero-sized shapes (0×n, n×0) are allowed and describe empty datasets.
//
// Errors:
//   - ErrBadShape if rows<0 or cols<0, or rows*cols overflows int.
func NewDense(rows, cols int) (*Dense, error) {
	if !validShape(rows, cols) {
		return nil, fmt.Errorf("NewDense(%d,%d): %w", rows, cols, ErrBadShape)
	}
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFrom wraps a copy of data (row-major, len == rows*cols) into a Dense.
//
// Errors:
//   - ErrBadShape on negative dims, an overflowing rows*cols or a length mismatch.
//   - ErrNaNInf if any value is not finite.
func NewDenseFrom(rows, cols int, data []float64) (*Dense, error) {
	if !validShape(rows, cols) || len(data) != rows*cols {
		return nil, fmt.Errorf("NewDenseFrom(%d,%d): %w", rows, cols, ErrBadShape)
	}
	var k int
	for k = range data {
		if math.IsNaN(data[k]) || math.IsInf(data[k], 0) {
			return nil, denseErrorf(ctxSet, k/maxInt(cols, 1), k%maxInt(cols, 1), ErrNaNInf)
		}
	}
	buf := make([]float64, len(data))
	copy(buf, data)
	return &Dense{r: rows, c: cols, data: buf}, nil
}

// validShape reports whether rows×cols is non-negative and its cell count fits in an int.
func validShape(rows, cols int) bool {
	if rows < 0 || cols < 0 {
		return false
	}
	return cols == 0 || rows <= math.MaxInt/cols
}

// NewDenseRows builds a Dense from a slice of equal-length rows.
// An empty input yields a 0×0 matrix.
func NewDenseRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return NewDense(0, 0)
	}
	c := len(rows[0])
	flat := make([]float64, 0, len(rows)*c)
	var i int
	for i = range rows {
		if len(rows[i]) != c {
			return nil, fmt.Errorf("NewDenseRows: row %d has %d cells, want %d: %w", i, len(rows[i]), c, ErrBadShape)
		}
		flat = append(flat, rows[i]...)
	}
	return NewDenseFrom(len(rows), c, flat)
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Dense, error) {
	d, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	var i int
	for i = 0; i < n; i++ {
		d.data[i*n+i] = 1
	}
	return d, nil
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

// Shape returns (rows, cols).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}
	return row*m.c + col, nil
}

// At returns the element at (row, col) or ErrOutOfRange.
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}
	return m.data[idx], nil
}

// Set assigns v at (row, col). NaN/Inf are rejected with ErrNaNInf.
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[idx] = v
	return nil
}

// Clone returns a deep copy as Matrix.
func (m *Dense) Clone() Matrix { return m.CloneDense() }

// CloneDense returns a deep copy with the concrete type preserved.
func (m *Dense) CloneDense() *Dense {
	buf := make([]float64, len(m.data))
	copy(buf, m.data)
	return &Dense{r: m.r, c: m.c, data: buf}
}

// Row returns a copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])
	return out, nil
}

// Col returns a copy of column j.
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf(ctxCol, 0, j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	var i int
	for i = 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}
	return out, nil
}

// RawData returns a copy of the row-major buffer.
func (m *Dense) RawData() []float64 {
	out := make([]float64, len(m.data))
	copy(out, m.data)
	return out
}

// ToRows returns the matrix as a slice of row copies.
func (m *Dense) ToRows() [][]float64 {
	out := make([][]float64, m.r)
	var i int
	for i = 0; i < m.r; i++ {
		out[i] = make([]float64, m.c)
		copy(out[i], m.data[i*m.c:(i+1)*m.c])
	}
	return out
}

// String renders the matrix row by row, e.g. "[1, 0.5]\n[0.5, 1]\n".
func (m *Dense) String() string {
	var (
		sb   strings.Builder
		i, j int
	)
	for i = 0; i < m.r; i++ {
		sb.WriteString(_fmtRowOpen)
		for j = 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(_fmtSep)
			}
			sb.WriteString(fmt.Sprintf("%g", m.data[i*m.c+j]))
		}
		sb.WriteString(_fmtRowClose)
	}
	return sb.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
