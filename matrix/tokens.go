// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"strconv"
	"strings"
)

// Token separators of the text form: rows are joined by RowSep, cells by CellSep.
const (
	RowSep  = ";"
	CellSep = ","
)

// FormatTokens renders m as decimal tokens, e.g. "1,0.5;0.5,1".
// Cells use the shortest 'g' representation, so ParseTokens(FormatTokens(m)) is exact.
func FormatTokens(m Matrix) (string, error) {
	if err := ValidateNotNil(m); err != nil {
		return "", err
	}
	var (
		sb   strings.Builder
		i, j int
		v    float64
		err  error
	)
	for i = 0; i < m.Rows(); i++ {
		if i > 0 {
			sb.WriteString(RowSep)
		}
		for j = 0; j < m.Cols(); j++ {
			if j > 0 {
				sb.WriteString(CellSep)
			}
			if v, err = m.At(i, j); err != nil {
				return "", err
			}
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
	}
	return sb.String(), nil
}

// ParseTokens is the inverse of FormatTokens. Whitespace around tokens is ignored;
// an empty string yields a 0×0 matrix.
//
// Errors:
//   - ErrBadToken on an unparsable cell or rows of unequal length.
//   - ErrNaNInf on non-finite cells.
func ParseTokens(s string) (*Dense, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NewDense(0, 0)
	}
	rowsTxt := strings.Split(s, RowSep)
	rows := make([][]float64, len(rowsTxt))
	var (
		i, j  int
		cells []string
		v     float64
		err   error
	)
	for i = range rowsTxt {
		cells = strings.Split(rowsTxt[i], CellSep)
		rows[i] = make([]float64, len(cells))
		for j = range cells {
			v, err = strconv.ParseFloat(strings.TrimSpace(cells[j]), 64)
			if err != nil {
				return nil, fmt.Errorf("ParseTokens: row %d cell %d %q: %w", i+1, j+1, cells[j], ErrBadToken)
			}
			rows[i][j] = v
		}
		if len(rows[i]) != len(rows[0]) {
			return nil, fmt.Errorf("ParseTokens: row %d has %d cells, want %d: %w", i+1, len(rows[i]), len(rows[0]), ErrBadToken)
		}
	}
	return NewDenseRows(rows)
}
