// Package correlation builds target correlation matrices from a structure type
// and a flat parameter list.
//
// Structures and their arities for n variables:
//
//	EQUAL      1          off-diagonal ρ, diagonal 1
//	TOEPLITZ   n          cell(i,j) = p[|i−j|], p[0] must be 1
//	FA         n+1        d, λ1..λn; cell(i,j) = λiλj, cell(i,i) = λi² + d
//	ARBITRARY  n(n+1)/2   lower triangle incl. diagonal, row by row, mirrored
//	RANDOM     2          low, high; each i<j drawn once from U[low,high], mirrored
//	NONE       0          no matrix; the correlate stage is skipped
//
// Positive-definiteness is not checked here. A matrix that cannot be factorized
// is reported by the engine when the correlate stage runs.
package correlation

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/makecases"
)

// Structure is a correlation structure type.
type Structure string

// Supported structures.
const (
	None      Structure = "NONE"
	Equal     Structure = "EQUAL"
	Toeplitz  Structure = "TOEPLITZ"
	FA        Structure = "FA"
	Arbitrary Structure = "ARBITRARY"
	Random    Structure = "RANDOM"
)

// Structures lists every structure in documentation order.
func Structures() []Structure {
	return []Structure{None, Equal, Toeplitz, FA, Arbitrary, Random}
}

// ParseStructure resolves a structure name case-insensitively. The empty string is None.
func ParseStructure(s string) (Structure, error) {
	v := Structure(strings.ToUpper(strings.TrimSpace(s)))
	if v == "" {
		return None, nil
	}
	for _, st := range Structures() {
		if st == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: invalid correlation type %q", makecases.ErrInvalidParameters, s)
}

// String returns the upper-case structure name.
func (s Structure) String() string { return string(s) }

// Arity returns the exact number of parameters the structure requires for numvar variables.
func Arity(s Structure, numvar int) (int, error) {
	if numvar < 1 {
		return 0, fmt.Errorf("%w: number of variables must be at least 1, got %d", makecases.ErrInvalidParameters, numvar)
	}
	switch s {
	case None:
		return 0, nil
	case Equal:
		return 1, nil
	case Toeplitz:
		return numvar, nil
	case FA:
		return numvar + 1, nil
	case Arbitrary:
		return numvar * (numvar + 1) / 2, nil
	case Random:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: invalid correlation type %q", makecases.ErrInvalidParameters, string(s))
	}
}

// Spec is a structure type plus its flat parameter list.
type Spec struct {
	Structure Structure `json:"structure" yaml:"structure"`
	Params    []float64 `json:"params,omitempty" yaml:"params,omitempty"`
}
