// Package dataset holds generated datasets and the registries they are finalized into.
//
// A Dataset is an explicit handle: the synthesis pipeline builds one, owns it while the
// stages run, and hands it to a Registry on Finalize. Registries key datasets by name;
// putting a dataset under an existing name replaces the old one unless the caller asks
// for no-replace, in which case ErrNameConflict is returned.
//
// Two registry types ship with the package:
//
//	MemoryRegistry  process-local map guarded by a mutex
//	SQLRegistry     SQLite (modernc.org/sqlite, goose migrations) or DuckDB (go-duckdb)
package dataset

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/katalvlaran/makecases"
	"github.com/katalvlaran/makecases/matrix"
)

// IDColumn names the case identifier column emitted alongside V1..Vn.
const IDColumn = "ID"

// MaxNameLen bounds dataset names.
const MaxNameLen = 64

var (
	// ErrNameConflict is returned by Put when a dataset of that name exists and
	// replacement was not allowed.
	ErrNameConflict = errors.New("dataset: name already in use")

	// ErrNotFound is returned when no dataset has the requested name.
	ErrNotFound = errors.New("dataset: not found")
)

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Meta records how a dataset was generated.
type Meta struct {
	Distribution    string    `json:"distribution" yaml:"distribution"`
	Params          []float64 `json:"params,omitempty" yaml:"params,omitempty"`
	Orthogonalized  bool      `json:"orthogonalized" yaml:"orthogonalized"`
	Structure       string    `json:"structure" yaml:"structure"`
	StructureParams []float64 `json:"structure_params,omitempty" yaml:"structure_params,omitempty"`
	// Target is the specified correlation matrix in token form; empty for NONE.
	Target  string    `json:"target,omitempty" yaml:"target,omitempty"`
	Seed    uint64    `json:"seed" yaml:"seed"`
	Created time.Time `json:"created" yaml:"created"`
}

// Dataset is a named numcases×numvar table of variates.
type Dataset struct {
	ID      string
	Name    string
	Columns []string
	CaseIDs []int
	Data    *matrix.Dense
	Meta    Meta
}

// Summary is the listing view of a Dataset, without its data.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	NumVars  int    `json:"numvars"`
	NumCases int    `json:"numcases"`
	Meta     Meta   `json:"meta"`
}

// ValidateName checks that name is a usable dataset identifier.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: dataset name is required", makecases.ErrInvalidParameters)
	}
	if len(name) > MaxNameLen || !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q is not a valid dataset name", makecases.ErrInvalidParameters, name)
	}
	return nil
}

// VariableNames returns V1..Vn.
func VariableNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "V" + strconv.Itoa(i+1)
	}
	return out
}

// New wraps data as a dataset called name with columns V1..Vn and case IDs 1..rows.
// data is owned by the returned Dataset.
func New(name string, data *matrix.Dense, meta Meta) (*Dataset, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := matrix.ValidateNotNil(data); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}
	ids := make([]int, data.Rows())
	for i := range ids {
		ids[i] = i + 1
	}
	return &Dataset{
		Name:    name,
		Columns: VariableNames(data.Cols()),
		CaseIDs: ids,
		Data:    data,
		Meta:    meta,
	}, nil
}

// NumVars is the number of variables.
func (d *Dataset) NumVars() int { return len(d.Columns) }

// NumCases is the number of cases.
func (d *Dataset) NumCases() int { return len(d.CaseIDs) }

// Summary returns the listing view.
func (d *Dataset) Summary() Summary {
	return Summary{ID: d.ID, Name: d.Name, NumVars: d.NumVars(), NumCases: d.NumCases(), Meta: d.Meta.clone()}
}

func (m Meta) clone() Meta {
	m.Params = append([]float64(nil), m.Params...)
	m.StructureParams = append([]float64(nil), m.StructureParams...)
	return m
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := *d
	out.Columns = append([]string(nil), d.Columns...)
	out.CaseIDs = append([]int(nil), d.CaseIDs...)
	out.Meta = d.Meta.clone()
	if d.Data != nil {
		out.Data = d.Data.CloneDense()
	}
	return &out
}
