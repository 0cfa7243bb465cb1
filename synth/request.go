package synth

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/makecases"
	"github.com/katalvlaran/makecases/correlation"
	"github.com/katalvlaran/makecases/dataset"
	"github.com/katalvlaran/makecases/distribution"
)

// Request is one generation job.
type Request struct {
	Dataset       string                `json:"dataset" yaml:"dataset"`
	NumVars       int                   `json:"numvars" yaml:"numvars"`
	NumCases      int                   `json:"numcases" yaml:"numcases"`
	Distribution  distribution.Name     `json:"distribution" yaml:"distribution"`
	Params        []float64             `json:"params" yaml:"params"`
	Orthogonalize Orthog                `json:"orthogonalize" yaml:"orthogonalize"`
	Structure     correlation.Structure `json:"structure" yaml:"structure"`
	Corrs         []float64             `json:"corrs,omitempty" yaml:"corrs,omitempty"`
	// Display shows the target correlation matrix before it is applied.
	Display bool `json:"display" yaml:"display"`
	// Seed 0 asks for a time-derived seed; the effective seed is kept in dataset.Meta.
	Seed      uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	NoReplace bool   `json:"no_replace,omitempty" yaml:"no_replace,omitempty"`
}

// Size limits, checked before any engine call.
const (
	// MaxVars bounds numvars and so the order of the target correlation matrix.
	MaxVars = 4096
	// MaxCells bounds numvars×numcases of one dataset (1 GiB of float64).
	MaxCells = 1 << 27
)

// checkVars rejects a variable count the target matrix cannot be built for.
func checkVars(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: numvars must be at least 1, got %d", makecases.ErrInvalidParameters, n)
	}
	if n > MaxVars {
		return fmt.Errorf("%w: numvars must be at most %d, got %d", makecases.ErrInvalidParameters, MaxVars, n)
	}
	return nil
}

// DefaultRequest returns the defaults decoding starts from: structure NONE, display on.
func DefaultRequest() Request {
	return Request{Structure: correlation.None, Display: true}
}

// plan is a validated Request.
type plan struct {
	expr   distribution.Expression
	corr   correlation.Spec
	params []float64
}

// Validate checks the whole request without touching an engine or registry.
//
// Order: structure parameters with NONE (ErrConflictingInput) come first, then the
// request shape, the distribution and the correlation arity (ErrInvalidParameters).
func (r Request) Validate() error {
	_, err := r.plan()
	return err
}

func (r Request) plan() (plan, error) {
	structure, err := correlation.ParseStructure(string(r.Structure))
	if err != nil {
		return plan{}, err
	}
	if structure == correlation.None && len(r.Corrs) > 0 {
		return plan{}, fmt.Errorf("%w: correlation parameters were given but the structure is NONE",
			makecases.ErrConflictingInput)
	}
	if err = dataset.ValidateName(r.Dataset); err != nil {
		return plan{}, err
	}
	if err = checkVars(r.NumVars); err != nil {
		return plan{}, err
	}
	if r.NumCases < 1 {
		return plan{}, fmt.Errorf("%w: numcases must be at least 1, got %d", makecases.ErrInvalidParameters, r.NumCases)
	}
	if r.NumCases > MaxCells/r.NumVars {
		return plan{}, fmt.Errorf("%w: %d cases of %d variables exceed the limit of %d cells",
			makecases.ErrInvalidParameters, r.NumCases, r.NumVars, MaxCells)
	}

	name, err := distribution.ParseName(string(r.Distribution))
	if err != nil {
		return plan{}, err
	}
	if len(r.Params) < 1 || len(r.Params) > distribution.MaxParams {
		return plan{}, fmt.Errorf("%w: between 1 and %d distribution parameters are required, got %d",
			makecases.ErrInvalidParameters, distribution.MaxParams, len(r.Params))
	}
	expr, err := distribution.Build(name, r.Params)
	if err != nil {
		return plan{}, err
	}

	want, err := correlation.Arity(structure, r.NumVars)
	if err != nil {
		return plan{}, err
	}
	if len(r.Corrs) != want {
		return plan{}, fmt.Errorf("%w: %s correlations for %d variables require %d parameters, got %d",
			makecases.ErrInvalidParameters, structure, r.NumVars, want, len(r.Corrs))
	}

	return plan{
		expr:   expr,
		corr:   correlation.Spec{Structure: structure, Params: append([]float64(nil), r.Corrs...)},
		params: append([]float64(nil), r.Params...),
	}, nil
}

// Orthog is the orthogonalize switch. It decodes from a boolean or from the
// keywords factor / nofactor.
type Orthog bool

// ParseOrthog accepts factor, nofactor and the strconv boolean spellings.
func ParseOrthog(s string) (Orthog, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "factor":
		return true, nil
	case "nofactor", "":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%w: orthogonalize must be factor or nofactor, got %q",
			makecases.ErrInvalidParameters, s)
	}
	return Orthog(b), nil
}

// String returns factor or nofactor.
func (o Orthog) String() string {
	if o {
		return "factor"
	}
	return "nofactor"
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Orthog) UnmarshalYAML(n *yaml.Node) error {
	v, err := ParseOrthog(n.Value)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Orthog) UnmarshalJSON(b []byte) error {
	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		*o = Orthog(flag)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: orthogonalize must be a boolean or a string", makecases.ErrInvalidParameters)
	}
	v, err := ParseOrthog(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// LoadRecipe decodes a YAML generation recipe on top of base; keys the recipe
// omits keep their base values. Unknown keys are rejected.
func LoadRecipe(r io.Reader, base Request) (Request, error) {
	req := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("failed to decode recipe: %w", err)
	}
	return req, nil
}

// LoadRecipeFile reads a recipe from path on top of base.
func LoadRecipeFile(path string, base Request) (Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return Request{}, fmt.Errorf("failed to open recipe: %w", err)
	}
	defer f.Close()
	return LoadRecipe(f, base)
}
