package synth_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/makecases"
	"github.com/katalvlaran/makecases/correlation"
	"github.com/katalvlaran/makecases/distribution"
	"github.com/katalvlaran/makecases/synth"
)

func TestParseOrthog(t *testing.T) {
	t.Parallel()
	cases := map[string]synth.Orthog{
		"factor":   true,
		"FACTOR":   true,
		"nofactor": false,
		"":         false,
		"true":     true,
		"0":        false,
	}
	for in, want := range cases {
		got, err := synth.ParseOrthog(in)
		require.NoErrorf(t, err, "input %q", in)
		assert.Equalf(t, want, got, "input %q", in)
	}
	_, err := synth.ParseOrthog("maybe")
	require.ErrorIs(t, err, makecases.ErrInvalidParameters)
	assert.Equal(t, "factor", synth.Orthog(true).String())
}

func TestOrthog_JSON(t *testing.T) {
	t.Parallel()
	var req synth.Request
	require.NoError(t, json.Unmarshal([]byte(`{"orthogonalize":"factor"}`), &req))
	assert.True(t, bool(req.Orthogonalize))
	require.NoError(t, json.Unmarshal([]byte(`{"orthogonalize":false}`), &req))
	assert.False(t, bool(req.Orthogonalize))
	require.Error(t, json.Unmarshal([]byte(`{"orthogonalize":3}`), &req))
}

func TestLoadRecipe(t *testing.T) {
	t.Parallel()
	const recipe = `
dataset: survey
numvars: 4
numcases: 500
distribution: Uniform
params: [0, 1]
orthogonalize: factor
structure: toeplitz
corrs: [1, 0.5, 0.25, 0.125]
seed: 7
`
	req, err := synth.LoadRecipe(strings.NewReader(recipe), synth.DefaultRequest())
	require.NoError(t, err)
	assert.Equal(t, "survey", req.Dataset)
	assert.Equal(t, 4, req.NumVars)
	assert.Equal(t, distribution.Name("Uniform"), req.Distribution)
	assert.True(t, bool(req.Orthogonalize))
	assert.True(t, req.Display, "display keeps its default")
	assert.Equal(t, uint64(7), req.Seed)
	require.NoError(t, req.Validate())

	_, err = synth.LoadRecipe(strings.NewReader("dataset: x\nnumvar: 3\n"), synth.DefaultRequest())
	require.Error(t, err, "unknown keys are rejected")
}

func TestLoadRecipe_KeepsBase(t *testing.T) {
	t.Parallel()
	base := synth.DefaultRequest()
	base.Display = false
	base.Seed = 11

	tests := []struct {
		name        string
		recipe      string
		wantDisplay bool
		wantSeed    uint64
	}{
		{"omitted keys keep the base", "dataset: a\nnumvars: 2\n", false, 11},
		{"recipe keys win", "dataset: a\ndisplay: true\nseed: 3\n", true, 3},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req, err := synth.LoadRecipe(strings.NewReader(tt.recipe), base)
			require.NoError(t, err)
			assert.Equal(t, "a", req.Dataset)
			assert.Equal(t, tt.wantDisplay, req.Display)
			assert.Equal(t, tt.wantSeed, req.Seed)
			assert.Equal(t, correlation.None, req.Structure)
		})
	}
}

func TestLoadRecipeFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dataset: d\nnumvars: 1\nnumcases: 1\ndistribution: poisson\nparams: [3]\ndisplay: false\n"), 0o600))

	req, err := synth.LoadRecipeFile(path, synth.DefaultRequest())
	require.NoError(t, err)
	assert.False(t, req.Display)
	assert.Equal(t, correlation.None, req.Structure)
	require.NoError(t, req.Validate())

	_, err = synth.LoadRecipeFile(filepath.Join(t.TempDir(), "missing.yaml"), synth.DefaultRequest())
	require.Error(t, err)
}

func TestRequestValidate_SizeLimits(t *testing.T) {
	t.Parallel()
	base := synth.DefaultRequest()
	base.Dataset = "big"
	base.Distribution = distribution.Normal
	base.Params = []float64{0, 1}

	tests := []struct {
		name      string
		vars, cas int
		wantErr   bool
	}{
		{"at the cell limit", 1024, synth.MaxCells / 1024, false},
		{"one case over the cell limit", 1024, synth.MaxCells/1024 + 1, true},
		{"max vars", synth.MaxVars, 1, false},
		{"over max vars", synth.MaxVars + 1, 1, true},
		{"product wraps to zero", 1 << 32, 1 << 32, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := base
			req.NumVars, req.NumCases = tt.vars, tt.cas
			err := req.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, makecases.ErrInvalidParameters)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRequestValidate_ConflictBeforeShape(t *testing.T) {
	t.Parallel()
	req := synth.Request{Structure: "none", Corrs: []float64{0.2}}
	require.ErrorIs(t, req.Validate(), makecases.ErrConflictingInput)
}
