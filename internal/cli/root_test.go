package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/makecases"
	"github.com/katalvlaran/makecases/dataset"
	"github.com/katalvlaran/makecases/matrix"
)

// runCLI executes the root command against a registry file in dir.
func runCLI(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--registry", "sqlite", "--dsn", filepath.Join(dir, "cases.db")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

var equalArgs = []string{
	"generate", "-d", "sim",
	"--numvars", "3", "--numcases", "300",
	"--distribution", "uniform", "--params", "0,1",
	"--orthogonalize", "factor",
	"--structure", "equal", "--corrs", "0.4",
	"--seed", "42",
}

func TestGenerate_Text(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runCLI(t, dir, append([]string{"-o", "text"}, equalArgs...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Correlation Matrix Specified for New Random Dataset sim")
	assert.Contains(t, out, "Dataset sim created: 3 variables × 300 cases")
	assert.Contains(t, out, "Structure:      EQUAL")
	assert.Contains(t, out, "Seed:           42")
}

func TestGenerate_StructureName(t *testing.T) {
	tests := []struct {
		structure string
		corrs     string
		want      string
	}{
		{"equal", "0.3", "Structure:      EQUAL"},
		{"fa", "0.4,0.6,0.7", "Structure:      FA"},
		{"toeplitz", "1,0.2", "Structure:      TOEPLITZ"},
	}
	for _, tt := range tests {
		t.Run(tt.structure, func(t *testing.T) {
			out, _, err := runCLI(t, t.TempDir(), "-o", "text", "generate", "-d", "s",
				"--numvars", "2", "--numcases", "20", "--distribution", "normal", "--params", "0,1",
				"--structure", tt.structure, "--corrs", tt.corrs, "--display=false")
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestGenerate_NoDisplay(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runCLI(t, dir, append([]string{"-o", "text"}, append(equalArgs, "--display=false")...)...)
	require.NoError(t, err)
	assert.NotContains(t, out, "Correlation Matrix Specified")
}

func TestRegistryLifecycle(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, dir, equalArgs...)
	require.NoError(t, err)

	out, _, err := runCLI(t, dir, "list", "-o", "json")
	require.NoError(t, err)
	var list []dataset.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "sim", list[0].Name)
	assert.True(t, list[0].Meta.Orthogonalized)
	assert.Equal(t, "1,0.4,0.4;0.4,1,0.4;0.4,0.4,1", list[0].Meta.Target)

	out, _, err = runCLI(t, dir, "verify", "sim", "-o", "json")
	require.NoError(t, err)
	var v struct {
		MaxAbsDelta float64 `json:"max_abs_delta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Less(t, v.MaxAbsDelta, 1e-8, "orthogonalized data carries the target exactly")

	csvPath := filepath.Join(dir, "sim.csv")
	_, _, err = runCLI(t, dir, "export", "sim", "--file", csvPath)
	require.NoError(t, err)
	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 301)
	assert.Equal(t, "ID,V1,V2,V3", lines[0])

	out, _, err = runCLI(t, dir, "show", "sim", "--rows", "3", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "(3 of 300 cases)")

	_, _, err = runCLI(t, dir, "drop", "sim")
	require.NoError(t, err)
	_, _, err = runCLI(t, dir, "show", "sim")
	require.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestVerify_FactorTarget(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, dir, "generate", "-d", "fa",
		"--numvars", "3", "--numcases", "200", "--distribution", "normal", "--params", "0,1",
		"--orthogonalize", "factor", "--structure", "fa", "--corrs", "0.4,0.6,0.7,0.5", "--seed", "3")
	require.NoError(t, err)

	out, _, err := runCLI(t, dir, "verify", "fa", "-o", "json")
	require.NoError(t, err)
	var v struct {
		Target      [][]float64 `json:"target"`
		MaxAbsDelta float64     `json:"max_abs_delta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Less(t, v.MaxAbsDelta, 1e-8, "the diagonal λ²+d is rescaled away")
	for i := range v.Target {
		assert.Equal(t, 1.0, v.Target[i][i])
	}
}

func TestGenerate_NoReplace(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runCLI(t, dir, equalArgs...)
	require.NoError(t, err)

	_, _, err = runCLI(t, dir, append(equalArgs, "--no-replace")...)
	require.ErrorIs(t, err, dataset.ErrNameConflict)

	_, _, err = runCLI(t, dir, equalArgs...)
	require.NoError(t, err, "replacing is the default")
}

func TestGenerate_RecipeWithOverrides(t *testing.T) {
	dir := t.TempDir()
	recipe := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(recipe, []byte(`
dataset: fromrecipe
numvars: 2
numcases: 50
distribution: normal
params: [10, 2]
structure: TOEPLITZ
corrs: [1, 0.3]
display: false
seed: 5
`), 0o600))

	out, _, err := runCLI(t, dir, "generate", "--recipe", recipe, "--numcases", "75", "-o", "json")
	require.NoError(t, err)
	var sum dataset.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, "fromrecipe", sum.Name)
	assert.Equal(t, 75, sum.NumCases)
	assert.Equal(t, "normal(10,2)", sum.Meta.Distribution)
	assert.Equal(t, uint64(5), sum.Meta.Seed)
}

func TestGenerate_RecipeKeepsConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "makecases.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("generate:\n  display: false\n  seed: 9\n"), 0o600))

	const body = `
dataset: layered
numvars: 3
numcases: 40
distribution: uniform
params: [0, 1]
structure: EQUAL
corrs: [0.3]
`
	tests := []struct {
		name        string
		extra       string
		wantDisplay bool
		wantSeed    string
	}{
		{"config values apply", "", false, "Seed:           9"},
		{"recipe overrides config", "display: true\nseed: 4\n", true, "Seed:           4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe := filepath.Join(dir, "layered.yaml")
			require.NoError(t, os.WriteFile(recipe, []byte(body+tt.extra), 0o600))

			out, _, err := runCLI(t, dir, "--config", cfgPath, "-o", "text", "generate", "--recipe", recipe)
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantSeed)
			if tt.wantDisplay {
				assert.Contains(t, out, "Correlation Matrix Specified")
			} else {
				assert.NotContains(t, out, "Correlation Matrix Specified")
			}
		})
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{
			name: "bad orthogonalize keyword",
			args: []string{"generate", "-d", "x", "--numvars", "2", "--numcases", "5",
				"--distribution", "normal", "--params", "0,1", "--orthogonalize", "maybe"},
			want: makecases.ErrInvalidParameters,
		},
		{
			name: "corrs without structure",
			args: []string{"generate", "-d", "x", "--numvars", "2", "--numcases", "5",
				"--distribution", "normal", "--params", "0,1", "--corrs", "0.2"},
			want: makecases.ErrConflictingInput,
		},
		{
			name: "not positive definite",
			args: []string{"generate", "-d", "x", "--numvars", "3", "--numcases", "5",
				"--distribution", "normal", "--params", "0,1", "--structure", "equal", "--corrs", "-0.9"},
			want: makecases.ErrDelegateExecution,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, _, err := runCLI(t, dir, tt.args...)
			require.ErrorIs(t, err, tt.want)

			out, _, err := runCLI(t, dir, "list", "-o", "json")
			require.NoError(t, err)
			assert.JSONEq(t, "[]", out, "nothing is registered on failure")
		})
	}
}

func TestGenerate_EngineConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "makecases.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("engine:\n  eigen_max_iter: 1\n"), 0o600))

	_, _, err := runCLI(t, dir, append([]string{"--config", cfgPath}, equalArgs...)...)
	require.ErrorIs(t, err, matrix.ErrMatrixEigenFailed, "one Jacobi rotation cannot diagonalize three variables")
	require.ErrorIs(t, err, makecases.ErrDelegateExecution)

	_, _, err = runCLI(t, dir, equalArgs...)
	require.NoError(t, err)
}

func TestMatrixCommand(t *testing.T) {
	dir := t.TempDir()
	out, _, err := runCLI(t, dir, "matrix", "--numvars", "3", "--structure", "toeplitz", "--corrs", "1,0.5,0.25", "-o", "json")
	require.NoError(t, err)
	var got struct {
		Structure string `json:"structure"`
		Target    string `json:"target"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "TOEPLITZ", got.Structure)
	assert.Equal(t, "1,0.5,0.25;0.5,1,0.5;0.25,0.5,1", got.Target)

	_, _, err = runCLI(t, dir, "matrix", "--numvars", "3", "--corrs", "-0.9", "--check")
	require.ErrorIs(t, err, makecases.ErrDelegateExecution)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, _, err := runCLI(t, t.TempDir(), "export", "sim", "--format", "xml")
	require.ErrorContains(t, err, "unsupported export format")
}
