package output_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/makecases/dataset"
	"github.com/katalvlaran/makecases/internal/cli/output"
	"github.com/katalvlaran/makecases/matrix"
)

func newRenderer(mode output.Mode) (*output.Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return output.NewRenderer(&out, &errOut, mode), &out, &errOut
}

func TestEffectiveMode(t *testing.T) {
	r, _, _ := newRenderer(output.ModeAuto)
	assert.Equal(t, output.ModeMarkdown, r.EffectiveMode(), "a buffer is not a terminal")

	r, _, _ = newRenderer(output.ModeYAML)
	assert.Equal(t, output.ModeYAML, r.EffectiveMode())
	assert.True(t, r.Structured())
}

func TestMatrix_Text(t *testing.T) {
	r, out, _ := newRenderer(output.ModeText)
	m, err := matrix.NewDenseRows([][]float64{{1, 0.25}, {0.25, 1}})
	require.NoError(t, err)

	r.Matrix("Correlation Matrix Specified for New Random Dataset sim", m)
	s := out.String()
	assert.Contains(t, s, "Correlation Matrix Specified for New Random Dataset sim")
	assert.Contains(t, s, "V2")
	assert.Contains(t, s, "1.000")
	assert.Contains(t, s, "0.250")
}

func TestMatrix_Markdown(t *testing.T) {
	r, out, _ := newRenderer(output.ModeMarkdown)
	m, err := matrix.NewDenseRows([][]float64{{1}})
	require.NoError(t, err)

	r.Matrix("", m)
	assert.True(t, strings.HasPrefix(out.String(), "|"), out.String())
}

func TestPreview(t *testing.T) {
	r, out, _ := newRenderer(output.ModeCSV)
	m, err := matrix.NewDenseRows([][]float64{{1.234, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	ds, err := dataset.New("p", m, dataset.Meta{})
	require.NoError(t, err)

	r.Preview(ds, 2)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,V1,V2", lines[0])
	assert.Equal(t, "1,1.23,2.00", lines[1])
}

func TestPreview_TruncationNote(t *testing.T) {
	r, out, _ := newRenderer(output.ModeText)
	m, err := matrix.NewDense(1500, 1)
	require.NoError(t, err)
	ds, err := dataset.New("big", m, dataset.Meta{})
	require.NoError(t, err)

	r.Preview(ds, 5)
	assert.Contains(t, out.String(), "(5 of 1,500 cases)")
}

func TestSummaries(t *testing.T) {
	r, out, _ := newRenderer(output.ModeMarkdown)
	r.Summaries(nil)
	assert.Contains(t, out.String(), "(no datasets)")

	out.Reset()
	r.Summaries([]dataset.Summary{{
		Name: "sim", NumVars: 3, NumCases: 12000,
		Meta: dataset.Meta{Distribution: "normal(0,1)", Structure: "EQUAL", Created: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}})
	s := out.String()
	assert.Contains(t, s, "sim")
	assert.Contains(t, s, "12,000")
	assert.Contains(t, s, "2024-01-02 03:04:05")
}

func TestValue(t *testing.T) {
	r, out, _ := newRenderer(output.ModeYAML)
	require.NoError(t, r.Value(map[string]int{"numvars": 3}))
	assert.Equal(t, "numvars: 3\n", out.String())

	r, out, _ = newRenderer(output.ModeJSON)
	require.NoError(t, r.Value(map[string]int{"numvars": 3}))
	assert.JSONEq(t, `{"numvars":3}`, out.String())
}

func TestWarn(t *testing.T) {
	r, _, errOut := newRenderer(output.ModeText)
	r.Warn("dataset %s replaced", "sim")
	assert.Equal(t, "warning: dataset sim replaced\n", errOut.String())
}
