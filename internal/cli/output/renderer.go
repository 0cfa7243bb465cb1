// Package output renders CLI results as styled tables, markdown, JSON, YAML or CSV.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/makecases/dataset"
	"github.com/katalvlaran/makecases/matrix"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
	ModeCSV      Mode = "csv"
)

// Renderer writes results in one mode.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	mode    Mode
	printer *message.Printer
}

// NewRenderer returns a renderer for out. Diagnostics go to errOut.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{out: out, errOut: errOut, mode: mode, printer: message.NewPrinter(language.English)}
}

// Out returns the primary writer.
func (r *Renderer) Out() io.Writer { return r.out }

// EffectiveMode resolves auto: text on a terminal, markdown otherwise.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return ModeText
	}
	return ModeMarkdown
}

// Structured reports whether the mode is a machine format (json or yaml).
func (r *Renderer) Structured() bool {
	m := r.EffectiveMode()
	return m == ModeJSON || m == ModeYAML
}

// Value encodes v as JSON or YAML depending on the mode (JSON for non-structured modes).
func (r *Renderer) Value(v any) error {
	if r.EffectiveMode() == ModeYAML {
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Println writes one line to the primary writer.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Warn writes a diagnostic line.
func (r *Renderer) Warn(format string, args ...any) {
	_, _ = fmt.Fprintf(r.errOut, "warning: "+format+"\n", args...)
}

// Count formats n with thousands separators.
func (r *Renderer) Count(n int) string {
	return r.printer.Sprintf("%d", n)
}

// render emits t in the table flavour matching the mode.
func (r *Renderer) render(t table.Writer) {
	t.SetOutputMirror(r.out)
	switch r.EffectiveMode() {
	case ModeMarkdown:
		t.RenderMarkdown()
	case ModeCSV:
		t.RenderCSV()
	default:
		t.SetStyle(table.StyleLight)
		t.Render()
	}
}

// Matrix renders a square matrix with V1..Vn headers and F8.3 cells.
func (r *Renderer) Matrix(title string, m *matrix.Dense) {
	names := dataset.VariableNames(m.Cols())
	t := table.NewWriter()
	if title != "" && r.EffectiveMode() != ModeCSV {
		t.SetTitle(title)
	}
	header := table.Row{""}
	for _, n := range names {
		header = append(header, n)
	}
	t.AppendHeader(header)
	for i, row := range m.ToRows() {
		cells := table.Row{names[i]}
		for _, v := range row {
			cells = append(cells, fmt.Sprintf("%8.3f", v))
		}
		t.AppendRow(cells)
	}
	alignRight(t, len(names)+1)
	r.render(t)
}

// Preview renders up to limit cases of ds with two-decimal cells. limit ≤ 0 shows all.
func (r *Renderer) Preview(ds *dataset.Dataset, limit int) {
	n := ds.NumCases()
	if limit > 0 && limit < n {
		n = limit
	}
	t := table.NewWriter()
	header := table.Row{}
	for _, c := range ds.Header() {
		header = append(header, c)
	}
	t.AppendHeader(header)
	raw := ds.Data.RawData()
	cols := ds.NumVars()
	for i := 0; i < n; i++ {
		row := table.Row{ds.CaseIDs[i]}
		for j := 0; j < cols; j++ {
			row = append(row, strconv.FormatFloat(raw[i*cols+j], 'f', 2, 64))
		}
		t.AppendRow(row)
	}
	alignRight(t, cols+1)
	r.render(t)
	if n < ds.NumCases() && r.EffectiveMode() != ModeCSV {
		r.Println(fmt.Sprintf("(%s of %s cases)", r.Count(n), r.Count(ds.NumCases())))
	}
}

// Summaries renders a registry listing.
func (r *Renderer) Summaries(list []dataset.Summary) {
	if len(list) == 0 {
		r.Println("(no datasets)")
		return
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Variables", "Cases", "Distribution", "Structure", "Orthogonalized", "Seed", "Created"})
	for _, s := range list {
		t.AppendRow(table.Row{
			s.Name,
			s.NumVars,
			r.Count(s.NumCases),
			s.Meta.Distribution,
			s.Meta.Structure,
			s.Meta.Orthogonalized,
			s.Meta.Seed,
			s.Meta.Created.Format("2006-01-02 15:04:05"),
		})
	}
	r.render(t)
}

func alignRight(t table.Writer, cols int) {
	cfgs := make([]table.ColumnConfig, cols)
	for i := range cfgs {
		cfgs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignRight}
	}
	t.SetColumnConfigs(cfgs)
}
