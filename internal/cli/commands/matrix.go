package commands

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/makecases/correlation"
	"github.com/katalvlaran/makecases/dataset"
	"github.com/katalvlaran/makecases/matrix"
	"github.com/katalvlaran/makecases/synth"
)

// matrixResult is the structured form of the matrix command.
type matrixResult struct {
	NumVars   int         `json:"numvars" yaml:"numvars"`
	Structure string      `json:"structure" yaml:"structure"`
	Target    string      `json:"target" yaml:"target"`
	Rows      [][]float64 `json:"rows" yaml:"rows"`
}

// NewMatrixCommand creates the matrix command.
func NewMatrixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Build a correlation matrix without generating data",
		Long: `Build the target correlation matrix for a structure and print it, first as a
single token string (rows separated by ';', cells by ',') and then as a table.

With --check the matrix is also factorized, which fails when it is not positive
definite.`,
		Example: `  makecases matrix --numvars 4 --structure toeplitz --corrs 1,0.6,0.3,0.1
  makecases matrix --numvars 3 --structure random --corrs -0.2,0.6 --seed 11 --check`,
		RunE: runMatrix,
	}

	f := cmd.Flags()
	f.Int("numvars", 0, "Number of variables")
	f.String("structure", string(correlation.Equal), "Correlation structure")
	f.Float64Slice("corrs", nil, "Correlation structure parameters")
	f.Uint64("seed", 0, "Seed for RANDOM structures (0 derives one from the clock)")
	f.Bool("check", false, "Factorize the matrix to confirm it is positive definite")
	return cmd
}

func runMatrix(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContextWithoutRegistry(cmd)
	f := cmd.Flags()

	var req synth.MatrixRequest
	req.NumVars, _ = f.GetInt("numvars")
	s, _ := f.GetString("structure")
	req.Structure = correlation.Structure(s)
	req.Corrs, _ = f.GetFloat64Slice("corrs")
	req.Seed, _ = f.GetUint64("seed")
	check, _ := f.GetBool("check")

	p := synth.New(localEngines(cc), dataset.NewMemoryRegistry(), synth.WithLogger(cc.Logger))
	m, err := p.Matrix(cmd.Context(), req, check)
	if err != nil {
		return err
	}
	tokens, err := matrix.FormatTokens(m)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.Structured() {
		st, _ := correlation.ParseStructure(s)
		return r.Value(matrixResult{NumVars: m.Rows(), Structure: st.String(), Target: tokens, Rows: m.ToRows()})
	}
	r.Println(tokens)
	r.Println("")
	r.Matrix("", m)
	return nil
}
