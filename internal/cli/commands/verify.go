package commands

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/makecases/matrix"
)

type verifyResult struct {
	Name        string      `json:"name" yaml:"name"`
	Sample      [][]float64 `json:"sample" yaml:"sample"`
	Target      [][]float64 `json:"target,omitempty" yaml:"target,omitempty"`
	MaxAbsDelta float64     `json:"max_abs_delta" yaml:"max_abs_delta"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <dataset>",
		Short: "Compare a dataset's sample correlations with its target",
		Long: `Compute the sample correlation matrix of a stored dataset and print it next to
the correlation matrix that was specified when it was generated, together with the
largest absolute difference. Targets whose diagonal is not 1 (FA) are rescaled to
correlation form first. Datasets generated with structure NONE are compared against
the identity.`,
		Args: cobra.ExactArgs(1),
		RunE: runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := cc.Registry.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if ds.NumCases() < 2 {
		return fmt.Errorf("dataset %s has %d case(s); at least 2 are needed", ds.Name, ds.NumCases())
	}

	sample, _, _, err := matrix.Correlation(ds.Data)
	if err != nil {
		return err
	}
	var target *matrix.Dense
	if ds.Meta.Target != "" {
		if target, err = matrix.ParseTokens(ds.Meta.Target); err != nil {
			return fmt.Errorf("dataset %s: stored target: %w", ds.Name, err)
		}
	} else if target, err = matrix.Identity(ds.NumVars()); err != nil {
		return err
	}

	target, delta, err := compareTarget(sample, target)
	if err != nil {
		return err
	}

	r := cc.Renderer
	if r.Structured() {
		return r.Value(verifyResult{Name: ds.Name, Sample: sample.ToRows(), Target: target.ToRows(), MaxAbsDelta: delta})
	}
	r.Matrix("Sample correlations "+ds.Name, sample)
	r.Println("")
	r.Matrix("Target correlations "+ds.Name, target)
	r.Println("")
	r.Println(fmt.Sprintf("Max |sample - target|: %.4f", delta))
	return nil
}

// compareTarget rescales target to correlation form and returns it with the largest
// cell-wise distance to sample.
func compareTarget(sample, target *matrix.Dense) (*matrix.Dense, float64, error) {
	if sample.Rows() != target.Rows() || sample.Cols() != target.Cols() {
		return nil, 0, fmt.Errorf("sample is %dx%d but target is %dx%d",
			sample.Rows(), sample.Cols(), target.Rows(), target.Cols())
	}
	corr, _, err := matrix.CovarianceToCorrelation(target)
	if err != nil {
		return nil, 0, fmt.Errorf("stored target: %w", err)
	}
	x, y := sample.RawData(), corr.RawData()
	var out float64
	for i := range x {
		out = math.Max(out, math.Abs(x[i]-y[i]))
	}
	return corr, out, nil
}
