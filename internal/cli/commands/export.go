package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/makecases/dataset"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <dataset>",
		Short: "Write a dataset as CSV or JSON",
		Long: `Write every case of a stored dataset. CSV output has a header row
(ID, V1..Vn); JSON output is a single document with the generation metadata.`,
		Example: `  makecases export sim > sim.csv
  makecases export sim --format json --file sim.json`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	cmd.Flags().String("format", "csv", "Export format (csv|json)")
	cmd.Flags().StringP("file", "f", "", "Write to file instead of stdout")
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"csv", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	format, _ := cmd.Flags().GetString("format")
	var write func(io.Writer, *dataset.Dataset) error
	switch strings.ToLower(format) {
	case "csv":
		write = dataset.WriteCSV
	case "json":
		write = dataset.WriteJSON
	default:
		return fmt.Errorf("unsupported export format %q (want csv or json)", format)
	}

	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ds, err := cc.Registry.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := cc.Renderer.Out()
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		f, ferr := os.Create(path) //nolint:gosec // path is user-supplied on purpose
		if ferr != nil {
			return fmt.Errorf("failed to create %s: %w", path, ferr)
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		w = f
		cc.Logger.Info("exporting dataset", "dataset", ds.Name, "file", path, "format", format)
	}
	return write(w, ds)
}
