package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/makecases/dataset"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored datasets",
		Example: `  makecases list
  makecases list -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := cc.Registry.List(cmd.Context())
			if err != nil {
				return err
			}
			if cc.Renderer.Structured() {
				if list == nil {
					list = []dataset.Summary{}
				}
				return cc.Renderer.Value(list)
			}
			cc.Renderer.Summaries(list)
			return nil
		},
	}
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <dataset>",
		Short: "Show a dataset's metadata and first cases",
		Example: `  makecases show sim
  makecases show sim --rows 50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ds, err := cc.Registry.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r := cc.Renderer
			if r.Structured() {
				return r.Value(ds.Summary())
			}
			rows, _ := cmd.Flags().GetInt("rows")
			r.Summaries([]dataset.Summary{ds.Summary()})
			r.Println("")
			r.Preview(ds, rows)
			return nil
		},
	}
	cmd.Flags().Int("rows", 10, "Number of cases to show (0 shows all)")
	return cmd
}

// NewDropCommand creates the drop command.
func NewDropCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "drop <dataset>...",
		Aliases: []string{"rm"},
		Short:   "Delete datasets from the registry",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, name := range args {
				if err := cc.Registry.Delete(cmd.Context(), name); err != nil {
					return err
				}
				cc.Logger.Info("dataset dropped", "dataset", name)
				if !cc.Renderer.Structured() {
					cc.Renderer.Println(fmt.Sprintf("Dropped %s", name))
				}
			}
			return nil
		},
	}
}
