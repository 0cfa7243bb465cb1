package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/makecases/internal/server"
	"github.com/katalvlaran/makecases/synth"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generator over HTTP",
		Long: `Start an HTTP server that generates, lists, exports and drops datasets in the
configured registry. The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  makecases serve --addr :9000
  makecases serve --registry duckdb --dsn cases.duckdb --origins http://localhost:3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			p := synth.New(localEngines(cc), cc.Registry, synth.WithLogger(cc.Logger))
			srv := server.New(p, cc.Logger, cc.Cfg.Server.AllowedOrigins)
			return srv.Serve(ctx, cc.Cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	cmd.Flags().StringSlice("origins", nil, "Allowed CORS origins (default *)")
	return cmd
}
