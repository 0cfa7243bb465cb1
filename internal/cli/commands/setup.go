// Package commands implements the makecases subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/makecases/dataset"
	"github.com/katalvlaran/makecases/engine"
	"github.com/katalvlaran/makecases/internal/cli/config"
	"github.com/katalvlaran/makecases/internal/cli/output"
	"github.com/katalvlaran/makecases/synth"
)

// CommandContext holds common dependencies for command execution.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Registry dataset.Registry
	Renderer *output.Renderer
	Pipeline *synth.Pipeline
}

// NewCommandContext opens the configured registry and builds a pipeline around it.
// The returned cleanup closes the registry.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutRegistry(cmd)

	reg, err := dataset.Open(cmd.Context(), cc.Cfg.Registry.Driver, cc.Cfg.Registry.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open registry: %w", err)
	}
	cc.Registry = reg
	cc.Pipeline = newPipeline(cc, reg)

	cleanup := func() {
		if err := reg.Close(); err != nil {
			cc.Logger.Warn("failed to close registry", slog.String("error", err.Error()))
		}
	}
	return cc, cleanup, nil
}

// newPipeline wires reg into a pipeline. Matrix displays are suppressed in json and
// yaml modes.
func newPipeline(cc *CommandContext, reg dataset.Registry) *synth.Pipeline {
	opts := []synth.Option{synth.WithLogger(cc.Logger)}
	if !cc.Renderer.Structured() {
		opts = append(opts, synth.WithDisplay(cc.Renderer.Matrix))
	}
	return synth.New(localEngines(cc), reg, opts...)
}

// localEngines applies the engine section of the config.
func localEngines(cc *CommandContext) synth.EngineFactory {
	return synth.LocalEngines(engine.WithEigen(cc.Cfg.Engine.EigenTol, cc.Cfg.Engine.EigenMaxIter))
}

// NewCommandContextWithoutRegistry creates a CommandContext for commands that never
// touch stored datasets. Pipeline stays nil.
func NewCommandContextWithoutRegistry(cmd *cobra.Command) *CommandContext {
	cfg := config.FromContext(cmd.Context())
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}
}
