package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackpin/pkg/config"
	"github.com/matzehuels/stackpin/pkg/observability"
	"github.com/matzehuels/stackpin/pkg/pipeline"
	"github.com/matzehuels/stackpin/pkg/publish"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		configPath string
		targets    []string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve package, tool and interpreter versions",
		Long: `Resolve the versions a deployment should pin and print them as facts.

Each version is taken from its override when one is given and discovered
otherwise:

  package      latest release on PyPI
  tool         latest GitHub release, read from the /releases/latest redirect
  interpreter  the pin file of the package release

Settings are layered: defaults, config file, STACKPIN_* environment, flags.
On failure the failure outcome is printed and the command exits non-zero.`,
		Example: `  # Discover everything
  stackpin resolve

  # Pin the package, discover the rest, print shell assignments
  stackpin resolve --package-version 4.5.6 -o env

  # Publish the facts to Redis and a file
  stackpin resolve --publish redis://localhost:6379/0?key=deploy:aipscan --publish facts.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			flagTaskArgs(cmd).apply(&cfg)
			if cmd.Flags().Changed("publish") {
				cfg.Publish = targets
			}
			return c.runResolve(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	addTaskFlags(cmd)
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (.toml, .yaml); default $STACKPIN_CONFIG or ~/.config/stackpin/config.toml")
	cmd.Flags().StringArrayVar(&targets, "publish", nil, "publish the facts to a target (redis://, mongodb://, file path); repeatable")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, stdout io.Writer, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	format, err := publish.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	hooks := newLogHooks(logger)
	observability.SetHTTPHooks(hooks)
	observability.SetResolveHooks(hooks)

	sinks, err := publish.OpenAll(ctx, cfg.Publish)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	defer sinks.Close()

	opts := cfg.Options()
	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	}

	interactive := format == publish.FormatText && c.stderr != nil && isTerminal(c.stderr)

	var spinner *Spinner
	if interactive {
		spinner = newSpinnerWithContext(ctx, c.stderr, "Resolving versions...")
		spinner.Start()
	}
	result, runErr := c.newRunner(logger).Execute(ctx, opts)
	if spinner != nil {
		cancelled := spinner.Cancelled()
		spinner.Stop()
		if cancelled {
			return ctx.Err()
		}
	}

	out := pipeline.NewOutcome(result, runErr)
	if err := renderOutcome(stdout, format, out); err != nil {
		return fmt.Errorf("write outcome: %w", err)
	}
	if out.Failed {
		return ErrResolutionFailed
	}
	if format == publish.FormatText {
		if note := overrideNote(opts); note != "" {
			printDetail(stdout, "%s", note)
		}
	}

	if len(sinks) == 0 {
		return nil
	}
	if interactive {
		spinner = newSpinnerWithContext(ctx, c.stderr, "Publishing facts...")
		spinner.Start()
	}
	prog := newProgress(logger)
	err = sinks.Publish(ctx, result.Record())
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Publishing failed")
		} else {
			spinner.StopWithSuccess(fmt.Sprintf("Published to %d target(s)", len(sinks)))
		}
	}
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	prog.done(fmt.Sprintf("Published facts to %d target(s)", len(sinks)))
	if format == publish.FormatText {
		for _, t := range cfg.Publish {
			printTarget(stdout, t)
		}
	}
	return nil
}
