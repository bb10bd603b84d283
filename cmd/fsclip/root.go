package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/fsclip/cmd/fsclip/commands"
	"github.com/walteh/fsclip/cmd/fsclip/opts"
	"github.com/walteh/fsclip/pkg/clipboard"
	"github.com/walteh/fsclip/pkg/config"
	"github.com/walteh/fsclip/pkg/log"
	"github.com/walteh/fsclip/pkg/operation"
	"github.com/walteh/fsclip/pkg/progress"
	"github.com/walteh/fsclip/pkg/transfer"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
	noProgress bool
)

// newRootCmd builds the command tree; rootOpts is filled before any subcommand runs
func newRootCmd(rootOpts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsclip",
		Short: "A clipboard for files and directories",
		Long: `fsclip stages paths with copy and transfers them somewhere else with paste.

The staged paths survive between invocations, so copy and paste can run from
different shells. Paste never overwrites: entries whose name already exists in
the destination are skipped and reported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), cmd.ErrOrStderr())

			ctx, err := newRootOpts(ctx, rootOpts, cmd.OutOrStdout())
			if err != nil {
				return errors.Errorf("initializing: %w", err)
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(cmd)

	cmd.AddCommand(
		commands.NewCopyCmd(rootOpts),
		commands.NewPasteCmd(rootOpts),
		commands.NewShowCmd(rootOpts),
	)

	return cmd
}

// newRootOpts loads config, wires the operator into rootOpts and returns ctx
// carrying the console logger
func newRootOpts(ctx context.Context, rootOpts *opts.RootOpts, console io.Writer) (context.Context, error) {
	logger := zerolog.Ctx(ctx)

	cfg, err := config.Load(ctx, configFile)
	if err != nil {
		return ctx, errors.Errorf("loading config: %w", err)
	}
	logger.Debug().Str("config", cfg.String()).Str("location", cfg.Location()).Msg("config loaded")

	store, err := clipboard.Open(cfg.Store)
	if err != nil {
		return ctx, errors.Errorf("opening clipboard: %w", err)
	}

	engine, err := transfer.New(
		transfer.WithBufferSize(cfg.Transfer.BufferSize),
		transfer.WithIgnore(cfg.Transfer.Ignore...),
	)
	if err != nil {
		return ctx, errors.Errorf("creating transfer engine: %w", err)
	}

	var sink progress.Sink = progress.NewPtermSink(nil)
	if noProgress || cfg.Transfer.HideProgress {
		sink = progress.NopSink{}
	}

	userLogger := log.New(console, *logger)

	op, err := operation.New(operation.Options{
		Store:   store,
		Engine:  engine,
		Sink:    sink,
		Console: userLogger,
	})
	if err != nil {
		return ctx, errors.Errorf("creating operator: %w", err)
	}

	rootOpts.Config = cfg
	rootOpts.Operator = op
	return log.NewContext(ctx, userLogger), nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: search the user config dir)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "hide progress bars")
}

// setupLogging configures zerolog based on flags and puts it in the context
func setupLogging(ctx context.Context, w io.Writer) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger.WithContext(ctx)
}
