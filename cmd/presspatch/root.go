package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/presspatch/cmd/presspatch/commands"
	"github.com/walteh/presspatch/cmd/presspatch/opts"
	"github.com/walteh/presspatch/pkg/batch"
	"github.com/walteh/presspatch/pkg/config"
	"github.com/walteh/presspatch/pkg/remote"
	_ "github.com/walteh/presspatch/pkg/remote/wpcli" // register the wpcli provider
	"github.com/walteh/presspatch/pkg/status"
)

var (
	// Flags
	configFile string
	serverName string
	debug      bool
	noParallel bool
)

// newRootOpts creates a new RootOpts with initialized dependencies
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	cfg, err := config.LoadConfig(ctx, configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	server, err := cfg.GetServer(serverName)
	if err != nil {
		return nil, errors.Errorf("resolving server: %w", err)
	}

	dialer, err := remote.NewDialer(ctx, server)
	if err != nil {
		return nil, errors.Errorf("creating dialer: %w", err)
	}

	var backend batch.Backend
	if noParallel {
		backend = batch.UnavailableBackend{}
	}
	runner, err := batch.NewRunner(batch.Options{Dialer: dialer, Backend: backend})
	if err != nil {
		return nil, errors.Errorf("creating runner: %w", err)
	}

	policy := batch.Policy{
		ParallelThreshold:   cfg.Execution.ParallelThreshold,
		WorkerCount:         cfg.Execution.WorkerCount,
		PerOperationTimeout: cfg.Execution.PerOperationDuration(),
		GlobalTimeout:       cfg.Execution.GlobalDuration(),
	}

	return &opts.RootOpts{
		Config: cfg,
		Server: server,
		Dialer: dialer,
		Runner: runner,
		Policy: policy,
		Status: status.New(os.Stdout, *zerolog.Ctx(ctx)),
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".presspatch.yaml", "config file path")
	cmd.PersistentFlags().StringVarP(&serverName, "server", "s", "", "server name from config")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&noParallel, "no-parallel", false, "never use the parallel backend")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:           "presspatch",
		Short:         "surgical edits and bulk operations for remote WordPress content",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}
	addRootFlags(root)

	root.AddCommand(
		commands.NewUpdateCommand(newRootOpts),
		commands.NewCreateCommand(newRootOpts),
		commands.NewBulkCreateCommand(newRootOpts),
		commands.NewBulkEditCommand(newRootOpts),
	)

	return root.Execute()
}
