package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/gems/internal/app"
	"github.com/newthinker/gems/internal/config"
	"github.com/newthinker/gems/internal/core"
	"github.com/newthinker/gems/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func runScreen(cmd *cobra.Command, args []string) error {
	// Strict mode is checked before anything touches the network
	if err := checkArgs(cmd.Flags()); err != nil {
		return err
	}

	// Initialize logger
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(cmd.Flags(), log)
	if err != nil {
		return err
	}

	a, err := app.NewFromConfig(cfg, log, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = a.Run(ctx)
	return err
}

func checkArgs(flags *pflag.FlagSet) error {
	if strict && !flags.Changed("file") {
		return core.WrapError(core.ErrArgumentInvalid, fmt.Errorf("--file is required in strict mode"))
	}
	return nil
}

// loadConfig reads the config file if one was given, applies flag
// overrides and validates the result.
func loadConfig(flags *pflag.FlagSet, log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("loading config: %w", err))
		}
	} else {
		cfg, err = config.FromEnv()
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		log.Debug("no config file specified, using defaults")
	}

	if flags.Changed("file") {
		cfg.Output.File = outputFile
	}
	if flags.Changed("policy") {
		cfg.Policy = policyName
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
