package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/erp/channelsync/internal/bootstrap"
	"github.com/erp/channelsync/internal/infrastructure/config"
	"github.com/erp/channelsync/internal/infrastructure/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what the subcommands share. Config and logger are filled by the
// root command's PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *zap.Logger

	loadConfig   func(path string) (*config.Config, error)
	newContainer func(ctx context.Context, cfg *config.Config, log *zap.Logger) (*bootstrap.Container, error)
}

func defaultApp() *app {
	return &app{
		loadConfig:   config.LoadFile,
		newContainer: bootstrap.New,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "channelsync",
		Short:        "Channel-driven sales order synchronization",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default: ./config.toml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.AddCommand(
		newMigrateCmd(a),
		newSeedCmd(a),
		newSyncCmd(a),
		newBatchCmd(a),
		newExceptionsCmd(a),
		newTokenCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := a.loadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	log, err := logger.New(config.LogConfig{Level: cfg.Log.Level, Format: "console", Output: "stderr"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	return nil
}

// withContainer wires the services, runs fn and releases every resource afterwards
func (a *app) withContainer(ctx context.Context, fn func(*bootstrap.Container) error) (err error) {
	c, err := a.newContainer(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.Close(context.Background()); closeErr != nil {
			a.log.Warn("Error releasing resources", zap.Error(closeErr))
		}
	}()
	return fn(c)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
