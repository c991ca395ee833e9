package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/candlewaker/config"
	"github.com/rustyeddy/candlewaker/internal/app"
	"github.com/rustyeddy/candlewaker/pkg/logger"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// RootConfig holds the persistent flags shared by every subcommand.
type RootConfig struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogLevel   string
	JSON       bool
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "candlewaker",
		Short:         "Candle close reminders and a futures trade journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.DataDir, "data-dir", "", "Data directory (overrides config)")
	cmd.PersistentFlags().StringVar(&rc.DBPath, "db", "", "SQLite database (default <data-dir>/candlewaker.sqlite)")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&rc.JSON, "json", false, "Print JSON instead of tables")

	cmd.AddCommand(
		newTaskCmd(rc),
		newWatchCmd(rc),
		newJournalCmd(rc),
		newInstrumentCmd(rc),
		newAccountCmd(rc),
		newStrategyCmd(rc),
		newStatsCmd(rc),
		newImportCmd(rc),
		newConfigCmd(rc),
		newServeCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "candlewaker %s\n", Version)
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides on top.
func (rc *RootConfig) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return nil, err
	}
	if rc.DataDir != "" {
		cfg.DataDir = rc.DataDir
	}
	if rc.DBPath != "" {
		cfg.DBPath = rc.DBPath
	}
	if rc.LogLevel != "" {
		cfg.Log.Level = rc.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// open builds the application for a command. Reminders are echoed to the
// command's output only when console is set.
func (rc *RootConfig) open(cmd *cobra.Command, console bool) (*app.App, error) {
	cfg, err := rc.loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Out:    cmd.ErrOrStderr(),
	})

	opts := app.Options{}
	if console {
		opts.Out = cmd.OutOrStdout()
	}
	return app.New(commandContext(cmd), cfg, log, opts)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
