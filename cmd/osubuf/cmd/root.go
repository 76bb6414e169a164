/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/config"
	"github.com/ssargent/osubuf/pkg/di"
	"github.com/ssargent/osubuf/pkg/layout"
	"github.com/ssargent/osubuf/pkg/observability"
)

var container *di.Container

// SetContainer injects the dependency container used by every command.
func SetContainer(c *di.Container) {
	container = c
}

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	dataDir    string
	logLevel   string
	output     string

	cfg     *config.Config
	logger  *zap.Logger
	layouts *layout.Registry
}

// load resolves the configuration, logger and layout registry. A missing
// config file at the default path falls back to defaults; a missing file
// named with --config is an error.
func (a *app) load(cmd *cobra.Command) error {
	path := a.configPath
	explicit := path != ""
	if !explicit {
		path = config.GetDefaultConfigPath()
	}

	switch {
	case config.ConfigExists(path):
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
	case explicit:
		return fmt.Errorf("config file does not exist: %s (run 'osubuf init')", path)
	default:
		a.cfg = config.DefaultConfig()
	}
	a.configPath = path

	if cmd.Flags().Changed("data-dir") {
		a.cfg.DataDir = a.dataDir
	}
	if cmd.Flags().Changed("log-level") {
		a.cfg.Logging.Level = a.logLevel
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.SetupLogger(a.cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	a.logger = logger

	reg, err := layout.DefaultRegistry(a.cfg.Layouts...)
	if err != nil {
		return fmt.Errorf("failed to register layouts: %w", err)
	}
	a.layouts = reg

	logger.Debug("configuration loaded",
		zap.String("config", path),
		zap.String("data_dir", a.cfg.DataDir),
		zap.Int("layouts", len(reg.Names())))
	return nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "osubuf",
		Short: "osubuf - little-endian game record codec",
		Long: `osubuf decodes, encodes and archives the little-endian binary records
used by rhythm game replay and score files.

Records are described by layouts: ordered lists of typed fields. The
osr-header and score-entry layouts are built in; more can be added in the
configuration file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file (default ~/.config/osubuf/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&a.dataDir, "data-dir", "d", "./data", "Data directory for the archive")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format (table or json)")

	rootCmd.AddCommand(
		newInitCmd(a),
		newDecodeCmd(a),
		newEncodeCmd(a),
		newVarintCmd(),
		newLayoutsCmd(a),
		newArchiveCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
