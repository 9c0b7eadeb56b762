package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/universal-automation-wiki/iterate"
	"github.com/universal-automation-wiki/iterate/internal/logging"
	"github.com/universal-automation-wiki/iterate/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:           "iterate",
	Short:         "Iterate generates hierarchical task decompositions with a local LLM",
	Long:          `Iterate runs the Universal Automation Wiki content pipeline: task trees, node expansions, page metadata, timelines, challenges and supporting text stages, each producing a JSON record.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// accept snake_case spellings of the flags, e.g. --log_level
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().String("model", "", "Model name override")
	rootCmd.PersistentFlags().String("output", "", "Base directory for stage records")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig resolves configuration from the file, environment and
// persistent flags, in that order of precedence (flags win).
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if model, _ := cmd.Flags().GetString("model"); model != "" {
		cfg.Model = model
	}
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.OutputDir = output
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

// newLogger builds the process logger from the configured level.
func newLogger(cfg config.Config) *slog.Logger {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.New(level)
}

// loadPipeline wires the full pipeline for a command invocation.
func loadPipeline(cmd *cobra.Command) (*iterate.Pipeline, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cfg)
	p, err := iterate.New(cfg, iterate.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return p, logger, nil
}
