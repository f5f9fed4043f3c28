// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the doccheck CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via ldflags.
var version = "dev"

// Exit codes.
const (
	exitOK         = 0
	exitViolations = 1
	exitError      = 2
)

var (
	verbose bool
	logger  = zap.NewNop()
)

// codeError carries a process exit code through cobra's error return.
type codeError struct {
	code int
	err  error
}

func (e *codeError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *codeError) Unwrap() error {
	return e.err
}

// rootCmd is the base command for the doccheck CLI.
var rootCmd = &cobra.Command{
	Use:   "doccheck",
	Short: "Consistency checker for reStructuredText documentation",
	Long: `doccheck scans a tree of reStructuredText documents and reports broken
cross-references, anchors defined more than once, and configuration blocks
whose dialect variants (YAML, XML, PHP, ...) expose different keys.

Exit status is 0 when the corpus is clean, 1 when violations were found and
2 on I/O, parse or usage errors.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./doccheck.yaml or ~/.config/doccheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("doccheck")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "doccheck"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("DOCCHECK")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: could not read config:", err)
		}
	}
}

func main() {
	os.Exit(run())
}

func run() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}
	var ce *codeError
	if errors.As(err, &ce) {
		if ce.err != nil {
			fmt.Fprintln(os.Stderr, "Error:", ce.err)
		}
		return ce.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return exitError
}
