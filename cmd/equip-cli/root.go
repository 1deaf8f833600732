package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/smallnest/goequip"
	"github.com/smallnest/goequip/config"
	"github.com/smallnest/goequip/tool"
	"github.com/spf13/cobra"
)

// cfg is loaded before every subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "equip-cli",
	Short: "A CLI tool for inspecting equipment reports.",
	Long: `equip-cli reads fixed-layout equipment reports: element name, operation
status and the cell table. Tables can be rendered, queried, stored as
snapshots, served over HTTP or explained by a chat model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(cmd)
		if err != nil {
			return err
		}

		level := zerolog.WarnLevel
		if cfg.Verbose {
			level = zerolog.DebugLevel
		}
		logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
			Level(level).
			With().Timestamp().
			Logger()
		cmd.SetContext(logger.WithContext(cmd.Context()))

		if cfg.ConfigFile != "" {
			logger.Debug().Str("file", cfg.ConfigFile).Msg("loaded config file")
		}
		return nil
	},
}

func init() {
	config.SetupFlags(rootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, tool.ErrAborted) {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// reportPath resolves a report argument. An existing path is used as is;
// otherwise the name is looked up in the reports directory, with the report
// extension added when missing.
func reportPath(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	name := arg
	if !strings.EqualFold(filepath.Ext(name), goequip.ReportExt) {
		name += goequip.ReportExt
	}
	return filepath.Join(cfg.ReportsDir, name)
}

func openReport(arg string) (*goequip.ReportParser, error) {
	return goequip.Open(reportPath(arg), cfg.ParserOptions()...)
}

// dirArg returns the directory argument at index i, or the configured
// reports directory.
func dirArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return cfg.ReportsDir
}
