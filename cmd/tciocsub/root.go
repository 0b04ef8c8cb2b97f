package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/config"
	"github.com/ISISComputingGroup/EPICS-tcIoc-sub000/internal/plc"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string

	// cfg is the baseline loaded once at startup (§4.13); per-PLC
	// commands override it rather than requiring every invocation to
	// restate every flag.
	cfg config.Config
	// engine is the single top-level owner spec.md §9's redesign note
	// asks for in place of the source's process-wide singletons,
	// constructed once by main (via rootCmd's PersistentPreRunE).
	engine *plc.Engine
	// runCtx is the parent context of the scanners started by
	// load-records. No signal handler is installed and nothing calls
	// runCancel, so those scanners run until the process exits.
	runCtx    context.Context
	runCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "tciocsub",
	Short: "Bridge a PLC symbol-table export into an EPICS I/O controller record layer",
	Long: `tciocsub ingests a TwinCAT-style symbol-table export, walks it into
EPICS record definitions, and runs the scanners that keep those records
synchronized against the PLC's remote memory server.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
		} else {
			cfg = config.Default()
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		runCtx, runCancel = context.WithCancel(context.Background())
		engine = plc.NewEngine(slog.Default())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Path to a tciocsub YAML config file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode.
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}
