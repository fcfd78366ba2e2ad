// Package cli implements the depcheck command-line interface.
//
// This package provides commands for scanning project directories for
// vulnerable dependencies and serving scan results over HTTP. The CLI is
// built using cobra and supports verbose logging via the charmbracelet/log
// library.
//
// # Commands
//
// The main commands are:
//   - scan: Scan a project directory for vulnerable dependencies
//   - serve: Serve scan reports over HTTP
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nsanches/depcheck/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "depcheck"

// Execute runs the depcheck CLI and returns an error if any command fails.
//
// The root command wires up the scan, serve and completion subcommands,
// configures logging from the --verbose flag, and attaches the logger to the
// command context so subcommands retrieve it via loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "Depcheck scans project dependencies for known vulnerabilities",
		Long:         `Depcheck scans npm and Python project manifests, runs the locally installed audit tools, and cross-checks every dependency against the NVD CVE database.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/depcheck/config.toml)")

	root.AddCommand(newScanCmd(&configPath))
	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
