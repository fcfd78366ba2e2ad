package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nsanches/depcheck/pkg/audit"
	"github.com/nsanches/depcheck/pkg/config"
	"github.com/nsanches/depcheck/pkg/errors"
	"github.com/nsanches/depcheck/pkg/integrations/nvd"
	"github.com/nsanches/depcheck/pkg/manifest"
	"github.com/nsanches/depcheck/pkg/scan"
	"github.com/nsanches/depcheck/pkg/vuln"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// scanOpts holds the command-line flags for the scan command.
type scanOpts struct {
	format      string // output format: "text" or "json"
	output      string // output file path (stdout if empty)
	noRemote    bool   // skip NVD lookups, local audit tools only
	interactive bool   // browse findings in a TUI after the scan
}

// newScanCmd creates the scan command.
//
// The scan checks for package.json and requirements.txt in the target
// directory, runs the matching audit tools if they are installed, and looks
// every declared package up in the NVD CVE database unless --no-remote is
// given.
func newScanCmd(configPath *string) *cobra.Command {
	opts := scanOpts{format: formatText}

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan a project directory for vulnerable dependencies",
		Long: `Scan a project directory for vulnerable dependencies.

The directory is checked for package.json and requirements.txt manifests.
Each detected manifest triggers the matching local audit tool (npm audit,
pip-audit with a safety fallback) plus an NVD CVE lookup per declared
package.

Examples:
  depcheck scan                      # scan the current directory
  depcheck scan ./my-project         # scan a specific directory
  depcheck scan -f json -o out.json  # machine-readable report
  depcheck scan --no-remote          # local audit tools only`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if opts.format != formatText && opts.format != formatJSON {
				return fmt.Errorf("unknown format: %s (available: %s, %s)", opts.format, formatText, formatJSON)
			}
			return runScan(c.Context(), *configPath, opts, dir)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format (text|json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.noRemote, "no-remote", false, "skip NVD lookups")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse findings interactively after the scan")

	return cmd
}

// runScan builds a scanner from the config and runs it against dir.
// The directory is validated up front: the scanner itself treats a bad path
// as an empty project, but an interactive user typing a wrong path wants an
// error, not a clean report.
func runScan(ctx context.Context, configPath string, opts scanOpts, dir string) error {
	logger := loggerFromContext(ctx)

	if err := checkDir(dir); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	scanner := newScanner(ctx, cfg, opts.noRemote)

	logger.Infof("Scanning %s", dir)
	spin := newSpinnerWithContext(ctx, "Checking dependencies...")
	spin.Start()

	prog := newProgress(logger)
	report := scanner.Scan(ctx, dir)
	spin.Stop()
	prog.done(fmt.Sprintf("Scanned %d packages across %d manifests", report.Packages, len(report.Manifests)))

	if opts.interactive && len(report.Findings) > 0 {
		if err := browseFindings(report); err != nil {
			return err
		}
	}

	return writeReport(report, opts)
}

// newScanner assembles the production scanner: both manifest parsers, both
// local audit providers, and the NVD client unless remote lookups are off.
func newScanner(ctx context.Context, cfg config.Config, noRemote bool) *scan.Scanner {
	logger := loggerFromContext(ctx)
	runner := audit.NewRunner(cfg.Audit.Timeout())

	options := scan.Options{
		Parsers: []manifest.Parser{&manifest.PackageJSON{}, &manifest.Requirements{}},
		Local: map[vuln.Ecosystem]scan.AuditProvider{
			vuln.EcosystemNPM: audit.NewNPMAudit(runner, logger),
			vuln.EcosystemPip: audit.NewPipAudit(runner, logger),
		},
		Logger: logger,
	}
	if !noRemote {
		options.Remote = nvd.NewClient(nvd.Options{
			BaseURL:        cfg.NVD.BaseURL,
			ResultsPerPage: cfg.NVD.ResultsPerPage,
			RequestDelay:   cfg.NVD.RequestDelay(),
			Timeout:        cfg.NVD.Timeout(),
			RetryAttempts:  cfg.NVD.RetryAttempts,
			Logger:         logger,
		})
	}
	return scan.NewScanner(options)
}

// writeReport renders the report in the requested format to stdout or a file.
func writeReport(report *scan.Report, opts scanOpts) error {
	out, err := openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	var rendered string
	switch opts.format {
	case formatJSON:
		rendered, err = renderJSON(report)
	default:
		rendered = renderText(report)
	}
	if err != nil {
		return err
	}

	if _, err := io.WriteString(out, rendered); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

// checkDir verifies that path names an existing directory.
func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "scanning %s", path)
	}
	if !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidPath, "not a directory: %s", path)
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method so os.Stdout can be
// handled like a created file.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path, or stdout when path
// is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
