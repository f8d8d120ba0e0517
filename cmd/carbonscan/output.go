package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/greensight/carbonscan/internal/config"
	"github.com/greensight/carbonscan/internal/log"
	"github.com/greensight/carbonscan/internal/report"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity setting.
// All output goes through the sanitizing handler because rendered traces
// can carry authenticated request headers.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// openOutput returns the destination for report output. When a report file
// is configured the file is created with owner-only permissions, and the
// returned closer must be called; for stdout the closer is a no-op.
func openOutput(cfg *config.Config) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// newReportWriter returns the writer for the configured output format.
// The human-readable text format is the default.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewTextWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
