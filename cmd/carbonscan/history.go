package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/greensight/carbonscan/internal/config"
	"github.com/greensight/carbonscan/internal/database"
	"github.com/greensight/carbonscan/internal/model"
	"github.com/greensight/carbonscan/internal/report"
	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command.
// This command pages through the stored reports of a single page.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <page-id>",
		Short: "Show stored report history for a page",
		Long: `History displays the stored sustainability reports of a page, newest first.

Each run of 'carbonscan scan' records a report, so the history shows how a
page's weight, emissions, and carbon rating developed over time. When at
least two reports exist the output includes the trend between the two most
recent runs.

Reports are keyed by page ID and language; the same page ID with a
different --language has its own independent history.

Examples:
  # Show the latest reports for page 42
  carbonscan history 42

  # Show the German variant's history
  carbonscan history 42 --language de

  # Page through older reports
  carbonscan history 42 --page-index 2

  # Output the history as JSON
  carbonscan history 42 --json`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("language", "l", "en",
		"Content language of the page")
	cmd.Flags().IntP("page-size", "n", config.DefaultHistoryPageSize,
		"Number of reports per history page")
	cmd.Flags().IntP("page-index", "i", 0,
		"Zero-based history page to show")
	cmd.Flags().Int64P("exclude", "e", 0,
		"Report ID to omit from the listing (0 omits nothing)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	pageID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || pageID <= 0 {
		return fmt.Errorf("invalid page ID %q (expected a positive integer)", args[0])
	}

	lang, err := cmd.Flags().GetString("language")
	if err != nil {
		return err
	}
	pageSize, err := cmd.Flags().GetInt("page-size")
	if err != nil {
		return err
	}
	pageIndex, err := cmd.Flags().GetInt("page-index")
	if err != nil {
		return err
	}
	excludeID, err := cmd.Flags().GetInt64("exclude")
	if err != nil {
		return err
	}

	cfg, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}

	// Open database
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	page := model.PageKey{WebPageID: pageID, Language: lang}

	reports, hasMore, err := db.GetReportHistory(ctx, page, excludeID, pageSize, pageIndex)
	if err != nil {
		return fmt.Errorf("failed to get report history: %w", err)
	}

	if len(reports) == 0 {
		fmt.Printf("No report history found for page %s\n", page.String())
		fmt.Println("\nUse 'carbonscan scan' to record a report for this page.")
		return nil
	}

	output, closeOutput, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Best effort cleanup

	writer := newReportWriter(cfg, output)
	_, err = writer.WriteHistory(report.NewHistory(page, reports, hasMore))
	return err
}

// readOutputFlags builds the minimal config read-only commands need:
// output format, destination, and the database location.
func readOutputFlags(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}
	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return nil, config.ErrConflictingReportFormats
	}
	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}
