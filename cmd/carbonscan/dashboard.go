package main

import (
	"context"
	"fmt"

	"github.com/greensight/carbonscan/internal/config"
	"github.com/greensight/carbonscan/internal/dashboard"
	"github.com/greensight/carbonscan/internal/database"
	"github.com/greensight/carbonscan/internal/model"
	"github.com/spf13/cobra"
)

// NewDashboardCmd creates the dashboard command.
// This command aggregates each configured page's latest report into a
// site-wide overview.
func NewDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the site-wide sustainability overview",
		Long: `Dashboard aggregates the latest report of every configured page into a
site-wide overview: total and average emissions, total page weight, the
carbon rating distribution, and a per-page listing.

Page display names come from the configuration file. Pages with stored
reports that are no longer declared in the file are left out of both the
listing and the aggregates, so the overview always reflects the currently
configured site.

Examples:
  # Overview of all English pages
  carbonscan dashboard

  # Overview of the German variants
  carbonscan dashboard --language de

  # Output the overview as Markdown
  carbonscan dashboard --markdown`,
		Args: cobra.NoArgs,
		RunE: runDashboardCmd,
	}

	cmd.Flags().StringP("language", "l", "en",
		"Content language to aggregate")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .carbonscan in current or home directory)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path")

	return cmd
}

// runDashboardCmd executes the dashboard command.
func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	lang, err := cmd.Flags().GetString("language")
	if err != nil {
		return err
	}

	cfg, err := readOutputFlags(cmd)
	if err != nil {
		return err
	}

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	// The dashboard needs the page declarations for display names; without
	// a config file every stored report is unresolvable and dropped.
	configPath := config.FindConfigFile(configFlag)
	if configPath == "" {
		if configFlag != "" {
			return fmt.Errorf("configuration file not found: %s", configFlag)
		}
		return fmt.Errorf("no .carbonscan configuration file found (the dashboard needs page declarations; run 'carbonscan init' to create one)")
	}

	pages, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	// Open database
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	latest, err := db.GetLatestPerPage(ctx, lang)
	if err != nil {
		return fmt.Errorf("failed to load latest reports: %w", err)
	}

	meta, err := pages.PageMetadata(ctx, lang)
	if err != nil {
		return fmt.Errorf("failed to load page metadata: %w", err)
	}

	dash := dashboard.Summarize(latest, meta)
	if len(dash.Pages) == 0 {
		fmt.Printf("No reports recorded for language %q yet.\n", lang)
		fmt.Println("\nUse 'carbonscan scan' to record reports for the configured pages.")
		return nil
	}

	return outputDashboard(cfg, dash)
}

// outputDashboard writes the overview in the requested format.
func outputDashboard(cfg *config.Config, dash *model.DashboardResponse) error {
	output, closeOutput, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Best effort cleanup

	writer := newReportWriter(cfg, output)
	_, err = writer.WriteDashboard(dash)
	return err
}
