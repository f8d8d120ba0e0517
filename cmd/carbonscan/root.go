// Package main provides the entry point for the carbonscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for carbonscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "carbonscan",
		Short: "Carbon footprint reports for web pages",
		Long: `Carbonscan measures the carbon footprint of web pages.

It renders a page through a headless-renderer service, classifies every
transferred resource (images, scripts, stylesheets, fonts), estimates the
CO2 emitted per page view using the Sustainable Web Design model, and
stores each report so page weight and emissions can be tracked over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewDashboardCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
