package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/greensight/carbonscan/internal/config"
	"github.com/greensight/carbonscan/internal/database"
	"github.com/greensight/carbonscan/internal/emissions"
	"github.com/greensight/carbonscan/internal/model"
	"github.com/greensight/carbonscan/internal/pipeline"
	"github.com/greensight/carbonscan/internal/renderer"
	"github.com/greensight/carbonscan/internal/service"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [page-url]",
		Short: "Run a sustainability report for one or all configured pages",
		Long: `Scan renders a page, measures every transferred resource, and records a
sustainability report.

The page is loaded through a headless-renderer service that injects a
collector script during the load. Each resource is classified by kind
(images, scripts, stylesheets, fonts), the total transfer size is converted
into grams of CO2 per view using the Sustainable Web Design model, and the
report is stored so the page's footprint can be tracked over time.

Examples:
  # Report a single page; reports are keyed by page ID and language
  carbonscan scan https://example.com/about --page 42

  # Same page in its German variant
  carbonscan scan https://example.com/de/ueber-uns --page 42 --language de

  # Report every page declared in the configuration file
  carbonscan scan

  # No renderer service available: fetch and parse the page directly
  carbonscan scan --static https://example.com --page 42

  # Resolve green hosting against a registry endpoint
  carbonscan scan --green-check https://api.thegreenwebfoundation.org https://example.com --page 42

  # Output a JSON report
  carbonscan scan --json https://example.com --page 42

Configuration file (.carbonscan) example:
  renderer: http://127.0.0.1:8750
  defaults:
    language: en
    baseUrl: https://example.com
  pages:
    - id: 42
      url: /about
      name: About us
    - id: 43
      url: /pricing
      language: de`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScanCmd,
	}

	// Renderer flags
	cmd.Flags().StringP("renderer", "r", config.DefaultRendererEndpoint,
		"Headless-renderer service endpoint")
	cmd.Flags().String("collector-script", config.DefaultCollectorScript,
		"Site-relative path of the collector script the renderer injects")
	cmd.Flags().BoolP("static", "s", false,
		"Skip the renderer service: fetch the page and parse its HTML directly")

	// Emissions flags
	cmd.Flags().StringP("green-check", "g", "",
		"Green-hosting registry endpoint (empty disables the lookup)")

	// Run behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page render")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of concurrent report runs when scanning configured pages")

	// Page identity flags
	cmd.Flags().Int64P("page", "p", 0,
		"Page ID the report is stored under (required with a page URL)")
	cmd.Flags().StringP("language", "l", "en",
		"Content language the page is rendered in")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .carbonscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Resolve the pages to report on
	targets, err := resolveTargets(cmd, cfg, args)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, targets, logger)
}

// buildConfig creates a Config from cobra command flags and the optional
// configuration file. File values override built-in defaults; flags the
// user set explicitly override both.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load page declarations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use an empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Pages, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Pages = &config.File{}
		if err := cfg.Pages.Normalize(); err != nil {
			return nil, err
		}
	}

	// File-level endpoint overrides
	if cfg.Pages.Renderer != "" {
		cfg.RendererEndpoint = cfg.Pages.Renderer
	}
	if cfg.Pages.CollectorScript != "" {
		cfg.CollectorScript = cfg.Pages.CollectorScript
	}
	if cfg.Pages.GreenCheck != "" {
		cfg.GreenCheckEndpoint = cfg.Pages.GreenCheck
	}

	// Explicit flags win over the file
	if cmd.Flags().Changed("renderer") || cfg.RendererEndpoint == "" {
		cfg.RendererEndpoint, err = cmd.Flags().GetString("renderer")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("collector-script") {
		cfg.CollectorScript, err = cmd.Flags().GetString("collector-script")
		if err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("green-check") {
		cfg.GreenCheckEndpoint, err = cmd.Flags().GetString("green-check")
		if err != nil {
			return nil, err
		}
	}

	cfg.StaticAnalysis, err = cmd.Flags().GetBool("static")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// resolveTargets determines which pages to run reports for.
// With a URL argument it is that single page, identified by the --page and
// --language flags. Without one, every page declared in the configuration
// file is reported.
func resolveTargets(cmd *cobra.Command, cfg *config.Config, args []string) ([]pipeline.Target, error) {
	if len(args) == 1 {
		pageID, err := cmd.Flags().GetInt64("page")
		if err != nil {
			return nil, err
		}
		if pageID <= 0 {
			return nil, errors.New("--page is required when scanning a URL (reports are stored per page ID)")
		}
		lang, err := cmd.Flags().GetString("language")
		if err != nil {
			return nil, err
		}
		return []pipeline.Target{{
			URL:  args[0],
			Page: model.PageKey{WebPageID: pageID, Language: lang},
		}}, nil
	}

	pages := cfg.Pages.Pages
	if len(pages) == 0 {
		return nil, errors.New("no pages to scan (pass a page URL with --page, or declare pages in .carbonscan; run 'carbonscan init' to create one)")
	}

	targets := make([]pipeline.Target, 0, len(pages))
	for _, p := range pages {
		targets = append(targets, pipeline.Target{
			URL:  p.URL,
			Page: model.PageKey{WebPageID: p.ID, Language: p.Language},
		})
	}
	return targets, nil
}

// runScan executes the report runs.
func runScan(ctx context.Context, cfg *config.Config, targets []pipeline.Target, logger *slog.Logger) error {
	logger.Info("starting scan",
		"pages", len(targets),
		"staticAnalysis", cfg.StaticAnalysis,
		"concurrency", cfg.Concurrency,
	)

	// Open database connection
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	logger.Info("database opened", "dir", cfg.DBDir)

	httpClient := &http.Client{Timeout: cfg.Timeout}
	rend := buildRenderer(cfg, httpClient, logger)
	checker := buildGreenChecker(cfg, httpClient)

	// Use batch processor for parallel runs if multiple pages
	if len(targets) > 1 && cfg.Concurrency > 1 {
		return runBatchScan(ctx, cfg, rend, checker, db, targets, logger)
	}

	return runSequentialScan(ctx, cfg, rend, checker, db, targets, logger)
}

// buildRenderer returns the trace source for this run: the headless-renderer
// client, or the static HTML analyzer when --static is set.
func buildRenderer(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) renderer.Renderer {
	if cfg.StaticAnalysis {
		return renderer.NewStaticAnalyzer(httpClient,
			renderer.WithStaticLogger(logger),
		)
	}
	return renderer.NewClient(httpClient, cfg.RendererEndpoint,
		renderer.WithCollectorScript(cfg.CollectorScript, cfg.CollectorScriptVersion),
		renderer.WithRenderTimeout(cfg.Timeout),
	)
}

// buildGreenChecker returns the green-hosting registry client, or nil when
// no endpoint is configured. Without one, pages whose trace carries no
// verdict report Unknown.
func buildGreenChecker(cfg *config.Config, httpClient *http.Client) emissions.GreenChecker {
	if cfg.GreenCheckEndpoint == "" {
		return nil
	}
	return emissions.NewGreenWebClient(httpClient,
		emissions.WithEndpoint(cfg.GreenCheckEndpoint),
		emissions.WithCheckTimeout(cfg.Timeout),
	)
}

// runSequentialScan reports pages one at a time through the service layer.
func runSequentialScan(ctx context.Context, cfg *config.Config, rend renderer.Renderer, checker emissions.GreenChecker, db *database.ReportDB, targets []pipeline.Target, logger *slog.Logger) error {
	opts := []service.Option{service.WithLogger(logger)}
	if checker != nil {
		opts = append(opts, service.WithGreenChecker(checker))
	}
	if cfg.Pages != nil {
		opts = append(opts, service.WithMetadataSource(cfg.Pages))
	}
	svc := service.New(db, rend, opts...)

	for _, target := range targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Measuring %s...\n", target.URL)
		startTime := time.Now()

		rep, err := svc.RunNewReport(ctx, target.URL, target.Page)
		if err != nil {
			logger.Error("report run failed", "page", target.Page.String(), "error", err)
			fmt.Fprintf(os.Stderr, "Report error for %s: %v\n", target.URL, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Report completed in %s\n\n", elapsed.Round(time.Millisecond))

		if err := outputReport(cfg, rep); err != nil {
			logger.Error("report output failed", "page", target.Page.String(), "error", err)
		}
	}

	return nil
}

// runBatchScan reports multiple pages concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, rend renderer.Renderer, checker emissions.GreenChecker, db *database.ReportDB, targets []pipeline.Target, logger *slog.Logger) error {
	fmt.Printf("Starting batch run of %d pages (concurrency: %d)...\n\n",
		len(targets), cfg.Concurrency)

	startTime := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.DefaultPipeline(rend, emissions.NewSWDModel(), checker, db,
				pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, targets, func(run *model.ReportRun, index int) {
		mu.Lock()
		defer mu.Unlock()

		if run.Err != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Report error for %s: %v\n",
				index+1, len(targets), run.URL, run.Err)
			return
		}

		fmt.Printf("[%d/%d] Report completed: %s (%.2f KB, %.3f g CO2, %s)\n",
			index+1, len(targets), run.URL,
			run.Report.TotalSize, run.Report.TotalEmissions, run.Report.CarbonRating)

		if err := outputReport(cfg, run.Report); err != nil {
			logger.Error("report output failed", "page", run.Page.String(), "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch run completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// outputReport writes the report in the requested format.
func outputReport(cfg *config.Config, rep *model.SustainabilityReport) error {
	output, closeOutput, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer closeOutput() //nolint:errcheck // Best effort cleanup

	writer := newReportWriter(cfg, output)
	_, err = writer.Write(rep)
	return err
}
