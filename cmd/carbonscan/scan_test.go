package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/greensight/carbonscan/internal/classifier"
	"github.com/greensight/carbonscan/internal/config"
	"github.com/greensight/carbonscan/internal/model"
	"github.com/greensight/carbonscan/internal/renderer"
)

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	if cmd.Use != "scan [page-url]" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("expected non-empty Short description")
	}
	if cmd.Long == "" {
		t.Error("expected non-empty Long description")
	}

	// Verify flags exist with their short options
	flagsWithShort := map[string]string{
		"renderer":    "r",
		"static":      "s",
		"green-check": "g",
		"timeout":     "t",
		"concurrency": "b",
		"page":        "p",
		"language":    "l",
		"config":      "c",
		"json":        "j",
		"markdown":    "m",
		"output":      "o",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}

	// Verify db-dir flag does NOT exist (uses XDG directory)
	if cmd.Flags().Lookup("db-dir") != nil {
		t.Error("db-dir flag should not exist")
	}
}

// TestBuildConfig tests config construction from flags and the config file.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("flag values flow into config", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{
			"--static",
			"--timeout", "30s",
			"--concurrency", "2",
			"--json",
		}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if !cfg.StaticAnalysis {
			t.Error("expected StaticAnalysis to be true")
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", cfg.Timeout)
		}
		if cfg.Concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", cfg.Concurrency)
		}
		if !cfg.JSONReport {
			t.Error("expected JSONReport to be true")
		}
	})

	t.Run("explicit missing config file errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		if _, err := buildConfig(cmd); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("file endpoints apply and flags override", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".carbonscan")
		content := `renderer: http://renderer.internal:9000
greenCheck: https://green.example
defaults:
  baseUrl: https://example.com
pages:
  - id: 1
    url: /
    name: Home
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--config", path}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}

		if cfg.RendererEndpoint != "http://renderer.internal:9000" {
			t.Errorf("expected file renderer endpoint, got %q", cfg.RendererEndpoint)
		}
		if cfg.GreenCheckEndpoint != "https://green.example" {
			t.Errorf("expected file green-check endpoint, got %q", cfg.GreenCheckEndpoint)
		}
		if len(cfg.Pages.Pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(cfg.Pages.Pages))
		}
		if got := cfg.Pages.Pages[0].URL; got != "https://example.com/" {
			t.Errorf("expected base-joined URL, got %q", got)
		}

		// A set renderer flag wins over the file
		cmd2 := NewScanCmd()
		if err := cmd2.ParseFlags([]string{"--config", path, "--renderer", "http://127.0.0.1:1234"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}
		cfg2, err := buildConfig(cmd2)
		if err != nil {
			t.Fatalf("buildConfig() error = %v", err)
		}
		if cfg2.RendererEndpoint != "http://127.0.0.1:1234" {
			t.Errorf("expected flag renderer endpoint, got %q", cfg2.RendererEndpoint)
		}
	})
}

// TestResolveTargets tests target resolution from flags and config pages.
func TestResolveTargets(t *testing.T) {
	t.Parallel()

	t.Run("url with page flag", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--page", "42", "--language", "de"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}
		cfg := config.NewConfig()

		targets, err := resolveTargets(cmd, cfg, []string{"https://example.com/about"})
		if err != nil {
			t.Fatalf("resolveTargets() error = %v", err)
		}
		if len(targets) != 1 {
			t.Fatalf("expected 1 target, got %d", len(targets))
		}
		want := model.PageKey{WebPageID: 42, Language: "de"}
		if targets[0].Page != want {
			t.Errorf("expected page %v, got %v", want, targets[0].Page)
		}
		if targets[0].URL != "https://example.com/about" {
			t.Errorf("unexpected URL %q", targets[0].URL)
		}
	})

	t.Run("url without page flag errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		if _, err := resolveTargets(cmd, config.NewConfig(), []string{"https://example.com"}); err == nil {
			t.Error("expected error without --page")
		}
	})

	t.Run("configured pages become targets", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg := config.NewConfig()
		cfg.Pages = &config.File{
			Pages: []config.PageConfig{
				{ID: 1, URL: "https://example.com/", Language: "en"},
				{ID: 2, URL: "https://example.com/about", Language: "en"},
				{ID: 2, URL: "https://example.com/de/ueber-uns", Language: "de"},
			},
		}

		targets, err := resolveTargets(cmd, cfg, nil)
		if err != nil {
			t.Fatalf("resolveTargets() error = %v", err)
		}
		if len(targets) != 3 {
			t.Fatalf("expected 3 targets, got %d", len(targets))
		}
		if targets[2].Page.Language != "de" {
			t.Errorf("expected language 'de', got %q", targets[2].Page.Language)
		}
	})

	t.Run("no pages and no url errors", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		cfg := config.NewConfig()
		cfg.Pages = &config.File{}

		_, err := resolveTargets(cmd, cfg, nil)
		if err == nil {
			t.Fatal("expected error with no targets")
		}
		if !strings.Contains(err.Error(), "no pages") {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

// TestBuildRenderer tests renderer selection.
func TestBuildRenderer(t *testing.T) {
	t.Parallel()

	httpClient := &http.Client{}
	logger := setupLogger(false)

	t.Run("renderer client by default", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		if _, ok := buildRenderer(cfg, httpClient, logger).(*renderer.Client); !ok {
			t.Error("expected *renderer.Client")
		}
	})

	t.Run("static analyzer with static flag", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.StaticAnalysis = true
		if _, ok := buildRenderer(cfg, httpClient, logger).(*renderer.StaticAnalyzer); !ok {
			t.Error("expected *renderer.StaticAnalyzer")
		}
	})
}

// TestBuildGreenChecker tests green checker construction.
func TestBuildGreenChecker(t *testing.T) {
	t.Parallel()

	httpClient := &http.Client{}

	cfg := config.NewConfig()
	if checker := buildGreenChecker(cfg, httpClient); checker != nil {
		t.Error("expected nil checker without an endpoint")
	}

	cfg.GreenCheckEndpoint = "https://green.example"
	if checker := buildGreenChecker(cfg, httpClient); checker == nil {
		t.Error("expected non-nil checker with an endpoint")
	}
}

// TestOutputReport tests report output to a file.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	groups := classifier.Classify([]model.ResourceTraceEntry{
		{URL: "https://example.com/app.js", InitiatorType: "script", TransferSize: 2048},
		{URL: "https://example.com/hero.png", InitiatorType: "img", TransferSize: 1536},
	})
	rep := model.NewSustainabilityReport(
		model.PageKey{WebPageID: 7, Language: "en"},
		groups, 3584, 0.21, "B", model.GreenHostingGreen,
		time.Date(2026, 7, 4, 14, 30, 0, 0, time.UTC),
	)

	t.Run("writes json report to nested path", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "page7.json")

		if err := outputReport(cfg, rep); err != nil {
			t.Fatalf("outputReport() error = %v", err)
		}

		content, err := os.ReadFile(cfg.ReportFile)
		if err != nil {
			t.Fatalf("failed to read report file: %v", err)
		}
		if !strings.Contains(string(content), `"totalEmissions"`) {
			t.Errorf("expected JSON report fields, got: %s", content)
		}
	})

	t.Run("fails on unwritable path", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.ReportFile = filepath.Join(t.TempDir(), "missing", "deep", "\x00bad")

		if err := outputReport(cfg, rep); err == nil {
			t.Error("expected error for invalid output path")
		}
	})
}

// TestReadOutputFlags tests the shared output flag parsing.
func TestReadOutputFlags(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	if err := cmd.ParseFlags([]string{"--json", "--markdown"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	_, err := readOutputFlags(cmd)
	if !errors.Is(err, config.ErrConflictingReportFormats) {
		t.Errorf("expected ErrConflictingReportFormats, got %v", err)
	}
}
