package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/greensight/carbonscan/internal/config"
	"github.com/greensight/carbonscan/internal/database"
	"github.com/greensight/carbonscan/internal/model"
	"github.com/greensight/carbonscan/internal/pipeline"
)

// startTestSite starts an HTTP server that serves a small page with a
// stylesheet, a script, and an image, so the static analyzer has real
// resources to measure.
func startTestSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head>
  <link rel="stylesheet" href="/style.css">
  <script src="/app.js"></script>
</head>
<body>
  <img src="/hero.png" alt="">
  <p>hello</p>
</body>
</html>`)
	})
	mux.HandleFunc("/style.css", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		fmt.Fprint(w, "body{margin:0}"+strings.Repeat("/*pad*/", 64))
	})
	mux.HandleFunc("/app.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		fmt.Fprint(w, "console.log('x');"+strings.Repeat("//pad\n", 128))
	})
	mux.HandleFunc("/hero.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(make([]byte, 2048))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestScanIntegrationStatic runs the full scan path with the static
// analyzer against a local test site and verifies the report lands in
// the database.
func TestScanIntegrationStatic(t *testing.T) {
	t.Parallel()

	srv := startTestSite(t)

	cfg := config.NewConfig()
	cfg.StaticAnalysis = true
	cfg.DBDir = t.TempDir()
	cfg.JSONReport = true
	cfg.ReportFile = filepath.Join(t.TempDir(), "report.json")

	page := model.PageKey{WebPageID: 101, Language: "en"}
	targets := []pipeline.Target{{URL: srv.URL + "/", Page: page}}

	logger := setupLogger(false)
	if err := runScan(context.Background(), cfg, targets, logger); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	// The report must be persisted under the page key
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	rep, err := db.GetLatestReport(context.Background(), page)
	if err != nil {
		t.Fatalf("GetLatestReport() error = %v", err)
	}
	if rep == nil {
		t.Fatal("expected a stored report")
	}
	if rep.TotalSize <= 0 {
		t.Errorf("expected positive page weight, got %f", rep.TotalSize)
	}
	if rep.TotalEmissions <= 0 {
		t.Errorf("expected positive emissions, got %f", rep.TotalEmissions)
	}
	if rep.CarbonRating == "" {
		t.Error("expected a carbon rating")
	}
	if len(rep.ResourceGroups) != len(model.GroupTypes) {
		t.Errorf("expected %d resource groups, got %d", len(model.GroupTypes), len(rep.ResourceGroups))
	}
}

// TestScanIntegrationBatch runs the batch path over two pages.
func TestScanIntegrationBatch(t *testing.T) {
	t.Parallel()

	srv := startTestSite(t)

	cfg := config.NewConfig()
	cfg.StaticAnalysis = true
	cfg.Concurrency = 2
	cfg.DBDir = t.TempDir()
	cfg.JSONReport = true
	cfg.ReportFile = filepath.Join(t.TempDir(), "report.json")

	targets := []pipeline.Target{
		{URL: srv.URL + "/", Page: model.PageKey{WebPageID: 1, Language: "en"}},
		{URL: srv.URL + "/", Page: model.PageKey{WebPageID: 2, Language: "en"}},
	}

	logger := setupLogger(false)
	if err := runScan(context.Background(), cfg, targets, logger); err != nil {
		t.Fatalf("runScan() error = %v", err)
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	latest, err := db.GetLatestPerPage(context.Background(), "en")
	if err != nil {
		t.Fatalf("GetLatestPerPage() error = %v", err)
	}
	if len(latest) != 2 {
		t.Errorf("expected 2 stored reports, got %d", len(latest))
	}
}
