package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for typical headless-renderer deployments and
// can be overridden via the config file or CLI flags.
const (
	// DefaultRendererEndpoint is the address of the headless-renderer
	// service. We use 127.0.0.1 instead of localhost to avoid DNS
	// resolution overhead and potential issues with IPv6 resolution on
	// some systems.
	DefaultRendererEndpoint = "http://127.0.0.1:8750"

	// DefaultTimeout is set to 90 seconds because a full page render
	// includes navigation, lazy-loaded resources, and the collector
	// script's own work. A shorter timeout would abort heavy pages that
	// are exactly the ones worth measuring.
	DefaultTimeout = 90 * time.Second

	// DefaultConcurrency of 4 concurrent report runs balances throughput
	// with renderer load. Each run occupies a browser context on the
	// renderer service; higher values may exhaust its context pool.
	DefaultConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "carbonscan"

	// DefaultCollectorScript is where the analyzed site serves the
	// emissions collector script from.
	DefaultCollectorScript = "/_content/carbonscan/scripts/resource-checker.js"

	// DefaultHistoryPageSize is the number of history entries shown per
	// page. Matches the report store's default.
	DefaultHistoryPageSize = 10
)

// Config holds all configuration options for carbonscan.
// This struct is designed to be populated from the config file and CLI
// flags and passed through the application via dependency injection rather
// than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., RendererConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// RendererEndpoint is the base URL of the headless-renderer service.
	// Ignored when StaticAnalysis is enabled.
	RendererEndpoint string

	// CollectorScript is the site-relative path of the collector script
	// the renderer injects during the page load.
	CollectorScript string

	// CollectorScriptVersion is appended to the collector script request
	// for cache busting. Empty means the renderer's current version.
	CollectorScriptVersion string

	// StaticAnalysis switches to the no-browser fallback: fetch the page,
	// parse its HTML, and measure discovered resources directly. Less
	// accurate than a real render but needs no renderer service.
	StaticAnalysis bool

	// GreenCheckEndpoint is the green-hosting registry endpoint. Empty
	// disables the lookup; unresolved pages report Unknown.
	GreenCheckEndpoint string

	// Timeout is the per-render timeout. This applies to individual page
	// loads, not the overall batch duration.
	Timeout time.Duration

	// Concurrency is the number of concurrent report runs when scanning
	// multiple pages. Higher values increase throughput but load the
	// renderer service.
	Concurrency int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .carbonscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Pages holds the page declarations loaded from the config file.
	// This is populated by LoadConfigFile and used by scan and dashboard.
	Pages *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/carbonscan on Linux).
	DBDir string

	// HistoryPageSize is the number of history entries per page.
	HistoryPageSize int
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, endpoints).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		RendererEndpoint: DefaultRendererEndpoint,
		CollectorScript:  DefaultCollectorScript,
		Timeout:          DefaultTimeout,
		Concurrency:      DefaultConcurrency,
		DBDir:            XDGDataDir(),
		HistoryPageSize:  DefaultHistoryPageSize,
	}
}

// XDGDataDir returns the XDG data directory for carbonscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/carbonscan
// On macOS: ~/Library/Application Support/carbonscan
// On Windows: %LOCALAPPDATA%\carbonscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for carbonscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/carbonscan
// On macOS: ~/Library/Application Support/carbonscan
// On Windows: %APPDATA%\carbonscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any report runs begin.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// A renderer is required unless the static fallback is enabled
	if c.RendererEndpoint == "" && !c.StaticAnalysis {
		return ErrNoRenderer
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Concurrency must be positive; zero would mean no runs at all
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// HistoryPageSize must be positive
	if c.HistoryPageSize <= 0 {
		return ErrInvalidPageSize
	}

	return nil
}
