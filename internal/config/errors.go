package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and File.Normalize() and
// provide specific information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoRenderer is returned when no renderer endpoint is configured
	// and static analysis is not enabled. One source of traces is required.
	ErrNoRenderer = errors.New("no renderer configured: set a renderer endpoint or enable static analysis")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate render failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	// A concurrency of zero would mean no report runs at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidPageSize is returned when the history page size is not positive.
	ErrInvalidPageSize = errors.New("invalid history page size: must be positive")

	// ErrInvalidPage is returned when a page declaration is missing its ID
	// or URL. Pages without both cannot be scanned or displayed.
	ErrInvalidPage = errors.New("invalid page declaration: id and url are required")

	// ErrInvalidLanguage is returned when a page's language code does not
	// parse as a BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language code")

	// ErrPageNotFound is returned when a requested page ID is not declared
	// in the configuration file.
	ErrPageNotFound = errors.New("page not declared in configuration")
)
