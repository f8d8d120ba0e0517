package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/greensight/carbonscan/internal/model"
)

// DefaultPageSize is the history page size when the caller passes zero.
const DefaultPageSize = 10

// ReportDB provides SQLite-based storage for sustainability reports.
// It manages connection pooling and provides the save and query operations
// the service layer needs.
type ReportDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ReportDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ReportDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ReportDB, error) {
	dbPath := filepath.Join(dbDir, "carbonscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; multiple readers don't help for the
	// small row counts a report history reaches.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ReportDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *ReportDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *ReportDB) createTables() error {
	schema := `
	-- One row per report run; resource groups stored as a JSON blob.
	CREATE TABLE IF NOT EXISTS sustainability_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		web_page_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		total_size REAL NOT NULL,
		total_emissions REAL NOT NULL,
		carbon_rating TEXT,
		green_hosting TEXT NOT NULL,
		resource_groups TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_page ON sustainability_reports(web_page_id, language);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON sustainability_reports(created_at);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveReport persists an immutable report snapshot and returns its new ID.
// The report's own ID field is left untouched; the caller decides whether
// to adopt the assigned identifier.
func (rdb *ReportDB) SaveReport(ctx context.Context, report *model.SustainabilityReport) (int64, error) {
	groupsJSON, err := json.Marshal(report.ResourceGroups)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize resource groups: %w", err)
	}

	query := `
	INSERT INTO sustainability_reports
		(web_page_id, language, created_at, total_size, total_emissions, carbon_rating, green_hosting, resource_groups)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		report.Page.WebPageID,
		report.Page.Language,
		report.CreatedAt.UTC().Format(time.RFC3339Nano),
		report.TotalSize,
		report.TotalEmissions,
		report.CarbonRating,
		string(report.GreenHostingStatus),
		string(groupsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}

	return result.LastInsertId()
}

// reportColumns is the column list every report query selects.
const reportColumns = `id, web_page_id, language, created_at, total_size, total_emissions, carbon_rating, green_hosting, resource_groups`

// GetLatestReport retrieves the most recent report for the page, or nil
// when the page has no reports yet.
func (rdb *ReportDB) GetLatestReport(ctx context.Context, page model.PageKey) (*model.SustainabilityReport, error) {
	query := `
	SELECT ` + reportColumns + `
	FROM sustainability_reports
	WHERE web_page_id = ? AND language = ?
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`

	report, err := scanReport(rdb.db.QueryRowContext(ctx, query, page.WebPageID, page.Language))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}
	return report, nil
}

// GetReportHistory retrieves one page of the report history for the given
// page, newest first, optionally excluding one report ID (used to keep the
// current report out of its own history view).
//
// pageSize defaults to DefaultPageSize when non-positive; pageIndex is
// zero-based. The returned flag reports whether more reports exist beyond
// the returned page, computed against the post-exclusion total.
func (rdb *ReportDB) GetReportHistory(ctx context.Context, page model.PageKey, excludeID int64, pageSize, pageIndex int) ([]*model.SustainabilityReport, bool, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	filter := ` WHERE web_page_id = ? AND language = ?`
	args := []any{page.WebPageID, page.Language}
	if excludeID > 0 {
		filter += ` AND id != ?`
		args = append(args, excludeID)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM sustainability_reports` + filter
	if err := rdb.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, false, fmt.Errorf("failed to count report history: %w", err)
	}

	query := `
	SELECT ` + reportColumns + `
	FROM sustainability_reports` + filter + `
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?
	`
	args = append(args, pageSize, pageIndex*pageSize)

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get report history: %w", err)
	}
	defer rows.Close()

	var reports []*model.SustainabilityReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	hasMore := (pageIndex+1)*pageSize < total
	return reports, hasMore, nil
}

// GetLatestPerPage retrieves, for every page with at least one report in the
// given language, only its most recent report.
func (rdb *ReportDB) GetLatestPerPage(ctx context.Context, language string) ([]*model.SustainabilityReport, error) {
	query := `
	SELECT ` + reportColumns + `
	FROM sustainability_reports r
	WHERE language = ? AND id = (
		SELECT id FROM sustainability_reports
		WHERE web_page_id = r.web_page_id AND language = r.language
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	)
	ORDER BY web_page_id
	`

	rows, err := rdb.db.QueryContext(ctx, query, language)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.SustainabilityReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanReport.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanReport reads one report row, including the resource-group blob.
func scanReport(row rowScanner) (*model.SustainabilityReport, error) {
	var report model.SustainabilityReport
	var createdAt string
	var rating sql.NullString
	var greenHosting string
	var groupsJSON string

	err := row.Scan(
		&report.ID,
		&report.Page.WebPageID,
		&report.Page.Language,
		&createdAt,
		&report.TotalSize,
		&report.TotalEmissions,
		&rating,
		&greenHosting,
		&groupsJSON,
	)
	if err != nil {
		return nil, err
	}

	report.CreatedAt = parseTimestamp(createdAt)
	report.CarbonRating = rating.String
	report.GreenHostingStatus = model.GreenHostingStatus(greenHosting)
	if !report.GreenHostingStatus.Valid() {
		report.GreenHostingStatus = model.GreenHostingUnknown
	}

	if err := json.Unmarshal([]byte(groupsJSON), &report.ResourceGroups); err != nil {
		return nil, fmt.Errorf("failed to parse resource groups: %w", err)
	}

	return &report, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format used by SaveReport
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
