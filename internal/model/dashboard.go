package model

import "time"

// PageMetadata is the display information for a page, looked up from the
// host system (or the config file) when building the dashboard.
type PageMetadata struct {
	// Name is the page's display name.
	Name string `json:"name"`

	// URL is the page's relative URL.
	URL string `json:"url"`
}

// DashboardPageItem is one row of the dashboard: a page's latest report
// joined with its display metadata.
type DashboardPageItem struct {
	// WebPageID identifies the page.
	WebPageID int64 `json:"webPageId"`

	// PageName is the page's display name.
	PageName string `json:"pageName"`

	// PageURL is the page's relative URL.
	PageURL string `json:"pageUrl"`

	// Language is the report's language code.
	Language string `json:"language"`

	// CarbonRating is the latest report's letter grade.
	CarbonRating string `json:"carbonRating,omitempty"`

	// TotalEmissions is the latest report's grams CO2 per view.
	TotalEmissions float64 `json:"totalEmissions"`

	// TotalSize is the latest report's page weight in kilobytes.
	TotalSize float64 `json:"totalSize"`

	// GreenHostingStatus is the latest report's hosting status.
	GreenHostingStatus GreenHostingStatus `json:"greenHostingStatus"`

	// LastRunDate is the human-readable report timestamp.
	LastRunDate string `json:"lastRunDate"`

	// CreatedAt is the report timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardSummary holds the aggregate statistics across the dashboard rows.
type DashboardSummary struct {
	// TotalPages is the number of pages with at least one report.
	TotalPages int `json:"totalPages"`

	// AverageEmissions is the mean grams CO2 per view across pages.
	// Zero when there are no pages.
	AverageEmissions float64 `json:"averageEmissions"`

	// AveragePageWeight is the mean page weight in kilobytes across pages.
	AveragePageWeight float64 `json:"averagePageWeight"`

	// GreenHostingCount is the number of pages on green hosting.
	GreenHostingCount int `json:"greenHostingCount"`

	// RatingDistribution counts pages per letter grade. Pages without a
	// rating are omitted.
	RatingDistribution map[string]int `json:"ratingDistribution"`
}

// DashboardResponse is the full dashboard payload: summary statistics plus
// per-page rows sorted by page name.
type DashboardResponse struct {
	// Summary holds the aggregate statistics.
	Summary *DashboardSummary `json:"summary"`

	// Pages holds the per-page rows, sorted by display name ascending.
	Pages []*DashboardPageItem `json:"pages"`
}
