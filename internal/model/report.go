package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BytesPerKB converts raw transfer sizes into the kilobyte figures used
// throughout reports.
const BytesPerKB = 1024.0

// PageKey is the composite identity of an analyzed page: the CMS page ID
// plus the content language the page was rendered in. Report history is
// tracked independently per key.
type PageKey struct {
	// WebPageID is the stable page identifier assigned by the host system.
	WebPageID int64 `json:"webPageId"`

	// Language is the canonical language code (e.g. "en", "de-AT").
	Language string `json:"language"`
}

// String returns a compact representation for logging.
func (k PageKey) String() string {
	return fmt.Sprintf("%d/%s", k.WebPageID, k.Language)
}

// ExternalResource is a single classified network resource.
type ExternalResource struct {
	// URL is the resource URL as reported by the browser. It may be
	// absolute or relative and may carry a query string.
	URL string `json:"url"`

	// Size is the transferred size in kilobytes.
	Size float64 `json:"size"`

	// ContentItemID is the content-asset identifier extracted from the URL
	// at classification time, if the URL matches the managed-asset pattern.
	// Nil for resources that are not managed content.
	ContentItemID *uuid.UUID `json:"contentItemId,omitempty"`

	// ContentHubURL is the live admin deep link for ContentItemID.
	// It is recomputed on every read and never persisted, so links stay
	// valid when the admin routing scheme changes after the report was
	// recorded.
	ContentHubURL string `json:"contentHubUrl,omitempty"`
}

// ExternalResourceGroup aggregates the classified resources of one category.
type ExternalResourceGroup struct {
	// Type is the group's category.
	Type ResourceGroupType `json:"type"`

	// Name is the display name of the category.
	Name string `json:"name"`

	// TotalSize is the sum of member sizes in kilobytes.
	TotalSize float64 `json:"totalSize"`

	// Resources holds the members ordered by descending size. Members with
	// equal size keep their trace order.
	Resources []ExternalResource `json:"resources"`
}

// NewExternalResourceGroup creates an empty group for the given type.
func NewExternalResourceGroup(t ResourceGroupType) *ExternalResourceGroup {
	return &ExternalResourceGroup{
		Type:      t,
		Name:      t.String(),
		Resources: []ExternalResource{},
	}
}

// SustainabilityReport is the persisted, immutable result of one page
// analysis run.
//
// Lifecycle: a report is assembled exactly once from a single page-load
// trace, saved immediately (receiving its ID), and never updated afterwards.
// The only mutable state is the ephemeral ContentHubURL on its resources,
// which the service recomputes on every read.
type SustainabilityReport struct {
	// ID is the database identifier. Zero until the report is saved.
	ID int64 `json:"id,omitempty"`

	// Page identifies the analyzed page and language.
	Page PageKey `json:"page"`

	// CreatedAt is the UTC timestamp of the analysis run.
	CreatedAt time.Time `json:"createdAt"`

	// TotalSize is the full page weight in kilobytes.
	TotalSize float64 `json:"totalSize"`

	// TotalEmissions is the estimated grams of CO2 per page view.
	TotalEmissions float64 `json:"totalEmissions"`

	// CarbonRating is the letter grade (A+ through F) derived from
	// TotalEmissions. Empty when the page could not be rated.
	CarbonRating string `json:"carbonRating,omitempty"`

	// GreenHostingStatus records the renewable-hosting registry result.
	GreenHostingStatus GreenHostingStatus `json:"greenHostingStatus"`

	// ResourceGroups holds one group per ResourceGroupType, empty groups
	// included, in business display order.
	ResourceGroups []*ExternalResourceGroup `json:"resourceGroups"`
}

// lastRunDateFormat matches the admin UI's human-readable run date.
const lastRunDateFormat = "January 02, 2006 3:04 PM"

// LastRunDate returns CreatedAt formatted for display.
func (r *SustainabilityReport) LastRunDate() string {
	return r.CreatedAt.Format(lastRunDateFormat)
}

// NewSustainabilityReport assembles a report from classifier output and
// emissions results. It is pure construction: totals are converted to
// kilobytes and remaining fields are copied verbatim.
//
// pageWeightBytes must be non-negative; a negative value is a programmer
// error (the trace parser rejects negative sizes at the boundary) and
// panics rather than producing a silently wrong report.
//
// The groups map must be classifier output, i.e. contain all five group
// types. Groups are ordered by DisplayOrder in the assembled report.
func NewSustainabilityReport(
	page PageKey,
	groups map[ResourceGroupType]*ExternalResourceGroup,
	pageWeightBytes int64,
	emissionsGrams float64,
	rating string,
	greenHosting GreenHostingStatus,
	createdAt time.Time,
) *SustainabilityReport {
	if pageWeightBytes < 0 {
		panic(fmt.Sprintf("model: negative page weight %d", pageWeightBytes))
	}

	ordered := make([]*ExternalResourceGroup, 0, len(DisplayOrder))
	for _, t := range DisplayOrder {
		if g, ok := groups[t]; ok {
			ordered = append(ordered, g)
		} else {
			ordered = append(ordered, NewExternalResourceGroup(t))
		}
	}

	if !greenHosting.Valid() {
		greenHosting = GreenHostingUnknown
	}

	return &SustainabilityReport{
		Page:               page,
		CreatedAt:          createdAt.UTC(),
		TotalSize:          float64(pageWeightBytes) / BytesPerKB,
		TotalEmissions:     emissionsGrams,
		CarbonRating:       rating,
		GreenHostingStatus: greenHosting,
		ResourceGroups:     ordered,
	}
}
