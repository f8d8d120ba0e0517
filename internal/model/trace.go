package model

// ResourceTraceEntry is one network fetch record captured by the browser's
// performance API during a page load.
type ResourceTraceEntry struct {
	// URL is the fetched resource URL. May be relative and may include a
	// query string.
	URL string `json:"url"`

	// InitiatorType is the browser-reported category of what triggered the
	// fetch ("img", "script", "link", "css", "other", ...). May be empty
	// for entries the browser could not attribute.
	InitiatorType string `json:"initiatorType"`

	// TransferSize is the number of bytes transferred over the network.
	TransferSize int64 `json:"transferSizeBytes"`
}

// TraceEmissions is the emissions estimate computed by the collector script
// inside the rendered page, when available.
type TraceEmissions struct {
	// TotalGrams is the estimated grams of CO2 per page view.
	TotalGrams float64 `json:"totalGrams"`

	// Rating is the letter grade the collector derived from TotalGrams.
	Rating string `json:"rating"`
}

// PageTrace is the raw output of a page render: total transferred bytes,
// one entry per network resource, and optional collector-side emissions
// and green-hosting results.
//
// A PageTrace that reaches the classifier has passed boundary validation:
// the JSON payload matched the trace schema, so PageWeight is non-negative
// and Resources is present (possibly empty). An empty resource list is a
// valid trace but not a valid basis for a report; the service treats it as
// "report unavailable" rather than recording a misleading zero.
type PageTrace struct {
	// PageWeight is the total transferred bytes for the page load.
	PageWeight int64 `json:"pageWeightBytes"`

	// Resources lists every network resource fetched during the load.
	Resources []ResourceTraceEntry `json:"resources"`

	// GreenHostingStatus is the collector-side registry result, if the
	// collector performed the lookup ("Green", "NotGreen", "Unknown", or
	// empty when absent).
	GreenHostingStatus string `json:"greenHostingStatus,omitempty"`

	// Emissions is the collector-side estimate, nil when the collector did
	// not compute one. The service falls back to the local emissions model.
	Emissions *TraceEmissions `json:"emissions,omitempty"`
}

// ReportRun is the mutable carrier passed through the report pipeline.
// Steps fill it in order: render produces Trace, classify produces Groups,
// emissions fills the estimate fields, assemble produces Report, persist
// assigns Report.ID.
type ReportRun struct {
	// URL is the public URL being analyzed.
	URL string

	// Page identifies the page and language the run belongs to.
	Page PageKey

	// Trace is the raw render output.
	Trace *PageTrace

	// Groups is the classifier output.
	Groups map[ResourceGroupType]*ExternalResourceGroup

	// EmissionsGrams is the chosen emissions estimate for the page view.
	EmissionsGrams float64

	// Rating is the letter grade for EmissionsGrams.
	Rating string

	// GreenHosting is the resolved hosting status.
	GreenHosting GreenHostingStatus

	// Report is the assembled (and, after persistence, saved) report.
	Report *SustainabilityReport

	// CompletedSteps lists the pipeline steps that ran, in order.
	CompletedSteps []string

	// Err holds the first step failure, nil for a clean run.
	Err error

	// ErrorMessage mirrors Err for serialization.
	ErrorMessage string `json:"errorMessage,omitempty"`
}
