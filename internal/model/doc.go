// Package model defines the core data structures used throughout carbonscan.
//
// This package contains the following main types:
//   - SustainabilityReport: The immutable result of a single page analysis run
//   - ExternalResourceGroup: Classified, size-aggregated network resources
//   - PageTrace: The raw performance trace captured during a page load
//   - DashboardResponse: Per-language rollup across the latest reports
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (classifier, database, dashboard, report)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
