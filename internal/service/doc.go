// Package service exposes the report operations: running a new report for a
// page, reading the latest report, paging through history, and building the
// dashboard.
//
// The service owns policy, not mechanism. Rendering, classification,
// emissions estimation, and persistence live in their own packages and are
// composed here through the pipeline; the service decides what counts as
// "no report", when content links are resolved, and which results are
// preferred over which fallbacks.
package service
