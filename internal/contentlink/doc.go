// Package contentlink extracts managed content-asset identifiers from
// resource URLs and resolves them into live admin deep links.
//
// Extraction is pure and happens at classification time; resolution performs
// an external lookup and happens on every read of a persisted report, so
// stored reports never carry stale links.
package contentlink
