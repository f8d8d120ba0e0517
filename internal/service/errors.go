package service

import "errors"

// ErrNoReport is returned when a report could not be produced or found:
// the render failed, the trace came back empty, or the page has no stored
// history. Callers distinguish it from infrastructure failures, which are
// returned as-is.
var ErrNoReport = errors.New("no sustainability report available")
