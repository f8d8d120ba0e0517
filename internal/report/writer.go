package report

import (
	"io"

	"github.com/greensight/carbonscan/internal/model"
)

// Writer defines the interface for report output.
// Implementations write sustainability results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs a single report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.SustainabilityReport) (int, error)

	// WriteHistory outputs a page of report history, newest first.
	// The trend between the two newest reports is included when the
	// history holds at least two entries.
	WriteHistory(history *History) (int, error)

	// WriteDashboard outputs the site-wide dashboard.
	WriteDashboard(dash *model.DashboardResponse) (int, error)
}

// History is the payload for WriteHistory: one page of a page's stored
// reports plus the paging state and the computed trend.
type History struct {
	// Page identifies the page the history belongs to.
	Page model.PageKey `json:"page"`

	// Reports holds the history entries, newest first.
	Reports []*model.SustainabilityReport `json:"reports"`

	// HasMore reports whether further pages exist.
	HasMore bool `json:"hasMore"`

	// Trend compares the two newest reports. Nil with fewer than two.
	Trend *Trend `json:"trend,omitempty"`
}

// NewHistory builds a History payload and computes its trend.
func NewHistory(page model.PageKey, reports []*model.SustainabilityReport, hasMore bool) *History {
	h := &History{
		Page:    page,
		Reports: reports,
		HasMore: hasMore,
	}
	if len(reports) >= 2 {
		h.Trend = ComputeTrend(reports[0], reports[1])
	}
	return h
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.SustainabilityReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory outputs the history to all configured Writers.
func (m *MultiWriter) WriteHistory(history *History) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(history)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteDashboard outputs the dashboard to all configured Writers.
func (m *MultiWriter) WriteDashboard(dash *model.DashboardResponse) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteDashboard(dash)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
