package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/greensight/carbonscan/internal/model"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// showEmpty controls whether empty resource groups are shown.
	showEmpty bool

	// verbose enables per-resource detail in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty resource groups.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-resource listings.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs a single report in human-readable format.
func (w *TextWriter) Write(report *model.SustainabilityReport) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "SUSTAINABILITY REPORT")
	sb.WriteString(fmt.Sprintf("Page:          %s\n", report.Page.String()))
	sb.WriteString(fmt.Sprintf("Last Run:      %s\n", report.LastRunDate()))
	sb.WriteString(fmt.Sprintf("Page Weight:   %s\n", formatKB(report.TotalSize)))
	sb.WriteString(fmt.Sprintf("Emissions:     %s CO2 per view\n", formatGrams(report.TotalEmissions)))
	sb.WriteString(fmt.Sprintf("Carbon Rating: %s\n", report.CarbonRating))
	sb.WriteString(fmt.Sprintf("Green Hosting: %s\n", report.GreenHostingStatus))
	sb.WriteString("\n")

	w.writeGroups(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// WriteHistory outputs the report history in human-readable format.
func (w *TextWriter) WriteHistory(history *History) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "REPORT HISTORY")
	sb.WriteString(fmt.Sprintf("Page: %s\n\n", history.Page.String()))

	if len(history.Reports) == 0 {
		sb.WriteString("  No reports recorded for this page.\n\n")
		return w.output.Write([]byte(sb.String()))
	}

	for _, r := range history.Reports {
		sb.WriteString(fmt.Sprintf("  %-28s %10s  %10s  rating %-2s  %s\n",
			r.LastRunDate(),
			formatKB(r.TotalSize),
			formatGrams(r.TotalEmissions),
			r.CarbonRating,
			r.GreenHostingStatus,
		))
	}
	sb.WriteString("\n")

	if history.Trend != nil {
		w.writeTrend(&sb, history.Trend)
	}
	if history.HasMore {
		sb.WriteString("  (older reports exist beyond this page)\n\n")
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteDashboard outputs the dashboard in human-readable format.
func (w *TextWriter) WriteDashboard(dash *model.DashboardResponse) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "SUSTAINABILITY DASHBOARD")

	summary := dash.Summary
	sb.WriteString(fmt.Sprintf("Pages:               %d\n", summary.TotalPages))
	sb.WriteString(fmt.Sprintf("Average Emissions:   %s\n", formatGrams(summary.AverageEmissions)))
	sb.WriteString(fmt.Sprintf("Average Page Weight: %s\n", formatKB(summary.AveragePageWeight)))
	sb.WriteString(fmt.Sprintf("Green Hosted Pages:  %d\n", summary.GreenHostingCount))
	sb.WriteString("\n")

	if len(summary.RatingDistribution) > 0 {
		sb.WriteString("Rating distribution:\n")
		for _, rating := range []string{"A+", "A", "B", "C", "D", "E", "F"} {
			if count := summary.RatingDistribution[rating]; count > 0 {
				sb.WriteString(fmt.Sprintf("  %-2s %d\n", rating, count))
			}
		}
		sb.WriteString("\n")
	}

	if len(dash.Pages) == 0 {
		sb.WriteString("  No pages have reports yet.\n")
		return w.output.Write([]byte(sb.String()))
	}

	for _, p := range dash.Pages {
		sb.WriteString(fmt.Sprintf("  %-30s %-2s  %10s  %10s  %-8s  %s\n",
			truncateString(p.PageName, 30),
			p.CarbonRating,
			formatGrams(p.TotalEmissions),
			formatKB(p.TotalSize),
			p.GreenHostingStatus,
			p.LastRunDate,
		))
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeBanner writes a section banner.
func (w *TextWriter) writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	pad := (70 - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}

// writeGroups writes the resource group breakdown.
func (w *TextWriter) writeGroups(sb *strings.Builder, report *model.SustainabilityReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESOURCE GROUPS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, group := range report.ResourceGroups {
		if len(group.Resources) == 0 && !w.showEmpty {
			continue
		}

		sb.WriteString(fmt.Sprintf("[%s] %s\n", group.Name, formatKB(group.TotalSize)))
		if len(group.Resources) == 0 {
			sb.WriteString("  No resources\n\n")
			continue
		}

		if w.verbose {
			for _, res := range group.Resources {
				sb.WriteString(fmt.Sprintf("  * %s (%s)\n", res.URL, formatKB(res.Size)))
				if res.ContentHubURL != "" {
					sb.WriteString(fmt.Sprintf("    Content Hub: %s\n", res.ContentHubURL))
				}
			}
		} else {
			sb.WriteString(fmt.Sprintf("  %d resource(s)\n", len(group.Resources)))
		}
		sb.WriteString("\n")
	}
}

// writeTrend writes the trend summary line.
func (w *TextWriter) writeTrend(sb *strings.Builder, trend *Trend) {
	switch trend.EmissionsDirection {
	case DirectionImproved:
		sb.WriteString(fmt.Sprintf("  Trend: improved, %s less CO2 than the previous run\n\n", formatGrams(-trend.EmissionsDelta)))
	case DirectionWorsened:
		sb.WriteString(fmt.Sprintf("  Trend: worsened, %s more CO2 than the previous run\n\n", formatGrams(trend.EmissionsDelta)))
	default:
		sb.WriteString("  Trend: unchanged since the previous run\n\n")
	}
}
