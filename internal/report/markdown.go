package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/greensight/carbonscan/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs a single report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SustainabilityReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Page Sustainability Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + report.Page.String() + "`"},
			{"Last Run", report.LastRunDate()},
			{"Page Weight", formatKB(report.TotalSize)},
			{"Emissions", formatGrams(report.TotalEmissions)},
			{"Carbon Rating", report.CarbonRating},
			{"Green Hosting", string(report.GreenHostingStatus)},
		},
	})
	md.PlainText("")

	w.writeRatingAlert(md, report.CarbonRating)
	w.writeGroupChart(md, report)
	w.writeGroups(md, report)

	return len(md.String()), md.Build()
}

// WriteHistory outputs the report history in Markdown format.
func (w *MarkdownWriter) WriteHistory(history *History) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Report History")
	md.PlainText("")
	md.PlainTextf("Page: `%s`", history.Page.String())
	md.PlainText("")

	if len(history.Reports) == 0 {
		md.PlainText("No reports recorded for this page.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(history.Reports))
	for _, r := range history.Reports {
		rows = append(rows, []string{
			r.LastRunDate(),
			formatKB(r.TotalSize),
			formatGrams(r.TotalEmissions),
			r.CarbonRating,
			string(r.GreenHostingStatus),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Run", "Page Weight", "Emissions", "Rating", "Green Hosting"},
		Rows:   rows,
	})
	md.PlainText("")

	if history.Trend != nil {
		w.writeTrendAlert(md, history.Trend)
	}
	if history.HasMore {
		md.PlainText("Older reports exist beyond this page.")
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}

// WriteDashboard outputs the dashboard in Markdown format.
func (w *MarkdownWriter) WriteDashboard(dash *model.DashboardResponse) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Sustainability Dashboard")
	md.PlainText("")

	summary := dash.Summary
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Pages", strconv.Itoa(summary.TotalPages)},
			{"Average Emissions", formatGrams(summary.AverageEmissions)},
			{"Average Page Weight", formatKB(summary.AveragePageWeight)},
			{"Green Hosted Pages", strconv.Itoa(summary.GreenHostingCount)},
		},
	})
	md.PlainText("")

	w.writeRatingChart(md, summary.RatingDistribution)

	if len(dash.Pages) == 0 {
		md.PlainText("No pages have reports yet.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	md.H2("Pages")
	md.PlainText("")
	rows := make([][]string, 0, len(dash.Pages))
	for _, p := range dash.Pages {
		rows = append(rows, []string{
			p.PageName,
			"`" + p.PageURL + "`",
			p.CarbonRating,
			formatGrams(p.TotalEmissions),
			formatKB(p.TotalSize),
			string(p.GreenHostingStatus),
			p.LastRunDate,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "URL", "Rating", "Emissions", "Weight", "Green Hosting", "Last Run"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// writeRatingAlert writes an alert matched to the letter grade.
func (w *MarkdownWriter) writeRatingAlert(md *markdown.Markdown, rating string) {
	switch rating {
	case "A+", "A":
		md.Tipf("Rated %s. This page is lighter than the vast majority of the web.", rating)
	case "B", "C":
		md.Notef("Rated %s. Reducing the heaviest resource groups below would improve the grade.", rating)
	case "D", "E":
		md.Warningf("Rated %s. This page transfers considerably more than an average page view.", rating)
	case "F":
		md.Caution("Rated F. The page weight puts it among the heaviest pages measured.")
	default:
		md.Note("No carbon rating recorded for this report.")
	}
	md.PlainText("")
}

// writeTrendAlert summarizes the movement between the two newest reports.
func (w *MarkdownWriter) writeTrendAlert(md *markdown.Markdown, trend *Trend) {
	switch trend.EmissionsDirection {
	case DirectionImproved:
		md.Tipf("Emissions improved by %s since the previous run.", formatGrams(-trend.EmissionsDelta))
	case DirectionWorsened:
		md.Warningf("Emissions worsened by %s since the previous run.", formatGrams(trend.EmissionsDelta))
	default:
		md.Note("Emissions are unchanged since the previous run.")
	}
	md.PlainText("")
}

// writeGroupChart writes a mermaid pie chart of the resource group sizes.
func (w *MarkdownWriter) writeGroupChart(md *markdown.Markdown, report *model.SustainabilityReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Transfer Size by Resource Group (KB)"),
		piechart.WithShowData(true),
	)

	var any bool
	for _, group := range report.ResourceGroups {
		if group.TotalSize <= 0 {
			continue
		}
		any = true
		chart.LabelAndIntValue(group.Name, uint64(group.TotalSize))
	}
	if !any {
		return
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRatingChart writes a mermaid pie chart of the rating distribution.
func (w *MarkdownWriter) writeRatingChart(md *markdown.Markdown, distribution map[string]int) {
	if len(distribution) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Carbon Rating Distribution"),
		piechart.WithShowData(true),
	)

	// Fixed best-to-worst order keeps the chart stable across runs.
	for _, rating := range []string{"A+", "A", "B", "C", "D", "E", "F"} {
		if count := distribution[rating]; count > 0 {
			chart.LabelAndIntValue(rating, uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeGroups writes one section per resource group.
func (w *MarkdownWriter) writeGroups(md *markdown.Markdown, report *model.SustainabilityReport) {
	md.H2("Resource Groups")
	md.PlainText("")

	for _, group := range report.ResourceGroups {
		md.H3(fmt.Sprintf("%s (%s)", group.Name, formatKB(group.TotalSize)))
		md.PlainText("")

		if len(group.Resources) == 0 {
			md.PlainText("No resources in this group.")
			md.PlainText("")
			continue
		}

		rows := make([][]string, 0, len(group.Resources))
		for _, res := range group.Resources {
			link := res.ContentHubURL
			if link == "" {
				link = "-"
			}
			rows = append(rows, []string{
				"`" + truncateString(res.URL, 60) + "`",
				formatKB(res.Size),
				truncateString(link, 50),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Resource", "Size", "Content Hub"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// formatKB renders a kilobyte value for display.
func formatKB(kb float64) string {
	return strconv.FormatFloat(kb, 'f', 2, 64) + " KB"
}

// formatGrams renders a grams-CO2 value for display.
func formatGrams(grams float64) string {
	return strconv.FormatFloat(grams, 'f', 3, 64) + " g"
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
