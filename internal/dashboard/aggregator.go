package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/greensight/carbonscan/internal/model"
)

// MetadataSource supplies display metadata for the pages of a language,
// keyed by page ID. The CLI backs this with the config file; a host system
// embedding the library would back it with its own page store.
type MetadataSource interface {
	PageMetadata(ctx context.Context, language string) (map[int64]model.PageMetadata, error)
}

// Summarize joins each page's latest report with its display metadata and
// computes the aggregate statistics over the joined rows.
//
// Design decision: reports whose page has no metadata entry are dropped
// entirely. Such rows would render without a name or link, and including
// them in the averages while hiding them from the table would make the
// summary disagree with what the reader sees. Averages therefore cover
// exactly the pages listed.
func Summarize(latest []*model.SustainabilityReport, meta map[int64]model.PageMetadata) *model.DashboardResponse {
	summary := &model.DashboardSummary{
		RatingDistribution: make(map[string]int),
	}

	pages := make([]*model.DashboardPageItem, 0, len(latest))
	var emissionsSum, weightSum float64
	for _, report := range latest {
		m, ok := meta[report.Page.WebPageID]
		if !ok {
			continue
		}

		pages = append(pages, &model.DashboardPageItem{
			WebPageID:          report.Page.WebPageID,
			PageName:           m.Name,
			PageURL:            m.URL,
			Language:           report.Page.Language,
			CarbonRating:       report.CarbonRating,
			TotalEmissions:     report.TotalEmissions,
			TotalSize:          report.TotalSize,
			GreenHostingStatus: report.GreenHostingStatus,
			LastRunDate:        report.LastRunDate(),
			CreatedAt:          report.CreatedAt,
		})

		emissionsSum += report.TotalEmissions
		weightSum += report.TotalSize
		if report.GreenHostingStatus == model.GreenHostingGreen {
			summary.GreenHostingCount++
		}
		if report.CarbonRating != "" {
			summary.RatingDistribution[report.CarbonRating]++
		}
	}

	sort.Slice(pages, func(i, j int) bool {
		if c := strings.Compare(pages[i].PageName, pages[j].PageName); c != 0 {
			return c < 0
		}
		return pages[i].WebPageID < pages[j].WebPageID
	})

	summary.TotalPages = len(pages)
	if n := len(pages); n > 0 {
		summary.AverageEmissions = emissionsSum / float64(n)
		summary.AveragePageWeight = weightSum / float64(n)
	}

	return &model.DashboardResponse{Summary: summary, Pages: pages}
}
