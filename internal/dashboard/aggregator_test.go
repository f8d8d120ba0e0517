package dashboard

import (
	"math"
	"testing"
	"time"

	"github.com/greensight/carbonscan/internal/classifier"
	"github.com/greensight/carbonscan/internal/model"
)

func storedReport(pageID int64, emissions float64, weightBytes int64, rating string, green model.GreenHostingStatus) *model.SustainabilityReport {
	page := model.PageKey{WebPageID: pageID, Language: "en"}
	groups := classifier.Classify(nil)
	return model.NewSustainabilityReport(page, groups, weightBytes, emissions, rating, green, time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC))
}

// TestSummarize tests the metadata join and aggregate statistics.
func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields zeroed summary", func(t *testing.T) {
		t.Parallel()

		got := Summarize(nil, nil)
		if got.Summary.TotalPages != 0 {
			t.Errorf("TotalPages = %d, want 0", got.Summary.TotalPages)
		}
		if got.Summary.AverageEmissions != 0 || got.Summary.AveragePageWeight != 0 {
			t.Errorf("averages = %v/%v, want 0/0", got.Summary.AverageEmissions, got.Summary.AveragePageWeight)
		}
		if len(got.Pages) != 0 {
			t.Errorf("got %d pages, want 0", len(got.Pages))
		}
	})

	t.Run("joins metadata and averages over listed pages", func(t *testing.T) {
		t.Parallel()

		latest := []*model.SustainabilityReport{
			storedReport(1, 0.2, 2048, "B", model.GreenHostingGreen),
			storedReport(2, 0.4, 4096, "C", model.GreenHostingNotGreen),
		}
		meta := map[int64]model.PageMetadata{
			1: {Name: "Home", URL: "/"},
			2: {Name: "About", URL: "/about"},
		}

		got := Summarize(latest, meta)

		if got.Summary.TotalPages != 2 {
			t.Fatalf("TotalPages = %d, want 2", got.Summary.TotalPages)
		}
		if math.Abs(got.Summary.AverageEmissions-0.3) > 1e-9 {
			t.Errorf("AverageEmissions = %v, want 0.3", got.Summary.AverageEmissions)
		}
		if math.Abs(got.Summary.AveragePageWeight-3.0) > 1e-9 {
			t.Errorf("AveragePageWeight = %v, want 3.0", got.Summary.AveragePageWeight)
		}
		if got.Summary.GreenHostingCount != 1 {
			t.Errorf("GreenHostingCount = %d, want 1", got.Summary.GreenHostingCount)
		}
		if got.Summary.RatingDistribution["B"] != 1 || got.Summary.RatingDistribution["C"] != 1 {
			t.Errorf("RatingDistribution = %v, want one B and one C", got.Summary.RatingDistribution)
		}
	})

	t.Run("pages without metadata are dropped from rows and averages", func(t *testing.T) {
		t.Parallel()

		latest := []*model.SustainabilityReport{
			storedReport(1, 0.2, 2048, "B", model.GreenHostingGreen),
			storedReport(99, 9.9, 999999, "F", model.GreenHostingGreen),
		}
		meta := map[int64]model.PageMetadata{
			1: {Name: "Home", URL: "/"},
		}

		got := Summarize(latest, meta)

		if got.Summary.TotalPages != 1 {
			t.Fatalf("TotalPages = %d, want 1", got.Summary.TotalPages)
		}
		if math.Abs(got.Summary.AverageEmissions-0.2) > 1e-9 {
			t.Errorf("AverageEmissions = %v, want 0.2 (unresolved page excluded)", got.Summary.AverageEmissions)
		}
		if got.Summary.GreenHostingCount != 1 {
			t.Errorf("GreenHostingCount = %d, want 1", got.Summary.GreenHostingCount)
		}
		if got.Summary.RatingDistribution["F"] != 0 {
			t.Errorf("RatingDistribution counts dropped page: %v", got.Summary.RatingDistribution)
		}
		if len(got.Pages) != 1 || got.Pages[0].WebPageID != 1 {
			t.Errorf("Pages = %+v, want only page 1", got.Pages)
		}
	})

	t.Run("rows sorted by page name", func(t *testing.T) {
		t.Parallel()

		latest := []*model.SustainabilityReport{
			storedReport(3, 0.1, 1024, "A", model.GreenHostingGreen),
			storedReport(1, 0.1, 1024, "A", model.GreenHostingGreen),
			storedReport(2, 0.1, 1024, "A", model.GreenHostingGreen),
		}
		meta := map[int64]model.PageMetadata{
			1: {Name: "Pricing", URL: "/pricing"},
			2: {Name: "About", URL: "/about"},
			3: {Name: "Blog", URL: "/blog"},
		}

		got := Summarize(latest, meta)

		wantOrder := []string{"About", "Blog", "Pricing"}
		if len(got.Pages) != len(wantOrder) {
			t.Fatalf("got %d pages, want %d", len(got.Pages), len(wantOrder))
		}
		for i, name := range wantOrder {
			if got.Pages[i].PageName != name {
				t.Errorf("page[%d] = %q, want %q", i, got.Pages[i].PageName, name)
			}
		}
	})

	t.Run("row carries formatted run date", func(t *testing.T) {
		t.Parallel()

		latest := []*model.SustainabilityReport{storedReport(1, 0.1, 1024, "A", model.GreenHostingGreen)}
		meta := map[int64]model.PageMetadata{1: {Name: "Home", URL: "/"}}

		got := Summarize(latest, meta)
		if got.Pages[0].LastRunDate != "April 01, 2026 9:30 AM" {
			t.Errorf("LastRunDate = %q, want %q", got.Pages[0].LastRunDate, "April 01, 2026 9:30 AM")
		}
	})
}
