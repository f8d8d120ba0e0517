package report

import "github.com/greensight/carbonscan/internal/model"

// Direction labels how a metric moved between two report runs.
type Direction string

// Trend directions. Lower emissions and lighter pages are improvements.
const (
	DirectionImproved  Direction = "improved"
	DirectionWorsened  Direction = "worsened"
	DirectionUnchanged Direction = "unchanged"
)

// Trend compares a page's newest report against the previous one.
type Trend struct {
	// EmissionsDelta is newest minus previous, in grams CO2 per view.
	EmissionsDelta float64 `json:"emissionsDelta"`

	// WeightDelta is newest minus previous, in kilobytes.
	WeightDelta float64 `json:"weightDelta"`

	// EmissionsDirection labels the emissions movement.
	EmissionsDirection Direction `json:"emissionsDirection"`

	// RatingDirection labels the letter-grade movement.
	RatingDirection Direction `json:"ratingDirection"`
}

// ratingRank orders the letter grades best to worst. Unknown ratings rank
// below F so a report that gains a rating counts as improved.
var ratingRank = map[string]int{
	"A+": 0, "A": 1, "B": 2, "C": 3, "D": 4, "E": 5, "F": 6,
}

func rankOf(rating string) int {
	if r, ok := ratingRank[rating]; ok {
		return r
	}
	return len(ratingRank)
}

// ComputeTrend compares the newest report against the previous one.
func ComputeTrend(latest, previous *model.SustainabilityReport) *Trend {
	t := &Trend{
		EmissionsDelta: latest.TotalEmissions - previous.TotalEmissions,
		WeightDelta:    latest.TotalSize - previous.TotalSize,
	}

	switch {
	case t.EmissionsDelta < 0:
		t.EmissionsDirection = DirectionImproved
	case t.EmissionsDelta > 0:
		t.EmissionsDirection = DirectionWorsened
	default:
		t.EmissionsDirection = DirectionUnchanged
	}

	latestRank, previousRank := rankOf(latest.CarbonRating), rankOf(previous.CarbonRating)
	switch {
	case latestRank < previousRank:
		t.RatingDirection = DirectionImproved
	case latestRank > previousRank:
		t.RatingDirection = DirectionWorsened
	default:
		t.RatingDirection = DirectionUnchanged
	}

	return t
}
