package emissions

// Sustainable Web Design model constants (v3).
// https://sustainablewebdesign.org/calculating-digital-emissions/
const (
	// kWhPerGB is the energy used to transfer one gigabyte.
	kWhPerGB = 0.81

	// gridIntensity is the global average grid carbon intensity in gCO2e/kWh.
	gridIntensity = 442.0

	// renewableIntensity is the carbon intensity of verified green hosting.
	renewableIntensity = 50.0

	// System segment shares of the transfer energy.
	datacenterShare = 0.15
	networkShare    = 0.14
	deviceShare     = 0.52
	productionShare = 0.19

	// Per-visit weighting: three quarters of visits are first visits loading
	// all data, a quarter are return visits loading 2% of it.
	firstVisitShare     = 0.75
	returnVisitShare    = 0.25
	returnVisitDataLoad = 0.02

	bytesPerGB = 1024.0 * 1024.0 * 1024.0
)

// Rating boundaries in grams CO2 per view, from the SWD digital carbon
// ratings. A page below the first boundary rates A+, below the second A,
// and so on; everything at or above the last boundary rates F.
var ratingBoundaries = []struct {
	limit float64
	grade string
}{
	{0.095, "A+"},
	{0.186, "A"},
	{0.341, "B"},
	{0.493, "C"},
	{0.656, "D"},
	{0.846, "E"},
}

// Estimate is the result of an emissions calculation.
type Estimate struct {
	// TotalGrams is the estimated grams of CO2 per page view.
	TotalGrams float64

	// Rating is the letter grade for TotalGrams, A+ through F.
	Rating string
}

// Model estimates the carbon cost of transferring the given number of bytes
// for one page view. green indicates verified renewable hosting.
type Model interface {
	Estimate(bytes int64, green bool) Estimate
}

// SWDModel implements Model using the Sustainable Web Design methodology.
// The zero value is ready to use.
type SWDModel struct{}

// NewSWDModel creates a new SWD emissions model.
func NewSWDModel() *SWDModel {
	return &SWDModel{}
}

// Estimate calculates per-visit emissions for the given transfer size.
//
// The calculation:
//  1. Energy (kWh) = bytes / GB * kWhPerGB
//  2. Each system segment's energy is multiplied by its grid intensity;
//     green hosting lowers only the datacenter segment.
//  3. Per-visit grams weight first and return visits.
func (m *SWDModel) Estimate(bytes int64, green bool) Estimate {
	if bytes <= 0 {
		return Estimate{TotalGrams: 0, Rating: RatingFor(0)}
	}

	energyKWh := float64(bytes) / bytesPerGB * kWhPerGB

	datacenterIntensity := gridIntensity
	if green {
		datacenterIntensity = renewableIntensity
	}

	grams := energyKWh * (datacenterShare*datacenterIntensity +
		(networkShare+deviceShare+productionShare)*gridIntensity)

	perVisit := grams * (firstVisitShare + returnVisitShare*returnVisitDataLoad)

	return Estimate{
		TotalGrams: perVisit,
		Rating:     RatingFor(perVisit),
	}
}

// RatingFor returns the letter grade for the given grams of CO2 per view.
func RatingFor(grams float64) string {
	for _, b := range ratingBoundaries {
		if grams < b.limit {
			return b.grade
		}
	}
	return "F"
}
