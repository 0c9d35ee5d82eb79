package metrics

import "math"

// Band is the qualitative reading of a health score.
type Band string

// Health bands, lower bound inclusive.
const (
	BandExcellent      Band = "excellent"
	BandGood           Band = "good"
	BandFair           Band = "fair"
	BandNeedsAttention Band = "needs attention"
)

// Score weights and thresholds. These are fixed.
const (
	SavingsWeight = 40.0
	RunwayWeight  = 30.0
	MixWeight     = 30.0

	// mixDivisor converts percentage points of total deviation into lost
	// mix points.
	mixDivisor = 3.0
)

// Health is a composite score in [0, 100].
type Health struct {
	Band    Band    `json:"band"`
	Score   float64 `json:"score"`
	Savings float64 `json:"savings_points"`
	Runway  float64 `json:"runway_points"`
	Mix     float64 `json:"mix_points"`
}

// SavingsPoints scores a savings rate given as a fraction: 30% or more is
// 40, 20% is 30, 10% is 20, and below that one point per percent.
func SavingsPoints(rate float64) float64 {
	switch {
	case rate >= 0.30:
		return 40
	case rate >= 0.20:
		return 30
	case rate >= 0.10:
		return 20
	default:
		return math.Max(0, rate*100)
	}
}

// RunwayPoints scores runway months: 6 or more is 30, 3 is 20, 1 is 10,
// less than a month is 0.
func RunwayPoints(months float64) float64 {
	switch {
	case months >= 6:
		return 30
	case months >= 3:
		return 20
	case months >= 1:
		return 10
	default:
		return 0
	}
}

// MixPoints scores the spending mix: 30 minus one point per three
// percentage points of total deviation, floored at 0.
func MixPoints(mix MixDeviation) float64 {
	return math.Max(0, MixWeight-mix.TotalDeviation/mixDivisor)
}

// BandFor maps a score to its band.
func BandFor(score float64) Band {
	switch {
	case score >= 80:
		return BandExcellent
	case score >= 60:
		return BandGood
	case score >= 40:
		return BandFair
	default:
		return BandNeedsAttention
	}
}

// HealthScore combines the three components. Score is rounded to the
// nearest integer and the band is taken from the rounded score.
func HealthScore(savingsRate, runwayMonths float64, mix MixDeviation) Health {
	h := Health{
		Savings: SavingsPoints(savingsRate),
		Runway:  RunwayPoints(runwayMonths),
		Mix:     MixPoints(mix),
	}
	total := math.Min(100, h.Savings+h.Runway+h.Mix)
	h.Score = math.Round(total)
	h.Band = BandFor(h.Score)
	return h
}
