package engine

import "trivia-session-service/internal/domain"

// Points maps a difficulty tier to its point value. Tiers outside 1-5
// fall back to the tier-1 value.
func Points(tier int) int {
	if tier < 1 || tier > 5 {
		return 10
	}
	return tier * 10
}

// MaxScore is the sum of point values over every question in the pool,
// the denominator for percentage displays.
func MaxScore(pool []domain.Question) int {
	total := 0
	for _, q := range pool {
		total += Points(q.Tier)
	}
	return total
}

// BandFor maps a percentage to the narrative result band.
func BandFor(percent float64) domain.Band {
	switch {
	case percent >= 90:
		return domain.BandExceptional
	case percent >= 70:
		return domain.BandGreat
	case percent >= 50:
		return domain.BandGood
	default:
		return domain.BandTryAgain
	}
}

// Percent returns score as a share of max in [0, 100]. A zero max yields 0.
func Percent(score, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(score) / float64(max) * 100
}
