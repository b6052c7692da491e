package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trivia-session-service/internal/domain"
)

func TestPointsByTier(t *testing.T) {
	for tier := 1; tier <= 5; tier++ {
		assert.Equal(t, tier*10, Points(tier), "tier %d", tier)
	}
	// Out-of-range tiers fall back to the tier-1 value.
	assert.Equal(t, 10, Points(0))
	assert.Equal(t, 10, Points(-3))
	assert.Equal(t, 10, Points(6))
}

func TestMaxScore(t *testing.T) {
	pool := []domain.Question{
		{Tier: 1},
		{Tier: 3},
		{Tier: 5},
		{Tier: 0}, // unspecified, counts as 10
	}
	assert.Equal(t, 10+30+50+10, MaxScore(pool))
	assert.Equal(t, 0, MaxScore(nil))
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, domain.BandExceptional, BandFor(100))
	assert.Equal(t, domain.BandExceptional, BandFor(90))
	assert.Equal(t, domain.BandGreat, BandFor(89.9))
	assert.Equal(t, domain.BandGreat, BandFor(70))
	assert.Equal(t, domain.BandGood, BandFor(69.9))
	assert.Equal(t, domain.BandGood, BandFor(50))
	assert.Equal(t, domain.BandTryAgain, BandFor(49.9))
	assert.Equal(t, domain.BandTryAgain, BandFor(0))
}

func TestPercent(t *testing.T) {
	assert.InDelta(t, 25.0, Percent(10, 40), 0.001)
	assert.Equal(t, 0.0, Percent(10, 0))
}
