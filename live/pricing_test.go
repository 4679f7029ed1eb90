package live_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/topmuch/qrsell-sub000/live"
	"github.com/topmuch/qrsell-sub000/models"
)

func offerSession(offerType models.OfferType, value float64, endsAt time.Time) *models.LiveSession {
	return &models.LiveSession{
		IsLive:           true,
		FlashOfferActive: true,
		FlashOfferType:   offerType,
		FlashOfferValue:  value,
		FlashOfferEndsAt: &endsAt,
	}
}

func TestOfferActiveAt(t *testing.T) {
	endsAt := baseTime.Add(30 * time.Minute)
	session := offerSession(models.OfferTypePercentage, 20, endsAt)

	require.True(t, live.OfferActiveAt(session, baseTime))
	require.True(t, live.OfferActiveAt(session, endsAt.Add(-time.Second)))

	// At and after the end timestamp the offer is dead, no matter what the
	// stored flag says.
	require.False(t, live.OfferActiveAt(session, endsAt))
	require.False(t, live.OfferActiveAt(session, endsAt.Add(time.Hour)))

	session.FlashOfferActive = false
	require.False(t, live.OfferActiveAt(session, baseTime))

	session.FlashOfferActive = true
	session.FlashOfferEndsAt = nil
	require.False(t, live.OfferActiveAt(session, baseTime))
}

func TestEffectivePriceScenarios(t *testing.T) {
	endsAt := baseTime.Add(30 * time.Minute)

	percentage := offerSession(models.OfferTypePercentage, 20, endsAt)
	require.Equal(t, 8000.0, live.EffectivePrice(10000, percentage, baseTime))

	fixed := offerSession(models.OfferTypeFixed, 3000, endsAt)
	require.Equal(t, 7000.0, live.EffectivePrice(10000, fixed, baseTime))

	oversized := offerSession(models.OfferTypeFixed, 15000, endsAt)
	require.Equal(t, 0.0, live.EffectivePrice(10000, oversized, baseTime))
}

func TestEffectivePriceWithoutRunningOffer(t *testing.T) {
	endsAt := baseTime.Add(30 * time.Minute)
	session := offerSession(models.OfferTypePercentage, 20, endsAt)

	require.Equal(t, 10000.0, live.EffectivePrice(10000, session, endsAt.Add(time.Minute)))

	noOffer := &models.LiveSession{IsLive: true}
	require.Equal(t, 10000.0, live.EffectivePrice(10000, noOffer, baseTime))
}

func TestEffectivePriceNeverNegative(t *testing.T) {
	endsAt := baseTime.Add(30 * time.Minute)
	prices := []float64{0, 1, 999, 10000, 250000}
	offers := []*models.LiveSession{
		offerSession(models.OfferTypePercentage, 100, endsAt),
		offerSession(models.OfferTypeFixed, 1_000_000, endsAt),
		offerSession(models.OfferTypeFixed, 0.5, endsAt),
	}

	for _, price := range prices {
		for _, session := range offers {
			require.GreaterOrEqual(t, live.EffectivePrice(price, session, baseTime), 0.0)
		}
	}
}
