package live

import (
	"time"

	"github.com/topmuch/qrsell-sub000/models"
)

// OfferActiveAt reports whether the session's flash offer applies at the
// given instant. The stored flag alone is not enough: no background job
// clears it, so every reader re-derives liveness from the end timestamp
// against its own clock.
func OfferActiveAt(session *models.LiveSession, now time.Time) bool {
	return session.FlashOfferActive &&
		session.FlashOfferEndsAt != nil &&
		now.Before(*session.FlashOfferEndsAt)
}

// EffectivePrice returns the price a viewer pays at the given instant.
// Without a running offer it is the base price unchanged. Discounts never
// push the result below zero.
func EffectivePrice(basePrice float64, session *models.LiveSession, now time.Time) float64 {
	if !OfferActiveAt(session, now) {
		return basePrice
	}

	var discounted float64
	switch session.FlashOfferType {
	case models.OfferTypePercentage:
		discounted = basePrice - basePrice*session.FlashOfferValue/100
	case models.OfferTypeFixed:
		discounted = basePrice - session.FlashOfferValue
	default:
		return basePrice
	}

	if discounted < 0 {
		return 0
	}
	return discounted
}
