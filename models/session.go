package models

import "time"

// OfferType is the discount kind of a flash offer.
type OfferType string

const (
	OfferTypePercentage OfferType = "percentage"
	OfferTypeFixed      OfferType = "fixed"
)

func (t OfferType) Valid() bool {
	return t == OfferTypePercentage || t == OfferTypeFixed
}

// MaxPreloadedProducts bounds the staged product set a seller can take live.
const MaxPreloadedProducts = 5

// LiveSession is one broadcast. Rows are append-only per broadcast: starting
// a new session creates a new row, so historical reporting sees every
// broadcast separately. The "current" session for a seller is the most
// recent row with IsLive set.
//
// Nullable timestamps are pointers; ActiveProductID is empty when no product
// is showcased. Flash-offer expiry is never flipped by a background job:
// readers recompute it from FlashOfferEndsAt against their own clock.
type LiveSession struct {
	ID                int64      `json:"id"`
	SellerID          int64      `json:"sellerId"`
	ShopSlug          string     `json:"shopSlug"`
	ActiveProductID   string     `json:"activeProductId,omitempty"`
	PreloadedProducts []string   `json:"preloadedProducts"`
	IsLive            bool       `json:"isLive"`
	LiveStartedAt     *time.Time `json:"liveStartedAt,omitempty"`
	LiveEndedAt       *time.Time `json:"liveEndedAt,omitempty"`
	FlashOfferActive  bool       `json:"flashOfferActive"`
	FlashOfferType    OfferType  `json:"flashOfferType,omitempty"`
	FlashOfferValue   float64    `json:"flashOfferValue"`
	FlashOfferEndsAt  *time.Time `json:"flashOfferEndsAt,omitempty"`
	ShowPublicCounter bool       `json:"showPublicCounter"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// HasPreloaded reports whether productID is in the staged set.
func (s *LiveSession) HasPreloaded(productID string) bool {
	for _, id := range s.PreloadedProducts {
		if id == productID {
			return true
		}
	}
	return false
}

// SessionFilter is the typed query passed to the session store.
// Zero-valued fields are not applied.
type SessionFilter struct {
	SellerID int64
	LiveOnly bool
}

// SessionPatch is a partial update of one session row. Nil fields are left
// untouched. There is no version column: concurrent writers race under
// last-write-wins, which is accepted for a single seller on a single device.
type SessionPatch struct {
	ActiveProductID  *string
	IsLive           *bool
	LiveEndedAt      *time.Time
	FlashOfferActive *bool
	FlashOfferType   *OfferType
	FlashOfferValue  *float64
	FlashOfferEndsAt *time.Time
}

// Request bodies for the session endpoints.

type StartSessionRequest struct {
	ProductIDs        []string `json:"productIds" binding:"required"`
	ShowPublicCounter bool     `json:"showPublicCounter"`
}

type SwitchProductRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type ActivateOfferRequest struct {
	OfferType       OfferType `json:"offerType" binding:"required"`
	Value           float64   `json:"value" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"required"`
}
