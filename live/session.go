package live

import (
	"context"
	"fmt"
	"time"

	"github.com/topmuch/qrsell-sub000/models"
)

// SessionStore is the record-store surface the coordinator needs: list,
// create and partial update over session rows. Deletes are never issued.
type SessionStore interface {
	List(ctx context.Context, filter models.SessionFilter) ([]*models.LiveSession, error)
	Get(ctx context.Context, id int64) (*models.LiveSession, error)
	Create(ctx context.Context, session *models.LiveSession) (*models.LiveSession, error)
	Update(ctx context.Context, id int64, patch models.SessionPatch) error
}

// Coordinator drives the live-session lifecycle for sellers. Sessions are
// append-only: every start creates a new row and the previous live row, if
// any, is closed first. Store failures propagate unmodified; no retries.
type Coordinator struct {
	store SessionStore
	now   func() time.Time
}

// NewCoordinator creates a Coordinator. A nil clock defaults to time.Now;
// tests inject a fixed clock.
func NewCoordinator(store SessionStore, now func() time.Time) *Coordinator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Coordinator{store: store, now: now}
}

// StartSession takes a seller live with the given staged products. The first
// product becomes the showcased one. Any session still live for the seller
// is stopped before the new row is created.
func (c *Coordinator) StartSession(ctx context.Context, seller *models.Seller, productIDs []string, showPublicCounter bool) (*models.LiveSession, error) {
	if len(productIDs) < 1 || len(productIDs) > models.MaxPreloadedProducts {
		return nil, ErrInvalidProductCount
	}
	seen := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		if id == "" {
			return nil, ErrInvalidProductID
		}
		if seen[id] {
			return nil, ErrDuplicateProducts
		}
		seen[id] = true
	}

	existing, err := c.store.List(ctx, models.SessionFilter{SellerID: seller.ID, LiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to look up live sessions for seller %d: %w", seller.ID, err)
	}
	for _, old := range existing {
		if err := c.stop(ctx, old); err != nil {
			return nil, err
		}
	}

	startedAt := c.now()
	session := &models.LiveSession{
		SellerID:          seller.ID,
		ShopSlug:          seller.ShopSlug,
		ActiveProductID:   productIDs[0],
		PreloadedProducts: productIDs,
		IsLive:            true,
		LiveStartedAt:     &startedAt,
		FlashOfferActive:  false,
		ShowPublicCounter: showPublicCounter,
	}
	return c.store.Create(ctx, session)
}

// SwitchProduct changes the showcased product. The target must be in the
// session's staged set, so viewers never see a product that was not
// preloaded.
func (c *Coordinator) SwitchProduct(ctx context.Context, session *models.LiveSession, productID string) error {
	if !session.IsLive {
		return ErrSessionNotLive
	}
	if !session.HasPreloaded(productID) {
		return ErrProductNotPreloaded
	}

	if err := c.store.Update(ctx, session.ID, models.SessionPatch{ActiveProductID: &productID}); err != nil {
		return err
	}
	session.ActiveProductID = productID
	return nil
}

// ActivateFlashOffer attaches a time-boxed discount to a live session. An
// offer that is still running rejects a second activation; an expired one
// may be replaced, since expiry is only ever evaluated lazily by readers.
func (c *Coordinator) ActivateFlashOffer(ctx context.Context, session *models.LiveSession, offerType models.OfferType, value float64, durationMinutes int) error {
	if !session.IsLive {
		return ErrSessionNotLive
	}
	if !offerType.Valid() || value <= 0 || durationMinutes <= 0 {
		return ErrInvalidOffer
	}
	now := c.now()
	if OfferActiveAt(session, now) {
		return ErrOfferAlreadyActive
	}

	active := true
	endsAt := now.Add(time.Duration(durationMinutes) * time.Minute)
	patch := models.SessionPatch{
		FlashOfferActive: &active,
		FlashOfferType:   &offerType,
		FlashOfferValue:  &value,
		FlashOfferEndsAt: &endsAt,
	}
	if err := c.store.Update(ctx, session.ID, patch); err != nil {
		return err
	}

	session.FlashOfferActive = true
	session.FlashOfferType = offerType
	session.FlashOfferValue = value
	session.FlashOfferEndsAt = &endsAt
	return nil
}

// StopSession ends a broadcast and clears the offer flag.
func (c *Coordinator) StopSession(ctx context.Context, session *models.LiveSession) error {
	if !session.IsLive {
		return ErrSessionNotLive
	}
	return c.stop(ctx, session)
}

func (c *Coordinator) stop(ctx context.Context, session *models.LiveSession) error {
	notLive := false
	offerOff := false
	endedAt := c.now()
	patch := models.SessionPatch{
		IsLive:           &notLive,
		LiveEndedAt:      &endedAt,
		FlashOfferActive: &offerOff,
	}
	if err := c.store.Update(ctx, session.ID, patch); err != nil {
		return err
	}

	session.IsLive = false
	session.LiveEndedAt = &endedAt
	session.FlashOfferActive = false
	return nil
}

// CurrentSession returns the seller's most recent live row, the one viewers
// are polling against.
func (c *Coordinator) CurrentSession(ctx context.Context, sellerID int64) (*models.LiveSession, error) {
	sessions, err := c.store.List(ctx, models.SessionFilter{SellerID: sellerID, LiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to look up live sessions for seller %d: %w", sellerID, err)
	}
	if len(sessions) == 0 {
		return nil, ErrNoLiveSession
	}
	return sessions[0], nil
}

// Session returns one session row by id, scoped to the owning seller.
func (c *Coordinator) Session(ctx context.Context, sellerID, sessionID int64) (*models.LiveSession, error) {
	session, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.SellerID != sellerID {
		return nil, ErrNoLiveSession
	}
	return session, nil
}

// SessionHistory lists every broadcast row for the seller, most recent
// first. Reporting iterates this to build the dashboard.
func (c *Coordinator) SessionHistory(ctx context.Context, sellerID int64) ([]*models.LiveSession, error) {
	return c.store.List(ctx, models.SessionFilter{SellerID: sellerID})
}
