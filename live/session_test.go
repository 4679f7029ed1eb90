package live_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/topmuch/qrsell-sub000/live"
	"github.com/topmuch/qrsell-sub000/models"
)

// memSessionStore is an in-memory stand-in for the Postgres-backed session
// store, matching its list/create/update contract.
type memSessionStore struct {
	sessions []*models.LiveSession
	nextID   int64
}

func (m *memSessionStore) List(_ context.Context, filter models.SessionFilter) ([]*models.LiveSession, error) {
	var out []*models.LiveSession
	for i := len(m.sessions) - 1; i >= 0; i-- {
		s := m.sessions[i]
		if filter.SellerID != 0 && s.SellerID != filter.SellerID {
			continue
		}
		if filter.LiveOnly && !s.IsLive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memSessionStore) Get(_ context.Context, id int64) (*models.LiveSession, error) {
	for _, s := range m.sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("live session %d not found", id)
}

func (m *memSessionStore) Create(_ context.Context, session *models.LiveSession) (*models.LiveSession, error) {
	m.nextID++
	session.ID = m.nextID
	m.sessions = append(m.sessions, session)
	return session, nil
}

func (m *memSessionStore) Update(_ context.Context, id int64, patch models.SessionPatch) error {
	for _, s := range m.sessions {
		if s.ID != id {
			continue
		}
		if patch.ActiveProductID != nil {
			s.ActiveProductID = *patch.ActiveProductID
		}
		if patch.IsLive != nil {
			s.IsLive = *patch.IsLive
		}
		if patch.LiveEndedAt != nil {
			t := *patch.LiveEndedAt
			s.LiveEndedAt = &t
		}
		if patch.FlashOfferActive != nil {
			s.FlashOfferActive = *patch.FlashOfferActive
		}
		if patch.FlashOfferType != nil {
			s.FlashOfferType = *patch.FlashOfferType
		}
		if patch.FlashOfferValue != nil {
			s.FlashOfferValue = *patch.FlashOfferValue
		}
		if patch.FlashOfferEndsAt != nil {
			t := *patch.FlashOfferEndsAt
			s.FlashOfferEndsAt = &t
		}
		return nil
	}
	return nil
}

var baseTime = time.Date(2025, 11, 3, 20, 0, 0, 0, time.UTC)

func newTestCoordinator() (*live.Coordinator, *memSessionStore, *time.Time) {
	store := &memSessionStore{}
	now := baseTime
	coordinator := live.NewCoordinator(store, func() time.Time { return now })
	return coordinator, store, &now
}

func testSeller() *models.Seller {
	return &models.Seller{ID: 7, ShopSlug: "warung-ria"}
}

func TestStartSessionCreatesLiveRow(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()

	session, err := coordinator.StartSession(context.Background(), testSeller(), []string{"P1", "P2", "P3"}, true)
	require.NoError(t, err)

	require.True(t, session.IsLive)
	require.Equal(t, "P1", session.ActiveProductID)
	require.Equal(t, []string{"P1", "P2", "P3"}, session.PreloadedProducts)
	require.NotNil(t, session.LiveStartedAt)
	require.Equal(t, baseTime, *session.LiveStartedAt)
	require.Nil(t, session.LiveEndedAt)
	require.False(t, session.FlashOfferActive)
	require.True(t, session.ShowPublicCounter)
}

func TestStartSessionValidatesProductSet(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()
	ctx := context.Background()

	_, err := coordinator.StartSession(ctx, testSeller(), nil, false)
	require.ErrorIs(t, err, live.ErrInvalidProductCount)

	_, err = coordinator.StartSession(ctx, testSeller(), []string{"P1", "P2", "P3", "P4", "P5", "P6"}, false)
	require.ErrorIs(t, err, live.ErrInvalidProductCount)

	_, err = coordinator.StartSession(ctx, testSeller(), []string{"P1", "P2", "P1"}, false)
	require.ErrorIs(t, err, live.ErrDuplicateProducts)

	_, err = coordinator.StartSession(ctx, testSeller(), []string{"P1", ""}, false)
	require.ErrorIs(t, err, live.ErrInvalidProductID)
}

func TestStartSessionClosesPreviousBroadcast(t *testing.T) {
	coordinator, store, now := newTestCoordinator()
	ctx := context.Background()

	first, err := coordinator.StartSession(ctx, testSeller(), []string{"P1"}, false)
	require.NoError(t, err)

	*now = baseTime.Add(45 * time.Minute)
	second, err := coordinator.StartSession(ctx, testSeller(), []string{"P2"}, false)
	require.NoError(t, err)

	require.Len(t, store.sessions, 2)
	require.NotEqual(t, first.ID, second.ID)

	require.False(t, store.sessions[0].IsLive)
	require.NotNil(t, store.sessions[0].LiveEndedAt)
	require.Equal(t, baseTime.Add(45*time.Minute), *store.sessions[0].LiveEndedAt)

	current, err := coordinator.CurrentSession(ctx, testSeller().ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, current.ID)
}

func TestSwitchProductRequiresPreloaded(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()
	ctx := context.Background()

	session, err := coordinator.StartSession(ctx, testSeller(), []string{"P1", "P2"}, false)
	require.NoError(t, err)

	err = coordinator.SwitchProduct(ctx, session, "P3")
	require.ErrorIs(t, err, live.ErrProductNotPreloaded)
	require.Equal(t, "P1", session.ActiveProductID)

	err = coordinator.SwitchProduct(ctx, session, "P2")
	require.NoError(t, err)
	require.Equal(t, "P2", session.ActiveProductID)
}

func TestSwitchProductRequiresLiveSession(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()
	ctx := context.Background()

	session, err := coordinator.StartSession(ctx, testSeller(), []string{"P1", "P2"}, false)
	require.NoError(t, err)
	require.NoError(t, coordinator.StopSession(ctx, session))

	err = coordinator.SwitchProduct(ctx, session, "P2")
	require.ErrorIs(t, err, live.ErrSessionNotLive)
}

func TestActivateFlashOffer(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()
	ctx := context.Background()

	session, err := coordinator.StartSession(ctx, testSeller(), []string{"P1"}, false)
	require.NoError(t, err)

	err = coordinator.ActivateFlashOffer(ctx, session, models.OfferTypePercentage, 20, 30)
	require.NoError(t, err)

	require.True(t, session.FlashOfferActive)
	require.Equal(t, models.OfferTypePercentage, session.FlashOfferType)
	require.Equal(t, 20.0, session.FlashOfferValue)
	require.NotNil(t, session.FlashOfferEndsAt)
	require.Equal(t, baseTime.Add(30*time.Minute), *session.FlashOfferEndsAt)
}

func TestActivateFlashOfferRejectsRunningOffer(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()
	ctx := context.Background()

	session, err := coordinator.StartSession(ctx, testSeller(), []string{"P1"}, false)
	require.NoError(t, err)
	require.NoError(t, coordinator.ActivateFlashOffer(ctx, session, models.OfferTypePercentage, 20, 30))

	err = coordinator.ActivateFlashOffer(ctx, session, models.OfferTypeFixed, 5000, 10)
	require.ErrorIs(t, err, live.ErrOfferAlreadyActive)
}

func TestActivateFlashOfferReplacesExpiredOffer(t *testing.T) {
	coordinator, _, now := newTestCoordinator()
	ctx := context.Background()

	session, err := coordinator.StartSession(ctx, testSeller(), []string{"P1"}, false)
	require.NoError(t, err)
	require.NoError(t, coordinator.ActivateFlashOffer(ctx, session, models.OfferTypePercentage, 20, 30))

	// The flag is still set after expiry; no background job clears it. A
	// later activation replaces the dead offer.
	*now = baseTime.Add(31 * time.Minute)
	err = coordinator.ActivateFlashOffer(ctx, session, models.OfferTypeFixed, 5000, 10)
	require.NoError(t, err)
	require.Equal(t, models.OfferTypeFixed, session.FlashOfferType)
	require.Equal(t, baseTime.Add(41*time.Minute), *session.FlashOfferEndsAt)
}

func TestActivateFlashOfferValidation(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()
	ctx := context.Background()

	session, err := coordinator.StartSession(ctx, testSeller(), []string{"P1"}, false)
	require.NoError(t, err)

	require.ErrorIs(t, coordinator.ActivateFlashOffer(ctx, session, models.OfferTypePercentage, 0, 30), live.ErrInvalidOffer)
	require.ErrorIs(t, coordinator.ActivateFlashOffer(ctx, session, models.OfferTypeFixed, 1000, 0), live.ErrInvalidOffer)
	require.ErrorIs(t, coordinator.ActivateFlashOffer(ctx, session, models.OfferType("bogo"), 10, 30), live.ErrInvalidOffer)

	require.NoError(t, coordinator.StopSession(ctx, session))
	require.ErrorIs(t, coordinator.ActivateFlashOffer(ctx, session, models.OfferTypePercentage, 20, 30), live.ErrSessionNotLive)
}

func TestStopSessionClearsOfferAndStampsEnd(t *testing.T) {
	coordinator, _, now := newTestCoordinator()
	ctx := context.Background()

	session, err := coordinator.StartSession(ctx, testSeller(), []string{"P1"}, false)
	require.NoError(t, err)
	require.NoError(t, coordinator.ActivateFlashOffer(ctx, session, models.OfferTypePercentage, 20, 60))

	*now = baseTime.Add(15 * time.Minute)
	require.NoError(t, coordinator.StopSession(ctx, session))

	require.False(t, session.IsLive)
	require.False(t, session.FlashOfferActive)
	require.NotNil(t, session.LiveEndedAt)
	require.Equal(t, baseTime.Add(15*time.Minute), *session.LiveEndedAt)

	require.ErrorIs(t, coordinator.StopSession(ctx, session), live.ErrSessionNotLive)
}

func TestCurrentSessionWithoutBroadcast(t *testing.T) {
	coordinator, _, _ := newTestCoordinator()

	_, err := coordinator.CurrentSession(context.Background(), 7)
	require.ErrorIs(t, err, live.ErrNoLiveSession)
}
