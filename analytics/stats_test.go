package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/topmuch/qrsell-sub000/analytics"
	"github.com/topmuch/qrsell-sub000/models"
)

var t0 = time.Date(2025, 11, 3, 20, 0, 0, 0, time.UTC)

func sessionWindow(sellerID int64, start time.Time, end *time.Time) *models.LiveSession {
	return &models.LiveSession{
		ID:            1,
		SellerID:      sellerID,
		LiveStartedAt: &start,
		LiveEndedAt:   end,
		IsLive:        end == nil,
	}
}

func event(sellerID int64, eventType models.EventType, at time.Time) models.AnalyticsEvent {
	return models.AnalyticsEvent{
		SellerID:  sellerID,
		EventType: eventType,
		CreatedAt: at,
	}
}

func TestConversionRateZeroScans(t *testing.T) {
	require.Equal(t, 0, analytics.ConversionRate(0, 0))
	require.Equal(t, 0, analytics.ConversionRate(0, 5))
}

func TestConversionRateRounds(t *testing.T) {
	require.Equal(t, 50, analytics.ConversionRate(10, 5))
	require.Equal(t, 100, analytics.ConversionRate(2, 2))
	require.Equal(t, 33, analytics.ConversionRate(3, 1))
	require.Equal(t, 67, analytics.ConversionRate(3, 2))
}

func TestSessionStatsWindow(t *testing.T) {
	end := t0.Add(15 * time.Minute)
	session := sessionWindow(7, t0, &end)

	events := []models.AnalyticsEvent{
		event(7, models.EventTypeScan, t0.Add(1*time.Minute)),
		event(7, models.EventTypeScan, t0.Add(10*time.Minute)),
		event(7, models.EventTypeScan, t0.Add(20*time.Minute)),    // after stop
		event(7, models.EventTypeScan, t0.Add(-2*time.Minute)),    // before start
		event(9, models.EventTypeScan, t0.Add(5*time.Minute)),     // other seller
		event(7, models.EventTypeViewProduct, t0.Add(3*time.Minute)),
		event(7, models.EventTypeWhatsAppClick, t0.Add(12*time.Minute)),
		event(7, models.EventTypeViewShop, t0.Add(4*time.Minute)), // not counted in stats
	}

	stats := analytics.ComputeSessionStats(session, events, t0.Add(time.Hour))
	require.Equal(t, 2, stats.Scans)
	require.Equal(t, 1, stats.Views)
	require.Equal(t, 1, stats.Clicks)
	require.Equal(t, 15, stats.DurationMinutes)
	require.Equal(t, 50, stats.ConversionRate)
}

func TestSessionStatsRunningSessionGrows(t *testing.T) {
	session := sessionWindow(7, t0, nil)
	events := []models.AnalyticsEvent{
		event(7, models.EventTypeScan, t0.Add(1*time.Minute)),
	}

	earlier := analytics.ComputeSessionStats(session, events, t0.Add(10*time.Minute))
	later := analytics.ComputeSessionStats(session, events, t0.Add(30*time.Minute))

	require.Equal(t, 10, earlier.DurationMinutes)
	require.Equal(t, 30, later.DurationMinutes)
	require.Equal(t, earlier.Scans, later.Scans)
}

func TestSessionStatsUnstartedSession(t *testing.T) {
	session := &models.LiveSession{ID: 1, SellerID: 7}
	events := []models.AnalyticsEvent{
		event(7, models.EventTypeScan, t0),
	}

	stats := analytics.ComputeSessionStats(session, events, t0.Add(time.Hour))
	require.Equal(t, analytics.SessionStats{}, stats)
}
