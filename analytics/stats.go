package analytics

import (
	"math"
	"time"

	"github.com/topmuch/qrsell-sub000/models"
)

// SessionStats are the engagement counts for one broadcast, scoped to its
// live window.
type SessionStats struct {
	Scans           int `json:"scans"`
	Views           int `json:"views"`
	Clicks          int `json:"clicks"`
	DurationMinutes int `json:"durationMinutes"`
	ConversionRate  int `json:"conversionRate"`
}

// ComputeSessionStats counts events inside the session's live window
// [live_started_at, live_ended_at]. A still-running session uses now as the
// upper bound, so the duration keeps growing on repeated polls. A session
// that never went live yields all zeros.
func ComputeSessionStats(session *models.LiveSession, events []models.AnalyticsEvent, now time.Time) SessionStats {
	var stats SessionStats
	if session.LiveStartedAt == nil {
		return stats
	}

	start := *session.LiveStartedAt
	end := now
	if session.LiveEndedAt != nil {
		end = *session.LiveEndedAt
	}

	for _, event := range events {
		if event.SellerID != session.SellerID {
			continue
		}
		if event.CreatedAt.Before(start) || event.CreatedAt.After(end) {
			continue
		}
		switch event.EventType {
		case models.EventTypeScan:
			stats.Scans++
		case models.EventTypeViewProduct:
			stats.Views++
		case models.EventTypeWhatsAppClick:
			stats.Clicks++
		}
	}

	stats.DurationMinutes = int(end.Sub(start).Minutes())
	stats.ConversionRate = ConversionRate(stats.Scans, stats.Clicks)
	return stats
}

// ConversionRate is the percentage of scans that led to an outbound contact
// click, rounded to the nearest integer. Zero scans means zero percent, by
// policy: the rate is never undefined.
func ConversionRate(scans, clicks int) int {
	if scans <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(clicks) / float64(scans)))
}
