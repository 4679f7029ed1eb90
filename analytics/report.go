package analytics

import (
	"time"

	"github.com/topmuch/qrsell-sub000/models"
)

// SessionBreakdown is one row of the dashboard: a single broadcast with its
// window and engagement counts.
type SessionBreakdown struct {
	SessionID       int64      `json:"sessionId"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	DurationMinutes int        `json:"durationMinutes"`
	Product         string     `json:"product"`
	Scans           int        `json:"scans"`
	Views           int        `json:"views"`
	Clicks          int        `json:"clicks"`
	ConversionRate  int        `json:"conversionRate"`
}

// Report is the dashboard aggregate across a seller's broadcasts.
type Report struct {
	SessionCount   int                `json:"sessionCount"`
	TotalScans     int                `json:"totalScans"`
	TotalViews     int                `json:"totalViews"`
	TotalClicks    int                `json:"totalClicks"`
	ConversionRate int                `json:"conversionRate"`
	TopPercentile  int                `json:"topPercentile"`
	Breakdown      []SessionBreakdown `json:"breakdown"`
}

// Aggregate composes per-session stats across many broadcasts. Sessions that
// never went live are skipped. When dateFilter is non-nil, only sessions
// whose start falls on that exact calendar date are included.
//
// The overall conversion rate is computed from the summed totals rather
// than averaging per-session rates, so short broadcasts cannot skew it:
// 10/5 + 2/2 aggregates to 58%, not the 75% a mean of 50% and 100% would
// give.
func Aggregate(sessions []*models.LiveSession, events []models.AnalyticsEvent, dateFilter *time.Time, now time.Time) Report {
	report := Report{Breakdown: []SessionBreakdown{}}

	for _, session := range sessions {
		if session.LiveStartedAt == nil {
			continue
		}
		if dateFilter != nil && !sameDate(*session.LiveStartedAt, *dateFilter) {
			continue
		}

		stats := ComputeSessionStats(session, events, now)
		report.SessionCount++
		report.TotalScans += stats.Scans
		report.TotalViews += stats.Views
		report.TotalClicks += stats.Clicks
		report.Breakdown = append(report.Breakdown, SessionBreakdown{
			SessionID:       session.ID,
			StartedAt:       session.LiveStartedAt,
			EndedAt:         session.LiveEndedAt,
			DurationMinutes: stats.DurationMinutes,
			Product:         session.ActiveProductID,
			Scans:           stats.Scans,
			Views:           stats.Views,
			Clicks:          stats.Clicks,
			ConversionRate:  stats.ConversionRate,
		})
	}

	report.ConversionRate = ConversionRate(report.TotalScans, report.TotalClicks)
	report.TopPercentile = TopPercentile(report)
	return report
}

// TopPercentile returns the "top N%" badge shown on the dashboard, in
// [5,95] with lower meaning better. It is a motivational heuristic over the
// seller's own totals, not a percentile over any defined cohort, and must
// not be read as one.
func TopPercentile(report Report) int {
	score := report.ConversionRate
	score += minInt(report.SessionCount*2, 20)
	score += minInt(report.TotalScans/10, 30)

	percentile := 95 - score
	if percentile < 5 {
		return 5
	}
	if percentile > 95 {
		return 95
	}
	return percentile
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
