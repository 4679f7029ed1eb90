package metrics

import "github.com/prometheus/client_golang/prometheus"

// Counters for the fire-and-forget event path. Dropped writes never reach
// the user, so these counters are the only place they stay visible.
var (
	EngagementEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_total",
			Help: "Total number of engagement events accepted for recording",
		},
		[]string{"event_type"},
	)

	EngagementEventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_events_dropped_total",
			Help: "Total number of engagement events whose write to the event log failed",
		},
	)

	SessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_session_transitions_total",
			Help: "Total number of live session state transitions",
		},
		[]string{"transition"},
	)
)

// Register registers all Prometheus metrics.
func Register() {
	prometheus.MustRegister(EngagementEventsTotal)
	prometheus.MustRegister(EngagementEventsDroppedTotal)
	prometheus.MustRegister(SessionTransitionsTotal)
}
