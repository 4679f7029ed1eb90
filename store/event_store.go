package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/topmuch/qrsell-sub000/database"
	"github.com/topmuch/qrsell-sub000/models"
)

// EventStore is the append-only event log adapter backed by ClickHouse.
// Events are immutable: the adapter exposes insert and filtered read only.
type EventStore struct {
	DB *database.ClickHouseClient
}

func NewEventStore(chClient *database.ClickHouseClient) *EventStore {
	return &EventStore{
		DB: chClient,
	}
}

// InsertEvents appends a batch of engagement events. Column order must match
// the engagement_events table schema.
func (s *EventStore) InsertEvents(ctx context.Context, events []models.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO engagement_events (
			event_id, seller_id, product_id, event_type, user_agent, ip_address, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, event := range events {
		err := batch.Append(
			event.EventID,
			event.SellerID,
			event.ProductID,
			string(event.EventType),
			event.UserAgent,
			event.IPAddress,
			event.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append event to batch (EventID: %s): %w", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	return nil
}

// ListEvents returns events matching the filter. No ordering is guaranteed
// beyond every row carrying a created_at; aggregation happens in memory.
func (s *EventStore) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.AnalyticsEvent, error) {
	where, args := buildEventWhere(filter)

	query := `
		SELECT event_id, seller_id, product_id, event_type, user_agent, ip_address, created_at
		FROM engagement_events
	` + where

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement events: %w", err)
	}
	defer rows.Close()

	var events []models.AnalyticsEvent
	for rows.Next() {
		var (
			event     models.AnalyticsEvent
			eventType string
		)
		if err := rows.Scan(
			&event.EventID,
			&event.SellerID,
			&event.ProductID,
			&eventType,
			&event.UserAgent,
			&event.IPAddress,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan engagement event row: %w", err)
		}
		event.EventType = models.EventType(eventType)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during engagement event query: %w", err)
	}

	return events, nil
}

// CountEvents returns the number of events matching the filter, counted in
// ClickHouse rather than in memory.
func (s *EventStore) CountEvents(ctx context.Context, filter models.EventFilter) (uint64, error) {
	where, args := buildEventWhere(filter)

	query := `SELECT count() FROM engagement_events` + where

	var count uint64
	if err := s.DB.Conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count engagement events: %w", err)
	}

	return count, nil
}

func buildEventWhere(filter models.EventFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.SellerID != 0 {
		conditions = append(conditions, "seller_id = ?")
		args = append(args, filter.SellerID)
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conditions = append(conditions, fmt.Sprintf("event_type IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.ProductID != "" {
		conditions = append(conditions, "product_id = ?")
		args = append(args, filter.ProductID)
	}
	if filter.From != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *filter.To)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
