package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/topmuch/qrsell-sub000/models"
)

// SessionStore is the record-store adapter for live session rows. It exposes
// only list, create and partial update: session rows are never deleted.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

const sessionColumns = `
	id, seller_id, shop_slug, active_product_id, preloaded_products,
	is_live, live_started_at, live_ended_at,
	flash_offer_active, flash_offer_type, flash_offer_value, flash_offer_ends_at,
	show_public_counter, created_at, updated_at`

// Create inserts a new session row and returns it with the server-assigned
// id and timestamps filled in.
func (s *SessionStore) Create(ctx context.Context, session *models.LiveSession) (*models.LiveSession, error) {
	query := `
		INSERT INTO live_sessions (
			seller_id, shop_slug, active_product_id, preloaded_products,
			is_live, live_started_at, live_ended_at,
			flash_offer_active, flash_offer_type, flash_offer_value, flash_offer_ends_at,
			show_public_counter
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query,
		session.SellerID,
		session.ShopSlug,
		nullString(session.ActiveProductID),
		pq.Array(session.PreloadedProducts),
		session.IsLive,
		nullTime(session.LiveStartedAt),
		nullTime(session.LiveEndedAt),
		session.FlashOfferActive,
		nullString(string(session.FlashOfferType)),
		session.FlashOfferValue,
		nullTime(session.FlashOfferEndsAt),
		session.ShowPublicCounter,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create live session: %w", err)
	}

	return session, nil
}

// List returns session rows matching the filter, most recent first.
func (s *SessionStore) List(ctx context.Context, filter models.SessionFilter) ([]*models.LiveSession, error) {
	query := `SELECT` + sessionColumns + ` FROM live_sessions`

	var conditions []string
	var args []interface{}

	if filter.SellerID != 0 {
		args = append(args, filter.SellerID)
		conditions = append(conditions, fmt.Sprintf("seller_id = $%d", len(args)))
	}
	if filter.LiveOnly {
		conditions = append(conditions, "is_live = TRUE")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC;"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list live sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.LiveSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan live session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error while listing live sessions: %w", err)
	}

	return sessions, nil
}

// Get returns one session row by id.
func (s *SessionStore) Get(ctx context.Context, id int64) (*models.LiveSession, error) {
	query := `SELECT` + sessionColumns + ` FROM live_sessions WHERE id = $1;`
	row := s.db.QueryRowContext(ctx, query, id)
	session, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("live session %d not found", id)
		}
		return nil, fmt.Errorf("failed to get live session: %w", err)
	}
	return session, nil
}

// Update applies a partial update to one session row. Nil patch fields are
// left untouched. Last write wins: there is no version column.
func (s *SessionStore) Update(ctx context.Context, id int64, patch models.SessionPatch) error {
	var sets []string
	var args []interface{}

	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.ActiveProductID != nil {
		set("active_product_id", nullString(*patch.ActiveProductID))
	}
	if patch.IsLive != nil {
		set("is_live", *patch.IsLive)
	}
	if patch.LiveEndedAt != nil {
		set("live_ended_at", *patch.LiveEndedAt)
	}
	if patch.FlashOfferActive != nil {
		set("flash_offer_active", *patch.FlashOfferActive)
	}
	if patch.FlashOfferType != nil {
		set("flash_offer_type", nullString(string(*patch.FlashOfferType)))
	}
	if patch.FlashOfferValue != nil {
		set("flash_offer_value", *patch.FlashOfferValue)
	}
	if patch.FlashOfferEndsAt != nil {
		set("flash_offer_ends_at", *patch.FlashOfferEndsAt)
	}

	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE live_sessions SET %s WHERE id = $%d;", strings.Join(sets, ", "), len(args))

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update live session %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.LiveSession, error) {
	session := &models.LiveSession{}
	var (
		activeProduct sql.NullString
		offerType     sql.NullString
		startedAt     sql.NullTime
		endedAt       sql.NullTime
		offerEndsAt   sql.NullTime
		preloaded     pq.StringArray
	)

	err := row.Scan(
		&session.ID,
		&session.SellerID,
		&session.ShopSlug,
		&activeProduct,
		&preloaded,
		&session.IsLive,
		&startedAt,
		&endedAt,
		&session.FlashOfferActive,
		&offerType,
		&session.FlashOfferValue,
		&offerEndsAt,
		&session.ShowPublicCounter,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.ActiveProductID = activeProduct.String
	session.FlashOfferType = models.OfferType(offerType.String)
	session.PreloadedProducts = []string(preloaded)
	if startedAt.Valid {
		t := startedAt.Time
		session.LiveStartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		session.LiveEndedAt = &t
	}
	if offerEndsAt.Valid {
		t := offerEndsAt.Time
		session.FlashOfferEndsAt = &t
	}

	return session, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
