package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/topmuch/qrsell-sub000/models"
)

type SellerStore struct {
	db *sql.DB
}

// NewSellerStore creates a new SellerStore instance.
func NewSellerStore(db *sql.DB) *SellerStore {
	return &SellerStore{db: db}
}

// CreateSeller inserts a new seller account into the database.
func (s *SellerStore) CreateSeller(ctx context.Context, email string, hashedPassword []byte, shopSlug, whatsappNumber string) (*models.Seller, error) {
	seller := &models.Seller{}
	query := `
		INSERT INTO sellers (email, hashed_password, shop_slug, whatsapp_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, shop_slug, whatsapp_number, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword, shopSlug, whatsappNumber).Scan(
		&seller.ID,
		&seller.Email,
		&seller.ShopSlug,
		&seller.WhatsAppNumber,
		&seller.CreatedAt,
		&seller.UpdatedAt,
	)
	if err != nil {
		if err.Error() == `pq: duplicate key value violates unique constraint "sellers_email_key"` {
			return nil, fmt.Errorf("seller with email '%s' already exists", email)
		}
		if err.Error() == `pq: duplicate key value violates unique constraint "sellers_shop_slug_key"` {
			return nil, fmt.Errorf("shop slug '%s' is already taken", shopSlug)
		}
		return nil, fmt.Errorf("failed to create seller: %w", err)
	}

	log.Printf("Seller created in DB: ID=%d, Email=%s, Shop=%s", seller.ID, seller.Email, seller.ShopSlug)
	return seller, nil
}

func (s *SellerStore) GetSellerByEmail(ctx context.Context, email string) (*models.Seller, error) {
	seller := &models.Seller{}
	query := `
		SELECT id, email, hashed_password, shop_slug, whatsapp_number, created_at, updated_at
		FROM sellers
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&seller.ID,
		&seller.Email,
		&seller.HashedPassword,
		&seller.ShopSlug,
		&seller.WhatsAppNumber,
		&seller.CreatedAt,
		&seller.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("seller with email '%s' not found", email)
		}
		return nil, fmt.Errorf("failed to get seller by email: %w", err)
	}

	return seller, nil
}

func (s *SellerStore) GetSellerBySlug(ctx context.Context, shopSlug string) (*models.Seller, error) {
	seller := &models.Seller{}
	query := `
		SELECT id, email, hashed_password, shop_slug, whatsapp_number, created_at, updated_at
		FROM sellers
		WHERE shop_slug = $1;
	`
	err := s.db.QueryRowContext(ctx, query, shopSlug).Scan(
		&seller.ID,
		&seller.Email,
		&seller.HashedPassword,
		&seller.ShopSlug,
		&seller.WhatsAppNumber,
		&seller.CreatedAt,
		&seller.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("shop '%s' not found", shopSlug)
		}
		return nil, fmt.Errorf("failed to get seller by shop slug: %w", err)
	}

	return seller, nil
}
