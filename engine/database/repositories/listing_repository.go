package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/economy"
	"github.com/uptrace/bun"
)

type ListingRepository interface {
	DB() *bun.DB
	GetByID(ctx context.Context, id int64) (*models.Listing, error)
	GetActive(ctx context.Context) ([]*models.Listing, error)
	GetBySeller(ctx context.Context, sellerID string) ([]*models.Listing, error)
}

type listingRepository struct {
	db *bun.DB
}

func NewListingRepository(db *bun.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) DB() *bun.DB {
	return r.db
}

func (r *listingRepository) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	listing := new(models.Listing)
	err := r.db.NewSelect().
		Model(listing).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return listing, nil
}

func (r *listingRepository) GetActive(ctx context.Context) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("status = ?", models.ListingStatusActive).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active listings: %w", err)
	}
	return listings, nil
}

func (r *listingRepository) GetBySeller(ctx context.Context, sellerID string) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.NewSelect().
		Model(&listings).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get seller listings: %w", err)
	}
	return listings, nil
}
