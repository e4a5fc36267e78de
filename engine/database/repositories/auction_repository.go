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

type AuctionRepository interface {
	DB() *bun.DB
	GetByID(ctx context.Context, id int64) (*models.Auction, error)
	GetByAuctionID(ctx context.Context, auctionID string) (*models.Auction, error)
	GetActive(ctx context.Context) ([]*models.Auction, error)
	GetAuctionBids(ctx context.Context, auctionID int64) ([]*models.AuctionBid, error)
	GetUserBids(ctx context.Context, userID string) ([]*models.AuctionBid, error)
	AuctionIDExists(ctx context.Context, auctionID string) (bool, error)
}

type auctionRepository struct {
	db *bun.DB
}

func NewAuctionRepository(db *bun.DB) AuctionRepository {
	return &auctionRepository{db: db}
}

func (r *auctionRepository) DB() *bun.DB {
	return r.db
}

func (r *auctionRepository) GetByID(ctx context.Context, id int64) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

func (r *auctionRepository) GetByAuctionID(ctx context.Context, auctionID string) (*models.Auction, error) {
	auction := new(models.Auction)
	err := r.db.NewSelect().
		Model(auction).
		Where("auction_id = ?", auctionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return auction, nil
}

func (r *auctionRepository) GetActive(ctx context.Context) ([]*models.Auction, error) {
	var auctions []*models.Auction
	err := r.db.NewSelect().
		Model(&auctions).
		Where("status = ?", models.AuctionStatusActive).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active auctions: %w", err)
	}
	return auctions, nil
}

// GetAuctionBids returns the outstanding bids in append order; the last
// element is always the current highest.
func (r *auctionRepository) GetAuctionBids(ctx context.Context, auctionID int64) ([]*models.AuctionBid, error) {
	var bids []*models.AuctionBid
	err := r.db.NewSelect().
		Model(&bids).
		Where("auction_id = ?", auctionID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auction bids: %w", err)
	}
	return bids, nil
}

func (r *auctionRepository) GetUserBids(ctx context.Context, userID string) ([]*models.AuctionBid, error) {
	var bids []*models.AuctionBid
	err := r.db.NewSelect().
		Model(&bids).
		Where("bidder_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bids: %w", err)
	}
	return bids, nil
}

func (r *auctionRepository) AuctionIDExists(ctx context.Context, auctionID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.Auction)(nil)).
		Where("auction_id = ?", auctionID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check auction id: %w", err)
	}
	return exists, nil
}
