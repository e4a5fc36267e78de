// Package auction implements single-lot escrow auctions. The escrowed copies
// and every outstanding bid are held out of their owners' ledgers until the
// auction settles, so a crash can never duplicate or strand value.
package auction

import (
	"context"
	cryptorand "crypto/rand"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/duelmarket/duelmarket/engine/database"
	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/database/repositories"
	"github.com/duelmarket/duelmarket/engine/economy"
)

const (
	DefaultAuctionDuration = 24 * time.Hour

	displayIDLength   = 4
	displayIDAttempts = 10
)

type Manager struct {
	db       *database.DB
	auctions repositories.AuctionRepository
	duration time.Duration
}

func NewManager(db *database.DB, auctionRepo repositories.AuctionRepository, duration time.Duration) *Manager {
	if duration <= 0 {
		duration = DefaultAuctionDuration
	}
	return &Manager{
		db:       db,
		auctions: auctionRepo,
		duration: duration,
	}
}

// generateDisplayID produces the short public auction handle. Collisions are
// checked against the table and retried.
func (m *Manager) generateDisplayID(ctx context.Context) (string, error) {
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	for attempt := 0; attempt < displayIDAttempts; attempt++ {
		raw := make([]byte, 3)
		if _, err := cryptorand.Read(raw); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		id := encoder.EncodeToString(raw)[:displayIDLength]
		exists, err := m.auctions.AuctionIDExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique auction id after %d attempts", displayIDAttempts)
}

// Create escrows the full lot out of the seller's ledger and opens the
// auction with the configured duration.
func (m *Manager) Create(ctx context.Context, sellerID string, cardID int64, rarity models.Rarity, quantity, startPrice int64) (*models.Auction, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("auction quantity must be at least 1, got %d", quantity)
	}
	if startPrice < 1 {
		return nil, fmt.Errorf("start price must be at least 1, got %d", startPrice)
	}
	if !rarity.Valid() {
		return nil, fmt.Errorf("unknown rarity: %q", rarity)
	}

	displayID, err := m.generateDisplayID(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := repositories.LockCopies(ctx, tx, sellerID, cardID, rarity); err != nil {
		return nil, err
	}
	if err := repositories.DebitCopies(ctx, tx, sellerID, cardID, rarity, quantity); err != nil {
		return nil, err
	}

	now := time.Now()
	auction := &models.Auction{
		AuctionID:    displayID,
		CardID:       cardID,
		Rarity:       rarity,
		Quantity:     quantity,
		SellerID:     sellerID,
		StartPrice:   startPrice,
		CurrentPrice: startPrice,
		Status:       models.AuctionStatusActive,
		StartTime:    now,
		EndTime:      now.Add(m.duration),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := tx.NewInsert().Model(auction).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit auction creation: %w", err)
	}

	slog.Info("Auction created",
		slog.String("auction_id", auction.AuctionID),
		slog.String("seller_id", sellerID),
		slog.Int64("card_id", cardID),
		slog.String("rarity", string(rarity)),
		slog.Int64("quantity", quantity),
		slog.Int64("start_price", startPrice))

	return auction, nil
}

// PlaceBid escrows a new bid. A bidder holds at most one outstanding bid per
// auction; raising a bid refunds the old escrow and debits the new amount in
// the same unit. The minimum acceptable bid is the current price plus one
// once any bid exists, otherwise the start price.
func (m *Manager) PlaceBid(ctx context.Context, bidderID string, auctionID, amount int64) (*models.Auction, error) {
	if amount < 1 {
		return nil, fmt.Errorf("bid amount must be at least 1, got %d", amount)
	}

	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	auction := new(models.Auction)
	err = tx.NewSelect().
		Model(auction).
		Where("id = ?", auctionID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock auction: %w", err)
	}

	if err := validateBid(auction, bidderID, amount); err != nil {
		return nil, err
	}

	bidder, err := repositories.LockUser(ctx, tx, bidderID)
	if err != nil {
		return nil, err
	}

	// The bidder's previous escrow counts toward the new bid, so the check
	// is against balance plus the outstanding amount.
	previous := new(models.AuctionBid)
	var outstanding int64
	err = tx.NewSelect().
		Model(previous).
		Where("auction_id = ? AND bidder_id = ?", auctionID, bidderID).
		For("UPDATE").
		Scan(ctx)
	switch {
	case err == nil:
		outstanding = previous.Amount
	case errors.Is(err, sql.ErrNoRows):
		previous = nil
	default:
		return nil, fmt.Errorf("failed to read outstanding bid: %w", err)
	}

	if bidder.Balance+outstanding < amount {
		return nil, economy.ErrInsufficientCredits
	}

	if previous != nil {
		if err := repositories.CreditBalance(ctx, tx, bidderID, previous.Amount); err != nil {
			return nil, err
		}
		if _, err := tx.NewDelete().Model(previous).WherePK().Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to release previous bid: %w", err)
		}
	}
	if err := repositories.DebitBalance(ctx, tx, bidderID, amount); err != nil {
		return nil, err
	}

	bid := &models.AuctionBid{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		BidAt:     time.Now(),
	}
	if _, err := tx.NewInsert().Model(bid).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record bid: %w", err)
	}

	now := time.Now()
	auction.CurrentPrice = amount
	auction.TopBidderID = bidderID
	auction.LastBidTime = now
	auction.BidCount++
	_, err = tx.NewUpdate().
		Model(auction).
		Set("current_price = ?", auction.CurrentPrice).
		Set("top_bidder_id = ?", auction.TopBidderID).
		Set("last_bid_time = ?", auction.LastBidTime).
		Set("bid_count = ?", auction.BidCount).
		Set("updated_at = ?", now).
		Where("id = ?", auction.ID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bid: %w", err)
	}

	slog.Info("Bid placed",
		slog.String("auction_id", auction.AuctionID),
		slog.String("bidder_id", bidderID),
		slog.Int64("amount", amount),
		slog.Int("bid_count", auction.BidCount))

	return auction, nil
}

// SweepExpired settles every ended active auction exactly once. With bids, the
// winner (the newest bid row, since every accepted bid strictly raises the
// price) receives the lot, the seller receives the winning amount, and every
// other outstanding escrow is refunded. Without bids the lot returns to the
// seller. The status recheck inside the settling unit makes the sweep
// idempotent under concurrent runs.
func (m *Manager) SweepExpired(ctx context.Context) error {
	var ids []int64
	err := m.db.BunDB().NewSelect().
		Model((*models.Auction)(nil)).
		Column("id").
		Where("status = ? AND end_time <= ?", models.AuctionStatusActive, time.Now()).
		Scan(ctx, &ids)
	if err != nil {
		return fmt.Errorf("failed to find expired auctions: %w", err)
	}

	for _, id := range ids {
		if err := m.settleExpired(ctx, id); err != nil {
			slog.Error("Failed to settle expired auction",
				slog.Int64("auction_id", id),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (m *Manager) settleExpired(ctx context.Context, auctionID int64) error {
	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	auction := new(models.Auction)
	err = tx.NewSelect().
		Model(auction).
		Where("id = ?", auctionID).
		For("UPDATE SKIP LOCKED").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Locked by a concurrent sweep or already gone.
			return nil
		}
		return fmt.Errorf("failed to lock auction: %w", err)
	}
	if auction.Status != models.AuctionStatusActive || auction.EndTime.After(time.Now()) {
		return nil
	}

	var bids []*models.AuctionBid
	err = tx.NewSelect().
		Model(&bids).
		Where("auction_id = ?", auctionID).
		Order("id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to load outstanding bids: %w", err)
	}

	status := models.AuctionStatusReturned
	winnerID := ""
	if len(bids) > 0 {
		winner := bids[len(bids)-1]
		status = models.AuctionStatusWon
		winnerID = winner.BidderID

		if err := repositories.CreditCopies(ctx, tx, winner.BidderID, auction.CardID, auction.Rarity, auction.Quantity); err != nil {
			return err
		}
		if err := repositories.CreditBalance(ctx, tx, auction.SellerID, winner.Amount); err != nil {
			return err
		}
		for _, bid := range bids[:len(bids)-1] {
			if err := repositories.CreditBalance(ctx, tx, bid.BidderID, bid.Amount); err != nil {
				return err
			}
		}
		_, err = tx.NewDelete().
			Model((*models.AuctionBid)(nil)).
			Where("auction_id = ?", auctionID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear settled bids: %w", err)
		}
	} else {
		if err := repositories.CreditCopies(ctx, tx, auction.SellerID, auction.CardID, auction.Rarity, auction.Quantity); err != nil {
			return err
		}
	}

	_, err = tx.NewUpdate().
		Model(auction).
		Set("status = ?", status).
		Set("winner_id = ?", winnerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND status = ?", auction.ID, models.AuctionStatusActive).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to finalize auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit auction settlement: %w", err)
	}

	slog.Info("Auction settled",
		slog.String("auction_id", auction.AuctionID),
		slog.String("status", string(status)),
		slog.String("winner_id", winnerID),
		slog.Int64("final_price", auction.CurrentPrice),
		slog.Int("bids_released", len(bids)))

	return nil
}

// GetActive lists open auctions, settling any ended ones first so callers
// never see a stale lot.
func (m *Manager) GetActive(ctx context.Context) ([]*models.Auction, error) {
	if err := m.SweepExpired(ctx); err != nil {
		slog.Error("Lazy auction sweep failed", slog.String("error", err.Error()))
	}
	return m.auctions.GetActive(ctx)
}

func (m *Manager) GetByID(ctx context.Context, id int64) (*models.Auction, error) {
	return m.auctions.GetByID(ctx, id)
}

func (m *Manager) GetByAuctionID(ctx context.Context, displayID string) (*models.Auction, error) {
	return m.auctions.GetByAuctionID(ctx, displayID)
}

// Bids returns the outstanding bids in append order; the last element is the
// current highest.
func (m *Manager) Bids(ctx context.Context, auctionID int64) ([]*models.AuctionBid, error) {
	return m.auctions.GetAuctionBids(ctx, auctionID)
}

func (m *Manager) UserBids(ctx context.Context, userID string) ([]*models.AuctionBid, error) {
	return m.auctions.GetUserBids(ctx, userID)
}
