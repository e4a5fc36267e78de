// Package market implements fixed-price listings: bulk sales of a
// (card, rarity) pair with the unsold remainder escrowed out of the seller's
// ledger until purchase or expiry.
package market

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/duelmarket/duelmarket/engine/database"
	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/database/repositories"
	"github.com/duelmarket/duelmarket/engine/economy"
)

const DefaultListingDuration = 72 * time.Hour

type Manager struct {
	db       *database.DB
	listings repositories.ListingRepository
	duration time.Duration
}

func NewManager(db *database.DB, listingRepo repositories.ListingRepository, duration time.Duration) *Manager {
	if duration <= 0 {
		duration = DefaultListingDuration
	}
	return &Manager{
		db:       db,
		listings: listingRepo,
		duration: duration,
	}
}

// CreateListing escrows quantity copies out of the seller's ledger and opens a
// fixed-price listing with the configured expiry horizon.
func (m *Manager) CreateListing(ctx context.Context, sellerID string, cardID int64, rarity models.Rarity, quantity, price int64) (*models.Listing, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("listing quantity must be at least 1, got %d", quantity)
	}
	if price < 1 {
		return nil, fmt.Errorf("listing price must be at least 1, got %d", price)
	}
	if !rarity.Valid() {
		return nil, fmt.Errorf("unknown rarity: %q", rarity)
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

	listing := &models.Listing{
		CardID:    cardID,
		Rarity:    rarity,
		Quantity:  quantity,
		Price:     price,
		SellerID:  sellerID,
		Status:    models.ListingStatusActive,
		ExpiresAt: time.Now().Add(m.duration),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if _, err := tx.NewInsert().Model(listing).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit listing creation: %w", err)
	}

	slog.Info("Listing created",
		slog.Int64("listing_id", listing.ID),
		slog.String("seller_id", sellerID),
		slog.Int64("card_id", cardID),
		slog.String("rarity", string(rarity)),
		slog.Int64("quantity", quantity),
		slog.Int64("price", price))

	return listing, nil
}

// Buy purchases quantity units from a listing. Partial fills are allowed;
// the listing closes once sold_quantity reaches quantity. Buyer debit, seller
// credit, inventory credit and the stock increment commit as one unit.
func (m *Manager) Buy(ctx context.Context, buyerID string, listingID, quantity int64) (*models.Listing, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("buy quantity must be at least 1, got %d", quantity)
	}

	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	listing := new(models.Listing)
	err = tx.NewSelect().
		Model(listing).
		Where("id = ?", listingID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock listing: %w", err)
	}

	if err := validatePurchase(listing, buyerID, quantity); err != nil {
		return nil, err
	}

	total := listing.Price * quantity
	buyer, err := repositories.LockUser(ctx, tx, buyerID)
	if err != nil {
		return nil, err
	}
	if buyer.Balance < total {
		return nil, economy.ErrInsufficientCredits
	}

	if err := repositories.DebitBalance(ctx, tx, buyerID, total); err != nil {
		return nil, err
	}
	if err := repositories.CreditBalance(ctx, tx, listing.SellerID, total); err != nil {
		return nil, err
	}
	if err := repositories.CreditCopies(ctx, tx, buyerID, listing.CardID, listing.Rarity, quantity); err != nil {
		return nil, err
	}

	listing.SoldQuantity += quantity
	if listing.SoldQuantity == listing.Quantity {
		listing.Status = models.ListingStatusSoldOut
	}
	_, err = tx.NewUpdate().
		Model(listing).
		Set("sold_quantity = ?", listing.SoldQuantity).
		Set("status = ?", listing.Status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", listing.ID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	slog.Info("Listing purchased",
		slog.Int64("listing_id", listing.ID),
		slog.String("buyer_id", buyerID),
		slog.String("seller_id", listing.SellerID),
		slog.Int64("quantity", quantity),
		slog.Int64("total", total),
		slog.String("status", string(listing.Status)))

	return listing, nil
}

// SweepExpired finalizes every expired active listing exactly once: the
// unsold remainder goes back to the seller and the listing moves to the
// expired terminal state. Safe to run concurrently with itself and with
// purchases; each listing settles in its own serializable unit.
func (m *Manager) SweepExpired(ctx context.Context) error {
	var ids []int64
	err := m.db.BunDB().NewSelect().
		Model((*models.Listing)(nil)).
		Column("id").
		Where("status = ? AND expires_at <= ?", models.ListingStatusActive, time.Now()).
		Scan(ctx, &ids)
	if err != nil {
		return fmt.Errorf("failed to find expired listings: %w", err)
	}

	for _, id := range ids {
		if err := m.settleExpired(ctx, id); err != nil {
			slog.Error("Failed to settle expired listing",
				slog.Int64("listing_id", id),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (m *Manager) settleExpired(ctx context.Context, listingID int64) error {
	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	listing := new(models.Listing)
	err = tx.NewSelect().
		Model(listing).
		Where("id = ?", listingID).
		For("UPDATE SKIP LOCKED").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Locked by a concurrent sweep or already gone.
			return nil
		}
		return fmt.Errorf("failed to lock listing: %w", err)
	}

	// The status recheck inside the settling unit is what makes the sweep
	// idempotent: a second pass sees a terminal status and does nothing.
	if listing.Status != models.ListingStatusActive || listing.ExpiresAt.After(time.Now()) {
		return nil
	}

	if remainder := listing.Remaining(); remainder > 0 {
		if err := repositories.CreditCopies(ctx, tx, listing.SellerID, listing.CardID, listing.Rarity, remainder); err != nil {
			return err
		}
	}

	_, err = tx.NewUpdate().
		Model(listing).
		Set("status = ?", models.ListingStatusExpired).
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND status = ?", listing.ID, models.ListingStatusActive).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to expire listing: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit listing expiry: %w", err)
	}

	slog.Info("Expired listing returned",
		slog.Int64("listing_id", listing.ID),
		slog.String("seller_id", listing.SellerID),
		slog.Int64("returned", listing.Remaining()))

	return nil
}

// GetActive lists open listings, reaping expired ones first so browsers never
// see stale stock.
func (m *Manager) GetActive(ctx context.Context) ([]*models.Listing, error) {
	if err := m.SweepExpired(ctx); err != nil {
		slog.Error("Lazy listing sweep failed", slog.String("error", err.Error()))
	}
	return m.listings.GetActive(ctx)
}

func (m *Manager) GetByID(ctx context.Context, id int64) (*models.Listing, error) {
	return m.listings.GetByID(ctx, id)
}

func (m *Manager) BySeller(ctx context.Context, sellerID string) ([]*models.Listing, error) {
	return m.listings.GetBySeller(ctx, sellerID)
}
