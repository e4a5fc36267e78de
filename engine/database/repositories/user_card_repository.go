package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/economy"
	"github.com/uptrace/bun"
)

type UserCardRepository interface {
	DB() *bun.DB
	GetAllByUserID(ctx context.Context, userID string) ([]*models.UserCard, error)
	GetByUserCardRarity(ctx context.Context, userID string, cardID int64, rarity models.Rarity) (*models.UserCard, error)
	GetByUserAndCard(ctx context.Context, userID string, cardID int64) ([]*models.UserCard, error)
	TotalCopies(ctx context.Context, userID string, cardID int64) (int64, error)
	CleanupZeroAmountCards(ctx context.Context) error
}

type userCardRepository struct {
	db *bun.DB
}

func NewUserCardRepository(db *bun.DB) UserCardRepository {
	return &userCardRepository{db: db}
}

func (r *userCardRepository) DB() *bun.DB {
	return r.db
}

func (r *userCardRepository) GetAllByUserID(ctx context.Context, userID string) ([]*models.UserCard, error) {
	var userCards []*models.UserCard
	err := r.db.NewSelect().
		Model(&userCards).
		Where("user_id = ? AND amount > 0", userID).
		Order("obtained DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user cards: %w", err)
	}
	return userCards, nil
}

func (r *userCardRepository) GetByUserCardRarity(ctx context.Context, userID string, cardID int64, rarity models.Rarity) (*models.UserCard, error) {
	userCard := new(models.UserCard)
	err := r.db.NewSelect().
		Model(userCard).
		Where("user_id = ? AND card_id = ? AND rarity = ?", userID, cardID, rarity).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user card: %w", err)
	}
	return userCard, nil
}

func (r *userCardRepository) GetByUserAndCard(ctx context.Context, userID string, cardID int64) ([]*models.UserCard, error) {
	var userCards []*models.UserCard
	err := r.db.NewSelect().
		Model(&userCards).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user card rows: %w", err)
	}
	return userCards, nil
}

// TotalCopies sums owned copies of a card across every rarity. Rarities stay
// separate rows; this is a display aggregate only.
func (r *userCardRepository) TotalCopies(ctx context.Context, userID string, cardID int64) (int64, error) {
	var total sql.NullInt64
	err := r.db.NewSelect().
		Model((*models.UserCard)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND card_id = ?", userID, cardID).
		Scan(ctx, &total)
	if err != nil {
		return 0, fmt.Errorf("failed to count copies: %w", err)
	}
	return total.Int64, nil
}

// CleanupZeroAmountCards prunes all-zero ledger rows. Pruning is an
// optimization; callers never rely on row absence to mean "never owned".
func (r *userCardRepository) CleanupZeroAmountCards(ctx context.Context) error {
	_, err := r.db.NewDelete().
		Model((*models.UserCard)(nil)).
		Where("amount <= 0").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cleanup zero amount cards: %w", err)
	}
	return nil
}

// CreditCopies adds copies of a (card, rarity) pair to a user's ledger inside
// tx, creating the row on first acquisition.
func CreditCopies(ctx context.Context, tx bun.Tx, userID string, cardID int64, rarity models.Rarity, count int64) error {
	if count <= 0 {
		return fmt.Errorf("credit count must be positive, got %d", count)
	}
	_, err := tx.NewInsert().
		Model(&models.UserCard{
			UserID:    userID,
			CardID:    cardID,
			Rarity:    rarity,
			Amount:    count,
			Obtained:  time.Now(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).
		On("CONFLICT (user_id, card_id, rarity) DO UPDATE").
		Set("amount = user_cards.amount + ?", count).
		Set("updated_at = ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to credit copies: %w", err)
	}
	return nil
}

// DebitCopies removes copies of a (card, rarity) pair inside tx, guarded so
// the count can never go negative. Rarities are not fungible: the guard checks
// the exact (card, rarity) row. Zero rows are pruned afterwards.
func DebitCopies(ctx context.Context, tx bun.Tx, userID string, cardID int64, rarity models.Rarity, count int64) error {
	if count <= 0 {
		return fmt.Errorf("debit count must be positive, got %d", count)
	}
	result, err := tx.NewUpdate().
		Model((*models.UserCard)(nil)).
		Set("amount = amount - ?", count).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND card_id = ? AND rarity = ? AND amount >= ?", userID, cardID, rarity, count).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to debit copies: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return economy.ErrInsufficientInventory
	}

	_, err = tx.NewDelete().
		Model((*models.UserCard)(nil)).
		Where("user_id = ? AND card_id = ? AND rarity = ? AND amount <= 0", userID, cardID, rarity).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to prune zero amount row: %w", err)
	}
	return nil
}

// LockCopies reads a ledger row under FOR UPDATE inside tx. Returns
// ErrInsufficientInventory when the row does not exist.
func LockCopies(ctx context.Context, tx bun.Tx, userID string, cardID int64, rarity models.Rarity) (*models.UserCard, error) {
	userCard := new(models.UserCard)
	err := tx.NewSelect().
		Model(userCard).
		Where("user_id = ? AND card_id = ? AND rarity = ?", userID, cardID, rarity).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrInsufficientInventory
		}
		return nil, fmt.Errorf("failed to lock user card: %w", err)
	}
	return userCard, nil
}
