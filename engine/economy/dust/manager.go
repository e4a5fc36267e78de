// Package dust converts owned card copies back into credits at the fixed
// per-rarity rates.
package dust

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/duelmarket/duelmarket/engine/database"
	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/database/repositories"
)

type Manager struct {
	db *database.DB
}

func NewManager(db *database.DB) *Manager {
	return &Manager{db: db}
}

// Dust converts quantity copies of an exact (card, rarity) pair into credits.
// The ledger debit and the balance credit commit together.
func (m *Manager) Dust(ctx context.Context, userID string, cardID int64, rarity models.Rarity, quantity int64) (int64, error) {
	if quantity < 1 {
		return 0, fmt.Errorf("dust quantity must be at least 1, got %d", quantity)
	}
	if !rarity.Valid() {
		return 0, fmt.Errorf("unknown rarity: %q", rarity)
	}

	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if err := repositories.DebitCopies(ctx, tx, userID, cardID, rarity, quantity); err != nil {
		return 0, err
	}
	credits := quantity * rarity.DustValue()
	if err := repositories.CreditBalance(ctx, tx, userID, credits); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit dust: %w", err)
	}

	slog.Info("Cards dusted",
		slog.String("user_id", userID),
		slog.Int64("card_id", cardID),
		slog.String("rarity", string(rarity)),
		slog.Int64("quantity", quantity),
		slog.Int64("credits", credits))

	return credits, nil
}

// DustAll dusts every owned copy of an exact (card, rarity) pair.
func (m *Manager) DustAll(ctx context.Context, userID string, cardID int64, rarity models.Rarity) (int64, error) {
	if !rarity.Valid() {
		return 0, fmt.Errorf("unknown rarity: %q", rarity)
	}

	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	owned, err := repositories.LockCopies(ctx, tx, userID, cardID, rarity)
	if err != nil {
		return 0, err
	}
	if err := repositories.DebitCopies(ctx, tx, userID, cardID, rarity, owned.Amount); err != nil {
		return 0, err
	}
	credits := owned.Amount * rarity.DustValue()
	if err := repositories.CreditBalance(ctx, tx, userID, credits); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit dust all: %w", err)
	}

	slog.Info("All copies dusted",
		slog.String("user_id", userID),
		slog.Int64("card_id", cardID),
		slog.String("rarity", string(rarity)),
		slog.Int64("quantity", owned.Amount),
		slog.Int64("credits", credits))

	return credits, nil
}

// DustAllKeep dusts every copy of a card beyond a 3-copy budget shared across
// all rarities, filling the budget from lower rarities first.
func (m *Manager) DustAllKeep(ctx context.Context, userID string, cardID int64) (int64, error) {
	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var rows []*models.UserCard
	err = tx.NewSelect().
		Model(&rows).
		Where("user_id = ? AND card_id = ?", userID, cardID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to lock user card rows: %w", err)
	}

	counts := make(map[models.Rarity]int64, len(rows))
	for _, row := range rows {
		counts[row.Rarity] = row.Amount
	}

	plan, credits := planKeep(counts, KeepBudget)
	if len(plan) == 0 {
		return 0, nil
	}

	for _, step := range plan {
		if err := repositories.DebitCopies(ctx, tx, userID, cardID, step.rarity, step.count); err != nil {
			return 0, err
		}
	}
	if err := repositories.CreditBalance(ctx, tx, userID, credits); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit dust all keep: %w", err)
	}

	slog.Info("Dusted down to keep budget",
		slog.String("user_id", userID),
		slog.Int64("card_id", cardID),
		slog.Int("keep", KeepBudget),
		slog.Int64("credits", credits))

	return credits, nil
}
