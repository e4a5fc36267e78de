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

type UserRepository interface {
	DB() *bun.DB
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetOrCreate(ctx context.Context, userID string) (*models.User, error)
	Grant(ctx context.Context, userID string, amount int64) error
}

type userRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) DB() *bun.DB {
	return r.db
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user := new(models.User)
	err := r.db.NewSelect().
		Model(user).
		Where("user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) GetOrCreate(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{
		UserID:    userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetByID(ctx, userID)
}

// Grant credits an account from outside the economy (admin collaborator).
func (r *userRepository) Grant(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	user := &models.User{
		UserID:    userID,
		Balance:   amount,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (user_id) DO UPDATE").
		Set("balance = users.balance + ?", amount).
		Set("updated_at = ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to grant credits: %w", err)
	}
	return nil
}

// LockUser reads an account under FOR UPDATE inside tx, creating the row first
// if it does not exist yet. Every balance mutation goes through a lock taken
// this way so concurrent operations on the same account serialize.
func LockUser(ctx context.Context, tx bun.Tx, userID string) (*models.User, error) {
	user := new(models.User)
	err := tx.NewSelect().
		Model(user).
		Where("user_id = ?", userID).
		For("UPDATE").
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		_, err = tx.NewInsert().
			Model(&models.User{UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}).
			On("CONFLICT (user_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		err = tx.NewSelect().
			Model(user).
			Where("user_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	return user, nil
}

// DebitBalance subtracts amount inside tx, guarded so the balance can never go
// negative. Returns ErrInsufficientCredits when the guard rejects the update.
func DebitBalance(ctx context.Context, tx bun.Tx, userID string, amount int64) error {
	result, err := tx.NewUpdate().
		Model((*models.User)(nil)).
		Set("balance = balance - ?", amount).
		Set("updated_at = ?", time.Now()).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return economy.ErrInsufficientCredits
	}
	return nil
}

// CreditBalance adds amount to an account inside tx, creating it if needed.
func CreditBalance(ctx context.Context, tx bun.Tx, userID string, amount int64) error {
	user := &models.User{
		UserID:    userID,
		Balance:   amount,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_, err := tx.NewInsert().
		Model(user).
		On("CONFLICT (user_id) DO UPDATE").
		Set("balance = users.balance + ?", amount).
		Set("updated_at = ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", err)
	}
	return nil
}
