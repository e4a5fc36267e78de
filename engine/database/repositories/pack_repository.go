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

type PackRepository interface {
	DB() *bun.DB
	Create(ctx context.Context, pack *models.Pack) error
	Update(ctx context.Context, pack *models.Pack) error
	Deactivate(ctx context.Context, packID int64) error
	GetByID(ctx context.Context, packID int64) (*models.Pack, error)
	GetActive(ctx context.Context) ([]*models.Pack, error)
}

type packRepository struct {
	db *bun.DB
}

func NewPackRepository(db *bun.DB) PackRepository {
	return &packRepository{db: db}
}

func (r *packRepository) DB() *bun.DB {
	return r.db
}

func (r *packRepository) Create(ctx context.Context, pack *models.Pack) error {
	if err := economy.ValidatePack(pack); err != nil {
		return err
	}
	pack.Active = true
	pack.CreatedAt = time.Now()
	pack.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().Model(pack).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create pack: %w", err)
	}
	return nil
}

func (r *packRepository) Update(ctx context.Context, pack *models.Pack) error {
	if err := economy.ValidatePack(pack); err != nil {
		return err
	}
	pack.UpdatedAt = time.Now()

	result, err := r.db.NewUpdate().
		Model(pack).
		Column("name", "price", "slots", "card_pool", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update pack: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return economy.ErrNotFound
	}
	return nil
}

func (r *packRepository) Deactivate(ctx context.Context, packID int64) error {
	result, err := r.db.NewUpdate().
		Model((*models.Pack)(nil)).
		Set("active = false").
		Set("updated_at = ?", time.Now()).
		Where("id = ? AND active = true", packID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to deactivate pack: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return economy.ErrNotFound
	}
	return nil
}

func (r *packRepository) GetByID(ctx context.Context, packID int64) (*models.Pack, error) {
	pack := new(models.Pack)
	err := r.db.NewSelect().
		Model(pack).
		Where("id = ? AND active = true", packID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pack: %w", err)
	}
	return pack, nil
}

func (r *packRepository) GetActive(ctx context.Context) ([]*models.Pack, error) {
	var packs []*models.Pack
	err := r.db.NewSelect().
		Model(&packs).
		Where("active = true").
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active packs: %w", err)
	}
	return packs, nil
}
