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

// CardRepository reads the external card catalog. The engine never writes
// cards; import is owned by an administrative collaborator.
type CardRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Card, error)
	GetAll(ctx context.Context) ([]*models.Card, error)
	GetCardCount(ctx context.Context) (int, error)
}

type cardRepository struct {
	db *bun.DB
}

func NewCardRepository(db *bun.DB) CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, economy.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func (r *cardRepository) GetAll(ctx context.Context) ([]*models.Card, error) {
	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) GetCardCount(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}
