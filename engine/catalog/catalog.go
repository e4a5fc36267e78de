// Package catalog reads the external card catalog. Lookups are cached; a
// missing catalog entry never blocks a ledger or credit operation, display
// just falls back to UnknownCardName.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/database/repositories"
	"github.com/duelmarket/duelmarket/engine/economy"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"
)

const UnknownCardName = "Unknown Card"

const defaultCacheSize = 4096

type Service struct {
	repo  repositories.CardRepository
	cache *lru.Cache
}

func NewService(repo repositories.CardRepository) (*Service, error) {
	cache, err := lru.New(defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create card cache: %w", err)
	}
	return &Service{repo: repo, cache: cache}, nil
}

func (s *Service) Lookup(ctx context.Context, cardID int64) (*models.Card, error) {
	if cached, ok := s.cache.Get(cardID); ok {
		return cached.(*models.Card), nil
	}

	card, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(cardID, card)
	return card, nil
}

// DisplayName resolves a card name for UI output. Catalog misses are not
// errors here; absent entries render as UnknownCardName.
func (s *Service) DisplayName(ctx context.Context, cardID int64) string {
	card, err := s.Lookup(ctx, cardID)
	if err != nil {
		if !errors.Is(err, economy.ErrNotFound) {
			slog.Warn("Card catalog lookup failed",
				slog.Int64("card_id", cardID),
				slog.String("error", err.Error()))
		}
		return UnknownCardName
	}
	return card.Name
}

// Count returns the catalog size, bypassing the cache.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.GetCardCount(ctx)
}

type cardSource []*models.Card

func (c cardSource) String(i int) string { return c[i].Name }
func (c cardSource) Len() int            { return len(c) }

// Search fuzzy-matches card names, best matches first.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*models.Card, error) {
	cards, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for search: %w", err)
	}

	matches := fuzzy.FindFrom(query, cardSource(cards))
	if limit <= 0 || limit > len(matches) {
		limit = len(matches)
	}

	results := make([]*models.Card, 0, limit)
	for _, match := range matches[:limit] {
		results = append(results, cards[match.Index])
	}
	return results, nil
}
