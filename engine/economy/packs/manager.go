package packs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/duelmarket/duelmarket/engine/catalog"
	"github.com/duelmarket/duelmarket/engine/database"
	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/database/repositories"
)

const (
	MinPacksPerOpen = 1
	MaxPacksPerOpen = 100
)

// Manager is the pack opening engine: it consumes a credits debit and writes
// the drawn copies into the inventory ledger as one atomic unit.
type Manager struct {
	db      *database.DB
	packs   repositories.PackRepository
	catalog *catalog.Service

	mu  sync.Mutex
	src Source
}

func NewManager(db *database.DB, packRepo repositories.PackRepository, catalogSvc *catalog.Service) *Manager {
	return &Manager{
		db:      db,
		packs:   packRepo,
		catalog: catalogSvc,
		src:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetSource replaces the draw randomness. Draws become reproducible under a
// scripted source, which is how the walk is pinned down in tests.
func (m *Manager) SetSource(src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = src
}

// Open opens quantity packs for a user. All draws are resolved first, then the
// price debit and the ledger credits commit together; a failure anywhere rolls
// the whole unit back, so the user is never debited without receiving cards.
func (m *Manager) Open(ctx context.Context, userID string, packID int64, quantity int) ([]DrawnCard, error) {
	if quantity < MinPacksPerOpen || quantity > MaxPacksPerOpen {
		return nil, fmt.Errorf("quantity must be between %d and %d, got %d", MinPacksPerOpen, MaxPacksPerOpen, quantity)
	}

	pack, err := m.packs.GetByID(ctx, packID)
	if err != nil {
		return nil, err
	}
	totalPrice := pack.Price * int64(quantity)

	m.mu.Lock()
	drawn := make([]DrawnCard, 0, quantity*models.CardsPerPack)
	for i := 0; i < quantity; i++ {
		drawn = append(drawn, drawPack(pack, m.src)...)
	}
	m.mu.Unlock()

	deltas := aggregate(drawn)

	tx, err := m.db.BunDB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := repositories.LockUser(ctx, tx, userID); err != nil {
		return nil, err
	}
	if err := repositories.DebitBalance(ctx, tx, userID, totalPrice); err != nil {
		return nil, err
	}
	for _, delta := range deltas {
		if err := repositories.CreditCopies(ctx, tx, userID, delta.cardID, delta.rarity, delta.count); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit pack opening: %w", err)
	}

	// Display enrichment only; catalog misses must not block the opening.
	for i := range drawn {
		drawn[i].Name = m.catalog.DisplayName(ctx, drawn[i].CardID)
	}

	slog.Info("Packs opened",
		slog.String("user_id", userID),
		slog.Int64("pack_id", packID),
		slog.Int("quantity", quantity),
		slog.Int64("total_price", totalPrice),
		slog.Int("cards_drawn", len(drawn)))

	return drawn, nil
}
