package catalog

import (
	"context"
	"testing"

	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/economy"
)

// stubCardRepository serves a fixed card set and counts repository hits so the
// cache behavior is observable.
type stubCardRepository struct {
	cards map[int64]*models.Card
	hits  int
}

func (s *stubCardRepository) GetByID(ctx context.Context, id int64) (*models.Card, error) {
	s.hits++
	card, ok := s.cards[id]
	if !ok {
		return nil, economy.ErrNotFound
	}
	return card, nil
}

func (s *stubCardRepository) GetAll(ctx context.Context) ([]*models.Card, error) {
	out := make([]*models.Card, 0, len(s.cards))
	for _, id := range []int64{1, 2, 3} {
		if card, ok := s.cards[id]; ok {
			out = append(out, card)
		}
	}
	return out, nil
}

func (s *stubCardRepository) GetCardCount(ctx context.Context) (int, error) {
	return len(s.cards), nil
}

func newStubRepo() *stubCardRepository {
	return &stubCardRepository{
		cards: map[int64]*models.Card{
			1: {ID: 1, Name: "Blue-Eyes White Dragon"},
			2: {ID: 2, Name: "Dark Magician"},
			3: {ID: 3, Name: "Dark Magician Girl"},
		},
	}
}

func TestService_Lookup_Caches(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		card, err := svc.Lookup(ctx, 1)
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if card.Name != "Blue-Eyes White Dragon" {
			t.Fatalf("Lookup() name = %q", card.Name)
		}
	}
	if repo.hits != 1 {
		t.Errorf("repository hit %d times, want 1 (cached)", repo.hits)
	}
}

func TestService_DisplayName(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	ctx := context.Background()
	tests := []struct {
		name   string
		cardID int64
		want   string
	}{
		{name: "Known", cardID: 2, want: "Dark Magician"},
		{name: "Missing", cardID: 999, want: UnknownCardName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.DisplayName(ctx, tt.cardID); got != tt.want {
				t.Errorf("DisplayName(%d) = %q, want %q", tt.cardID, got, tt.want)
			}
		})
	}
}

func TestService_Search(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	ctx := context.Background()

	results, err := svc.Search(ctx, "magician", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d cards, want 2", len(results))
	}
	for _, card := range results {
		if card.ID != 2 && card.ID != 3 {
			t.Errorf("Search() matched unexpected card %d (%s)", card.ID, card.Name)
		}
	}

	limited, err := svc.Search(ctx, "magician", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Search() with limit 1 returned %d cards", len(limited))
	}

	none, err := svc.Search(ctx, "zzzzzz", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Search() with no match returned %d cards", len(none))
	}
}
