package packs

import (
	"reflect"
	"testing"

	"github.com/duelmarket/duelmarket/engine/database/models"
)

// scriptedSource replays fixed values, making the draw walk reproducible.
type scriptedSource struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (s *scriptedSource) Float64() float64 {
	v := s.floats[s.fi%len(s.floats)]
	s.fi++
	return v
}

func (s *scriptedSource) Intn(n int) int {
	v := s.ints[s.ii%len(s.ints)]
	s.ii++
	return v % n
}

var testSlots = []models.PackSlot{
	{Rarity: models.RarityCommon, Probability: 0.70, DustValue: 1},
	{Rarity: models.RarityRare, Probability: 0.25, DustValue: 3},
	{Rarity: models.RaritySecretRare, Probability: 0.05, DustValue: 30},
}

func TestDrawRarity(t *testing.T) {
	tests := []struct {
		name string
		r    float64
		want models.Rarity
	}{
		{name: "Zero", r: 0, want: models.RarityCommon},
		{name: "InsideFirstBand", r: 0.5, want: models.RarityCommon},
		{name: "FirstBoundaryInclusive", r: 0.70, want: models.RarityCommon},
		{name: "JustPastFirstBoundary", r: 0.700001, want: models.RarityRare},
		{name: "SecondBoundaryInclusive", r: 0.95, want: models.RarityRare},
		{name: "TopBand", r: 0.99, want: models.RaritySecretRare},
		{name: "One", r: 1.0, want: models.RaritySecretRare},
		{name: "AboveCumulativeSum", r: 1.5, want: models.RaritySecretRare},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := drawRarity(testSlots, tt.r); got.Rarity != tt.want {
				t.Errorf("drawRarity(%v) = %v, want %v", tt.r, got.Rarity, tt.want)
			}
		})
	}
}

func TestEligibleCards(t *testing.T) {
	pool := []models.PoolEntry{
		{CardID: 1, Rarities: []models.Rarity{models.RarityCommon, models.RarityRare}},
		{CardID: 2, Rarities: []models.Rarity{models.RarityCommon}},
		{CardID: 3, Rarities: []models.Rarity{models.RaritySecretRare}},
	}
	tests := []struct {
		name   string
		rarity models.Rarity
		want   []int64
	}{
		{name: "Common", rarity: models.RarityCommon, want: []int64{1, 2}},
		{name: "Rare", rarity: models.RarityRare, want: []int64{1}},
		{name: "SecretRare", rarity: models.RaritySecretRare, want: []int64{3}},
		{name: "Uncovered", rarity: models.RarityUltimateRare, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eligibleCards(pool, tt.rarity); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("eligibleCards(%v) = %v, want %v", tt.rarity, got, tt.want)
			}
		})
	}
}

func TestDrawPack_Deterministic(t *testing.T) {
	pack := &models.Pack{
		Slots: testSlots,
		CardPool: []models.PoolEntry{
			{CardID: 10, Rarities: []models.Rarity{models.RarityCommon}},
			{CardID: 20, Rarities: []models.Rarity{models.RarityCommon, models.RarityRare}},
			{CardID: 30, Rarities: []models.Rarity{models.RaritySecretRare}},
		},
	}

	src := &scriptedSource{
		// 6 common draws, 1 rare, 1 secret rare.
		floats: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 0.99},
		ints:   []int{0, 1, 0, 1, 0, 1, 0, 0},
	}

	drawn := drawPack(pack, src)
	if len(drawn) != models.CardsPerPack {
		t.Fatalf("drawPack() returned %d cards, want %d", len(drawn), models.CardsPerPack)
	}

	want := []DrawnCard{
		{CardID: 10, Rarity: models.RarityCommon, DustValue: 1},
		{CardID: 20, Rarity: models.RarityCommon, DustValue: 1},
		{CardID: 10, Rarity: models.RarityCommon, DustValue: 1},
		{CardID: 20, Rarity: models.RarityCommon, DustValue: 1},
		{CardID: 10, Rarity: models.RarityCommon, DustValue: 1},
		{CardID: 20, Rarity: models.RarityCommon, DustValue: 1},
		{CardID: 20, Rarity: models.RarityRare, DustValue: 3},
		{CardID: 30, Rarity: models.RaritySecretRare, DustValue: 30},
	}
	if !reflect.DeepEqual(drawn, want) {
		t.Errorf("drawPack() = %+v, want %+v", drawn, want)
	}
}

func TestDrawPack_SkipsUncoveredRarity(t *testing.T) {
	pack := &models.Pack{
		Slots: []models.PackSlot{
			{Rarity: models.RarityCommon, Probability: 0.5, DustValue: 1},
			{Rarity: models.RarityUltimateRare, Probability: 0.5, DustValue: 120},
		},
		CardPool: []models.PoolEntry{
			{CardID: 1, Rarities: []models.Rarity{models.RarityCommon}},
		},
	}

	src := &scriptedSource{
		// Alternates between the covered and the uncovered slot.
		floats: []float64{0.25, 0.75, 0.25, 0.75, 0.25, 0.75, 0.25, 0.75},
		ints:   []int{0},
	}

	drawn := drawPack(pack, src)
	if len(drawn) != 4 {
		t.Fatalf("drawPack() returned %d cards, want 4 covered draws", len(drawn))
	}
	for _, card := range drawn {
		if card.Rarity != models.RarityCommon {
			t.Errorf("unexpected rarity %v drawn from uncovered slot", card.Rarity)
		}
	}
}

func TestAggregate(t *testing.T) {
	drawn := []DrawnCard{
		{CardID: 1, Rarity: models.RarityCommon},
		{CardID: 2, Rarity: models.RarityRare},
		{CardID: 1, Rarity: models.RarityCommon},
		{CardID: 1, Rarity: models.RarityRare},
		{CardID: 1, Rarity: models.RarityCommon},
	}

	got := aggregate(drawn)
	want := []ledgerDelta{
		{cardID: 1, rarity: models.RarityCommon, count: 3},
		{cardID: 2, rarity: models.RarityRare, count: 1},
		{cardID: 1, rarity: models.RarityRare, count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("aggregate() = %+v, want %+v", got, want)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := aggregate(nil); got != nil {
		t.Errorf("aggregate(nil) = %+v, want nil", got)
	}
}
