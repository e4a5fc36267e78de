package economy

import (
	"errors"
	"testing"

	"github.com/duelmarket/duelmarket/engine/database/models"
)

// starterSlots is a ratio table whose expected dust yield per pack is
// 8 * (0.7*1 + 0.25*3 + 0.05*30) = 23.6.
var starterSlots = []models.PackSlot{
	{Rarity: models.RarityCommon, Probability: 0.70, DustValue: 1},
	{Rarity: models.RarityRare, Probability: 0.25, DustValue: 3},
	{Rarity: models.RaritySecretRare, Probability: 0.05, DustValue: 30},
}

var starterPool = []models.PoolEntry{
	{CardID: 1, Rarities: []models.Rarity{models.RarityCommon, models.RarityRare}},
	{CardID: 2, Rarities: []models.Rarity{models.RarityCommon}},
	{CardID: 3, Rarities: []models.Rarity{models.RaritySecretRare}},
}

func TestValidatePack(t *testing.T) {
	tests := []struct {
		name    string
		pack    *models.Pack
		wantErr bool
	}{
		{
			name: "PriceAboveAverageDust",
			pack: &models.Pack{
				Name:     "Starter",
				Price:    30,
				Slots:    starterSlots,
				CardPool: starterPool,
			},
		},
		{
			name: "PriceBelowAverageDust",
			pack: &models.Pack{
				Name:     "Starter",
				Price:    20,
				Slots:    starterSlots,
				CardPool: starterPool,
			},
			wantErr: true,
		},
		{
			name: "PriceEqualAverageDust",
			pack: &models.Pack{
				Name:  "Flat",
				Price: 8,
				Slots: []models.PackSlot{
					{Rarity: models.RarityCommon, Probability: 1.0, DustValue: 1},
				},
				CardPool: starterPool,
			},
			wantErr: true,
		},
		{
			name: "ProbabilitiesDoNotSumToOne",
			pack: &models.Pack{
				Name:  "Broken",
				Price: 100,
				Slots: []models.PackSlot{
					{Rarity: models.RarityCommon, Probability: 0.5, DustValue: 1},
					{Rarity: models.RarityRare, Probability: 0.4, DustValue: 3},
				},
				CardPool: starterPool,
			},
			wantErr: true,
		},
		{
			name: "SumWithinTolerance",
			pack: &models.Pack{
				Name:  "Drift",
				Price: 100,
				Slots: []models.PackSlot{
					{Rarity: models.RarityCommon, Probability: 0.70001, DustValue: 1},
					{Rarity: models.RarityRare, Probability: 0.29998, DustValue: 3},
				},
				CardPool: starterPool,
			},
		},
		{
			name: "NoSlots",
			pack: &models.Pack{
				Name:     "Empty",
				Price:    10,
				CardPool: starterPool,
			},
			wantErr: true,
		},
		{
			name: "UnknownSlotRarity",
			pack: &models.Pack{
				Name:  "Bad",
				Price: 100,
				Slots: []models.PackSlot{
					{Rarity: "mythic", Probability: 1.0, DustValue: 1},
				},
				CardPool: starterPool,
			},
			wantErr: true,
		},
		{
			name: "NegativeProbability",
			pack: &models.Pack{
				Name:  "Bad",
				Price: 100,
				Slots: []models.PackSlot{
					{Rarity: models.RarityCommon, Probability: 1.5, DustValue: 1},
					{Rarity: models.RarityRare, Probability: -0.5, DustValue: 3},
				},
				CardPool: starterPool,
			},
			wantErr: true,
		},
		{
			name: "RarityWithoutEligibleCard",
			pack: &models.Pack{
				Name:  "Uncovered",
				Price: 100,
				Slots: []models.PackSlot{
					{Rarity: models.RarityCommon, Probability: 0.9, DustValue: 1},
					{Rarity: models.RarityUltimateRare, Probability: 0.1, DustValue: 120},
				},
				CardPool: starterPool,
			},
			wantErr: true,
		},
		{
			name: "ZeroPrice",
			pack: &models.Pack{
				Name:     "Free",
				Price:    0,
				Slots:    starterSlots,
				CardPool: starterPool,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePack(tt.pack)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePack() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPackDefinition) {
				t.Errorf("ValidatePack() error = %v, want ErrInvalidPackDefinition", err)
			}
		})
	}
}

func TestAverageDustValue(t *testing.T) {
	pack := &models.Pack{Slots: starterSlots}
	got := pack.AverageDustValue()
	want := 23.6
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("AverageDustValue() = %v, want %v", got, want)
	}
}
