package dust

import (
	"reflect"
	"testing"

	"github.com/duelmarket/duelmarket/engine/database/models"
)

func TestPlanKeep(t *testing.T) {
	tests := []struct {
		name        string
		counts      map[models.Rarity]int64
		keep        int64
		wantPlan    []action
		wantCredits int64
	}{
		{
			name: "KeepFilledFromLowerRarityFirst",
			counts: map[models.Rarity]int64{
				models.RarityCommon: 2,
				models.RarityRare:   4,
			},
			keep: 3,
			// 2 commons and 1 rare are kept; 3 rares dust for 9.
			wantPlan:    []action{{rarity: models.RarityRare, count: 3}},
			wantCredits: 9,
		},
		{
			name: "EverythingFitsInBudget",
			counts: map[models.Rarity]int64{
				models.RarityCommon: 1,
				models.RarityRare:   2,
			},
			keep:        3,
			wantPlan:    nil,
			wantCredits: 0,
		},
		{
			name: "SingleRarityOverflow",
			counts: map[models.Rarity]int64{
				models.RaritySecretRare: 5,
			},
			keep:        3,
			wantPlan:    []action{{rarity: models.RaritySecretRare, count: 2}},
			wantCredits: 60,
		},
		{
			name: "BudgetExhaustedByCommons",
			counts: map[models.Rarity]int64{
				models.RarityCommon:       5,
				models.RarityUltimateRare: 2,
			},
			keep: 3,
			wantPlan: []action{
				{rarity: models.RarityCommon, count: 2},
				{rarity: models.RarityUltimateRare, count: 2},
			},
			wantCredits: 2*1 + 2*120,
		},
		{
			name:        "NothingOwned",
			counts:      map[models.Rarity]int64{},
			keep:        3,
			wantPlan:    nil,
			wantCredits: 0,
		},
		{
			name: "ZeroBudgetDustsEverything",
			counts: map[models.Rarity]int64{
				models.RarityCommon: 2,
				models.RarityRare:   1,
			},
			keep: 0,
			wantPlan: []action{
				{rarity: models.RarityCommon, count: 2},
				{rarity: models.RarityRare, count: 1},
			},
			wantCredits: 2*1 + 1*3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, credits := planKeep(tt.counts, tt.keep)
			if !reflect.DeepEqual(plan, tt.wantPlan) {
				t.Errorf("planKeep() plan = %+v, want %+v", plan, tt.wantPlan)
			}
			if credits != tt.wantCredits {
				t.Errorf("planKeep() credits = %d, want %d", credits, tt.wantCredits)
			}
		})
	}
}
