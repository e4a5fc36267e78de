package dust

import (
	"github.com/duelmarket/duelmarket/engine/database/models"
)

// KeepBudget is the total number of copies preserved across all rarities by
// the "dust all, keep" bulk variant.
const KeepBudget = 3

// action is one planned debit: dust count copies of a rarity.
type action struct {
	rarity models.Rarity
	count  int64
}

// planKeep walks the owned counts in declared rarity order (Common first) and
// fills the keep budget from lower-indexed rarities before higher ones; the
// remainder is dusted. The lower-first keep order preserves the observed
// behavior of the original economy.
func planKeep(counts map[models.Rarity]int64, keep int64) ([]action, int64) {
	var plan []action
	var credits int64
	remaining := keep

	for _, rarity := range models.RarityOrder {
		owned := counts[rarity]
		if owned <= 0 {
			continue
		}
		kept := owned
		if kept > remaining {
			kept = remaining
		}
		remaining -= kept
		if toDust := owned - kept; toDust > 0 {
			plan = append(plan, action{rarity: rarity, count: toDust})
			credits += toDust * rarity.DustValue()
		}
	}
	return plan, credits
}
