package packs

import (
	"github.com/duelmarket/duelmarket/engine/database/models"
)

// Source supplies the randomness for pack draws. *math/rand.Rand satisfies it;
// tests script it to pin down the walk.
type Source interface {
	Float64() float64
	Intn(n int) int
}

// DrawnCard is one resolved slot, returned for display. The ledger delta is
// the only persisted record of a draw.
type DrawnCard struct {
	CardID    int64         `json:"card_id"`
	Name      string        `json:"name"`
	Rarity    models.Rarity `json:"rarity"`
	DustValue int64         `json:"dust_value"`
}

// drawRarity walks the slots in declared order, accumulating probability mass.
// The first slot whose cumulative mass reaches r is selected; ties at the
// boundaries therefore resolve by declaration order, not by sorted order.
func drawRarity(slots []models.PackSlot, r float64) models.PackSlot {
	var cum float64
	for _, slot := range slots {
		cum += slot.Probability
		if cum >= r {
			return slot
		}
	}
	// Float drift can leave r above the final cumulative sum.
	return slots[len(slots)-1]
}

// eligibleCards returns the card ids eligible for rarity, in pool order.
func eligibleCards(pool []models.PoolEntry, rarity models.Rarity) []int64 {
	var ids []int64
	for _, entry := range pool {
		for _, r := range entry.Rarities {
			if r == rarity {
				ids = append(ids, entry.CardID)
				break
			}
		}
	}
	return ids
}

// drawPack resolves the 8 slots of a single pack. A slot whose rarity has no
// eligible card is skipped silently rather than crashing; pack validation
// makes that unreachable for well-formed packs.
func drawPack(pack *models.Pack, src Source) []DrawnCard {
	drawn := make([]DrawnCard, 0, models.CardsPerPack)
	for i := 0; i < models.CardsPerPack; i++ {
		slot := drawRarity(pack.Slots, src.Float64())
		ids := eligibleCards(pack.CardPool, slot.Rarity)
		if len(ids) == 0 {
			continue
		}
		drawn = append(drawn, DrawnCard{
			CardID:    ids[src.Intn(len(ids))],
			Rarity:    slot.Rarity,
			DustValue: slot.DustValue,
		})
	}
	return drawn
}

// aggregate folds drawn cards into per-(card, rarity) ledger deltas,
// preserving first-seen order for deterministic application.
type ledgerDelta struct {
	cardID int64
	rarity models.Rarity
	count  int64
}

type deltaKey struct {
	cardID int64
	rarity models.Rarity
}

func aggregate(drawn []DrawnCard) []ledgerDelta {
	index := make(map[deltaKey]int, len(drawn))
	var deltas []ledgerDelta
	for _, card := range drawn {
		key := deltaKey{cardID: card.CardID, rarity: card.Rarity}
		if i, ok := index[key]; ok {
			deltas[i].count++
			continue
		}
		index[key] = len(deltas)
		deltas = append(deltas, ledgerDelta{cardID: card.CardID, rarity: card.Rarity, count: 1})
	}
	return deltas
}
