package economy

import (
	"fmt"
	"math"

	"github.com/duelmarket/duelmarket/engine/database/models"
)

// probabilityTolerance is the allowed drift of the slot probability sum from 1.0.
const probabilityTolerance = 1e-4

// ValidatePack enforces the pack catalog invariants at write time:
// slot probabilities sum to 1, the price stays above the expected dust yield of
// a full pack (bounding the open-then-dust arbitrage loop), and every slot
// rarity has at least one eligible card in the pool.
func ValidatePack(p *models.Pack) error {
	if len(p.Slots) == 0 {
		return fmt.Errorf("%w: no rarity slots declared", ErrInvalidPackDefinition)
	}
	if p.Price <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidPackDefinition)
	}

	var sum float64
	for i, slot := range p.Slots {
		if !slot.Rarity.Valid() {
			return fmt.Errorf("%w: slot %d has unknown rarity %q", ErrInvalidPackDefinition, i, slot.Rarity)
		}
		if slot.Probability < 0 {
			return fmt.Errorf("%w: slot %d has negative probability", ErrInvalidPackDefinition, i)
		}
		sum += slot.Probability
	}
	if math.Abs(sum-1.0) > probabilityTolerance {
		return fmt.Errorf("%w: slot probabilities sum to %.6f, want 1.0", ErrInvalidPackDefinition, sum)
	}

	if avg := p.AverageDustValue(); float64(p.Price) <= avg {
		return fmt.Errorf("%w: price %d not above average dust value %.2f", ErrInvalidPackDefinition, p.Price, avg)
	}

	for _, slot := range p.Slots {
		if !rarityCovered(p.CardPool, slot.Rarity) {
			return fmt.Errorf("%w: no eligible card for rarity %q", ErrInvalidPackDefinition, slot.Rarity)
		}
	}
	return nil
}

func rarityCovered(pool []models.PoolEntry, rarity models.Rarity) bool {
	for _, entry := range pool {
		for _, r := range entry.Rarities {
			if r == rarity {
				return true
			}
		}
	}
	return false
}
