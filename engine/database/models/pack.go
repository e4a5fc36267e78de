package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CardsPerPack is the number of independently drawn slots in a single pack.
const CardsPerPack = 8

// PackSlot is one entry of the rarity ratio table. Slots are stored in declared
// order; the draw walk accumulates probabilities in exactly this order so that
// boundary behavior stays reproducible.
type PackSlot struct {
	Rarity      Rarity  `json:"rarity"`
	Probability float64 `json:"probability"`
	DustValue   int64   `json:"dust_value"`
}

// PoolEntry lists the rarities a card is eligible for inside a pack.
type PoolEntry struct {
	CardID   int64    `json:"card_id"`
	Rarities []Rarity `json:"rarities"`
}

type Pack struct {
	bun.BaseModel `bun:"table:packs,alias:p"`

	ID       int64       `bun:"id,pk,autoincrement" json:"id"`
	Name     string      `bun:"name,notnull" json:"name"`
	Price    int64       `bun:"price,notnull" json:"price"`
	Slots    []PackSlot  `bun:"slots,type:jsonb,notnull" json:"slots"`
	CardPool []PoolEntry `bun:"card_pool,type:jsonb,notnull" json:"card_pool"`
	Active   bool        `bun:"active,notnull,default:true" json:"active"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// AverageDustValue is the expected dust yield of opening one pack:
// 8 draws times the probability-weighted per-copy dust value.
func (p *Pack) AverageDustValue() float64 {
	var expected float64
	for _, slot := range p.Slots {
		expected += slot.Probability * float64(slot.DustValue)
	}
	return CardsPerPack * expected
}
