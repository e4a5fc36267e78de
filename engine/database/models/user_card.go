package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserCard is one inventory ledger row: copies of a single (card, rarity) pair
// owned by a user. Rarities of the same card are not fungible with each other,
// so each gets its own row.
type UserCard struct {
	bun.BaseModel `bun:"table:user_cards,alias:uc"`

	ID       int64     `bun:"id,pk,autoincrement"`
	UserID   string    `bun:"user_id,notnull,unique:user_card_rarity"`
	CardID   int64     `bun:"card_id,notnull,unique:user_card_rarity"`
	Rarity   Rarity    `bun:"rarity,notnull,unique:user_card_rarity"`
	Amount   int64     `bun:"amount,notnull,default:0"`
	Obtained time.Time `bun:"obtained,notnull,default:current_timestamp"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
