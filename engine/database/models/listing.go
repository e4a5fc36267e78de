package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ListingStatus string

const (
	// ListingStatusActive: unsold remainder is escrowed out of the seller's ledger.
	ListingStatusActive ListingStatus = "active"
	// ListingStatusSoldOut: every unit was purchased.
	ListingStatusSoldOut ListingStatus = "sold_out"
	// ListingStatusExpired: reaped past expiry, remainder returned to the seller.
	ListingStatusExpired ListingStatus = "expired"
)

// Listing is a fixed-price bulk sale of a (card, rarity) pair. Partial fills
// are allowed; quantity - sold_quantity is the amount still escrowed.
type Listing struct {
	bun.BaseModel `bun:"table:listings,alias:l"`

	ID           int64         `bun:"id,pk,autoincrement" json:"id"`
	CardID       int64         `bun:"card_id,notnull" json:"card_id"`
	Rarity       Rarity        `bun:"rarity,notnull" json:"rarity"`
	Quantity     int64         `bun:"quantity,notnull" json:"quantity"`
	SoldQuantity int64         `bun:"sold_quantity,notnull,default:0" json:"sold_quantity"`
	Price        int64         `bun:"price,notnull" json:"price"`
	SellerID     string        `bun:"seller_id,notnull" json:"seller_id"`
	Status       ListingStatus `bun:"status,notnull" json:"status"`
	ExpiresAt    time.Time     `bun:"expires_at,notnull" json:"expires_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Remaining returns the unsold escrowed quantity.
func (l *Listing) Remaining() int64 {
	return l.Quantity - l.SoldQuantity
}
