package models

import (
	"time"

	"github.com/uptrace/bun"
)

type AuctionStatus string

const (
	AuctionStatusActive AuctionStatus = "active"
	// AuctionStatusWon: settled with a winner; cards went to the top bidder.
	AuctionStatusWon AuctionStatus = "won"
	// AuctionStatusReturned: expired without bids; cards went back to the seller.
	AuctionStatusReturned AuctionStatus = "returned"
)

// Auction is a competitive-bid sale of a (card, rarity) bulk quantity. The full
// quantity is escrowed from the seller for the auction's lifetime.
type Auction struct {
	bun.BaseModel `bun:"table:auctions,alias:a"`

	ID           int64         `bun:"id,pk,autoincrement" json:"id"`
	AuctionID    string        `bun:"auction_id,notnull,unique" json:"auction_id"`
	CardID       int64         `bun:"card_id,notnull" json:"card_id"`
	Rarity       Rarity        `bun:"rarity,notnull" json:"rarity"`
	Quantity     int64         `bun:"quantity,notnull" json:"quantity"`
	SellerID     string        `bun:"seller_id,notnull" json:"seller_id"`
	StartPrice   int64         `bun:"start_price,notnull" json:"start_price"`
	CurrentPrice int64         `bun:"current_price,notnull" json:"current_price"`
	TopBidderID  string        `bun:"top_bidder_id" json:"top_bidder_id"`
	WinnerID     string        `bun:"winner_id" json:"winner_id"`
	Status       AuctionStatus `bun:"status,notnull" json:"status"`
	StartTime    time.Time     `bun:"start_time,notnull" json:"start_time"`
	EndTime      time.Time     `bun:"end_time,notnull" json:"end_time"`

	LastBidTime time.Time `bun:"last_bid_time" json:"last_bid_time"`
	BidCount    int       `bun:"bid_count" json:"bid_count"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// AuctionBid is one outstanding escrowed bid. At most one row exists per
// bidder per auction: a rebid refunds and deletes the old row before the new
// one is inserted, so ordering by id always puts the highest bid last.
type AuctionBid struct {
	bun.BaseModel `bun:"table:auction_bids,alias:ab"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	AuctionID int64     `bun:"auction_id,notnull,unique:auction_bidder" json:"auction_id"`
	BidderID  string    `bun:"bidder_id,notnull,unique:auction_bidder" json:"bidder_id"`
	Amount    int64     `bun:"amount,notnull" json:"amount"`
	BidAt     time.Time `bun:"bid_at,notnull" json:"bid_at"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
