package auction

import (
	"fmt"

	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/economy"
)

// minimumBid returns the lowest acceptable bid: one over the current price
// once any bid exists, otherwise the start price.
func minimumBid(a *models.Auction) int64 {
	if a.BidCount > 0 {
		return a.CurrentPrice + 1
	}
	return a.StartPrice
}

// validateBid applies the status, self-trade and minimum-bid guards without
// touching any state. Every accepted bid clears minimumBid, so the sequence
// of accepted amounts on an auction is strictly increasing.
func validateBid(a *models.Auction, bidderID string, amount int64) error {
	if a.Status != models.AuctionStatusActive {
		return economy.ErrAlreadySold
	}
	if a.SellerID == bidderID {
		return economy.ErrSelfTrade
	}
	if min := minimumBid(a); amount < min {
		return fmt.Errorf("%w: minimum bid is %d", economy.ErrBidTooLow, min)
	}
	return nil
}
