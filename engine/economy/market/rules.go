package market

import (
	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/economy"
)

// validatePurchase checks a buy attempt against the listing state without
// mutating anything. A sold-out listing reports exhausted stock; only an
// expired listing reports a closed sale.
func validatePurchase(l *models.Listing, buyerID string, quantity int64) error {
	if l.Status == models.ListingStatusExpired {
		return economy.ErrAlreadySold
	}
	if l.SellerID == buyerID {
		return economy.ErrSelfTrade
	}
	if quantity > l.Remaining() {
		return economy.ErrInsufficientStock
	}
	return nil
}
