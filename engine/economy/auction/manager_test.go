package auction

import (
	"errors"
	"testing"

	"github.com/duelmarket/duelmarket/engine/database/models"
	"github.com/duelmarket/duelmarket/engine/economy"
)

func activeAuction(startPrice, currentPrice int64, bidCount int) *models.Auction {
	return &models.Auction{
		SellerID:     "seller",
		StartPrice:   startPrice,
		CurrentPrice: currentPrice,
		BidCount:     bidCount,
		Status:       models.AuctionStatusActive,
	}
}

func TestMinimumBid(t *testing.T) {
	tests := []struct {
		name    string
		auction *models.Auction
		want    int64
	}{
		{name: "NoBidsUsesStartPrice", auction: activeAuction(100, 100, 0), want: 100},
		{name: "FirstBidRaisesByOne", auction: activeAuction(100, 100, 1), want: 101},
		{name: "LaterBidsFollowCurrentPrice", auction: activeAuction(100, 150, 3), want: 151},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := minimumBid(tt.auction); got != tt.want {
				t.Errorf("minimumBid() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidateBid(t *testing.T) {
	won := activeAuction(100, 150, 2)
	won.Status = models.AuctionStatusWon
	returned := activeAuction(100, 100, 0)
	returned.Status = models.AuctionStatusReturned

	tests := []struct {
		name     string
		auction  *models.Auction
		bidderID string
		amount   int64
		wantErr  error
	}{
		{name: "StartPriceAcceptedWithoutBids", auction: activeAuction(100, 100, 0), bidderID: "a", amount: 100},
		{name: "BelowStartPrice", auction: activeAuction(100, 100, 0), bidderID: "a", amount: 99, wantErr: economy.ErrBidTooLow},
		{name: "EqualToCurrentWithBids", auction: activeAuction(100, 150, 1), bidderID: "a", amount: 150, wantErr: economy.ErrBidTooLow},
		{name: "OneOverCurrentAccepted", auction: activeAuction(100, 150, 1), bidderID: "a", amount: 151},
		{name: "SellerCannotBid", auction: activeAuction(100, 100, 0), bidderID: "seller", amount: 200, wantErr: economy.ErrSelfTrade},
		{name: "SettledAuction", auction: won, bidderID: "a", amount: 500, wantErr: economy.ErrAlreadySold},
		{name: "ReturnedAuction", auction: returned, bidderID: "a", amount: 500, wantErr: economy.ErrAlreadySold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBid(tt.auction, tt.bidderID, tt.amount)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("validateBid() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateBid() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// Accepted bids must form a strictly increasing sequence: every bid has to
// clear the minimum, and an accepted bid becomes the new current price.
func TestAcceptedBidsStrictlyIncreasing(t *testing.T) {
	auction := activeAuction(100, 100, 0)

	attempts := []struct {
		bidder string
		amount int64
	}{
		{"a", 100},
		{"b", 99},  // below current, rejected
		{"b", 150},
		{"a", 150}, // not above current, rejected
		{"a", 151},
		{"c", 120}, // stale amount, rejected
		{"b", 300},
	}

	var accepted []int64
	for _, attempt := range attempts {
		if err := validateBid(auction, attempt.bidder, attempt.amount); err != nil {
			if !errors.Is(err, economy.ErrBidTooLow) {
				t.Fatalf("bid %d by %s: unexpected error %v", attempt.amount, attempt.bidder, err)
			}
			continue
		}
		auction.CurrentPrice = attempt.amount
		auction.TopBidderID = attempt.bidder
		auction.BidCount++
		accepted = append(accepted, attempt.amount)
	}

	want := []int64{100, 150, 151, 300}
	if len(accepted) != len(want) {
		t.Fatalf("accepted %v, want %v", accepted, want)
	}
	for i := range want {
		if accepted[i] != want[i] {
			t.Fatalf("accepted %v, want %v", accepted, want)
		}
	}
	for i := 1; i < len(accepted); i++ {
		if accepted[i] <= accepted[i-1] {
			t.Errorf("accepted sequence not strictly increasing: %v", accepted)
		}
	}
	if auction.TopBidderID != "b" {
		t.Errorf("top bidder = %q, want b", auction.TopBidderID)
	}
}
