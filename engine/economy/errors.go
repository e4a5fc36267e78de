// Package economy holds the error kinds shared by every engine operation.
// All validation failures are detected before any mutation begins inside an
// atomic unit, so a returned error always means no state changed.
package economy

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrInsufficientCredits   = errors.New("insufficient credits")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrBidTooLow             = errors.New("bid too low")
	ErrAlreadySold           = errors.New("already sold")
	ErrSelfTrade             = errors.New("cannot trade with yourself")
	ErrInvalidPackDefinition = errors.New("invalid pack definition")
)
