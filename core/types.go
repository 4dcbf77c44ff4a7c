package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a biddable catalog entry, keyed by its positive code.
type Product struct {
	Code          int64           `json:"code"`
	StartingPrice decimal.Decimal `json:"starting_price"`
}

// Bid is the live bid of one bidder on one product. A (product, bidder) pair
// has at most one live Bid; resubmissions update Amount in place and must
// strictly exceed the previous amount.
type Bid struct {
	Bidder      uuid.UUID       `json:"bidder"`
	ProductCode int64           `json:"product_code"`
	Amount      decimal.Decimal `json:"amount"`
}

// WinningBid is the highest Bid recorded so far for a product. Ties keep the
// earliest-placed bid: a later bid replaces the incumbent only when strictly
// greater.
type WinningBid struct {
	Bidder uuid.UUID       `json:"bidder"`
	Amount decimal.Decimal `json:"amount"`
}

// Winner is one entry of the post-auction report.
type Winner struct {
	ProductCode int64           `json:"product_code"`
	Amount      decimal.Decimal `json:"amount"`
	Bidder      uuid.UUID       `json:"bidder"`
}

// account is a bidder's escrow pair. balance accumulates every amount the
// bidder has ever sent with a bid; locked is the portion still backing live
// bids. balance >= locked always holds, and balance-locked is withdrawable.
type account struct {
	balance decimal.Decimal
	locked  decimal.Decimal
}

func (a account) withdrawable() decimal.Decimal {
	return a.balance.Sub(a.locked)
}

type bidKey struct {
	code   int64
	bidder uuid.UUID
}

// Transferrer moves withdrawn funds to a bidder. It is an external
// collaborator: the engine decides the amount, the Transferrer executes the
// transfer and may fail. A Transferrer must not assume the engine lock is held
// during Transfer; calling back into the engine from Transfer is permitted.
type Transferrer interface {
	Transfer(to uuid.UUID, amount decimal.Decimal) error
}

// TransferFunc adapts a function to the Transferrer interface.
type TransferFunc func(to uuid.UUID, amount decimal.Decimal) error

func (f TransferFunc) Transfer(to uuid.UUID, amount decimal.Decimal) error {
	return f(to, amount)
}

// BidObserver receives a notification after every accepted bid.
type BidObserver func(productCode int64, amount decimal.Decimal)
