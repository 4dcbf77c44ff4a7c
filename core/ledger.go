package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlaceBid records a bid of amount by bidder on the product with the given
// code. The caller must be the bidder themselves or the owner acting on the
// bidder's behalf; either way the bidder must be authorized.
//
// An accepted bid locks its amount in the bidder's escrow account. When the
// pair already has a live bid the new amount must strictly exceed the old one,
// and only the difference is locked on top; the superseded amount is released.
// The product's winning bid is replaced only on a strictly greater amount, so
// ties keep the earliest bid. The full amount is credited to the bidder's
// cumulative balance, mirroring the funds that arrived with the call.
func (e *Engine) PlaceBid(caller, bidder uuid.UUID, code int64, amount decimal.Decimal) error {
	e.mu.Lock()

	if caller != bidder && caller != e.owner {
		e.mu.Unlock()
		return errf(KindForbidden, "caller may only bid as themselves")
	}
	if err := e.requireAuthorized(bidder); err != nil {
		e.mu.Unlock()
		return err
	}
	if !e.clock.open() {
		err := e.clock.phaseErr()
		e.mu.Unlock()
		return err
	}
	if _, ok := e.products[code]; !ok {
		e.mu.Unlock()
		return errf(KindProductNotFound, "no product with code %d", code)
	}
	if amount.LessThan(e.minBid) {
		e.mu.Unlock()
		return errf(KindBidTooLow, "bid %s is below the minimum of %s", amount, e.minBid)
	}

	key := bidKey{code: code, bidder: bidder}
	acct := e.accounts[bidder]

	if prev, ok := e.bids[key]; ok {
		if !amount.GreaterThan(prev.Amount) {
			e.mu.Unlock()
			return errf(KindBidCannotBeLowerThanPrevious,
				"bid %s does not exceed the previous bid %s", amount, prev.Amount)
		}
		// Relock: the superseded amount stops backing the bid, the new
		// amount starts. Net locked delta is amount-prev.
		acct.locked = acct.locked.Sub(prev.Amount).Add(amount)
		prev.Amount = amount
	} else {
		acct.locked = acct.locked.Add(amount)
		e.bids[key] = &Bid{Bidder: bidder, ProductCode: code, Amount: amount}
	}

	if top, ok := e.winning[code]; !ok || amount.GreaterThan(top.Amount) {
		e.winning[code] = WinningBid{Bidder: bidder, Amount: amount}
	}

	acct.balance = acct.balance.Add(amount)
	e.accounts[bidder] = acct

	obs := e.onBid
	e.mu.Unlock()

	if obs != nil {
		obs(code, amount)
	}
	return nil
}

// CurrentBid returns the live bid amount of bidder on the product with the
// given code. Owner only.
func (e *Engine) CurrentBid(caller uuid.UUID, code int64, bidder uuid.UUID) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return decimal.Decimal{}, err
	}
	b, ok := e.bids[bidKey{code: code, bidder: bidder}]
	if !ok {
		return decimal.Decimal{}, errf(KindProductNotFound, "no live bid by %s on product %d", bidder, code)
	}
	return b.Amount, nil
}

// HighestBid returns the winning bid amount recorded so far for the product
// with the given code. Owner only.
func (e *Engine) HighestBid(caller uuid.UUID, code int64) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return decimal.Decimal{}, err
	}
	top, ok := e.winning[code]
	if !ok {
		return decimal.Decimal{}, errf(KindProductNotFound, "no winning bid recorded for product %d", code)
	}
	return top.Amount, nil
}
