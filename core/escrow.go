package core

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceOf returns the caller's cumulative escrow balance. Bidders see their
// own balance only; the owner may query anyone's.
func (e *Engine) BalanceOf(caller, id uuid.UUID) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != id && caller != e.owner {
		return decimal.Decimal{}, errf(KindForbidden, "caller may only view their own balance")
	}
	if err := e.requireAuthorized(id); err != nil {
		return decimal.Decimal{}, err
	}
	return e.accounts[id].balance, nil
}

// Locked returns the portion of id's balance currently backing live bids.
// Same visibility rule as BalanceOf.
func (e *Engine) Locked(caller, id uuid.UUID) (decimal.Decimal, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if caller != id && caller != e.owner {
		return decimal.Decimal{}, errf(KindForbidden, "caller may only view their own balance")
	}
	if err := e.requireAuthorized(id); err != nil {
		return decimal.Decimal{}, err
	}
	return e.accounts[id].locked, nil
}

// Withdraw returns the caller's withdrawable funds (balance minus locked)
// through the transfer collaborator.
func (e *Engine) Withdraw(caller uuid.UUID) error {
	return e.withdraw(caller)
}

// WithdrawFor performs a withdrawal on a bidder's behalf. Owner only; the
// funds still go to the bidder, never to the owner.
func (e *Engine) WithdrawFor(caller, bidder uuid.UUID) error {
	e.mu.Lock()
	if err := e.requireOwner(caller); err != nil {
		e.mu.Unlock()
		return err
	}
	e.mu.Unlock()
	return e.withdraw(bidder)
}

// withdraw removes the withdrawable portion from id's bookkeeping and then
// transfers it out. The bookkeeping commit happens before the transfer and the
// lock is released across it, so a reentrant call from the transfer
// collaborator observes the already-reduced balance. A failed transfer
// restores the withdrawn amount additively, preserving any credits a
// reentrant bid recorded in between, and reports WithdrawFailed: from the
// caller's perspective the operation had no effect.
func (e *Engine) withdraw(id uuid.UUID) error {
	e.mu.Lock()
	if err := e.requireAuthorized(id); err != nil {
		e.mu.Unlock()
		return err
	}
	acct := e.accounts[id]
	amount := acct.withdrawable()
	if acct.balance.IsZero() || amount.Sign() <= 0 {
		e.mu.Unlock()
		return errf(KindOutOfBalance, "no withdrawable funds for %s", id)
	}
	acct.balance = acct.locked
	e.accounts[id] = acct
	transfer := e.transfer
	e.mu.Unlock()

	if transfer != nil {
		if err := transfer.Transfer(id, amount); err != nil {
			e.mu.Lock()
			acct = e.accounts[id]
			acct.balance = acct.balance.Add(amount)
			e.accounts[id] = acct
			e.mu.Unlock()
			return wrapErr(KindWithdrawFailed, err)
		}
	}
	return nil
}
