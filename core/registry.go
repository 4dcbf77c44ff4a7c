package core

import "github.com/google/uuid"

// Authorize grants id the right to bid. Owner only.
func (e *Engine) Authorize(caller, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if _, ok := e.authorized[id]; ok {
		return errf(KindDuplicateBidder, "identity %s is already authorized", id)
	}
	e.authorized[id] = struct{}{}
	return nil
}

// Unauthorize revokes id's right to bid. Owner only. The bidder's existing
// bids and escrow balances are left in place; they stay addressable by key.
func (e *Engine) Unauthorize(caller, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	if _, ok := e.authorized[id]; !ok {
		return errf(KindBidderNotFound, "identity %s is not an authorized bidder", id)
	}
	delete(e.authorized, id)
	return nil
}

// IsAuthorized reports whether id may currently bid.
func (e *Engine) IsAuthorized(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.authorized[id]
	return ok
}
