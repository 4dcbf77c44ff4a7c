package core

import "github.com/google/uuid"

// Winners produces the post-auction report: one entry per product with a
// recorded winning bid, in catalog enumeration order. Products nobody bid on
// are omitted. Available to any authorized bidder, but only once the auction
// has ended; a pure projection with no side effects.
func (e *Engine) Winners(caller uuid.UUID) ([]Winner, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireAuthorized(caller); err != nil {
		return nil, err
	}
	if !e.clock.ended() {
		return nil, errf(KindAuctionNotYetClosed, "auction has not ended")
	}
	winners := make([]Winner, 0, len(e.winning))
	for _, code := range e.productCodes {
		top, ok := e.winning[code]
		if !ok {
			continue
		}
		winners = append(winners, Winner{
			ProductCode: code,
			Amount:      top.Amount,
			Bidder:      top.Bidder,
		})
	}
	return winners, nil
}
