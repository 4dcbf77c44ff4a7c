package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxProducts caps the live catalog size unless overridden.
const DefaultMaxProducts = 64

// Engine is the auction aggregate: access registry, product catalog, auction
// clock, bid ledger and escrow accounts behind one mutex. Every operation
// takes the caller identity explicitly; there is no ambient authentication.
//
// All public operations are atomic: either every mutation of the operation is
// applied or none is. The one place the lock is released mid-operation is the
// external transfer during withdrawal, see Withdraw.
type Engine struct {
	mu sync.Mutex

	owner      uuid.UUID
	authorized map[uuid.UUID]struct{}

	products     map[int64]Product
	productCodes []int64
	maxProducts  int

	clock *clock

	bids    map[bidKey]*Bid
	winning map[int64]WinningBid

	accounts map[uuid.UUID]account

	minBid decimal.Decimal

	transfer Transferrer
	onBid    BidObserver
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithMaxProducts overrides the catalog cap.
func WithMaxProducts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxProducts = n
		}
	}
}

// WithMinBid sets the floor below which every bid fails.
func WithMinBid(floor decimal.Decimal) Option {
	return func(e *Engine) { e.minBid = floor }
}

// WithMinDuration overrides the minimum temporal auction window.
func WithMinDuration(d time.Duration) Option {
	return func(e *Engine) { e.clock.minDuration = d }
}

// WithTransferrer installs the external transfer collaborator used by
// withdrawals. Without one, withdrawals update bookkeeping only.
func WithTransferrer(t Transferrer) Option {
	return func(e *Engine) { e.transfer = t }
}

// WithBidObserver installs the bid-placed notification sink.
func WithBidObserver(obs BidObserver) Option {
	return func(e *Engine) { e.onBid = obs }
}

// WithNow injects the time source for temporal auctions.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.clock.now = now }
}

// New constructs an engine owned by owner, running in the given lifecycle
// mode. The owner is authorized as a bidder from the start.
func New(owner uuid.UUID, mode Mode, opts ...Option) *Engine {
	e := &Engine{
		owner:       owner,
		authorized:  map[uuid.UUID]struct{}{owner: {}},
		products:    make(map[int64]Product),
		maxProducts: DefaultMaxProducts,
		clock:       newClock(mode, DefaultMinDuration, time.Now),
		bids:        make(map[bidKey]*Bid),
		winning:     make(map[int64]WinningBid),
		accounts:    make(map[uuid.UUID]account),
		minBid:      decimal.NewFromInt(1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Owner returns the fixed owner identity.
func (e *Engine) Owner() uuid.UUID { return e.owner }

// Mode returns the lifecycle mode fixed at construction.
func (e *Engine) Mode() Mode { return e.clock.mode }

func (e *Engine) requireOwner(caller uuid.UUID) error {
	if caller != e.owner {
		return errf(KindForbidden, "operation restricted to the owner")
	}
	return nil
}

func (e *Engine) requireAuthorized(id uuid.UUID) error {
	if _, ok := e.authorized[id]; !ok {
		return errf(KindForbidden, "identity is not an authorized bidder")
	}
	return nil
}

// Start opens bidding on a manual-mode auction.
func (e *Engine) Start(caller uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.clock.doStart()
}

// Close ends a manual-mode auction. The auction reaches its terminal state:
// bidding will not reopen and the winner report unlocks.
func (e *Engine) Close(caller uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.clock.doClose()
}

// SetTiming fixes the bidding window of a temporal-mode auction.
func (e *Engine) SetTiming(caller uuid.UUID, start, end time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireOwner(caller); err != nil {
		return err
	}
	return e.clock.setTiming(start, end)
}

// BiddingOpen reports whether a bid would currently pass the phase gate.
func (e *Engine) BiddingOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.open()
}

// Ended reports whether the auction has concluded.
func (e *Engine) Ended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.ended()
}
