package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotVersion identifies the current snapshot layout.
const SnapshotVersion = 1

// Snapshot is a complete, self-contained copy of engine state. Amounts and
// identities are string-encoded so the snapshot round-trips through any codec
// without depending on library-internal representations.
type Snapshot struct {
	Version    int      `json:"version"`
	Owner      string   `json:"owner"`
	Authorized []string `json:"authorized"`

	Mode        string `json:"mode"`
	ManualState int    `json:"manual_state"`
	Start       int64  `json:"start,omitempty"`
	End         int64  `json:"end,omitempty"`
	TimingSet   bool   `json:"timing_set"`
	MinDuration int64  `json:"min_duration_seconds"`

	MaxProducts int    `json:"max_products"`
	MinBid      string `json:"min_bid"`

	Products []ProductSnapshot `json:"products"`
	Bids     []BidSnapshot     `json:"bids"`
	Winning  []WinningSnapshot `json:"winning"`
	Accounts []AccountSnapshot `json:"accounts"`
}

type ProductSnapshot struct {
	Code          int64  `json:"code"`
	StartingPrice string `json:"starting_price"`
}

type BidSnapshot struct {
	Bidder      string `json:"bidder"`
	ProductCode int64  `json:"product_code"`
	Amount      string `json:"amount"`
}

type WinningSnapshot struct {
	ProductCode int64  `json:"product_code"`
	Bidder      string `json:"bidder"`
	Amount      string `json:"amount"`
}

type AccountSnapshot struct {
	Bidder  string `json:"bidder"`
	Balance string `json:"balance"`
	Locked  string `json:"locked"`
}

// Snapshot captures the full engine state. Products are recorded in
// enumeration order so a restored engine reports winners in the same order.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Version:     SnapshotVersion,
		Owner:       e.owner.String(),
		Mode:        e.clock.mode.String(),
		ManualState: int(e.clock.state),
		TimingSet:   e.clock.timingSet,
		MinDuration: int64(e.clock.minDuration / time.Second),
		MaxProducts: e.maxProducts,
		MinBid:      e.minBid.String(),
	}
	if e.clock.timingSet {
		s.Start = e.clock.start.Unix()
		s.End = e.clock.end.Unix()
	}
	for id := range e.authorized {
		s.Authorized = append(s.Authorized, id.String())
	}
	for _, code := range e.productCodes {
		p := e.products[code]
		s.Products = append(s.Products, ProductSnapshot{
			Code:          code,
			StartingPrice: p.StartingPrice.String(),
		})
	}
	for key, b := range e.bids {
		s.Bids = append(s.Bids, BidSnapshot{
			Bidder:      key.bidder.String(),
			ProductCode: key.code,
			Amount:      b.Amount.String(),
		})
	}
	for code, top := range e.winning {
		s.Winning = append(s.Winning, WinningSnapshot{
			ProductCode: code,
			Bidder:      top.Bidder.String(),
			Amount:      top.Amount.String(),
		})
	}
	for id, acct := range e.accounts {
		s.Accounts = append(s.Accounts, AccountSnapshot{
			Bidder:  id.String(),
			Balance: acct.balance.String(),
			Locked:  acct.locked.String(),
		})
	}
	return s
}

// RestoreEngine rebuilds an engine from a snapshot. Options that carry
// non-serializable collaborators (transferrer, observer, time source) must be
// passed again; lifecycle, catalog, ledger and escrow state come from the
// snapshot.
func RestoreEngine(s Snapshot, opts ...Option) (*Engine, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	owner, err := uuid.Parse(s.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid owner identity: %w", err)
	}
	var mode Mode
	switch s.Mode {
	case Manual.String():
		mode = Manual
	case Temporal.String():
		mode = Temporal
	default:
		return nil, fmt.Errorf("unknown auction mode %q", s.Mode)
	}

	e := New(owner, mode, opts...)
	e.maxProducts = s.MaxProducts
	if e.minBid, err = decimal.NewFromString(s.MinBid); err != nil {
		return nil, fmt.Errorf("invalid minimum bid: %w", err)
	}

	e.clock.state = manualState(s.ManualState)
	e.clock.timingSet = s.TimingSet
	if s.TimingSet {
		e.clock.start = time.Unix(s.Start, 0)
		e.clock.end = time.Unix(s.End, 0)
	}
	if s.MinDuration > 0 {
		e.clock.minDuration = time.Duration(s.MinDuration) * time.Second
	}

	for _, raw := range s.Authorized {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid authorized identity %q: %w", raw, err)
		}
		e.authorized[id] = struct{}{}
	}
	for _, p := range s.Products {
		price, err := decimal.NewFromString(p.StartingPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid starting price for product %d: %w", p.Code, err)
		}
		e.products[p.Code] = Product{Code: p.Code, StartingPrice: price}
		e.productCodes = append(e.productCodes, p.Code)
	}
	for _, b := range s.Bids {
		bidder, err := uuid.Parse(b.Bidder)
		if err != nil {
			return nil, fmt.Errorf("invalid bidder identity %q: %w", b.Bidder, err)
		}
		amount, err := decimal.NewFromString(b.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid bid amount for product %d: %w", b.ProductCode, err)
		}
		e.bids[bidKey{code: b.ProductCode, bidder: bidder}] = &Bid{
			Bidder:      bidder,
			ProductCode: b.ProductCode,
			Amount:      amount,
		}
	}
	for _, w := range s.Winning {
		bidder, err := uuid.Parse(w.Bidder)
		if err != nil {
			return nil, fmt.Errorf("invalid winner identity %q: %w", w.Bidder, err)
		}
		amount, err := decimal.NewFromString(w.Amount)
		if err != nil {
			return nil, fmt.Errorf("invalid winning amount for product %d: %w", w.ProductCode, err)
		}
		e.winning[w.ProductCode] = WinningBid{Bidder: bidder, Amount: amount}
	}
	for _, a := range s.Accounts {
		id, err := uuid.Parse(a.Bidder)
		if err != nil {
			return nil, fmt.Errorf("invalid account identity %q: %w", a.Bidder, err)
		}
		balance, err := decimal.NewFromString(a.Balance)
		if err != nil {
			return nil, fmt.Errorf("invalid balance for %s: %w", a.Bidder, err)
		}
		locked, err := decimal.NewFromString(a.Locked)
		if err != nil {
			return nil, fmt.Errorf("invalid locked amount for %s: %w", a.Bidder, err)
		}
		if balance.LessThan(locked) {
			return nil, fmt.Errorf("account %s violates balance >= locked", a.Bidder)
		}
		e.accounts[id] = account{balance: balance, locked: locked}
	}
	return e, nil
}
