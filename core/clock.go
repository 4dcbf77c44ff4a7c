package core

import "time"

// Mode selects how the auction lifecycle is driven. The mode is fixed when the
// engine is constructed; the two modes are mutually exclusive.
type Mode int

const (
	// Manual auctions are driven by explicit Start and Close calls.
	Manual Mode = iota
	// Temporal auctions are driven by a (start, end) window set once via
	// SetTiming and compared against the wall clock.
	Temporal
)

func (m Mode) String() string {
	switch m {
	case Manual:
		return "manual"
	case Temporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// DefaultMinDuration is the floor on end-start for temporal auctions.
const DefaultMinDuration = 30 * time.Minute

type manualState int

const (
	notStarted manualState = iota
	started
	closed
)

// clock answers the two lifecycle predicates every gated operation needs:
// is bidding currently open, and has the auction ended.
type clock struct {
	mode  Mode
	state manualState

	start       time.Time
	end         time.Time
	timingSet   bool
	minDuration time.Duration

	now func() time.Time
}

func newClock(mode Mode, minDuration time.Duration, now func() time.Time) *clock {
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}
	if now == nil {
		now = time.Now
	}
	return &clock{mode: mode, minDuration: minDuration, now: now}
}

// open reports whether bids are accepted right now.
func (c *clock) open() bool {
	switch c.mode {
	case Manual:
		return c.state == started
	case Temporal:
		if !c.timingSet {
			return false
		}
		t := c.now()
		return t.After(c.start) && t.Before(c.end)
	default:
		return false
	}
}

// ended reports whether the auction has concluded. For manual auctions this is
// the explicit Closed state, not a timestamp comparison.
func (c *clock) ended() bool {
	switch c.mode {
	case Manual:
		return c.state == closed
	case Temporal:
		return c.timingSet && c.now().After(c.end)
	default:
		return false
	}
}

// opened reports whether bidding has ever been open, which is what gates
// catalog mutation: the catalog is frozen from the moment bidding opens,
// including after the auction ends.
func (c *clock) opened() bool {
	switch c.mode {
	case Manual:
		return c.state != notStarted
	case Temporal:
		return c.timingSet && c.now().After(c.start)
	default:
		return false
	}
}

func (c *clock) doStart() error {
	if c.mode != Manual || c.state != notStarted {
		return errf(KindAuctionCannotBeStarted, "auction is not in the startable state")
	}
	c.state = started
	return nil
}

func (c *clock) doClose() error {
	if c.mode != Manual || c.state != started {
		return errf(KindAuctionNotStarted, "auction is not running")
	}
	c.state = closed
	return nil
}

func (c *clock) setTiming(start, end time.Time) error {
	if c.mode != Temporal {
		return errf(KindAuctionCannotBeStarted, "timing applies to temporal auctions only")
	}
	if !start.Before(end) || end.Sub(start) < c.minDuration {
		return errf(KindDurationTooShort, "auction window must span at least %s", c.minDuration)
	}
	c.start = start
	c.end = end
	c.timingSet = true
	return nil
}

// phaseErr maps the current lifecycle position to the error a bid receives
// when bidding is not open.
func (c *clock) phaseErr() *Error {
	if c.ended() {
		return errf(KindAuctionClosed, "auction has ended")
	}
	return errf(KindAuctionNotStarted, "bidding has not opened")
}
