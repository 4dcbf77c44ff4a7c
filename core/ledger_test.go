package core

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"
)

func TestPlaceBid_FirstBidRecorded(t *testing.T) {
	e, owner, bidder := openManualAuction(t)

	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(10)))

	current, err := e.CurrentBid(owner, 1, bidder)
	assert.Nil(t, err)
	check.True(t, current.Equal(dec(10)))

	highest, err := e.HighestBid(owner, 1)
	assert.Nil(t, err)
	check.True(t, highest.Equal(dec(10)))
}

func TestPlaceBid_UnauthorizedBidderForbidden(t *testing.T) {
	e, _, _ := openManualAuction(t)
	stranger := uuid.New()

	err := e.PlaceBid(stranger, stranger, 1, dec(10))
	check.True(t, errors.Is(err, ErrForbidden))
}

func TestPlaceBid_OnBehalfRequiresOwner(t *testing.T) {
	e, owner, bidder := openManualAuction(t)
	other := uuid.New()
	assert.Nil(t, e.Authorize(owner, other))

	// The owner may bid on an authorized bidder's behalf.
	assert.Nil(t, e.PlaceBid(owner, bidder, 1, dec(10)))

	// Another bidder may not.
	err := e.PlaceBid(other, bidder, 1, dec(20))
	check.True(t, errors.Is(err, ErrForbidden))

	// Even the owner cannot bid for an unauthorized identity.
	err = e.PlaceBid(owner, uuid.New(), 1, dec(10))
	check.True(t, errors.Is(err, ErrForbidden))
}

func TestPlaceBid_PhaseGate(t *testing.T) {
	e, owner, bidder := newManualAuction(t)

	err := e.PlaceBid(bidder, bidder, 1, dec(10))
	check.True(t, errors.Is(err, ErrAuctionNotStarted))

	assert.Nil(t, e.Start(owner))
	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(10)))

	assert.Nil(t, e.Close(owner))
	err = e.PlaceBid(bidder, bidder, 1, dec(20))
	check.True(t, errors.Is(err, ErrAuctionClosed))
}

func TestPlaceBid_UnknownProduct(t *testing.T) {
	e, _, bidder := openManualAuction(t)

	err := e.PlaceBid(bidder, bidder, 42, dec(10))
	check.True(t, errors.Is(err, ErrProductNotFound))
}

func TestPlaceBid_BelowFloor(t *testing.T) {
	e, _, bidder := openManualAuction(t, WithMinBid(dec(5)))

	err := e.PlaceBid(bidder, bidder, 1, dec(4))
	check.True(t, errors.Is(err, ErrBidTooLow))

	// The floor itself is an acceptable bid.
	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(5)))
}

func TestPlaceBid_ResubmissionMustStrictlyIncrease(t *testing.T) {
	e, owner, bidder := openManualAuction(t)

	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(10)))

	err := e.PlaceBid(bidder, bidder, 1, dec(9))
	check.True(t, errors.Is(err, ErrBidCannotBeLowerThanPrevious))
	err = e.PlaceBid(bidder, bidder, 1, dec(10))
	check.True(t, errors.Is(err, ErrBidCannotBeLowerThanPrevious))

	// The rejected resubmissions left no trace.
	current, err := e.CurrentBid(owner, 1, bidder)
	assert.Nil(t, err)
	check.True(t, current.Equal(dec(10)))
	balance, err := e.BalanceOf(bidder, bidder)
	assert.Nil(t, err)
	check.True(t, balance.Equal(dec(10)))

	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(11)))
	current, err = e.CurrentBid(owner, 1, bidder)
	assert.Nil(t, err)
	check.True(t, current.Equal(dec(11)))
}

func TestPlaceBid_WinnerTiesKeepIncumbent(t *testing.T) {
	e, owner, b1 := openManualAuction(t)
	b2 := uuid.New()
	assert.Nil(t, e.Authorize(owner, b2))

	assert.Nil(t, e.PlaceBid(b1, b1, 1, dec(10)))
	assert.Nil(t, e.PlaceBid(b2, b2, 1, dec(10)))

	assert.Nil(t, e.Close(owner))
	winners, err := e.Winners(b1)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(winners))
	check.Equal(t, b1, winners[0].Bidder)
	check.True(t, winners[0].Amount.Equal(dec(10)))
}

func TestPlaceBid_TwoBidders(t *testing.T) {
	e, owner, b1 := openManualAuction(t)
	b2 := uuid.New()
	assert.Nil(t, e.Authorize(owner, b2))

	assert.Nil(t, e.PlaceBid(b1, b1, 1, dec(10)))
	assert.Nil(t, e.PlaceBid(b2, b2, 1, dec(15)))

	highest, err := e.HighestBid(owner, 1)
	assert.Nil(t, err)
	check.True(t, highest.Equal(dec(15)))

	// b1's 10 is outbid but still backs b1's live bid, so it stays locked.
	locked, err := e.Locked(b1, b1)
	assert.Nil(t, err)
	check.True(t, locked.Equal(dec(10)))

	assert.Nil(t, e.Close(owner))
	winners, err := e.Winners(b1)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(winners))
	check.Equal(t, b2, winners[0].Bidder)
	check.True(t, winners[0].Amount.Equal(dec(15)))
}

func TestPlaceBid_AmountsStrictlyIncreasePerPair(t *testing.T) {
	e, owner, bidder := openManualAuction(t)

	amounts := []int64{10, 11, 25, 26, 100}
	prev := decimal.Zero
	for _, n := range amounts {
		assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(n)))
		current, err := e.CurrentBid(owner, 1, bidder)
		assert.Nil(t, err)
		check.True(t, current.GreaterThan(prev))
		prev = current
	}
}

func TestPlaceBid_MultipleProductsLockIndependently(t *testing.T) {
	e, owner, bidder := newManualAuction(t)
	assert.Nil(t, e.UpsertProduct(owner, 2, dec(500)))
	assert.Nil(t, e.Start(owner))

	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(10)))
	assert.Nil(t, e.PlaceBid(bidder, bidder, 2, dec(20)))

	locked, err := e.Locked(bidder, bidder)
	assert.Nil(t, err)
	check.True(t, locked.Equal(dec(30)))

	// Raising the bid on product 1 relocks only that product's amount.
	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(15)))
	locked, err = e.Locked(bidder, bidder)
	assert.Nil(t, err)
	check.True(t, locked.Equal(dec(35)))
}

func TestPlaceBid_Notification(t *testing.T) {
	type event struct {
		code   int64
		amount decimal.Decimal
	}
	var events []event
	obs := func(code int64, amount decimal.Decimal) {
		events = append(events, event{code, amount})
	}

	e, _, bidder := openManualAuction(t, WithBidObserver(obs))

	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(10)))
	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(20)))

	// Rejected bids emit nothing.
	check.NotNil(t, e.PlaceBid(bidder, bidder, 1, dec(5)))

	assert.Equal(t, 2, len(events))
	check.Equal(t, int64(1), events[0].code)
	check.True(t, events[0].amount.Equal(dec(10)))
	check.True(t, events[1].amount.Equal(dec(20)))
}

func TestCurrentBid_OwnerOnly(t *testing.T) {
	e, _, bidder := openManualAuction(t)
	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(10)))

	_, err := e.CurrentBid(bidder, 1, bidder)
	check.True(t, errors.Is(err, ErrForbidden))
}

func TestCurrentBid_NoLiveBid(t *testing.T) {
	e, owner, bidder := openManualAuction(t)

	_, err := e.CurrentBid(owner, 1, bidder)
	check.True(t, errors.Is(err, ErrProductNotFound))
}

func TestHighestBid_NoBidsRecorded(t *testing.T) {
	e, owner, _ := openManualAuction(t)

	_, err := e.HighestBid(owner, 1)
	check.True(t, errors.Is(err, ErrProductNotFound))
}

func TestHighestBid_OwnerOnly(t *testing.T) {
	e, _, bidder := openManualAuction(t)
	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(10)))

	_, err := e.HighestBid(bidder, 1)
	check.True(t, errors.Is(err, ErrForbidden))
}
