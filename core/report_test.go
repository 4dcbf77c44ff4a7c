package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestWinners_GatedUntilClosed(t *testing.T) {
	e, owner, bidder := openManualAuction(t)
	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(10)))

	_, err := e.Winners(bidder)
	check.True(t, errors.Is(err, ErrAuctionNotYetClosed))

	assert.Nil(t, e.Close(owner))
	winners, err := e.Winners(bidder)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(winners))
	check.Equal(t, int64(1), winners[0].ProductCode)
	check.Equal(t, bidder, winners[0].Bidder)
	check.True(t, winners[0].Amount.Equal(dec(10)))
}

func TestWinners_ManualModeNeverStartedIsNotEnded(t *testing.T) {
	owner := uuid.New()
	bidder := uuid.New()
	e := New(owner, Manual)
	assert.Nil(t, e.Authorize(owner, bidder))

	// A manual auction that never ran has not ended; the report stays gated.
	_, err := e.Winners(bidder)
	check.True(t, errors.Is(err, ErrAuctionNotYetClosed))
}

func TestWinners_UnauthorizedForbidden(t *testing.T) {
	e, owner, _ := openManualAuction(t)
	assert.Nil(t, e.Close(owner))

	_, err := e.Winners(uuid.New())
	check.True(t, errors.Is(err, ErrForbidden))
}

func TestWinners_OmitsProductsWithoutBids(t *testing.T) {
	e, owner, b1 := newManualAuction(t)
	b2 := uuid.New()
	assert.Nil(t, e.Authorize(owner, b2))
	assert.Nil(t, e.UpsertProduct(owner, 2, dec(1)))
	assert.Nil(t, e.UpsertProduct(owner, 3, dec(1)))
	assert.Nil(t, e.Start(owner))

	assert.Nil(t, e.PlaceBid(b2, b2, 3, dec(7)))
	assert.Nil(t, e.PlaceBid(b1, b1, 1, dec(10)))
	assert.Nil(t, e.PlaceBid(b2, b2, 1, dec(12)))

	assert.Nil(t, e.Close(owner))
	winners, err := e.Winners(b1)
	assert.Nil(t, err)

	// Catalog enumeration order, product 2 omitted.
	assert.Equal(t, 2, len(winners))
	check.Equal(t, int64(1), winners[0].ProductCode)
	check.Equal(t, b2, winners[0].Bidder)
	check.True(t, winners[0].Amount.Equal(dec(12)))
	check.Equal(t, int64(3), winners[1].ProductCode)
	check.Equal(t, b2, winners[1].Bidder)
	check.True(t, winners[1].Amount.Equal(dec(7)))
}

func TestWinners_TemporalUnlocksAfterEnd(t *testing.T) {
	owner := uuid.New()
	bidder := uuid.New()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := now
	e := New(owner, Temporal, WithNow(func() time.Time { return current }))
	assert.Nil(t, e.Authorize(owner, bidder))
	assert.Nil(t, e.UpsertProduct(owner, 1, dec(100)))
	assert.Nil(t, e.SetTiming(owner, now.Add(time.Minute), now.Add(time.Hour)))

	current = now.Add(30 * time.Minute)
	assert.Nil(t, e.PlaceBid(bidder, bidder, 1, dec(200)))

	_, err := e.Winners(bidder)
	check.True(t, errors.Is(err, ErrAuctionNotYetClosed))

	current = now.Add(2 * time.Hour)
	winners, err := e.Winners(bidder)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(winners))
	check.Equal(t, bidder, winners[0].Bidder)
}

func TestWinners_NoBidsAtAll(t *testing.T) {
	e, owner, bidder := openManualAuction(t)
	assert.Nil(t, e.Close(owner))

	winners, err := e.Winners(bidder)
	assert.Nil(t, err)
	check.Equal(t, 0, len(winners))
}
