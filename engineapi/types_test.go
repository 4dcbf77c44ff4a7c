package engineapi

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/escrowhouse/core"
)

func decFromInt(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}

func TestErrorResponse_CarriesEngineKind(t *testing.T) {
	owner := uuid.New()
	e := core.New(owner, core.Manual)

	err := e.Authorize(uuid.New(), uuid.New())
	assert.NotNil(t, err)

	resp := ErrorResponse(TypeAuthorize, err)
	check.False(t, resp.OK)
	check.Equal(t, TypeAuthorize, resp.Type)
	check.Equal(t, "forbidden", resp.Error)
	check.NotEqual(t, "", resp.Message)
}

func TestErrorResponse_NonEngineErrorHasNoKind(t *testing.T) {
	resp := ErrorResponse(TypeBid, fmt.Errorf("missing amount"))
	check.False(t, resp.OK)
	check.Equal(t, "", resp.Error)
	check.Equal(t, "missing amount", resp.Message)
}

func TestParseIdentity(t *testing.T) {
	id := uuid.New()
	parsed, err := ParseIdentity(id.String())
	assert.Nil(t, err)
	check.Equal(t, id, parsed)

	_, err = ParseIdentity("")
	check.NotNil(t, err)
	_, err = ParseIdentity("not-a-uuid")
	check.NotNil(t, err)
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount("12.50")
	assert.Nil(t, err)
	check.Equal(t, "12.5", d.String())

	_, err = ParseAmount("")
	check.NotNil(t, err)
	_, err = ParseAmount("twelve")
	check.NotNil(t, err)
}

func TestRequest_JSONOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(Request{Type: TypePing})
	assert.Nil(t, err)
	check.Equal(t, `{"type":"ping"}`, string(raw))
}

func TestWinnersToEntries(t *testing.T) {
	owner := uuid.New()
	bidder := uuid.New()
	e := core.New(owner, core.Manual)
	assert.Nil(t, e.Authorize(owner, bidder))
	assert.Nil(t, e.UpsertProduct(owner, 7, decFromInt(100)))
	assert.Nil(t, e.Start(owner))
	assert.Nil(t, e.PlaceBid(bidder, bidder, 7, decFromInt(250)))
	assert.Nil(t, e.Close(owner))

	winners, err := e.Winners(bidder)
	assert.Nil(t, err)

	entries := WinnersToEntries(winners)
	assert.Equal(t, 1, len(entries))
	check.Equal(t, int64(7), entries[0].ProductCode)
	check.Equal(t, "250", entries[0].Amount)
	check.Equal(t, bidder.String(), entries[0].Bidder)
}
