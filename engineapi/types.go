// Package engineapi defines the wire types of the auction engine's
// request/response protocol. Every state-changing operation of the engine has
// a request type; requests carry the caller identity explicitly, and error
// responses carry the engine's error kind so callers can react to the specific
// failure without parsing messages.
package engineapi

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/escrowhouse/core"
)

// Request type discriminators.
const (
	TypePing          = "ping"
	TypeAuthorize     = "authorize"
	TypeUnauthorize   = "unauthorize"
	TypeSetTiming     = "set_timing"
	TypeStart         = "start"
	TypeClose         = "close"
	TypeUpsertProduct = "upsert_product"
	TypeRemoveProduct = "remove_product"
	TypeBid           = "bid"
	TypeWithdraw      = "withdraw"
	TypeCurrentBid    = "current_bid"
	TypeHighestBid    = "highest_bid"
	TypeBalanceOf     = "balance_of"
	TypeWinners       = "winners"
)

// Request is the envelope for every operation. Caller is always required
// except for ping. Bidder names the acted-on identity where it differs from
// the caller (authorize, unauthorize, owner-on-behalf bid and withdraw,
// current_bid, balance_of). Amount doubles as the starting price for
// upsert_product.
type Request struct {
	Type        string `json:"type"`
	Caller      string `json:"caller,omitempty"`
	Bidder      string `json:"bidder,omitempty"`
	ProductCode int64  `json:"product_code,omitempty"`
	Amount      string `json:"amount,omitempty"`
	Start       int64  `json:"start,omitempty"` // unix seconds, set_timing only
	End         int64  `json:"end,omitempty"`   // unix seconds, set_timing only
}

// WinnerEntry is one row of the winners response, in catalog order.
type WinnerEntry struct {
	ProductCode int64  `json:"product_code"`
	Amount      string `json:"amount"`
	Bidder      string `json:"bidder"`
}

// Response is the envelope for every reply. OK distinguishes success; on
// failure Error holds the engine error kind string and Message the detail.
type Response struct {
	Type      string        `json:"type"`
	OK        bool          `json:"ok"`
	Error     string        `json:"error,omitempty"`
	Message   string        `json:"message,omitempty"`
	Amount    string        `json:"amount,omitempty"`
	Winners   []WinnerEntry `json:"winners,omitempty"`
	Timestamp int64         `json:"timestamp,omitempty"`
}

// OKResponse builds a success reply for the given request type.
func OKResponse(reqType string) Response {
	return Response{Type: reqType, OK: true}
}

// ErrorResponse builds a failure reply. Engine errors surface their kind;
// anything else is reported as a bare message.
func ErrorResponse(reqType string, err error) Response {
	resp := Response{Type: reqType, OK: false, Message: err.Error()}
	if kind, ok := core.KindOf(err); ok {
		resp.Error = kind.String()
	}
	return resp
}

// ParseIdentity parses a caller or bidder field.
func ParseIdentity(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid identity %q: %w", raw, err)
	}
	return id, nil
}

// ParseAmount parses a monetary field.
func ParseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("missing amount")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}

// WinnersToEntries converts an engine winner report to wire rows.
func WinnersToEntries(winners []core.Winner) []WinnerEntry {
	entries := make([]WinnerEntry, len(winners))
	for i, w := range winners {
		entries[i] = WinnerEntry{
			ProductCode: w.ProductCode,
			Amount:      w.Amount.String(),
			Bidder:      w.Bidder.String(),
		}
	}
	return entries
}
