// Package client is a Go client for the auctiond line protocol: one
// JSON-encoded request per connection, one JSON-encoded response back.
package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/mdlayher/vsock"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/cloudx-io/escrowhouse/engineapi"
)

// DefaultTimeout bounds a full request/response round trip.
const DefaultTimeout = 30 * time.Second

// Dialer opens a connection to an auctiond instance.
type Dialer func() (net.Conn, error)

// TCPDialer dials auctiond over TCP.
func TCPDialer(addr string) Dialer {
	return func() (net.Conn, error) { return net.Dial("tcp", addr) }
}

// VsockDialer dials auctiond over a vsock port, for deployments where the
// engine runs in an isolated VM.
func VsockDialer(cid, port uint32) Dialer {
	return func() (net.Conn, error) { return vsock.Dial(cid, port, nil) }
}

// APIError is a failure reported by the engine, carrying the engine's error
// kind string from the response envelope.
type APIError struct {
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Kind == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Client issues requests against a single auctiond instance.
type Client struct {
	dial    Dialer
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the round-trip deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New builds a client around a dialer.
func New(dial Dialer, opts ...Option) *Client {
	c := &Client{dial: dial, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends one request and reads one response. Transport failures are
// returned as wrapped errors; an engine-level failure comes back as *APIError.
func (c *Client) Do(req engineapi.Request) (engineapi.Response, error) {
	conn, err := c.dial()
	if err != nil {
		return engineapi.Response{}, errors.Wrap(err, "failed to dial auctiond")
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return engineapi.Response{}, errors.Wrap(err, "failed to set deadline")
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return engineapi.Response{}, errors.Wrap(err, "failed to send request")
	}

	var resp engineapi.Response
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&resp); err != nil {
		return engineapi.Response{}, errors.Wrap(err, "failed to read response")
	}
	return resp, nil
}

func (c *Client) exec(req engineapi.Request) (engineapi.Response, error) {
	resp, err := c.Do(req)
	if err != nil {
		return engineapi.Response{}, err
	}
	if !resp.OK {
		return resp, &APIError{Kind: resp.Error, Message: resp.Message}
	}
	return resp, nil
}

// Ping checks that auctiond is reachable and serving.
func (c *Client) Ping() error {
	_, err := c.exec(engineapi.Request{Type: engineapi.TypePing})
	return err
}

// Authorize grants bidder the right to bid. Caller must be the owner.
func (c *Client) Authorize(caller, bidder uuid.UUID) error {
	_, err := c.exec(engineapi.Request{
		Type:   engineapi.TypeAuthorize,
		Caller: caller.String(),
		Bidder: bidder.String(),
	})
	return err
}

// Unauthorize revokes bidder's right to bid. Caller must be the owner.
func (c *Client) Unauthorize(caller, bidder uuid.UUID) error {
	_, err := c.exec(engineapi.Request{
		Type:   engineapi.TypeUnauthorize,
		Caller: caller.String(),
		Bidder: bidder.String(),
	})
	return err
}

// SetTiming fixes the bidding window of a temporal auction.
func (c *Client) SetTiming(caller uuid.UUID, start, end time.Time) error {
	_, err := c.exec(engineapi.Request{
		Type:   engineapi.TypeSetTiming,
		Caller: caller.String(),
		Start:  start.Unix(),
		End:    end.Unix(),
	})
	return err
}

// Start opens bidding on a manual auction.
func (c *Client) Start(caller uuid.UUID) error {
	_, err := c.exec(engineapi.Request{Type: engineapi.TypeStart, Caller: caller.String()})
	return err
}

// Close ends a manual auction.
func (c *Client) Close(caller uuid.UUID) error {
	_, err := c.exec(engineapi.Request{Type: engineapi.TypeClose, Caller: caller.String()})
	return err
}

// UpsertProduct adds a product or replaces its starting price.
func (c *Client) UpsertProduct(caller uuid.UUID, code int64, startingPrice decimal.Decimal) error {
	_, err := c.exec(engineapi.Request{
		Type:        engineapi.TypeUpsertProduct,
		Caller:      caller.String(),
		ProductCode: code,
		Amount:      startingPrice.String(),
	})
	return err
}

// RemoveProduct deletes a product from the catalog.
func (c *Client) RemoveProduct(caller uuid.UUID, code int64) error {
	_, err := c.exec(engineapi.Request{
		Type:        engineapi.TypeRemoveProduct,
		Caller:      caller.String(),
		ProductCode: code,
	})
	return err
}

// Bid places a bid as the caller.
func (c *Client) Bid(caller uuid.UUID, code int64, amount decimal.Decimal) error {
	_, err := c.exec(engineapi.Request{
		Type:        engineapi.TypeBid,
		Caller:      caller.String(),
		ProductCode: code,
		Amount:      amount.String(),
	})
	return err
}

// BidAs places a bid on a bidder's behalf. Caller must be the owner.
func (c *Client) BidAs(caller, bidder uuid.UUID, code int64, amount decimal.Decimal) error {
	_, err := c.exec(engineapi.Request{
		Type:        engineapi.TypeBid,
		Caller:      caller.String(),
		Bidder:      bidder.String(),
		ProductCode: code,
		Amount:      amount.String(),
	})
	return err
}

// Withdraw reclaims the caller's withdrawable funds.
func (c *Client) Withdraw(caller uuid.UUID) error {
	_, err := c.exec(engineapi.Request{Type: engineapi.TypeWithdraw, Caller: caller.String()})
	return err
}

// WithdrawFor reclaims a bidder's withdrawable funds on their behalf. Caller
// must be the owner.
func (c *Client) WithdrawFor(caller, bidder uuid.UUID) error {
	_, err := c.exec(engineapi.Request{
		Type:   engineapi.TypeWithdraw,
		Caller: caller.String(),
		Bidder: bidder.String(),
	})
	return err
}

// CurrentBid returns bidder's live bid on a product. Caller must be the owner.
func (c *Client) CurrentBid(caller, bidder uuid.UUID, code int64) (decimal.Decimal, error) {
	resp, err := c.exec(engineapi.Request{
		Type:        engineapi.TypeCurrentBid,
		Caller:      caller.String(),
		Bidder:      bidder.String(),
		ProductCode: code,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return engineapi.ParseAmount(resp.Amount)
}

// HighestBid returns the winning bid amount recorded for a product. Caller
// must be the owner.
func (c *Client) HighestBid(caller uuid.UUID, code int64) (decimal.Decimal, error) {
	resp, err := c.exec(engineapi.Request{
		Type:        engineapi.TypeHighestBid,
		Caller:      caller.String(),
		ProductCode: code,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return engineapi.ParseAmount(resp.Amount)
}

// BalanceOf returns a bidder's cumulative escrow balance.
func (c *Client) BalanceOf(caller, bidder uuid.UUID) (decimal.Decimal, error) {
	resp, err := c.exec(engineapi.Request{
		Type:   engineapi.TypeBalanceOf,
		Caller: caller.String(),
		Bidder: bidder.String(),
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return engineapi.ParseAmount(resp.Amount)
}

// Winners returns the post-auction report.
func (c *Client) Winners(caller uuid.UUID) ([]engineapi.WinnerEntry, error) {
	resp, err := c.exec(engineapi.Request{Type: engineapi.TypeWinners, Caller: caller.String()})
	if err != nil {
		return nil, err
	}
	return resp.Winners, nil
}
