package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudx-io/escrowhouse/engineapi"
)

// handleRequest dispatches one decoded request against the engine and builds
// the reply. Malformed requests (bad identities, bad amounts, unknown types)
// fail before reaching the engine and carry no error kind.
func (s *Server) handleRequest(req engineapi.Request) engineapi.Response {
	switch req.Type {
	case engineapi.TypePing:
		return engineapi.Response{Type: engineapi.TypePing, OK: true, Timestamp: time.Now().Unix()}

	case engineapi.TypeAuthorize, engineapi.TypeUnauthorize:
		caller, bidder, err := callerAndBidder(req)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		if req.Type == engineapi.TypeAuthorize {
			err = s.engine.Authorize(caller, bidder)
		} else {
			err = s.engine.Unauthorize(caller, bidder)
		}
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.OKResponse(req.Type)

	case engineapi.TypeSetTiming:
		caller, err := engineapi.ParseIdentity(req.Caller)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		start := time.Unix(req.Start, 0)
		end := time.Unix(req.End, 0)
		if err := s.engine.SetTiming(caller, start, end); err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.OKResponse(req.Type)

	case engineapi.TypeStart, engineapi.TypeClose:
		caller, err := engineapi.ParseIdentity(req.Caller)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		if req.Type == engineapi.TypeStart {
			err = s.engine.Start(caller)
		} else {
			err = s.engine.Close(caller)
		}
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.OKResponse(req.Type)

	case engineapi.TypeUpsertProduct:
		caller, err := engineapi.ParseIdentity(req.Caller)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		price, err := engineapi.ParseAmount(req.Amount)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		if err := s.engine.UpsertProduct(caller, req.ProductCode, price); err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.OKResponse(req.Type)

	case engineapi.TypeRemoveProduct:
		caller, err := engineapi.ParseIdentity(req.Caller)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		if err := s.engine.RemoveProduct(caller, req.ProductCode); err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.OKResponse(req.Type)

	case engineapi.TypeBid:
		caller, bidder, err := callerOrOnBehalf(req)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		amount, err := engineapi.ParseAmount(req.Amount)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		if err := s.engine.PlaceBid(caller, bidder, req.ProductCode, amount); err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.OKResponse(req.Type)

	case engineapi.TypeWithdraw:
		caller, bidder, err := callerOrOnBehalf(req)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		if bidder == caller {
			err = s.engine.Withdraw(caller)
		} else {
			err = s.engine.WithdrawFor(caller, bidder)
		}
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.OKResponse(req.Type)

	case engineapi.TypeCurrentBid:
		caller, bidder, err := callerAndBidder(req)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		amount, err := s.engine.CurrentBid(caller, req.ProductCode, bidder)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.Response{Type: req.Type, OK: true, Amount: amount.String()}

	case engineapi.TypeHighestBid:
		caller, err := engineapi.ParseIdentity(req.Caller)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		amount, err := s.engine.HighestBid(caller, req.ProductCode)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.Response{Type: req.Type, OK: true, Amount: amount.String()}

	case engineapi.TypeBalanceOf:
		caller, bidder, err := callerOrOnBehalf(req)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		amount, err := s.engine.BalanceOf(caller, bidder)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.Response{Type: req.Type, OK: true, Amount: amount.String()}

	case engineapi.TypeWinners:
		caller, err := engineapi.ParseIdentity(req.Caller)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		winners, err := s.engine.Winners(caller)
		if err != nil {
			return engineapi.ErrorResponse(req.Type, err)
		}
		return engineapi.Response{
			Type:    req.Type,
			OK:      true,
			Winners: engineapi.WinnersToEntries(winners),
		}

	default:
		return engineapi.ErrorResponse(req.Type, fmt.Errorf("unknown request type %q", req.Type))
	}
}

// callerAndBidder parses requests that always name a distinct acted-on
// identity.
func callerAndBidder(req engineapi.Request) (caller, bidder uuid.UUID, err error) {
	caller, err = engineapi.ParseIdentity(req.Caller)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	bidder, err = engineapi.ParseIdentity(req.Bidder)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return caller, bidder, nil
}

// callerOrOnBehalf parses requests where an omitted bidder means the caller
// acts for themselves.
func callerOrOnBehalf(req engineapi.Request) (caller, bidder uuid.UUID, err error) {
	caller, err = engineapi.ParseIdentity(req.Caller)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if req.Bidder == "" {
		return caller, caller, nil
	}
	bidder, err = engineapi.ParseIdentity(req.Bidder)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return caller, bidder, nil
}
