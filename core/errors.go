package core

import "fmt"

// Kind identifies one of the closed set of failure conditions the engine can
// report. Every error returned by an Engine operation carries exactly one Kind.
type Kind int

const (
	KindForbidden Kind = iota
	KindDuplicateBidder
	KindBidderNotFound
	KindAuctionCannotBeStarted
	KindAuctionNotStarted
	KindAuctionStarted
	KindAuctionClosed
	KindAuctionNotYetClosed
	KindDurationTooShort
	KindBadProductCode
	KindTooManyProducts
	KindProductNotFound
	KindBidTooLow
	KindBidCannotBeLowerThanPrevious
	KindOutOfBalance
	KindWithdrawFailed
)

var kindNames = map[Kind]string{
	KindForbidden:                    "forbidden",
	KindDuplicateBidder:              "duplicate_bidder",
	KindBidderNotFound:               "bidder_not_found",
	KindAuctionCannotBeStarted:       "auction_cannot_be_started",
	KindAuctionNotStarted:            "auction_not_started",
	KindAuctionStarted:               "auction_started",
	KindAuctionClosed:                "auction_closed",
	KindAuctionNotYetClosed:          "auction_not_yet_closed",
	KindDurationTooShort:             "duration_too_short",
	KindBadProductCode:               "bad_product_code",
	KindTooManyProducts:              "too_many_products",
	KindProductNotFound:              "product_not_found",
	KindBidTooLow:                    "bid_too_low",
	KindBidCannotBeLowerThanPrevious: "bid_cannot_be_lower_than_previous",
	KindOutOfBalance:                 "out_of_balance",
	KindWithdrawFailed:               "withdraw_failed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown_kind_%d", int(k))
}

// Error is the failure type returned by every Engine operation. Errors of the
// same Kind match each other under errors.Is, so callers can compare against
// the package-level sentinels regardless of the detail message.
type Error struct {
	Kind   Kind
	Detail string
	cause  error
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.cause)
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	case e.cause != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports Kind equality, ignoring detail and cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrForbidden                    = &Error{Kind: KindForbidden}
	ErrDuplicateBidder              = &Error{Kind: KindDuplicateBidder}
	ErrBidderNotFound               = &Error{Kind: KindBidderNotFound}
	ErrAuctionCannotBeStarted       = &Error{Kind: KindAuctionCannotBeStarted}
	ErrAuctionNotStarted            = &Error{Kind: KindAuctionNotStarted}
	ErrAuctionStarted               = &Error{Kind: KindAuctionStarted}
	ErrAuctionClosed                = &Error{Kind: KindAuctionClosed}
	ErrAuctionNotYetClosed          = &Error{Kind: KindAuctionNotYetClosed}
	ErrDurationTooShort             = &Error{Kind: KindDurationTooShort}
	ErrBadProductCode               = &Error{Kind: KindBadProductCode}
	ErrTooManyProducts              = &Error{Kind: KindTooManyProducts}
	ErrProductNotFound              = &Error{Kind: KindProductNotFound}
	ErrBidTooLow                    = &Error{Kind: KindBidTooLow}
	ErrBidCannotBeLowerThanPrevious = &Error{Kind: KindBidCannotBeLowerThanPrevious}
	ErrOutOfBalance                 = &Error{Kind: KindOutOfBalance}
	ErrWithdrawFailed               = &Error{Kind: KindWithdrawFailed}
)

func errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func wrapErr(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

// KindOf extracts the Kind from an engine error. The second return is false
// when err did not originate from this package.
func KindOf(err error) (Kind, bool) {
	e, ok := err.(*Error)
	if !ok {
		return 0, false
	}
	return e.Kind, true
}
