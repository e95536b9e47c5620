package chain

import (
	"context"
	"errors"
	"fmt"
)

// FailureReason classifies why a chain fetch produced no usable data.
type FailureReason string

const (
	NoData        FailureReason = "NO_DATA"        // no spot quote for the underlying
	NoOptions     FailureReason = "NO_OPTIONS"     // underlying has no listed options
	NoExpirations FailureReason = "NO_EXPIRATIONS" // nothing inside the 20-90 day window
	ProviderError FailureReason = "PROVIDER_ERROR" // transport or upstream failure
)

// Typed sentinels so callers and tests can detect failure categories with
// errors.Is instead of string matching.
var (
	ErrNoData        = errors.New("no market data for underlying")
	ErrNoOptions     = errors.New("no options listed for underlying")
	ErrNoExpirations = errors.New("no expirations inside scan window")
)

// FetchError is the typed failure returned by providers. It wraps the
// underlying cause, when there is one, for errors.Is/As inspection.
type FetchError struct {
	Underlying string
	Reason     FailureReason
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch chain %s: %s: %v", e.Underlying, e.Reason, e.Err)
	}
	return fmt.Sprintf("fetch chain %s: %s", e.Underlying, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError builds a FetchError, attaching the matching sentinel for
// reasons that have one.
func NewFetchError(underlying string, reason FailureReason, err error) *FetchError {
	if err == nil {
		switch reason {
		case NoData:
			err = ErrNoData
		case NoOptions:
			err = ErrNoOptions
		case NoExpirations:
			err = ErrNoExpirations
		}
	}
	return &FetchError{Underlying: underlying, Reason: reason, Err: err}
}

// Provider supplies chain snapshots for underlyings.
//
// Implementations must apply the expiry window before building leg lists and
// must skip (log, continue) individual expirations that fail, so a partial
// chain is still returned. A nil chain is always accompanied by a *FetchError.
type Provider interface {
	FetchChain(ctx context.Context, underlying string) (*Chain, error)
}
