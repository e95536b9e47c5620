// Package chain defines the options chain data model and the providers that
// fetch it.
//
// A Chain is an ephemeral snapshot: one fetch produces one Chain, legs are
// immutable after construction, and nothing here is persisted. Providers
// retain only expirations inside the 20-90 days-to-expiry window; anything
// outside is never fetched, to bound per-symbol cost.
package chain

import "time"

// Days-to-expiry window applied by every provider before leg lists are built.
const (
	MinDaysToExpiry = 20
	MaxDaysToExpiry = 90
)

// Kind distinguishes call and put legs.
type Kind string

const (
	Call Kind = "CALL"
	Put  Kind = "PUT"
)

// OptionLeg is one traded contract within a chain snapshot.
//
// Bid and Ask may be zero, meaning "no quote". ImpliedVolatility is a
// percentage (35.0 = 35%). Delta follows the signed 0..100 convention from
// the pricing package.
type OptionLeg struct {
	Code                string    // exchange ticker, e.g. PETRC402
	Kind                Kind
	Underlying          string
	Strike              float64
	Expiration          time.Time
	DaysToExpiry        int
	LastPrice           float64
	Bid                 float64
	Ask                 float64
	Volume              int64
	OpenInterest        int64
	ImpliedVolatility   float64
	InTheMoney          bool
	DistanceFromSpotPct float64 // signed, relative to spot
	Delta               float64
}

// Chain holds every eligible leg for one underlying across the retained
// expirations. It is built once per scan call and never mutated afterwards.
type Chain struct {
	Underlying  string
	SpotPrice   float64
	Expirations []time.Time
	Calls       []OptionLeg
	Puts        []OptionLeg
}

// DaysUntil returns the whole days between now and the expiration date,
// matching the calendar-day arithmetic used by the expiry window.
func DaysUntil(expiration, now time.Time) int {
	return int(expiration.Sub(now).Hours() / 24)
}

// InWindow reports whether a days-to-expiry value falls inside the
// provider retention window.
func InWindow(days int) bool {
	return days >= MinDaysToExpiry && days <= MaxDaysToExpiry
}
