// Package pricing contains option sensitivity models used by the chain
// fetcher to annotate legs.
//
// Design notes:
//   - DeltaModel is the swap point for a real pricing model. The shipped
//     implementation is a deliberate linear heuristic, not Black-Scholes;
//     it exists to rank strikes by directional exposure, nothing more.
//   - Deltas use the Brazilian retail convention: signed, on a 0..100 scale,
//     positive for calls and negative for puts.
package pricing

import "math"

// DeltaModel estimates the delta of an option leg.
//
// Implementations must return a value whose magnitude is at most 100 and
// whose sign follows the option kind: >= 0 for calls, <= 0 for puts.
type DeltaModel interface {
	// Delta estimates the signed delta for one leg. daysToExpiry and ivPct
	// (implied volatility as a percentage) are provided so richer models can
	// use them; simple models may ignore them.
	Delta(isCall bool, spot, strike float64, daysToExpiry int, ivPct float64) float64
}

// LinearDelta is a closed-form linear delta approximation.
//
// An at-the-money option is assigned |delta| 50; the estimate then moves
// linearly with the moneyness ratio |spot-strike|/spot, clamped to [0, 100].
// Time to expiry and volatility are ignored.
type LinearDelta struct{}

// Delta implements DeltaModel.
func (LinearDelta) Delta(isCall bool, spot, strike float64, daysToExpiry int, ivPct float64) float64 {
	if isCall {
		if spot > strike { // ITM
			return math.Min(50+(spot-strike)/spot*50, 100)
		}
		return math.Max(50-(strike-spot)/spot*50, 0)
	}
	if spot < strike { // ITM
		return -math.Min(50+(strike-spot)/spot*50, 100)
	}
	return -math.Max(50-(spot-strike)/spot*50, 0)
}
