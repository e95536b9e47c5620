package scanner

import (
	"math"

	"github.com/unoinvest/rco-scanner/internal/chain"
)

// CoveredCalls identifies covered-call setups: sell an OTM call against a
// held stock position, collecting the premium.
//
// A call leg qualifies only when all of these hold: implied volatility at or
// above the minimum, days to expiry inside the strategy window, volume OR
// open interest above the liquidity floor, a live bid, and |delta| inside
// the configured band (bounds inclusive). Survivors are scored and the
// ranked list capped at TopN.
//
// MaxRisk is nil: the risk of the setup is the downside of the underlying
// itself, which is unbounded and not a property of the option leg.
func (s *Scanner) CoveredCalls(ch *chain.Chain) []Opportunity {
	cfg := s.cfg.CoveredCall
	var opps []Opportunity

	for _, call := range ch.Calls {
		if call.ImpliedVolatility < cfg.MinIV {
			continue
		}
		if call.DaysToExpiry < cfg.MinDaysToExpiry || call.DaysToExpiry > cfg.MaxDaysToExpiry {
			continue
		}
		if call.Volume < cfg.MinVolume && call.OpenInterest < cfg.MinOpenInterest {
			continue
		}
		if call.Bid <= 0 {
			continue
		}
		deltaAbs := math.Abs(call.Delta)
		if deltaAbs < cfg.MinDeltaAbs || deltaAbs > cfg.MaxDeltaAbs {
			continue
		}

		returnPct := call.Bid / ch.SpotPrice * 100
		monthlyReturn := returnPct * 30 / float64(call.DaysToExpiry)

		score := coveredCallScore(cfg, monthlyReturn, call.ImpliedVolatility, deltaAbs, call.Volume, call.OpenInterest)
		if score < cfg.MinScore {
			continue
		}

		credit := call.Bid * LotSize
		opps = append(opps, Opportunity{
			Strategy:   CoveredCall,
			Underlying: ch.Underlying,
			Score:      score,

			Code1:      call.Code,
			Kind1:      chain.Call,
			Direction1: Sell,
			Strike1:    call.Strike,
			Price1:     call.Bid,
			Quantity1:  LotSize,

			NetCredit:                   credit,
			NetDebit:                    0,
			NetResult:                   credit,
			MaxRisk:                     nil,
			ReturnPct:                   returnPct,
			EstimatedSuccessProbability: 100 - deltaAbs, // probability of expiring OTM
			Expiration:                  call.Expiration,
			DaysToExpiry:                call.DaysToExpiry,
			ImpliedVolatility:           call.ImpliedVolatility,

			MonthlyReturn: monthlyReturn,
			Delta:         call.Delta,
			SpotPrice:     ch.SpotPrice,
		})
	}

	return rank(opps, s.cfg.TopN)
}
