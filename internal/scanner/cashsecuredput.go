package scanner

import (
	"math"

	"github.com/unoinvest/rco-scanner/internal/chain"
)

// CashSecuredPuts identifies cash-secured-put setups: sell an OTM put while
// holding enough cash to take assignment.
//
// Filters mirror the covered-call identifier over put legs, with a tighter
// delta band, plus a break-even gate: the effective cost at assignment
// (strike minus premium) must sit at least MinDiscountPct below spot.
// MaxRisk is full assignment exposure, strike times the lot size.
func (s *Scanner) CashSecuredPuts(ch *chain.Chain) []Opportunity {
	cfg := s.cfg.CashSecuredPut
	var opps []Opportunity

	for _, put := range ch.Puts {
		if put.ImpliedVolatility < cfg.MinIV {
			continue
		}
		if put.DaysToExpiry < cfg.MinDaysToExpiry || put.DaysToExpiry > cfg.MaxDaysToExpiry {
			continue
		}
		if put.Volume < cfg.MinVolume && put.OpenInterest < cfg.MinOpenInterest {
			continue
		}
		if put.Bid <= 0 {
			continue
		}
		deltaAbs := math.Abs(put.Delta)
		if deltaAbs < cfg.MinDeltaAbs || deltaAbs > cfg.MaxDeltaAbs {
			continue
		}

		effectiveCost := put.Strike - put.Bid
		discountPct := (ch.SpotPrice - effectiveCost) / ch.SpotPrice * 100
		if discountPct < cfg.MinDiscountPct {
			continue
		}

		returnPct := put.Bid / ch.SpotPrice * 100
		monthlyReturn := returnPct * 30 / float64(put.DaysToExpiry)

		score := cashSecuredPutScore(cfg, monthlyReturn, discountPct, put.ImpliedVolatility, deltaAbs)
		if score < cfg.MinScore {
			continue
		}

		credit := put.Bid * LotSize
		opps = append(opps, Opportunity{
			Strategy:   CashSecuredPut,
			Underlying: ch.Underlying,
			Score:      score,

			Code1:      put.Code,
			Kind1:      chain.Put,
			Direction1: Sell,
			Strike1:    put.Strike,
			Price1:     put.Bid,
			Quantity1:  LotSize,

			NetCredit:                   credit,
			NetDebit:                    0,
			NetResult:                   credit,
			MaxRisk:                     riskPtr(put.Strike * LotSize),
			ReturnPct:                   returnPct,
			EstimatedSuccessProbability: 100 - deltaAbs,
			Expiration:                  put.Expiration,
			DaysToExpiry:                put.DaysToExpiry,
			ImpliedVolatility:           put.ImpliedVolatility,

			MonthlyReturn: monthlyReturn,
			EffectiveCost: effectiveCost,
			DiscountPct:   discountPct,
			Delta:         put.Delta,
			SpotPrice:     ch.SpotPrice,
		})
	}

	return rank(opps, s.cfg.TopN)
}
