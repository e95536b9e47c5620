package scanner

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/unoinvest/rco-scanner/internal/chain"
)

// BullPutSpreads identifies "trava de alta" setups: sell a put and buy a
// lower-strike put on the same expiration for a net credit with bounded risk.
//
// Put legs first pass a stricter liquidity gate than the single-leg
// strategies and must carry a live bid (a zero bid means no quote, which
// disqualifies the leg on either side of the pair). Survivors are grouped by
// expiration; inside each group legs are sorted by strike descending and
// every (sell, buy) pair with a strictly lower buy strike is examined. The
// search is O(n²) per group, which is fine at chain depth.
//
// Strike and premium arithmetic runs on decimals: the strike spread must
// land inside an inclusive window measured in exchange ticks, and float
// subtraction misclassifies pairs sitting exactly on the window boundary.
func (s *Scanner) BullPutSpreads(ch *chain.Chain) []Opportunity {
	cfg := s.cfg.BullPutSpread

	minSpread := decimal.NewFromFloat(cfg.MinStrikeSpread)
	maxSpread := decimal.NewFromFloat(cfg.MaxStrikeSpread)

	// Group eligible legs by expiration, preserving first-appearance order
	// so repeated scans of one snapshot yield identical output.
	groups := map[time.Time][]chain.OptionLeg{}
	var order []time.Time
	for _, put := range ch.Puts {
		if put.ImpliedVolatility < cfg.MinIV {
			continue
		}
		if put.Volume < cfg.MinVolume && put.OpenInterest < cfg.MinOpenInterest {
			continue
		}
		if put.Bid <= 0 {
			continue
		}
		if _, ok := groups[put.Expiration]; !ok {
			order = append(order, put.Expiration)
		}
		groups[put.Expiration] = append(groups[put.Expiration], put)
	}

	var opps []Opportunity

	for _, expiration := range order {
		legs := groups[expiration]
		sort.SliceStable(legs, func(i, j int) bool { return legs[i].Strike > legs[j].Strike })

		for i, sell := range legs {
			for _, buy := range legs[i+1:] {
				spread := decimal.NewFromFloat(sell.Strike).Sub(decimal.NewFromFloat(buy.Strike))
				if spread.LessThan(minSpread) || spread.GreaterThan(maxSpread) {
					continue
				}

				credit := decimal.NewFromFloat(sell.Bid).Sub(decimal.NewFromFloat(buy.Ask))
				if credit.Sign() <= 0 {
					continue
				}
				maxLoss := spread.Sub(credit)
				if maxLoss.Sign() <= 0 {
					continue
				}

				riskReward := credit.Div(maxLoss).InexactFloat64()
				if riskReward < cfg.MinRiskReward {
					continue
				}
				returnPct := riskReward * 100

				// The score is driven by the sold leg's IV; the pair mean is
				// only reported on the setup.
				aggIV := (sell.ImpliedVolatility + buy.ImpliedVolatility) / 2
				score := bullPutSpreadScore(cfg, riskReward, returnPct, sell.ImpliedVolatility)
				if score < cfg.MinScore {
					continue
				}

				netCredit := credit.Mul(decimal.NewFromInt(LotSize)).InexactFloat64()
				maxRisk := maxLoss.Mul(decimal.NewFromInt(LotSize)).InexactFloat64()

				opps = append(opps, Opportunity{
					Strategy:   BullPutSpread,
					Underlying: ch.Underlying,
					Score:      score,

					Code1:      sell.Code,
					Kind1:      chain.Put,
					Direction1: Sell,
					Strike1:    sell.Strike,
					Price1:     sell.Bid,
					Quantity1:  LotSize,

					Code2:      buy.Code,
					Kind2:      chain.Put,
					Direction2: Buy,
					Strike2:    buy.Strike,
					Price2:     buy.Ask,
					Quantity2:  LotSize,

					NetCredit:                   netCredit,
					NetDebit:                    buy.Ask * LotSize,
					NetResult:                   netCredit,
					MaxRisk:                     riskPtr(maxRisk),
					ReturnPct:                   returnPct,
					EstimatedSuccessProbability: cfg.SuccessProbability,
					Expiration:                  expiration,
					DaysToExpiry:                sell.DaysToExpiry,
					ImpliedVolatility:           aggIV,

					RiskReward:   riskReward,
					StrikeSpread: spread.InexactFloat64(),
					Delta:        sell.Delta,
					SpotPrice:    ch.SpotPrice,
				})
			}
		}
	}

	return rank(opps, s.cfg.TopN)
}
