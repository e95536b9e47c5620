package scanner

import (
	"sort"
	"time"

	"github.com/unoinvest/rco-scanner/internal/chain"
)

// Strategy identifies the setup variant an opportunity belongs to.
type Strategy string

const (
	CoveredCall    Strategy = "COVERED_CALL"
	CashSecuredPut Strategy = "CASH_SECURED_PUT"
	BullPutSpread  Strategy = "BULL_PUT_SPREAD"
)

// Direction is the side taken on a leg.
type Direction string

const (
	Sell Direction = "SELL"
	Buy  Direction = "BUY"
)

// LotSize is the standard B3 options lot; every leg trades one lot.
const LotSize = 100

// Opportunity is a scored, fully-specified tradeable setup.
//
// The JSON field names are the contract with the persistence and
// notification layers; money fields are per-lot amounts. MaxRisk is nil for
// covered calls, whose risk is the unbounded downside of holding the stock.
// Produced per scan, ranked, truncated; never stored by the core.
type Opportunity struct {
	Strategy   Strategy `json:"strategy"`
	Underlying string   `json:"underlying"`
	Score      int      `json:"score"`

	Code1      string     `json:"code_1"`
	Kind1      chain.Kind `json:"kind_1"`
	Direction1 Direction  `json:"direction_1"`
	Strike1    float64    `json:"strike_1"`
	Price1     float64    `json:"price_1"`
	Quantity1  int        `json:"quantity_1"`

	// Leg 2 is present only for BULL_PUT_SPREAD.
	Code2      string     `json:"code_2,omitempty"`
	Kind2      chain.Kind `json:"kind_2,omitempty"`
	Direction2 Direction  `json:"direction_2,omitempty"`
	Strike2    float64    `json:"strike_2,omitempty"`
	Price2     float64    `json:"price_2,omitempty"`
	Quantity2  int        `json:"quantity_2,omitempty"`

	NetCredit                   float64   `json:"net_credit"`
	NetDebit                    float64   `json:"net_debit"`
	NetResult                   float64   `json:"net_result"`
	MaxRisk                     *float64  `json:"max_risk"`
	ReturnPct                   float64   `json:"return_pct"`
	EstimatedSuccessProbability float64   `json:"estimated_success_probability"`
	Expiration                  time.Time `json:"expiration"`
	DaysToExpiry                int       `json:"days_to_expiry"`
	ImpliedVolatility           float64   `json:"implied_volatility"`

	// Strategy-specific diagnostics.
	MonthlyReturn float64 `json:"monthly_return,omitempty"`
	EffectiveCost float64 `json:"effective_cost,omitempty"`
	DiscountPct   float64 `json:"discount_pct,omitempty"`
	RiskReward    float64 `json:"risk_reward,omitempty"`
	StrikeSpread  float64 `json:"strike_spread,omitempty"`
	Delta         float64 `json:"delta,omitempty"`
	SpotPrice     float64 `json:"spot_price,omitempty"`
}

// rank sorts opportunities by score descending and truncates to topN.
// The sort is stable: equal scores keep their identification order, which
// follows provider response order and carries no meaning.
func rank(opps []Opportunity, topN int) []Opportunity {
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Score > opps[j].Score
	})
	if len(opps) > topN {
		opps = opps[:topN]
	}
	return opps
}

func riskPtr(v float64) *float64 { return &v }
