package scanner

// The filter thresholds and scoring weights below encode the RCO trading
// methodology. They are configuration, not control flow: tuning any of them
// must never require touching identifier logic. Defaults follow the
// methodology's published numbers.

// Config gathers every tunable of the three setup identifiers.
type Config struct {
	// TopN caps each identifier's ranked output.
	TopN int `yaml:"top_n" validate:"gt=0"`
	// MaxConcurrency bounds the per-symbol fan-out in ScanAll. Each
	// symbol's scan is fully independent, so any value >= 1 is safe.
	MaxConcurrency int `yaml:"max_concurrency" validate:"gt=0"`

	CoveredCall    CoveredCallConfig    `yaml:"covered_call"`
	CashSecuredPut CashSecuredPutConfig `yaml:"cash_secured_put"`
	BullPutSpread  BullPutSpreadConfig  `yaml:"bull_put_spread"`
}

// CoveredCallConfig tunes the covered-call identifier.
type CoveredCallConfig struct {
	MinIV           float64 `yaml:"min_iv"`
	MinDaysToExpiry int     `yaml:"min_days_to_expiry"`
	MaxDaysToExpiry int     `yaml:"max_days_to_expiry"`
	MinVolume       int64   `yaml:"min_volume"`
	MinOpenInterest int64   `yaml:"min_open_interest"`
	MinDeltaAbs     float64 `yaml:"min_delta_abs"` // inclusive
	MaxDeltaAbs     float64 `yaml:"max_delta_abs"` // inclusive
	MinScore        int     `yaml:"min_score" validate:"gte=0,lte=100"`

	// Scoring components (points pre-clamped to their max before summing).
	MonthlyReturnFactor float64 `yaml:"monthly_return_factor"`
	MonthlyReturnMax    float64 `yaml:"monthly_return_max"`
	IVDivisor           float64 `yaml:"iv_divisor" validate:"gt=0"`
	IVMax               float64 `yaml:"iv_max"`
	DeltaTarget         float64 `yaml:"delta_target"`
	DeltaProximityMax   float64 `yaml:"delta_proximity_max"`
	HighLiquidityVolume int64   `yaml:"high_liquidity_volume"`
	HighLiquidityOI     int64   `yaml:"high_liquidity_oi"`
	HighLiquidityPoints float64 `yaml:"high_liquidity_points"`
	MidLiquidityVolume  int64   `yaml:"mid_liquidity_volume"`
	MidLiquidityOI      int64   `yaml:"mid_liquidity_oi"`
	MidLiquidityPoints  float64 `yaml:"mid_liquidity_points"`
}

// CashSecuredPutConfig tunes the cash-secured-put identifier.
type CashSecuredPutConfig struct {
	MinIV           float64 `yaml:"min_iv"`
	MinDaysToExpiry int     `yaml:"min_days_to_expiry"`
	MaxDaysToExpiry int     `yaml:"max_days_to_expiry"`
	MinVolume       int64   `yaml:"min_volume"`
	MinOpenInterest int64   `yaml:"min_open_interest"`
	MinDeltaAbs     float64 `yaml:"min_delta_abs"` // inclusive
	MaxDeltaAbs     float64 `yaml:"max_delta_abs"` // inclusive
	MinDiscountPct  float64 `yaml:"min_discount_pct"`
	MinScore        int     `yaml:"min_score" validate:"gte=0,lte=100"`

	MonthlyReturnFactor float64 `yaml:"monthly_return_factor"`
	MonthlyReturnMax    float64 `yaml:"monthly_return_max"`
	DiscountFactor      float64 `yaml:"discount_factor"`
	DiscountMax         float64 `yaml:"discount_max"`
	IVDivisor           float64 `yaml:"iv_divisor" validate:"gt=0"`
	IVMax               float64 `yaml:"iv_max"`
	DeltaTarget         float64 `yaml:"delta_target"`
	DeltaProximityMax   float64 `yaml:"delta_proximity_max"`
}

// BullPutSpreadConfig tunes the bull-put-spread ("trava de alta") identifier.
type BullPutSpreadConfig struct {
	MinIV           float64 `yaml:"min_iv"`
	MinVolume       int64   `yaml:"min_volume"`
	MinOpenInterest int64   `yaml:"min_open_interest"`
	MinStrikeSpread float64 `yaml:"min_strike_spread"` // inclusive, in currency
	MaxStrikeSpread float64 `yaml:"max_strike_spread"` // inclusive, in currency
	MinRiskReward   float64 `yaml:"min_risk_reward"`
	MinScore        int     `yaml:"min_score" validate:"gte=0,lte=100"`
	// SuccessProbability is a documented methodology constant, not derived
	// from market data.
	SuccessProbability float64 `yaml:"success_probability"`

	RiskRewardFactor    float64 `yaml:"risk_reward_factor"`
	RiskRewardMax       float64 `yaml:"risk_reward_max"`
	ReturnMax           float64 `yaml:"return_max"`
	IVDivisor           float64 `yaml:"iv_divisor" validate:"gt=0"`
	IVMax               float64 `yaml:"iv_max"`
	RiskRewardBonusMin  float64 `yaml:"risk_reward_bonus_min"`
	RiskRewardBonusPts  float64 `yaml:"risk_reward_bonus_points"`
}

// DefaultConfig returns the RCO methodology defaults.
func DefaultConfig() Config {
	return Config{
		TopN:           5,
		MaxConcurrency: 2,
		CoveredCall: CoveredCallConfig{
			MinIV:           30,
			MinDaysToExpiry: 30,
			MaxDaysToExpiry: 60,
			MinVolume:       10,
			MinOpenInterest: 50,
			MinDeltaAbs:     20,
			MaxDeltaAbs:     40,
			MinScore:        60,

			MonthlyReturnFactor: 10,
			MonthlyReturnMax:    40,
			IVDivisor:           2,
			IVMax:               20,
			DeltaTarget:         30,
			DeltaProximityMax:   20,
			HighLiquidityVolume: 100,
			HighLiquidityOI:     500,
			HighLiquidityPoints: 20,
			MidLiquidityVolume:  50,
			MidLiquidityOI:      200,
			MidLiquidityPoints:  10,
		},
		CashSecuredPut: CashSecuredPutConfig{
			MinIV:           30,
			MinDaysToExpiry: 30,
			MaxDaysToExpiry: 60,
			MinVolume:       10,
			MinOpenInterest: 50,
			MinDeltaAbs:     25,
			MaxDeltaAbs:     40,
			MinDiscountPct:  3,
			MinScore:        60,

			MonthlyReturnFactor: 8,
			MonthlyReturnMax:    30,
			DiscountFactor:      3,
			DiscountMax:         30,
			IVDivisor:           2,
			IVMax:               20,
			DeltaTarget:         35,
			DeltaProximityMax:   20,
		},
		BullPutSpread: BullPutSpreadConfig{
			MinIV:              30,
			MinVolume:          50,
			MinOpenInterest:    100,
			MinStrikeSpread:    0.5,
			MaxStrikeSpread:    1.0,
			MinRiskReward:      0.25,
			MinScore:           60,
			SuccessProbability: 65,

			RiskRewardFactor:   100,
			RiskRewardMax:      40,
			ReturnMax:          30,
			IVDivisor:          2,
			IVMax:              20,
			RiskRewardBonusMin: 0.33,
			RiskRewardBonusPts: 10,
		},
	}
}
