package scanner

import "math"

// All scorers share the same construction: each component is clamped to its
// own maximum, the components are summed, and the total is floored to an
// integer capped at 100.

func coveredCallScore(cfg CoveredCallConfig, monthlyReturn, iv, deltaAbs float64, volume, openInterest int64) int {
	score := math.Min(monthlyReturn*cfg.MonthlyReturnFactor, cfg.MonthlyReturnMax)
	score += math.Min(iv/cfg.IVDivisor, cfg.IVMax)
	score += math.Max(0, cfg.DeltaProximityMax-math.Abs(deltaAbs-cfg.DeltaTarget))

	switch {
	case volume > cfg.HighLiquidityVolume || openInterest > cfg.HighLiquidityOI:
		score += cfg.HighLiquidityPoints
	case volume > cfg.MidLiquidityVolume || openInterest > cfg.MidLiquidityOI:
		score += cfg.MidLiquidityPoints
	}

	return clampScore(score)
}

func cashSecuredPutScore(cfg CashSecuredPutConfig, monthlyReturn, discountPct, iv, deltaAbs float64) int {
	score := math.Min(monthlyReturn*cfg.MonthlyReturnFactor, cfg.MonthlyReturnMax)
	score += math.Min(discountPct*cfg.DiscountFactor, cfg.DiscountMax)
	score += math.Min(iv/cfg.IVDivisor, cfg.IVMax)
	score += math.Max(0, cfg.DeltaProximityMax-math.Abs(deltaAbs-cfg.DeltaTarget))

	return clampScore(score)
}

func bullPutSpreadScore(cfg BullPutSpreadConfig, riskReward, returnPct, iv float64) int {
	score := math.Min(riskReward*cfg.RiskRewardFactor, cfg.RiskRewardMax)
	score += math.Min(returnPct, cfg.ReturnMax)
	score += math.Min(iv/cfg.IVDivisor, cfg.IVMax)
	if riskReward >= cfg.RiskRewardBonusMin {
		score += cfg.RiskRewardBonusPts
	}

	return clampScore(score)
}

// clampScore floors the component sum and keeps it inside [0, 100].
func clampScore(score float64) int {
	s := int(math.Floor(score))
	if s > 100 {
		return 100
	}
	if s < 0 {
		return 0
	}
	return s
}
