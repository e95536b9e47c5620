package chain

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/unoinvest/rco-scanner/internal/pricing"
)

// syntheticProvider generates a plausible random chain so the scanner can be
// exercised without network access or snapshot files.
type syntheticProvider struct {
	delta pricing.DeltaModel
	seed  int64
	now   func() time.Time
}

// NewSyntheticProvider constructs a deterministic synthetic provider; the
// same seed always yields the same chains.
func NewSyntheticProvider(delta pricing.DeltaModel, seed int64) Provider {
	return &syntheticProvider{delta: delta, seed: seed, now: time.Now}
}

func (p *syntheticProvider) FetchChain(ctx context.Context, underlying string) (*Chain, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewFetchError(underlying, ProviderError, err)
	}

	// Seed mixes in the symbol so different underlyings get different chains.
	var sym int64
	for _, r := range underlying {
		sym = sym*31 + int64(r)
	}
	rng := rand.New(rand.NewSource(p.seed ^ sym))

	spot := 20.0 + rng.Float64()*40.0
	now := p.now()

	ch := &Chain{Underlying: underlying, SpotPrice: spot}

	root := underlying
	if len(root) > 4 {
		root = root[:4]
	}

	for i, days := range []int{32, 46, 74} {
		expiration := now.AddDate(0, 0, days)
		ch.Expirations = append(ch.Expirations, expiration)

		// Strikes on the 0.50 grid around spot, roughly ±15%.
		low := math.Floor(spot*0.85*2) / 2
		high := math.Ceil(spot*1.15*2) / 2
		series := 'A' + rune(i)

		n := 0
		for strike := low; strike <= high; strike += 0.50 {
			n++
			iv := 28.0 + rng.Float64()*20.0
			timeValue := spot * iv / 100 * math.Sqrt(float64(days)/365.0) * 0.4

			callMid := math.Max(spot-strike, 0) + timeValue
			putMid := math.Max(strike-spot, 0) + timeValue
			spreadHalf := 0.02 + rng.Float64()*0.05

			ch.Calls = append(ch.Calls, p.leg(Call,
				fmt.Sprintf("%s%c%d", root, series, n),
				underlying, spot, strike, expiration, days, callMid, spreadHalf, iv, rng))
			ch.Puts = append(ch.Puts, p.leg(Put,
				fmt.Sprintf("%s%c%d", root, series+'M'-'A', n),
				underlying, spot, strike, expiration, days, putMid, spreadHalf, iv, rng))
		}
	}

	return ch, nil
}

func (p *syntheticProvider) leg(kind Kind, code, underlying string, spot, strike float64, expiration time.Time, days int, mid, spreadHalf, iv float64, rng *rand.Rand) OptionLeg {
	bid := math.Max(math.Round((mid-spreadHalf)*100)/100, 0)
	ask := math.Round((mid+spreadHalf)*100) / 100

	var itm bool
	var distPct float64
	if kind == Call {
		itm = spot > strike
		distPct = (strike - spot) / spot * 100
	} else {
		itm = spot < strike
		distPct = (spot - strike) / spot * 100
	}

	return OptionLeg{
		Code:                code,
		Kind:                kind,
		Underlying:          underlying,
		Strike:              strike,
		Expiration:          expiration,
		DaysToExpiry:        days,
		LastPrice:           math.Round(mid*100) / 100,
		Bid:                 bid,
		Ask:                 ask,
		Volume:              int64(rng.Intn(500)),
		OpenInterest:        int64(rng.Intn(2000)),
		ImpliedVolatility:   iv,
		InTheMoney:          itm,
		DistanceFromSpotPct: distPct,
		Delta:               p.delta.Delta(kind == Call, spot, strike, days, iv),
	}
}
