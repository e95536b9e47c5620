// Yahoo Finance backed Provider.
//
// B3 listings trade on Yahoo under the ".SA" suffix (PETR4.SA); option
// contract symbols come back with the same suffix and are stripped so the
// rest of the system sees plain exchange codes (PETRC402).
//
// Design notes:
//   - One request resolves spot price and the expiration calendar, then one
//     request per retained expiration fetches both leg lists.
//   - Requests go through a shared rate limiter; Yahoo throttles aggressively.
//   - A failed expiration request is logged and skipped, the rest continue.
package chain

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/unoinvest/rco-scanner/internal/logger"
	"github.com/unoinvest/rco-scanner/internal/pricing"
)

const (
	defaultYahooBaseURL = "https://query2.finance.yahoo.com"
	yahooSuffix         = ".SA"
)

// yahooQuote is the quote block embedded in the option chain response.
type yahooQuote struct {
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	Symbol             string  `json:"symbol"`
}

// yahooContract is a single leg as returned by Yahoo.
type yahooContract struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            int64   `json:"volume"`
	OpenInterest      int64   `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"` // fraction, e.g. 0.35
}

// yahooOptionsResp models the /v7/finance/options payload.
type yahooOptionsResp struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string     `json:"underlyingSymbol"`
			ExpirationDates  []int64    `json:"expirationDates"` // epoch seconds
			Quote            yahooQuote `json:"quote"`
			Options          []struct {
				ExpirationDate int64           `json:"expirationDate"`
				Calls          []yahooContract `json:"calls"`
				Puts           []yahooContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"optionChain"`
}

// YahooProvider fetches B3 option chains from Yahoo Finance.
type YahooProvider struct {
	// BaseURL is the API root; overridable for tests.
	BaseURL string

	client  *resty.Client
	limiter *rate.Limiter
	delta   pricing.DeltaModel
	now     func() time.Time
}

// NewYahooProvider constructs the provider with sensible HTTP defaults and
// the given delta model (LinearDelta in production).
func NewYahooProvider(delta pricing.DeltaModel) *YahooProvider {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "rco-scanner/1.0").
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err == nil && r.StatusCode() == http.StatusTooManyRequests
		})

	return &YahooProvider{
		BaseURL: defaultYahooBaseURL,
		client:  client,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		delta:   delta,
		now:     time.Now,
	}
}

// FetchChain implements Provider.
func (p *YahooProvider) FetchChain(ctx context.Context, underlying string) (*Chain, error) {
	symbol := yahooSymbol(underlying)
	now := p.now()

	logger.WithComponent("chain").Debugf("fetching option calendar for %s", symbol)

	root, err := p.getOptions(ctx, symbol, 0)
	if err != nil {
		return nil, NewFetchError(underlying, ProviderError, err)
	}
	if len(root.OptionChain.Result) == 0 {
		return nil, NewFetchError(underlying, NoData, nil)
	}

	result := root.OptionChain.Result[0]
	spot := result.Quote.RegularMarketPrice
	if spot <= 0 {
		return nil, NewFetchError(underlying, NoData, nil)
	}
	if len(result.ExpirationDates) == 0 {
		return nil, NewFetchError(underlying, NoOptions, nil)
	}

	// Window filter happens before any per-expiration request is issued.
	type expiry struct {
		epoch int64
		date  time.Time
		days  int
	}
	var retained []expiry
	for _, epoch := range result.ExpirationDates {
		date := time.Unix(epoch, 0).UTC()
		days := DaysUntil(date, now)
		if InWindow(days) {
			retained = append(retained, expiry{epoch: epoch, date: date, days: days})
		}
	}
	if len(retained) == 0 {
		return nil, NewFetchError(underlying, NoExpirations, nil)
	}

	ch := &Chain{Underlying: underlying, SpotPrice: spot}

	for _, exp := range retained {
		resp, err := p.getOptions(ctx, symbol, exp.epoch)
		if err != nil {
			// Partial success is acceptable: skip this expiration, keep going.
			logger.WithComponent("chain").WithError(err).
				Warnf("skipping expiration %s for %s", exp.date.Format("2006-01-02"), underlying)
			continue
		}
		if len(resp.OptionChain.Result) == 0 || len(resp.OptionChain.Result[0].Options) == 0 {
			logger.WithComponent("chain").
				Warnf("empty chain for %s expiry %s", underlying, exp.date.Format("2006-01-02"))
			continue
		}

		legs := resp.OptionChain.Result[0].Options[0]
		for _, c := range legs.Calls {
			if leg, ok := p.buildLeg(Call, c, underlying, spot, exp.date, exp.days); ok {
				ch.Calls = append(ch.Calls, leg)
			}
		}
		for _, put := range legs.Puts {
			if leg, ok := p.buildLeg(Put, put, underlying, spot, exp.date, exp.days); ok {
				ch.Puts = append(ch.Puts, leg)
			}
		}
		ch.Expirations = append(ch.Expirations, exp.date)
	}

	logger.WithComponent("chain").WithFields(logger.Fields{
		"underlying":  underlying,
		"spot":        spot,
		"expirations": len(ch.Expirations),
		"calls":       len(ch.Calls),
		"puts":        len(ch.Puts),
	}).Info("chain fetched")

	return ch, nil
}

// getOptions issues one options request. epoch zero fetches the calendar
// plus the front expiration; non-zero fetches a specific expiration.
func (p *YahooProvider) getOptions(ctx context.Context, symbol string, epoch int64) (*yahooOptionsResp, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var out yahooOptionsResp
	req := p.client.R().
		SetContext(ctx).
		SetResult(&out)
	if epoch > 0 {
		req.SetQueryParam("date", strconv.FormatInt(epoch, 10))
	}

	resp, err := req.Get(p.BaseURL + "/v7/finance/options/" + symbol)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned status %d", resp.StatusCode())
	}
	if out.OptionChain.Error != nil {
		return nil, fmt.Errorf("yahoo error %s: %s",
			out.OptionChain.Error.Code, out.OptionChain.Error.Description)
	}
	return &out, nil
}

// buildLeg converts one Yahoo contract into an OptionLeg. Contracts without
// a usable symbol are excluded.
func (p *YahooProvider) buildLeg(kind Kind, c yahooContract, underlying string, spot float64, expiration time.Time, days int) (OptionLeg, bool) {
	code := strings.TrimSuffix(strings.TrimSpace(c.ContractSymbol), yahooSuffix)
	if code == "" {
		return OptionLeg{}, false
	}

	ivPct := c.ImpliedVolatility * 100

	var itm bool
	var distPct float64
	if kind == Call {
		itm = spot > c.Strike
		distPct = (c.Strike - spot) / spot * 100
	} else {
		itm = spot < c.Strike
		distPct = (spot - c.Strike) / spot * 100
	}

	return OptionLeg{
		Code:                code,
		Kind:                kind,
		Underlying:          underlying,
		Strike:              c.Strike,
		Expiration:          expiration,
		DaysToExpiry:        days,
		LastPrice:           c.LastPrice,
		Bid:                 c.Bid,
		Ask:                 c.Ask,
		Volume:              c.Volume,
		OpenInterest:        c.OpenInterest,
		ImpliedVolatility:   ivPct,
		InTheMoney:          itm,
		DistanceFromSpotPct: distPct,
		Delta:               p.delta.Delta(kind == Call, spot, c.Strike, days, ivPct),
	}, true
}

// yahooSymbol appends the B3 suffix unless the caller already qualified it.
func yahooSymbol(underlying string) string {
	if strings.Contains(underlying, ".") {
		return underlying
	}
	return underlying + yahooSuffix
}
