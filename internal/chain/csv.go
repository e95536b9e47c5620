package chain

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/unoinvest/rco-scanner/internal/logger"
	"github.com/unoinvest/rco-scanner/internal/pricing"
)

// csvProvider builds chains from local snapshot files, for offline scans and
// deterministic tests.
//
// Layout:
//   - <dir>/spots.csv            rows of "UNDERLYING,spot_price"
//   - <dir>/<UNDERLYING>.csv     one leg per row:
//     code,kind,strike,expiration,last_price,bid,ask,volume,open_interest,iv
//
// kind is CALL or PUT, expiration is 2006-01-02, iv is a percentage.
// Malformed rows are logged and skipped.
type csvProvider struct {
	dir   string
	delta pricing.DeltaModel
	now   func() time.Time
}

// NewCSVProvider constructs a file-backed provider rooted at dir.
func NewCSVProvider(dir string, delta pricing.DeltaModel) Provider {
	return &csvProvider{dir: dir, delta: delta, now: time.Now}
}

func (p *csvProvider) FetchChain(ctx context.Context, underlying string) (*Chain, error) {
	spot, err := p.loadSpot(underlying)
	if err != nil {
		return nil, NewFetchError(underlying, NoData, err)
	}

	f, err := os.Open(filepath.Join(p.dir, strings.ToUpper(underlying)+".csv"))
	if err != nil {
		return nil, NewFetchError(underlying, NoOptions, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 10

	ch := &Chain{Underlying: underlying, SpotPrice: spot}
	seen := map[string]time.Time{}
	now := p.now()
	line := 0

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logger.WithComponent("chain").WithError(err).
				Warnf("skipping malformed row %d in %s snapshot", line, underlying)
			continue
		}
		if line == 1 && strings.EqualFold(row[0], "code") {
			continue // header
		}

		leg, err := p.parseLeg(row, underlying, spot, now)
		if err != nil {
			logger.WithComponent("chain").WithError(err).
				Warnf("skipping row %d in %s snapshot", line, underlying)
			continue
		}
		if !InWindow(leg.DaysToExpiry) {
			continue
		}

		switch leg.Kind {
		case Call:
			ch.Calls = append(ch.Calls, leg)
		case Put:
			ch.Puts = append(ch.Puts, leg)
		}
		seen[leg.Expiration.Format("2006-01-02")] = leg.Expiration
	}

	if len(seen) == 0 {
		return nil, NewFetchError(underlying, NoExpirations, nil)
	}

	for _, d := range seen {
		ch.Expirations = append(ch.Expirations, d)
	}
	sort.Slice(ch.Expirations, func(i, j int) bool { return ch.Expirations[i].Before(ch.Expirations[j]) })

	return ch, nil
}

func (p *csvProvider) parseLeg(row []string, underlying string, spot float64, now time.Time) (OptionLeg, error) {
	code := strings.TrimSpace(row[0])
	if code == "" {
		return OptionLeg{}, fmt.Errorf("missing contract code")
	}

	var kind Kind
	switch strings.ToUpper(strings.TrimSpace(row[1])) {
	case "CALL":
		kind = Call
	case "PUT":
		kind = Put
	default:
		return OptionLeg{}, fmt.Errorf("unknown kind %q", row[1])
	}

	strike, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return OptionLeg{}, fmt.Errorf("strike: %w", err)
	}
	expiration, err := time.Parse("2006-01-02", strings.TrimSpace(row[3]))
	if err != nil {
		return OptionLeg{}, fmt.Errorf("expiration: %w", err)
	}

	floats := make([]float64, 3)
	for i, idx := range []int{4, 5, 6} {
		floats[i], err = strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil {
			return OptionLeg{}, fmt.Errorf("column %d: %w", idx, err)
		}
	}
	volume, err := strconv.ParseInt(strings.TrimSpace(row[7]), 10, 64)
	if err != nil {
		return OptionLeg{}, fmt.Errorf("volume: %w", err)
	}
	oi, err := strconv.ParseInt(strings.TrimSpace(row[8]), 10, 64)
	if err != nil {
		return OptionLeg{}, fmt.Errorf("open interest: %w", err)
	}
	iv, err := strconv.ParseFloat(strings.TrimSpace(row[9]), 64)
	if err != nil {
		return OptionLeg{}, fmt.Errorf("iv: %w", err)
	}

	days := DaysUntil(expiration, now)

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
		LastPrice:           floats[0],
		Bid:                 floats[1],
		Ask:                 floats[2],
		Volume:              volume,
		OpenInterest:        oi,
		ImpliedVolatility:   iv,
		InTheMoney:          itm,
		DistanceFromSpotPct: distPct,
		Delta:               p.delta.Delta(kind == Call, spot, strike, days, iv),
	}, nil
}

// loadSpot reads the per-underlying spot price table.
func (p *csvProvider) loadSpot(underlying string) (float64, error) {
	f, err := os.Open(filepath.Join(p.dir, "spots.csv"))
	if err != nil {
		return 0, fmt.Errorf("open spots file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("read spots file: %w", err)
	}

	for _, row := range records {
		if len(row) < 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(row[0]), underlying) {
			spot, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
			if err != nil {
				return 0, fmt.Errorf("spot for %s: %w", underlying, err)
			}
			if spot <= 0 {
				return 0, fmt.Errorf("non-positive spot for %s", underlying)
			}
			return spot, nil
		}
	}

	return 0, fmt.Errorf("no spot entry for %s", underlying)
}
