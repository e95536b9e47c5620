package testutil

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/unoinvest/rco-scanner/internal/chain"
	"github.com/unoinvest/rco-scanner/internal/pricing"
)

var Update = flag.Bool(
	"update",
	false,
	"update golden files",
)

//
// --- Chain builders ---
//

// LegSpec is the adjustable subset of OptionLeg used to build test chains;
// derived fields (delta, ITM, distance) are computed the same way providers
// compute them.
type LegSpec struct {
	Code         string
	Strike       float64
	Bid          float64
	Ask          float64
	LastPrice    float64
	Volume       int64
	OpenInterest int64
	IV           float64
	DaysToExpiry int
}

// BuildLeg materializes a LegSpec against a spot price.
func BuildLeg(kind chain.Kind, underlying string, spot float64, spec LegSpec) chain.OptionLeg {
	expiration := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	var itm bool
	var distPct float64
	if kind == chain.Call {
		itm = spot > spec.Strike
		distPct = (spec.Strike - spot) / spot * 100
	} else {
		itm = spot < spec.Strike
		distPct = (spot - spec.Strike) / spot * 100
	}

	return chain.OptionLeg{
		Code:                spec.Code,
		Kind:                kind,
		Underlying:          underlying,
		Strike:              spec.Strike,
		Expiration:          expiration,
		DaysToExpiry:        spec.DaysToExpiry,
		LastPrice:           spec.LastPrice,
		Bid:                 spec.Bid,
		Ask:                 spec.Ask,
		Volume:              spec.Volume,
		OpenInterest:        spec.OpenInterest,
		ImpliedVolatility:   spec.IV,
		InTheMoney:          itm,
		DistanceFromSpotPct: distPct,
		Delta:               pricing.LinearDelta{}.Delta(kind == chain.Call, spot, spec.Strike, spec.DaysToExpiry, spec.IV),
	}
}

// BuildChain assembles a chain snapshot from leg specs.
func BuildChain(underlying string, spot float64, calls, puts []LegSpec) *chain.Chain {
	ch := &chain.Chain{Underlying: underlying, SpotPrice: spot}
	seen := map[time.Time]bool{}

	for _, spec := range calls {
		leg := BuildLeg(chain.Call, underlying, spot, spec)
		ch.Calls = append(ch.Calls, leg)
		seen[leg.Expiration] = true
	}
	for _, spec := range puts {
		leg := BuildLeg(chain.Put, underlying, spot, spec)
		ch.Puts = append(ch.Puts, leg)
		seen[leg.Expiration] = true
	}
	for d := range seen {
		ch.Expirations = append(ch.Expirations, d)
	}
	return ch
}

//
// --- Golden file helpers ---
//

func writeGolden(t *testing.T, name string, v any) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		t.Fatalf("failed to write golden file: %v", err)
	}
}

func loadGolden(t *testing.T, name string) []byte {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file: %v", err)
	}
	return b
}

func CompareWithGolden(t *testing.T, name string, v any) {
	t.Helper()

	actual, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal actual JSON: %v", err)
	}

	if *Update {
		writeGolden(t, name, v)
		return
	}

	expected := loadGolden(t, name)

	if !bytes.Equal(expected, actual) {
		t.Fatalf("golden mismatch for %s\nexpected:\n%s\nactual:\n%s",
			name, string(expected), string(actual))
	}
}
