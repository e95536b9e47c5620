package scanner

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/unoinvest/rco-scanner/internal/testutil"
)

func spreadPut(code string, strike, bid, ask float64) testutil.LegSpec {
	return testutil.LegSpec{
		Code:         code,
		Strike:       strike,
		Bid:          bid,
		Ask:          ask,
		LastPrice:    (bid + ask) / 2,
		Volume:       80,
		OpenInterest: 150,
		IV:           40,
		DaysToExpiry: 45,
	}
}

func TestBullPutSpreadsQualifyingPair(t *testing.T) {
	puts := []testutil.LegSpec{
		spreadPut("PETRP402", 40.20, 1.28, 1.40),
		spreadPut("PETRP397", 39.70, 1.05, 1.18),
	}
	ch := testutil.BuildChain("PETR4", 40.0, nil, puts)

	opps := newTestScanner().BullPutSpreads(ch)
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}

	op := opps[0]
	if op.Strategy != BullPutSpread {
		t.Errorf("strategy = %s, want BULL_PUT_SPREAD", op.Strategy)
	}
	if op.Code1 != "PETRP402" || op.Direction1 != Sell || op.Price1 != 1.28 {
		t.Errorf("sell leg = %s %s @ %.2f", op.Code1, op.Direction1, op.Price1)
	}
	if op.Code2 != "PETRP397" || op.Direction2 != Buy || op.Price2 != 1.18 {
		t.Errorf("buy leg = %s %s @ %.2f", op.Code2, op.Direction2, op.Price2)
	}
	if op.StrikeSpread != 0.5 {
		t.Errorf("strike spread = %v, want exactly 0.5", op.StrikeSpread)
	}
	if op.RiskReward != 0.25 {
		t.Errorf("risk reward = %v, want exactly 0.25", op.RiskReward)
	}
	// rr 0.25 -> 25, return 25 -> 25, iv 40 -> 20, no bonus below 0.33
	if op.Score != 70 {
		t.Errorf("score = %d, want 70", op.Score)
	}
	if op.NetCredit != 10.0 || op.NetResult != 10.0 {
		t.Errorf("net credit/result = %.2f/%.2f, want 10/10", op.NetCredit, op.NetResult)
	}
	if op.NetDebit != 118.0 {
		t.Errorf("net debit = %.2f, want 118", op.NetDebit)
	}
	if op.MaxRisk == nil || *op.MaxRisk != 40.0 {
		t.Errorf("max risk = %v, want 40", op.MaxRisk)
	}
	if op.ReturnPct != 25.0 {
		t.Errorf("return = %v, want 25", op.ReturnPct)
	}
	if op.EstimatedSuccessProbability != 65.0 {
		t.Errorf("success probability = %v, want the 65 constant", op.EstimatedSuccessProbability)
	}
}

func TestBullPutSpreadsWidestSpreadInclusive(t *testing.T) {
	puts := []testutil.LegSpec{
		spreadPut("PETRP407", 40.70, 1.48, 1.60),
		spreadPut("PETRP397", 39.70, 1.05, 1.18),
	}
	ch := testutil.BuildChain("PETR4", 40.0, nil, puts)

	opps := newTestScanner().BullPutSpreads(ch)
	if len(opps) != 1 {
		t.Fatalf("expected inclusion at 1.00 spread, got %d opportunities", len(opps))
	}
	if opps[0].StrikeSpread != 1.0 {
		t.Errorf("strike spread = %v, want exactly 1.0", opps[0].StrikeSpread)
	}
	// credit 0.30 on 0.70 loss clears the 0.33 bonus threshold
	if opps[0].Score != 100 {
		t.Errorf("score = %d, want 100", opps[0].Score)
	}
}

func TestBullPutSpreadsScoreUsesSellLegIV(t *testing.T) {
	sell := spreadPut("PETRP402", 40.20, 1.28, 1.40)
	sell.IV = 30
	buy := spreadPut("PETRP397", 39.70, 1.05, 1.18)
	buy.IV = 50
	ch := testutil.BuildChain("PETR4", 40.0, nil, []testutil.LegSpec{sell, buy})

	opps := newTestScanner().BullPutSpreads(ch)
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	// rr 0.25 -> 25, return 25 -> 25, sell-leg iv 30 -> 15. A score built on
	// the 40 pair mean would come out 70.
	if opps[0].Score != 65 {
		t.Errorf("score = %d, want 65 (sold leg's iv)", opps[0].Score)
	}
	// The reported volatility is still the pair mean.
	if opps[0].ImpliedVolatility != 40.0 {
		t.Errorf("implied volatility = %v, want pair mean 40", opps[0].ImpliedVolatility)
	}
}

func TestBullPutSpreadsFilters(t *testing.T) {
	tests := []struct {
		name string
		puts []testutil.LegSpec
	}{
		{"spread too narrow", []testutil.LegSpec{
			spreadPut("PETRP400", 40.00, 1.28, 1.40),
			spreadPut("PETRP397", 39.70, 1.05, 1.18),
		}},
		{"spread too wide", []testutil.LegSpec{
			spreadPut("PETRP408", 40.80, 1.48, 1.60),
			spreadPut("PETRP397", 39.70, 1.05, 1.18),
		}},
		{"credit not positive", []testutil.LegSpec{
			spreadPut("PETRP402", 40.20, 1.18, 1.30),
			spreadPut("PETRP397", 39.70, 1.05, 1.18),
		}},
		// A debit pair is never flipped into a credit by swapping legs;
		// the sell strike is always the higher one.
		{"debit pair", []testutil.LegSpec{
			spreadPut("PETRP402", 40.20, 1.00, 1.10),
			spreadPut("PETRP397", 39.70, 1.05, 1.18),
		}},
		{"credit swallows spread", []testutil.LegSpec{
			spreadPut("PETRP402", 40.20, 1.80, 1.95),
			spreadPut("PETRP397", 39.70, 1.05, 1.18),
		}},
		{"risk reward too low", []testutil.LegSpec{
			spreadPut("PETRP402", 40.20, 1.26, 1.40),
			spreadPut("PETRP397", 39.70, 1.05, 1.18),
		}},
		{"buy leg without bid", []testutil.LegSpec{
			spreadPut("PETRP402", 40.20, 1.28, 1.40),
			{Code: "PETRP397", Strike: 39.70, Bid: 0, Ask: 1.18, Volume: 80, OpenInterest: 150, IV: 40, DaysToExpiry: 45},
		}},
		{"low iv leg", []testutil.LegSpec{
			{Code: "PETRP402", Strike: 40.20, Bid: 1.28, Ask: 1.40, Volume: 80, OpenInterest: 150, IV: 29, DaysToExpiry: 45},
			spreadPut("PETRP397", 39.70, 1.05, 1.18),
		}},
		{"illiquid leg", []testutil.LegSpec{
			spreadPut("PETRP402", 40.20, 1.28, 1.40),
			{Code: "PETRP397", Strike: 39.70, Bid: 1.05, Ask: 1.18, Volume: 10, OpenInterest: 50, IV: 40, DaysToExpiry: 45},
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ch := testutil.BuildChain("PETR4", 40.0, nil, tc.puts)
			if opps := newTestScanner().BullPutSpreads(ch); len(opps) != 0 {
				t.Fatalf("expected rejection, got %d opportunities", len(opps))
			}
		})
	}
}

func TestBullPutSpreadsCapAndInvariants(t *testing.T) {
	// Seven strikes on a 0.50 grid produce eleven valid pairs (adjacent and
	// one-apart); output must hold the structural invariants and cap at five.
	var puts []testutil.LegSpec
	for i := 0; i < 7; i++ {
		strike := 39.70 + 0.5*float64(i)
		bid := 1.00 + 0.40*float64(i)
		puts = append(puts, spreadPut("PETRP"+string(rune('A'+i)), strike, bid, bid+0.05))
	}
	ch := testutil.BuildChain("PETR4", 40.0, nil, puts)

	opps := newTestScanner().BullPutSpreads(ch)
	if len(opps) != 5 {
		t.Fatalf("expected cap at 5, got %d", len(opps))
	}
	for i, op := range opps {
		if op.Strike1 <= op.Strike2 {
			t.Errorf("opp %d: sell strike %.2f not above buy strike %.2f", i, op.Strike1, op.Strike2)
		}
		if op.NetCredit <= 0 {
			t.Errorf("opp %d: net credit %.2f not positive", i, op.NetCredit)
		}
		if op.MaxRisk == nil || *op.MaxRisk <= 0 {
			t.Errorf("opp %d: max risk %v not positive", i, op.MaxRisk)
		}
		if i > 0 && op.Score > opps[i-1].Score {
			t.Errorf("not sorted descending at %d: %d > %d", i, op.Score, opps[i-1].Score)
		}
	}
}

func TestBullPutSpreadsIdempotent(t *testing.T) {
	puts := []testutil.LegSpec{
		spreadPut("PETRP402", 40.20, 1.28, 1.40),
		spreadPut("PETRP397", 39.70, 1.05, 1.18),
		spreadPut("PETRP392", 39.20, 0.85, 0.98),
	}
	ch := testutil.BuildChain("PETR4", 40.0, nil, puts)
	s := newTestScanner()

	first, err := json.Marshal(s.BullPutSpreads(ch))
	if err != nil {
		t.Fatal(err)
	}
	again, err := json.Marshal(s.BullPutSpreads(ch))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, again) {
		t.Fatalf("output differs between runs:\n%s\n%s", first, again)
	}
}
