package scanner

import (
	"testing"

	"github.com/unoinvest/rco-scanner/internal/testutil"
)

// baseCall qualifies under every covered-call default: spot 40, strike 52
// gives linear delta 35, IV 40, 45 DTE, high liquidity.
func baseCall() testutil.LegSpec {
	return testutil.LegSpec{
		Code:         "PETRC520",
		Strike:       52.0,
		Bid:          1.20,
		Ask:          1.30,
		LastPrice:    1.25,
		Volume:       150,
		OpenInterest: 600,
		IV:           40,
		DaysToExpiry: 45,
	}
}

func newTestScanner() *Scanner {
	return New(nil, DefaultConfig())
}

func TestCoveredCallsQualifyingLeg(t *testing.T) {
	ch := testutil.BuildChain("PETR4", 40.0, []testutil.LegSpec{baseCall()}, nil)

	opps := newTestScanner().CoveredCalls(ch)
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}

	op := opps[0]
	if op.Strategy != CoveredCall {
		t.Errorf("strategy = %s, want COVERED_CALL", op.Strategy)
	}
	if op.Score < 0 || op.Score > 100 {
		t.Errorf("score out of range: %d", op.Score)
	}
	// monthly=2.0 -> 20, iv 40 -> 20, delta 35 -> 15, liquidity -> 20
	if op.Score != 75 {
		t.Errorf("score = %d, want 75", op.Score)
	}
	if op.MaxRisk != nil {
		t.Errorf("covered call max risk must be nil, got %v", *op.MaxRisk)
	}
	if op.Direction1 != Sell || op.Quantity1 != LotSize {
		t.Errorf("leg = %s x%d, want SELL x100", op.Direction1, op.Quantity1)
	}
	if op.NetCredit != 120.0 || op.NetResult != 120.0 || op.NetDebit != 0 {
		t.Errorf("credit/result/debit = %.2f/%.2f/%.2f", op.NetCredit, op.NetResult, op.NetDebit)
	}
	if op.EstimatedSuccessProbability != 65.0 { // 100 - |delta 35|
		t.Errorf("success probability = %.2f, want 65", op.EstimatedSuccessProbability)
	}
}

func TestCoveredCallsFilters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testutil.LegSpec)
	}{
		{"iv below minimum", func(l *testutil.LegSpec) { l.IV = 25 }},
		{"too few days", func(l *testutil.LegSpec) { l.DaysToExpiry = 29 }},
		{"too many days", func(l *testutil.LegSpec) { l.DaysToExpiry = 61 }},
		{"illiquid", func(l *testutil.LegSpec) { l.Volume = 5; l.OpenInterest = 20 }},
		{"no bid", func(l *testutil.LegSpec) { l.Bid = 0 }},
		{"delta below window", func(l *testutil.LegSpec) { l.Strike = 64.02 }}, // |delta| 19.975
		{"delta above window", func(l *testutil.LegSpec) { l.Strike = 44.0 }},  // |delta| 45
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			leg := baseCall()
			tc.mutate(&leg)
			ch := testutil.BuildChain("PETR4", 40.0, []testutil.LegSpec{leg}, nil)

			if opps := newTestScanner().CoveredCalls(ch); len(opps) != 0 {
				t.Fatalf("expected rejection, got %d opportunities", len(opps))
			}
		})
	}
}

func TestCoveredCallsBoundariesInclusive(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testutil.LegSpec)
	}{
		{"delta exactly 20", func(l *testutil.LegSpec) { l.Strike = 64.0 }},
		{"delta exactly 40", func(l *testutil.LegSpec) { l.Strike = 48.0 }},
		{"30 days", func(l *testutil.LegSpec) { l.DaysToExpiry = 30 }},
		{"60 days", func(l *testutil.LegSpec) { l.DaysToExpiry = 60 }},
		{"iv exactly 30", func(l *testutil.LegSpec) { l.IV = 30; l.Bid = 1.60 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			leg := baseCall()
			tc.mutate(&leg)
			ch := testutil.BuildChain("PETR4", 40.0, []testutil.LegSpec{leg}, nil)

			if opps := newTestScanner().CoveredCalls(ch); len(opps) != 1 {
				t.Fatalf("expected inclusion at boundary, got %d opportunities", len(opps))
			}
		})
	}
}

func TestCoveredCallsRankingAndCap(t *testing.T) {
	// Seven qualifying legs with distinct liquidity tiers and bids so the
	// scores differ; output must be the top five, descending.
	var calls []testutil.LegSpec
	for i := 0; i < 7; i++ {
		leg := baseCall()
		leg.Code = leg.Code + string(rune('A'+i))
		leg.Bid = 0.90 + float64(i)*0.10
		calls = append(calls, leg)
	}

	ch := testutil.BuildChain("PETR4", 40.0, calls, nil)
	opps := newTestScanner().CoveredCalls(ch)

	if len(opps) != 5 {
		t.Fatalf("expected cap at 5, got %d", len(opps))
	}
	for i := 1; i < len(opps); i++ {
		if opps[i].Score > opps[i-1].Score {
			t.Fatalf("not sorted descending at %d: %d > %d", i, opps[i].Score, opps[i-1].Score)
		}
	}
}

// The JSON document is the contract with the persistence, report and alert
// layers; pin it against a golden file.
func TestCoveredCallOpportunityDocument(t *testing.T) {
	ch := testutil.BuildChain("PETR4", 40.0, []testutil.LegSpec{baseCall()}, nil)

	opps := newTestScanner().CoveredCalls(ch)
	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}
	testutil.CompareWithGolden(t, "covered_call_opportunity", opps)
}

func TestCoveredCallsIdempotent(t *testing.T) {
	calls := []testutil.LegSpec{baseCall()}
	second := baseCall()
	second.Code = "PETRC480"
	second.Strike = 48.0
	calls = append(calls, second)

	ch := testutil.BuildChain("PETR4", 40.0, calls, nil)
	s := newTestScanner()

	first := s.CoveredCalls(ch)
	again := s.CoveredCalls(ch)

	if len(first) != len(again) {
		t.Fatalf("length changed between runs: %d vs %d", len(first), len(again))
	}
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("candidate %d differs between runs", i)
		}
	}
}
