package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/unoinvest/rco-scanner/internal/scanner"
)

func sampleResults() []scanner.Result {
	risk := 3000.0
	return []scanner.Result{
		{
			Underlying: "PETR4",
			ScannedAt:  time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			CoveredCalls: []scanner.Opportunity{{
				Strategy:   scanner.CoveredCall,
				Underlying: "PETR4",
				Score:      75,
				Code1:      "PETRC520",
				Direction1: scanner.Sell,
				Strike1:    52,
				Price1:     1.20,
				Quantity1:  100,
				NetCredit:  120,
				Expiration: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
			}},
			CashSecuredPuts: []scanner.Opportunity{{
				Strategy:   scanner.CashSecuredPut,
				Underlying: "PETR4",
				Score:      87,
				Code1:      "PETRP300",
				Direction1: scanner.Sell,
				Strike1:    30,
				Price1:     1.50,
				Quantity1:  100,
				MaxRisk:    &risk,
				Expiration: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
			}},
		},
		{Underlying: "XXXX3", FetchFailure: "NO_OPTIONS"},
	}
}

func TestWriteJSON(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := w.WriteJSON(sampleResults(), time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []scanner.Result
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(got) != 2 || got[0].Underlying != "PETR4" || got[1].FetchFailure != "NO_OPTIONS" {
		t.Errorf("round-tripped results do not match: %+v", got)
	}
}

func TestWriteCSV(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := w.WriteCSV(sampleResults(), time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("report is not valid CSV: %v", err)
	}
	// Header plus one row per opportunity; the failed symbol adds nothing.
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[1][0] != "COVERED_CALL" || rows[1][13] != "" {
		t.Errorf("covered call row = %v, want empty max_risk", rows[1])
	}
	if rows[2][0] != "CASH_SECURED_PUT" || rows[2][13] != "3000" {
		t.Errorf("cash-secured put row = %v, want max_risk 3000", rows[2])
	}
}
