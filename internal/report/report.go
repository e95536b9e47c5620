// Package report writes scan results to disk as JSON and CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/unoinvest/rco-scanner/internal/logger"
	"github.com/unoinvest/rco-scanner/internal/scanner"
)

// Writer emits timestamped report files into a single directory.
type Writer struct {
	dir string
}

// NewWriter creates the report directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create report dir %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// WriteJSON dumps the full scan results, one document per run.
func (w *Writer) WriteJSON(results []scanner.Result, ts time.Time) (string, error) {
	path := filepath.Join(w.dir, "scan_"+ts.Format("20060102_150405")+".json")

	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	logger.WithComponent("report").Infof("wrote %s", path)
	return path, nil
}

var csvHeader = []string{
	"strategy", "underlying", "score",
	"code_1", "direction_1", "strike_1", "price_1",
	"code_2", "direction_2", "strike_2", "price_2",
	"net_credit", "net_result", "max_risk", "return_pct",
	"estimated_success_probability", "expiration", "days_to_expiry", "implied_volatility",
}

// WriteCSV flattens every opportunity across all results into one table,
// suitable for spreadsheet review.
func (w *Writer) WriteCSV(results []scanner.Result, ts time.Time) (string, error) {
	path := filepath.Join(w.dir, "scan_"+ts.Format("20060102_150405")+".csv")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return "", err
	}

	for _, res := range results {
		for _, opp := range res.All() {
			if err := cw.Write(csvRow(opp)); err != nil {
				return "", err
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	logger.WithComponent("report").Infof("wrote %s", path)
	return path, nil
}

func csvRow(opp scanner.Opportunity) []string {
	maxRisk := ""
	if opp.MaxRisk != nil {
		maxRisk = fmtFloat(*opp.MaxRisk)
	}
	strike2, price2 := "", ""
	if opp.Code2 != "" {
		strike2, price2 = fmtFloat(opp.Strike2), fmtFloat(opp.Price2)
	}
	return []string{
		string(opp.Strategy), opp.Underlying, strconv.Itoa(opp.Score),
		opp.Code1, string(opp.Direction1), fmtFloat(opp.Strike1), fmtFloat(opp.Price1),
		opp.Code2, string(opp.Direction2), strike2, price2,
		fmtFloat(opp.NetCredit), fmtFloat(opp.NetResult), maxRisk, fmtFloat(opp.ReturnPct),
		fmtFloat(opp.EstimatedSuccessProbability), opp.Expiration.Format("2006-01-02"),
		strconv.Itoa(opp.DaysToExpiry), fmtFloat(opp.ImpliedVolatility),
	}
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
