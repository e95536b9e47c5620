// Package scanner implements the RCO opportunity-identification engine: it
// turns one options chain snapshot into ranked, scored candidate setups
// across three strategy variants.
//
// The identifiers are pure and idempotent over a Chain; all I/O lives in the
// chain provider. A fetch failure for one underlying degrades to an empty
// result for that underlying and never aborts a multi-symbol scan.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/unoinvest/rco-scanner/internal/chain"
	"github.com/unoinvest/rco-scanner/internal/logger"
)

// Result is one underlying's scan output: per-strategy ranked candidate
// lists plus the snapshot timestamp.
type Result struct {
	Underlying      string        `json:"underlying"`
	ScannedAt       time.Time     `json:"scanned_at"`
	FetchFailure    string        `json:"fetch_failure,omitempty"`
	CoveredCalls    []Opportunity `json:"covered_calls"`
	CashSecuredPuts []Opportunity `json:"cash_secured_puts"`
	BullPutSpreads  []Opportunity `json:"bull_put_spreads"`
}

// All flattens the three strategy lists, covered calls first.
func (r Result) All() []Opportunity {
	out := make([]Opportunity, 0, len(r.CoveredCalls)+len(r.CashSecuredPuts)+len(r.BullPutSpreads))
	out = append(out, r.CoveredCalls...)
	out = append(out, r.CashSecuredPuts...)
	out = append(out, r.BullPutSpreads...)
	return out
}

// Scanner runs the three identifiers over chains supplied by a provider.
type Scanner struct {
	provider chain.Provider
	cfg      Config
	log      *logrus.Entry
}

// New constructs a Scanner. The provider is injected so tests can feed
// deterministic chains.
func New(provider chain.Provider, cfg Config) *Scanner {
	return &Scanner{
		provider: provider,
		cfg:      cfg,
		log:      logger.WithComponent("scanner"),
	}
}

// ScanSymbol fetches one chain snapshot and runs every identifier on it.
//
// Fetch failures are terminal for this call only: they are logged, recorded
// on the Result, and yield empty candidate lists.
func (s *Scanner) ScanSymbol(ctx context.Context, symbol string) Result {
	res := Result{Underlying: symbol, ScannedAt: time.Now()}

	ch, err := s.provider.FetchChain(ctx, symbol)
	if err != nil {
		var fe *chain.FetchError
		if errors.As(err, &fe) {
			res.FetchFailure = string(fe.Reason)
		} else {
			res.FetchFailure = string(chain.ProviderError)
		}
		s.log.WithError(err).Warnf("scan %s produced no chain", symbol)
		return res
	}

	res.CoveredCalls = s.CoveredCalls(ch)
	res.CashSecuredPuts = s.CashSecuredPuts(ch)
	res.BullPutSpreads = s.BullPutSpreads(ch)

	s.log.WithFields(logger.Fields{
		"underlying":       symbol,
		"covered_calls":    len(res.CoveredCalls),
		"cash_secured":     len(res.CashSecuredPuts),
		"bull_put_spreads": len(res.BullPutSpreads),
	}).Info("scan complete")

	return res
}

// ScanAll scans every symbol independently, fanning out over at most
// MaxConcurrency workers. There is no cross-symbol data dependency, so
// results land in input order regardless of completion order.
func (s *Scanner) ScanAll(ctx context.Context, symbols []string) []Result {
	results := make([]Result, len(symbols))

	sem := make(chan struct{}, s.cfg.MaxConcurrency)
	var wg sync.WaitGroup

	for i, symbol := range symbols {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.ScanSymbol(ctx, symbol)
		}(i, symbol)
	}

	wg.Wait()
	return results
}
