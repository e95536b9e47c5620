// rco-scanner scans B3 options chains for covered-strategy setups, writes
// ranked reports, and optionally persists and alerts the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/unoinvest/rco-scanner/internal/chain"
	"github.com/unoinvest/rco-scanner/internal/config"
	"github.com/unoinvest/rco-scanner/internal/logger"
	"github.com/unoinvest/rco-scanner/internal/notify"
	"github.com/unoinvest/rco-scanner/internal/pricing"
	"github.com/unoinvest/rco-scanner/internal/report"
	"github.com/unoinvest/rco-scanner/internal/scanner"
	"github.com/unoinvest/rco-scanner/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (optional)")
		symbolsCSV = flag.String("symbols", "", "comma-separated underlyings, overrides config")
		provider   = flag.String("provider", "", "chain source: yahoo, csv or synthetic")
		seed       = flag.Int64("seed", 1, "seed for the synthetic provider")
	)
	flag.Parse()

	// Credentials live in .env during development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *symbolsCSV != "" {
		cfg.Symbols = splitSymbols(*symbolsCSV)
	}
	if *provider != "" {
		cfg.Provider = *provider
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAgeDays); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := buildProvider(cfg, *seed)
	if err != nil {
		log.WithError(err).Fatal("provider setup failed")
	}

	log.WithFields(logger.Fields{
		"symbols":  cfg.Symbols,
		"provider": cfg.Provider,
	}).Info("starting scan")

	startedAt := time.Now()
	results := scanner.New(src, cfg.Scanner).ScanAll(ctx, cfg.Symbols)

	total := 0
	for _, res := range results {
		total += len(res.All())
	}
	log.WithFields(logger.Fields{
		"opportunities": total,
		"elapsed":       time.Since(startedAt).Round(time.Millisecond).String(),
	}).Info("scan finished")

	writer, err := report.NewWriter(cfg.ReportDir)
	if err != nil {
		log.WithError(err).Fatal("report setup failed")
	}
	if _, err := writer.WriteJSON(results, startedAt); err != nil {
		log.WithError(err).Error("json report failed")
	}
	if _, err := writer.WriteCSV(results, startedAt); err != nil {
		log.WithError(err).Error("csv report failed")
	}

	if cfg.Redis.Enabled {
		persist(ctx, cfg, results)
	}
	if cfg.Telegram.Enabled {
		alert(ctx, cfg, results)
	}
}

func buildProvider(cfg config.Config, seed int64) (chain.Provider, error) {
	delta := pricing.LinearDelta{}
	switch cfg.Provider {
	case "yahoo":
		return chain.NewYahooProvider(delta), nil
	case "csv":
		return chain.NewCSVProvider(cfg.SnapshotDir, delta), nil
	case "synthetic":
		return chain.NewSyntheticProvider(delta, seed), nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

func persist(ctx context.Context, cfg config.Config, results []scanner.Result) {
	log := logger.WithComponent("main")

	st, err := store.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.WithError(err).Error("skipping persistence")
		return
	}
	defer st.Close()

	saved := st.SaveResults(ctx, results)
	log.Infof("persisted %d opportunities", saved)
}

func alert(ctx context.Context, cfg config.Config, results []scanner.Result) {
	log := logger.WithComponent("main")
	tg := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	for _, res := range results {
		for _, opp := range res.All() {
			if err := tg.SendOpportunity(ctx, opp); err != nil {
				log.WithError(err).Warnf("alert failed for %s", opp.Underlying)
			}
		}
	}
	if err := tg.SendScanSummary(ctx, results); err != nil {
		log.WithError(err).Warn("summary alert failed")
	}
}

func splitSymbols(csv string) []string {
	var out []string
	for _, s := range strings.Split(csv, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
