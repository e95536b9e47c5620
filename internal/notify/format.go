package notify

import (
	"fmt"
	"strings"

	"github.com/unoinvest/rco-scanner/internal/scanner"
)

// Alert texts are Telegram HTML. Layouts follow the alerts the methodology's
// subscribers already receive: one block per setup, money in per-lot reais.

func strategyLabel(s scanner.Strategy) string {
	switch s {
	case scanner.CoveredCall:
		return "Venda Coberta"
	case scanner.CashSecuredPut:
		return "Venda de Put"
	case scanner.BullPutSpread:
		return "Trava de Alta"
	}
	return string(s)
}

// FormatOpportunity renders one setup alert.
func FormatOpportunity(opp scanner.Opportunity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🎯 <b>%s</b> | %s | Score %d\n\n",
		strategyLabel(opp.Strategy), opp.Underlying, opp.Score)

	fmt.Fprintf(&b, "📝 %s %dx <code>%s</code> @ R$ %.2f (strike %.2f)\n",
		legVerb(opp.Direction1), opp.Quantity1, opp.Code1, opp.Price1, opp.Strike1)
	if opp.Code2 != "" {
		fmt.Fprintf(&b, "📝 %s %dx <code>%s</code> @ R$ %.2f (strike %.2f)\n",
			legVerb(opp.Direction2), opp.Quantity2, opp.Code2, opp.Price2, opp.Strike2)
	}

	fmt.Fprintf(&b, "💰 Crédito líquido: R$ %.2f\n", opp.NetCredit)
	if opp.MaxRisk != nil {
		fmt.Fprintf(&b, "⚠️ Risco máximo: R$ %.2f\n", *opp.MaxRisk)
	} else {
		b.WriteString("⚠️ Risco: exposição da ação em carteira\n")
	}

	fmt.Fprintf(&b, "📈 Retorno: %.2f%% | Prob. sucesso: %.0f%%\n",
		opp.ReturnPct, opp.EstimatedSuccessProbability)
	fmt.Fprintf(&b, "📅 Vencimento: %s (%d dias) | VI %.1f%%",
		opp.Expiration.Format("02/01/2006"), opp.DaysToExpiry, opp.ImpliedVolatility)

	return b.String()
}

// FormatScanSummary renders the per-run digest.
func FormatScanSummary(results []scanner.Result) string {
	var totals [3]int
	var failed []string
	for _, res := range results {
		totals[0] += len(res.CoveredCalls)
		totals[1] += len(res.CashSecuredPuts)
		totals[2] += len(res.BullPutSpreads)
		if res.FetchFailure != "" {
			failed = append(failed, fmt.Sprintf("%s (%s)", res.Underlying, res.FetchFailure))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Varredura RCO</b> | %d ativos\n\n", len(results))
	fmt.Fprintf(&b, "Venda Coberta: %d\n", totals[0])
	fmt.Fprintf(&b, "Venda de Put: %d\n", totals[1])
	fmt.Fprintf(&b, "Trava de Alta: %d", totals[2])
	if len(failed) > 0 {
		fmt.Fprintf(&b, "\n\n⚠️ Sem dados: %s", strings.Join(failed, ", "))
	}
	return b.String()
}

// FormatPositionClosed renders a realized-result alert.
func FormatPositionClosed(opp scanner.Opportunity, result float64) string {
	icon := "✅"
	if result < 0 {
		icon = "❌"
	}
	return fmt.Sprintf("%s <b>Posição encerrada</b> | %s %s\nResultado: R$ %.2f",
		icon, strategyLabel(opp.Strategy), opp.Underlying, result)
}

func legVerb(d scanner.Direction) string {
	if d == scanner.Buy {
		return "Compra"
	}
	return "Venda"
}
