package screener

import (
	"strings"

	"dividend-screener/internal/models"
	"dividend-screener/internal/ticker"
)

// Strict-filtering guards: sub-dollar symbols behave like penny stocks
// and yields above 25% are almost always data errors or imminent cuts.
const (
	minStrictPrice = 1.00
	maxStrictYield = 25.0
)

// ShouldExclude evaluates a candidate against live market metadata and
// reports whether it should be dropped. Checks short-circuit in order:
// structural/suffix validation, OTC venue, missing or bankrupt business
// summary, and the OTC symbol heuristic. Callers are expected to add
// excluded tickers to the ignore cache so repeated runs skip them.
func ShouldExclude(symbol string, info models.MarketInfo, cfg models.FilterConfig) bool {
	if !ticker.IsValid(symbol, cfg.ExcludeForeign, cfg.ExcludeADR, cfg.ExcludeDistressed) {
		return true
	}

	market := strings.ToUpper(info.Market)
	quoteType := strings.ToUpper(info.QuoteType)
	if strings.Contains(market, "OTC") || strings.Contains(quoteType, "OTC") {
		return true
	}

	summary := strings.ToLower(info.BusinessSummary)
	if strings.TrimSpace(summary) == "" || strings.Contains(summary, "bankrupt") {
		return true
	}

	return ticker.IsProbablyOTC(symbol)
}

// Apply filters already-fetched dividend events without consulting live
// metadata: it drops rows with an unparseable ticker or non-positive
// yield/price, enforces the minimum yield, re-applies the suffix and OTC
// checks, and under strict filtering drops penny stocks and implausible
// yields.
func Apply(events []models.DividendEvent, cfg models.FilterConfig) []models.DividendEvent {
	cfg = cfg.Normalize()

	out := make([]models.DividendEvent, 0, len(events))
	for _, ev := range events {
		symbol := ticker.Normalize(ev.Ticker)
		if symbol == "" || ev.DividendYield <= 0 || ev.Price <= 0 {
			continue
		}
		if ev.DividendYield < cfg.MinYield {
			continue
		}
		if !ticker.IsValid(symbol, cfg.ExcludeForeign, cfg.ExcludeADR, cfg.ExcludeDistressed) {
			continue
		}
		if ticker.IsProbablyOTC(symbol) {
			continue
		}
		if cfg.StrictFiltering {
			if ev.Price < minStrictPrice || ev.DividendYield > maxStrictYield {
				continue
			}
		}
		ev.Ticker = symbol
		out = append(out, ev)
	}
	return out
}
