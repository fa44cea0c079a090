// Package pipeline implements the bulk backfill that loads historical
// dividends, price history, and investment scores into the database.
package pipeline

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"dividend-screener/internal/broker"
	apperrors "dividend-screener/internal/errors"
	"dividend-screener/internal/marketdata"
	"dividend-screener/internal/models"
	"dividend-screener/internal/screener"
	"dividend-screener/internal/store"
	"dividend-screener/internal/ticker"
)

// BulkDividendSource supplies the full dividend history used for
// backfills, as opposed to the forward-looking screening window.
type BulkDividendSource interface {
	AllDividendsSince(ctx context.Context, since models.Date) ([]models.RawDividend, error)
}

// Stats summarizes one backfill run.
type Stats struct {
	Fetched        int
	TickersStored  int
	TickersSkipped int
	Dividends      int
	Scored         int
}

// Options configures a Backfill.
type Options struct {
	Source  BulkDividendSource
	Market  marketdata.Source
	Session broker.Session
	Store   store.DataStore
	Filter  models.FilterConfig
	Logger  zerolog.Logger

	// HistoryDays is how many daily closes to load per ticker. The
	// 20-day moving average needs at least 20; default 30.
	HistoryDays int
}

// Backfill loads bulk dividend history into the durable store. Unlike
// the screening orchestrator it runs against the database rather than
// the CSV caches, and a transport failure aborts the run: a partial
// backfill is worth less than a clean retry.
type Backfill struct {
	source      BulkDividendSource
	market      marketdata.Source
	session     broker.Session
	store       store.DataStore
	filter      models.FilterConfig
	logger      zerolog.Logger
	historyDays int
}

// New creates a Backfill from Options.
func New(opts Options) *Backfill {
	session := opts.Session
	if session == nil {
		session = broker.Unauthenticated{}
	}
	days := opts.HistoryDays
	if days < 20 {
		days = 30
	}
	return &Backfill{
		source:      opts.Source,
		market:      opts.Market,
		session:     session,
		store:       opts.Store,
		filter:      opts.Filter,
		logger:      opts.Logger,
		historyDays: days,
	}
}

// Run fetches every dividend since the given date and loads tickers,
// price history, dividends, and scores. Tickers that fail the risk
// filter or have no usable quote are skipped, never fatal.
func (b *Backfill) Run(ctx context.Context, since models.Date) (Stats, error) {
	var stats Stats

	if err := b.store.ValidateSchema(ctx); err != nil {
		return stats, err
	}

	raw, err := b.source.AllDividendsSince(ctx, since)
	if err != nil {
		return stats, apperrors.Wrap(err, "fetching dividend history")
	}
	stats.Fetched = len(raw)
	b.logger.Info().Int("records", len(raw)).Str("since", since.String()).Msg("dividend history fetched")

	for _, group := range groupTickers(raw) {
		if !b.load(ctx, group.name, group.dividends, &stats) {
			stats.TickersSkipped++
		}
	}

	b.logger.Info().
		Int("tickers_stored", stats.TickersStored).
		Int("tickers_skipped", stats.TickersSkipped).
		Int("dividends", stats.Dividends).
		Int("scored", stats.Scored).
		Msg("backfill complete")
	return stats, nil
}

// load processes one ticker and reports whether it was stored.
func (b *Backfill) load(ctx context.Context, sym string, divs []models.RawDividend, stats *Stats) bool {
	if ticker.IsProbablyOTC(sym) {
		b.logger.Debug().Str("ticker", sym).Msg("skipping likely OTC symbol")
		return false
	}

	info, err := b.market.Quote(ctx, sym)
	if err != nil {
		b.logger.Warn().Str("ticker", sym).Err(err).Msg("no quote, skipping")
		return false
	}
	if screener.ShouldExclude(sym, info, b.filter) {
		b.logger.Debug().Str("ticker", sym).Msg("excluded by risk filter")
		return false
	}
	if b.session.IsAuthenticated() && !b.session.IsTradable(ctx, sym) {
		b.logger.Debug().Str("ticker", sym).Msg("not tradable, skipping")
		return false
	}
	if info.Price <= 0 {
		b.logger.Debug().Str("ticker", sym).Msg("no usable price, skipping")
		return false
	}

	tickerID, err := b.store.UpsertTicker(ctx, sym, info.Name)
	if err != nil {
		b.logger.Error().Str("ticker", sym).Err(err).Msg("failed to store ticker")
		return false
	}

	bars := b.loadHistory(ctx, sym, tickerID)
	latest, haveBar := marketdata.LatestComplete(bars)

	for _, d := range divs {
		exDate, err := models.ParseDate(d.ExDividendDate)
		if err != nil {
			b.logger.Debug().Str("ticker", sym).Str("ex_date", d.ExDividendDate).Msg("unparseable ex-date")
			continue
		}
		if d.CashAmount <= 0 {
			continue
		}
		yield := math.Round(d.CashAmount/info.Price*100*100) / 100
		if err := b.store.UpsertDividend(ctx, tickerID, exDate, d.CashAmount, yield); err != nil {
			b.logger.Error().Str("ticker", sym).Err(err).Msg("failed to store dividend")
			continue
		}
		stats.Dividends++

		if !haveBar {
			continue
		}
		score, grade := screener.Score(models.ScoreInputs{
			YieldPct:       yield,
			CurrentPrice:   info.Price,
			MovingAvg20:    latest.MA20,
			DividendAmount: d.CashAmount,
		})
		if err := b.store.UpsertScore(ctx, tickerID, exDate, score, grade); err != nil {
			b.logger.Error().Str("ticker", sym).Err(err).Msg("failed to store score")
			continue
		}
		stats.Scored++
	}

	stats.TickersStored++
	return true
}

// loadHistory fetches and persists the ticker's recent daily closes
// with moving averages. History is optional: a failure only means no
// score gets computed.
func (b *Backfill) loadHistory(ctx context.Context, sym string, tickerID int64) []models.PriceBar {
	raw, err := b.market.History(ctx, sym, b.historyDays)
	if err != nil {
		b.logger.Warn().Str("ticker", sym).Err(err).Msg("no price history")
		return nil
	}
	bars := marketdata.WithMovingAverages(raw)
	for _, bar := range bars {
		if err := b.store.InsertDailyPrice(ctx, tickerID, bar); err != nil {
			b.logger.Error().Str("ticker", sym).Err(err).Msg("failed to store daily price")
		}
	}
	return bars
}

type tickerGroup struct {
	name      string
	dividends []models.RawDividend
}

// groupTickers normalizes symbols, drops blanks, dedupes dividends on
// (ticker, ex-date) keeping the last record, and returns groups in
// symbol order so runs are deterministic.
func groupTickers(raw []models.RawDividend) []tickerGroup {
	byTicker := make(map[string]map[string]models.RawDividend)
	for _, d := range raw {
		sym := ticker.Normalize(d.Ticker)
		if sym == "" {
			continue
		}
		if byTicker[sym] == nil {
			byTicker[sym] = make(map[string]models.RawDividend)
		}
		byTicker[sym][d.ExDividendDate] = d
	}

	groups := make([]tickerGroup, 0, len(byTicker))
	for sym, byDate := range byTicker {
		divs := make([]models.RawDividend, 0, len(byDate))
		for _, d := range byDate {
			divs = append(divs, d)
		}
		sort.Slice(divs, func(i, j int) bool {
			return divs[i].ExDividendDate < divs[j].ExDividendDate
		})
		groups = append(groups, tickerGroup{name: sym, dividends: divs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].name < groups[j].name })
	return groups
}
