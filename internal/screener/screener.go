package screener

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"dividend-screener/internal/broker"
	"dividend-screener/internal/cache"
	"dividend-screener/internal/logging"
	"dividend-screener/internal/marketdata"
	"dividend-screener/internal/models"
	"dividend-screener/internal/ticker"
)

// DividendSource fetches upcoming ex-dividend events for a date window.
type DividendSource interface {
	UpcomingDividends(ctx context.Context, start, end models.Date) ([]models.RawDividend, error)
}

// ResultStore is the durable cache consulted before any network fetch.
type ResultStore interface {
	Query(start, end models.Date) []models.DividendEvent
	Upsert(events []models.DividendEvent) error
}

// IgnoreList is the time-boxed denylist of rejected tickers.
type IgnoreList interface {
	Load() cache.IgnoreSnapshot
	Add(symbol string, now models.Date) error
}

// Screener runs the screening pipeline: cache check, fetch, per-candidate
// filtering and enrichment, then persistence. No failure escapes Run;
// transport and data errors degrade to skipped candidates or an empty
// result.
type Screener struct {
	source  DividendSource
	market  marketdata.Source
	session broker.Session
	results ResultStore
	ignores IgnoreList
	logger  zerolog.Logger
	today   func() models.Date
}

// Options holds the dependencies for a Screener.
type Options struct {
	Source  DividendSource
	Market  marketdata.Source
	Session broker.Session
	Results ResultStore
	Ignores IgnoreList
	Logger  zerolog.Logger

	// Today overrides the clock, for tests.
	Today func() models.Date
}

// New creates a Screener. A nil Session is treated as unauthenticated.
func New(opts Options) *Screener {
	if opts.Session == nil {
		opts.Session = broker.Unauthenticated{}
	}
	if opts.Today == nil {
		opts.Today = models.Today
	}
	return &Screener{
		source:  opts.Source,
		market:  opts.Market,
		session: opts.Session,
		results: opts.Results,
		ignores: opts.Ignores,
		logger:  opts.Logger,
		today:   opts.Today,
	}
}

// Run executes one screening pass for the configured window and returns
// the qualifying events in source order. A populated result cache
// short-circuits the run without any external fetch.
func (s *Screener) Run(ctx context.Context, cfg models.FilterConfig) []models.DividendEvent {
	cfg = cfg.Normalize()
	today := s.today()
	end := today.AddDays(cfg.DaysAhead)

	if cached := s.results.Query(today, end); len(cached) > 0 {
		s.logger.Info().Int("events", len(cached)).Msg("Returning cached dividend data")
		return cached
	}

	s.logger.Info().
		Str("start", today.String()).
		Str("end", end.String()).
		Msg("Fetching fresh dividend data")

	raw, err := s.source.UpcomingDividends(ctx, today, end)
	if err != nil {
		s.logger.Error().Err(err).Msg("Dividend source unavailable, returning empty result")
		return nil
	}

	ignored := s.ignores.Load()
	accepted := make([]models.DividendEvent, 0, len(raw))

	for _, item := range raw {
		event, ok := s.screenCandidate(ctx, item, cfg, ignored, today)
		if ok {
			accepted = append(accepted, event)
		}
	}

	if err := s.results.Upsert(accepted); err != nil {
		s.logger.Error().Err(err).Msg("Result cache write failed")
	}

	logging.LogScreenRun(s.logger, "polygon", len(accepted), len(raw))
	return accepted
}

// screenCandidate applies the per-candidate pipeline stages. Rejections
// that indicate a durably bad ticker are recorded in the ignore cache.
func (s *Screener) screenCandidate(ctx context.Context, item models.RawDividend, cfg models.FilterConfig, ignored cache.IgnoreSnapshot, today models.Date) (models.DividendEvent, bool) {
	symbol := ticker.Normalize(item.Ticker)
	if symbol == "" || item.CashAmount <= 0 {
		return models.DividendEvent{}, false
	}

	exDate, err := models.ParseDate(item.ExDividendDate)
	if err != nil {
		logging.LogSkip(s.logger, symbol, "unparseable ex-dividend date")
		return models.DividendEvent{}, false
	}

	if ignored.IsIgnored(symbol, today) {
		return models.DividendEvent{}, false
	}

	if ticker.IsProbablyOTC(symbol) {
		s.reject(symbol, today, "flagged as OTC/pink")
		return models.DividendEvent{}, false
	}

	info, err := s.market.Quote(ctx, symbol)
	if err != nil {
		s.reject(symbol, today, "market data unavailable")
		return models.DividendEvent{}, false
	}

	if cfg.StrictFiltering {
		if ShouldExclude(symbol, info, cfg) {
			s.reject(symbol, today, "fails risk filter")
			return models.DividendEvent{}, false
		}
		if s.session.IsAuthenticated() && !s.session.IsTradable(ctx, symbol) {
			s.reject(symbol, today, "not tradable at broker")
			return models.DividendEvent{}, false
		}
	}

	if info.Price <= 0 {
		s.reject(symbol, today, "invalid market price")
		return models.DividendEvent{}, false
	}

	yield := math.Round(item.CashAmount/info.Price*100*100) / 100

	return models.DividendEvent{
		Ticker:         symbol,
		ExDividendDate: exDate,
		CashAmount:     item.CashAmount,
		Price:          math.Round(info.Price*100) / 100,
		DividendYield:  yield,
		Company:        info.Name,
	}, true
}

func (s *Screener) reject(symbol string, today models.Date, reason string) {
	logging.LogSkip(s.logger, symbol, reason)
	if err := s.ignores.Add(symbol, today); err != nil {
		s.logger.Warn().Err(err).Str("ticker", symbol).Msg("Ignore cache write failed")
	}
}

// EnrichScores attaches an investability score and grade to each event
// using 30 days of price history. Events whose history is unavailable or
// too short keep score 0 and the unknown grade.
func (s *Screener) EnrichScores(ctx context.Context, events []models.DividendEvent) []models.DividendEvent {
	out := make([]models.DividendEvent, len(events))
	copy(out, events)

	for i := range out {
		bars, err := s.market.History(ctx, out[i].Ticker, 30)
		if err != nil {
			s.logger.Debug().Err(err).Str("ticker", out[i].Ticker).Msg("No price history for scoring")
			out[i].Grade = models.GradeUnknown
			continue
		}

		latest, ok := marketdata.LatestComplete(marketdata.WithMovingAverages(bars))
		if !ok {
			out[i].Grade = models.GradeUnknown
			continue
		}

		score, grade := Score(models.ScoreInputs{
			YieldPct:       out[i].DividendYield,
			CurrentPrice:   latest.Close,
			MovingAvg20:    latest.MA20,
			DividendAmount: out[i].CashAmount,
		})
		out[i].Score = score
		out[i].Grade = grade
	}
	return out
}
