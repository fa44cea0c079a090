package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"dividend-screener/internal/models"
)

type fakeBulkSource struct {
	records []models.RawDividend
	err     error
}

func (f *fakeBulkSource) AllDividendsSince(ctx context.Context, since models.Date) ([]models.RawDividend, error) {
	return f.records, f.err
}

type fakeMarket struct {
	quotes  map[string]models.MarketInfo
	history map[string][]models.PriceBar
}

func (f *fakeMarket) Quote(ctx context.Context, symbol string) (models.MarketInfo, error) {
	info, ok := f.quotes[symbol]
	if !ok {
		return models.MarketInfo{}, errors.New("quote unavailable")
	}
	return info, nil
}

func (f *fakeMarket) History(ctx context.Context, symbol string, days int) ([]models.PriceBar, error) {
	bars, ok := f.history[symbol]
	if !ok {
		return nil, errors.New("history unavailable")
	}
	return bars, nil
}

type fakeStore struct {
	schemaErr error
	tickers   map[string]int64
	prices    map[int64]int
	dividends map[int64][]models.Date
	scores    map[int64][]models.Grade
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tickers:   make(map[string]int64),
		prices:    make(map[int64]int),
		dividends: make(map[int64][]models.Date),
		scores:    make(map[int64][]models.Grade),
	}
}

func (f *fakeStore) UpsertTicker(ctx context.Context, symbol, name string) (int64, error) {
	if id, ok := f.tickers[symbol]; ok {
		return id, nil
	}
	id := int64(len(f.tickers) + 1)
	f.tickers[symbol] = id
	return id, nil
}

func (f *fakeStore) InsertDailyPrice(ctx context.Context, tickerID int64, bar models.PriceBar) error {
	f.prices[tickerID]++
	return nil
}

func (f *fakeStore) UpsertDividend(ctx context.Context, tickerID int64, exDate models.Date, amount, yieldPct float64) error {
	f.dividends[tickerID] = append(f.dividends[tickerID], exDate)
	return nil
}

func (f *fakeStore) UpsertScore(ctx context.Context, tickerID int64, exDate models.Date, score float64, grade models.Grade) error {
	f.scores[tickerID] = append(f.scores[tickerID], grade)
	return nil
}

func (f *fakeStore) ScoredDividends(ctx context.Context, minYield float64, start, end models.Date) ([]models.DividendEvent, error) {
	return nil, nil
}

func (f *fakeStore) ValidateSchema(ctx context.Context) error { return f.schemaErr }

func (f *fakeStore) Close() error { return nil }

func listedQuote(name string, price float64) models.MarketInfo {
	return models.MarketInfo{
		Name:            name,
		Price:           price,
		Market:          "NYSE",
		QuoteType:       "EQUITY",
		BusinessSummary: "A company that pays dividends.",
	}
}

func flatHistory(start models.Date, days int, px float64) []models.PriceBar {
	bars := make([]models.PriceBar, days)
	for i := range bars {
		bars[i] = models.PriceBar{Date: start.AddDays(i), Close: px}
	}
	return bars
}

func TestBackfillStoresTickersDividendsAndScores(t *testing.T) {
	since := models.NewDate(2026, 1, 1)
	source := &fakeBulkSource{records: []models.RawDividend{
		{Ticker: "KO", CashAmount: 0.46, ExDividendDate: "2026-03-13"},
		{Ticker: "KO", CashAmount: 0.48, ExDividendDate: "2026-06-12"},
		{Ticker: "PG", CashAmount: 1.01, ExDividendDate: "2026-04-20"},
	}}
	market := &fakeMarket{
		quotes: map[string]models.MarketInfo{
			"KO": listedQuote("Coca-Cola", 60.00),
			"PG": listedQuote("Procter & Gamble", 160.00),
		},
		history: map[string][]models.PriceBar{
			"KO": flatHistory(models.NewDate(2026, 8, 1), 25, 60.00),
			"PG": flatHistory(models.NewDate(2026, 8, 1), 25, 160.00),
		},
	}
	st := newFakeStore()

	b := New(Options{
		Source: source,
		Market: market,
		Store:  st,
		Filter: models.DefaultFilterConfig(),
		Logger: zerolog.Nop(),
	})
	stats, err := b.Run(context.Background(), since)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Fetched != 3 {
		t.Errorf("Fetched = %d, want 3", stats.Fetched)
	}
	if stats.TickersStored != 2 || stats.TickersSkipped != 0 {
		t.Errorf("tickers stored/skipped = %d/%d, want 2/0", stats.TickersStored, stats.TickersSkipped)
	}
	if stats.Dividends != 3 {
		t.Errorf("Dividends = %d, want 3", stats.Dividends)
	}
	if stats.Scored != 3 {
		t.Errorf("Scored = %d, want 3", stats.Scored)
	}
	koID := st.tickers["KO"]
	if got := len(st.dividends[koID]); got != 2 {
		t.Errorf("KO dividends stored = %d, want 2", got)
	}
	if st.prices[koID] != 25 {
		t.Errorf("KO daily prices stored = %d, want 25", st.prices[koID])
	}
}

func TestBackfillSkipsUnscreenableTickers(t *testing.T) {
	source := &fakeBulkSource{records: []models.RawDividend{
		{Ticker: "SIXGF", CashAmount: 0.10, ExDividendDate: "2026-05-01"}, // OTC heuristic
		{Ticker: "NOQUO", CashAmount: 0.10, ExDividendDate: "2026-05-01"}, // no quote
		{Ticker: "KO", CashAmount: 0.46, ExDividendDate: "2026-05-01"},
	}}
	market := &fakeMarket{
		quotes: map[string]models.MarketInfo{
			"KO": listedQuote("Coca-Cola", 60.00),
		},
		history: map[string][]models.PriceBar{
			"KO": flatHistory(models.NewDate(2026, 8, 1), 25, 60.00),
		},
	}
	st := newFakeStore()

	b := New(Options{
		Source: source,
		Market: market,
		Store:  st,
		Filter: models.DefaultFilterConfig(),
		Logger: zerolog.Nop(),
	})
	stats, err := b.Run(context.Background(), models.NewDate(2026, 1, 1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.TickersStored != 1 || stats.TickersSkipped != 2 {
		t.Errorf("tickers stored/skipped = %d/%d, want 1/2", stats.TickersStored, stats.TickersSkipped)
	}
	if _, ok := st.tickers["SIXGF"]; ok {
		t.Error("OTC-heuristic symbol reached the store")
	}
	if _, ok := st.tickers["NOQUO"]; ok {
		t.Error("quoteless symbol reached the store")
	}
}

func TestBackfillWithoutHistorySkipsScoring(t *testing.T) {
	source := &fakeBulkSource{records: []models.RawDividend{
		{Ticker: "KO", CashAmount: 0.46, ExDividendDate: "2026-05-01"},
	}}
	market := &fakeMarket{
		quotes: map[string]models.MarketInfo{
			"KO": listedQuote("Coca-Cola", 60.00),
		},
		// No history entry: History returns an error for KO.
	}
	st := newFakeStore()

	b := New(Options{
		Source: source,
		Market: market,
		Store:  st,
		Filter: models.DefaultFilterConfig(),
		Logger: zerolog.Nop(),
	})
	stats, err := b.Run(context.Background(), models.NewDate(2026, 1, 1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Dividends != 1 {
		t.Errorf("Dividends = %d, want 1", stats.Dividends)
	}
	if stats.Scored != 0 {
		t.Errorf("Scored = %d, want 0 without price history", stats.Scored)
	}
}

func TestBackfillDedupesRepeatedRecords(t *testing.T) {
	source := &fakeBulkSource{records: []models.RawDividend{
		{Ticker: "ko", CashAmount: 0.46, ExDividendDate: "2026-05-01"},
		{Ticker: "KO", CashAmount: 0.47, ExDividendDate: "2026-05-01"},
	}}
	market := &fakeMarket{
		quotes: map[string]models.MarketInfo{
			"KO": listedQuote("Coca-Cola", 60.00),
		},
		history: map[string][]models.PriceBar{
			"KO": flatHistory(models.NewDate(2026, 8, 1), 25, 60.00),
		},
	}
	st := newFakeStore()

	b := New(Options{
		Source: source,
		Market: market,
		Store:  st,
		Filter: models.DefaultFilterConfig(),
		Logger: zerolog.Nop(),
	})
	stats, err := b.Run(context.Background(), models.NewDate(2026, 1, 1))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Dividends != 1 {
		t.Errorf("Dividends = %d, want 1 after dedupe", stats.Dividends)
	}
}

func TestBackfillAbortsOnSourceError(t *testing.T) {
	srcErr := errors.New("upstream down")
	b := New(Options{
		Source: &fakeBulkSource{err: srcErr},
		Market: &fakeMarket{},
		Store:  newFakeStore(),
		Filter: models.DefaultFilterConfig(),
		Logger: zerolog.Nop(),
	})
	_, err := b.Run(context.Background(), models.NewDate(2026, 1, 1))
	if !errors.Is(err, srcErr) {
		t.Fatalf("expected source error to surface, got %v", err)
	}
}

func TestBackfillAbortsOnSchemaMismatch(t *testing.T) {
	st := newFakeStore()
	st.schemaErr = errors.New("schema drift")
	b := New(Options{
		Source: &fakeBulkSource{},
		Market: &fakeMarket{},
		Store:  st,
		Filter: models.DefaultFilterConfig(),
		Logger: zerolog.Nop(),
	})
	_, err := b.Run(context.Background(), models.NewDate(2026, 1, 1))
	if !errors.Is(err, st.schemaErr) {
		t.Fatalf("expected schema error to surface, got %v", err)
	}
}
