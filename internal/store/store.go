// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"dividend-screener/internal/models"
)

// DataStore defines the interface for the durable persistence tier.
// Every write is an upsert on the row's natural key.
type DataStore interface {
	// Tickers
	UpsertTicker(ctx context.Context, symbol, name string) (int64, error)

	// Daily price history
	InsertDailyPrice(ctx context.Context, tickerID int64, bar models.PriceBar) error

	// Dividends, unique on (ticker, ex-date)
	UpsertDividend(ctx context.Context, tickerID int64, exDate models.Date, amount, yieldPct float64) error

	// Investment scores, unique on (ticker, ex-date)
	UpsertScore(ctx context.Context, tickerID int64, exDate models.Date, score float64, grade models.Grade) error

	// ScoredDividends returns upcoming dividends joined with their
	// scores, filtered by minimum yield, ordered by ex-date.
	ScoredDividends(ctx context.Context, minYield float64, start, end models.Date) ([]models.DividendEvent, error)

	// ValidateSchema verifies the store matches the expected schema.
	// A mismatch is fatal for maintenance commands.
	ValidateSchema(ctx context.Context) error

	// Lifecycle
	Close() error
}
