// Package marketdata provides best-effort market metadata lookup for
// individual tickers.
package marketdata

import (
	"context"

	"dividend-screener/internal/models"
)

// Source provides live market metadata and recent price history.
// Implementations are best-effort: any missing field degrades to its
// zero value and the screening pipeline treats it as grounds for
// exclusion rather than a hard error.
type Source interface {
	// Quote returns the metadata bag for a ticker.
	Quote(ctx context.Context, symbol string) (models.MarketInfo, error)

	// History returns up to days of daily closing prices, oldest first.
	History(ctx context.Context, symbol string, days int) ([]models.PriceBar, error)
}
