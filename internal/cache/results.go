package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"dividend-screener/internal/models"
)

// ResultCache is a durable store of previously screened dividend events,
// consulted before any network fetch. Events are keyed by
// (ticker, ex-dividend date); upserts are last-write-wins.
type ResultCache struct {
	path   string
	logger zerolog.Logger
}

// NewResultCache creates a result cache backed by the given CSV file.
func NewResultCache(path string, logger zerolog.Logger) *ResultCache {
	return &ResultCache{path: path, logger: logger}
}

// Load reads every cached event in stored order. A missing or corrupt
// file yields an empty slice, never an error.
func (c *ResultCache) Load() []models.DividendEvent {
	f, err := os.Open(c.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var events []*models.DividendEvent
	if err := gocsv.UnmarshalFile(f, &events); err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("Result cache unreadable, treating as empty")
		return nil
	}

	out := make([]models.DividendEvent, 0, len(events))
	for _, e := range events {
		if e.Ticker == "" || e.ExDividendDate.IsZero() {
			continue
		}
		out = append(out, *e)
	}
	return out
}

// Query returns the cached events whose ex-dividend date falls within
// [start, end] inclusive, in stored order.
func (c *ResultCache) Query(start, end models.Date) []models.DividendEvent {
	var out []models.DividendEvent
	for _, e := range c.Load() {
		if e.ExDividendDate.Between(start, end) {
			out = append(out, e)
		}
	}
	return out
}

// Upsert merges new events into the stored set, deduplicating on
// (ticker, ex-dividend date) with last-write-wins, and persists the full
// set. An empty input is a no-op.
func (c *ResultCache) Upsert(events []models.DividendEvent) error {
	if len(events) == 0 {
		return nil
	}

	existing := c.Load()
	index := make(map[models.EventKey]int, len(existing))
	for i, e := range existing {
		index[e.Key()] = i
	}

	merged := existing
	for _, e := range events {
		if i, ok := index[e.Key()]; ok {
			merged[i] = e
			continue
		}
		index[e.Key()] = len(merged)
		merged = append(merged, e)
	}

	return c.write(merged)
}

func (c *ResultCache) write(events []models.DividendEvent) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("writing result cache: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&events, f); err != nil {
		return fmt.Errorf("marshaling result cache: %w", err)
	}

	c.logger.Debug().Int("events", len(events)).Str("path", c.path).Msg("Result cache written")
	return nil
}
