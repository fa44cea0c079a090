// Package cache provides the on-disk caches consulted by the screening
// pipeline: a durable result cache and a time-boxed ignore list.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	"dividend-screener/internal/models"
	"dividend-screener/internal/ticker"
)

// IgnoreWindowDays is how long a rejected ticker stays suppressed.
const IgnoreWindowDays = 30

// IgnoreCache is an append-only denylist of recently rejected tickers.
// The file may accumulate multiple entries per ticker across runs; reads
// resolve duplicates by taking the most permissive (latest) expiry.
type IgnoreCache struct {
	path   string
	logger zerolog.Logger
}

// NewIgnoreCache creates an ignore cache backed by the given CSV file.
func NewIgnoreCache(path string, logger zerolog.Logger) *IgnoreCache {
	return &IgnoreCache{path: path, logger: logger}
}

// IgnoreSnapshot maps each ticker to its latest suppression expiry.
type IgnoreSnapshot map[string]models.Date

// IsIgnored reports whether the ticker is suppressed as of the given
// date. A ticker is ignored while its expiry is strictly in the future.
func (s IgnoreSnapshot) IsIgnored(symbol string, asOf models.Date) bool {
	until, ok := s[ticker.Normalize(symbol)]
	if !ok {
		return false
	}
	return asOf.Before(until)
}

// Load reads the ignore file and resolves duplicate entries to the
// maximum expiry per ticker. A missing or corrupt file yields an empty
// snapshot, never an error.
func (c *IgnoreCache) Load() IgnoreSnapshot {
	snapshot := make(IgnoreSnapshot)

	f, err := os.Open(c.path)
	if err != nil {
		return snapshot
	}
	defer f.Close()

	var entries []*models.IgnoreEntry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		c.logger.Warn().Err(err).Str("path", c.path).Msg("Ignore cache unreadable, treating as empty")
		return snapshot
	}

	for _, e := range entries {
		symbol := ticker.Normalize(e.Ticker)
		if symbol == "" {
			continue
		}
		if until, ok := snapshot[symbol]; !ok || until.Before(e.IgnoreUntil) {
			snapshot[symbol] = e.IgnoreUntil
		}
	}
	return snapshot
}

// Add appends a suppression entry expiring IgnoreWindowDays after now.
// The write is append-only; existing entries are never rewritten.
func (c *IgnoreCache) Add(symbol string, now models.Date) error {
	symbol = ticker.Normalize(symbol)
	if symbol == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	_, statErr := os.Stat(c.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening ignore cache: %w", err)
	}
	defer f.Close()

	if writeHeader {
		if _, err := f.WriteString("Ticker,IgnoreUntil\n"); err != nil {
			return fmt.Errorf("writing ignore cache header: %w", err)
		}
	}

	until := now.AddDays(IgnoreWindowDays)
	if _, err := fmt.Fprintf(f, "%s,%s\n", symbol, until); err != nil {
		return fmt.Errorf("appending ignore entry: %w", err)
	}

	c.logger.Debug().
		Str("ticker", symbol).
		Str("ignore_until", until.String()).
		Msg("Ticker added to ignore cache")
	return nil
}
