// Package polygon provides the client for the upcoming-dividends
// reference source.
package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	apperrors "dividend-screener/internal/errors"
	"dividend-screener/internal/models"
)

const (
	defaultBaseURL = "https://api.polygon.io"
	defaultLimit   = 250
	backfillLimit  = 1000

	// Provider quota handling: a 429 pauses the whole fetch for a
	// minute, and successive backfill pages are spaced out.
	defaultRateLimitWait = 60 * time.Second
	defaultPageDelay     = 13 * time.Second
)

// Config holds client configuration.
type Config struct {
	APIKey        string
	BaseURL       string
	HTTPClient    *http.Client
	RateLimitWait time.Duration
	PageDelay     time.Duration
}

// Client handles communication with the dividends reference API.
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	rateLimitWait time.Duration
	pageDelay     time.Duration
	logger        zerolog.Logger
}

// NewClient creates a new dividends API client.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.RateLimitWait == 0 {
		cfg.RateLimitWait = defaultRateLimitWait
	}
	if cfg.PageDelay == 0 {
		cfg.PageDelay = defaultPageDelay
	}
	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		httpClient:    cfg.HTTPClient,
		rateLimitWait: cfg.RateLimitWait,
		pageDelay:     cfg.PageDelay,
		logger:        logger,
	}
}

type dividendsResponse struct {
	Results []models.RawDividend `json:"results"`
	NextURL string               `json:"next_url"`
}

// UpcomingDividends fetches dividend events whose ex-dividend date falls
// in [start, end] inclusive. A single page covers the screening window.
func (c *Client) UpcomingDividends(ctx context.Context, start, end models.Date) ([]models.RawDividend, error) {
	params := url.Values{}
	params.Set("ex_dividend_date.gte", start.String())
	params.Set("ex_dividend_date.lte", end.String())
	params.Set("limit", strconv.Itoa(defaultLimit))

	resp, err := c.fetchPage(ctx, params)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AllDividendsSince fetches every dividend event with an ex-dividend
// date on or after since, following pagination cursors. A rate-limit
// response pauses and retries the same page; any other page failure
// returns the pages collected so far. Successive pages are separated by
// a fixed delay to stay under provider quota.
func (c *Client) AllDividendsSince(ctx context.Context, since models.Date) ([]models.RawDividend, error) {
	params := url.Values{}
	params.Set("ex_dividend_date.gte", since.String())
	params.Set("order", "asc")
	params.Set("limit", strconv.Itoa(backfillLimit))

	var all []models.RawDividend
	for {
		resp, err := c.fetchPage(ctx, params)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrRateLimited) {
				c.logger.Warn().Dur("wait", c.rateLimitWait).Msg("Rate limited, pausing before retry")
				if err := sleepCtx(ctx, c.rateLimitWait); err != nil {
					return all, err
				}
				continue
			}
			c.logger.Error().Err(err).Int("fetched", len(all)).Msg("Page fetch failed, stopping pagination")
			return all, nil
		}

		all = append(all, resp.Results...)
		c.logger.Debug().Int("total", len(all)).Msg("Dividend page fetched")

		if resp.NextURL == "" {
			return all, nil
		}

		cursor, err := extractCursor(resp.NextURL)
		if err != nil {
			c.logger.Error().Err(err).Str("next_url", resp.NextURL).Msg("Unparseable pagination cursor, stopping")
			return all, nil
		}
		params.Set("cursor", cursor)

		if err := sleepCtx(ctx, c.pageDelay); err != nil {
			return all, err
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, params url.Values) (*dividendsResponse, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("apiKey", c.apiKey)

	endpoint := fmt.Sprintf("%s/v3/reference/dividends?%s", c.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewTransportError("polygon", "/v3/reference/dividends", err)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError("polygon", "/v3/reference/dividends", err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("Dividends API call")

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewTransportError("polygon", "/v3/reference/dividends",
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError("polygon", "/v3/reference/dividends", err)
	}

	var parsed dividendsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewTransportError("polygon", "/v3/reference/dividends", err)
	}
	return &parsed, nil
}

// extractCursor pulls the pagination cursor out of a next-page URL.
func extractCursor(nextURL string) (string, error) {
	u, err := url.Parse(nextURL)
	if err != nil {
		return "", err
	}
	cursor := u.Query().Get("cursor")
	if cursor == "" {
		return "", fmt.Errorf("next_url missing cursor parameter")
	}
	return cursor, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
