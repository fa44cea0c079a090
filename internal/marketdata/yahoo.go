package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	apperrors "dividend-screener/internal/errors"
	"dividend-screener/internal/models"
	"dividend-screener/internal/ticker"
	"dividend-screener/pkg/utils"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient implements Source against the Yahoo Finance quote API.
type YahooClient struct {
	baseURL    string
	httpClient *http.Client
	retry      utils.RetryConfig
	logger     zerolog.Logger
}

// YahooConfig holds client configuration.
type YahooConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Retry      *utils.RetryConfig
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(cfg YahooConfig, logger zerolog.Logger) *YahooClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultYahooBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	retry := utils.DefaultRetryConfig()
	retry.MaxAttempts = 2
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}
	return &YahooClient{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		retry:      retry,
		logger:     logger,
	}
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				ShortName          string   `json:"shortName"`
				QuoteType          string   `json:"quoteType"`
				Market             string   `json:"market"`
				MarketCap          rawValue `json:"marketCap"`
			} `json:"price"`
			AssetProfile struct {
				LongBusinessSummary string `json:"longBusinessSummary"`
			} `json:"assetProfile"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// Quote fetches the metadata bag for a ticker. Missing fields come back
// as zero values.
func (c *YahooClient) Quote(ctx context.Context, symbol string) (models.MarketInfo, error) {
	symbol = ticker.Normalize(symbol)
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,assetProfile",
		c.baseURL, url.PathEscape(symbol))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return models.MarketInfo{}, err
	}

	var parsed quoteSummaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.MarketInfo{}, apperrors.NewTransportError("yahoo", endpoint, err)
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return models.MarketInfo{}, apperrors.Wrapf(apperrors.ErrDataNotFound, "no quote for %s", symbol)
	}

	r := parsed.QuoteSummary.Result[0]
	return models.MarketInfo{
		Symbol:          symbol,
		Name:            r.Price.ShortName,
		Price:           r.Price.RegularMarketPrice.Raw,
		Market:          r.Price.Market,
		QuoteType:       r.Price.QuoteType,
		BusinessSummary: r.AssetProfile.LongBusinessSummary,
		MarketCap:       r.Price.MarketCap.Raw,
	}, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// History fetches up to days of daily closing prices, oldest first.
func (c *YahooClient) History(ctx context.Context, symbol string, days int) ([]models.PriceBar, error) {
	symbol = ticker.Normalize(symbol)
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d",
		c.baseURL, url.PathEscape(symbol), days)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewTransportError("yahoo", endpoint, err)
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "no price history for %s", symbol)
	}

	r := parsed.Chart.Result[0]
	closes := r.Indicators.Quote[0].Close

	bars := make([]models.PriceBar, 0, len(closes))
	for i, px := range closes {
		if i >= len(r.Timestamp) || px <= 0 {
			continue
		}
		bars = append(bars, models.PriceBar{
			Date:  models.DateOf(time.Unix(r.Timestamp[i], 0).UTC()),
			Close: px,
		})
	}
	return bars, nil
}

func (c *YahooClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	return utils.RetryWithResult(ctx, c.retry, func() ([]byte, error) {
		return c.getOnce(ctx, endpoint)
	})
}

func (c *YahooClient) getOnce(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewTransportError("yahoo", endpoint, err)
	}
	req.Header.Set("User-Agent", "dividend-screener/0.1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTransportError("yahoo", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewTransportError("yahoo", endpoint,
			fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTransportError("yahoo", endpoint, err)
	}
	return body, nil
}
