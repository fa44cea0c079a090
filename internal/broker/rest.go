package broker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "dividend-screener/internal/errors"
	"dividend-screener/internal/ticker"
)

const defaultBrokerBaseURL = "https://api.robinhood.com"

// RESTSession implements Session against a brokerage REST API. It must
// be logged in before tradability checks return anything but false.
type RESTSession struct {
	baseURL    string
	httpClient *http.Client
	username   string
	password   string
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// RESTConfig holds session configuration.
type RESTConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Username   string
	Password   string
}

// NewRESTSession creates a new brokerage session. The session starts
// unauthenticated; call Login to obtain a token.
func NewRESTSession(cfg RESTConfig, logger zerolog.Logger) *RESTSession {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBrokerBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &RESTSession{
		baseURL:    cfg.BaseURL,
		httpClient: cfg.HTTPClient,
		username:   cfg.Username,
		password:   cfg.Password,
		logger:     logger,
	}
}

// Login authenticates with the brokerage and stores the session token.
func (s *RESTSession) Login(ctx context.Context) error {
	if s.username == "" || s.password == "" {
		return apperrors.ErrNotAuthenticated
	}

	payload, err := json.Marshal(map[string]string{
		"username": s.username,
		"password": s.password,
	})
	if err != nil {
		return err
	}

	endpoint := s.baseURL + "/api-token-auth/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewTransportError("broker", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransportError("broker", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.Wrapf(apperrors.ErrNotAuthenticated, "login failed with status %d", resp.StatusCode)
	}

	var parsed struct {
		Token string `json:"token"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewTransportError("broker", endpoint, err)
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apperrors.NewTransportError("broker", endpoint, err)
	}
	if parsed.Token == "" {
		return apperrors.ErrNotAuthenticated
	}

	s.mu.Lock()
	s.token = parsed.Token
	s.mu.Unlock()

	s.logger.Info().Msg("Broker session authenticated")
	return nil
}

// IsAuthenticated reports whether a login has succeeded.
func (s *RESTSession) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// IsTradable looks the symbol up in the brokerage instrument catalog.
// Any error, including an unauthenticated session, means not tradable.
func (s *RESTSession) IsTradable(ctx context.Context, symbol string) bool {
	if !s.IsAuthenticated() {
		return false
	}
	symbol = ticker.Normalize(symbol)

	endpoint := fmt.Sprintf("%s/instruments/?symbol=%s", s.baseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}

	s.mu.RLock()
	req.Header.Set("Authorization", "Token "+s.token)
	s.mu.RUnlock()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug().Err(err).Str("ticker", symbol).Msg("Tradability check failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var parsed struct {
		Results []struct {
			Symbol    string `json:"symbol"`
			Tradeable bool   `json:"tradeable"`
		} `json:"results"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false
	}

	for _, r := range parsed.Results {
		if ticker.Normalize(r.Symbol) == symbol && r.Tradeable {
			return true
		}
	}
	return false
}
