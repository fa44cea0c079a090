package polygon

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "dividend-screener/internal/errors"
	"dividend-screener/internal/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{
		APIKey:        "test-key",
		BaseURL:       server.URL,
		HTTPClient:    server.Client(),
		RateLimitWait: time.Millisecond,
		PageDelay:     time.Millisecond,
	}, zerolog.Nop())
}

func TestUpcomingDividends(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apiKey") != "test-key" {
			t.Errorf("missing apiKey, query = %v", q)
		}
		if q.Get("ex_dividend_date.gte") != "2026-09-01" || q.Get("ex_dividend_date.lte") != "2026-09-15" {
			t.Errorf("unexpected date window: %v", q)
		}
		fmt.Fprint(w, `{"results":[
			{"ticker":"AAPL","cash_amount":0.25,"ex_dividend_date":"2026-09-05"},
			{"ticker":"MSFT","cash_amount":0.75,"ex_dividend_date":"2026-09-10"}
		]}`)
	})

	start := models.NewDate(2026, time.September, 1)
	end := models.NewDate(2026, time.September, 15)

	got, err := c.UpcomingDividends(context.Background(), start, end)
	if err != nil {
		t.Fatalf("UpcomingDividends() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("UpcomingDividends() returned %d records, want 2", len(got))
	}
	if got[0].Ticker != "AAPL" || got[0].CashAmount != 0.25 {
		t.Errorf("unexpected first record: %+v", got[0])
	}
}

func TestUpcomingDividendsTransportError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.UpcomingDividends(context.Background(), models.Today(), models.Today().AddDays(14))
	if err == nil {
		t.Fatal("UpcomingDividends() error = nil, want transport error")
	}
	var transportErr *apperrors.TransportError
	if !apperrors.As(err, &transportErr) {
		t.Errorf("error = %v, want *TransportError", err)
	}
}

func TestAllDividendsSincePagination(t *testing.T) {
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch calls {
		case 1:
			if r.URL.Query().Get("cursor") != "" {
				t.Error("first page should not carry a cursor")
			}
			fmt.Fprint(w, `{"results":[{"ticker":"AAPL","cash_amount":0.25,"ex_dividend_date":"2024-01-05"}],
				"next_url":"https://api.polygon.io/v3/reference/dividends?cursor=abc123&limit=1000"}`)
		case 2:
			if got := r.URL.Query().Get("cursor"); got != "abc123" {
				t.Errorf("cursor = %q, want abc123", got)
			}
			fmt.Fprint(w, `{"results":[{"ticker":"MSFT","cash_amount":0.75,"ex_dividend_date":"2024-02-05"}]}`)
		default:
			t.Errorf("unexpected extra page request %d", calls)
		}
	})

	got, err := c.AllDividendsSince(context.Background(), models.NewDate(2024, time.January, 1))
	if err != nil {
		t.Fatalf("AllDividendsSince() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("AllDividendsSince() returned %d records, want 2", len(got))
	}
	if got[1].Ticker != "MSFT" {
		t.Errorf("second record = %+v, want MSFT", got[1])
	}
}

func TestAllDividendsSinceRateLimitRetries(t *testing.T) {
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"results":[{"ticker":"AAPL","cash_amount":0.25,"ex_dividend_date":"2024-01-05"}]}`)
	})

	got, err := c.AllDividendsSince(context.Background(), models.NewDate(2024, time.January, 1))
	if err != nil {
		t.Fatalf("AllDividendsSince() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("made %d calls, want 2 (retry after 429)", calls)
	}
	if len(got) != 1 {
		t.Errorf("returned %d records, want 1", len(got))
	}
}

func TestAllDividendsSincePageFailureKeepsEarlierPages(t *testing.T) {
	var calls int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"results":[{"ticker":"AAPL","cash_amount":0.25,"ex_dividend_date":"2024-01-05"}],
				"next_url":"https://api.polygon.io/v3/reference/dividends?cursor=abc123"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	got, err := c.AllDividendsSince(context.Background(), models.NewDate(2024, time.January, 1))
	if err != nil {
		t.Fatalf("AllDividendsSince() error = %v, want nil (soft stop)", err)
	}
	if len(got) != 1 {
		t.Errorf("returned %d records, want the 1 record fetched before the failure", len(got))
	}
}
