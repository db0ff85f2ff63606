package pricefeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"steem-curation-lab/internal/domain"
)

// HTTPFetcher retrieves closed daily candles from the market-data REST
// endpoint. The endpoint answers GET <base>?date=YYYY-MM-DD with the
// same JSON candle the websocket feed streams.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher against the given base URL.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Compile-time interface check.
var _ Fetcher = (*HTTPFetcher)(nil)

// Fetch retrieves the candle for one closed UTC day.
func (f *HTTPFetcher) Fetch(ctx context.Context, day time.Time) (*domain.PriceTick, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse price history url: %w", err)
	}
	q := u.Query()
	q.Set("date", domain.Day(day).Format("2006-01-02"))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build price history request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch price history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price history endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("read price history response: %w", err)
	}
	return parseTick(body)
}
