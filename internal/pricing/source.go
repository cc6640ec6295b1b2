package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// Source fetches current reference prices keyed by asset symbol.
type Source interface {
	Fetch(ctx context.Context) (map[string]decimal.Decimal, error)
}

// DefaultFeedURL is the CoinGecko simple-price endpoint.
const DefaultFeedURL = "https://api.coingecko.com/api/v3/simple/price"

// DefaultFetchTimeout bounds a single feed request.
const DefaultFetchTimeout = 5 * time.Second

// CoinGeckoSource pulls BTC and ETH prices in USD from the CoinGecko
// simple-price API. USDT is pinned to 1: the quote asset is treated as the
// unit of account.
type CoinGeckoSource struct {
	client *http.Client
	url    string
}

// NewCoinGeckoSource builds a price feed client with a bounded request
// timeout.
func NewCoinGeckoSource(feedURL string, timeout time.Duration) *CoinGeckoSource {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &CoinGeckoSource{
		client: &http.Client{Timeout: timeout},
		url:    feedURL,
	}
}

func (s *CoinGeckoSource) Fetch(ctx context.Context) (map[string]decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", "bitcoin,ethereum")
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price feed returned status %d", resp.StatusCode)
	}

	var payload map[string]struct {
		USD decimal.Decimal `json:"usd"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}

	return map[string]decimal.Decimal{
		"BTC":  payload["bitcoin"].USD,
		"ETH":  payload["ethereum"].USD,
		"USDT": decimal.NewFromInt(1),
	}, nil
}
