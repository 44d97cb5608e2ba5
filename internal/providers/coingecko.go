package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jarair9/Crypto-screener/internal/domain"
	"github.com/jarair9/Crypto-screener/internal/net/ratelimit"
)

// CoinGeckoConfig configures the reference-data client.
type CoinGeckoConfig struct {
	BaseURL        string
	QuoteSuffix    string // appended uppercase to the provider symbol, e.g. "USDT"
	PerPage        int
	RequestTimeout time.Duration
	RPS            float64
	Burst          int
}

// CoinGeckoClient fetches the bulk instrument listing ordered by trading
// volume. One page of up to 250 entries is all the screener needs.
type CoinGeckoClient struct {
	config  CoinGeckoConfig
	host    string
	client  *http.Client
	limiter *ratelimit.Limiter
	breaker *Breaker
}

// geckoMarket mirrors one entry of the /coins/markets response. MarketCap is
// a pointer because the provider reports null for unknown caps.
type geckoMarket struct {
	ID          string   `json:"id"`
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	MarketCap   *float64 `json:"market_cap"`
	TotalVolume float64  `json:"total_volume"`
	LastUpdated string   `json:"last_updated"`
}

// NewCoinGeckoClient creates a reference-data client with rate limiting and
// circuit breaking applied to every call.
func NewCoinGeckoClient(config CoinGeckoConfig) *CoinGeckoClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if config.QuoteSuffix == "" {
		config.QuoteSuffix = "USDT"
	}
	if config.PerPage <= 0 || config.PerPage > 250 {
		config.PerPage = 250
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 8 * time.Second
	}
	if config.RPS <= 0 {
		config.RPS = 2
	}
	if config.Burst <= 0 {
		config.Burst = 2
	}

	return &CoinGeckoClient{
		config:  config,
		host:    hostFromBaseURL(config.BaseURL, "api.coingecko.com"),
		client:  &http.Client{Timeout: config.RequestTimeout},
		limiter: ratelimit.NewLimiter(config.RPS, config.Burst),
		breaker: NewBreaker("coingecko"),
	}
}

// Markets returns the reference-data snapshot keyed by normalized instrument
// id. The provider symbol is uppercased and suffixed with the quote asset so
// it lines up with catalog identifiers.
func (c *CoinGeckoClient) Markets(ctx context.Context) (map[domain.InstrumentID]domain.InstrumentMetadata, error) {
	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=volume_desc&per_page=%d&page=1&sparkline=false",
		c.config.BaseURL, c.config.PerPage)

	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, newError("coingecko", ErrCodeRateLimited, "rate limiter wait aborted", err)
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetchMarkets(ctx, url)
	})
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("CoinGecko markets request failed")
		if pe, ok := err.(*ProviderError); ok {
			return nil, pe
		}
		return nil, newError("coingecko", ErrCodeCircuitOpen, "markets call rejected", err)
	}

	markets := result.([]geckoMarket)
	snapshot := make(map[domain.InstrumentID]domain.InstrumentMetadata, len(markets))
	for _, m := range markets {
		normalized := strings.ToUpper(m.Symbol) + c.config.QuoteSuffix
		meta := domain.InstrumentMetadata{
			ID:               m.ID,
			SymbolNormalized: normalized,
			Name:             m.Name,
			Volume24h:        m.TotalVolume,
		}
		if m.MarketCap != nil {
			meta.MarketCap = *m.MarketCap
			meta.MarketCapKnown = true
		}
		if ts, err := time.Parse(time.RFC3339, m.LastUpdated); err == nil {
			meta.LastUpdated = ts
		}
		snapshot[domain.InstrumentID(normalized)] = meta
	}

	log.Debug().
		Int("markets", len(markets)).
		Dur("duration", time.Since(start)).
		Msg("CoinGecko markets snapshot retrieved")

	return snapshot, nil
}

func (c *CoinGeckoClient) fetchMarkets(ctx context.Context, url string) ([]geckoMarket, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newError("coingecko", ErrCodeNetworkError, "failed to build request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newError("coingecko", ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, newError("coingecko", ErrCodeRateLimited, "rate limited by provider", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError("coingecko", ErrCodeNetworkError,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var markets []geckoMarket
	if err := json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, newError("coingecko", ErrCodeInvalidData, "failed to decode markets", err)
	}

	return markets, nil
}
