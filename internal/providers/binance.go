package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jarair9/Crypto-screener/internal/domain"
	"github.com/jarair9/Crypto-screener/internal/net/ratelimit"
)

// leveragedTokenPatterns are identifier substrings that mark leveraged or
// derivative products. Instruments matching any of them are excluded from
// the catalog.
var leveragedTokenPatterns = []string{"UP", "DOWN", "BULL", "BEAR"}

// BinanceConfig configures the catalog and time-series client.
type BinanceConfig struct {
	BaseURL        string
	QuoteAsset     string // catalog keeps only pairs quoted in this asset
	RequestTimeout time.Duration
	RPS            float64
	Burst          int
}

// BinanceClient serves two provider roles: the instrument catalog
// (exchangeInfo) and OHLCV history (klines).
type BinanceClient struct {
	config  BinanceConfig
	host    string
	client  *http.Client
	limiter *ratelimit.Limiter
	breaker *Breaker
}

type binanceExchangeInfo struct {
	Symbols []binanceSymbol `json:"symbols"`
}

type binanceSymbol struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	QuoteAsset string `json:"quoteAsset"`
}

// NewBinanceClient creates a Binance client with rate limiting and circuit
// breaking applied to every call.
func NewBinanceClient(config BinanceConfig) *BinanceClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.binance.com"
	}
	if config.QuoteAsset == "" {
		config.QuoteAsset = "USDT"
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = 8 * time.Second
	}
	if config.RPS <= 0 {
		config.RPS = 10
	}
	if config.Burst <= 0 {
		config.Burst = 20
	}

	return &BinanceClient{
		config:  config,
		host:    hostFromBaseURL(config.BaseURL, "api.binance.com"),
		client:  &http.Client{Timeout: config.RequestTimeout},
		limiter: ratelimit.NewLimiter(config.RPS, config.Burst),
		breaker: NewBreaker("binance"),
	}
}

// TradableInstruments returns the catalog snapshot: every actively trading
// pair quoted in the configured asset whose identifier matches no leveraged
// token pattern. A malformed response (missing symbols) is a catalog failure,
// not an empty catalog.
func (c *BinanceClient) TradableInstruments(ctx context.Context) ([]domain.InstrumentID, error) {
	url := fmt.Sprintf("%s/api/v3/exchangeInfo", c.config.BaseURL)

	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, newError("binance", ErrCodeCatalogUnavailable, "rate limiter wait aborted", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetchExchangeInfo(ctx, url)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Binance exchange info request failed")
		if pe, ok := err.(*ProviderError); ok {
			return nil, pe
		}
		return nil, newError("binance", ErrCodeCatalogUnavailable, "exchange info call rejected", err)
	}

	info := result.(*binanceExchangeInfo)
	instruments := make([]domain.InstrumentID, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.QuoteAsset != c.config.QuoteAsset || s.Status != "TRADING" {
			continue
		}
		if isLeveragedToken(s.Symbol) {
			continue
		}
		instruments = append(instruments, domain.InstrumentID(s.Symbol))
	}

	sort.Slice(instruments, func(i, j int) bool { return instruments[i] < instruments[j] })

	log.Debug().
		Int("total", len(info.Symbols)).
		Int("kept", len(instruments)).
		Str("quote", c.config.QuoteAsset).
		Msg("Binance catalog snapshot retrieved")

	return instruments, nil
}

func (c *BinanceClient) fetchExchangeInfo(ctx context.Context, url string) (*binanceExchangeInfo, error) {
	body, err := c.get(ctx, url, ErrCodeCatalogUnavailable)
	if err != nil {
		return nil, err
	}

	// Probe for the expected structure first: a response without a "symbols"
	// key is malformed, which must surface as CatalogUnavailable rather than
	// silently yielding an empty universe.
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, newError("binance", ErrCodeCatalogUnavailable, "failed to parse exchange info", err)
	}
	rawSymbols, ok := probe["symbols"]
	if !ok {
		return nil, newError("binance", ErrCodeCatalogUnavailable, "exchange info missing symbols", nil)
	}

	var symbols []binanceSymbol
	if err := json.Unmarshal(rawSymbols, &symbols); err != nil {
		return nil, newError("binance", ErrCodeCatalogUnavailable, "failed to parse symbols", err)
	}

	return &binanceExchangeInfo{Symbols: symbols}, nil
}

// Klines returns the most recent OHLCV bars for one instrument, oldest first.
// A malformed or empty response is no data, never a panic.
func (c *BinanceClient) Klines(ctx context.Context, id domain.InstrumentID, interval string, limit int) ([]domain.OhlcvBar, error) {
	url := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=%s&limit=%d",
		c.config.BaseURL, id, interval, limit)

	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, newError("binance", ErrCodeRateLimited, "rate limiter wait aborted", err)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetchKlines(ctx, url)
	})
	if err != nil {
		if pe, ok := err.(*ProviderError); ok {
			return nil, pe
		}
		return nil, newError("binance", ErrCodeCircuitOpen, "klines call rejected", err)
	}

	return result.([]domain.OhlcvBar), nil
}

func (c *BinanceClient) fetchKlines(ctx context.Context, url string) ([]domain.OhlcvBar, error) {
	body, err := c.get(ctx, url, ErrCodeNetworkError)
	if err != nil {
		return nil, err
	}

	// Each kline row is a mixed-type array:
	// [openTime, open, high, low, close, volume, closeTime, ...]
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, newError("binance", ErrCodeInvalidData, "failed to parse klines", err)
	}

	bars := make([]domain.OhlcvBar, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}

		var openTimeMs int64
		if err := json.Unmarshal(row[0], &openTimeMs); err != nil {
			continue
		}

		fields := make([]float64, 5)
		valid := true
		for i := 0; i < 5; i++ {
			var s string
			if err := json.Unmarshal(row[i+1], &s); err != nil {
				valid = false
				break
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				valid = false
				break
			}
			fields[i] = v
		}
		if !valid {
			continue
		}

		bars = append(bars, domain.OhlcvBar{
			OpenTime: time.Unix(openTimeMs/1000, (openTimeMs%1000)*int64(time.Millisecond)),
			Open:     fields[0],
			High:     fields[1],
			Low:      fields[2],
			Close:    fields[3],
			Volume:   fields[4],
		})
	}

	return bars, nil
}

// get performs a GET and returns the raw body, with network and status
// failures mapped to the given error code.
func (c *BinanceClient) get(ctx context.Context, url, failCode string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, newError("binance", failCode, "failed to build request", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newError("binance", failCode, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, newError("binance", ErrCodeRateLimited, "rate limited by provider", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, newError("binance", failCode,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError("binance", failCode, "failed to read response", err)
	}

	return body, nil
}

func isLeveragedToken(symbol string) bool {
	for _, pattern := range leveragedTokenPatterns {
		if strings.Contains(symbol, pattern) {
			return true
		}
	}
	return false
}
