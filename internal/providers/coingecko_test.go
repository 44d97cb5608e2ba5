package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCoinGecko(t *testing.T, handler http.HandlerFunc) *CoinGeckoClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewCoinGeckoClient(CoinGeckoConfig{
		BaseURL: server.URL,
		RPS:     1000,
		Burst:   1000,
	})
}

func TestCoinGecko_Markets(t *testing.T) {
	client := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "volume_desc", r.URL.Query().Get("order"))
		assert.Equal(t, "250", r.URL.Query().Get("per_page"))
		w.Write([]byte(`[
			{"id": "bitcoin", "symbol": "btc", "name": "Bitcoin",
			 "market_cap": 850000000000, "total_volume": 25000000000,
			 "last_updated": "2024-06-01T12:00:00Z"},
			{"id": "newcoin", "symbol": "new", "name": "NewCoin",
			 "market_cap": null, "total_volume": 1000000,
			 "last_updated": "not a timestamp"}
		]`))
	})

	snapshot, err := client.Markets(context.Background())

	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	// Lowercase provider symbols line up with catalog identifiers.
	btc, ok := snapshot["BTCUSDT"]
	require.True(t, ok)
	assert.Equal(t, "bitcoin", btc.ID)
	assert.True(t, btc.MarketCapKnown)
	assert.Equal(t, 850000000000.0, btc.MarketCap)
	assert.Equal(t, 25000000000.0, btc.Volume24h)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), btc.LastUpdated)

	// Null cap stays unknown, unparseable timestamp stays zero.
	newcoin, ok := snapshot["NEWUSDT"]
	require.True(t, ok)
	assert.False(t, newcoin.MarketCapKnown)
	assert.True(t, newcoin.LastUpdated.IsZero())
}

func TestCoinGecko_MarketsRateLimited(t *testing.T) {
	client := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Markets(context.Background())

	require.Error(t, err)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeRateLimited, pe.Code)
}

func TestCoinGecko_MarketsInvalidPayload(t *testing.T) {
	client := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "unexpected shape"}`))
	})

	_, err := client.Markets(context.Background())

	require.Error(t, err)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeInvalidData, pe.Code)
}

func TestCoinGecko_MarketsServerError(t *testing.T) {
	client := newTestCoinGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Markets(context.Background())

	require.Error(t, err)
	assert.False(t, IsCatalogUnavailable(err))
}
