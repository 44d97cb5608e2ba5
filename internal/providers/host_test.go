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

func TestHostFromBaseURL(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"production url", "https://api.binance.com", "api.binance.com"},
		{"url with path", "https://api.coingecko.com/api/v3", "api.coingecko.com"},
		{"override with port", "http://127.0.0.1:9912", "127.0.0.1:9912"},
		{"no host", "not a url", "fallback.example.com"},
		{"empty", "", "fallback.example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hostFromBaseURL(tc.baseURL, "fallback.example.com"))
		})
	}
}

func TestBinance_LimiterThrottlesConfiguredHost(t *testing.T) {
	handled := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled++
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)
	client := NewBinanceClient(BinanceConfig{
		BaseURL: server.URL,
		RPS:     0.001,
		Burst:   1,
	})

	_, err := client.Klines(context.Background(), "BTCUSDT", "1h", 1)
	require.NoError(t, err)
	require.Equal(t, 1, handled)

	// The only token is spent; the next call must block on the limiter keyed
	// by the test server's host and abort with the context.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Klines(ctx, "BTCUSDT", "1h", 1)

	require.Error(t, err)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrCodeRateLimited, pe.Code)
	assert.Equal(t, 1, handled)
}
