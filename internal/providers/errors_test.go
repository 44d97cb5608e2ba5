package providers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderError_CatalogUnavailableMatching(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := newError("binance", ErrCodeCatalogUnavailable, "exchange info failed", cause)

	assert.True(t, IsCatalogUnavailable(err))
	assert.True(t, errors.Is(err, ErrCatalogUnavailable))
	// The cause chain survives alongside the sentinel match.
	assert.True(t, errors.Is(err, cause))
}

func TestProviderError_OtherCodesDoNotMatchSentinel(t *testing.T) {
	for _, code := range []string{
		ErrCodeNetworkError, ErrCodeInvalidData, ErrCodeRateLimited, ErrCodeCircuitOpen,
	} {
		err := newError("binance", code, "boom", nil)
		assert.False(t, IsCatalogUnavailable(err), "code %s", code)
	}
}

func TestProviderError_MatchesThroughWrapping(t *testing.T) {
	err := newError("binance", ErrCodeCatalogUnavailable, "exchange info failed", nil)
	wrapped := fmt.Errorf("scan abc: %w", err)

	assert.True(t, IsCatalogUnavailable(wrapped))

	var pe *ProviderError
	require.ErrorAs(t, wrapped, &pe)
	assert.Equal(t, "binance", pe.Provider)
}

func TestProviderError_ErrorString(t *testing.T) {
	withCause := newError("coingecko", ErrCodeNetworkError, "request failed", errors.New("timeout"))
	assert.Equal(t, "coingecko: network_error: request failed: timeout", withCause.Error())

	bare := newError("coingecko", ErrCodeRateLimited, "rate limited by provider", nil)
	assert.Equal(t, "coingecko: rate_limited: rate limited by provider", bare.Error())
}

func TestBreaker_TripsOnConsecutiveFailures(t *testing.T) {
	b := NewBreaker("test")
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := b.Execute(func() (any, error) { return nil, boom })
		require.Error(t, err)
	}

	assert.True(t, b.Open())
	_, err := b.Execute(func() (any, error) { return "unreachable", nil })
	assert.Error(t, err)
}

func TestBreaker_StaysClosedOnSuccess(t *testing.T) {
	b := NewBreaker("test")

	for i := 0; i < 10; i++ {
		result, err := b.Execute(func() (any, error) { return 42, nil })
		require.NoError(t, err)
		assert.Equal(t, 42, result)
	}

	assert.False(t, b.Open())
}

func TestBreaker_SuccessResetsConsecutiveCount(t *testing.T) {
	b := NewBreaker("test")
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, _ = b.Execute(func() (any, error) { return nil, boom })
	}
	_, err := b.Execute(func() (any, error) { return nil, nil })
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, _ = b.Execute(func() (any, error) { return nil, boom })
	}

	assert.False(t, b.Open())
}
