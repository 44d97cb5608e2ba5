package providers

import (
	"errors"
	"fmt"
)

// Error codes for provider failures. The screener maps these onto its scan
// report: catalog failures abort a scan, everything else degrades.
const (
	ErrCodeCatalogUnavailable = "catalog_unavailable"
	ErrCodeNetworkError       = "network_error"
	ErrCodeInvalidData        = "invalid_data"
	ErrCodeRateLimited        = "rate_limited"
	ErrCodeCircuitOpen        = "circuit_open"
)

// ErrCatalogUnavailable marks scan-aborting catalog failures. Callers match
// it with errors.Is.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// ProviderError is the typed outcome of a failed provider call.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Provider, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrCatalogUnavailable) match catalog failures
// without losing the underlying cause chain.
func (e *ProviderError) Is(target error) bool {
	return target == ErrCatalogUnavailable && e.Code == ErrCodeCatalogUnavailable
}

// newError builds a ProviderError wrapping an underlying cause.
func newError(provider, code, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Code: code, Message: message, Err: err}
}

// IsCatalogUnavailable reports whether err is (or wraps) a catalog failure.
func IsCatalogUnavailable(err error) bool {
	return errors.Is(err, ErrCatalogUnavailable)
}
