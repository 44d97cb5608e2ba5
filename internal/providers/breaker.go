package providers

import (
	"time"

	cb "github.com/sony/gobreaker"
)

// Breaker wraps a circuit breaker around one provider's calls. It trips on
// three consecutive failures or a >5% failure rate over at least 20 requests.
type Breaker struct {
	cb *cb.CircuitBreaker
}

// NewBreaker creates a breaker for the named provider.
func NewBreaker(name string) *Breaker {
	st := cb.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Execute runs fn under the breaker.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	return b.cb.Execute(fn)
}

// Open reports whether the circuit is currently open.
func (b *Breaker) Open() bool {
	return b.cb.State() == cb.StateOpen
}
