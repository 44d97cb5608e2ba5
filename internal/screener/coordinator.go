package screener

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jarair9/Crypto-screener/internal/domain"
	"github.com/jarair9/Crypto-screener/internal/telemetry/metrics"
)

// SeriesSource supplies recent OHLCV history for one instrument.
type SeriesSource interface {
	Klines(ctx context.Context, id domain.InstrumentID, interval string, limit int) ([]domain.OhlcvBar, error)
}

// Default fan-out parameters. Concurrency is bounded to respect provider
// rate limits; each fetch carries its own timeout so a stalled call cannot
// hold a worker forever.
const (
	DefaultWorkers      = 30
	DefaultBarCount     = 200
	DefaultFetchTimeout = 8 * time.Second
)

// ScanStats aggregates the per-instrument failures of one scan.
type ScanStats struct {
	FetchFailures      int `json:"fetch_failures"`
	IndicatorUndefined int `json:"indicator_undefined"`
}

// Failures is the total number of instruments that could not be scanned.
func (s ScanStats) Failures() int {
	return s.FetchFailures + s.IndicatorUndefined
}

// Coordinator fans the candidate set out across a bounded worker pool,
// fetching and analyzing each instrument independently. Per-instrument
// failures are counted and excluded; they never abort the scan.
type Coordinator struct {
	series       SeriesSource
	workers      int
	fetchTimeout time.Duration
	metrics      *metrics.Registry
}

// NewCoordinator creates a coordinator over the given series source. Zero
// values fall back to the defaults above; metrics may be nil.
func NewCoordinator(series SeriesSource, workers int, fetchTimeout time.Duration, m *metrics.Registry) *Coordinator {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Coordinator{
		series:       series,
		workers:      workers,
		fetchTimeout: fetchTimeout,
		metrics:      m,
	}
}

// Run scans every candidate and returns the unordered matches plus failure
// counts. An empty candidate set returns immediately without any fetches.
// Cancelling ctx stops dispatching new work and abandons in-flight items.
func (c *Coordinator) Run(ctx context.Context, candidates []domain.InstrumentID, req domain.ScanRequest) ([]domain.ScanResult, ScanStats) {
	if len(candidates) == 0 {
		return nil, ScanStats{}
	}

	barCount := req.BarCount
	if barCount <= 0 {
		barCount = DefaultBarCount
	}

	type outcome struct {
		result domain.ScanResult
		kind   analyzeOutcome
		ok     bool // false means the fetch itself failed
	}

	semaphore := make(chan struct{}, c.workers)
	outcomes := make(chan outcome, len(candidates))

	var wg sync.WaitGroup
	for _, id := range candidates {
		wg.Add(1)
		go func(id domain.InstrumentID) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				return
			}

			fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
			series, err := c.series.Klines(fetchCtx, id, req.Interval, barCount)
			cancel()
			if err != nil {
				log.Debug().Err(err).Str("instrument", string(id)).Msg("fetch failed")
				select {
				case outcomes <- outcome{ok: false}:
				case <-ctx.Done():
				}
				return
			}

			result, kind := analyze(id, series, req.Mode, req.Threshold)
			select {
			case outcomes <- outcome{result: result, kind: kind, ok: true}:
			case <-ctx.Done():
			}
		}(id)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var results []domain.ScanResult
	var stats ScanStats
	for o := range outcomes {
		switch {
		case !o.ok:
			stats.FetchFailures++
			c.recordFailure("fetch_failed")
		case o.kind == outcomeUndefined:
			stats.IndicatorUndefined++
			c.recordFailure("indicator_undefined")
		case o.kind == outcomeMatch:
			results = append(results, o.result)
		}
	}

	return results, stats
}

func (c *Coordinator) recordFailure(reason string) {
	if c.metrics != nil {
		c.metrics.RecordFetchFailure(reason)
	}
}
