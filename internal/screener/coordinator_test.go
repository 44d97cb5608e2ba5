package screener

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarair9/Crypto-screener/internal/domain"
)

// fakeSeries serves canned series per instrument, with optional per-instrument
// errors and stalls.
type fakeSeries struct {
	mu     sync.Mutex
	calls  int
	series map[domain.InstrumentID][]domain.OhlcvBar
	errs   map[domain.InstrumentID]error
	stall  map[domain.InstrumentID]time.Duration
}

func (f *fakeSeries) Klines(ctx context.Context, id domain.InstrumentID, interval string, limit int) ([]domain.OhlcvBar, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if d, ok := f.stall[id]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[id]; ok {
		return nil, err
	}
	return f.series[id], nil
}

func (f *fakeSeries) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func belowRequest(threshold float64) domain.ScanRequest {
	return domain.ScanRequest{
		Interval:  "1h",
		Mode:      domain.ModeBelow,
		Threshold: threshold,
		BarCount:  40,
	}
}

func TestCoordinator_EmptyCandidates(t *testing.T) {
	source := &fakeSeries{}
	c := NewCoordinator(source, 4, time.Second, nil)

	results, stats := c.Run(context.Background(), nil, belowRequest(30))

	assert.Empty(t, results)
	assert.Zero(t, stats.Failures())
	assert.Equal(t, 0, source.callCount())
}

func TestCoordinator_FailureIsolation(t *testing.T) {
	source := &fakeSeries{
		series: map[domain.InstrumentID][]domain.OhlcvBar{
			"AAAUSDT": oversoldSeries(40),
			"CCCUSDT": oversoldSeries(40),
		},
		errs: map[domain.InstrumentID]error{
			"BBBUSDT": errors.New("connection reset"),
		},
	}
	c := NewCoordinator(source, 4, time.Second, nil)

	results, stats := c.Run(context.Background(),
		[]domain.InstrumentID{"AAAUSDT", "BBBUSDT", "CCCUSDT"}, belowRequest(30))

	require.Len(t, results, 2)
	assert.Equal(t, 1, stats.FetchFailures)
	assert.Equal(t, 0, stats.IndicatorUndefined)
}

func TestCoordinator_StalledFetchCountsAsFailure(t *testing.T) {
	source := &fakeSeries{
		series: map[domain.InstrumentID][]domain.OhlcvBar{
			"AAAUSDT": oversoldSeries(40),
		},
		stall: map[domain.InstrumentID]time.Duration{
			"BBBUSDT": 5 * time.Second,
		},
	}
	c := NewCoordinator(source, 4, 30*time.Millisecond, nil)

	results, stats := c.Run(context.Background(),
		[]domain.InstrumentID{"AAAUSDT", "BBBUSDT"}, belowRequest(30))

	require.Len(t, results, 1)
	assert.Equal(t, domain.InstrumentID("AAAUSDT"), results[0].InstrumentID)
	assert.Equal(t, 1, stats.FetchFailures)
}

func TestCoordinator_UndefinedIndicatorCounted(t *testing.T) {
	source := &fakeSeries{
		series: map[domain.InstrumentID][]domain.OhlcvBar{
			"AAAUSDT": oversoldSeries(40),
			"BBBUSDT": oversoldSeries(5), // too short for the oscillator
		},
	}
	c := NewCoordinator(source, 4, time.Second, nil)

	results, stats := c.Run(context.Background(),
		[]domain.InstrumentID{"AAAUSDT", "BBBUSDT"}, belowRequest(30))

	require.Len(t, results, 1)
	assert.Equal(t, 1, stats.IndicatorUndefined)
	assert.Equal(t, 1, stats.Failures())
}

func TestCoordinator_NonMatchesExcludedSilently(t *testing.T) {
	source := &fakeSeries{
		series: map[domain.InstrumentID][]domain.OhlcvBar{
			"AAAUSDT": overboughtSeries(40),
		},
	}
	c := NewCoordinator(source, 4, time.Second, nil)

	results, stats := c.Run(context.Background(),
		[]domain.InstrumentID{"AAAUSDT"}, belowRequest(30))

	assert.Empty(t, results)
	assert.Zero(t, stats.Failures())
}

func TestCoordinator_BoundedFanOutScansEveryone(t *testing.T) {
	series := make(map[domain.InstrumentID][]domain.OhlcvBar)
	var candidates []domain.InstrumentID
	for _, id := range []domain.InstrumentID{
		"AAAUSDT", "BBBUSDT", "CCCUSDT", "DDDUSDT", "EEEUSDT",
		"FFFUSDT", "GGGUSDT", "HHHUSDT", "IIIUSDT", "JJJUSDT",
	} {
		series[id] = oversoldSeries(40)
		candidates = append(candidates, id)
	}
	source := &fakeSeries{series: series}
	c := NewCoordinator(source, 2, time.Second, nil)

	results, stats := c.Run(context.Background(), candidates, belowRequest(30))

	assert.Len(t, results, len(candidates))
	assert.Zero(t, stats.Failures())
	assert.Equal(t, len(candidates), source.callCount())
}
