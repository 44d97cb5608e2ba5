// Package screener runs the end-to-end momentum scan: cached snapshots,
// universe filtering, bounded fan-out analysis, and ranking.
package screener

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jarair9/Crypto-screener/internal/cache"
	"github.com/jarair9/Crypto-screener/internal/domain"
	"github.com/jarair9/Crypto-screener/internal/telemetry/metrics"
	"github.com/jarair9/Crypto-screener/internal/universe"
)

// ScanReport is the outcome of one scan: the ranked matches plus the
// observability counts the presentation layer surfaces.
type ScanReport struct {
	ScanID           string              `json:"scan_id"`
	Results          []domain.ScanResult `json:"results"`
	CandidateCount   int                 `json:"candidate_count"`
	Stats            ScanStats           `json:"stats"`
	MetadataDegraded bool                `json:"metadata_degraded"`
	Duration         time.Duration       `json:"duration"`
}

// Screener wires the metadata cache and the scan coordinator into a single
// scan entry point.
type Screener struct {
	cache       *cache.MetadataCache
	coordinator *Coordinator
	metrics     *metrics.Registry
	now         func() time.Time
}

// New creates a Screener. metrics may be nil.
func New(c *cache.MetadataCache, coordinator *Coordinator, m *metrics.Registry) *Screener {
	return &Screener{
		cache:       c,
		coordinator: coordinator,
		metrics:     m,
		now:         time.Now,
	}
}

// Run executes one scan. It fails only when the request is invalid or the
// catalog cannot be obtained; every per-instrument failure is counted in the
// report instead.
func (s *Screener) Run(ctx context.Context, req domain.ScanRequest) (*ScanReport, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	scanID := uuid.NewString()
	start := time.Now()
	if s.metrics != nil {
		s.metrics.ScansTotal.Inc()
		s.metrics.ActiveScans.Inc()
		defer func() {
			s.metrics.ActiveScans.Dec()
			s.metrics.ScanDuration.Observe(time.Since(start).Seconds())
		}()
	}

	log.Info().
		Str("scan_id", scanID).
		Str("interval", req.Interval).
		Str("mode", string(req.Mode)).
		Float64("threshold", req.Threshold).
		Msg("scan started")

	snap, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", scanID, err)
	}

	candidates := universe.Filter(snap.Catalog, snap.Metadata, req.Filters, s.now())
	if s.metrics != nil {
		s.metrics.Candidates.Observe(float64(len(candidates)))
	}

	results, stats := s.coordinator.Run(ctx, candidates, req)
	ranked := Rank(results, req.Mode)

	report := &ScanReport{
		ScanID:           scanID,
		Results:          ranked,
		CandidateCount:   len(candidates),
		Stats:            stats,
		MetadataDegraded: snap.MetadataDegraded,
		Duration:         time.Since(start),
	}

	log.Info().
		Str("scan_id", scanID).
		Int("candidates", report.CandidateCount).
		Int("matches", len(report.Results)).
		Int("failures", stats.Failures()).
		Dur("duration", report.Duration).
		Msg("scan completed")

	return report, nil
}

func validateRequest(req domain.ScanRequest) error {
	if !req.Mode.Valid() {
		return fmt.Errorf("invalid scan mode %q", req.Mode)
	}
	if req.Interval == "" {
		return fmt.Errorf("interval is required")
	}
	if req.Threshold < 0 || req.Threshold > 100 {
		return fmt.Errorf("threshold %v out of range [0, 100]", req.Threshold)
	}
	return nil
}
