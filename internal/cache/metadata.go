// Package cache memoizes reference-data and catalog snapshots so repeated
// scans in one session do not refetch them.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jarair9/Crypto-screener/internal/domain"
	"github.com/jarair9/Crypto-screener/internal/telemetry/metrics"
)

// MetadataSource supplies the bulk reference-data snapshot.
type MetadataSource interface {
	Markets(ctx context.Context) (map[domain.InstrumentID]domain.InstrumentMetadata, error)
}

// CatalogSource supplies the list of currently tradable instruments.
type CatalogSource interface {
	TradableInstruments(ctx context.Context) ([]domain.InstrumentID, error)
}

// Snapshot bundles one refresh of both providers. Catalog and Metadata have
// independent lifecycles; a catalog instrument without a metadata record is
// simply unknown to metadata-gated filters.
type Snapshot struct {
	Metadata         map[domain.InstrumentID]domain.InstrumentMetadata `json:"metadata"`
	Catalog          []domain.InstrumentID                             `json:"catalog"`
	MetadataDegraded bool                                              `json:"metadata_degraded"`
	FetchedAt        time.Time                                         `json:"fetched_at"`
}

// Store persists snapshots between Get calls. Implementations never fail a
// scan: a load miss or save error just means a refetch.
type Store interface {
	Load(ctx context.Context) (*Snapshot, bool)
	Save(ctx context.Context, snap *Snapshot)
}

// MetadataCache serves the current snapshot, refreshing from the providers
// when the cached one is absent or older than the TTL. Refresh replaces the
// snapshot wholesale, so racing refreshes are last-writer-wins safe.
type MetadataCache struct {
	metadata MetadataSource
	catalog  CatalogSource
	store    Store
	ttl      time.Duration
	now      func() time.Time
	metrics  *metrics.Registry

	mu sync.Mutex
}

// Option configures a MetadataCache.
type Option func(*MetadataCache)

// WithClock injects the time source, for deterministic TTL tests.
func WithClock(now func() time.Time) Option {
	return func(c *MetadataCache) { c.now = now }
}

// WithStore replaces the default in-memory store.
func WithStore(store Store) Option {
	return func(c *MetadataCache) { c.store = store }
}

// WithMetrics wires hit/miss counters.
func WithMetrics(m *metrics.Registry) Option {
	return func(c *MetadataCache) { c.metrics = m }
}

// NewMetadataCache creates a cache over the two providers. A zero TTL means
// snapshots live for the whole process (session-scoped caching).
func NewMetadataCache(metadata MetadataSource, catalog CatalogSource, ttl time.Duration, opts ...Option) *MetadataCache {
	c := &MetadataCache{
		metadata: metadata,
		catalog:  catalog,
		store:    NewMemoryStore(),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot, refreshing if needed. A catalog failure
// returns the error (wrapping the provider's CatalogUnavailable condition)
// alongside a snapshot with an empty catalog; a metadata failure degrades to
// an empty metadata set and is reported only through MetadataDegraded.
func (c *MetadataCache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap, ok := c.store.Load(ctx); ok && c.fresh(snap) {
		c.recordHit()
		return snap, nil
	}
	c.recordMiss()

	snap, err := c.refresh(ctx)
	if err != nil {
		return snap, err
	}

	c.store.Save(ctx, snap)
	return snap, nil
}

// Invalidate drops the cached snapshot so the next Get refetches.
func (c *MetadataCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Save(ctx, nil)
}

func (c *MetadataCache) fresh(snap *Snapshot) bool {
	if c.ttl <= 0 {
		return true
	}
	return c.now().Sub(snap.FetchedAt) < c.ttl
}

func (c *MetadataCache) refresh(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Metadata:  make(map[domain.InstrumentID]domain.InstrumentMetadata),
		FetchedAt: c.now(),
	}

	catalog, err := c.catalog.TradableInstruments(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog refresh failed")
		return snap, err
	}
	snap.Catalog = catalog

	meta, err := c.metadata.Markets(ctx)
	if err != nil {
		// Degrade rather than abort: metadata-gated filters will pass
		// nothing, which the scan report surfaces via MetadataDegraded.
		log.Warn().Err(err).Msg("metadata refresh failed, continuing with empty metadata")
		snap.MetadataDegraded = true
		return snap, nil
	}
	snap.Metadata = meta

	log.Info().
		Int("catalog", len(snap.Catalog)).
		Int("metadata", len(snap.Metadata)).
		Msg("metadata cache refreshed")

	return snap, nil
}

func (c *MetadataCache) recordHit() {
	if c.metrics != nil {
		c.metrics.RecordCacheHit("metadata")
		c.metrics.RecordCacheHit("catalog")
	}
}

func (c *MetadataCache) recordMiss() {
	if c.metrics != nil {
		c.metrics.RecordCacheMiss("metadata")
		c.metrics.RecordCacheMiss("catalog")
	}
}
