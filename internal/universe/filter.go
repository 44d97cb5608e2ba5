// Package universe narrows the instrument catalog to the candidate set for
// one scan.
package universe

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jarair9/Crypto-screener/internal/domain"
)

// DefaultTopVolumeN is the top-N cutoff when the volume filter is enabled
// without an explicit N.
const DefaultTopVolumeN = 100

// DefaultRecencyDays is the listing-recency window when the recency filter
// is enabled without an explicit window.
const DefaultRecencyDays = 30

// Filter intersects the enabled predicates over the catalog. Instruments
// missing from the metadata snapshot never pass an enabled metadata-gated
// predicate. With no predicates enabled the candidate set is the catalog
// itself. Output preserves catalog order, so identical inputs always yield
// identical candidate sets.
func Filter(catalog []domain.InstrumentID, metadata map[domain.InstrumentID]domain.InstrumentMetadata, filters domain.Filters, now time.Time) []domain.InstrumentID {
	candidates := catalog

	if filters.TopVolumeN != nil {
		candidates = topByVolume(candidates, metadata, *filters.TopVolumeN)
	}
	if filters.OnlyRecentDays != nil {
		candidates = recentlyUpdated(candidates, metadata, *filters.OnlyRecentDays, now)
	}
	if filters.MarketCapRange != nil {
		candidates = withinMarketCap(candidates, metadata, *filters.MarketCapRange)
	}

	log.Debug().
		Int("catalog", len(catalog)).
		Int("candidates", len(candidates)).
		Msg("universe filtered")

	return candidates
}

// topByVolume keeps catalog instruments whose metadata ranks in the top N by
// 24h volume. Ties rank by normalized symbol so the cutoff is deterministic.
func topByVolume(catalog []domain.InstrumentID, metadata map[domain.InstrumentID]domain.InstrumentMetadata, n int) []domain.InstrumentID {
	if n <= 0 {
		n = DefaultTopVolumeN
	}

	ranked := make([]domain.InstrumentMetadata, 0, len(metadata))
	for _, meta := range metadata {
		ranked = append(ranked, meta)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Volume24h != ranked[j].Volume24h {
			return ranked[i].Volume24h > ranked[j].Volume24h
		}
		return ranked[i].SymbolNormalized < ranked[j].SymbolNormalized
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}

	kept := make(map[string]struct{}, len(ranked))
	for _, meta := range ranked {
		kept[meta.SymbolNormalized] = struct{}{}
	}

	var out []domain.InstrumentID
	for _, id := range catalog {
		if _, ok := kept[string(id)]; ok {
			out = append(out, id)
		}
	}
	return out
}

// recentlyUpdated keeps instruments whose metadata was updated within the
// last `days` days.
func recentlyUpdated(catalog []domain.InstrumentID, metadata map[domain.InstrumentID]domain.InstrumentMetadata, days int, now time.Time) []domain.InstrumentID {
	if days <= 0 {
		days = DefaultRecencyDays
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	var out []domain.InstrumentID
	for _, id := range catalog {
		meta, ok := metadata[id]
		if !ok || meta.LastUpdated.IsZero() {
			continue
		}
		if meta.LastUpdated.After(cutoff) {
			out = append(out, id)
		}
	}
	return out
}

// withinMarketCap keeps instruments whose known market cap lies in
// [span.Min, span.Max] inclusive. Unknown caps are excluded.
func withinMarketCap(catalog []domain.InstrumentID, metadata map[domain.InstrumentID]domain.InstrumentMetadata, span domain.MarketCapSpan) []domain.InstrumentID {
	var out []domain.InstrumentID
	for _, id := range catalog {
		meta, ok := metadata[id]
		if !ok || !meta.MarketCapKnown {
			continue
		}
		if meta.MarketCap >= span.Min && meta.MarketCap <= span.Max {
			out = append(out, id)
		}
	}
	return out
}
