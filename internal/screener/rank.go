package screener

import (
	"sort"

	"github.com/jarair9/Crypto-screener/internal/domain"
)

// Rank orders matches by indicator value: ascending in Below mode (tightest
// oversold first), descending in Above mode (strongest overbought first).
// Equal values order by InstrumentID ascending so identical inputs always
// produce identical output regardless of worker completion order.
func Rank(results []domain.ScanResult, mode domain.ScanMode) []domain.ScanResult {
	ranked := make([]domain.ScanResult, len(results))
	copy(ranked, results)

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IndicatorValue != b.IndicatorValue {
			if mode == domain.ModeAbove {
				return a.IndicatorValue > b.IndicatorValue
			}
			return a.IndicatorValue < b.IndicatorValue
		}
		return a.InstrumentID < b.InstrumentID
	})

	return ranked
}
