package screener

import (
	"math"

	"github.com/jarair9/Crypto-screener/internal/domain"
	"github.com/jarair9/Crypto-screener/internal/domain/indicators"
)

// Display rounding. Applied only when building the result; the pass/fail
// decision always uses the unrounded indicator value.
const (
	priceDecimals     = 4
	indicatorDecimals = 2
)

// analyzeOutcome classifies what happened to one instrument's series.
type analyzeOutcome int

const (
	outcomeMatch analyzeOutcome = iota
	outcomeNoMatch
	outcomeUndefined
)

// analyze computes the momentum oscillator over the closing prices and
// applies the strict threshold rule. Equality never passes. An empty or
// too-short series, or a non-finite indicator, is undefined.
func analyze(id domain.InstrumentID, series []domain.OhlcvBar, mode domain.ScanMode, threshold float64) (domain.ScanResult, analyzeOutcome) {
	if len(series) == 0 {
		return domain.ScanResult{}, outcomeUndefined
	}

	closes := make([]float64, len(series))
	for i, bar := range series {
		closes[i] = bar.Close
	}

	rsi := indicators.CalculateRSI(closes, indicators.DefaultRSIPeriod)
	if !rsi.IsValid || math.IsNaN(rsi.Value) || math.IsInf(rsi.Value, 0) {
		return domain.ScanResult{}, outcomeUndefined
	}

	pass := (mode == domain.ModeBelow && rsi.Value < threshold) ||
		(mode == domain.ModeAbove && rsi.Value > threshold)
	if !pass {
		return domain.ScanResult{}, outcomeNoMatch
	}

	price := series[len(series)-1].Close
	return domain.ScanResult{
		InstrumentID:   id,
		Price:          round(price, priceDecimals),
		IndicatorValue: round(rsi.Value, indicatorDecimals),
	}, outcomeMatch
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
