package domain

import "time"

// InstrumentID identifies a tradable pair as base asset + quote asset,
// uppercase, no separator (e.g. "BTCUSDT"). Unique within a catalog snapshot.
type InstrumentID string

// InstrumentMetadata is one reference-data record for an instrument. A catalog
// instrument may have no matching record; filters treat that as unknown data.
type InstrumentMetadata struct {
	ID               string    `json:"id"`
	SymbolNormalized string    `json:"symbol_normalized"`
	Name             string    `json:"name"`
	MarketCap        float64   `json:"market_cap"`
	MarketCapKnown   bool      `json:"market_cap_known"`
	Volume24h        float64   `json:"volume_24h"`
	LastUpdated      time.Time `json:"last_updated"`
}

// OhlcvBar is a single candle. Series are ordered oldest to newest. Only Close
// feeds the current indicator; the rest is carried for future analyzers.
type OhlcvBar struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// ScanMode selects the side of the threshold an instrument must be on to pass.
type ScanMode string

const (
	ModeBelow ScanMode = "below"
	ModeAbove ScanMode = "above"
)

// Valid reports whether the mode is one of the two supported values.
func (m ScanMode) Valid() bool {
	return m == ModeBelow || m == ModeAbove
}

// Filters are the optional universe-narrowing predicates. A nil field means
// the predicate is disabled. Enabled predicates compose by intersection.
type Filters struct {
	TopVolumeN     *int           `json:"top_volume_n,omitempty"`
	OnlyRecentDays *int           `json:"only_recent_days,omitempty"`
	MarketCapRange *MarketCapSpan `json:"market_cap_range,omitempty"`
}

// MarketCapSpan is an inclusive [Min, Max] market-cap range in USD.
type MarketCapSpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ScanRequest holds the parameters of one scan. Constructed once per
// invocation and never mutated while the scan runs.
type ScanRequest struct {
	Interval  string   `json:"interval"`
	Mode      ScanMode `json:"mode"`
	Threshold float64  `json:"threshold"`
	Filters   Filters  `json:"filters"`
	BarCount  int      `json:"bar_count"`
}

// ScanResult is one matching instrument. Price and IndicatorValue are rounded
// for display only; the pass/fail decision happens on unrounded values.
type ScanResult struct {
	InstrumentID   InstrumentID `json:"instrument_id"`
	Price          float64      `json:"price"`
	IndicatorValue float64      `json:"indicator_value"`
}
