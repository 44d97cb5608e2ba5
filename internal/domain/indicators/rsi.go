package indicators

// RSIResult represents the result of RSI calculation
type RSIResult struct {
	Value     float64 `json:"value"`
	Period    int     `json:"period"`
	IsValid   bool    `json:"is_valid"`
	DataCount int     `json:"data_count"`
}

// DefaultRSIPeriod is the standard lookback for the momentum oscillator.
const DefaultRSIPeriod = 14

// CalculateRSI calculates the Relative Strength Index for the given closing
// prices using Wilder's smoothing: simple averages over the first window,
// then an EMA with alpha = 1/period. Requires at least period+1 prices;
// anything shorter yields an invalid result, never a usable value.
func CalculateRSI(prices []float64, period int) RSIResult {
	if period <= 0 || len(prices) < period+1 {
		return RSIResult{
			Period:    period,
			IsValid:   false,
			DataCount: len(prices),
		}
	}

	// Separate per-bar changes into gains and losses
	gains := make([]float64, len(prices)-1)
	losses := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains[i-1] = change
		} else {
			losses[i-1] = -change
		}
	}

	// Initial averages (SMA for first period)
	avgGain := 0.0
	avgLoss := 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder's smoothing for subsequent bars
	alpha := 1.0 / float64(period)
	for i := period; i < len(gains); i++ {
		avgGain = avgGain*(1-alpha) + gains[i]*alpha
		avgLoss = avgLoss*(1-alpha) + losses[i]*alpha
	}

	// All-gain window: RS diverges, RSI saturates at 100
	if avgLoss == 0 {
		return RSIResult{
			Value:     100.0,
			Period:    period,
			IsValid:   true,
			DataCount: len(prices),
		}
	}

	rs := avgGain / avgLoss
	rsi := 100.0 - (100.0 / (1.0 + rs))

	return RSIResult{
		Value:     rsi,
		Period:    period,
		IsValid:   true,
		DataCount: len(prices),
	}
}
