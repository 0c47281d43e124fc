package indicators

import (
	"math"
	"sort"

	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// VolatilityLevel classifies the current volatility regime relative to
// the instrument's own recent history.
type VolatilityLevel string

const (
	VolatilityLow    VolatilityLevel = "low"
	VolatilityMedium VolatilityLevel = "medium"
	VolatilityHigh   VolatilityLevel = "high"
)

// RealizedVolatility returns the standard deviation of simple returns
// over the candle series. Needs at least two candles.
func RealizedVolatility(data []types.Candle) float64 {
	if len(data) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(data)-1)
	for i := 1; i < len(data); i++ {
		if data[i-1].Close == 0 {
			continue
		}
		returns = append(returns, (data[i].Close-data[i-1].Close)/data[i-1].Close)
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(returns)))
}

// VolatilityRank buckets recent history into consecutive fixed-size
// windows, computes realized volatility per window and ranks the
// current window against the sample distribution.
type VolatilityRank struct {
	window     int // Candles per volatility sample
	minCandles int // Minimum history before ranking is meaningful
}

// NewVolatilityRank creates a volatility ranker. Typical parameters are
// a 20-candle window with a 100-candle minimum.
func NewVolatilityRank(window, minCandles int) *VolatilityRank {
	return &VolatilityRank{window: window, minCandles: minCandles}
}

// Calculate classifies the current window's realized volatility into
// low (bottom 20th percentile), high (top 20th percentile) or medium.
func (v *VolatilityRank) Calculate(data []types.Candle) (VolatilityLevel, error) {
	if len(data) < v.minCandles {
		return "", ErrInsufficientData
	}

	windows := len(data) / v.window
	start := len(data) - windows*v.window

	samples := make([]float64, 0, windows)
	for i := 0; i < windows; i++ {
		lo := start + i*v.window
		samples = append(samples, RealizedVolatility(data[lo:lo+v.window]))
	}

	current := samples[len(samples)-1]

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	lowCut := sorted[int(float64(len(sorted))*0.2)]
	highCut := sorted[int(float64(len(sorted))*0.8)]

	switch {
	case current <= lowCut:
		return VolatilityLow, nil
	case current >= highCut:
		return VolatilityHigh, nil
	default:
		return VolatilityMedium, nil
	}
}

// RequiredPeriods returns the minimum number of candles needed.
func (v *VolatilityRank) RequiredPeriods() int {
	return v.minCandles
}
