package indicators

import (
	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// SMA represents the Simple Moving Average indicator.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with the given period.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

// Calculate returns the SMA of the closing prices over the period.
func (s *SMA) Calculate(data []types.Candle) (float64, error) {
	if len(data) < s.period {
		return 0, ErrInsufficientData
	}

	sum := 0.0
	for i := len(data) - s.period; i < len(data); i++ {
		sum += data[i].Close
	}
	return sum / float64(s.period), nil
}

// RequiredPeriods returns the minimum number of candles needed.
func (s *SMA) RequiredPeriods() int {
	return s.period
}

// EMA represents the Exponential Moving Average indicator.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with the given period.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

// Calculate returns the EMA of the closing prices, seeded with the SMA
// of the first period values.
func (e *EMA) Calculate(data []types.Candle) (float64, error) {
	if len(data) < e.period {
		return 0, ErrInsufficientData
	}

	closes := make([]float64, len(data))
	for i, c := range data {
		closes[i] = c.Close
	}
	series := emaSeries(closes, e.period)
	return series[len(series)-1], nil
}

// RequiredPeriods returns the minimum number of candles needed.
func (e *EMA) RequiredPeriods() int {
	return e.period
}

// emaSeries computes the EMA over values. The first period-1 entries
// carry the SMA seed so the result aligns index-for-index with values.
func emaSeries(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) < period {
		copy(out, values)
		return out
	}

	alpha := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	seed /= float64(period)

	for i := 0; i < period; i++ {
		out[i] = seed
	}
	for i := period; i < len(values); i++ {
		out[i] = values[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}
