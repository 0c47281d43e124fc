package indicators

import (
	"math"

	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// BollingerResult holds the three bands for the most recent candle.
type BollingerResult struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands calculates a moving average band with a standard
// deviation envelope.
type BollingerBands struct {
	period int
	stdDev float64
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	return &BollingerBands{period: period, stdDev: stdDev}
}

// Calculate computes the upper, middle and lower bands over the period.
func (b *BollingerBands) Calculate(data []types.Candle) (BollingerResult, error) {
	if len(data) < b.period {
		return BollingerResult{}, ErrInsufficientData
	}

	window := data[len(data)-b.period:]

	sum := 0.0
	for _, c := range window {
		sum += c.Close
	}
	mean := sum / float64(b.period)

	variance := 0.0
	for _, c := range window {
		diff := c.Close - mean
		variance += diff * diff
	}
	sd := math.Sqrt(variance / float64(b.period))

	return BollingerResult{
		Upper:  mean + b.stdDev*sd,
		Middle: mean,
		Lower:  mean - b.stdDev*sd,
	}, nil
}

// RequiredPeriods returns the minimum number of candles needed.
func (b *BollingerBands) RequiredPeriods() int {
	return b.period
}
