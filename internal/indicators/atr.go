package indicators

import (
	"math"

	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// ATR calculates the Average True Range, a volatility measure.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator with the given period.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Calculate computes the simple average of the true range over the
// period. Needs period+1 candles for previous-close comparisons.
func (a *ATR) Calculate(data []types.Candle) (float64, error) {
	if len(data) < a.period+1 {
		return 0, ErrInsufficientData
	}

	sum := 0.0
	for i := len(data) - a.period; i < len(data); i++ {
		current := data[i]
		previous := data[i-1]

		tr := math.Max(
			current.High-current.Low,
			math.Max(
				math.Abs(current.High-previous.Close),
				math.Abs(current.Low-previous.Close),
			),
		)
		sum += tr
	}
	return sum / float64(a.period), nil
}

// RequiredPeriods returns the minimum number of candles needed.
func (a *ATR) RequiredPeriods() int {
	return a.period + 1
}
