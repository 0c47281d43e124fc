package indicators

import (
	"math"

	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// RSI calculates the Relative Strength Index over closing prices.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with the given period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Calculate computes the RSI value for the most recent candle. Needs
// period+1 candles to form period price changes.
func (r *RSI) Calculate(data []types.Candle) (float64, error) {
	if len(data) < r.period+1 {
		return 0, ErrInsufficientData
	}

	avgGain := 0.0
	avgLoss := 0.0
	for i := len(data) - r.period; i < len(data); i++ {
		change := data[i].Close - data[i-1].Close
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += math.Abs(change)
		}
	}
	avgGain /= float64(r.period)
	avgLoss /= float64(r.period)

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), nil
}

// RequiredPeriods returns the minimum number of candles needed.
func (r *RSI) RequiredPeriods() int {
	return r.period + 1
}
