package indicators

import (
	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// OBV calculates On-Balance Volume, a cumulative volume-direction
// indicator. Rising OBV confirms buying pressure, falling OBV selling
// pressure.
type OBV struct{}

// NewOBV creates a new OBV indicator.
func NewOBV() *OBV {
	return &OBV{}
}

// Calculate computes the cumulative OBV over the full series.
func (o *OBV) Calculate(data []types.Candle) (float64, error) {
	if len(data) < 2 {
		return 0, ErrInsufficientData
	}

	obv := 0.0
	for i := 1; i < len(data); i++ {
		switch {
		case data[i].Close > data[i-1].Close:
			obv += data[i].Volume
		case data[i].Close < data[i-1].Close:
			obv -= data[i].Volume
		}
	}
	return obv, nil
}

// Trend compares the current OBV against its value lookback candles ago
// and returns 1 for rising, -1 for falling and 0 for flat or
// insufficient history.
func (o *OBV) Trend(data []types.Candle, lookback int) int {
	if len(data) < lookback+2 {
		return 0
	}

	current, err := o.Calculate(data)
	if err != nil {
		return 0
	}
	past, err := o.Calculate(data[:len(data)-lookback])
	if err != nil {
		return 0
	}

	switch {
	case current > past:
		return 1
	case current < past:
		return -1
	default:
		return 0
	}
}

// RequiredPeriods returns the minimum number of candles needed.
func (o *OBV) RequiredPeriods() int {
	return 2
}
