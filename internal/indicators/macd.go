package indicators

import (
	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// MACDResult holds the line, signal and histogram values for the two
// most recent candles. The previous values are what crossover checks
// compare against.
type MACDResult struct {
	Line       float64
	Signal     float64
	Histogram  float64
	PrevLine   float64
	PrevSignal float64
}

// MACD calculates Moving Average Convergence Divergence over closes.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with the given fast, slow and
// signal periods.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Calculate computes the MACD line, signal line and histogram. The
// signal line is an EMA over the MACD line series, so the minimum
// history is slowPeriod+signalPeriod candles.
func (m *MACD) Calculate(data []types.Candle) (MACDResult, error) {
	if len(data) < m.slowPeriod+m.signalPeriod {
		return MACDResult{}, ErrInsufficientData
	}

	closes := make([]float64, len(data))
	for i, c := range data {
		closes[i] = c.Close
	}

	fast := emaSeries(closes, m.fastPeriod)
	slow := emaSeries(closes, m.slowPeriod)

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}

	// The line is only meaningful once the slow EMA has formed.
	valid := line[m.slowPeriod-1:]
	signal := emaSeries(valid, m.signalPeriod)

	n := len(valid)
	res := MACDResult{
		Line:       valid[n-1],
		Signal:     signal[n-1],
		PrevLine:   valid[n-2],
		PrevSignal: signal[n-2],
	}
	res.Histogram = res.Line - res.Signal
	return res, nil
}

// RequiredPeriods returns the minimum number of candles needed.
func (m *MACD) RequiredPeriods() int {
	return m.slowPeriod + m.signalPeriod
}
