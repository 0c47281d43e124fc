package indicators

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

func candles(closes ...float64) []types.Candle {
	out := make([]types.Candle, len(closes))
	for i, c := range closes {
		out[i] = types.Candle{
			Timestamp: time.Unix(int64(i)*3600, 0),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return out
}

func rampCandles(n int, start, step float64) []types.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return candles(closes...)
}

func TestSMA_Calculate(t *testing.T) {
	sma := NewSMA(5)

	value, err := sma.Calculate(candles(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, value, 1e-9)

	// Only the last period counts.
	value, err = sma.Calculate(candles(100, 1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.InDelta(t, 3.0, value, 1e-9)
}

func TestSMA_InsufficientData(t *testing.T) {
	sma := NewSMA(5)
	_, err := sma.Calculate(candles(1, 2, 3, 4))
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestEMA_ConstantSeries(t *testing.T) {
	ema := NewEMA(10)
	value, err := ema.Calculate(rampCandles(30, 50, 0))
	require.NoError(t, err)
	assert.InDelta(t, 50.0, value, 1e-9)
}

func TestEMA_TracksRisingPrices(t *testing.T) {
	ema := NewEMA(10)
	data := rampCandles(50, 100, 1)

	value, err := ema.Calculate(data)
	require.NoError(t, err)

	last := data[len(data)-1].Close
	assert.Less(t, value, last, "EMA should lag a rising series")
	assert.Greater(t, value, data[0].Close)
}

func TestRSI_Extremes(t *testing.T) {
	rsi := NewRSI(14)

	up, err := rsi.Calculate(rampCandles(20, 100, 1))
	require.NoError(t, err)
	assert.InDelta(t, 100.0, up, 1e-9, "all gains should saturate RSI")

	down, err := rsi.Calculate(rampCandles(20, 100, -1))
	require.NoError(t, err)
	assert.InDelta(t, 0.0, down, 1e-9, "all losses should floor RSI")
}

func TestRSI_Bounds(t *testing.T) {
	rsi := NewRSI(14)
	data := candles(100, 102, 101, 103, 102, 104, 103, 105, 104, 106, 105, 107, 106, 108, 107, 109)

	value, err := rsi.Calculate(data)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, value, 0.0)
	assert.LessOrEqual(t, value, 100.0)
}

func TestRSI_RequiresPeriodPlusOne(t *testing.T) {
	rsi := NewRSI(14)
	assert.Equal(t, 15, rsi.RequiredPeriods())

	_, err := rsi.Calculate(rampCandles(14, 100, 1))
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = rsi.Calculate(rampCandles(15, 100, 1))
	assert.NoError(t, err)
}

func TestMACD_RisingSeries(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	res, err := macd.Calculate(rampCandles(60, 100, 1))
	require.NoError(t, err)
	assert.Greater(t, res.Line, 0.0, "fast EMA should sit above slow EMA in an uptrend")
}

func TestMACD_InsufficientData(t *testing.T) {
	macd := NewMACD(12, 26, 9)
	assert.Equal(t, 35, macd.RequiredPeriods())

	_, err := macd.Calculate(rampCandles(34, 100, 1))
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = macd.Calculate(rampCandles(35, 100, 1))
	assert.NoError(t, err)
}

func TestMACD_PrevValuesDiffer(t *testing.T) {
	macd := NewMACD(12, 26, 9)

	// A series that reverses produces distinct consecutive MACD values.
	closes := make([]float64, 60)
	for i := range closes {
		if i < 40 {
			closes[i] = 100 + float64(i)
		} else {
			closes[i] = 140 - float64(i-40)*2
		}
	}
	res, err := macd.Calculate(candles(closes...))
	require.NoError(t, err)
	assert.NotEqual(t, res.PrevLine, res.Line)
	assert.InDelta(t, res.Line-res.Signal, res.Histogram, 1e-9)
}

func TestBollingerBands_ConstantSeries(t *testing.T) {
	bb := NewBollingerBands(20, 2.0)

	res, err := bb.Calculate(rampCandles(25, 100, 0))
	require.NoError(t, err)
	assert.InDelta(t, 100.0, res.Upper, 1e-9)
	assert.InDelta(t, 100.0, res.Middle, 1e-9)
	assert.InDelta(t, 100.0, res.Lower, 1e-9)
}

func TestBollingerBands_KnownValues(t *testing.T) {
	bb := NewBollingerBands(4, 2.0)

	// mean 2, population stddev 1
	res, err := bb.Calculate(candles(1, 1, 3, 3))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Middle, 1e-9)
	assert.InDelta(t, 4.0, res.Upper, 1e-9)
	assert.InDelta(t, 0.0, res.Lower, 1e-9)
}

func TestATR_KnownRange(t *testing.T) {
	atr := NewATR(2)

	data := []types.Candle{
		{High: 110, Low: 100, Close: 105},
		{High: 112, Low: 102, Close: 108},
		{High: 115, Low: 105, Close: 110},
	}
	value, err := atr.Calculate(data)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, value, 1e-9)
}

func TestATR_InsufficientData(t *testing.T) {
	atr := NewATR(14)
	_, err := atr.Calculate(rampCandles(14, 100, 1))
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestOBV_Accumulation(t *testing.T) {
	obv := NewOBV()

	data := candles(100, 101, 102)
	data[1].Volume = 20
	data[2].Volume = 30

	value, err := obv.Calculate(data)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, value, 1e-9)

	down := candles(102, 101, 100)
	down[1].Volume = 20
	down[2].Volume = 30
	value, err = obv.Calculate(down)
	require.NoError(t, err)
	assert.InDelta(t, -50.0, value, 1e-9)
}

func TestOBV_Trend(t *testing.T) {
	obv := NewOBV()

	assert.Equal(t, 1, obv.Trend(rampCandles(30, 100, 1), 10))
	assert.Equal(t, -1, obv.Trend(rampCandles(30, 100, -1), 10))
	assert.Equal(t, 0, obv.Trend(rampCandles(5, 100, 1), 10), "short history yields no trend")
}

func TestRealizedVolatility(t *testing.T) {
	assert.Equal(t, 0.0, RealizedVolatility(rampCandles(20, 100, 0)))
	assert.Equal(t, 0.0, RealizedVolatility(candles(100)))
	assert.Greater(t, RealizedVolatility(candles(100, 110, 100, 110)), 0.0)
}

func TestVolatilityRank_QuietMarket(t *testing.T) {
	rank := NewVolatilityRank(20, 100)

	level, err := rank.Calculate(rampCandles(100, 100, 0))
	require.NoError(t, err)
	assert.Equal(t, VolatilityLow, level)
}

func TestVolatilityRank_VolatileCurrentWindow(t *testing.T) {
	rank := NewVolatilityRank(20, 100)

	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100
	}
	// Only the current window oscillates.
	for i := 80; i < 100; i++ {
		if i%2 == 0 {
			closes[i] = 110
		}
	}
	level, err := rank.Calculate(candles(closes...))
	require.NoError(t, err)
	assert.Equal(t, VolatilityHigh, level)
}

func TestVolatilityRank_InsufficientData(t *testing.T) {
	rank := NewVolatilityRank(20, 100)
	_, err := rank.Calculate(rampCandles(99, 100, 0))
	assert.True(t, errors.Is(err, ErrInsufficientData))
}
