package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

func rampCandles(n int, start, step float64) []types.Candle {
	out := make([]types.Candle, n)
	for i := range out {
		c := start + float64(i)*step
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

func TestAnalyzeShortTerm_Bullish(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	st := a.AnalyzeShortTerm(rampCandles(20, 100, 0.5))

	assert.Equal(t, Bullish, st.Direction)
	assert.Equal(t, QualityHigh, st.Quality)
	assert.Greater(t, st.Strength, 0.0)
	assert.Greater(t, st.Confidence, 0.0)
	assert.LessOrEqual(t, st.Confidence, 95.0)
	assert.Greater(t, st.PriceChange, 0.0)
}

func TestAnalyzeShortTerm_Bearish(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	st := a.AnalyzeShortTerm(rampCandles(20, 200, -0.5))

	assert.Equal(t, Bearish, st.Direction)
	assert.Less(t, st.PriceChange, 0.0)
}

func TestAnalyzeShortTerm_FlatIsNeutral(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	st := a.AnalyzeShortTerm(rampCandles(20, 100, 0))

	assert.Equal(t, Neutral, st.Direction)
	assert.Equal(t, QualityLow, st.Quality)
}

func TestAnalyzeShortTerm_ConfigurableThresholds(t *testing.T) {
	cfg := config.Default().Analysis
	cfg.ShortTermMinChange = 0.20 // ramp below: 19*0.5/100 = 9.5%
	a := NewAnalyzer(cfg)

	st := a.AnalyzeShortTerm(rampCandles(20, 100, 0.5))
	assert.Equal(t, Neutral, st.Direction)

	cfg = config.Default().Analysis
	cfg.QualityHighChange = 0.20
	cfg.QualityMediumChange = 0.05
	a = NewAnalyzer(cfg)

	st = a.AnalyzeShortTerm(rampCandles(20, 100, 0.5))
	assert.Equal(t, Bullish, st.Direction)
	assert.Equal(t, QualityMedium, st.Quality)
}

func TestAssessTimeframe_LargeMoveOverridesMixedStructure(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	data := make([]types.Candle, 20)
	for i := range data {
		data[i] = types.Candle{
			Timestamp: time.Unix(int64(i)*3600, 0),
			Open:      100,
			High:      101,
			Low:       99 - float64(i)*0.1,
			Close:     100,
			Volume:    1000,
		}
	}
	data[19].Close = 103 // +3% despite falling lows throughout

	tf := a.assessTimeframe(data, 20, false)
	assert.Equal(t, Bullish, tf.Direction)
}

func TestAnalyzeShortTerm_ShortHistory(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	st := a.AnalyzeShortTerm(rampCandles(5, 100, 1))

	assert.Equal(t, Neutral, st.Direction)
	assert.Equal(t, QualityLow, st.Quality)
	assert.Zero(t, st.Confidence)
}

func TestAnalyzeLongTerm_InsufficientData(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	as := a.AnalyzeLongTerm(rampCandles(50, 100, 1), false)

	require.NotNil(t, as)
	assert.Equal(t, Neutral, as.Direction)
	assert.Equal(t, InsufficientData, as.Recommendation)
}

func TestAnalyzeLongTerm_SustainedUptrend(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	as := a.AnalyzeLongTerm(rampCandles(250, 100, 0.5), false)

	assert.Equal(t, Bullish, as.Direction)
	assert.True(t, as.Recommendation.IsBuy(), "got %s", as.Recommendation)
	assert.Greater(t, as.Strength, 0.3)
	assert.Len(t, as.Timeframes, 3)
	for name, tf := range as.Timeframes {
		assert.Equal(t, Bullish, tf.Direction, "timeframe %s", name)
	}
}

func TestAnalyzeLongTerm_SustainedDowntrend(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	as := a.AnalyzeLongTerm(rampCandles(250, 300, -0.5), false)

	assert.Equal(t, Bearish, as.Direction)
	assert.True(t, as.Recommendation.IsSell(), "got %s", as.Recommendation)
}

func TestAnalyzeLongTerm_FlatMarket(t *testing.T) {
	a := NewAnalyzer(config.Default().Analysis)

	as := a.AnalyzeLongTerm(rampCandles(250, 100, 0), false)

	assert.Equal(t, Neutral, as.Direction)
	assert.False(t, as.Recommendation.IsBuy())
	assert.False(t, as.Recommendation.IsSell())
}

func TestDirection_Opposite(t *testing.T) {
	assert.Equal(t, Bearish, Bullish.Opposite())
	assert.Equal(t, Bullish, Bearish.Opposite())
	assert.Equal(t, Neutral, Neutral.Opposite())
}
