package fusion

import (
	"github.com/quantbyte/signal-fusion-bot/internal/config"
	"github.com/quantbyte/signal-fusion-bot/internal/indicators"
	"github.com/quantbyte/signal-fusion-bot/internal/trend"
	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// divergenceLookback is the candle span price changes are measured over
// when checking price/indicator divergence.
const divergenceLookback = 10

// InputBuilder computes the fusion inputs for one instrument from its
// candle history. It reads history but never mutates it.
type InputBuilder struct {
	cfg      config.AnalysisConfig
	fcfg     config.FusionConfig
	analyzer *trend.Analyzer

	rsi       *indicators.RSI
	macd      *indicators.MACD
	bollinger *indicators.BollingerBands
	obv       *indicators.OBV
	volRank   *indicators.VolatilityRank
}

// NewInputBuilder creates an input builder over the shared analyzer.
func NewInputBuilder(acfg config.AnalysisConfig, fcfg config.FusionConfig, analyzer *trend.Analyzer) *InputBuilder {
	return &InputBuilder{
		cfg:       acfg,
		fcfg:      fcfg,
		analyzer:  analyzer,
		rsi:       indicators.NewRSI(acfg.RSIPeriod),
		macd:      indicators.NewMACD(acfg.MACDFastPeriod, acfg.MACDSlowPeriod, acfg.MACDSignalPeriod),
		bollinger: indicators.NewBollingerBands(acfg.BollingerPeriod, acfg.BollingerStdDev),
		obv:       indicators.NewOBV(),
		volRank:   indicators.NewVolatilityRank(acfg.VolatilityWindow, acfg.VolatilityMinCandles),
	}
}

// Build assembles the fusion inputs from the intraday series and the
// optional daily series. Indicators short on data are simply left out.
func (b *InputBuilder) Build(intraday, daily []types.Candle) Inputs {
	in := Inputs{}
	if len(intraday) == 0 {
		return in
	}

	priceChange := fractionalChange(intraday, divergenceLookback)

	if value, err := b.rsi.Calculate(intraday); err == nil {
		if prev, err := b.rsi.Calculate(intraday[:len(intraday)-1]); err == nil {
			in.RSI = &RSIInput{Value: value, Prev: prev, PriceChange: priceChange}
		}
	}

	if res, err := b.macd.Calculate(intraday); err == nil {
		in.MACD = &MACDInput{
			MACDResult:  res,
			Price:       intraday[len(intraday)-1].Close,
			PriceChange: priceChange,
			LineChange:  res.Line - res.PrevLine,
		}
	}

	in.ShortTerm = b.analyzer.AnalyzeShortTerm(intraday)

	// The daily series drives the long-term view when it is deep
	// enough; otherwise fall back to the intraday series.
	if len(daily) >= b.cfg.MinLongTermCandles {
		in.LongTerm = b.analyzer.AnalyzeLongTerm(daily, true)
	} else {
		in.LongTerm = b.analyzer.AnalyzeLongTerm(intraday, false)
	}

	if bands, err := b.bollinger.Calculate(intraday); err == nil {
		in.Bollinger = &BollingerInput{
			BollingerResult: bands,
			Price:           intraday[len(intraday)-1].Close,
		}
	}

	if len(intraday) >= b.fcfg.VolumePeriod+1 {
		sum := 0.0
		for i := len(intraday) - b.fcfg.VolumePeriod; i < len(intraday); i++ {
			sum += intraday[i].Volume
		}
		in.Volume = &VolumeInput{
			Current:  intraday[len(intraday)-1].Volume,
			Average:  sum / float64(b.fcfg.VolumePeriod),
			OBVTrend: b.obv.Trend(intraday, divergenceLookback),
		}
	}

	if level, err := b.volRank.Calculate(intraday); err == nil {
		in.Volatility = level
	}

	return in
}

// fractionalChange returns the fractional close-to-close move over the
// last lookback candles, 0 when the history is too short.
func fractionalChange(data []types.Candle, lookback int) float64 {
	if len(data) <= lookback {
		return 0
	}
	past := data[len(data)-1-lookback].Close
	if past == 0 {
		return 0
	}
	return (data[len(data)-1].Close - past) / past
}
