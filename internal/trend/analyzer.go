package trend

import (
	"math"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
	"github.com/quantbyte/signal-fusion-bot/internal/indicators"
	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// Analyzer derives short-term structural and long-term multi-timeframe
// trend assessments from candle history. It never mutates the history
// it reads.
type Analyzer struct {
	cfg     config.AnalysisConfig
	emaFast *indicators.EMA
	emaMed  *indicators.EMA
	emaSlow *indicators.EMA
}

// NewAnalyzer creates a trend analyzer with the given configuration.
func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		emaFast: indicators.NewEMA(cfg.EMAFastPeriod),
		emaMed:  indicators.NewEMA(cfg.EMAMediumPeriod),
		emaSlow: indicators.NewEMA(cfg.EMASlowPeriod),
	}
}

// AnalyzeShortTerm classifies the most recent window of candles from
// the percentage price change and the count of locally higher highs
// against lower-low violations.
func (a *Analyzer) AnalyzeShortTerm(data []types.Candle) *ShortTerm {
	window := a.cfg.ShortTermCandles
	if len(data) < window {
		return &ShortTerm{Direction: Neutral, Quality: QualityLow}
	}

	recent := data[len(data)-window:]
	first := recent[0].Close
	last := recent[len(recent)-1].Close
	if first == 0 {
		return &ShortTerm{Direction: Neutral, Quality: QualityLow}
	}
	change := (last - first) / first

	higherHighs := 0
	lowerLows := 0
	for i := 1; i < len(recent); i++ {
		if recent[i].High > recent[i-1].High {
			higherHighs++
		}
		if recent[i].Low < recent[i-1].Low {
			lowerLows++
		}
	}
	structural := higherHighs - lowerLows

	direction := Neutral
	switch {
	case change > a.cfg.ShortTermMinChange && structural >= 0:
		direction = Bullish
	case change < -a.cfg.ShortTermMinChange && structural <= 0:
		direction = Bearish
	}

	quality := QualityLow
	switch {
	case math.Abs(change) >= a.cfg.QualityHighChange:
		quality = QualityHigh
	case math.Abs(change) >= a.cfg.QualityMediumChange:
		quality = QualityMedium
	}

	confidence := math.Min(math.Abs(change)*a.cfg.ConfChangeSlope+math.Abs(float64(structural))*2, a.cfg.ConfChangeCap)

	return &ShortTerm{
		Direction:   direction,
		Strength:    math.Abs(change) * 100,
		Confidence:  confidence,
		Quality:     quality,
		PriceChange: change,
	}
}

// AnalyzeLongTerm assesses three timeframe windows independently and
// combines them with configured weights and an EMA-ordering vote. A
// history shorter than the slow EMA period yields an insufficient_data
// assessment rather than an error.
func (a *Analyzer) AnalyzeLongTerm(data []types.Candle, daily bool) *Assessment {
	if len(data) < a.cfg.MinLongTermCandles {
		return &Assessment{
			Direction:      Neutral,
			Recommendation: InsufficientData,
			Timeframes:     map[string]TimeframeTrend{},
		}
	}

	timeframes := map[string]TimeframeTrend{
		"short":  a.assessTimeframe(data, a.cfg.TimeframeShort, daily),
		"medium": a.assessTimeframe(data, a.cfg.TimeframeMedium, daily),
		"long":   a.assessTimeframe(data, a.cfg.TimeframeLong, daily),
	}
	weights := map[string]float64{
		"short":  a.cfg.WeightShort,
		"medium": a.cfg.WeightMedium,
		"long":   a.cfg.WeightLong,
	}

	bullScore := 0.0
	bearScore := 0.0
	confidenceSum := 0.0
	weightSum := 0.0
	for name, tf := range timeframes {
		w := weights[name]
		switch tf.Direction {
		case Bullish:
			bullScore += w * (tf.Confidence / 100)
		case Bearish:
			bearScore += w * (tf.Confidence / 100)
		}
		confidenceSum += tf.Confidence * w
		weightSum += w
	}

	bullVotes, totalVotes := a.emaVotes(data)
	if totalVotes > 0 {
		bullScore += a.cfg.EMAVoteWeight * float64(bullVotes) / float64(totalVotes)
		bearScore += a.cfg.EMAVoteWeight * float64(totalVotes-bullVotes) / float64(totalVotes)
	}

	strength := math.Abs(bullScore - bearScore)
	confidence := 0.0
	if weightSum > 0 {
		confidence = confidenceSum / weightSum
	}

	direction := Neutral
	if strength > a.cfg.MinTrendStrength {
		if bullScore > bearScore {
			direction = Bullish
		} else {
			direction = Bearish
		}
	}

	assessment := &Assessment{
		Direction:  direction,
		Strength:   strength,
		Confidence: confidence,
		Timeframes: timeframes,
	}
	assessment.Recommendation = a.recommend(assessment)
	return assessment
}

// assessTimeframe evaluates the direction of one candle-count window.
func (a *Analyzer) assessTimeframe(data []types.Candle, count int, daily bool) TimeframeTrend {
	if len(data) < count || count < 2 {
		return TimeframeTrend{Direction: Neutral}
	}

	window := data[len(data)-count:]
	first := window[0].Close
	last := window[len(window)-1].Close
	if first == 0 {
		return TimeframeTrend{Direction: Neutral}
	}
	change := (last - first) / first

	minChange := a.cfg.MinChangeThreshold
	if daily {
		minChange *= 2
	}

	higherHighs := 0
	lowerLows := 0
	for i := 1; i < len(window); i++ {
		if window[i].High > window[i-1].High {
			higherHighs++
		}
		if window[i].Low < window[i-1].Low {
			lowerLows++
		}
	}
	structural := higherHighs - lowerLows

	direction := Neutral
	switch {
	case change > minChange && structural >= 0:
		direction = Bullish
	case change < -minChange && structural <= 0:
		direction = Bearish
	case change > minChange*2:
		// A move this size overrides a mixed structure.
		direction = Bullish
	case change < -minChange*2:
		direction = Bearish
	}

	base := a.cfg.BaseConfidence
	if daily {
		base = a.cfg.BaseConfidenceDaily
	}
	confidence := base + math.Min(math.Abs(change)*a.cfg.ConfChangeSlope, a.cfg.ConfChangeCap)
	if daily && math.Abs(change) > a.cfg.StrongMoveThreshold {
		confidence += 10
	}

	volatility := indicators.RealizedVolatility(window)
	if volatility > a.cfg.HighVolThreshold {
		confidence *= a.cfg.HighVolConfFactor
	}
	confidence = math.Min(confidence, 100)

	return TimeframeTrend{
		Direction:   direction,
		PriceChange: change,
		Confidence:  confidence,
		Volatility:  volatility,
	}
}

// emaVotes counts bullish outcomes of the EMA ordering checks: fast vs
// medium, medium vs slow, and price vs each EMA.
func (a *Analyzer) emaVotes(data []types.Candle) (bullish, total int) {
	fast, errFast := a.emaFast.Calculate(data)
	med, errMed := a.emaMed.Calculate(data)
	slow, errSlow := a.emaSlow.Calculate(data)
	if errFast != nil || errMed != nil || errSlow != nil {
		return 0, 0
	}

	price := data[len(data)-1].Close
	checks := []bool{
		fast > med,
		med > slow,
		price > fast,
		price > med,
		price > slow,
	}
	for _, up := range checks {
		if up {
			bullish++
		}
	}
	return bullish, len(checks)
}

// recommend derives the recommendation tier from confidence, strength
// and the fraction of timeframes agreeing with the overall direction.
func (a *Analyzer) recommend(as *Assessment) Recommendation {
	if as.Confidence < 30 {
		return InsufficientData
	}
	if as.Strength < a.cfg.MinTrendStrength {
		return WeakTrend
	}

	agreeing := 0
	for _, tf := range as.Timeframes {
		if tf.Direction == as.Direction {
			agreeing++
		}
	}
	ratio := float64(agreeing) / float64(len(as.Timeframes))

	buy := as.Direction == Bullish
	switch {
	case ratio >= 0.7 && as.Confidence >= 60:
		if buy {
			return StrongBuy
		}
		return StrongSell
	case ratio >= 0.5 && as.Confidence >= 40:
		if buy {
			return ModerateBuy
		}
		return ModerateSell
	case ratio >= 0.3 && as.Confidence >= 30:
		if buy {
			return WeakBuy
		}
		return WeakSell
	default:
		return MixedSignals
	}
}
