package trend

// Direction is the assessed direction of a price trend.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// Opposite returns the contrary direction; neutral has none.
func (d Direction) Opposite() Direction {
	switch d {
	case Bullish:
		return Bearish
	case Bearish:
		return Bullish
	default:
		return Neutral
	}
}

// Quality grades a short-term trend by the magnitude of its move.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Recommendation is the tiered conclusion of a long-term assessment.
type Recommendation string

const (
	StrongBuy        Recommendation = "strong_buy"
	ModerateBuy      Recommendation = "moderate_buy"
	WeakBuy          Recommendation = "weak_buy"
	StrongSell       Recommendation = "strong_sell"
	ModerateSell     Recommendation = "moderate_sell"
	WeakSell         Recommendation = "weak_sell"
	WeakTrend        Recommendation = "weak_trend"
	MixedSignals     Recommendation = "mixed_signals"
	InsufficientData Recommendation = "insufficient_data"
)

// IsBuy reports whether the recommendation points long.
func (r Recommendation) IsBuy() bool {
	return r == StrongBuy || r == ModerateBuy || r == WeakBuy
}

// IsSell reports whether the recommendation points short.
func (r Recommendation) IsSell() bool {
	return r == StrongSell || r == ModerateSell || r == WeakSell
}

// ShortTerm is the structural assessment over the most recent candles.
type ShortTerm struct {
	Direction   Direction
	Strength    float64 // Unbounded; 1.0 corresponds to a 1% move
	Confidence  float64 // 0-100
	Quality     Quality
	PriceChange float64 // Fractional change over the window
}

// TimeframeTrend is one timeframe's contribution to a long-term
// assessment.
type TimeframeTrend struct {
	Direction   Direction `json:"direction"`
	PriceChange float64   `json:"price_change"`
	Confidence  float64   `json:"confidence"`
	Volatility  float64   `json:"volatility"`
}

// Assessment is the multi-timeframe long-term trend result.
type Assessment struct {
	Direction      Direction
	Strength       float64 // Combined directional score, 0 when balanced
	Confidence     float64 // 0-100
	Recommendation Recommendation
	Timeframes     map[string]TimeframeTrend
}
