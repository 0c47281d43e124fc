package fusion

import (
	"github.com/quantbyte/signal-fusion-bot/internal/indicators"
	"github.com/quantbyte/signal-fusion-bot/internal/trend"
)

// Direction is the direction of a fused trading signal.
type Direction string

const (
	Buy     Direction = "buy"
	Sell    Direction = "sell"
	Neutral Direction = "neutral"
)

// Contribution records what one indicator added to the fused signal.
type Contribution struct {
	Indicator  string    `json:"indicator"`
	Direction  Direction `json:"direction"`
	Strength   float64   `json:"strength"`
	Confidence float64   `json:"confidence"`
	Note       string    `json:"note,omitempty"`
}

// Signal is the fused directional trading signal for one instrument.
type Signal struct {
	Direction     Direction
	Strength      float64 // |bullish - bearish| vote mass
	Confidence    float64 // Clamped to [0, 100]
	Contributions []Contribution
}

// RSIInput carries the RSI values the fusion rules need. PriceChange is
// the fractional price move over the divergence lookback.
type RSIInput struct {
	Value       float64
	Prev        float64
	PriceChange float64
}

// MACDInput carries MACD values plus the price context used for
// histogram scaling and divergence detection.
type MACDInput struct {
	indicators.MACDResult
	Price       float64
	PriceChange float64
	LineChange  float64
}

// BollingerInput pairs the bands with the price they are tested against.
type BollingerInput struct {
	indicators.BollingerResult
	Price float64
}

// VolumeInput carries current versus average volume and the OBV trend
// direction (1 rising, -1 falling, 0 flat).
type VolumeInput struct {
	Current  float64
	Average  float64
	OBVTrend int
}

// Inputs gathers everything the fusion step consumes. Nil pointers and
// an empty volatility level mean the source is unavailable; fusion
// tolerates any subset.
type Inputs struct {
	RSI        *RSIInput
	MACD       *MACDInput
	ShortTerm  *trend.ShortTerm
	LongTerm   *trend.Assessment
	Bollinger  *BollingerInput
	Volume     *VolumeInput
	Volatility indicators.VolatilityLevel
}
