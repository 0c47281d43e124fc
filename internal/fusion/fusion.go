package fusion

import (
	"math"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
	"github.com/quantbyte/signal-fusion-bot/internal/indicators"
	"github.com/quantbyte/signal-fusion-bot/internal/trend"
)

// Fuser combines indicator signals, short- and long-term trend, volume
// and volatility into one directional trading signal. The long-term
// trend dominates: it votes with double weight, carries tier bonuses
// and can veto a contradicting base signal outright.
type Fuser struct {
	cfg config.FusionConfig
}

// NewFuser creates a signal fuser with the given weights and thresholds.
func NewFuser(cfg config.FusionConfig) *Fuser {
	return &Fuser{cfg: cfg}
}

// Fuse produces the fused signal for one instrument. Every unavailable
// input is skipped; every available-but-neutral indicator still adds a
// small baseline confidence so a quiet market cannot lock the signal at
// zero confidence forever.
func (f *Fuser) Fuse(in Inputs) *Signal {
	var (
		bull, bear    float64
		confidence    float64
		count         int
		contributions []Contribution
	)

	add := func(name string, dir Direction, strength, conf float64, note string) {
		switch dir {
		case Buy:
			bull += strength
		case Sell:
			bear += strength
		}
		confidence += conf
		contributions = append(contributions, Contribution{
			Indicator:  name,
			Direction:  dir,
			Strength:   strength,
			Confidence: conf,
			Note:       note,
		})
	}

	rsiVote := Neutral
	if in.RSI != nil {
		count++
		rsiVote = f.fuseRSI(*in.RSI, add)
	}

	macdVote := Neutral
	if in.MACD != nil {
		count++
		macdVote = f.fuseMACD(*in.MACD, add)
	}

	if in.ShortTerm != nil {
		count++
		f.fuseShortTerm(*in.ShortTerm, add)
	}

	if in.Bollinger != nil {
		count++
		f.fuseBollinger(*in.Bollinger, add)
	}

	longTermDir := Neutral
	if in.LongTerm != nil && in.LongTerm.Recommendation != trend.InsufficientData {
		count++
		longTermDir = f.fuseLongTerm(*in.LongTerm, add)
	}

	if in.Volume != nil {
		count++
		f.fuseVolume(*in.Volume, add)
	}

	switch in.Volatility {
	case indicators.VolatilityMedium:
		add("volatility", Neutral, 0, f.cfg.VolMediumConfidence, "preferred regime")
	case indicators.VolatilityLow, indicators.VolatilityHigh:
		add("volatility", Neutral, 0, f.cfg.VolEdgeConfidence, "")
	}

	// Trend-alignment check: momentum votes against the dominant trend
	// either earn a bonus or cost a flat confidence penalty.
	if longTermDir != Neutral {
		applicable := 0
		agreeing := 0
		for _, vote := range []Direction{rsiVote, macdVote} {
			if vote == Neutral {
				continue
			}
			applicable++
			if vote == longTermDir {
				agreeing++
			}
		}
		if applicable > 0 {
			if float64(agreeing)/float64(applicable) >= 0.5 {
				add("alignment", longTermDir, f.cfg.AlignmentStrength, f.cfg.AlignmentConfidence, "momentum confirms trend")
			} else {
				confidence *= f.cfg.ContradictionFactor
			}
		}
	}

	confidence = math.Max(0, math.Min(confidence, 100))

	direction := Neutral
	if count > 0 {
		ratio := math.Abs(bull-bear) / float64(count)
		if ratio > f.cfg.MinDirectionRatio && confidence > f.cfg.MinConfidence {
			if bull > bear {
				direction = Buy
			} else {
				direction = Sell
			}
		}
	}

	// Long-term veto: a confident long-term trend forces a contradicting
	// base signal back to neutral.
	if in.LongTerm != nil && in.LongTerm.Confidence > f.cfg.VetoConfidence {
		if direction == Buy && in.LongTerm.Direction == trend.Bearish {
			direction = Neutral
		}
		if direction == Sell && in.LongTerm.Direction == trend.Bullish {
			direction = Neutral
		}
	}

	return &Signal{
		Direction:     direction,
		Strength:      math.Abs(bull - bear),
		Confidence:    confidence,
		Contributions: contributions,
	}
}

type addFunc func(name string, dir Direction, strength, conf float64, note string)

func (f *Fuser) fuseRSI(in RSIInput, add addFunc) Direction {
	rsiChange := in.Value - in.Prev

	// Price/RSI divergence straddling the 50 midline overrides the
	// plain zone classification.
	straddles := (in.Value-50)*(in.Prev-50) < 0
	diverges := in.PriceChange*rsiChange < 0
	if straddles && diverges {
		if rsiChange > 0 {
			add("rsi", Buy, f.cfg.RSIDivStrength, f.cfg.RSIDivConfidence, "bullish divergence")
			return Buy
		}
		add("rsi", Sell, f.cfg.RSIDivStrength, f.cfg.RSIDivConfidence, "bearish divergence")
		return Sell
	}

	switch {
	case in.Value < f.cfg.RSIOversold:
		add("rsi", Buy, f.cfg.RSIStrength, f.cfg.RSIConfidence, "oversold")
		return Buy
	case in.Value > f.cfg.RSIOverbought:
		add("rsi", Sell, f.cfg.RSIStrength, f.cfg.RSIConfidence, "overbought")
		return Sell
	case in.Value >= f.cfg.RSIMildLowerFrom && in.Value <= f.cfg.RSIMildLowerTo:
		add("rsi", Buy, f.cfg.RSIMildStrength, f.cfg.RSIMildConfidence, "mild oversold")
		return Buy
	case in.Value >= f.cfg.RSIMildUpperFrom && in.Value <= f.cfg.RSIMildUpperTo:
		add("rsi", Sell, f.cfg.RSIMildStrength, f.cfg.RSIMildConfidence, "mild overbought")
		return Sell
	default:
		add("rsi", Neutral, 0, f.cfg.NeutralBaselineConf, "")
		return Neutral
	}
}

func (f *Fuser) fuseMACD(in MACDInput, add addFunc) Direction {
	// MACD-vs-price divergence overrides crossover logic.
	if in.PriceChange*in.LineChange < 0 {
		if in.LineChange > 0 {
			add("macd", Buy, f.cfg.MACDDivStrength, f.cfg.MACDDivConfidence, "bullish divergence")
			return Buy
		}
		add("macd", Sell, f.cfg.MACDDivStrength, f.cfg.MACDDivConfidence, "bearish divergence")
		return Sell
	}

	bullCross := in.PrevLine <= in.PrevSignal && in.Line > in.Signal
	bearCross := in.PrevLine >= in.PrevSignal && in.Line < in.Signal

	strongHist := in.Price > 0 && math.Abs(in.Histogram)/in.Price > f.cfg.MACDHistThreshold

	switch {
	case bullCross && in.Histogram > 0:
		if strongHist {
			add("macd", Buy, f.cfg.MACDAmpStrength, f.cfg.MACDConfidence+f.cfg.MACDAmpConfidence, "strong bullish cross")
		} else {
			add("macd", Buy, f.cfg.MACDStrength, f.cfg.MACDConfidence, "bullish cross")
		}
		return Buy
	case bearCross && in.Histogram < 0:
		if strongHist {
			add("macd", Sell, f.cfg.MACDAmpStrength, f.cfg.MACDConfidence+f.cfg.MACDAmpConfidence, "strong bearish cross")
		} else {
			add("macd", Sell, f.cfg.MACDStrength, f.cfg.MACDConfidence, "bearish cross")
		}
		return Sell
	default:
		add("macd", Neutral, 0, f.cfg.NeutralBaselineConf, "")
		return Neutral
	}
}

func (f *Fuser) fuseShortTerm(st trend.ShortTerm, add addFunc) {
	conf := map[trend.Quality]float64{
		trend.QualityLow:    f.cfg.QualityLowConf,
		trend.QualityMedium: f.cfg.QualityMediumConf,
		trend.QualityHigh:   f.cfg.QualityHighConf,
	}[st.Quality]

	switch st.Direction {
	case trend.Bullish:
		add("short_term", Buy, math.Min(st.Strength, 1.0), conf, "")
	case trend.Bearish:
		add("short_term", Sell, math.Min(st.Strength, 1.0), conf, "")
	default:
		add("short_term", Neutral, 0, f.cfg.NeutralBaselineConf, "")
	}
}

func (f *Fuser) fuseBollinger(in BollingerInput, add addFunc) {
	switch {
	case in.Price <= in.Lower:
		add("bollinger", Buy, f.cfg.BollingerStrength, f.cfg.BollingerConfidence, "lower band bounce")
	case in.Price >= in.Upper:
		add("bollinger", Sell, f.cfg.BollingerStrength, f.cfg.BollingerConfidence, "upper band rejection")
	default:
		add("bollinger", Neutral, 0, f.cfg.NeutralBaselineConf, "")
	}
}

func (f *Fuser) fuseLongTerm(lt trend.Assessment, add addFunc) Direction {
	// A recommendation pointing against the assessed direction means the
	// assessment is internally inconsistent; treat it as neutral.
	dir := Neutral
	switch {
	case lt.Direction == trend.Bullish && !lt.Recommendation.IsSell():
		dir = Buy
	case lt.Direction == trend.Bearish && !lt.Recommendation.IsBuy():
		dir = Sell
	}
	if dir == Neutral {
		add("long_term", Neutral, 0, f.cfg.NeutralBaselineConf, "")
		return Neutral
	}

	add("long_term", dir, lt.Strength*f.cfg.LongTermWeight, lt.Confidence*f.cfg.LongTermConfFactor, string(lt.Recommendation))

	switch lt.Recommendation {
	case trend.StrongBuy, trend.StrongSell:
		add("long_term_tier", dir, f.cfg.StrongTierStrength, f.cfg.StrongTierConf, "strong tier bonus")
	case trend.ModerateBuy, trend.ModerateSell:
		add("long_term_tier", dir, f.cfg.ModerateTierStrength, f.cfg.ModerateTierConf, "moderate tier bonus")
	}
	return dir
}

func (f *Fuser) fuseVolume(in VolumeInput, add addFunc) {
	spike := in.Average > 0 && in.Current > f.cfg.VolumeSpikeRatio*in.Average
	if spike && in.OBVTrend > 0 {
		add("volume", Buy, f.cfg.VolumeStrength, f.cfg.VolumeConfidence, "volume spike with rising OBV")
		return
	}
	if spike && in.OBVTrend < 0 {
		add("volume", Sell, f.cfg.VolumeStrength, f.cfg.VolumeConfidence, "volume spike with falling OBV")
		return
	}
	add("volume", Neutral, 0, f.cfg.VolumePartialConf, "")
}
