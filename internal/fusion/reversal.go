package fusion

import (
	"math"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
	"github.com/quantbyte/signal-fusion-bot/internal/trend"
)

// Close reasons emitted by the reversal detector.
const (
	ReasonProfitProtection = "profit protection"
	ReasonCriticalReversal = "critical reversal"
	ReasonLossMinimization = "loss minimization"
)

// ReversalDecision is the outcome of evaluating one open position
// against the current signals.
type ReversalDecision struct {
	Close    bool
	Reason   string
	Strength float64 // The weighted reversal score that drove the decision
}

// ReversalDetector scores signals against an open position's direction
// and decides whether to close it to protect profit or limit loss. It
// runs once per cycle per open position, before any new entries.
type ReversalDetector struct {
	cfg  config.ReversalConfig
	fcfg config.FusionConfig
}

// NewReversalDetector creates a reversal detector.
func NewReversalDetector(cfg config.ReversalConfig, fcfg config.FusionConfig) *ReversalDetector {
	return &ReversalDetector{cfg: cfg, fcfg: fcfg}
}

// Evaluate scores the reversal evidence against a position. long states
// the position side; pnlPercent is the unrealized PnL in percent of the
// entry price. A disabled detector never closes.
func (d *ReversalDetector) Evaluate(long bool, pnlPercent float64, sig *Signal, in Inputs) ReversalDecision {
	if !d.cfg.Enabled {
		return ReversalDecision{}
	}

	strength := d.score(long, sig, in)

	// First matching rule wins.
	switch {
	case pnlPercent > d.cfg.ProfitProtectPnL && strength > d.cfg.ProfitProtectThreshold:
		return ReversalDecision{Close: true, Reason: ReasonProfitProtection, Strength: strength}
	case strength > d.cfg.CriticalThreshold:
		return ReversalDecision{Close: true, Reason: ReasonCriticalReversal, Strength: strength}
	case pnlPercent < d.cfg.LossMinimizePnL && strength > d.cfg.LossMinimizeThreshold:
		return ReversalDecision{Close: true, Reason: ReasonLossMinimization, Strength: strength}
	default:
		return ReversalDecision{Strength: strength}
	}
}

// score accumulates the weighted reversal evidence. Each contribution
// factor is normalized into [0, 1] before weighting so the thresholds
// stay comparable across instruments.
func (d *ReversalDetector) score(long bool, sig *Signal, in Inputs) float64 {
	against := Sell
	opposing := trend.Bearish
	if !long {
		against = Buy
		opposing = trend.Bullish
	}

	score := 0.0

	if sig != nil && sig.Direction == against {
		score += d.cfg.SignalWeight * math.Min(sig.Strength, 1.0)
	}

	if in.LongTerm != nil && in.LongTerm.Direction == opposing &&
		in.LongTerm.Confidence > d.cfg.LongTermMinConf {
		score += d.cfg.LongTermWeight * (in.LongTerm.Confidence / 100)
	}

	if in.ShortTerm != nil && in.ShortTerm.Direction == opposing {
		score += d.cfg.ShortTermWeight * math.Min(in.ShortTerm.Strength, 1.0)
	}

	if in.RSI != nil {
		if long && in.RSI.Value > d.fcfg.RSIOverbought {
			score += d.cfg.RSIExtremeWeight
		}
		if !long && in.RSI.Value < d.fcfg.RSIOversold {
			score += d.cfg.RSIExtremeWeight
		}
	}

	if in.MACD != nil {
		bearCross := in.MACD.PrevLine >= in.MACD.PrevSignal && in.MACD.Line < in.MACD.Signal
		bullCross := in.MACD.PrevLine <= in.MACD.PrevSignal && in.MACD.Line > in.MACD.Signal
		if (long && bearCross) || (!long && bullCross) {
			score += d.cfg.MACDCrossWeight
		}
	}

	if sig != nil && sig.Confidence >= d.cfg.ConfidenceFloor {
		score += d.cfg.ConfidenceWeight * (sig.Confidence / 100)
	}

	return score
}
