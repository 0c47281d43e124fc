package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the complete configuration for the signal fusion bot.
type Config struct {
	Engine   EngineConfig   `json:"engine"`
	Analysis AnalysisConfig `json:"analysis"`
	Fusion   FusionConfig   `json:"fusion"`
	Reversal ReversalConfig `json:"reversal"`
	Risk     RiskConfig     `json:"risk"`

	Exchange ExchangeConfig `json:"exchange"`

	Monitoring    MonitoringConfig    `json:"monitoring"`
	Notifications *NotificationConfig `json:"notifications,omitempty"`
}

// EngineConfig drives the periodic analysis cycle.
type EngineConfig struct {
	Symbols       []string      `json:"symbols"`        // Instruments, visited in this order every cycle
	Interval      string        `json:"interval"`       // Kline interval for the intraday series (Bybit notation)
	CycleInterval time.Duration `json:"cycle_interval"` // Time between analysis cycles
	CandleLimit   int           `json:"candle_limit"`   // Candles fetched per series per cycle
	MaxCandles    int           `json:"max_candles"`    // Price history capacity per series
}

// AnalysisConfig holds every tunable of the trend analyzer. Defaults
// reproduce the reference behavior; override any field via JSON.
type AnalysisConfig struct {
	// Indicator periods
	RSIPeriod        int     `json:"rsi_period"`
	MACDFastPeriod   int     `json:"macd_fast_period"`
	MACDSlowPeriod   int     `json:"macd_slow_period"`
	MACDSignalPeriod int     `json:"macd_signal_period"`
	BollingerPeriod  int     `json:"bollinger_period"`
	BollingerStdDev  float64 `json:"bollinger_std_dev"`
	ATRPeriod        int     `json:"atr_period"`

	// Volatility percentile rank
	VolatilityWindow     int `json:"volatility_window"`      // Candles per realized-vol sample
	VolatilityMinCandles int `json:"volatility_min_candles"` // Minimum history for ranking

	// Short-term structural trend
	ShortTermCandles    int     `json:"short_term_candles"`
	ShortTermMinChange  float64 `json:"short_term_min_change"`
	QualityMediumChange float64 `json:"quality_medium_change"`
	QualityHighChange   float64 `json:"quality_high_change"`

	// Long-term multi-timeframe trend
	EMAFastPeriod      int     `json:"ema_fast_period"`
	EMAMediumPeriod    int     `json:"ema_medium_period"`
	EMASlowPeriod      int     `json:"ema_slow_period"`
	MinLongTermCandles int     `json:"min_long_term_candles"`
	TimeframeShort     int     `json:"timeframe_short"`  // Candle counts per timeframe window
	TimeframeMedium    int     `json:"timeframe_medium"`
	TimeframeLong      int     `json:"timeframe_long"`
	WeightShort        float64 `json:"weight_short"`
	WeightMedium       float64 `json:"weight_medium"`
	WeightLong         float64 `json:"weight_long"`
	EMAVoteWeight      float64 `json:"ema_vote_weight"`

	MinChangeThreshold  float64 `json:"min_change_threshold"`  // Doubled for the daily series
	StrongMoveThreshold float64 `json:"strong_move_threshold"` // Daily confidence bonus trigger
	BaseConfidence      float64 `json:"base_confidence"`       // Intraday series
	BaseConfidenceDaily float64 `json:"base_confidence_daily"`
	ConfChangeSlope     float64 `json:"conf_change_slope"`
	ConfChangeCap       float64 `json:"conf_change_cap"`
	HighVolThreshold    float64 `json:"high_vol_threshold"`   // Realized vol considered high within a timeframe
	HighVolConfFactor   float64 `json:"high_vol_conf_factor"` // Confidence multiplier in high volatility
	MinTrendStrength    float64 `json:"min_trend_strength"`   // Below this the overall direction is neutral
}

// FusionConfig holds the signal fusion weights and thresholds.
type FusionConfig struct {
	RSIOversold       float64 `json:"rsi_oversold"`
	RSIOverbought     float64 `json:"rsi_overbought"`
	RSIMildLowerFrom  float64 `json:"rsi_mild_lower_from"`
	RSIMildLowerTo    float64 `json:"rsi_mild_lower_to"`
	RSIMildUpperFrom  float64 `json:"rsi_mild_upper_from"`
	RSIMildUpperTo    float64 `json:"rsi_mild_upper_to"`
	RSIStrength       float64 `json:"rsi_strength"`
	RSIConfidence     float64 `json:"rsi_confidence"`
	RSIMildStrength   float64 `json:"rsi_mild_strength"`
	RSIMildConfidence float64 `json:"rsi_mild_confidence"`
	RSIDivStrength    float64 `json:"rsi_div_strength"`
	RSIDivConfidence  float64 `json:"rsi_div_confidence"`

	MACDStrength      float64 `json:"macd_strength"`
	MACDConfidence    float64 `json:"macd_confidence"`
	MACDHistThreshold float64 `json:"macd_hist_threshold"` // Histogram magnitude that amplifies a cross
	MACDAmpStrength   float64 `json:"macd_amp_strength"`
	MACDAmpConfidence float64 `json:"macd_amp_confidence"`
	MACDDivStrength   float64 `json:"macd_div_strength"`
	MACDDivConfidence float64 `json:"macd_div_confidence"`

	BollingerStrength   float64 `json:"bollinger_strength"`
	BollingerConfidence float64 `json:"bollinger_confidence"`

	// Short-term contribution confidence per quality tier
	QualityLowConf    float64 `json:"quality_low_conf"`
	QualityMediumConf float64 `json:"quality_medium_conf"`
	QualityHighConf   float64 `json:"quality_high_conf"`

	LongTermWeight       float64 `json:"long_term_weight"`      // Long-term trend dominance multiplier
	LongTermConfFactor   float64 `json:"long_term_conf_factor"` // Fraction of long-term confidence carried over
	StrongTierStrength   float64 `json:"strong_tier_strength"`
	StrongTierConf       float64 `json:"strong_tier_conf"`
	ModerateTierStrength float64 `json:"moderate_tier_strength"`
	ModerateTierConf     float64 `json:"moderate_tier_conf"`

	VolumeSpikeRatio    float64 `json:"volume_spike_ratio"` // Current vs average volume
	VolumePeriod        int     `json:"volume_period"`
	VolumeStrength      float64 `json:"volume_strength"`
	VolumeConfidence    float64 `json:"volume_confidence"`
	VolumePartialConf   float64 `json:"volume_partial_conf"`
	VolMediumConfidence float64 `json:"vol_medium_confidence"` // Preferred volatility regime
	VolEdgeConfidence   float64 `json:"vol_edge_confidence"`   // Low or high volatility regime

	NeutralBaselineConf float64 `json:"neutral_baseline_conf"` // Keeps confidence from locking at zero

	AlignmentStrength   float64 `json:"alignment_strength"`
	AlignmentConfidence float64 `json:"alignment_confidence"`
	ContradictionFactor float64 `json:"contradiction_factor"` // Confidence multiplier when misaligned

	MinDirectionRatio float64 `json:"min_direction_ratio"` // |bull-bear|/total required for a direction
	MinConfidence     float64 `json:"min_confidence"`      // Required for a non-neutral signal
	VetoConfidence    float64 `json:"veto_confidence"`     // Long-term confidence that can veto the base signal
}

// ReversalConfig holds the trend-reversal detector weights and policy thresholds.
type ReversalConfig struct {
	Enabled bool `json:"enabled"`

	SignalWeight     float64 `json:"signal_weight"`
	LongTermWeight   float64 `json:"long_term_weight"`
	LongTermMinConf  float64 `json:"long_term_min_conf"`
	ShortTermWeight  float64 `json:"short_term_weight"`
	RSIExtremeWeight float64 `json:"rsi_extreme_weight"`
	MACDCrossWeight  float64 `json:"macd_cross_weight"`
	ConfidenceWeight float64 `json:"confidence_weight"`
	ConfidenceFloor  float64 `json:"confidence_floor"` // Signal confidence required for the confidence term

	ProfitProtectPnL       float64 `json:"profit_protect_pnl"`       // Unrealized PnL %, positive
	ProfitProtectThreshold float64 `json:"profit_protect_threshold"` // Reversal strength
	CriticalThreshold      float64 `json:"critical_threshold"`
	LossMinimizePnL        float64 `json:"loss_minimize_pnl"` // Unrealized PnL %, negative
	LossMinimizeThreshold  float64 `json:"loss_minimize_threshold"`
}

// RiskConfig holds position sizing and portfolio limits.
type RiskConfig struct {
	InitialBalance       float64 `json:"initial_balance"`
	PositionSizeFraction float64 `json:"position_size_fraction"`
	MinPositionUSD       float64 `json:"min_position_usd"`
	MaxBalanceFraction   float64 `json:"max_balance_fraction"`

	RiskFraction float64 `json:"risk_fraction"` // Stop-loss distance from entry
	RewardRatio  float64 `json:"reward_ratio"`  // Take-profit distance in risk units

	TrailingStopEnabled  bool    `json:"trailing_stop_enabled"`
	TrailingStopDistance float64 `json:"trailing_stop_distance"` // Fraction of the favorable extreme

	MaxOpenPositions int           `json:"max_open_positions"`
	DailyLossLimit   float64       `json:"daily_loss_limit"`
	MaxDrawdown      float64       `json:"max_drawdown"`
	TradingHourStart int           `json:"trading_hour_start"` // UTC, inclusive
	TradingHourEnd   int           `json:"trading_hour_end"`   // UTC, exclusive
	MaxHoldDuration  time.Duration `json:"max_hold_duration"`

	MinSignalStrength float64 `json:"min_signal_strength"`
	MinConfidence     float64 `json:"min_confidence"`
}

// ExchangeConfig holds venue credentials and environment selection.
type ExchangeConfig struct {
	Name      string `json:"name"`
	Category  string `json:"category"` // "spot", "linear"
	APIKey    string `json:"api_key,omitempty"`
	APISecret string `json:"api_secret,omitempty"`
	Testnet   bool   `json:"testnet"`
	Demo      bool   `json:"demo"`
}

type MonitoringConfig struct {
	MetricsPort int `json:"metrics_port"`
	HealthPort  int `json:"health_port"`
}

type NotificationConfig struct {
	Enabled       bool   `json:"enabled"`
	TelegramToken string `json:"telegram_token,omitempty"`
	TelegramChat  string `json:"telegram_chat,omitempty"`
}

// Default returns the reference configuration. All numeric constants of
// the trend, fusion, reversal and risk logic live here so behavior stays
// reproducible while every value remains overridable.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Symbols:       []string{"BTCUSDT", "ETHUSDT"},
			Interval:      "60",
			CycleInterval: 30 * time.Second,
			CandleLimit:   200,
			MaxCandles:    500,
		},
		Analysis: AnalysisConfig{
			RSIPeriod:        14,
			MACDFastPeriod:   12,
			MACDSlowPeriod:   26,
			MACDSignalPeriod: 9,
			BollingerPeriod:  20,
			BollingerStdDev:  2.0,
			ATRPeriod:        14,

			VolatilityWindow:     20,
			VolatilityMinCandles: 100,

			ShortTermCandles:    20,
			ShortTermMinChange:  0.002,
			QualityMediumChange: 0.01,
			QualityHighChange:   0.02,

			EMAFastPeriod:      50,
			EMAMediumPeriod:    100,
			EMASlowPeriod:      200,
			MinLongTermCandles: 200,
			TimeframeShort:     20,
			TimeframeMedium:    50,
			TimeframeLong:      100,
			WeightShort:        0.5,
			WeightMedium:       0.3,
			WeightLong:         0.2,
			EMAVoteWeight:      0.2,

			MinChangeThreshold:  0.01,
			StrongMoveThreshold: 0.05,
			HighVolThreshold:    0.02,
			BaseConfidence:      50,
			BaseConfidenceDaily: 60,
			ConfChangeSlope:     500,
			ConfChangeCap:       95,
			HighVolConfFactor:   0.8,
			MinTrendStrength:    0.3,
		},
		Fusion: FusionConfig{
			RSIOversold:       25,
			RSIOverbought:     75,
			RSIMildLowerFrom:  30,
			RSIMildLowerTo:    35,
			RSIMildUpperFrom:  65,
			RSIMildUpperTo:    70,
			RSIStrength:       1.2,
			RSIConfidence:     25,
			RSIMildStrength:   0.8,
			RSIMildConfidence: 15,
			RSIDivStrength:    1.5,
			RSIDivConfidence:  20,

			MACDStrength:      1.0,
			MACDConfidence:    20,
			MACDHistThreshold: 0.0001,
			MACDAmpStrength:   1.3,
			MACDAmpConfidence: 10,
			MACDDivStrength:   1.4,
			MACDDivConfidence: 25,

			BollingerStrength:   0.9,
			BollingerConfidence: 15,

			QualityLowConf:    5,
			QualityMediumConf: 10,
			QualityHighConf:   15,

			LongTermWeight:       2.0,
			LongTermConfFactor:   0.8,
			StrongTierStrength:   1.0,
			StrongTierConf:       20,
			ModerateTierStrength: 0.5,
			ModerateTierConf:     10,

			VolumeSpikeRatio:    1.5,
			VolumePeriod:        20,
			VolumeStrength:      0.8,
			VolumeConfidence:    15,
			VolumePartialConf:   5,
			VolMediumConfidence: 10,
			VolEdgeConfidence:   5,

			NeutralBaselineConf: 3,

			AlignmentStrength:   0.5,
			AlignmentConfidence: 15,
			ContradictionFactor: 0.7,

			MinDirectionRatio: 0.4,
			MinConfidence:     30,
			VetoConfidence:    50,
		},
		Reversal: ReversalConfig{
			Enabled: true,

			SignalWeight:     0.30,
			LongTermWeight:   0.35,
			LongTermMinConf:  60,
			ShortTermWeight:  0.20,
			RSIExtremeWeight: 0.075,
			MACDCrossWeight:  0.075,
			ConfidenceWeight: 0.025,
			ConfidenceFloor:  30,

			ProfitProtectPnL:       2.0,
			ProfitProtectThreshold: 0.4,
			CriticalThreshold:      0.7,
			LossMinimizePnL:        -1.5,
			LossMinimizeThreshold:  0.5,
		},
		Risk: RiskConfig{
			InitialBalance:       10000,
			PositionSizeFraction: 0.05,
			MinPositionUSD:       25,
			MaxBalanceFraction:   0.7,

			RiskFraction: 0.02,
			RewardRatio:  2.0,

			TrailingStopEnabled:  true,
			TrailingStopDistance: 0.015,

			MaxOpenPositions: 5,
			DailyLossLimit:   500,
			MaxDrawdown:      0.15,
			TradingHourStart: 0,
			TradingHourEnd:   24,
			MaxHoldDuration:  24 * time.Hour,

			MinSignalStrength: 0.5,
			MinConfidence:     40,
		},
		Exchange: ExchangeConfig{
			Name:     "bybit",
			Category: "linear",
			Testnet:  true,
		},
		Monitoring: MonitoringConfig{
			MetricsPort: 8080,
			HealthPort:  8081,
		},
	}
}

// Load reads a JSON config file on top of the defaults and then applies
// environment variable overrides for credentials and basic knobs.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BYBIT_API_KEY"); v != "" {
		c.Exchange.APIKey = v
	}
	if v := os.Getenv("BYBIT_API_SECRET"); v != "" {
		c.Exchange.APISecret = v
	}
	if v := os.Getenv("BYBIT_TESTNET"); v != "" {
		c.Exchange.Testnet = v == "true" || v == "1"
	}
	if v := os.Getenv("BYBIT_DEMO"); v != "" {
		c.Exchange.Demo = v == "true" || v == "1"
	}
	if v := os.Getenv("INITIAL_BALANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.Risk.InitialBalance = f
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Notifications == nil {
			c.Notifications = &NotificationConfig{Enabled: true}
		}
		c.Notifications.TelegramToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if c.Notifications == nil {
			c.Notifications = &NotificationConfig{Enabled: true}
		}
		c.Notifications.TelegramChat = v
	}
}

// Validate checks the configuration for values that would make the
// engine misbehave silently.
func (c *Config) Validate() error {
	if len(c.Engine.Symbols) == 0 {
		return fmt.Errorf("at least one trading symbol is required")
	}
	if c.Engine.CycleInterval <= 0 {
		return fmt.Errorf("cycle_interval must be positive")
	}
	if c.Engine.MaxCandles < c.Analysis.MinLongTermCandles {
		return fmt.Errorf("max_candles (%d) must cover the long-term minimum (%d)",
			c.Engine.MaxCandles, c.Analysis.MinLongTermCandles)
	}
	if c.Risk.PositionSizeFraction <= 0 || c.Risk.PositionSizeFraction > 1 {
		return fmt.Errorf("position_size_fraction must be in (0, 1]")
	}
	if c.Risk.RiskFraction <= 0 || c.Risk.RiskFraction >= 1 {
		return fmt.Errorf("risk_fraction must be in (0, 1)")
	}
	if c.Risk.RewardRatio <= 0 {
		return fmt.Errorf("reward_ratio must be positive")
	}
	if c.Risk.TradingHourStart < 0 || c.Risk.TradingHourEnd > 24 ||
		c.Risk.TradingHourStart >= c.Risk.TradingHourEnd {
		return fmt.Errorf("invalid trading hours window [%d, %d)",
			c.Risk.TradingHourStart, c.Risk.TradingHourEnd)
	}
	if c.Fusion.MinDirectionRatio <= 0 || c.Fusion.MinDirectionRatio >= 1 {
		return fmt.Errorf("min_direction_ratio must be in (0, 1)")
	}
	return nil
}
