package risk

import "time"

// Side is the direction of a position.
type Side string

const (
	Long  Side = "long"
	Short Side = "short"
)

// Status is the lifecycle state of a position.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Close reasons attached by the trigger checks.
const (
	ReasonStopLoss   = "stop loss"
	ReasonTakeProfit = "take profit"
	ReasonMaxHold    = "max hold time"
)

// Position is one open or historical trade. At most one open position
// exists per symbol at any time.
type Position struct {
	Symbol     string  `json:"symbol"`
	Side       Side    `json:"side"`
	Size       float64 `json:"size"` // Quantity in base units
	EntryPrice float64 `json:"entry_price"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`

	TrailingStop         bool    `json:"trailing_stop"`
	TrailingStopDistance float64 `json:"trailing_stop_distance"` // Fraction of the favorable extreme
	HighestPrice         float64 `json:"highest_price"`          // Most favorable price seen (long)
	LowestPrice          float64 `json:"lowest_price"`           // Most favorable price seen (short)

	OpenedAt    time.Time `json:"opened_at"`
	Status      Status    `json:"status"`
	CloseReason string    `json:"close_reason,omitempty"`
	ExitPrice   float64   `json:"exit_price,omitempty"`
	PnL         float64   `json:"pnl,omitempty"`
	ClosedAt    time.Time `json:"closed_at,omitzero"`
}

// UnrealizedPnL returns the open profit in quote currency at price.
func (p *Position) UnrealizedPnL(price float64) float64 {
	if p.Side == Long {
		return (price - p.EntryPrice) * p.Size
	}
	return (p.EntryPrice - price) * p.Size
}

// UnrealizedPnLPercent returns the open profit as a percentage of the
// entry price.
func (p *Position) UnrealizedPnLPercent(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	if p.Side == Long {
		return (price - p.EntryPrice) / p.EntryPrice * 100
	}
	return (p.EntryPrice - price) / p.EntryPrice * 100
}

// RiskState tracks the per-day and per-peak risk accumulators.
type RiskState struct {
	DailyLoss     float64   `json:"daily_loss"`   // Accumulated realized loss today, positive
	DailyProfit   float64   `json:"daily_profit"` // Accumulated realized profit today
	PeakBalance   float64   `json:"peak_balance"` // Highest balance observed, monotonic
	Drawdown      float64   `json:"drawdown"`     // Fractional decline from peak
	LastResetDate time.Time `json:"last_reset_date"`
}

// PositionSize is the computed sizing for a prospective entry.
type PositionSize struct {
	USD      float64 // Notional value in quote currency
	Quantity float64 // Base quantity after precision and minimum adjustments
}
