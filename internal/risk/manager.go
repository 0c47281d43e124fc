package risk

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
)

// Manager owns the set of open positions and all position-level and
// portfolio-level risk decisions: sizing, stop placement, trailing
// adjustment, trigger checks and the daily-loss/drawdown gates. No
// other component mutates positions.
type Manager struct {
	mu        sync.RWMutex
	cfg       config.RiskConfig
	positions map[string]*Position
	history   []Position
	balance   float64
	state     RiskState

	now func() time.Time // Injected for day-boundary tests
}

// NewManager creates a risk manager seeded with the configured balance.
func NewManager(cfg config.RiskConfig) *Manager {
	now := time.Now
	return &Manager{
		cfg:       cfg,
		positions: make(map[string]*Position),
		balance:   cfg.InitialBalance,
		state: RiskState{
			PeakBalance:   cfg.InitialBalance,
			LastResetDate: now().UTC().Truncate(24 * time.Hour),
		},
		now: now,
	}
}

// Balance returns the tracked account balance.
func (m *Manager) Balance() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance
}

// SetBalance records a fresh balance observation, advancing the peak
// and recomputing the drawdown.
func (m *Manager) SetBalance(balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = balance
	m.updatePeakLocked()
}

func (m *Manager) updatePeakLocked() {
	if m.balance > m.state.PeakBalance {
		m.state.PeakBalance = m.balance
	}
	if m.state.PeakBalance > 0 {
		m.state.Drawdown = (m.state.PeakBalance - m.balance) / m.state.PeakBalance
	}
}

// CalculatePositionSize sizes a prospective entry from the signal
// strength and confidence, clamps the notional to the configured
// bounds and converts it to a venue-acceptable quantity.
func (m *Manager) CalculatePositionSize(signalStrength, confidence, currentPrice float64, symbol string) PositionSize {
	m.mu.RLock()
	balance := m.balance
	m.mu.RUnlock()

	baseUSD := balance * m.cfg.PositionSizeFraction
	adjustedUSD := baseUSD * math.Min(signalStrength*1.5, 1.5) * (confidence / 100)

	maxUSD := balance * m.cfg.MaxBalanceFraction
	adjustedUSD = math.Max(m.cfg.MinPositionUSD, math.Min(adjustedUSD, maxUSD))

	size := PositionSize{USD: adjustedUSD}
	if currentPrice > 0 {
		spec := config.InstrumentSpecFor(symbol)
		qty := spec.FloorQty(adjustedUSD / currentPrice)
		if qty < spec.MinOrderQty {
			qty = spec.MinOrderQty
		}
		size.Quantity = qty
	}
	return size
}

// CalculateStopLoss places the stop at the configured risk fraction
// from entry, on the loss side of the position.
func (m *Manager) CalculateStopLoss(entryPrice float64, side Side) float64 {
	if side == Long {
		return entryPrice * (1 - m.cfg.RiskFraction)
	}
	return entryPrice * (1 + m.cfg.RiskFraction)
}

// CalculateTakeProfit places the target at RewardRatio times the risk
// distance from entry.
func (m *Manager) CalculateTakeProfit(entryPrice, stopLoss float64, side Side) float64 {
	riskDistance := math.Abs(entryPrice - stopLoss)
	if side == Long {
		return entryPrice + riskDistance*m.cfg.RewardRatio
	}
	return entryPrice - riskDistance*m.cfg.RewardRatio
}

// ValidateStopLoss rejects a stop that sits on the profit side of
// entry for the position's direction.
func (m *Manager) ValidateStopLoss(entryPrice, stopLoss float64, side Side) error {
	if side == Long && stopLoss >= entryPrice {
		return fmt.Errorf("stop loss %.4f must be below entry %.4f for a long position", stopLoss, entryPrice)
	}
	if side == Short && stopLoss <= entryPrice {
		return fmt.Errorf("stop loss %.4f must be above entry %.4f for a short position", stopLoss, entryPrice)
	}
	return nil
}

// AddPosition opens and indexes a position for symbol. A second open
// position for the same symbol is rejected with no state change.
func (m *Manager) AddPosition(symbol string, side Side, size, entryPrice float64) (*Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.positions[symbol]; exists {
		return nil, fmt.Errorf("position already open for %s", symbol)
	}

	stopLoss := m.CalculateStopLoss(entryPrice, side)
	takeProfit := m.CalculateTakeProfit(entryPrice, stopLoss, side)

	pos := &Position{
		Symbol:               symbol,
		Side:                 side,
		Size:                 size,
		EntryPrice:           entryPrice,
		StopLoss:             stopLoss,
		TakeProfit:           takeProfit,
		TrailingStop:         m.cfg.TrailingStopEnabled,
		TrailingStopDistance: m.cfg.TrailingStopDistance,
		HighestPrice:         entryPrice,
		LowestPrice:          entryPrice,
		OpenedAt:             m.now().UTC(),
		Status:               StatusOpen,
	}
	m.positions[symbol] = pos

	copied := *pos
	return &copied, nil
}

// UpdateTrailingStop tightens the stop after a new favorable extreme.
// The stop only ever moves in the position's favor.
func (m *Manager) UpdateTrailingStop(symbol string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[symbol]
	if !ok || !pos.TrailingStop {
		return
	}

	if pos.Side == Long {
		if price > pos.HighestPrice {
			pos.HighestPrice = price
			candidate := price * (1 - pos.TrailingStopDistance)
			if candidate > pos.StopLoss {
				pos.StopLoss = candidate
			}
		}
		return
	}

	if price < pos.LowestPrice {
		pos.LowestPrice = price
		candidate := price * (1 + pos.TrailingStopDistance)
		if candidate < pos.StopLoss {
			pos.StopLoss = candidate
		}
	}
}

// CheckTriggers evaluates the exit conditions for symbol at price.
// Stop-loss is checked before take-profit, then the maximum hold time.
// It returns the close reason, or "" to keep holding.
func (m *Manager) CheckTriggers(symbol string, price float64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pos, ok := m.positions[symbol]
	if !ok {
		return ""
	}

	if pos.Side == Long {
		if price <= pos.StopLoss {
			return ReasonStopLoss
		}
		if price >= pos.TakeProfit {
			return ReasonTakeProfit
		}
	} else {
		if price >= pos.StopLoss {
			return ReasonStopLoss
		}
		if price <= pos.TakeProfit {
			return ReasonTakeProfit
		}
	}

	if m.now().Sub(pos.OpenedAt) > m.cfg.MaxHoldDuration {
		return ReasonMaxHold
	}
	return ""
}

// ClosePosition realizes the PnL for symbol at exitPrice, updates the
// daily accumulators and balance, and moves the record to history.
func (m *Manager) ClosePosition(symbol string, exitPrice float64, reason string) (*Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.positions[symbol]
	if !ok {
		return nil, fmt.Errorf("no open position for %s", symbol)
	}

	pnl := (exitPrice - pos.EntryPrice) * pos.Size
	if pos.Side == Short {
		pnl = (pos.EntryPrice - exitPrice) * pos.Size
	}

	pos.Status = StatusClosed
	pos.CloseReason = reason
	pos.ExitPrice = exitPrice
	pos.PnL = pnl
	pos.ClosedAt = m.now().UTC()

	m.resetDailyIfNeededLocked()
	if pnl < 0 {
		m.state.DailyLoss += -pnl
	} else {
		m.state.DailyProfit += pnl
	}

	m.balance += pnl
	m.updatePeakLocked()

	m.history = append(m.history, *pos)
	delete(m.positions, symbol)

	copied := *pos
	return &copied, nil
}

// Position returns a copy of the open position for symbol.
func (m *Manager) Position(symbol string) (Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pos, ok := m.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// OpenPositions returns a snapshot of all open positions.
func (m *Manager) OpenPositions() []Position {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Position, 0, len(m.positions))
	for _, pos := range m.positions {
		out = append(out, *pos)
	}
	return out
}

// TradeHistory returns a copy of the closed trade records.
func (m *Manager) TradeHistory() []Position {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Position, len(m.history))
	copy(out, m.history)
	return out
}

// State returns a snapshot of the risk accumulators.
func (m *Manager) State() RiskState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetDailyIfNeededLocked()
	return m.state
}

// CanOpenNewPosition reports whether the open-position count is below
// the configured maximum.
func (m *Manager) CanOpenNewPosition() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.positions) < m.cfg.MaxOpenPositions
}

// CheckDailyLossLimit reports whether the accumulated daily loss is
// still below the configured limit. The accumulator resets at the UTC
// day boundary.
func (m *Manager) CheckDailyLossLimit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetDailyIfNeededLocked()
	return m.state.DailyLoss < m.cfg.DailyLossLimit
}

// CheckMaxDrawdown reports whether the drawdown from the peak balance
// is below the configured limit.
func (m *Manager) CheckMaxDrawdown() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Drawdown < m.cfg.MaxDrawdown
}

// CheckTradingHours reports whether the current UTC hour falls inside
// the configured trading window.
func (m *Manager) CheckTradingHours() bool {
	hour := m.now().UTC().Hour()
	return hour >= m.cfg.TradingHourStart && hour < m.cfg.TradingHourEnd
}

// CanTrade runs every portfolio gate plus the minimum strength and
// confidence thresholds. On success it returns the computed position
// size; otherwise the blocking reason.
func (m *Manager) CanTrade(signalStrength, confidence, currentPrice float64, symbol string) (PositionSize, bool, string) {
	if signalStrength < m.cfg.MinSignalStrength {
		return PositionSize{}, false, fmt.Sprintf("signal strength %.2f below minimum %.2f", signalStrength, m.cfg.MinSignalStrength)
	}
	if confidence < m.cfg.MinConfidence {
		return PositionSize{}, false, fmt.Sprintf("confidence %.1f below minimum %.1f", confidence, m.cfg.MinConfidence)
	}
	if !m.CanOpenNewPosition() {
		return PositionSize{}, false, "maximum open positions reached"
	}
	if !m.CheckDailyLossLimit() {
		return PositionSize{}, false, "daily loss limit reached"
	}
	if !m.CheckMaxDrawdown() {
		return PositionSize{}, false, "maximum drawdown exceeded"
	}
	if !m.CheckTradingHours() {
		return PositionSize{}, false, "outside trading hours"
	}
	return m.CalculatePositionSize(signalStrength, confidence, currentPrice, symbol), true, ""
}

// resetDailyIfNeededLocked clears the daily accumulators when the UTC
// calendar day has changed since the last reset.
func (m *Manager) resetDailyIfNeededLocked() {
	today := m.now().UTC().Truncate(24 * time.Hour)
	if today.After(m.state.LastResetDate) {
		m.state.DailyLoss = 0
		m.state.DailyProfit = 0
		m.state.LastResetDate = today
	}
}
