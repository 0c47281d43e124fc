package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
)

func newTestManager() *Manager {
	return NewManager(config.Default().Risk)
}

func TestCalculatePositionSize(t *testing.T) {
	m := newTestManager() // $10,000 balance, 5% base fraction

	size := m.CalculatePositionSize(0.8, 90, 27000, "BTCUSDT")

	// 500 * min(0.8*1.5, 1.5) * 0.9 = 540
	assert.InDelta(t, 540.0, size.USD, 1e-9)
	assert.InDelta(t, 0.02, size.Quantity, 1e-9, "540/27000 floored to 3 decimals")
}

func TestCalculatePositionSize_StrengthMultiplierCaps(t *testing.T) {
	m := newTestManager()

	saturated := m.CalculatePositionSize(1.0, 100, 27000, "BTCUSDT")
	beyond := m.CalculatePositionSize(2.0, 100, 27000, "BTCUSDT")

	assert.Equal(t, saturated.USD, beyond.USD, "strength multiplier saturates at 1.5")
	assert.InDelta(t, 750.0, saturated.USD, 1e-9)
}

func TestCalculatePositionSize_MinimumFloor(t *testing.T) {
	cfg := config.Default().Risk
	cfg.InitialBalance = 500
	m := NewManager(cfg)

	// 25 * 0.75 * 0.4 = 7.5, raised to the $25 floor
	size := m.CalculatePositionSize(0.5, 40, 100, "ETHUSDT")
	assert.InDelta(t, 25.0, size.USD, 1e-9)
}

func TestCalculatePositionSize_BalanceCap(t *testing.T) {
	cfg := config.Default().Risk
	cfg.PositionSizeFraction = 0.6
	m := NewManager(cfg)

	// 6000 * 1.5 * 1.0 = 9000, capped at 70% of balance
	size := m.CalculatePositionSize(1.0, 100, 100, "ETHUSDT")
	assert.InDelta(t, 7000.0, size.USD, 1e-9)
}

func TestCalculatePositionSize_MinimumOrderQuantity(t *testing.T) {
	m := newTestManager()

	// $25 at $100k/BTC is 0.00025 BTC, below the 0.001 venue minimum.
	cfg := config.Default().Risk
	cfg.InitialBalance = 500
	m = NewManager(cfg)
	size := m.CalculatePositionSize(0.5, 40, 100000, "BTCUSDT")
	assert.Equal(t, 0.001, size.Quantity)
}

func TestStopLossAndTakeProfit(t *testing.T) {
	m := newTestManager() // 2% risk, 2.0 reward ratio

	slLong := m.CalculateStopLoss(100, Long)
	assert.InDelta(t, 98.0, slLong, 1e-9)
	assert.InDelta(t, 104.0, m.CalculateTakeProfit(100, slLong, Long), 1e-9)

	slShort := m.CalculateStopLoss(100, Short)
	assert.InDelta(t, 102.0, slShort, 1e-9)
	assert.InDelta(t, 96.0, m.CalculateTakeProfit(100, slShort, Short), 1e-9)
}

func TestValidateStopLoss(t *testing.T) {
	m := newTestManager()

	assert.NoError(t, m.ValidateStopLoss(100, 98, Long))
	assert.Error(t, m.ValidateStopLoss(100, 101, Long), "stop above entry is wrong for a long")
	assert.NoError(t, m.ValidateStopLoss(100, 102, Short))
	assert.Error(t, m.ValidateStopLoss(100, 99, Short), "stop below entry is wrong for a short")
}

func TestAddPosition_RejectsDuplicateSymbol(t *testing.T) {
	m := newTestManager()

	pos, err := m.AddPosition("BTCUSDT", Long, 0.02, 27000)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, pos.Status)
	assert.InDelta(t, 26460.0, pos.StopLoss, 1e-9)

	_, err = m.AddPosition("BTCUSDT", Short, 0.01, 27100)
	assert.Error(t, err)
	assert.Len(t, m.OpenPositions(), 1)
}

func TestUpdateTrailingStop_OnlyTightens(t *testing.T) {
	m := newTestManager() // 1.5% trailing distance

	_, err := m.AddPosition("BTCUSDT", Long, 1, 100)
	require.NoError(t, err)

	m.UpdateTrailingStop("BTCUSDT", 105)
	pos, _ := m.Position("BTCUSDT")
	assert.InDelta(t, 103.425, pos.StopLoss, 1e-9)

	// A pullback must not loosen the stop.
	m.UpdateTrailingStop("BTCUSDT", 101)
	pos, _ = m.Position("BTCUSDT")
	assert.InDelta(t, 103.425, pos.StopLoss, 1e-9)

	m.UpdateTrailingStop("BTCUSDT", 110)
	pos, _ = m.Position("BTCUSDT")
	assert.InDelta(t, 108.35, pos.StopLoss, 1e-9)
}

func TestUpdateTrailingStop_Short(t *testing.T) {
	m := newTestManager()

	_, err := m.AddPosition("ETHUSDT", Short, 1, 100)
	require.NoError(t, err)

	m.UpdateTrailingStop("ETHUSDT", 95)
	pos, _ := m.Position("ETHUSDT")
	assert.InDelta(t, 96.425, pos.StopLoss, 1e-9)

	m.UpdateTrailingStop("ETHUSDT", 98)
	pos, _ = m.Position("ETHUSDT")
	assert.InDelta(t, 96.425, pos.StopLoss, 1e-9)
}

func TestCheckTriggers(t *testing.T) {
	m := newTestManager()

	_, err := m.AddPosition("BTCUSDT", Long, 1, 100) // SL 98, TP 104
	require.NoError(t, err)

	assert.Equal(t, "", m.CheckTriggers("BTCUSDT", 100))
	assert.Equal(t, ReasonStopLoss, m.CheckTriggers("BTCUSDT", 97.5))
	assert.Equal(t, ReasonTakeProfit, m.CheckTriggers("BTCUSDT", 104.5))
	assert.Equal(t, "", m.CheckTriggers("ETHUSDT", 100), "unknown symbol holds")
}

func TestCheckTriggers_MaxHoldTime(t *testing.T) {
	m := newTestManager()

	_, err := m.AddPosition("BTCUSDT", Long, 1, 100)
	require.NoError(t, err)

	assert.Equal(t, "", m.CheckTriggers("BTCUSDT", 100))

	m.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	assert.Equal(t, ReasonMaxHold, m.CheckTriggers("BTCUSDT", 100))
}

func TestClosePosition_RealizesPnL(t *testing.T) {
	m := newTestManager()

	_, err := m.AddPosition("BTCUSDT", Long, 2, 100)
	require.NoError(t, err)

	closed, err := m.ClosePosition("BTCUSDT", 110, ReasonTakeProfit)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, closed.PnL, 1e-9)
	assert.Equal(t, StatusClosed, closed.Status)
	assert.InDelta(t, 10020.0, m.Balance(), 1e-9)
	assert.Empty(t, m.OpenPositions())
	assert.Len(t, m.TradeHistory(), 1)

	_, err = m.ClosePosition("BTCUSDT", 110, ReasonTakeProfit)
	assert.Error(t, err, "double close must fail")
}

func TestClosePosition_ShortPnL(t *testing.T) {
	m := newTestManager()

	_, err := m.AddPosition("ETHUSDT", Short, 5, 100)
	require.NoError(t, err)

	closed, err := m.ClosePosition("ETHUSDT", 90, ReasonTakeProfit)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, closed.PnL, 1e-9)
}

func TestDailyLossLimit(t *testing.T) {
	m := newTestManager() // $500 daily limit

	_, err := m.AddPosition("BTCUSDT", Long, 10, 100)
	require.NoError(t, err)
	_, err = m.ClosePosition("BTCUSDT", 55, ReasonStopLoss) // -450
	require.NoError(t, err)

	assert.True(t, m.CheckDailyLossLimit(), "450 is still under the 500 limit")

	_, err = m.AddPosition("BTCUSDT", Long, 2, 100)
	require.NoError(t, err)
	_, err = m.ClosePosition("BTCUSDT", 70, ReasonStopLoss) // -60, total 510
	require.NoError(t, err)

	assert.False(t, m.CheckDailyLossLimit())
	assert.InDelta(t, 510.0, m.State().DailyLoss, 1e-9)
}

func TestDailyLossResetsAtUTCDayBoundary(t *testing.T) {
	m := newTestManager()

	_, err := m.AddPosition("BTCUSDT", Long, 20, 100)
	require.NoError(t, err)
	_, err = m.ClosePosition("BTCUSDT", 70, ReasonStopLoss) // -600, over the limit
	require.NoError(t, err)
	assert.False(t, m.CheckDailyLossLimit())

	m.now = func() time.Time { return time.Now().UTC().Add(24 * time.Hour) }
	assert.True(t, m.CheckDailyLossLimit(), "accumulator resets on the next UTC day")
	assert.Zero(t, m.State().DailyLoss)
}

func TestCheckMaxDrawdown(t *testing.T) {
	m := newTestManager() // 15% max drawdown

	assert.True(t, m.CheckMaxDrawdown())

	m.SetBalance(12000) // new peak
	m.SetBalance(10500) // 12.5% down
	assert.True(t, m.CheckMaxDrawdown())

	m.SetBalance(10000) // 16.7% down
	assert.False(t, m.CheckMaxDrawdown())
}

func TestCanTrade_Gates(t *testing.T) {
	m := newTestManager()

	_, ok, reason := m.CanTrade(0.3, 90, 100, "BTCUSDT")
	assert.False(t, ok)
	assert.Contains(t, reason, "signal strength")

	_, ok, reason = m.CanTrade(0.9, 20, 100, "BTCUSDT")
	assert.False(t, ok)
	assert.Contains(t, reason, "confidence")

	size, ok, reason := m.CanTrade(0.9, 90, 100, "ETHUSDT")
	assert.True(t, ok, reason)
	assert.Greater(t, size.USD, 0.0)
	assert.Greater(t, size.Quantity, 0.0)
}

func TestCanTrade_MaxOpenPositions(t *testing.T) {
	cfg := config.Default().Risk
	cfg.MaxOpenPositions = 1
	m := NewManager(cfg)

	_, err := m.AddPosition("BTCUSDT", Long, 1, 100)
	require.NoError(t, err)

	_, ok, reason := m.CanTrade(0.9, 90, 100, "ETHUSDT")
	assert.False(t, ok)
	assert.Contains(t, reason, "open positions")
}

func TestCanTrade_TradingHours(t *testing.T) {
	cfg := config.Default().Risk
	cfg.TradingHourStart = 9
	cfg.TradingHourEnd = 17
	m := NewManager(cfg)

	m.now = func() time.Time {
		return time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	}
	_, ok, reason := m.CanTrade(0.9, 90, 100, "BTCUSDT")
	assert.False(t, ok)
	assert.Contains(t, reason, "trading hours")

	m.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	_, ok, _ = m.CanTrade(0.9, 90, 100, "BTCUSDT")
	assert.True(t, ok)
}

func TestUnrealizedPnL(t *testing.T) {
	long := Position{Symbol: "BTCUSDT", Side: Long, Size: 2, EntryPrice: 100}
	assert.InDelta(t, 6.0, long.UnrealizedPnL(103), 1e-9)
	assert.InDelta(t, 3.0, long.UnrealizedPnLPercent(103), 1e-9)

	short := Position{Symbol: "BTCUSDT", Side: Short, Size: 2, EntryPrice: 100}
	assert.InDelta(t, -6.0, short.UnrealizedPnL(103), 1e-9)
	assert.InDelta(t, -3.0, short.UnrealizedPnLPercent(103), 1e-9)
}
