package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
	"github.com/quantbyte/signal-fusion-bot/internal/errors"
	"github.com/quantbyte/signal-fusion-bot/internal/exchange"
	"github.com/quantbyte/signal-fusion-bot/internal/fusion"
	"github.com/quantbyte/signal-fusion-bot/internal/history"
	"github.com/quantbyte/signal-fusion-bot/internal/logger"
	"github.com/quantbyte/signal-fusion-bot/internal/monitoring"
	"github.com/quantbyte/signal-fusion-bot/internal/notifications"
	"github.com/quantbyte/signal-fusion-bot/internal/risk"
	"github.com/quantbyte/signal-fusion-bot/internal/trend"
)

// Engine runs the periodic analysis cycle: it refreshes market data,
// fuses indicator signals per symbol, manages open positions through
// the reversal detector and trigger checks, and opens new positions
// when every risk gate passes.
type Engine struct {
	cfg      *config.Config
	store    *history.Store
	builder  *fusion.InputBuilder
	fuser    *fusion.Fuser
	reversal *fusion.ReversalDetector
	risk     *risk.Manager
	exchange exchange.Exchange
	log      *logger.Logger
	health   *monitoring.HealthChecker
	notifier notifications.Notifier

	cycleRunning atomic.Bool
	riskAlerted  bool // Latched while a portfolio risk gate is tripped
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// New wires an engine from the configuration and its collaborators.
func New(cfg *config.Config, ex exchange.Exchange, log *logger.Logger, health *monitoring.HealthChecker, notifier notifications.Notifier) *Engine {
	if notifier == nil {
		notifier = notifications.Noop{}
	}
	analyzer := trend.NewAnalyzer(cfg.Analysis)
	return &Engine{
		cfg:      cfg,
		store:    history.NewStore(cfg.Engine.MaxCandles),
		builder:  fusion.NewInputBuilder(cfg.Analysis, cfg.Fusion, analyzer),
		fuser:    fusion.NewFuser(cfg.Fusion),
		reversal: fusion.NewReversalDetector(cfg.Reversal, cfg.Fusion),
		risk:     risk.NewManager(cfg.Risk),
		exchange: ex,
		log:      log,
		health:   health,
		notifier: notifier,
		stopChan: make(chan struct{}),
	}
}

// Risk exposes the risk manager for reporting.
func (e *Engine) Risk() *risk.Manager {
	return e.risk
}

// Start launches the cycle loop. The first cycle runs immediately,
// then one per configured interval until Stop is called or the context
// is canceled.
func (e *Engine) Start(ctx context.Context) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		e.log.Info("engine started: %d symbols, cycle every %s",
			len(e.cfg.Engine.Symbols), e.cfg.Engine.CycleInterval)

		e.RunCycle(ctx)

		ticker := time.NewTicker(e.cfg.Engine.CycleInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.RunCycle(ctx)
			case <-e.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the cycle loop and waits for an in-flight cycle to finish.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopChan) })
	e.wg.Wait()
	e.log.Info("engine stopped")
}

// RunCycle performs one full analysis pass over all symbols. A cycle
// that would overlap a still-running one is skipped, not queued.
func (e *Engine) RunCycle(ctx context.Context) []Decision {
	if !e.cycleRunning.CompareAndSwap(false, true) {
		e.log.LogCycleSkipped()
		monitoring.RecordSkippedCycle()
		return nil
	}
	defer e.cycleRunning.Store(false)

	start := time.Now()
	defer func() { monitoring.ObserveCycle(time.Since(start).Seconds()) }()

	e.refreshBalance(ctx)
	e.checkRiskGates()

	decisions := make([]Decision, 0, len(e.cfg.Engine.Symbols))
	for _, symbol := range e.cfg.Engine.Symbols {
		select {
		case <-e.stopChan:
			e.log.Info("stop requested, cycle abandoned before %s", symbol)
			return decisions
		case <-ctx.Done():
			e.log.Info("context canceled, cycle abandoned before %s", symbol)
			return decisions
		default:
		}

		d, err := e.processSymbol(ctx, symbol)
		if err != nil {
			e.log.LogError(fmt.Sprintf("cycle %s", symbol), err)
			e.health.AddError(fmt.Sprintf("%s: %v", symbol, err))
			monitoring.RecordError("symbol_cycle")
			continue
		}
		e.log.LogDecision(symbol, d.Action.String(), d.Strength, d.Confidence, d.Reasoning)
		monitoring.RecordDecision(symbol, d.Action.String())
		decisions = append(decisions, d)
	}

	state := e.risk.State()
	monitoring.UpdatePortfolio(len(e.risk.OpenPositions()), state.DailyLoss)
	e.health.CycleCompleted()
	return decisions
}

// refreshBalance reconciles the tracked balance against the venue
// wallet. A failed lookup keeps the last known balance.
func (e *Engine) refreshBalance(ctx context.Context) {
	bal, err := e.exchange.GetBalance(ctx, "USDT")
	if err != nil {
		e.log.Warn("balance refresh failed, keeping tracked balance: %v", err)
		e.health.SetConnected(false)
		return
	}
	e.health.SetConnected(true)
	e.risk.SetBalance(bal.Free + bal.Locked)
}

// checkRiskGates raises one notification when the daily-loss limit or
// the drawdown limit trips, and re-arms once the gate clears.
func (e *Engine) checkRiskGates() {
	state := e.risk.State()

	tripped := ""
	switch {
	case !e.risk.CheckDailyLossLimit():
		tripped = fmt.Sprintf("daily loss limit reached: $%.2f lost today", state.DailyLoss)
	case !e.risk.CheckMaxDrawdown():
		tripped = fmt.Sprintf("max drawdown exceeded: %.1f%% below peak", state.Drawdown*100)
	}

	if tripped == "" {
		e.riskAlerted = false
		return
	}
	if e.riskAlerted {
		return
	}
	e.riskAlerted = true
	e.log.Warn("risk gate tripped: %s", tripped)
	if err := e.notifier.NotifyRiskEvent(tripped); err != nil {
		e.log.Warn("notification failed: %v", err)
	}
}

// processSymbol runs the per-symbol pipeline: refresh both candle
// series and the price, fuse the signal, then manage the open position
// or evaluate a new entry.
func (e *Engine) processSymbol(ctx context.Context, symbol string) (Decision, error) {
	intraday, err := e.exchange.GetKlines(ctx, symbol, e.cfg.Engine.Interval, e.cfg.Engine.CandleLimit)
	if err != nil {
		return Decision{}, errors.NewExchangeError("engine", "get_klines", err)
	}
	e.store.Replace(symbol, intraday)

	// The daily series only feeds the long-term view; losing it for a
	// cycle degrades long-term analysis but never blocks the symbol.
	if daily, err := e.exchange.GetKlines(ctx, symbol, "D", e.cfg.Engine.CandleLimit); err == nil {
		e.store.Replace(history.DailyKey(symbol), daily)
	} else {
		e.log.Warn("%s: daily klines unavailable: %v", symbol, err)
	}

	price, err := e.exchange.GetCurrentPrice(ctx, symbol)
	if err != nil {
		return Decision{}, errors.NewExchangeError("engine", "get_price", err)
	}
	monitoring.UpdatePrice(symbol, price)

	in := e.builder.Build(e.store.History(symbol), e.store.History(history.DailyKey(symbol)))
	sig := e.fuser.Fuse(in)
	monitoring.UpdateSignal(symbol, sig.Strength, sig.Confidence)

	if pos, open := e.risk.Position(symbol); open {
		return e.manageOpenPosition(ctx, &pos, price, sig, in)
	}
	return e.evaluateEntry(ctx, symbol, price, sig)
}

// manageOpenPosition runs reversal detection before trigger checks, so
// a deteriorating signal can close a position that has not yet touched
// its stop.
func (e *Engine) manageOpenPosition(ctx context.Context, pos *risk.Position, price float64, sig *fusion.Signal, in fusion.Inputs) (Decision, error) {
	pnlPercent := pos.UnrealizedPnLPercent(price)

	rev := e.reversal.Evaluate(pos.Side == risk.Long, pnlPercent, sig, in)
	if rev.Close {
		if err := e.closePosition(ctx, pos, price, rev.Reason); err != nil {
			return Decision{}, err
		}
		return Decision{
			Symbol:     pos.Symbol,
			Action:     ActionClose,
			Strength:   rev.Strength,
			Confidence: sig.Confidence,
			Reasoning:  fmt.Sprintf("%s (reversal score %.2f)", rev.Reason, rev.Strength),
			Signal:     sig,
		}, nil
	}

	if reason := e.risk.CheckTriggers(pos.Symbol, price); reason != "" {
		if err := e.closePosition(ctx, pos, price, reason); err != nil {
			return Decision{}, err
		}
		return Decision{
			Symbol:     pos.Symbol,
			Action:     ActionClose,
			Strength:   sig.Strength,
			Confidence: sig.Confidence,
			Reasoning:  reason,
			Signal:     sig,
		}, nil
	}

	e.risk.UpdateTrailingStop(pos.Symbol, price)

	return Decision{
		Symbol:     pos.Symbol,
		Action:     ActionHoldPosition,
		Strength:   sig.Strength,
		Confidence: sig.Confidence,
		Reasoning:  fmt.Sprintf("holding %s position, PnL %.2f%%", pos.Side, pnlPercent),
		Signal:     sig,
	}, nil
}

// evaluateEntry opens a position when the fused signal has a direction
// and every risk gate passes.
func (e *Engine) evaluateEntry(ctx context.Context, symbol string, price float64, sig *fusion.Signal) (Decision, error) {
	hold := Decision{
		Symbol:     symbol,
		Action:     ActionHold,
		Strength:   sig.Strength,
		Confidence: sig.Confidence,
		Signal:     sig,
	}

	if sig.Direction == fusion.Neutral {
		hold.Reasoning = "no directional signal"
		return hold, nil
	}

	size, ok, blockReason := e.risk.CanTrade(sig.Strength, sig.Confidence, price, symbol)
	if !ok {
		hold.Reasoning = blockReason
		return hold, nil
	}

	side := risk.Long
	orderSide := exchange.OrderBuy
	action := ActionBuy
	if sig.Direction == fusion.Sell {
		side = risk.Short
		orderSide = exchange.OrderSell
		action = ActionSell
	}

	stopLoss := e.risk.CalculateStopLoss(price, side)
	takeProfit := e.risk.CalculateTakeProfit(price, stopLoss, side)

	result, err := e.exchange.PlaceMarketOrder(ctx, exchange.MarketOrder{
		Symbol:     symbol,
		Side:       orderSide,
		Quantity:   size.Quantity,
		TakeProfit: takeProfit,
		StopLoss:   stopLoss,
	})
	if err != nil {
		return Decision{}, errors.NewExchangeError("engine", "place_order", err)
	}
	if !result.Success {
		return Decision{}, errors.NewExchangeError("engine", "place_order",
			fmt.Errorf("order rejected: %s (code %d)", result.Message, result.Code))
	}

	pos, err := e.risk.AddPosition(symbol, side, size.Quantity, price)
	if err != nil {
		return Decision{}, errors.NewPositionError("engine", "add_position", err)
	}

	e.log.LogPositionOpen(symbol, string(side), pos.Size, pos.EntryPrice, pos.StopLoss, pos.TakeProfit)
	if nerr := e.notifier.NotifyPositionOpened(symbol, string(side), pos.Size, pos.EntryPrice); nerr != nil {
		e.log.Warn("notification failed: %v", nerr)
	}

	return Decision{
		Symbol:     symbol,
		Action:     action,
		Strength:   sig.Strength,
		Confidence: sig.Confidence,
		Reasoning:  describeSignal(sig),
		Signal:     sig,
	}, nil
}

// closePosition unwinds the venue position first, then realizes it in
// the book. A failed venue close leaves the book untouched so the next
// cycle retries.
func (e *Engine) closePosition(ctx context.Context, pos *risk.Position, price float64, reason string) error {
	orderSide := exchange.OrderSell
	if pos.Side == risk.Short {
		orderSide = exchange.OrderBuy
	}

	result, err := e.exchange.ClosePosition(ctx, pos.Symbol, orderSide, pos.Size)
	if err != nil {
		return errors.NewExchangeError("engine", "close_position", err)
	}
	if !result.Success {
		return errors.NewExchangeError("engine", "close_position",
			fmt.Errorf("close rejected: %s (code %d)", result.Message, result.Code))
	}

	closed, err := e.risk.ClosePosition(pos.Symbol, price, reason)
	if err != nil {
		return errors.NewPositionError("engine", "close_position", err)
	}

	e.log.LogPositionClose(closed.Symbol, reason, closed.ExitPrice, closed.PnL)
	if nerr := e.notifier.NotifyPositionClosed(closed.Symbol, reason, closed.ExitPrice, closed.PnL); nerr != nil {
		e.log.Warn("notification failed: %v", nerr)
	}
	return nil
}

// describeSignal summarizes the contributions backing a directional
// signal for logs.
func describeSignal(sig *fusion.Signal) string {
	if len(sig.Contributions) == 0 {
		return string(sig.Direction)
	}
	names := make([]string, 0, len(sig.Contributions))
	for _, c := range sig.Contributions {
		if c.Direction == sig.Direction {
			names = append(names, c.Indicator)
		}
	}
	return fmt.Sprintf("%s backed by %s", sig.Direction, strings.Join(names, ", "))
}
