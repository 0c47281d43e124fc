package exchange

import (
	"context"

	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// OrderSide is the direction of an order sent to the venue.
type OrderSide string

const (
	OrderBuy  OrderSide = "Buy"
	OrderSell OrderSide = "Sell"
)

// MarketOrder describes a market order with optional protective prices
// attached at placement time.
type MarketOrder struct {
	Symbol     string
	Side       OrderSide
	Quantity   float64
	TakeProfit float64 // 0 = none
	StopLoss   float64 // 0 = none
}

// MarketDataProvider supplies candle history and current prices. The
// core consumes it; reconnection and backoff live behind it.
type MarketDataProvider interface {
	// GetKlines returns up to limit candles in chronological order.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error)
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// OrderExecutor turns decisions into venue orders.
type OrderExecutor interface {
	PlaceMarketOrder(ctx context.Context, order MarketOrder) (*types.OrderResult, error)
	// ClosePosition submits a reduce-only market order for the full
	// quantity on the opposite side.
	ClosePosition(ctx context.Context, symbol string, side OrderSide, quantity float64) (*types.OrderResult, error)
}

// WalletProvider answers balance queries.
type WalletProvider interface {
	GetBalance(ctx context.Context, coin string) (*types.Balance, error)
}

// Exchange is the full venue surface the engine is wired against.
type Exchange interface {
	MarketDataProvider
	OrderExecutor
	WalletProvider
	Name() string
}
