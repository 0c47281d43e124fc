package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
	"github.com/quantbyte/signal-fusion-bot/internal/exchange"
	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// Client implements the exchange interfaces on top of the Bybit v5 API.
type Client struct {
	httpClient *bybit_api.Client
	category   string
	testnet    bool
	demo       bool
}

// NewClient creates a Bybit client for the configured environment.
func NewClient(cfg config.ExchangeConfig) *Client {
	var baseURL string
	if cfg.Demo {
		// Demo trading environment (paper trading)
		baseURL = "https://api-demo.bybit.com"
	} else if cfg.Testnet {
		baseURL = bybit_api.TESTNET
	} else {
		baseURL = bybit_api.MAINNET
	}

	category := cfg.Category
	if category == "" {
		category = "linear"
	}

	return &Client{
		httpClient: bybit_api.NewBybitHttpClient(
			cfg.APIKey,
			cfg.APISecret,
			bybit_api.WithBaseURL(baseURL),
		),
		category: category,
		testnet:  cfg.Testnet,
		demo:     cfg.Demo,
	}
}

var _ exchange.Exchange = (*Client)(nil)

// Name returns the venue name.
func (c *Client) Name() string {
	return "bybit"
}

// GetKlines fetches candles and returns them oldest-first. Bybit
// serves klines newest-first, so the list is reversed before return.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error) {
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}

	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
		"interval": interval,
		"limit":    limit,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get klines for %s: %w", symbol, err)
	}
	return parseKlineResponse(result)
}

// GetCurrentPrice returns the latest traded price for symbol.
func (c *Client) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	params := map[string]interface{}{
		"category": c.category,
		"symbol":   symbol,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetMarketTickers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get ticker for %s: %w", symbol, err)
	}
	return parseTickerResponse(result)
}

// PlaceMarketOrder places a market order, attaching take-profit and
// stop-loss prices when supplied.
func (c *Client) PlaceMarketOrder(ctx context.Context, order exchange.MarketOrder) (*types.OrderResult, error) {
	if order.Symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if order.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	params := map[string]interface{}{
		"category":  c.category,
		"symbol":    order.Symbol,
		"side":      string(order.Side),
		"orderType": "Market",
		"qty":       strconv.FormatFloat(order.Quantity, 'f', -1, 64),
	}
	if order.TakeProfit > 0 {
		params["takeProfit"] = strconv.FormatFloat(order.TakeProfit, 'f', -1, 64)
	}
	if order.StopLoss > 0 {
		params["stopLoss"] = strconv.FormatFloat(order.StopLoss, 'f', -1, 64)
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to place %s order for %s: %w", order.Side, order.Symbol, err)
	}
	return parseOrderResponse(result)
}

// ClosePosition submits a reduce-only market order for the full
// position quantity on the opposite side.
func (c *Client) ClosePosition(ctx context.Context, symbol string, side exchange.OrderSide, quantity float64) (*types.OrderResult, error) {
	params := map[string]interface{}{
		"category":   c.category,
		"symbol":     symbol,
		"side":       string(side),
		"orderType":  "Market",
		"qty":        strconv.FormatFloat(quantity, 'f', -1, 64),
		"reduceOnly": true,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to close position for %s: %w", symbol, err)
	}
	return parseOrderResponse(result)
}

// GetBalance returns the wallet balance for coin from the unified
// account.
func (c *Client) GetBalance(ctx context.Context, coin string) (*types.Balance, error) {
	params := map[string]interface{}{
		"accountType": "UNIFIED",
		"coin":        coin,
	}

	result, err := c.httpClient.NewUtaBybitServiceWithParams(params).GetAccountWallet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet balance: %w", err)
	}
	return parseBalanceResponse(result, coin)
}

func serverResult(response interface{}) (json.RawMessage, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return nil, fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}
	raw, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return raw, nil
}

func parseKlineResponse(response interface{}) ([]types.Candle, error) {
	raw, err := serverResult(response)
	if err != nil {
		return nil, err
	}

	var klineResult struct {
		Symbol string     `json:"symbol"`
		List   [][]string `json:"list"`
	}
	if err := json.Unmarshal(raw, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	// Bybit kline format: [startTime, open, high, low, close, volume, turnover],
	// newest entry first.
	candles := make([]types.Candle, 0, len(klineResult.List))
	for i := len(klineResult.List) - 1; i >= 0; i-- {
		item := klineResult.List[i]
		if len(item) < 6 {
			continue
		}
		candles = append(candles, types.Candle{
			Timestamp: time.UnixMilli(parseInt64(item[0])),
			Open:      parseFloat64(item[1]),
			High:      parseFloat64(item[2]),
			Low:       parseFloat64(item[3]),
			Close:     parseFloat64(item[4]),
			Volume:    parseFloat64(item[5]),
		})
	}
	return candles, nil
}

func parseTickerResponse(response interface{}) (float64, error) {
	raw, err := serverResult(response)
	if err != nil {
		return 0, err
	}

	var tickerResult struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
		} `json:"list"`
	}
	if err := json.Unmarshal(raw, &tickerResult); err != nil {
		return 0, fmt.Errorf("failed to unmarshal ticker result: %w", err)
	}
	if len(tickerResult.List) == 0 {
		return 0, fmt.Errorf("no ticker data found")
	}
	return parseFloat64(tickerResult.List[0].LastPrice), nil
}

func parseOrderResponse(response interface{}) (*types.OrderResult, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return nil, fmt.Errorf("invalid response type")
	}

	result := &types.OrderResult{
		Success: serverResp.RetCode == 0,
		Code:    serverResp.RetCode,
		Message: serverResp.RetMsg,
	}

	if raw, err := json.Marshal(serverResp.Result); err == nil {
		var orderResult struct {
			OrderID string `json:"orderId"`
		}
		if json.Unmarshal(raw, &orderResult) == nil {
			result.OrderID = orderResult.OrderID
		}
	}
	return result, nil
}

func parseBalanceResponse(response interface{}, coin string) (*types.Balance, error) {
	raw, err := serverResult(response)
	if err != nil {
		return nil, err
	}

	var walletResult struct {
		List []struct {
			Coin []struct {
				Coin            string `json:"coin"`
				WalletBalance   string `json:"walletBalance"`
				TotalOrderIM    string `json:"totalOrderIM"`
				TotalPositionIM string `json:"totalPositionIM"`
			} `json:"coin"`
		} `json:"list"`
	}
	if err := json.Unmarshal(raw, &walletResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet result: %w", err)
	}
	if len(walletResult.List) == 0 {
		return nil, fmt.Errorf("no account data found")
	}

	for _, c := range walletResult.List[0].Coin {
		if c.Coin == coin {
			locked := parseFloat64(c.TotalOrderIM) + parseFloat64(c.TotalPositionIM)
			return &types.Balance{
				Asset:  coin,
				Free:   parseFloat64(c.WalletBalance) - locked,
				Locked: locked,
			}, nil
		}
	}
	return nil, fmt.Errorf("no balance found for %s", coin)
}

func parseFloat64(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseInt64(s string) int64 {
	i, _ := strconv.ParseInt(s, 10, 64)
	return i
}
