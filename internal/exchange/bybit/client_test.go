package bybit

import (
	"testing"

	bybit_api "github.com/bybit-exchange/bybit.go.api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKlineResponse_ReversesToChronological(t *testing.T) {
	// Bybit serves the newest kline first.
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"symbol": "BTCUSDT",
			"list": [][]string{
				{"1700007200000", "102", "103", "101", "102.5", "30", "3075"},
				{"1700003600000", "101", "102", "100", "101.5", "20", "2030"},
				{"1700000000000", "100", "101", "99", "100.5", "10", "1005"},
			},
		},
	}

	candles, err := parseKlineResponse(resp)
	require.NoError(t, err)
	require.Len(t, candles, 3)

	assert.Equal(t, 100.5, candles[0].Close, "oldest candle must come first")
	assert.Equal(t, 102.5, candles[2].Close)
	assert.True(t, candles[0].Timestamp.Before(candles[1].Timestamp))
	assert.True(t, candles[1].Timestamp.Before(candles[2].Timestamp))
	assert.Equal(t, 10.0, candles[0].Volume)
}

func TestParseKlineResponse_APIError(t *testing.T) {
	resp := &bybit_api.ServerResponse{RetCode: 10001, RetMsg: "params error"}

	_, err := parseKlineResponse(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "params error")
}

func TestParseTickerResponse(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"list": []map[string]interface{}{
				{"symbol": "BTCUSDT", "lastPrice": "27123.5"},
			},
		},
	}

	price, err := parseTickerResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, 27123.5, price)
}

func TestParseTickerResponse_Empty(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		Result:  map[string]interface{}{"list": []map[string]interface{}{}},
	}

	_, err := parseTickerResponse(resp)
	assert.Error(t, err)
}

func TestParseBalanceResponse(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"list": []map[string]interface{}{
				{
					"coin": []map[string]interface{}{
						{
							"coin":            "USDT",
							"walletBalance":   "10000.5",
							"totalOrderIM":    "100",
							"totalPositionIM": "400.5",
						},
					},
				},
			},
		},
	}

	bal, err := parseBalanceResponse(resp, "USDT")
	require.NoError(t, err)
	assert.Equal(t, "USDT", bal.Asset)
	assert.InDelta(t, 9500.0, bal.Free, 1e-9)
	assert.InDelta(t, 500.5, bal.Locked, 1e-9)
}

func TestParseBalanceResponse_MissingCoin(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		Result: map[string]interface{}{
			"list": []map[string]interface{}{
				{"coin": []map[string]interface{}{}},
			},
		},
	}

	_, err := parseBalanceResponse(resp, "USDT")
	assert.Error(t, err)
}

func TestParseOrderResponse(t *testing.T) {
	resp := &bybit_api.ServerResponse{
		RetCode: 0,
		RetMsg:  "OK",
		Result:  map[string]interface{}{"orderId": "abc-123"},
	}

	result, err := parseOrderResponse(resp)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "abc-123", result.OrderID)

	rejected, err := parseOrderResponse(&bybit_api.ServerResponse{
		RetCode: 110007, RetMsg: "insufficient balance",
	})
	require.NoError(t, err)
	assert.False(t, rejected.Success)
	assert.Equal(t, 110007, rejected.Code)
}
