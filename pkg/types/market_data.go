package types

import "time"

// Candle is an immutable OHLCV summary of price action over one time bucket.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

type Ticker struct {
	Symbol    string
	Price     float64
	Volume    float64
	Timestamp time.Time
}

type Balance struct {
	Asset  string
	Free   float64
	Locked float64
}

// OrderResult is the acknowledgment shape returned by the execution venue
// for both order placement and position closure.
type OrderResult struct {
	Success bool
	Code    int
	Message string
	OrderID string
}
