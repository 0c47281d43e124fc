package history

import (
	"sync"

	"github.com/quantbyte/signal-fusion-bot/pkg/types"
)

// DefaultMaxCandles bounds each per-key candle series.
const DefaultMaxCandles = 500

// DailySuffix marks the parallel daily-resolution series of a symbol.
const DailySuffix = "_DAILY"

// DailyKey returns the history key of a symbol's daily series.
func DailyKey(symbol string) string {
	return symbol + DailySuffix
}

// Store keeps a bounded, time-ordered candle buffer per instrument key.
// Insertion order is chronological order; the oldest candle is evicted
// first when a series exceeds its capacity.
type Store struct {
	mu      sync.RWMutex
	series  map[string][]types.Candle
	maxSize int
}

// NewStore creates a price history store with the given per-key capacity.
// A non-positive capacity falls back to DefaultMaxCandles.
func NewStore(maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxCandles
	}
	return &Store{
		series:  make(map[string][]types.Candle),
		maxSize: maxSize,
	}
}

// AddCandle appends a candle to the series for key, evicting the oldest
// entry when the series is at capacity.
func (s *Store) AddCandle(key string, candle types.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	series := append(s.series[key], candle)
	if len(series) > s.maxSize {
		series = series[len(series)-s.maxSize:]
	}
	s.series[key] = series
}

// Replace swaps the full series for key with the given candles, keeping
// only the most recent entries when over capacity. Used when a fresh
// kline fetch supersedes the buffered history.
func (s *Store) Replace(key string, candles []types.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candles) > s.maxSize {
		candles = candles[len(candles)-s.maxSize:]
	}
	series := make([]types.Candle, len(candles))
	copy(series, candles)
	s.series[key] = series
}

// History returns a copy of the bounded series for key. Unknown keys
// yield an empty slice.
func (s *Store) History(key string) []types.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[key]
	out := make([]types.Candle, len(series))
	copy(out, series)
	return out
}

// CurrentPrice returns the close of the latest candle for key. The
// second return value is false when no history exists.
func (s *Store) CurrentPrice(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	series := s.series[key]
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1].Close, true
}

// Len returns the number of candles stored for key.
func (s *Store) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.series[key])
}
