package logger

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the leveled file logger for trading activity. Output goes
// through a size-rotated file so a long-running engine cannot fill the
// disk with per-cycle status lines.
type Logger struct {
	mu     sync.Mutex
	writer *lumberjack.Logger
	logger *log.Logger
}

// Level tags a log entry by what produced it.
type Level string

const (
	LevelInfo   Level = "INFO"
	LevelWarn   Level = "WARN"
	LevelError  Level = "ERROR"
	LevelTrade  Level = "TRADE"
	LevelStatus Level = "STATUS"
)

// New creates a rotating file logger under dir.
func New(dir string) (*Logger, error) {
	writer := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "fusion-bot.log"),
		MaxSize:    25, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}

	l := &Logger{
		writer: writer,
		logger: log.New(writer, "", 0),
	}
	l.Info("session started")
	return l, nil
}

// Log writes a formatted entry at the given level.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().UTC().Format("2006-01-02 15:04:05")
	l.logger.Printf("[%s] [%s] %s", timestamp, level, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{})  { l.Log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.Log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.Log(LevelError, format, args...) }
func (l *Logger) Trade(format string, args ...interface{}) { l.Log(LevelTrade, format, args...) }

// LogDecision records the fused decision for one symbol.
func (l *Logger) LogDecision(symbol, action string, strength, confidence float64, reasoning string) {
	l.Log(LevelStatus, "%s: %s (strength %.2f, confidence %.1f) - %s",
		symbol, action, strength, confidence, reasoning)
}

// LogPositionOpen records a new position entry.
func (l *Logger) LogPositionOpen(symbol, side string, size, entry, stopLoss, takeProfit float64) {
	l.Trade("%s: opened %s size=%.6f entry=%.4f sl=%.4f tp=%.4f",
		symbol, side, size, entry, stopLoss, takeProfit)
}

// LogPositionClose records a position closure with its realized PnL.
func (l *Logger) LogPositionClose(symbol, reason string, exitPrice, pnl float64) {
	l.Trade("%s: closed at %.4f (%s) pnl=%.2f", symbol, exitPrice, reason, pnl)
}

// LogCycleSkipped records an overlapping cycle trigger that was dropped.
func (l *Logger) LogCycleSkipped() {
	l.Warn("analysis cycle still running, skipping overlapping trigger")
}

// LogError records an error with its context.
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Printf("[%s] [%s] session ended",
		time.Now().UTC().Format("2006-01-02 15:04:05"), LevelInfo)
	return l.writer.Close()
}
