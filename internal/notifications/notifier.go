package notifications

// Notifier delivers trade events to an external channel. Implementations
// must be safe for concurrent use; delivery is best effort.
type Notifier interface {
	NotifyPositionOpened(symbol, side string, size, entryPrice float64) error
	NotifyPositionClosed(symbol, reason string, exitPrice, pnl float64) error
	NotifyRiskEvent(message string) error
}

// Noop discards every notification. Used when no channel is configured.
type Noop struct{}

func (Noop) NotifyPositionOpened(string, string, float64, float64) error { return nil }
func (Noop) NotifyPositionClosed(string, string, float64, float64) error { return nil }
func (Noop) NotifyRiskEvent(string) error                                { return nil }
