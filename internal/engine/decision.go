package engine

import "github.com/quantbyte/signal-fusion-bot/internal/fusion"

// Action is the per-symbol outcome of one analysis cycle.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
	ActionClose
	ActionHoldPosition
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	case ActionClose:
		return "close_position"
	case ActionHoldPosition:
		return "hold_position"
	default:
		return "hold"
	}
}

// Decision records what the engine concluded for one symbol in one
// cycle, with the fused signal that drove it.
type Decision struct {
	Symbol     string
	Action     Action
	Strength   float64
	Confidence float64
	Reasoning  string
	Signal     *fusion.Signal
}
