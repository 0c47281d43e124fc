package config

import "math"

// InstrumentSpec describes the order constraints of one instrument.
type InstrumentSpec struct {
	QtyDecimals int     `json:"qty_decimals"`  // Decimal places allowed in order quantity
	MinOrderQty float64 `json:"min_order_qty"` // Smallest quantity the venue accepts
}

// defaultInstrumentSpecs covers the commonly traded perpetual pairs.
// Unknown symbols fall back to DefaultInstrumentSpec.
var defaultInstrumentSpecs = map[string]InstrumentSpec{
	"BTCUSDT":  {QtyDecimals: 3, MinOrderQty: 0.001},
	"ETHUSDT":  {QtyDecimals: 2, MinOrderQty: 0.01},
	"SOLUSDT":  {QtyDecimals: 1, MinOrderQty: 0.1},
	"XRPUSDT":  {QtyDecimals: 0, MinOrderQty: 1},
	"DOGEUSDT": {QtyDecimals: 0, MinOrderQty: 1},
	"ADAUSDT":  {QtyDecimals: 0, MinOrderQty: 1},
	"BNBUSDT":  {QtyDecimals: 2, MinOrderQty: 0.01},
	"LTCUSDT":  {QtyDecimals: 1, MinOrderQty: 0.1},
}

// DefaultInstrumentSpec is used for symbols without an explicit entry.
var DefaultInstrumentSpec = InstrumentSpec{QtyDecimals: 3, MinOrderQty: 0.001}

// InstrumentSpecFor returns the spec for a symbol, falling back to the
// default for unknown instruments.
func InstrumentSpecFor(symbol string) InstrumentSpec {
	if spec, ok := defaultInstrumentSpecs[symbol]; ok {
		return spec
	}
	return DefaultInstrumentSpec
}

// FloorQty truncates a quantity to the instrument's decimal precision.
func (s InstrumentSpec) FloorQty(qty float64) float64 {
	factor := math.Pow(10, float64(s.QtyDecimals))
	return math.Floor(qty*factor) / factor
}
