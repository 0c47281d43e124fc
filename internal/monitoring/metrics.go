package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fusion_bot_decisions_total",
			Help: "Trade decisions emitted per symbol and action",
		},
		[]string{"symbol", "action"},
	)

	signalConfidence = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fusion_bot_signal_confidence",
			Help: "Fused signal confidence per symbol",
		},
		[]string{"symbol"},
	)

	signalStrength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fusion_bot_signal_strength",
			Help: "Fused signal strength per symbol",
		},
		[]string{"symbol"},
	)

	currentPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fusion_bot_current_price",
			Help: "Latest observed price per symbol",
		},
		[]string{"symbol"},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fusion_bot_open_positions",
			Help: "Number of currently open positions",
		},
	)

	dailyLoss = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fusion_bot_daily_loss",
			Help: "Accumulated realized loss for the current UTC day",
		},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fusion_bot_cycle_duration_seconds",
			Help:    "Duration of one full analysis cycle",
			Buckets: prometheus.DefBuckets,
		},
	)

	cyclesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fusion_bot_cycles_skipped_total",
			Help: "Cycle triggers dropped because the previous cycle was still running",
		},
	)

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fusion_bot_errors_total",
			Help: "Errors by type",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(decisionsTotal)
	prometheus.MustRegister(signalConfidence)
	prometheus.MustRegister(signalStrength)
	prometheus.MustRegister(currentPrice)
	prometheus.MustRegister(openPositions)
	prometheus.MustRegister(dailyLoss)
	prometheus.MustRegister(cycleDuration)
	prometheus.MustRegister(cyclesSkipped)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler serves the Prometheus scrape endpoint.
type MetricsHandler struct{}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordDecision counts an emitted decision per symbol and action.
func RecordDecision(symbol, action string) {
	decisionsTotal.WithLabelValues(symbol, action).Inc()
}

// UpdateSignal publishes the fused signal gauges for a symbol.
func UpdateSignal(symbol string, strength, confidence float64) {
	signalStrength.WithLabelValues(symbol).Set(strength)
	signalConfidence.WithLabelValues(symbol).Set(confidence)
}

// UpdatePrice publishes the latest observed price for a symbol.
func UpdatePrice(symbol string, price float64) {
	currentPrice.WithLabelValues(symbol).Set(price)
}

// UpdatePortfolio publishes the open-position count and daily loss.
func UpdatePortfolio(open int, loss float64) {
	openPositions.Set(float64(open))
	dailyLoss.Set(loss)
}

// ObserveCycle records the duration of one analysis cycle.
func ObserveCycle(seconds float64) {
	cycleDuration.Observe(seconds)
}

// RecordSkippedCycle counts a dropped overlapping cycle trigger.
func RecordSkippedCycle() {
	cyclesSkipped.Inc()
}

// RecordError counts an error by type.
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
