// Package metrics exports Prometheus counters and histograms for order
// flow and execution activity, in the style used for monitoring
// elsewhere in the trading stack this module is patterned on.
package metrics

import (
	"fenrir/internal/engine"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements internal/net.Recorder, recording order and
// execution activity as Prometheus series labelled by symbol.
type Collector struct {
	ordersPlaced     *prometheus.CounterVec
	ordersCancelled  *prometheus.CounterVec
	executionsTotal  *prometheus.CounterVec
	executedQuantity *prometheus.HistogramVec
	lastTradePrice   *prometheus.GaugeVec
}

// NewCollector builds a Collector and registers its series against
// reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fenrir",
			Name:      "orders_placed_total",
			Help:      "Total number of orders placed, by symbol.",
		}, []string{"symbol"}),
		ordersCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fenrir",
			Name:      "orders_cancelled_total",
			Help:      "Total number of orders cancelled, by symbol.",
		}, []string{"symbol"}),
		executionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fenrir",
			Name:      "executions_total",
			Help:      "Total number of executions produced, by symbol.",
		}, []string{"symbol"}),
		executedQuantity: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fenrir",
			Name:      "execution_quantity",
			Help:      "Distribution of per-execution fill quantity, by symbol.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"symbol"}),
		lastTradePrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fenrir",
			Name:      "last_trade_price",
			Help:      "Most recent execution price, by symbol.",
		}, []string{"symbol"}),
	}

	reg.MustRegister(c.ordersPlaced, c.ordersCancelled, c.executionsTotal, c.executedQuantity, c.lastTradePrice)
	return c
}

func (c *Collector) RecordPlace(symbol string) {
	c.ordersPlaced.WithLabelValues(symbol).Inc()
}

func (c *Collector) RecordCancel(symbol string) {
	c.ordersCancelled.WithLabelValues(symbol).Inc()
}

func (c *Collector) RecordExecution(symbol string, execution *engine.Execution) {
	c.executionsTotal.WithLabelValues(symbol).Inc()
	c.executedQuantity.WithLabelValues(symbol).Observe(float64(execution.Quantity))
	if execution.Price != nil {
		c.lastTradePrice.WithLabelValues(symbol).Set(*execution.Price)
	}
}
