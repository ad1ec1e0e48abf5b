package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Ferrari1996gk/exchange-lob/pkg/exchange/orderbook"
)

// Collectors are shared across runs; each MetricsSink contributes to the
// same vectors under its own run label.
var (
	ordersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "orders_total",
		Help:      "Orders fed to the matching engine.",
	}, []string{"run", "symbol", "type"})

	tradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "trades_total",
		Help:      "Matched transactions.",
	}, []string{"run", "symbol"})

	tradedVolume = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "traded_volume_total",
		Help:      "Total matched volume.",
	}, []string{"run", "symbol"})

	cancelsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "cancels_total",
		Help:      "Resting orders removed by explicit cancel.",
	}, []string{"run", "symbol"})

	expiriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exchange",
		Name:      "expiries_total",
		Help:      "Resting orders removed by expiry.",
	}, []string{"run", "symbol"})
)

// MetricsSink counts engine events into Prometheus collectors. Snapshot
// events are ignored; only flow metrics are kept.
type MetricsSink struct {
	run    string
	symbol string
}

func NewMetricsSink(runID, symbol string) *MetricsSink {
	return &MetricsSink{run: runID, symbol: symbol}
}

func (m *MetricsSink) Order(o orderbook.Order) {
	ordersTotal.WithLabelValues(m.run, m.symbol, o.Type.String()).Inc()
}

func (m *MetricsSink) Cancelled(orderbook.Order) {
	cancelsTotal.WithLabelValues(m.run, m.symbol).Inc()
}

func (m *MetricsSink) Expired(orderbook.Order) {
	expiriesTotal.WithLabelValues(m.run, m.symbol).Inc()
}

func (m *MetricsSink) Trade(t orderbook.Transaction) {
	tradesTotal.WithLabelValues(m.run, m.symbol).Inc()
	tradedVolume.WithLabelValues(m.run, m.symbol).Add(float64(t.Vol))
}

func (m *MetricsSink) L1(int64, string, [2]orderbook.L1Row)                    {}
func (m *MetricsSink) L2(int64, string, []orderbook.L2Level, []orderbook.L2Level) {}
func (m *MetricsSink) L3(int64, string, []orderbook.Order, []orderbook.Order)     {}
