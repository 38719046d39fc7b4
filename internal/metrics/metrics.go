// Package metrics exposes the risk loop's gauges and counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder struct {
	reg prometheus.Gatherer

	Margin       prometheus.Gauge
	Equity       prometheus.Gauge
	Utilization  prometheus.Gauge
	Positions    prometheus.Gauge
	Cycles       prometheus.Counter
	CycleErrors  *prometheus.CounterVec
	Breaches     prometheus.Counter
	Liquidations prometheus.Counter
	PositionRisk *prometheus.GaugeVec
}

// New registers the collectors on a private registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg:          reg,
		Margin:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "marginscan_margin_requirement", Help: "Scenario margin requirement of the last cycle"}),
		Equity:       prometheus.NewGauge(prometheus.GaugeOpts{Name: "marginscan_equity", Help: "Balance plus unrealized P/L of the last cycle"}),
		Utilization:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "marginscan_utilization_ratio", Help: "Margin over equity of the last cycle"}),
		Positions:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "marginscan_positions", Help: "Positions evaluated in the last cycle"}),
		Cycles:       prometheus.NewCounter(prometheus.CounterOpts{Name: "marginscan_cycles_total", Help: "Completed risk cycles"}),
		CycleErrors:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "marginscan_cycle_errors_total", Help: "Failed risk cycles by stage"}, []string{"stage"}),
		Breaches:     prometheus.NewCounter(prometheus.CounterOpts{Name: "marginscan_breaches_total", Help: "Cycles where margin exceeded equity"}),
		Liquidations: prometheus.NewCounter(prometheus.CounterOpts{Name: "marginscan_liquidation_orders_total", Help: "Liquidation orders sent"}),
		PositionRisk: prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "marginscan_position_margin", Help: "Per-position margin contribution"}, []string{"position", "ticker"}),
	}
	reg.MustRegister(
		r.Margin, r.Equity, r.Utilization, r.Positions,
		r.Cycles, r.CycleErrors, r.Breaches, r.Liquidations, r.PositionRisk,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
