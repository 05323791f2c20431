// Package metrics exposes pipeline data-quality counters on a dedicated
// prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	RowsLoaded     prometheus.Counter
	RowsDropped    prometheus.Counter
	JoinMisses     prometheus.Counter
	FactRows       prometheus.Counter
	Runs           prometheus.Counter
	RunsFailed     prometheus.Counter
	RunDurationSec prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rowsLoaded := prometheus.NewCounter(prometheus.CounterOpts{Name: "vendas_rows_loaded_total"})
	rowsDropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "vendas_rows_dropped_total"})
	joinMisses := prometheus.NewCounter(prometheus.CounterOpts{Name: "vendas_join_misses_total"})
	factRows := prometheus.NewCounter(prometheus.CounterOpts{Name: "vendas_fact_rows_total"})
	runs := prometheus.NewCounter(prometheus.CounterOpts{Name: "vendas_pipeline_runs_total"})
	runsFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "vendas_pipeline_runs_failed_total"})
	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vendas_pipeline_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(rowsLoaded, rowsDropped, joinMisses, factRows, runs, runsFailed, runDuration)
	return &Registry{
		reg:            r,
		RowsLoaded:     rowsLoaded,
		RowsDropped:    rowsDropped,
		JoinMisses:     joinMisses,
		FactRows:       factRows,
		Runs:           runs,
		RunsFailed:     runsFailed,
		RunDurationSec: runDuration,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
