// Package metrics expone métricas Prometheus de las corridas de conciliación.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Inventario-recon/internal/application/dto"
	"github.com/jhoicas/Inventario-recon/internal/application/ports"
)

// Registry métricas de corrida sobre un registro propio (no el global).
type Registry struct {
	reg           *prometheus.Registry
	Runs          *prometheus.CounterVec // por resultado: ok | error
	RunDuration   prometheus.Histogram
	Records       *prometheus.GaugeVec // por fuente y estado: accepted | quarantined
	Violations    *prometheus.GaugeVec // por fuente y tipo
	Products      prometheus.Gauge
	StockoutRisks *prometheus.GaugeVec // por nivel
	DeadInventory prometheus.Gauge
	DeadValue     prometheus.Gauge
	Gaps          prometheus.Gauge
	MatchRate     prometheus.Gauge
	LastSuccess   prometheus.Gauge
}

var _ ports.RunRecorder = (*Registry)(nil)

// NewRegistry crea y registra todas las series.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "recon_runs_total"}, []string{"result"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recon_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "recon_records"}, []string{"source", "status"})
	violations := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "recon_quality_violations"}, []string{"source", "type"})
	products := prometheus.NewGauge(prometheus.GaugeOpts{Name: "recon_products"})
	stockout := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "recon_stockout_risks"}, []string{"tier"})
	dead := prometheus.NewGauge(prometheus.GaugeOpts{Name: "recon_dead_inventory_products"})
	deadValue := prometheus.NewGauge(prometheus.GaugeOpts{Name: "recon_dead_inventory_value"})
	gaps := prometheus.NewGauge(prometheus.GaugeOpts{Name: "recon_reconciliation_gaps"})
	matchRate := prometheus.NewGauge(prometheus.GaugeOpts{Name: "recon_match_rate_pct"})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{Name: "recon_last_success_timestamp_seconds"})

	r.MustRegister(runs, duration, records, violations, products, stockout, dead, deadValue, gaps, matchRate, lastSuccess)
	return &Registry{
		reg:           r,
		Runs:          runs,
		RunDuration:   duration,
		Records:       records,
		Violations:    violations,
		Products:      products,
		StockoutRisks: stockout,
		DeadInventory: dead,
		DeadValue:     deadValue,
		Gaps:          gaps,
		MatchRate:     matchRate,
		LastSuccess:   lastSuccess,
	}
}

// Record implementa ports.RunRecorder.
func (r *Registry) Record(report *dto.RunReportDTO, elapsed time.Duration, err error) {
	r.RunDuration.Observe(elapsed.Seconds())
	if err != nil || report == nil {
		r.Runs.WithLabelValues("error").Inc()
		return
	}
	r.Runs.WithLabelValues("ok").Inc()
	r.LastSuccess.SetToCurrentTime()

	for _, q := range report.Quality {
		r.Records.WithLabelValues(q.Source, "accepted").Set(float64(q.AcceptedRecords))
		r.Records.WithLabelValues(q.Source, "quarantined").Set(float64(q.QuarantinedRecords))
		for _, v := range q.Violations {
			r.Violations.WithLabelValues(q.Source, v.Type).Set(float64(v.Count))
		}
	}

	tiers := map[string]int{"critical": 0, "high": 0}
	for _, s := range report.StockoutRisks {
		tiers[s.RiskTier]++
	}
	for tier, n := range tiers {
		r.StockoutRisks.WithLabelValues(tier).Set(float64(n))
	}

	r.Products.Set(float64(len(report.Products)))
	r.DeadInventory.Set(float64(len(report.DeadInventory)))
	r.DeadValue.Set(report.KeyMetrics.DeadInventoryValue.InexactFloat64())
	r.Gaps.Set(float64(len(report.Gaps)))
	r.MatchRate.Set(report.Reconciliation.MatchRate)
}

// Handler endpoint de exposición para /metrics.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
