package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/lankawattwise/lankawattwise/core/metrics"
)

// PromSink records scheduling and billing events in Prometheus metrics.
type PromSink struct {
	tasks   *prometheus.CounterVec
	savings prometheus.Counter
	latency prometheus.Histogram
	bills   *prometheus.CounterVec
}

// NewPromSink registers engine metrics on the default Prometheus registerer.
// The Prometheus server is started separately on cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	tasks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_tasks_total",
		Help: "Total number of optimized tasks",
	}, []string{"appliance_id", "infeasible"})
	savings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_estimated_savings_lkr_total",
		Help: "Cumulative estimated savings across recommendations",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_optimize_duration_seconds",
		Help:    "Wall-clock duration of optimize calls",
		Buckets: prometheus.DefBuckets,
	})
	bills := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "billing_queries_total",
		Help: "Total number of billing preview/projection/warning queries",
	}, []string{"kind"})

	for _, c := range []prometheus.Collector{tasks, savings, latency, bills} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{tasks: tasks, savings: savings, latency: latency, bills: bills}, nil
}

// RecordOptimizationResult increments the counters for each task outcome.
func (s *PromSink) RecordOptimizationResult(res []coremetrics.OptimizationResult) error {
	for _, r := range res {
		s.tasks.WithLabelValues(r.ApplianceID, strconv.FormatBool(r.Infeasible)).Inc()
		if !r.Infeasible {
			s.savings.Add(r.EstSavingLKR)
		}
	}
	return nil
}

// RecordOptimizationLatency observes the optimize call duration.
func (s *PromSink) RecordOptimizationLatency(lat coremetrics.OptimizationLatency) error {
	s.latency.Observe(lat.Latency.Seconds())
	return nil
}

// RecordBillQuery counts billing queries by kind.
func (s *PromSink) RecordBillQuery(ev coremetrics.BillQueryEvent) error {
	s.bills.WithLabelValues(ev.Kind).Inc()
	return nil
}
