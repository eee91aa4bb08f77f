package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/lankawattwise/lankawattwise/core/metrics"
)

func TestPromSinkRecordsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	results := []coremetrics.OptimizationResult{
		{UserID: "u1", TaskID: "t1", ApplianceID: "washer", EstSavingLKR: 22.5},
		{UserID: "u1", TaskID: "t2", ApplianceID: "dryer", Infeasible: true},
	}
	if err := sink.RecordOptimizationResult(results); err != nil {
		t.Fatalf("record: %v", err)
	}
	prom := sink.(*PromSink)
	if got := testutil.ToFloat64(prom.tasks.WithLabelValues("washer", "false")); got != 1 {
		t.Fatalf("expected 1 feasible washer task got %v", got)
	}
	if got := testutil.ToFloat64(prom.tasks.WithLabelValues("dryer", "true")); got != 1 {
		t.Fatalf("expected 1 infeasible dryer task got %v", got)
	}
	if got := testutil.ToFloat64(prom.savings); got != 22.5 {
		t.Fatalf("expected savings 22.5 got %v", got)
	}

	if err := sink.RecordOptimizationLatency(coremetrics.OptimizationLatency{Latency: 50 * time.Millisecond}); err != nil {
		t.Fatalf("record latency: %v", err)
	}
	if err := sink.RecordBillQuery(coremetrics.BillQueryEvent{Kind: "preview"}); err != nil {
		t.Fatalf("record bill: %v", err)
	}
	if got := testutil.ToFloat64(prom.bills.WithLabelValues("preview")); got != 1 {
		t.Fatalf("expected 1 preview query got %v", got)
	}
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	// Re-registering on the same registry must not fail.
	if _, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg); err != nil {
		t.Fatalf("second registration: %v", err)
	}
}
