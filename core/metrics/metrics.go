// Package metrics defines the observability events emitted by the engine
// and the sink contract adapters implement.
package metrics

import "time"

// OptimizationResult is a per-task scheduling outcome to be recorded.
type OptimizationResult struct {
	UserID       string
	TaskID       string
	ApplianceID  string
	Alpha        float64
	CostRs       float64
	CO2Kg        float64
	EstSavingLKR float64
	Infeasible   bool
	Time         time.Time
}

// OptimizationLatency captures the wall-clock time of one optimize call.
type OptimizationLatency struct {
	UserID    string
	TaskCount int
	Latency   time.Duration
	Time      time.Time
}

// BillQueryEvent records a billing preview/projection/warning request.
type BillQueryEvent struct {
	UserID  string
	Kind    string
	CostLKR float64
	Time    time.Time
}

// Sink records engine events for observability purposes.
type Sink interface {
	RecordOptimizationResult(results []OptimizationResult) error
	RecordOptimizationLatency(lat OptimizationLatency) error
	RecordBillQuery(ev BillQueryEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordOptimizationResult([]OptimizationResult) error { return nil }
func (NopSink) RecordOptimizationLatency(OptimizationLatency) error { return nil }
func (NopSink) RecordBillQuery(BillQueryEvent) error                { return nil }

// MultiSink fans events out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks into one.
func NewMultiSink(sinks ...Sink) *MultiSink { return &MultiSink{sinks: sinks} }

func (m *MultiSink) RecordOptimizationResult(res []OptimizationResult) error {
	for _, s := range m.sinks {
		if err := s.RecordOptimizationResult(res); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordOptimizationLatency(lat OptimizationLatency) error {
	for _, s := range m.sinks {
		if err := s.RecordOptimizationLatency(lat); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiSink) RecordBillQuery(ev BillQueryEvent) error {
	for _, s := range m.sinks {
		if err := s.RecordBillQuery(ev); err != nil {
			return err
		}
	}
	return nil
}
