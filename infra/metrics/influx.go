package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/lankawattwise/lankawattwise/infra/logger"

	coremetrics "github.com/lankawattwise/lankawattwise/core/metrics"
)

// InfluxSink writes engine events to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	client := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordOptimizationResult writes each task outcome as a point.
func (s *InfluxSink) RecordOptimizationResult(res []coremetrics.OptimizationResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range res {
		p := write.NewPointWithMeasurement("optimization_result").
			AddTag("user_id", r.UserID).
			AddTag("task_id", r.TaskID).
			AddTag("appliance_id", r.ApplianceID).
			AddTag("infeasible", strconv.FormatBool(r.Infeasible)).
			AddField("alpha", round3(r.Alpha)).
			AddField("cost_rs", round3(r.CostRs)).
			AddField("co2_kg", round3(r.CO2Kg)).
			AddField("est_saving_lkr", round3(r.EstSavingLKR)).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordOptimizationLatency writes the optimize call duration.
func (s *InfluxSink) RecordOptimizationLatency(lat coremetrics.OptimizationLatency) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("optimize_call").
		AddTag("user_id", lat.UserID).
		AddField("task_count", lat.TaskCount).
		AddField("latency_ms", round3(lat.Latency.Seconds()*1000)).
		SetTime(lat.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBillQuery writes a billing query event.
func (s *InfluxSink) RecordBillQuery(ev coremetrics.BillQueryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("billing_query").
		AddTag("user_id", ev.UserID).
		AddTag("kind", ev.Kind).
		AddField("cost_lkr", round3(ev.CostLKR)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
