package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lankawattwise/lankawattwise/config"
	"github.com/lankawattwise/lankawattwise/core/billing"
	"github.com/lankawattwise/lankawattwise/core/carbon"
	"github.com/lankawattwise/lankawattwise/core/logger"
	coremetrics "github.com/lankawattwise/lankawattwise/core/metrics"
	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/core/optimizer"
	"github.com/lankawattwise/lankawattwise/core/solar"
	"github.com/lankawattwise/lankawattwise/core/store"
	"github.com/lankawattwise/lankawattwise/core/tariff"
)

// PlanPublisher pushes optimized plans to external consumers.
type PlanPublisher interface {
	PublishPlan(userID, date string, plan []model.Recommendation) error
}

// Engine resolves all external reads up front and then calls into the pure
// core, implementing the api.Engine surface.
type Engine struct {
	store store.Store
	opt   *optimizer.Optimizer
	bill  *billing.Engine
	sink  coremetrics.Sink
	pub   PlanPublisher
	log   logger.Logger
}

// NewEngine assembles the application engine. sink and pub may be nil.
func NewEngine(st store.Store, opt *optimizer.Optimizer, bill *billing.Engine, sink coremetrics.Sink, pub PlanPublisher, log logger.Logger) *Engine {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Engine{store: st, opt: opt, bill: bill, sink: sink, pub: pub, log: log}
}

// loadInputs gathers the user's models. Missing tariff or carbon config
// falls back to the bundled CEB defaults at this boundary; the core never
// substitutes defaults itself.
func (e *Engine) loadInputs(ctx context.Context, userID string) (optimizer.Inputs, error) {
	t, err := e.store.GetTariff(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		t = config.DefaultBlockTariff()
	} else if err != nil {
		return optimizer.Inputs{}, fmt.Errorf("load tariff: %w", err)
	}
	tm, err := tariff.New(t)
	if err != nil {
		return optimizer.Inputs{}, err
	}

	cp, err := e.store.GetCarbon(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		cp = config.DefaultCarbonProfile()
	} else if err != nil {
		return optimizer.Inputs{}, fmt.Errorf("load carbon: %w", err)
	}
	cm, err := carbon.New(cp)
	if err != nil {
		return optimizer.Inputs{}, err
	}

	sc, err := e.store.GetSolar(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		sc = model.SolarConfig{}
	} else if err != nil {
		return optimizer.Inputs{}, fmt.Errorf("load solar: %w", err)
	}

	return optimizer.Inputs{Tariff: tm, Carbon: cm, Solar: solar.New(sc)}, nil
}

// OptimizePlan runs the three-variant search for a user and date, caches
// the balanced plan and publishes it when a publisher is configured.
func (e *Engine) OptimizePlan(ctx context.Context, userID, date string, alpha float64) (optimizer.Variants, []*optimizer.InfeasibleTaskError, error) {
	day, err := time.ParseInLocation("2006-01-02", date, model.Timezone)
	if err != nil {
		return optimizer.Variants{}, nil, model.NewFieldError("date", "expected YYYY-MM-DD")
	}
	in, err := e.loadInputs(ctx, userID)
	if err != nil {
		return optimizer.Variants{}, nil, err
	}
	tasks, err := e.store.GetTasks(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		tasks = nil
	} else if err != nil {
		return optimizer.Variants{}, nil, fmt.Errorf("load tasks: %w", err)
	}

	started := time.Now()
	variants, infeasible, err := e.opt.OptimizeVariants(day, alpha, tasks, in)
	if err != nil {
		return optimizer.Variants{}, nil, err
	}
	e.record(userID, alpha, started, len(tasks), variants.Balanced, infeasible)

	if err := e.store.PutPlan(ctx, userID, date, variants.Balanced); err != nil {
		e.log.Warnf("cache plan for %s: %v", userID, err)
	}
	if e.pub != nil {
		if err := e.pub.PublishPlan(userID, date, variants.Balanced); err != nil {
			e.log.Warnf("publish plan for %s: %v", userID, err)
		}
	}
	return variants, infeasible, nil
}

func (e *Engine) record(userID string, alpha float64, started time.Time, taskCount int, plan []model.Recommendation, infeasible []*optimizer.InfeasibleTaskError) {
	now := time.Now()
	results := make([]coremetrics.OptimizationResult, 0, len(plan)+len(infeasible))
	for _, rec := range plan {
		results = append(results, coremetrics.OptimizationResult{
			UserID:       userID,
			TaskID:       rec.TaskID,
			ApplianceID:  rec.ApplianceID,
			Alpha:        alpha,
			CostRs:       rec.CostRs,
			CO2Kg:        rec.CO2Kg,
			EstSavingLKR: rec.EstSavingLKR,
			Time:         now,
		})
	}
	for _, inf := range infeasible {
		results = append(results, coremetrics.OptimizationResult{
			UserID:     userID,
			TaskID:     inf.TaskID,
			Alpha:      alpha,
			Infeasible: true,
			Time:       now,
		})
	}
	if err := e.sink.RecordOptimizationResult(results); err != nil {
		e.log.Warnf("record optimization results: %v", err)
	}
	lat := coremetrics.OptimizationLatency{UserID: userID, TaskCount: taskCount, Latency: now.Sub(started), Time: now}
	if err := e.sink.RecordOptimizationLatency(lat); err != nil {
		e.log.Warnf("record optimization latency: %v", err)
	}
}

// CurrentPlan returns the cached plan for a user and date.
func (e *Engine) CurrentPlan(ctx context.Context, userID, date string) ([]model.Recommendation, error) {
	return e.store.GetPlan(ctx, userID, date)
}

// PreviewBill estimates the monthly bill for an assumed consumption.
func (e *Engine) PreviewBill(ctx context.Context, userID string, monthlyKWh float64) (model.BillPreview, error) {
	in, err := e.loadInputs(ctx, userID)
	if err != nil {
		return model.BillPreview{}, err
	}
	preview := e.bill.PreviewMonthlyBill(in.Tariff, monthlyKWh)
	e.recordBill(userID, "preview", preview.EstimatedCostLKR)
	return preview, nil
}

// ProjectMonth estimates end-of-month cost and emissions.
func (e *Engine) ProjectMonth(ctx context.Context, userID string, eomKWh float64) (model.MonthlyProjection, error) {
	in, err := e.loadInputs(ctx, userID)
	if err != nil {
		return model.MonthlyProjection{}, err
	}
	proj := e.bill.ProjectMonth(in.Carbon, in.Tariff, eomKWh)
	e.recordBill(userID, "projection", proj.TotalCostRs)
	return proj, nil
}

// BlockWarning reports whether a prospective task crosses a block boundary
// given the user's month-to-date consumption.
func (e *Engine) BlockWarning(ctx context.Context, userID string, taskKWh float64) (model.BlockWarning, error) {
	in, err := e.loadInputs(ctx, userID)
	if err != nil {
		return model.BlockWarning{}, err
	}
	mtd, err := e.monthToDate(ctx, userID, in.Tariff.Tariff())
	if err != nil {
		return model.BlockWarning{}, err
	}
	warning := e.bill.WarnIfCrossing(in.Tariff, mtd, taskKWh)
	e.recordBill(userID, "blockwarning", warning.DeltaMarginal+warning.DeltaFixed)
	return warning, nil
}

// monthToDate prefers summed usage records within the cycle; without any it
// falls back to the meter reading captured at setup time.
func (e *Engine) monthToDate(ctx context.Context, userID string, t model.Tariff) (float64, error) {
	now := time.Now().In(model.Timezone)
	var cycleStart time.Time
	if t.BillingCycleStart != "" {
		parsed, err := time.ParseInLocation("2006-01-02", t.BillingCycleStart, model.Timezone)
		if err == nil {
			cycleStart = parsed
		}
	}
	if cycleStart.IsZero() {
		cycleStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, model.Timezone)
	}
	records, err := e.store.GetUsage(ctx, userID, cycleStart, now)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("load usage: %w", err)
	}
	if len(records) == 0 {
		return t.UsedUnitsAtCycleStart, nil
	}
	return e.bill.MonthToDateKWh(records, cycleStart, now), nil
}

// TariffWindows returns the user's tariff for display.
func (e *Engine) TariffWindows(ctx context.Context, userID string) (model.Tariff, error) {
	t, err := e.store.GetTariff(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return config.DefaultTOUTariff(), nil
	}
	return t, err
}

func (e *Engine) recordBill(userID, kind string, cost float64) {
	if err := e.sink.RecordBillQuery(coremetrics.BillQueryEvent{UserID: userID, Kind: kind, CostLKR: cost, Time: time.Now()}); err != nil {
		e.log.Warnf("record bill query: %v", err)
	}
}
