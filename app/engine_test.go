package app

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/lankawattwise/lankawattwise/core/billing"
	"github.com/lankawattwise/lankawattwise/core/logger"
	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/core/optimizer"
	"github.com/lankawattwise/lankawattwise/infra/store"
)

func testEngine(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	opt, err := optimizer.New(optimizer.Config{}, logger.Nop{})
	if err != nil {
		t.Fatalf("optimizer: %v", err)
	}
	return NewEngine(st, opt, billing.NewEngine(billing.Config{}), nil, nil, logger.Nop{}), st
}

func TestOptimizePlanUsesDefaultsAndCachesPlan(t *testing.T) {
	e, st := testEngine(t)
	ctx := context.Background()
	tasks := []model.Task{
		{ID: "t1", ApplianceID: "Washer", RatedPowerW: 500, DurationMinutes: 60, Earliest: "06:00", Latest: "22:00"},
	}
	if err := st.PutTasks(ctx, "u1", tasks); err != nil {
		t.Fatalf("put tasks: %v", err)
	}

	variants, infeasible, err := e.OptimizePlan(ctx, "u1", "2025-06-01", 0.5)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if len(infeasible) != 0 {
		t.Fatalf("unexpected infeasible %+v", infeasible)
	}
	// No tariff configured: the default block tariff with constant carbon is
	// flat, so the plan reports no schedule benefit.
	if len(variants.Balanced) != 1 {
		t.Fatalf("expected one recommendation got %+v", variants.Balanced)
	}
	if variants.Balanced[0].Reasons[0] != "NoScheduleBenefit:FlatRate" {
		t.Fatalf("expected flat-rate reason got %v", variants.Balanced[0].Reasons)
	}

	cached, err := e.CurrentPlan(ctx, "u1", "2025-06-01")
	if err != nil {
		t.Fatalf("cached plan: %v", err)
	}
	if len(cached) != 1 || cached[0].TaskID != "t1" {
		t.Fatalf("cached plan mismatch: %+v", cached)
	}
}

func TestOptimizePlanRejectsBadDate(t *testing.T) {
	e, _ := testEngine(t)
	if _, _, err := e.OptimizePlan(context.Background(), "u1", "june 1st", 0.5); err == nil {
		t.Fatal("expected error for bad date")
	}
}

func TestPreviewBillWithDefaultTariff(t *testing.T) {
	e, _ := testEngine(t)
	preview, err := e.PreviewBill(context.Background(), "u1", 100)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	// CEB block tariff: 2840 energy plus 1000 fixed at 100 kWh.
	if math.Abs(preview.EstimatedCostLKR-3840) > 1e-9 {
		t.Fatalf("expected 3840 got %v", preview.EstimatedCostLKR)
	}
}

func TestProjectMonthWithDefaultCarbon(t *testing.T) {
	e, _ := testEngine(t)
	proj, err := e.ProjectMonth(context.Background(), "u1", 200)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if math.Abs(proj.TotalCO2Kg-106) > 1e-9 {
		t.Fatalf("expected 106 kg got %v", proj.TotalCO2Kg)
	}
}

func TestBlockWarningFallsBackToMeterReading(t *testing.T) {
	e, st := testEngine(t)
	ctx := context.Background()
	tr := model.Tariff{
		Type: model.TariffBlock,
		Blocks: []model.BlockTier{
			{UptoKWh: 30, RateLKR: 12},
			{UptoKWh: 60, RateLKR: 30},
			{UptoKWh: 999999, RateLKR: 75},
		},
		UsedUnitsAtCycleStart: 28,
	}
	if err := st.PutTariff(ctx, "u1", tr); err != nil {
		t.Fatalf("put tariff: %v", err)
	}
	w, err := e.BlockWarning(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("warning: %v", err)
	}
	if !w.WillCross || w.NextThresholdKWh != 30 {
		t.Fatalf("expected crossing at 30 got %+v", w)
	}
}

func TestBlockWarningPrefersUsageRecords(t *testing.T) {
	e, st := testEngine(t)
	ctx := context.Background()
	tr := model.Tariff{
		Type: model.TariffBlock,
		Blocks: []model.BlockTier{
			{UptoKWh: 30, RateLKR: 12},
			{UptoKWh: 999999, RateLKR: 75},
		},
		UsedUnitsAtCycleStart: 100,
	}
	if err := st.PutTariff(ctx, "u1", tr); err != nil {
		t.Fatalf("put tariff: %v", err)
	}
	// A fresh record this month overrides the stale meter reading.
	now := time.Now().In(model.Timezone)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, model.Timezone)
	if err := st.PutUsage(ctx, "u1", model.UsageRecord{Date: first, KWh: 10}); err != nil {
		t.Fatalf("put usage: %v", err)
	}
	w, err := e.BlockWarning(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("warning: %v", err)
	}
	// At 10 kWh month to date, 5 more stays inside the first tier.
	if w.WillCross {
		t.Fatalf("expected no crossing got %+v", w)
	}
	if w.NextThresholdKWh != 30 {
		t.Fatalf("expected threshold 30 got %+v", w)
	}
}

func TestTariffWindowsDefault(t *testing.T) {
	e, _ := testEngine(t)
	tr, err := e.TariffWindows(context.Background(), "u1")
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if tr.Type != model.TariffTOU || len(tr.Windows) != 3 {
		t.Fatalf("expected default TOU tariff got %+v", tr)
	}
}
