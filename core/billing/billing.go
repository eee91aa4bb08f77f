// Package billing computes monthly bill previews, end-of-month projections
// and block-crossing warnings. It is the single authoritative home for this
// arithmetic; clients must not re-derive it.
package billing

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/lankawattwise/lankawattwise/core/carbon"
	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/core/solar"
	"github.com/lankawattwise/lankawattwise/core/tariff"
)

// Config holds billing constants exposed through configuration.
type Config struct {
	// TreeAbsorptionKgPerYear converts annualized CO2 into equivalent trees.
	TreeAbsorptionKgPerYear float64 `json:"tree_absorption_kg_per_year" yaml:"tree_absorption_kg_per_year"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.TreeAbsorptionKgPerYear == 0 {
		c.TreeAbsorptionKgPerYear = 22
	}
}

// Engine answers preview, projection and crossing queries. It is stateless;
// tariff and carbon models are passed per call as immutable values.
type Engine struct {
	cfg Config
}

// NewEngine returns an Engine with defaults applied.
func NewEngine(cfg Config) *Engine {
	cfg.SetDefaults()
	return &Engine{cfg: cfg}
}

// PreviewMonthlyBill estimates the bill for assumedKWh over one cycle.
// TOU uses the duration-weighted mean window rate, an approximation when the
// hourly load shape is unknown; BLOCK sums the tiers exactly. The fixed
// charge is added once per cycle.
func (e *Engine) PreviewMonthlyBill(tm *tariff.Model, assumedKWh float64) model.BillPreview {
	t := tm.Tariff()
	switch t.Type {
	case model.TariffTOU:
		rates := make([]float64, 0, len(tm.Intervals()))
		weights := make([]float64, 0, len(tm.Intervals()))
		for _, iv := range tm.Intervals() {
			rates = append(rates, iv.RateLKR)
			weights = append(weights, float64(iv.End-iv.Start))
		}
		mean := stat.Mean(rates, weights)
		return model.BillPreview{
			EstimatedKWh:     assumedKWh,
			EstimatedCostLKR: assumedKWh*mean + t.FixedLKR,
			Note:             "mean TOU rate approximation; exact cost depends on hourly load shape",
		}
	default:
		energy := tariff.TierCost(t.Blocks, 0, assumedKWh)
		return model.BillPreview{
			EstimatedKWh:     assumedKWh,
			EstimatedCostLKR: energy + tm.FixedChargeFor(assumedKWh),
		}
	}
}

// ProjectMonth estimates end-of-month totals. Carbon uses the daily mean
// intensity; trees required annualize the month (x12) against the
// configured absorption rate.
func (e *Engine) ProjectMonth(cm *carbon.Model, tm *tariff.Model, eomKWh float64) model.MonthlyProjection {
	preview := e.PreviewMonthlyBill(tm, eomKWh)
	co2 := eomKWh * cm.DailyMean()
	return model.MonthlyProjection{
		TotalKWh:      eomKWh,
		TotalCostRs:   preview.EstimatedCostLKR,
		TotalCO2Kg:    co2,
		TreesRequired: co2 * 12 / e.cfg.TreeAbsorptionKgPerYear,
	}
}

// MonthToDateKWh sums usage records that fall inside the current billing
// cycle. cycleStart zero means calendar month of now.
func (e *Engine) MonthToDateKWh(records []model.UsageRecord, cycleStart, now time.Time) float64 {
	if cycleStart.IsZero() {
		n := now.In(model.Timezone)
		cycleStart = time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, model.Timezone)
	}
	total := 0.0
	for _, r := range records {
		if r.Date.Before(cycleStart) || r.Date.After(now) {
			continue
		}
		total += r.KWh
	}
	return total
}

// SolarCreditLKR values surplus generation beyond own consumption for the
// cycle. Net metering credits at the mean import rate; the other schemes
// credit at the configured export price. Rollover across settlement
// periods is out of scope here.
func (e *Engine) SolarCreditLKR(sm *solar.Model, tm *tariff.Model, surplusKWh float64) float64 {
	if !sm.Enabled() || surplusKWh <= 0 {
		return 0
	}
	importRate := 0.0
	if tm.Type() == model.TariffTOU {
		rates := make([]float64, 0, len(tm.Intervals()))
		weights := make([]float64, 0, len(tm.Intervals()))
		for _, iv := range tm.Intervals() {
			rates = append(rates, iv.RateLKR)
			weights = append(weights, float64(iv.End-iv.Start))
		}
		importRate = stat.Mean(rates, weights)
	} else if blocks := tm.Tariff().Blocks; len(blocks) > 0 {
		importRate = blocks[len(blocks)-1].RateLKR
	}
	return surplusKWh * sm.ExportRateLKR(importRate)
}
