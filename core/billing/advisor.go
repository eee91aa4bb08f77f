package billing

import (
	"github.com/lankawattwise/lankawattwise/core/model"
	"github.com/lankawattwise/lankawattwise/core/tariff"
)

// WarnIfCrossing reports whether running a task of taskKWh on top of the
// month-to-date consumption pushes the cycle across a block boundary, and
// what the extra cost is. Non-BLOCK tariffs never cross.
func (e *Engine) WarnIfCrossing(tm *tariff.Model, currentKWh, taskKWh float64) model.BlockWarning {
	t := tm.Tariff()
	if t.Type != model.TariffBlock || taskKWh <= 0 {
		return model.BlockWarning{}
	}

	var current *model.BlockTier
	for i := range t.Blocks {
		if currentKWh < t.Blocks[i].UptoKWh {
			current = &t.Blocks[i]
			break
		}
	}
	if current == nil {
		// Already past the last bound; everything bills at the top rate.
		return model.BlockWarning{}
	}
	if currentKWh+taskKWh <= current.UptoKWh {
		return model.BlockWarning{NextThresholdKWh: current.UptoKWh}
	}

	// Marginal delta: actual tiered cost of the task versus billing it all
	// at the current tier's rate.
	actual := tariff.TierCost(t.Blocks, currentKWh, taskKWh)
	atCurrent := taskKWh * current.RateLKR
	warning := model.BlockWarning{
		WillCross:        true,
		NextThresholdKWh: current.UptoKWh,
		DeltaMarginal:    actual - atCurrent,
	}
	if len(t.FixedTable) > 0 {
		warning.DeltaFixed = tm.FixedChargeFor(currentKWh+taskKWh) - tm.FixedChargeFor(currentKWh)
	}
	return warning
}
