// Package solar adjusts grid cost and emissions for self-generation and
// export settlement.
package solar

import "github.com/lankawattwise/lankawattwise/core/model"

// Model evaluates self-generation offsets against a daily profile. The
// profile holds average generated power in kW per slot, the day divided
// evenly across its length.
type Model struct {
	cfg model.SolarConfig
}

// New wraps a solar configuration. A disabled config yields zero
// adjustments everywhere.
func New(cfg model.SolarConfig) *Model { return &Model{cfg: cfg} }

// Enabled reports whether any adjustment applies.
func (m *Model) Enabled() bool { return m.cfg.Enabled }

// HasProfile reports whether a generation profile is configured.
func (m *Model) HasProfile() bool { return m.cfg.Enabled && len(m.cfg.DailyProfile) > 0 }

// SlotMinutes returns the length of one profile slot, or 0 without a
// profile.
func (m *Model) SlotMinutes() int {
	if !m.HasProfile() {
		return 0
	}
	return model.MinutesPerDay / len(m.cfg.DailyProfile)
}

// GenerationKW returns the generated power at the given minute of day.
func (m *Model) GenerationKW(minuteOfDay int) float64 {
	if !m.HasProfile() {
		return 0
	}
	idx := minuteOfDay / m.SlotMinutes()
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.cfg.DailyProfile) {
		idx = len(m.cfg.DailyProfile) - 1
	}
	return m.cfg.DailyProfile[idx]
}

// OffsetKWh returns how much of grossKWh drawn over minutes minutes starting
// at minuteOfDay is served by instantaneous self-generation. Offset energy
// carries zero marginal cost and zero grid emissions under all three
// schemes.
func (m *Model) OffsetKWh(minuteOfDay, minutes int, grossKWh float64) float64 {
	if !m.HasProfile() || grossKWh <= 0 {
		return 0
	}
	genKWh := m.GenerationKW(minuteOfDay) * float64(minutes) / 60
	if genKWh > grossKWh {
		return grossKWh
	}
	return genKWh
}

// ExportRateLKR returns the credit rate for surplus generation. Net metering
// credits at the import rate; net accounting and net plus credit at the
// configured export price. Settlement-period rollover is a billing concern,
// not handled here.
func (m *Model) ExportRateLKR(importRateLKR float64) float64 {
	if !m.cfg.Enabled {
		return 0
	}
	if m.cfg.Scheme == model.NetMetering {
		return importRateLKR
	}
	return m.cfg.ExportPriceLKR
}

// Scheme returns the configured settlement scheme.
func (m *Model) Scheme() model.SolarScheme { return m.cfg.Scheme }
