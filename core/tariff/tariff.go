// Package tariff models time-of-use and block electricity tariffs and
// answers marginal-price queries for both.
package tariff

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lankawattwise/lankawattwise/core/model"
)

// ErrInvalidConfig marks tariffs whose windows do not partition the day or
// whose block tiers are not strictly ascending. Callers should not retry.
var ErrInvalidConfig = errors.New("invalid tariff config")

// Interval is a non-wrapping [Start, End) span in minutes of day carrying the
// rate and window name of the TOU band it came from.
type Interval struct {
	Start   int
	End     int
	Name    string
	RateLKR float64
}

// Model wraps a validated tariff. TOU windows are pre-normalized into
// non-wrapping intervals so downstream lookups are ordinary containment
// checks.
type Model struct {
	tariff    model.Tariff
	intervals []Interval
}

// New validates the tariff and normalizes its windows. Midnight-wrapping
// windows are split into two spans. A TOU tariff whose spans do not cover
// every minute exactly once fails with ErrInvalidConfig.
func New(t model.Tariff) (*Model, error) {
	m := &Model{tariff: t}
	switch t.Type {
	case model.TariffTOU:
		iv, err := normalizeWindows(t.Windows)
		if err != nil {
			return nil, err
		}
		m.intervals = iv
	case model.TariffBlock:
		if err := validateBlocks(t.Blocks); err != nil {
			return nil, err
		}
	default:
		return nil, model.NewFieldError("tariffType", fmt.Sprintf("unknown type %q", t.Type))
	}
	return m, nil
}

// Tariff returns the underlying tariff value.
func (m *Model) Tariff() model.Tariff { return m.tariff }

// Type returns the tariff type.
func (m *Model) Type() model.TariffType { return m.tariff.Type }

// Intervals returns the normalized TOU intervals sorted by start minute.
// The slice is nil for BLOCK tariffs.
func (m *Model) Intervals() []Interval { return m.intervals }

// PriceAt returns the TOU rate and window name covering the given minute of
// day. Only valid for TOU tariffs; the partition invariant guarantees exactly
// one interval matches.
func (m *Model) PriceAt(minuteOfDay int) (float64, string, error) {
	if m.tariff.Type != model.TariffTOU {
		return 0, "", fmt.Errorf("%w: PriceAt on %s tariff", ErrInvalidConfig, m.tariff.Type)
	}
	mod := ((minuteOfDay % model.MinutesPerDay) + model.MinutesPerDay) % model.MinutesPerDay
	for _, iv := range m.intervals {
		if mod >= iv.Start && mod < iv.End {
			return iv.RateLKR, iv.Name, nil
		}
	}
	// Unreachable when the partition invariant holds.
	return 0, "", fmt.Errorf("%w: no window covers %s", ErrInvalidConfig, model.FormatMinuteOfDay(mod))
}

// BlockEnergyCost charges an increment of deltaKWh on top of cumulativeKWh,
// splitting the increment across tier boundaries so each sub-span is billed
// at its tier's marginal rate.
func (m *Model) BlockEnergyCost(cumulativeKWh, deltaKWh float64) float64 {
	return TierCost(m.tariff.Blocks, cumulativeKWh, deltaKWh)
}

// FixedChargeFor returns the fixed charge for a month that ends at totalKWh.
// BLOCK tariffs with a fixed-charge table step the charge by consumption
// tier; otherwise the flat FixedLKR applies.
func (m *Model) FixedChargeFor(totalKWh float64) float64 {
	if m.tariff.Type == model.TariffBlock && len(m.tariff.FixedTable) > 0 {
		for _, fc := range m.tariff.FixedTable {
			if totalKWh <= fc.UptoKWh {
				return fc.FixedLKR
			}
		}
		return m.tariff.FixedTable[len(m.tariff.FixedTable)-1].FixedLKR
	}
	return m.tariff.FixedLKR
}

// TierCost bills deltaKWh drawn after cumulativeKWh against ascending tiers.
// Energy beyond the last tier bound is billed at the last tier's rate.
func TierCost(blocks []model.BlockTier, cumulativeKWh, deltaKWh float64) float64 {
	if deltaKWh <= 0 || len(blocks) == 0 {
		return 0
	}
	cost := 0.0
	remaining := deltaKWh
	pos := cumulativeKWh
	for _, b := range blocks {
		if remaining <= 0 {
			break
		}
		if pos >= b.UptoKWh {
			continue
		}
		span := b.UptoKWh - pos
		if span > remaining {
			span = remaining
		}
		cost += span * b.RateLKR
		pos += span
		remaining -= span
	}
	if remaining > 0 {
		cost += remaining * blocks[len(blocks)-1].RateLKR
	}
	return cost
}

func normalizeWindows(windows []model.TariffWindow) ([]Interval, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("%w: no windows", ErrInvalidConfig)
	}
	var iv []Interval
	for i, w := range windows {
		start, err := model.ParseMinuteOfDay(w.StartTime)
		if err != nil {
			return nil, model.NewFieldError(fmt.Sprintf("windows[%d].startTime", i), err.Error())
		}
		end, err := model.ParseMinuteOfDay(w.EndTime)
		if err != nil {
			return nil, model.NewFieldError(fmt.Sprintf("windows[%d].endTime", i), err.Error())
		}
		if end > start {
			iv = append(iv, Interval{Start: start, End: end, Name: w.Name, RateLKR: w.RateLKR})
		} else {
			// Wraps midnight: split into [start, 24:00) and [00:00, end).
			iv = append(iv, Interval{Start: start, End: model.MinutesPerDay, Name: w.Name, RateLKR: w.RateLKR})
			if end > 0 {
				iv = append(iv, Interval{Start: 0, End: end, Name: w.Name, RateLKR: w.RateLKR})
			}
		}
	}
	sort.Slice(iv, func(a, b int) bool { return iv[a].Start < iv[b].Start })
	cursor := 0
	for _, s := range iv {
		if s.Start > cursor {
			return nil, fmt.Errorf("%w: gap at %s", ErrInvalidConfig, model.FormatMinuteOfDay(cursor))
		}
		if s.Start < cursor {
			return nil, fmt.Errorf("%w: overlap at %s", ErrInvalidConfig, model.FormatMinuteOfDay(s.Start))
		}
		cursor = s.End
	}
	if cursor != model.MinutesPerDay {
		return nil, fmt.Errorf("%w: day not covered past %s", ErrInvalidConfig, model.FormatMinuteOfDay(cursor))
	}
	return iv, nil
}

func validateBlocks(blocks []model.BlockTier) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%w: no block tiers", ErrInvalidConfig)
	}
	prev := 0.0
	for i, b := range blocks {
		if b.UptoKWh <= prev {
			return fmt.Errorf("%w: tier %d bound %.0f not ascending", ErrInvalidConfig, i, b.UptoKWh)
		}
		if b.RateLKR < 0 {
			return fmt.Errorf("%w: tier %d has negative rate", ErrInvalidConfig, i)
		}
		prev = b.UptoKWh
	}
	return nil
}
