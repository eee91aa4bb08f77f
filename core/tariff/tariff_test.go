package tariff

import (
	"errors"
	"math"
	"testing"

	"github.com/lankawattwise/lankawattwise/core/model"
)

func touTariff() model.Tariff {
	return model.Tariff{
		Type: model.TariffTOU,
		Windows: []model.TariffWindow{
			{Name: "Off-Peak", StartTime: "22:30", EndTime: "05:30", RateLKR: 25},
			{Name: "Day", StartTime: "05:30", EndTime: "18:30", RateLKR: 45},
			{Name: "Peak", StartTime: "18:30", EndTime: "22:30", RateLKR: 70},
		},
		FixedLKR: 540,
	}
}

func blockTariff() model.Tariff {
	return model.Tariff{
		Type: model.TariffBlock,
		Blocks: []model.BlockTier{
			{UptoKWh: 30, RateLKR: 12},
			{UptoKWh: 60, RateLKR: 30},
			{UptoKWh: 90, RateLKR: 36},
			{UptoKWh: 120, RateLKR: 50},
			{UptoKWh: 180, RateLKR: 50},
			{UptoKWh: 999999, RateLKR: 75},
		},
		FixedTable: []model.FixedCharge{
			{UptoKWh: 30, FixedLKR: 150},
			{UptoKWh: 60, FixedLKR: 300},
			{UptoKWh: 90, FixedLKR: 400},
			{UptoKWh: 120, FixedLKR: 1000},
			{UptoKWh: 180, FixedLKR: 1500},
			{UptoKWh: 999999, FixedLKR: 2000},
		},
	}
}

func TestNewSplitsMidnightWrap(t *testing.T) {
	m, err := New(touTariff())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// The wrapping Off-Peak window splits into two spans, so four intervals
	// cover the day.
	if got := len(m.Intervals()); got != 4 {
		t.Fatalf("expected 4 intervals got %d", got)
	}
	covered := 0
	for _, iv := range m.Intervals() {
		covered += iv.End - iv.Start
	}
	if covered != model.MinutesPerDay {
		t.Fatalf("intervals cover %d minutes, expected %d", covered, model.MinutesPerDay)
	}
}

func TestPriceAt(t *testing.T) {
	m, err := New(touTariff())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []struct {
		minute int
		rate   float64
		name   string
	}{
		{0, 25, "Off-Peak"},
		{329, 25, "Off-Peak"},
		{330, 45, "Day"},
		{1109, 45, "Day"},
		{1110, 70, "Peak"},
		{1349, 70, "Peak"},
		{1350, 25, "Off-Peak"},
		{1439, 25, "Off-Peak"},
	}
	for _, c := range cases {
		rate, name, err := m.PriceAt(c.minute)
		if err != nil {
			t.Fatalf("price at %d: %v", c.minute, err)
		}
		if rate != c.rate || name != c.name {
			t.Fatalf("minute %d: expected %.0f/%s got %.0f/%s", c.minute, c.rate, c.name, rate, name)
		}
	}
}

func TestNewRejectsGap(t *testing.T) {
	bad := model.Tariff{
		Type: model.TariffTOU,
		Windows: []model.TariffWindow{
			{Name: "Day", StartTime: "06:00", EndTime: "18:00", RateLKR: 45},
			{Name: "Night", StartTime: "20:00", EndTime: "06:00", RateLKR: 25},
		},
	}
	if _, err := New(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig got %v", err)
	}
}

func TestNewRejectsOverlap(t *testing.T) {
	bad := model.Tariff{
		Type: model.TariffTOU,
		Windows: []model.TariffWindow{
			{Name: "Day", StartTime: "00:00", EndTime: "13:00", RateLKR: 45},
			{Name: "Night", StartTime: "12:00", EndTime: "00:00", RateLKR: 25},
		},
	}
	if _, err := New(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig got %v", err)
	}
}

func TestNewRejectsNonAscendingBlocks(t *testing.T) {
	bad := model.Tariff{
		Type: model.TariffBlock,
		Blocks: []model.BlockTier{
			{UptoKWh: 60, RateLKR: 12},
			{UptoKWh: 30, RateLKR: 30},
		},
	}
	if _, err := New(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig got %v", err)
	}
}

func TestTierCostSplitsAcrossBoundaries(t *testing.T) {
	blocks := blockTariff().Blocks
	cases := []struct {
		cumulative, delta, want float64
	}{
		// Entirely inside the first tier.
		{0, 30, 360},
		// 30*12 + 30*30 + 30*36 + 10*50.
		{0, 100, 2840},
		// Crossing the first boundary: 2 kWh at 12, 3 kWh at 30.
		{28, 5, 114},
		// Starting past a boundary.
		{60, 10, 360},
	}
	for _, c := range cases {
		got := TierCost(blocks, c.cumulative, c.delta)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("TierCost(%v, %v): expected %.2f got %.2f", c.cumulative, c.delta, c.want, got)
		}
	}
}

func TestTierCostBeyondLastBound(t *testing.T) {
	blocks := []model.BlockTier{{UptoKWh: 30, RateLKR: 12}}
	got := TierCost(blocks, 0, 50)
	if math.Abs(got-600) > 1e-9 {
		t.Fatalf("expected overflow at last rate, got %.2f", got)
	}
}

func TestTierCostZeroDelta(t *testing.T) {
	if got := TierCost(blockTariff().Blocks, 100, 0); got != 0 {
		t.Fatalf("expected 0 got %.2f", got)
	}
}

func TestFixedChargeFor(t *testing.T) {
	m, err := New(blockTariff())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []struct {
		kwh, want float64
	}{
		{25, 150},
		{30, 150},
		{31, 300},
		{95, 1000},
		{500, 2000},
	}
	for _, c := range cases {
		if got := m.FixedChargeFor(c.kwh); got != c.want {
			t.Fatalf("fixed for %.0f: expected %.0f got %.0f", c.kwh, c.want, got)
		}
	}
}

func TestFixedChargeForTOUUsesFlat(t *testing.T) {
	m, err := New(touTariff())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := m.FixedChargeFor(300); got != 540 {
		t.Fatalf("expected flat 540 got %.0f", got)
	}
}
