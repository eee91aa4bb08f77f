package carbon

import (
	"errors"
	"math"
	"testing"

	"github.com/lankawattwise/lankawattwise/core/model"
)

func TestConstantModel(t *testing.T) {
	m, err := New(model.CarbonProfile{ModelType: model.CarbonConstant, KgPerKWh: 0.53})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, minute := range []int{0, 720, 1439} {
		if got := m.IntensityAt(minute); got != 0.53 {
			t.Fatalf("minute %d: expected 0.53 got %v", minute, got)
		}
	}
	if !m.IsConstant() {
		t.Fatal("expected constant")
	}
	if m.DailyMean() != 0.53 {
		t.Fatalf("expected mean 0.53 got %v", m.DailyMean())
	}
}

func TestProfileModel(t *testing.T) {
	slots := make([]float64, ProfileSlots)
	for i := range slots {
		slots[i] = 0.4
	}
	slots[0] = 0.2  // 00:00-00:30
	slots[47] = 0.8 // 23:30-00:00
	m, err := New(model.CarbonProfile{ModelType: model.CarbonProfile48, Slots: slots})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := m.IntensityAt(15); got != 0.2 {
		t.Fatalf("expected slot 0 got %v", got)
	}
	if got := m.IntensityAt(1439); got != 0.8 {
		t.Fatalf("expected slot 47 got %v", got)
	}
	// Out-of-range minutes clamp to the edge slots.
	if got := m.IntensityAt(2000); got != 0.8 {
		t.Fatalf("expected clamp to last slot got %v", got)
	}
	if got := m.IntensityAt(-10); got != 0.2 {
		t.Fatalf("expected clamp to first slot got %v", got)
	}
	if m.IsConstant() {
		t.Fatal("expected varying profile")
	}
	want := (0.2 + 0.8 + 46*0.4) / 48
	if math.Abs(m.DailyMean()-want) > 1e-12 {
		t.Fatalf("expected mean %v got %v", want, m.DailyMean())
	}
}

func TestProfileFlatIsConstant(t *testing.T) {
	slots := make([]float64, ProfileSlots)
	for i := range slots {
		slots[i] = 0.5
	}
	m, err := New(model.CarbonProfile{ModelType: model.CarbonProfile48, Slots: slots})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !m.IsConstant() {
		t.Fatal("flat profile should report constant")
	}
}

func TestNewRejectsBadProfiles(t *testing.T) {
	if _, err := New(model.CarbonProfile{ModelType: model.CarbonProfile48, Slots: make([]float64, 24)}); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile for short profile got %v", err)
	}
	slots := make([]float64, ProfileSlots)
	slots[3] = -1
	if _, err := New(model.CarbonProfile{ModelType: model.CarbonProfile48, Slots: slots}); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile for negative slot got %v", err)
	}
	if _, err := New(model.CarbonProfile{ModelType: model.CarbonConstant, KgPerKWh: -0.1}); !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile for negative factor got %v", err)
	}
	if _, err := New(model.CarbonProfile{ModelType: "HOURLY"}); err == nil {
		t.Fatal("expected error for unknown model type")
	}
}
