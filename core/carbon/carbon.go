// Package carbon maps time of day to grid emission intensity.
package carbon

import (
	"errors"
	"fmt"

	"github.com/lankawattwise/lankawattwise/core/model"
)

// ProfileSlots is the number of half-hour slots in a daily profile.
const ProfileSlots = 48

// ErrInvalidProfile marks profiles with a wrong slot count or negative
// values.
var ErrInvalidProfile = errors.New("invalid carbon profile")

// Model answers intensity queries from either a constant factor or a 48-slot
// half-hourly profile.
type Model struct {
	profile model.CarbonProfile
}

// New validates the profile shape eagerly.
func New(p model.CarbonProfile) (*Model, error) {
	switch p.ModelType {
	case model.CarbonConstant:
		if p.KgPerKWh < 0 {
			return nil, fmt.Errorf("%w: negative factor", ErrInvalidProfile)
		}
	case model.CarbonProfile48:
		if len(p.Slots) != ProfileSlots {
			return nil, fmt.Errorf("%w: expected %d slots, got %d", ErrInvalidProfile, ProfileSlots, len(p.Slots))
		}
		for i, v := range p.Slots {
			if v < 0 {
				return nil, fmt.Errorf("%w: slot %d negative", ErrInvalidProfile, i)
			}
		}
	default:
		return nil, model.NewFieldError("modelType", fmt.Sprintf("unknown type %q", p.ModelType))
	}
	return &Model{profile: p}, nil
}

// IntensityAt returns kg CO2 per kWh for the given minute of day. Profile
// lookups clamp the slot index to [0,47].
func (m *Model) IntensityAt(minuteOfDay int) float64 {
	if m.profile.ModelType == model.CarbonConstant {
		return m.profile.KgPerKWh
	}
	idx := minuteOfDay / 30
	if idx < 0 {
		idx = 0
	}
	if idx >= ProfileSlots {
		idx = ProfileSlots - 1
	}
	return m.profile.Slots[idx]
}

// IsConstant reports whether intensity is flat across the day. The optimizer
// uses this to detect zero-variance inputs.
func (m *Model) IsConstant() bool {
	if m.profile.ModelType == model.CarbonConstant {
		return true
	}
	first := m.profile.Slots[0]
	for _, v := range m.profile.Slots[1:] {
		if v != first {
			return false
		}
	}
	return true
}

// DailyMean returns the mean intensity over the day, used for monthly
// projections where the hourly load shape is unknown.
func (m *Model) DailyMean() float64 {
	if m.profile.ModelType == model.CarbonConstant {
		return m.profile.KgPerKWh
	}
	sum := 0.0
	for _, v := range m.profile.Slots {
		sum += v
	}
	return sum / ProfileSlots
}
