package model

import (
	"fmt"
	"time"
)

// MinutesPerDay is the length of the scheduling day.
const MinutesPerDay = 24 * 60

// Timezone is the fixed local timezone all HH:MM times refer to.
// Asia/Colombo has no DST so a fixed offset is safe.
var Timezone = time.FixedZone("Asia/Colombo", int((5*time.Hour + 30*time.Minute).Seconds()))

// ParseMinuteOfDay converts "HH:MM" to minutes since midnight. Trailing
// text and out-of-range components are rejected.
func ParseMinuteOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinuteOfDay renders minutes since midnight as "HH:MM".
func FormatMinuteOfDay(m int) string {
	m = ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// AtMinute returns the instant on the given day corresponding to a
// minute-of-day in the local timezone.
func AtMinute(day time.Time, minute int) time.Time {
	d := day.In(Timezone)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, Timezone).
		Add(time.Duration(minute) * time.Minute)
}
