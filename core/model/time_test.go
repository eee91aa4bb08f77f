package model

import (
	"testing"
	"time"
)

func TestParseMinuteOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"05:30", 330},
		{"22:30", 1350},
		{"23:59", 1439},
	}
	for _, c := range cases {
		got, err := ParseMinuteOfDay(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parse %q: expected %d got %d", c.in, c.want, got)
		}
	}
}

func TestParseMinuteOfDayRejectsOutOfRange(t *testing.T) {
	for _, in := range []string{"24:00", "12:60", "-1:00", "noon", "23:59xyz", "12:5"} {
		if _, err := ParseMinuteOfDay(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatMinuteOfDay(t *testing.T) {
	if got := FormatMinuteOfDay(1350); got != "22:30" {
		t.Fatalf("expected 22:30 got %s", got)
	}
	if got := FormatMinuteOfDay(1440); got != "00:00" {
		t.Fatalf("expected wrap to 00:00 got %s", got)
	}
	if got := FormatMinuteOfDay(-30); got != "23:30" {
		t.Fatalf("expected negative wrap to 23:30 got %s", got)
	}
}

func TestAtMinute(t *testing.T) {
	day := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	got := AtMinute(day, 90)
	if got.Hour() != 1 || got.Minute() != 30 {
		t.Fatalf("expected 01:30 local got %s", got)
	}
	if got.Location() != Timezone {
		t.Fatalf("expected Colombo timezone got %s", got.Location())
	}
}
