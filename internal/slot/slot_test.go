package slot

import (
	"errors"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		date string
		want DayCategory
	}{
		{"2026-09-02", CategoryWednesday}, // Wednesday
		{"2026-08-31", CategoryWeekday},   // Monday
		{"2026-09-01", CategoryWeekday},   // Tuesday
		{"2026-09-03", CategoryWeekday},   // Thursday
		{"2026-09-04", CategoryWeekday},   // Friday
		{"2026-09-05", CategoryWeekend},   // Saturday
		{"2026-09-06", CategoryWeekend},   // Sunday
	}
	for _, tt := range tests {
		if got := CategoryFor(date(tt.date)); got != tt.want {
			t.Errorf("CategoryFor(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	raw := RawSlot{
		Date:        "2026-09-02",
		StartMinute: 720,
		EndMinute:   780,
		CourtID:     "Court 3",
	}
	norm, err := Normalize(raw, date("2026-09-02"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if norm.Duration != 60 {
		t.Errorf("Duration = %d, want 60", norm.Duration)
	}
	if norm.Category != CategoryWednesday {
		t.Errorf("Category = %s, want %s", norm.Category, CategoryWednesday)
	}
	if norm.TimeRange() != "12:00-13:00" {
		t.Errorf("TimeRange = %s, want 12:00-13:00", norm.TimeRange())
	}
}

func TestNormalizeUsesTargetDateNotSlotDate(t *testing.T) {
	// The category must reflect the day being booked. A Saturday target
	// stays weekend even if the raw date string were to disagree.
	raw := RawSlot{Date: "2026-09-05", StartMinute: 600, EndMinute: 660, CourtID: "1"}
	norm, err := Normalize(raw, date("2026-09-05"))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if norm.Category != CategoryWeekend {
		t.Errorf("Category = %s, want %s", norm.Category, CategoryWeekend)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{
		{"end equals start", 600, 600},
		{"end before start", 600, 540},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawSlot{Date: "2026-09-02", StartMinute: tt.start, EndMinute: tt.end, CourtID: "2"}
			_, err := Normalize(raw, date("2026-09-02"))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Normalize(start=%d, end=%d) err = %v, want ErrMalformed", tt.start, tt.end, err)
			}
		})
	}
}

func TestMinutesToClock(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{480, "08:00"},
		{570, "09:30"},
		{1315, "21:55"},
		{1439, "23:59"},
	}
	for _, tt := range tests {
		if got := MinutesToClock(tt.minutes); got != tt.want {
			t.Errorf("MinutesToClock(%d) = %s, want %s", tt.minutes, got, tt.want)
		}
	}
}
