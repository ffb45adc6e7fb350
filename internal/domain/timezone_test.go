package domain

import (
	"testing"
	"time"
)

func TestNoonRoundTrip(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)

	// every date across two full years, spanning both DST regimes twice
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	for date.Before(end) {
		noon := zone.Noon(date.Year(), date.Month(), date.Day())
		clock := zone.Components(noon)

		if clock.Hour != 12 || clock.Minute != 0 {
			t.Fatalf("noon on %s came back as %02d:%02d", date.Format("2006-01-02"), clock.Hour, clock.Minute)
		}
		date = date.AddDate(0, 0, 1)
	}
}

func TestNoonOnTransitionDates(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)

	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
	}{
		{"spring_forward_2025", 2025, time.March, 9},
		{"fall_back_2025", 2025, time.November, 2},
		{"spring_forward_2024", 2024, time.March, 10},
		{"fall_back_2024", 2024, time.November, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noon := zone.Noon(tt.year, tt.month, tt.day)
			clock := zone.Components(noon)
			if clock.Hour != 12 {
				t.Errorf("expected hour 12, got %d", clock.Hour)
			}
			if clock.Year != tt.year || clock.Month != tt.month || clock.Day != tt.day {
				t.Errorf("noon landed on %d-%02d-%02d", clock.Year, clock.Month, clock.Day)
			}
		})
	}
}

func TestComponentsKnownInstant(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)

	// 2025-08-29 16:30:45 UTC is 12:30:45 EDT on a Friday
	instant := time.Date(2025, time.August, 29, 16, 30, 45, 0, time.UTC)
	clock := zone.Components(instant)

	if clock.Year != 2025 || clock.Month != time.August || clock.Day != 29 {
		t.Errorf("wrong date: %d-%02d-%02d", clock.Year, clock.Month, clock.Day)
	}
	if clock.Hour != 12 || clock.Minute != 30 || clock.Second != 45 {
		t.Errorf("wrong time: %02d:%02d:%02d", clock.Hour, clock.Minute, clock.Second)
	}
	if clock.Weekday != time.Friday {
		t.Errorf("expected Friday, got %s", clock.Weekday)
	}
}

func TestDaysBetweenAcrossDST(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	loc := zone.Location()

	tests := []struct {
		name     string
		a, b     time.Time
		expected int
	}{
		{
			"same_date",
			time.Date(2025, time.August, 15, 12, 0, 0, 0, loc),
			time.Date(2025, time.August, 15, 23, 0, 0, 0, loc),
			0,
		},
		{
			"plain_week",
			time.Date(2025, time.August, 15, 12, 0, 0, 0, loc),
			time.Date(2025, time.August, 22, 12, 0, 0, 0, loc),
			7,
		},
		{
			// March 9 is only 23 real hours long, the calendar still moves 3 days
			"across_spring_forward",
			time.Date(2025, time.March, 7, 12, 0, 0, 0, loc),
			time.Date(2025, time.March, 10, 1, 0, 0, 0, loc),
			3,
		},
		{
			// November 2 is 25 real hours long
			"across_fall_back",
			time.Date(2025, time.October, 31, 12, 0, 0, 0, loc),
			time.Date(2025, time.November, 3, 1, 0, 0, 0, loc),
			3,
		},
		{
			"backwards",
			time.Date(2025, time.August, 15, 12, 0, 0, 0, loc),
			time.Date(2025, time.August, 13, 12, 0, 0, 0, loc),
			-2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := zone.DaysBetween(tt.a, tt.b); got != tt.expected {
				t.Errorf("expected %d days, got %d", tt.expected, got)
			}
		})
	}
}

func TestDSTWindowSpanHours(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)

	tests := []struct {
		name          string
		startY        int
		startM        time.Month
		startD        int
		expectedHours float64
	}{
		{"spring_forward_week", 2025, time.March, 7, 167},
		{"fall_back_week", 2025, time.October, 31, 169},
		{"plain_week", 2025, time.August, 15, 168},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := zone.Noon(tt.startY, tt.startM, tt.startD)
			endDate := time.Date(tt.startY, tt.startM, tt.startD, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7)
			end := zone.Noon(endDate.Year(), endDate.Month(), endDate.Day())

			w := Window{Start: start, End: end}
			if got := w.TotalHours(); got != tt.expectedHours {
				t.Errorf("expected %.0f hours, got %.1f", tt.expectedHours, got)
			}
		})
	}
}

func TestZoneWithCacheIsConsistent(t *testing.T) {
	plain := MustLoadZone(DefaultTimezone)
	cached := MustLoadZone(DefaultTimezone).WithCache(NewClockLRU(4))

	instants := []time.Time{
		time.Date(2025, time.March, 9, 6, 30, 0, 0, time.UTC),
		time.Date(2025, time.August, 29, 16, 0, 0, 0, time.UTC),
		time.Date(2025, time.November, 2, 5, 59, 0, 0, time.UTC),
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, time.July, 4, 12, 0, 0, 0, time.UTC),
		time.Date(2022, time.December, 25, 23, 0, 0, 0, time.UTC),
	}

	// walk through twice: second pass mixes cache hits with entries that
	// eviction has already pushed out
	for pass := 0; pass < 2; pass++ {
		for _, instant := range instants {
			want := plain.Components(instant)
			got := cached.Components(instant)
			if got != want {
				t.Fatalf("pass %d: cached components %+v differ from %+v", pass, got, want)
			}
		}
	}
}

func TestLoadZoneUnknownName(t *testing.T) {
	if _, err := LoadZone("Not/AZone"); err == nil {
		t.Error("expected error for unknown timezone name")
	}
}
