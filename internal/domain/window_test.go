package domain

import (
	"testing"
	"time"
)

// spanEvents builds a sparse dataset covering the given range so window
// enumeration has a span to work with.
func spanEvents(from, to time.Time) []Event {
	return []Event{
		{ID: "first", Text: "earliest post", Timestamp: from},
		{ID: "last", Text: "latest post", Timestamp: to},
	}
}

func TestEnumerateWindowsOrdering(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	loc := zone.Location()
	catalog := NewCatalog(zone)

	// Wednesday afternoon; dataset spans six months
	now := time.Date(2025, time.August, 20, 15, 0, 0, 0, loc)
	events := spanEvents(
		time.Date(2025, time.February, 20, 9, 0, 0, 0, loc),
		now.Add(-time.Hour),
	)

	windows := catalog.EnumerateWindows(events, now)

	// 13 per anchor, none dropped: both current windows started before now
	if len(windows) != 26 {
		t.Fatalf("expected 26 windows, got %d", len(windows))
	}

	seen := make(map[string]bool)
	for i, w := range windows {
		if i > 0 && !windows[i-1].Start.After(w.Start) {
			t.Errorf("windows not strictly descending at index %d", i)
		}
		key := w.Start.String() + "/" + w.End.String()
		if seen[key] {
			t.Errorf("duplicate window %s", key)
		}
		seen[key] = true
	}

	// exactly one ongoing window has the earliest end, and it is the default
	ongoing := 0
	var earliest Window
	for _, w := range windows {
		if !w.IsOngoing(now) {
			continue
		}
		if ongoing == 0 || w.End.Before(earliest.End) {
			earliest = w
		}
		ongoing++
	}
	if ongoing == 0 {
		t.Fatal("expected at least one ongoing window")
	}

	def, ok := PickDefault(windows, now)
	if !ok {
		t.Fatal("expected a default window")
	}
	if !def.Start.Equal(earliest.Start) || !def.End.Equal(earliest.End) {
		t.Errorf("default %s does not match earliest-ending ongoing %s", def.Label, earliest.Label)
	}

	// the Friday window opening Aug 15 ends Aug 22, before the Monday
	// window's Aug 25 end, so it wins
	wantStart := zone.Noon(2025, time.August, 15)
	if !def.Start.Equal(wantStart) {
		t.Errorf("expected default starting %s, got %s", wantStart, def.Start)
	}
	if def.Anchor != time.Friday {
		t.Errorf("expected Friday anchor, got %s", def.Anchor)
	}
}

func TestEnumerateWindowsAnchorNoonShift(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	loc := zone.Location()
	catalog := NewCatalog(zone)

	events := spanEvents(
		time.Date(2025, time.June, 1, 9, 0, 0, 0, loc),
		time.Date(2025, time.August, 15, 9, 0, 0, 0, loc),
	)

	firstFridayStart := func(now time.Time) time.Time {
		windows := catalog.EnumerateWindows(events, now)
		for _, w := range windows {
			if w.Anchor == time.Friday {
				return w.Start
			}
		}
		t.Fatal("no friday-anchored window found")
		return time.Time{}
	}

	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
	}{
		{
			// before noon on the anchor weekday: today's window has not
			// started, the newest visible one opened last week
			"friday_before_noon",
			time.Date(2025, time.August, 15, 11, 59, 0, 0, loc),
			zone.Noon(2025, time.August, 8),
		},
		{
			// exactly at noon the previous window has closed and the new
			// one opens: start is inclusive
			"friday_at_noon",
			time.Date(2025, time.August, 15, 12, 0, 0, 0, loc),
			zone.Noon(2025, time.August, 15),
		},
		{
			"friday_after_noon",
			time.Date(2025, time.August, 15, 18, 0, 0, 0, loc),
			zone.Noon(2025, time.August, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := firstFridayStart(tt.now)
			if !got.Equal(tt.wantStart) {
				t.Errorf("expected newest friday window to start %s, got %s", tt.wantStart, got)
			}
		})
	}
}

func TestEnumerateWindowsEmptyDataset(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	catalog := NewCatalog(zone)

	now := time.Date(2025, time.August, 20, 15, 0, 0, 0, zone.Location())

	if windows := catalog.EnumerateWindows(nil, now); windows != nil {
		t.Errorf("expected no windows for empty dataset, got %d", len(windows))
	}

	zeroOnly := []Event{{ID: "bad", Timestamp: time.Time{}}}
	if windows := catalog.EnumerateWindows(zeroOnly, now); windows != nil {
		t.Errorf("expected no windows for all-invalid dataset, got %d", len(windows))
	}
}

func TestWindowShapeEightDates(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	catalog := NewCatalog(zone)

	now := time.Date(2025, time.August, 20, 15, 0, 0, 0, zone.Location())
	events := spanEvents(
		time.Date(2025, time.July, 1, 9, 0, 0, 0, zone.Location()),
		now.Add(-time.Hour),
	)

	for _, w := range catalog.EnumerateWindows(events, now) {
		if days := w.Days(zone); days != 8 {
			t.Errorf("window %s covers %d dates, expected 8", w.Label, days)
		}
		startClock := zone.Components(w.Start)
		endClock := zone.Components(w.End)
		if startClock.Hour != 12 || endClock.Hour != 12 {
			t.Errorf("window %s is not noon-to-noon", w.Label)
		}
		if startClock.Weekday != w.Anchor || endClock.Weekday != w.Anchor {
			t.Errorf("window %s does not open and close on its anchor weekday", w.Label)
		}
	}
}

func TestPickDefault(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	now := zone.Noon(2025, time.August, 20)

	mk := func(startDay, endDay int) Window {
		return Window{
			Start: zone.Noon(2025, time.August, startDay),
			End:   zone.Noon(2025, time.August, endDay),
		}
	}

	t.Run("earliest_ending_ongoing_wins", func(t *testing.T) {
		windows := []Window{mk(18, 25), mk(15, 22), mk(8, 15)}
		def, ok := PickDefault(windows, now)
		if !ok {
			t.Fatal("expected a default")
		}
		if !def.End.Equal(zone.Noon(2025, time.August, 22)) {
			t.Errorf("expected the window ending Aug 22, got %s", def.End)
		}
	})

	t.Run("none_ongoing_falls_back_to_most_recent", func(t *testing.T) {
		windows := []Window{mk(8, 15), mk(1, 8)}
		def, ok := PickDefault(windows, now)
		if !ok {
			t.Fatal("expected a default")
		}
		if !def.Start.Equal(zone.Noon(2025, time.August, 8)) {
			t.Errorf("expected the most recent window, got %s", def.Start)
		}
	})

	t.Run("end_exactly_now_is_not_ongoing", func(t *testing.T) {
		w := mk(13, 20) // ends exactly at now
		if w.IsOngoing(now) {
			t.Error("window ending exactly at now must not be ongoing")
		}
	})

	t.Run("empty_list", func(t *testing.T) {
		if _, ok := PickDefault(nil, now); ok {
			t.Error("expected no default for empty list")
		}
	})
}
