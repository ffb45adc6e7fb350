package domain

import (
	"math"
	"testing"
	"time"
)

func TestBuildAverageUniformHistory(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	w := testWindow(zone)
	now := zone.Noon(2025, time.August, 22)

	// 2 events/cell in the two most recent prior weeks, 1 in the older
	// two, all at Monday 9 AM of their own week: average 1.5
	var events []Event
	for week := 1; week <= 4; week++ {
		day := 18 - 7*week // the Monday of each shifted window
		n := 1
		if week <= 2 {
			n = 2
		}
		for i := 0; i < n; i++ {
			events = append(events, Event{
				ID:        "w",
				Timestamp: time.Date(2025, time.August, day, 9, 10*i, 0, 0, zone.Location()),
			})
		}
	}

	avg, err := BuildAverage(events, w, 4, now, zone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg == nil {
		t.Fatal("expected an average grid")
	}

	if got := avg.Cell(9, 3); got != 1.5 {
		t.Errorf("expected cell (9,3) == 1.5, got %v", got)
	}
	if avg.Total != 1.5 {
		t.Errorf("expected total 1.5, got %v", avg.Total)
	}
	if avg.WeeksAveraged != 4 {
		t.Errorf("expected 4 weeks averaged, got %d", avg.WeeksAveraged)
	}
}

func TestBuildAverageOneDecimalRounding(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	w := testWindow(zone)
	now := zone.Noon(2025, time.August, 22)

	// one event in a single historical week over 3 weeks back: 1/3 -> 0.3
	events := []Event{
		{ID: "solo", Timestamp: time.Date(2025, time.August, 4, 15, 0, 0, 0, zone.Location())},
	}

	avg, err := BuildAverage(events, w, 3, now, zone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg == nil {
		t.Fatal("expected an average grid")
	}

	if got := avg.Cell(15, 3); math.Abs(got-0.3) > 1e-9 {
		t.Errorf("expected cell (15,3) == 0.3, got %v", got)
	}
}

func TestBuildAverageColumnsMirrorCurrentWindow(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	w := testWindow(zone)
	now := zone.Noon(2025, time.August, 22)

	events := []Event{
		{ID: "x", Timestamp: time.Date(2025, time.August, 11, 15, 0, 0, 0, zone.Location())},
	}

	avg, err := BuildAverage(events, w, 4, now, zone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg == nil {
		t.Fatal("expected an average grid")
	}

	grid, err := BuildGrid(events, w, now, zone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, label := range avg.Columns {
		if label != grid.Columns[i] {
			t.Errorf("column %d: average shows %q, current window shows %q", i, label, grid.Columns[i])
		}
	}
}

func TestBuildAverageNoDataSentinel(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	w := testWindow(zone)
	now := zone.Noon(2025, time.August, 22)

	t.Run("empty_dataset", func(t *testing.T) {
		avg, err := BuildAverage(nil, w, 4, now, zone)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if avg != nil {
			t.Error("expected nil sentinel for empty dataset")
		}
	})

	t.Run("events_outside_history", func(t *testing.T) {
		// activity only inside the current window, none in prior weeks
		events := []Event{
			{ID: "now", Timestamp: time.Date(2025, time.August, 18, 9, 0, 0, 0, zone.Location())},
		}
		avg, err := BuildAverage(events, w, 4, now, zone)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if avg != nil {
			t.Error("expected nil sentinel when no event lands in a historical window")
		}
	})
}

func TestBuildAveragePreconditions(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)
	w := testWindow(zone)
	now := zone.Noon(2025, time.August, 22)

	if _, err := BuildAverage(nil, w, 0, now, zone); err == nil {
		t.Error("expected error for zero weeks back")
	}

	inverted := Window{Start: w.End, End: w.Start}
	if _, err := BuildAverage(nil, inverted, 4, now, zone); err == nil {
		t.Error("expected error for inverted window")
	}
}

func TestBuildAverageAcrossDSTHistory(t *testing.T) {
	zone := MustLoadZone(DefaultTimezone)

	// current window sits after the spring transition; two of the four
	// historical weeks cross it
	w := Window{
		Start:  zone.Noon(2025, time.March, 14),
		End:    zone.Noon(2025, time.March, 21),
		Anchor: time.Friday,
	}
	now := zone.Noon(2025, time.March, 21)

	// same wall-clock slot (Tuesday 9 AM) in each of the four prior weeks
	var events []Event
	for week := 1; week <= 4; week++ {
		d := time.Date(2025, time.March, 18, 9, 0, 0, 0, zone.Location()).AddDate(0, 0, -7*week)
		events = append(events, Event{ID: "h", Timestamp: d})
	}

	avg, err := BuildAverage(events, w, 4, now, zone)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if avg == nil {
		t.Fatal("expected an average grid")
	}

	// all four land in the same aligned cell regardless of the transition
	if got := avg.Cell(9, 4); got != 1.0 {
		t.Errorf("expected cell (9,4) == 1.0, got %v", got)
	}
}
