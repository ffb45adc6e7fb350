package domain

import (
	"fmt"
	"time"
)

// hoursPerDay is the number of hour rows in every grid.
const hoursPerDay = 24

// Grid is the 24×N bucket matrix for one reporting window.
// Cells[h][d] counts events whose local hour is h on the window's d-th
// calendar date. rebuilt fresh per selection, never mutated in place.
type Grid struct {
	Cells         [hoursPerDay][]int
	Columns       []string // weekday abbreviations per date column
	Totals        []int    // per-column sums, disabled cells excluded
	Total         int      // sum of all countable cells
	MaxValue      int
	PeakHour      string
	BusiestColumn string
	Window        Window
}

// IsDisabled reports whether a cell sits outside the true noon-to-noon
// span: the first date before noon, or the last date at or after noon.
// disabled cells always read zero and never enter totals.
func IsDisabled(hour, day, lastDay int) bool {
	if day == 0 && hour < 12 {
		return true
	}
	if day == lastDay && hour >= 12 {
		return true
	}
	return false
}

// IsCurrentHour reports whether the cell at (hour, day) is the one "now"
// falls in, for renderer highlighting.
func IsCurrentHour(hour, day int, now time.Time, w Window, zone *Zone) bool {
	clock := zone.Components(now)
	if clock.Hour != hour {
		return false
	}
	return zone.DaysBetween(w.Start, now) == day
}

// BuildGrid buckets events into the grid for one window.
// deterministic for a given (events, window); now is only consulted for the
// future-timestamp guard. malformed and far-future timestamps are skipped,
// never an error.
func BuildGrid(events []Event, w Window, now time.Time, zone *Zone) (*Grid, error) {
	if !w.End.After(w.Start) {
		return nil, ErrWindowInverted
	}

	days := w.Days(zone)
	lastDay := days - 1
	g := newGrid(w, days, zone)

	startClock := zone.Components(w.Start)
	endClock := zone.Components(w.End)

	for _, e := range events {
		if !e.isCountable(now) {
			continue
		}

		clock := zone.Components(e.Timestamp)

		// noon-boundary filtering on the first and last date
		if clock.SameDate(startClock) && clock.Hour < 12 {
			continue
		}
		if clock.SameDate(endClock) && clock.Hour >= 12 {
			continue
		}

		// calendar-day offset, never elapsed-ms division: across a DST
		// transition a local day is 23 or 25 real hours long.
		d := zone.DaysBetween(w.Start, e.Timestamp)
		if d < 0 || d > lastDay {
			continue
		}

		g.Cells[clock.Hour][d]++
	}

	g.finalize(lastDay)
	return g, nil
}

// newGrid allocates an empty grid with weekday column labels derived from
// the window's own calendar dates.
func newGrid(w Window, days int, zone *Zone) *Grid {
	g := &Grid{
		Columns: columnLabels(w, days, zone),
		Totals:  make([]int, days),
		Window:  w,
	}
	for h := range g.Cells {
		g.Cells[h] = make([]int, days)
	}
	return g
}

// finalize computes totals, peak cell, and busiest column from the cells.
func (g *Grid) finalize(lastDay int) {
	for h := 0; h < hoursPerDay; h++ {
		for d := 0; d <= lastDay; d++ {
			if IsDisabled(h, d, lastDay) {
				g.Cells[h][d] = 0
				continue
			}
			v := g.Cells[h][d]
			g.Totals[d] += v
			g.Total += v
			if v > g.MaxValue {
				g.MaxValue = v
			}
		}
	}

	// first hour row containing the max
	for h := 0; h < hoursPerDay; h++ {
		if rowContains(g.Cells[h][:lastDay+1], g.MaxValue) {
			g.PeakHour = HourLabel(h)
			break
		}
	}

	busiest := 0
	for d := 1; d <= lastDay; d++ {
		if g.Totals[d] > g.Totals[busiest] {
			busiest = d
		}
	}
	g.BusiestColumn = g.Columns[busiest]
}

func rowContains(row []int, v int) bool {
	for _, cell := range row {
		if cell == v {
			return true
		}
	}
	return false
}

// columnLabels returns the weekday abbreviation for each date column.
func columnLabels(w Window, days int, zone *Zone) []string {
	labels := make([]string, days)
	loc := zone.Location()
	for d := 0; d < days; d++ {
		labels[d] = w.Start.In(loc).AddDate(0, 0, d).Format("Mon")
	}
	return labels
}

// HourLabel formats an hour row header in 12-hour clock style.
func HourLabel(hour int) string {
	switch {
	case hour == 0:
		return "12 AM"
	case hour < 12:
		return fmt.Sprintf("%d AM", hour)
	case hour == 12:
		return "12 PM"
	default:
		return fmt.Sprintf("%d PM", hour-12)
	}
}
