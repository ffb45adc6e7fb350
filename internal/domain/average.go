package domain

import (
	"errors"
	"math"
	"time"
)

// DefaultWeeksBack is how many prior same-anchor windows feed the
// historical average.
const DefaultWeeksBack = 4

var ErrWeeksBackInvalid = errors.New("weeks back must be positive")

// AverageGrid is the historical-average counterpart of Grid: each cell is
// the mean count over the averaged windows, kept to one decimal.
type AverageGrid struct {
	Cells         [hoursPerDay][]float64
	Columns       []string
	Totals        []float64
	Total         float64
	MaxValue      float64
	PeakHour      string
	BusiestColumn string
	Window        Window // the current window the average is aligned to
	WeeksAveraged int
}

// BuildAverage replays grid bucketing over the weeksBack most recent prior
// windows of the same shape and averages them. column labels mirror the
// current window, since the point is pattern alignment, not historical
// dates. returns nil when no event landed in any historical window, so
// callers can tell "no data" from "legitimately zero activity".
func BuildAverage(events []Event, w Window, weeksBack int, now time.Time, zone *Zone) (*AverageGrid, error) {
	if weeksBack < 1 {
		return nil, ErrWeeksBackInvalid
	}
	if !w.End.After(w.Start) {
		return nil, ErrWindowInverted
	}

	days := w.Days(zone)
	lastDay := days - 1

	var sum [hoursPerDay][]int
	for h := range sum {
		sum[h] = make([]int, days)
	}
	accumulated := 0

	for week := 1; week <= weeksBack; week++ {
		shifted, err := shiftWindow(w, -7*week, zone)
		if err != nil {
			return nil, err
		}

		grid, err := BuildGrid(events, shifted, now, zone)
		if err != nil {
			return nil, err
		}

		for h := 0; h < hoursPerDay; h++ {
			for d := 0; d <= lastDay && d < len(grid.Cells[h]); d++ {
				sum[h][d] += grid.Cells[h][d]
			}
		}
		accumulated += grid.Total
	}

	if accumulated == 0 {
		return nil, nil // no historical data to average
	}

	avg := &AverageGrid{
		Columns:       columnLabels(w, days, zone),
		Totals:        make([]float64, days),
		Window:        w,
		WeeksAveraged: weeksBack,
	}
	n := float64(weeksBack)
	for h := range avg.Cells {
		avg.Cells[h] = make([]float64, days)
		for d := 0; d <= lastDay; d++ {
			avg.Cells[h][d] = roundTenth(float64(sum[h][d]) / n)
		}
	}

	avg.finalize(lastDay)
	return avg, nil
}

// shiftWindow moves a window a number of calendar days while keeping its
// noon-anchored shape. stepping by calendar dates keeps historical weeks
// aligned across DST transitions.
func shiftWindow(w Window, byDays int, zone *Zone) (Window, error) {
	startClock := zone.Components(w.Start)
	endClock := zone.Components(w.End)

	startDate := zone.Midnight(startClock.Year, startClock.Month, startClock.Day).AddDate(0, 0, byDays)
	endDate := zone.Midnight(endClock.Year, endClock.Month, endClock.Day).AddDate(0, 0, byDays)

	shifted := Window{
		Start:  zone.Noon(startDate.Year(), startDate.Month(), startDate.Day()),
		End:    zone.Noon(endDate.Year(), endDate.Month(), endDate.Day()),
		Anchor: w.Anchor,
	}
	shifted.Label = windowLabel(shifted.Start, shifted.End, zone)

	if !shifted.End.After(shifted.Start) {
		return Window{}, ErrWindowInverted
	}
	return shifted, nil
}

// finalize computes totals, peak cell, and busiest column, identically to
// Grid but over averaged values.
func (g *AverageGrid) finalize(lastDay int) {
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

peak:
	for h := 0; h < hoursPerDay; h++ {
		for d := 0; d <= lastDay; d++ {
			if g.Cells[h][d] == g.MaxValue {
				g.PeakHour = HourLabel(h)
				break peak
			}
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

// Cell returns the averaged value at (hour, day), zero when out of range.
// forecast code probes cells defensively for hours near window edges.
func (g *AverageGrid) Cell(hour, day int) float64 {
	if g == nil || hour < 0 || hour >= hoursPerDay {
		return 0
	}
	if day < 0 || day >= len(g.Cells[hour]) {
		return 0
	}
	return g.Cells[hour][day]
}

// roundTenth rounds to one decimal place.
func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
