package domain

import (
	"errors"
	"sort"
	"time"
)

// Window is one noon-to-noon reporting range covering eight calendar dates.
// Start and End are the local-noon instants of the first and last date.
// because of DST the elapsed span may be 167 or 169 hours instead of 168.
type Window struct {
	Start  time.Time
	End    time.Time
	Anchor time.Weekday
	Label  string
}

// IsOngoing reports whether the window has not yet ended.
// Start is inclusive, End is exclusive: a window that ends exactly at now
// is no longer ongoing.
func (w Window) IsOngoing(now time.Time) bool {
	return w.End.After(now)
}

// HasStarted reports whether the window's opening noon has passed.
func (w Window) HasStarted(now time.Time) bool {
	return !w.Start.After(now)
}

// TotalHours returns the elapsed-hour span of the window, computed from the
// actual noon instants so DST-affected weeks come out as 167 or 169.
func (w Window) TotalHours() float64 {
	return w.End.Sub(w.Start).Hours()
}

// Days returns the number of calendar dates the window covers.
func (w Window) Days(zone *Zone) int {
	return zone.DaysBetween(w.Start, w.End) + 1
}

var ErrWindowInverted = errors.New("window end must be after start")

// default anchor weekdays for the two weekly reporting patterns.
const (
	AnchorA = time.Friday
	AnchorB = time.Monday
)

// backWindows is how many additional 7-day windows are enumerated behind
// the current one for each anchor pattern.
const backWindows = 12

// Catalog enumerates candidate reporting windows for a dataset.
type Catalog struct {
	zone    *Zone
	anchors [2]time.Weekday
	days    int // calendar dates per window
}

// NewCatalog creates a window catalog with the default anchors and an
// eight-date window shape.
func NewCatalog(zone *Zone) *Catalog {
	return &Catalog{
		zone:    zone,
		anchors: [2]time.Weekday{AnchorA, AnchorB},
		days:    8,
	}
}

// WithAnchors overrides the two anchor weekdays.
func (c *Catalog) WithAnchors(a, b time.Weekday) *Catalog {
	c.anchors = [2]time.Weekday{a, b}
	return c
}

// WithDays overrides the number of calendar dates per window.
// fewer than two dates is a precondition violation.
func (c *Catalog) WithDays(days int) *Catalog {
	if days < 2 {
		panic("window must cover at least two calendar dates")
	}
	c.days = days
	return c
}

// EnumerateWindows returns every candidate window for the dataset, most
// recent first. historical windows are enumerated unconditionally: an empty
// window is still a valid selection. windows that have not started yet are
// dropped. an empty dataset yields no windows.
func (c *Catalog) EnumerateWindows(events []Event, now time.Time) []Window {
	if _, _, ok := EventSpan(events); !ok {
		return nil
	}

	var windows []Window
	seen := make(map[int64]bool)

	for _, anchor := range c.anchors {
		anchorDate := c.currentAnchorDate(anchor, now)

		// current-or-upcoming window plus the backward series
		for week := 0; week <= backWindows; week++ {
			w := c.windowAt(anchorDate.AddDate(0, 0, -7*week), anchor)
			if w.Start.After(now) {
				continue // not yet started
			}
			if seen[w.Start.UnixMilli()] {
				continue
			}
			seen[w.Start.UnixMilli()] = true
			windows = append(windows, w)
		}
	}

	sortWindowsDesc(windows)
	return windows
}

// PickDefault selects the window a fresh load should show: the ongoing one
// closest to its end, or failing that the most recent window. ok is false
// only for an empty list.
func PickDefault(windows []Window, now time.Time) (Window, bool) {
	if len(windows) == 0 {
		return Window{}, false
	}

	var best Window
	found := false
	for _, w := range windows {
		if !w.IsOngoing(now) {
			continue
		}
		if !found || w.End.Before(best.End) {
			best = w
			found = true
		}
	}
	if found {
		return best, true
	}
	return windows[0], true
}

// currentAnchorDate finds the calendar date whose noon opens the current
// window for the given anchor weekday. when now is on the anchor weekday at
// or past local noon, the previous window has just closed, so the series
// advances a week (the resulting future start is filtered by the caller).
func (c *Catalog) currentAnchorDate(anchor time.Weekday, now time.Time) time.Time {
	clock := c.zone.Components(now)
	date := c.zone.Midnight(clock.Year, clock.Month, clock.Day)

	daysBack := (int(clock.Weekday) - int(anchor) + 7) % 7
	date = date.AddDate(0, 0, -daysBack)

	if daysBack == 0 && clock.Hour >= 12 {
		date = date.AddDate(0, 0, 7)
	}
	return date
}

// windowAt builds the window opening at noon of the given calendar date.
// the end is reached by calendar-date stepping, not by adding elapsed
// hours, so DST weeks keep their shape.
func (c *Catalog) windowAt(anchorDate time.Time, anchor time.Weekday) Window {
	start := c.zone.Noon(anchorDate.Year(), anchorDate.Month(), anchorDate.Day())

	endDate := anchorDate.AddDate(0, 0, c.days-1)
	end := c.zone.Noon(endDate.Year(), endDate.Month(), endDate.Day())

	return Window{
		Start:  start,
		End:    end,
		Anchor: anchor,
		Label:  windowLabel(start, end, c.zone),
	}
}

// windowLabel formats a human-readable range like "Fri Aug 22 - Fri Aug 29".
func windowLabel(start, end time.Time, zone *Zone) string {
	loc := zone.Location()
	return start.In(loc).Format("Mon Jan 2") + " - " + end.In(loc).Format("Mon Jan 2")
}

// sortWindowsDesc orders windows by start descending, most recent first.
func sortWindowsDesc(windows []Window) {
	sort.Slice(windows, func(i, j int) bool {
		return windows[i].Start.After(windows[j].Start)
	})
}
