package domain

import (
	"fmt"
	"time"
)

// DefaultTimezone is the anchor timezone for all bucketing.
// reporting windows are defined in eastern wall-clock time regardless of
// where the events originated.
const DefaultTimezone = "America/New_York"

// Clock is the wall-clock breakdown of an instant in a fixed timezone.
// immutable value, safe to cache by the originating instant.
type Clock struct {
	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday time.Weekday
}

// Date returns just the calendar-date part of the clock.
func (c Clock) Date() (int, time.Month, int) {
	return c.Year, c.Month, c.Day
}

// SameDate returns true if both clocks fall on the same calendar date.
func (c Clock) SameDate(other Clock) bool {
	return c.Year == other.Year && c.Month == other.Month && c.Day == other.Day
}

// ClockCache abstracts memoization of instant-to-clock conversions.
// purely a performance layer: a miss must recompute the identical value a
// hit would have returned. implementations are keyed by UnixMilli.
type ClockCache interface {
	Get(key int64) (Clock, bool)
	Set(key int64, value Clock)
	Len() int
}

// Zone converts between absolute instants and wall-clock components in a
// fixed named timezone, using tzdata rules so daylight saving is honored.
type Zone struct {
	name  string
	loc   *time.Location
	cache ClockCache // optional
}

// LoadZone loads a timezone by IANA name.
// an unknown name is a configuration error, not a runtime condition.
func LoadZone(name string) (*Zone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return &Zone{name: name, loc: loc}, nil
}

// MustLoadZone loads a timezone or panics.
// use only with literal names in tests and defaults.
func MustLoadZone(name string) *Zone {
	z, err := LoadZone(name)
	if err != nil {
		panic(err)
	}
	return z
}

// WithCache attaches a clock cache to the zone.
func (z *Zone) WithCache(c ClockCache) *Zone {
	z.cache = c
	return z
}

// Name returns the IANA name the zone was loaded from.
func (z *Zone) Name() string {
	return z.name
}

// Location returns the underlying time.Location.
func (z *Zone) Location() *time.Location {
	return z.loc
}

// Components returns the wall-clock breakdown of an instant in this zone.
func (z *Zone) Components(t time.Time) Clock {
	key := t.UnixMilli()
	if z.cache != nil {
		if c, ok := z.cache.Get(key); ok {
			return c
		}
	}

	local := t.In(z.loc)
	c := Clock{
		Year:    local.Year(),
		Month:   local.Month(),
		Day:     local.Day(),
		Hour:    local.Hour(),
		Minute:  local.Minute(),
		Second:  local.Second(),
		Weekday: local.Weekday(),
	}

	if z.cache != nil {
		z.cache.Set(key, c)
	}
	return c
}

// Noon returns the absolute instant of 12:00:00 local time on the given
// calendar date. the offset is selected for that specific date, so noon is
// stable across DST transitions (the US transitions happen at 2 AM local).
func (z *Zone) Noon(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, z.loc)
}

// Midnight returns the absolute instant of 00:00:00 local time on the given
// calendar date.
func (z *Zone) Midnight(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, z.loc)
}

// DaysBetween returns the number of calendar days from date a to date b in
// this zone. computed on a DST-free axis: both local dates are re-anchored
// at UTC midnight before dividing, so a 23- or 25-hour local day never
// shifts the bucket.
func (z *Zone) DaysBetween(a, b time.Time) int {
	ca := z.Components(a)
	cb := z.Components(b)
	ua := time.Date(ca.Year, ca.Month, ca.Day, 0, 0, 0, 0, time.UTC)
	ub := time.Date(cb.Year, cb.Month, cb.Day, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
