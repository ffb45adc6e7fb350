package domain

import "time"

// Event is a single timestamped post record.
// immutable after creation; the core never mutates the raw dataset.
type Event struct {
	ID        string
	Text      string
	Timestamp time.Time
}

// futureSlack is how far ahead of "now" an event timestamp may sit before
// it is treated as a data-quality anomaly and skipped. tolerates clock skew
// between clients and the source across timezones.
const futureSlack = 24 * time.Hour

// isCountable reports whether the event timestamp is usable for bucketing.
// zero timestamps come from unparseable source records and are skipped.
func (e Event) isCountable(now time.Time) bool {
	if e.Timestamp.IsZero() {
		return false
	}
	return !e.Timestamp.After(now.Add(futureSlack))
}

// EventSpan returns the [min, max] timestamp range of the dataset.
// ok is false for an empty or all-invalid dataset.
func EventSpan(events []Event) (min, max time.Time, ok bool) {
	for _, e := range events {
		if e.Timestamp.IsZero() {
			continue
		}
		if !ok {
			min, max = e.Timestamp, e.Timestamp
			ok = true
			continue
		}
		if e.Timestamp.Before(min) {
			min = e.Timestamp
		}
		if e.Timestamp.After(max) {
			max = e.Timestamp
		}
	}
	return min, max, ok
}
