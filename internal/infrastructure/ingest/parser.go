// Package ingest normalizes raw post records from CSV or JSON payloads
// into domain events. it is deliberately forgiving: a record that cannot
// be interpreted is skipped and counted, never an error for the batch.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gridcast-io/gridcast/internal/domain"
)

// Parser converts raw wire records into domain events.
// timestamps without a year are resolved against "now" using
// reverse-chronological inference, so feeds exported newest-first keep
// their year across December/January boundaries.
type Parser struct {
	zone *domain.Zone
}

// NewParser creates a parser anchored to the given timezone.
func NewParser(zone *domain.Zone) *Parser {
	return &Parser{zone: zone}
}

// Result is the outcome of parsing one payload.
type Result struct {
	Events  []domain.Event
	Skipped int
}

var ErrEmptyPayload = errors.New("payload contains no records")

// record is the raw wire shape. Timestamp is left loosely typed because
// sources disagree: RFC3339 strings, epoch numbers, and bare month-day
// strings all occur in the wild.
type record struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp any    `json:"timestamp"`
}

// ParseJSON reads a JSON array of {id, text, timestamp} records.
func (p *Parser) ParseJSON(r io.Reader, now time.Time) (*Result, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding json payload: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyPayload
	}
	return p.normalize(records, now), nil
}

// ParseCSV reads a CSV payload with a header row. column names are matched
// case-insensitively; "created_at" and "date" are accepted for the
// timestamp column.
func (p *Parser) ParseCSV(r io.Reader, now time.Time) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are a data problem, not a batch failure

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	idCol, textCol, tsCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id":
			idCol = i
		case "text", "content":
			textCol = i
		case "timestamp", "created_at", "date":
			tsCol = i
		}
	}
	if tsCol == -1 {
		return nil, errors.New("csv payload has no timestamp column")
	}

	var records []record
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		rec := record{}
		if idCol >= 0 && idCol < len(row) {
			rec.ID = row[idCol]
		}
		if textCol >= 0 && textCol < len(row) {
			rec.Text = row[textCol]
		}
		if tsCol < len(row) {
			rec.Timestamp = row[tsCol]
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmptyPayload
	}
	return p.normalize(records, now), nil
}

// normalize converts raw records in payload order, which for the supported
// feeds is newest-first. records that fail timestamp parsing are skipped.
func (p *Parser) normalize(records []record, now time.Time) *Result {
	result := &Result{}
	tracker := newYearTracker(p.zone, now)

	for _, rec := range records {
		ts, ok := p.parseTimestamp(rec.Timestamp, tracker)
		if !ok {
			result.Skipped++
			continue
		}

		id := strings.TrimSpace(rec.ID)
		if id == "" {
			id = uuid.NewString()
		}

		result.Events = append(result.Events, domain.Event{
			ID:        id,
			Text:      rec.Text,
			Timestamp: ts,
		})
	}
	return result
}

// yearly layouts carry their own year and bypass inference.
var yearLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2, 2006 3:04 PM",
	"Jan 2, 2006",
}

// bare layouts need the year inferred from scan position.
var bareLayouts = []string{
	"Jan 2, 3:04 PM",
	"Jan 2 3:04 PM",
	"Jan 2",
}

func (p *Parser) parseTimestamp(raw any, tracker *yearTracker) (time.Time, bool) {
	switch v := raw.(type) {
	case float64:
		return epochToTime(v), true
	case string:
		return p.parseTimestampString(strings.TrimSpace(v), tracker)
	default:
		return time.Time{}, false
	}
}

func (p *Parser) parseTimestampString(s string, tracker *yearTracker) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	if epoch, err := strconv.ParseFloat(s, 64); err == nil {
		return epochToTime(epoch), true
	}

	loc := p.zone.Location()
	for _, layout := range yearLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range bareLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			year := tracker.resolve(t.Month())
			return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
		}
	}
	return time.Time{}, false
}

// epochToTime accepts unix seconds or milliseconds, disambiguated by
// magnitude.
func epochToTime(v float64) time.Time {
	if v > 1e12 {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

// yearTracker infers the year of month-day-only timestamps while scanning
// a newest-first feed. moving backwards in time, a month-index increase
// (Jan followed by Dec) means the scan crossed into the previous year; a
// decrease (Dec followed by Nov) stays within the year.
type yearTracker struct {
	year      int
	lastMonth time.Month
}

func newYearTracker(zone *domain.Zone, now time.Time) *yearTracker {
	clock := zone.Components(now)
	return &yearTracker{
		year:      clock.Year,
		lastMonth: clock.Month,
	}
}

func (y *yearTracker) resolve(month time.Month) int {
	if month > y.lastMonth {
		y.year--
	}
	y.lastMonth = month
	return y.year
}
