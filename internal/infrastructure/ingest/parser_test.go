package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/gridcast-io/gridcast/internal/domain"
)

func testParser() (*Parser, *domain.Zone) {
	zone := domain.MustLoadZone(domain.DefaultTimezone)
	return NewParser(zone), zone
}

func TestParseJSONBasic(t *testing.T) {
	parser, _ := testParser()
	now := time.Date(2025, time.August, 29, 12, 0, 0, 0, time.UTC)

	payload := `[
		{"id": "1", "text": "hello", "timestamp": "2025-08-28T09:15:00Z"},
		{"id": "2", "text": "epoch seconds", "timestamp": 1756300000},
		{"id": "3", "text": "epoch millis", "timestamp": 1756300000000},
		{"id": "4", "text": "broken", "timestamp": "not a date"},
		{"text": "no id", "timestamp": "2025-08-27 14:30:00"}
	]`

	result, err := parser.ParseJSON(strings.NewReader(payload), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(result.Events))
	}
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped record, got %d", result.Skipped)
	}

	if !result.Events[0].Timestamp.Equal(time.Date(2025, time.August, 28, 9, 15, 0, 0, time.UTC)) {
		t.Errorf("unexpected rfc3339 timestamp %s", result.Events[0].Timestamp)
	}
	if !result.Events[1].Timestamp.Equal(result.Events[2].Timestamp) {
		t.Error("epoch seconds and millis of the same instant must agree")
	}
	if result.Events[3].ID == "" {
		t.Error("missing id must be generated, not empty")
	}
}

func TestParseCSVHeaderMapping(t *testing.T) {
	parser, zone := testParser()
	now := time.Date(2025, time.August, 29, 12, 0, 0, 0, time.UTC)

	payload := "ID,Content,Created_At\n" +
		"a,first post,2025-08-28 10:00:00\n" +
		"b,second post,2025-08-27T22:45:00Z\n" +
		"c,bad row,???\n"

	result, err := parser.ParseCSV(strings.NewReader(payload), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped row, got %d", result.Skipped)
	}
	if result.Events[0].Text != "first post" {
		t.Errorf("content column not mapped: %q", result.Events[0].Text)
	}

	// 10 AM wall clock in the anchor zone, not UTC
	clock := zone.Components(result.Events[0].Timestamp)
	if clock.Hour != 10 {
		t.Errorf("expected local hour 10, got %d", clock.Hour)
	}
}

func TestParseCSVMissingTimestampColumn(t *testing.T) {
	parser, _ := testParser()
	now := time.Now()

	payload := "id,text\n1,hello\n"
	if _, err := parser.ParseCSV(strings.NewReader(payload), now); err == nil {
		t.Error("expected error for payload without a timestamp column")
	}
}

func TestParseEmptyPayloads(t *testing.T) {
	parser, _ := testParser()
	now := time.Now()

	if _, err := parser.ParseJSON(strings.NewReader("[]"), now); err == nil {
		t.Error("expected error for empty json array")
	}
	if _, err := parser.ParseCSV(strings.NewReader("id,text,timestamp\n"), now); err == nil {
		t.Error("expected error for headers-only csv")
	}
}

func TestYearInferenceNewestFirst(t *testing.T) {
	parser, zone := testParser()
	loc := zone.Location()

	// scanning backwards from mid-January 2025: Jan stays 2025, the jump
	// to Dec crosses into 2024, Nov after Dec stays 2024
	now := time.Date(2025, time.January, 15, 12, 0, 0, 0, loc)

	payload := `[
		{"id": "1", "text": "newest", "timestamp": "Jan 14, 9:30 PM"},
		{"id": "2", "text": "early jan", "timestamp": "Jan 2, 8:00 AM"},
		{"id": "3", "text": "crossed year", "timestamp": "Dec 28, 11:15 PM"},
		{"id": "4", "text": "same year", "timestamp": "Nov 30, 7:45 AM"}
	]`

	result, err := parser.ParseJSON(strings.NewReader(payload), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(result.Events))
	}

	expectedYears := []int{2025, 2025, 2024, 2024}
	for i, want := range expectedYears {
		if got := result.Events[i].Timestamp.In(loc).Year(); got != want {
			t.Errorf("event %d: expected year %d, got %d", i, want, got)
		}
	}
}

func TestYearInferenceMonthDecreaseDoesNotDecrement(t *testing.T) {
	parser, zone := testParser()
	loc := zone.Location()
	now := time.Date(2025, time.December, 10, 12, 0, 0, 0, loc)

	// Dec then Nov while scanning backwards: same year both times
	payload := `[
		{"id": "1", "text": "a", "timestamp": "Dec 5, 1:00 PM"},
		{"id": "2", "text": "b", "timestamp": "Nov 20, 1:00 PM"}
	]`

	result, err := parser.ParseJSON(strings.NewReader(payload), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, e := range result.Events {
		if got := e.Timestamp.In(loc).Year(); got != 2025 {
			t.Errorf("event %d: expected year 2025, got %d", i, got)
		}
	}
}
