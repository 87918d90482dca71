package calendar

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
)

var now = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

func TestBuild(t *testing.T) {
	events := []*event.Event{
		{
			Title:       "Schweizer Meisterschaft",
			EventID:     "1234",
			URL:         "https://srrc.ch/events/sm/",
			Location:    "Volkshaus, Zürich",
			StartDate:   event.String("2025-03-15"),
			EndDate:     event.String("2025-03-16"),
			Description: event.String("Finals"),
			Organizer:   event.String("SRRC"),
		},
		{
			Title:     "Boogie Night",
			StartDate: event.String("2025-03-22T20:00:00+01:00"),
			EndDate:   event.String("2025-03-22T23:30:00+01:00"),
		},
		{
			Title: "No date",
		},
	}

	cal, skipped := Build(events, now)
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}

	ics := cal.Serialize()

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"PRODID:-//SRRC Events//srrc-events//EN",
		"METHOD:PUBLISH",
		"UID:srrc-1234@srrc.ch",
		"SUMMARY:Schweizer Meisterschaft",
		"20250315",
		"20250317", // exclusive end of the all-day range
		"URL:https://srrc.ch/events/sm/",
		"Organizer: SRRC",
		"SUMMARY:Boogie Night",
		"20250322T190000Z",
		"20250322T223000Z",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field) {
			t.Errorf("ICS missing %q:\n%s", field, ics)
		}
	}

	if strings.Contains(ics, "No date") {
		t.Error("event without start date should be skipped")
	}
	if n := strings.Count(ics, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("expected 2 VEVENTs, got %d", n)
	}
}

func TestUID(t *testing.T) {
	withID := &event.Event{EventID: "42", Title: "A"}
	if got := UID(withID); got != "srrc-42@srrc.ch" {
		t.Errorf("UID() = %q", got)
	}

	a := &event.Event{Title: "A", StartDate: event.String("2025-01-01")}
	b := &event.Event{Title: "A", StartDate: event.String("2025-01-01")}
	c := &event.Event{Title: "A", StartDate: event.String("2025-01-02")}
	if UID(a) != UID(b) {
		t.Error("UID should be stable for equal title and start")
	}
	if UID(a) == UID(c) {
		t.Error("UID should differ for different start dates")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in         string
		wantOK     bool
		wantAllDay bool
	}{
		{"2025-03-15", true, true},
		{"2025-03-15T20:00:00+01:00", true, false},
		{"2025-03-15T20:00:00", true, false},
		{"2025-03-15T20:00", true, false},
		{"", false, false},
		{"15. März", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, allDay, ok := ParseDate(tt.in)
			if ok != tt.wantOK || allDay != tt.wantAllDay {
				t.Errorf("ParseDate(%q) = allDay %v ok %v, want %v %v", tt.in, allDay, ok, tt.wantAllDay, tt.wantOK)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "srrc.ics")
	events := []*event.Event{{Title: "Hop", EventID: "1", StartDate: event.String("2025-05-01")}}

	skipped, err := WriteFile(path, events, now)
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "SUMMARY:Hop") {
		t.Errorf("calendar file missing event:\n%s", data)
	}
}
