// Package filter narrows a list of scraped events down to the ones a reader
// cares about.
//
// Criteria:
//   - Date range (from/to, inclusive) on the structured start date
//   - Title keywords (substring, case-insensitive)
//   - Locations (substring, case-insensitive)
//   - Organizers (substring, case-insensitive)
//   - Weekends only (Saturday/Sunday)
//
// Criteria combine with AND; the values of one list criterion combine with OR.
//
// Example usage:
//
//	f := filter.NewFilter()
//	f.WeekendsOnly = true
//	f.Locations = []string{"Zürich"}
//
//	filtered := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/calendar"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
)

// Filter represents event filtering criteria
type Filter struct {
	DateFrom *time.Time
	DateTo   *time.Time

	Titles     []string
	Locations  []string
	Organizers []string

	WeekendsOnly bool
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all events until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Titles:     []string{},
		Locations:  []string{},
		Organizers: []string{},
	}
}

// IsEmpty checks if the filter has any active criteria
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Titles) == 0 &&
		len(f.Locations) == 0 &&
		len(f.Organizers) == 0 &&
		!f.WeekendsOnly
}

// Matches checks if an event matches all active filter criteria.
//
// Date based criteria only reject events with a parseable start date; events
// without one pass them.
func (f *Filter) Matches(evt *event.Event) bool {
	if f.IsEmpty() {
		return true
	}

	start, _, ok := calendar.ParseDate(evt.StartText())
	if ok {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		if f.DateFrom != nil && day.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && day.After(*f.DateTo) {
			return false
		}
		if f.WeekendsOnly && day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			return false
		}
	}

	return containsAny(evt.Title, f.Titles) &&
		containsAny(evt.Location, f.Locations) &&
		containsAny(evt.OrganizerName(), f.Organizers)
}

// containsAny reports whether s contains one of needles, ignoring case. An
// empty needle list matches everything.
func containsAny(s string, needles []string) bool {
	if len(needles) == 0 {
		return true
	}
	lower := strings.ToLower(s)
	for _, needle := range needles {
		if strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

// Apply returns the events matching the filter, keeping their order.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(events []*event.Event) []*event.Event {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.Event, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

// String returns a human-readable description of the active criteria.
// Format: "From: Mar 1, 2025 | To: Mar 15, 2025 | Locations: Zürich | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if len(f.Titles) > 0 {
		parts = append(parts, fmt.Sprintf("Titles: %s", strings.Join(f.Titles, ", ")))
	}
	if len(f.Locations) > 0 {
		parts = append(parts, fmt.Sprintf("Locations: %s", strings.Join(f.Locations, ", ")))
	}
	if len(f.Organizers) > 0 {
		parts = append(parts, fmt.Sprintf("Organizers: %s", strings.Join(f.Organizers, ", ")))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}

	return strings.Join(parts, " | ")
}

// Criteria is the textual form of a filter as given on the command line or in
// a query string.
type Criteria struct {
	Titles       []string
	Locations    []string
	Organizers   []string
	Dates        string
	WeekendsOnly bool
}

// Build turns c into a Filter. Dates is parsed with ParseDateRange relative
// to now; blank list entries are dropped.
func (c Criteria) Build(now time.Time) (*Filter, error) {
	f := NewFilter()
	f.Titles = nonBlank(c.Titles)
	f.Locations = nonBlank(c.Locations)
	f.Organizers = nonBlank(c.Organizers)
	f.WeekendsOnly = c.WeekendsOnly

	if strings.TrimSpace(c.Dates) != "" {
		from, to, err := ParseDateRange(c.Dates, now)
		if err != nil {
			return nil, err
		}
		f.DateFrom, f.DateTo = from, to
	}
	return f, nil
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
