package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/calendar"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone    SortOrder = ""
	SortByDate  SortOrder = "date"
	SortByTitle SortOrder = "title"
)

// ParseSortOrder validates a --sort value
func ParseSortOrder(s string) (SortOrder, error) {
	switch order := SortOrder(strings.ToLower(strings.TrimSpace(s))); order {
	case SortNone, SortByDate, SortByTitle:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'date' or 'title')", s)
	}
}

// sortEvents sorts events in place. SortNone keeps discovery order.
func sortEvents(events []*event.Event, order SortOrder) {
	switch order {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			ti, tj := strings.ToLower(events[i].Title), strings.ToLower(events[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate compares two events by their start date
// Returns true if event i should come before event j
func compareByDate(i, j *event.Event) bool {
	dateI, _, okI := calendar.ParseDate(i.StartText())
	dateJ, _, okJ := calendar.ParseDate(j.StartText())

	// If both dates are valid, compare them
	if okI && okJ {
		return dateI.Before(dateJ)
	}

	// If only one date is valid, put the valid one first
	if okI {
		return true
	}
	if okJ {
		return false
	}

	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}
