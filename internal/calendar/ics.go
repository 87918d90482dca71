// Package calendar exports scraped events as an iCalendar feed.
package calendar

import (
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
	"github.com/raphaelguye/srrc-calendar-scraper/internal/logger"
)

const (
	productID    = "-//SRRC Events//srrc-events//EN"
	uidDomain    = "srrc.ch"
	calendarName = "SRRC Events"
)

// Date-time layouts seen in the calendar's JSON-LD, most specific first
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const dateLayout = "2006-01-02"

// ParseDate parses a JSON-LD date or date-time. allDay is true for plain dates.
func ParseDate(s string) (t time.Time, allDay bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, true
		}
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, true
	}
	return time.Time{}, false, false
}

// UID returns a stable iCalendar UID for an event
func UID(evt *event.Event) string {
	if evt.EventID != "" {
		return fmt.Sprintf("srrc-%s@%s", evt.EventID, uidDomain)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(evt.Title+"|"+evt.StartText()))
	return fmt.Sprintf("%s@%s", id, uidDomain)
}

// Build creates a calendar with one VEVENT per event that has a parseable
// start date. It returns the number of events skipped.
func Build(events []*event.Event, now time.Time) (*ical.Calendar, int) {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName(calendarName)

	skipped := 0
	for _, evt := range events {
		start, allDay, ok := ParseDate(evt.StartText())
		if !ok {
			skipped++
			logger.Debug("Skipping event without start date", logger.Fields{
				"title":    evt.Title,
				"event_id": evt.EventID,
			})
			continue
		}

		end, endAllDay, ok := ParseDate(evt.EndText())
		if !ok || end.Before(start) {
			end, endAllDay = start, allDay
		}

		vevent := cal.AddEvent(UID(evt))
		vevent.SetDtStampTime(now)
		if allDay {
			vevent.SetAllDayStartAt(start)
			// DTEND of an all-day event is exclusive
			if endAllDay {
				vevent.SetAllDayEndAt(end.AddDate(0, 0, 1))
			} else {
				vevent.SetAllDayEndAt(time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, time.UTC))
			}
		} else {
			vevent.SetStartAt(start)
			if endAllDay {
				end = start
			}
			vevent.SetEndAt(end)
		}

		vevent.SetSummary(evt.Title)
		if evt.Location != "" {
			vevent.SetLocation(evt.Location)
		}
		if evt.URL != "" {
			vevent.SetURL(evt.URL)
		}
		if desc := description(evt); desc != "" {
			vevent.SetDescription(desc)
		}
		vevent.SetStatus(ical.ObjectStatusConfirmed)
	}

	return cal, skipped
}

func description(evt *event.Event) string {
	var parts []string
	if d := evt.DescriptionText(); d != "" {
		parts = append(parts, d)
	}
	if o := evt.OrganizerName(); o != "" {
		parts = append(parts, "Organizer: "+o)
	}
	return strings.Join(parts, "\n\n")
}

// WriteFile writes the calendar for events to path
func WriteFile(path string, events []*event.Event, now time.Time) (int, error) {
	cal, skipped := Build(events, now)
	if err := os.WriteFile(path, []byte(cal.Serialize()), 0644); err != nil {
		return skipped, fmt.Errorf("writing calendar to %s: %w", path, err)
	}
	return skipped, nil
}
