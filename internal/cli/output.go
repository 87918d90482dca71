package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/raphaelguye/srrc-calendar-scraper/internal/event"
)

const (
	descriptionLimit = 100
	ellipsis         = "..."
	ruleWidth        = 80
)

// FormatEvent renders one event as a multi-line block. Optional lines are
// left out when their field is empty or absent.
func FormatEvent(evt *event.Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📅 %s %s (%s)\n", evt.DateDisplay, evt.Month, evt.Weekday)

	title := evt.Title
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&b, "   %s", title)

	if evt.Location != "" {
		fmt.Fprintf(&b, "\n   📍 %s", evt.Location)
	}
	if organizer := evt.OrganizerName(); organizer != "" {
		fmt.Fprintf(&b, "\n   👥 %s", organizer)
	}
	if start := evt.StartText(); start != "" {
		end := evt.EndText()
		if end == "" {
			end = start
		}
		fmt.Fprintf(&b, "\n   🗓️  %s → %s", start, end)
	}
	if evt.URL != "" {
		fmt.Fprintf(&b, "\n   🔗 %s", evt.URL)
	}
	if desc := evt.DescriptionText(); desc != "" {
		fmt.Fprintf(&b, "\n   ℹ️  %s", Truncate(desc, descriptionLimit))
	}

	return b.String()
}

// Truncate shortens s to at most limit characters, replacing the tail with an
// ellipsis when it is cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	keep := limit - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + ellipsis
}

// WriteSummary writes the event counts and the listing header
func WriteSummary(w io.Writer, total, unique int) {
	fmt.Fprintf(w, "\n📊 Total events found: %d\n", total)
	fmt.Fprintf(w, "📊 Unique events: %d\n", unique)
	fmt.Fprintln(w)
	writeBanner(w, "EVENTS LIST")
}

// WriteListing writes every event block followed by a blank line
func WriteListing(w io.Writer, events []*event.Event) {
	for _, evt := range events {
		fmt.Fprintln(w, FormatEvent(evt))
		fmt.Fprintln(w)
	}
}

func writeRule(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
}

func writeBanner(w io.Writer, title string) {
	writeRule(w)
	fmt.Fprintln(w, title)
	writeRule(w)
	fmt.Fprintln(w)
}
