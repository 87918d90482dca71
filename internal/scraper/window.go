package scraper

import (
	"strings"
	"time"
)

// WindowLayout is the date format of a window start
const WindowLayout = "2006-01-02"

// Windows returns the first day of each of the next months calendar months,
// starting with the month containing now.
func Windows(now time.Time, months int) []string {
	if months <= 0 {
		return nil
	}

	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	windows := make([]string, 0, months)
	for i := 0; i < months; i++ {
		windows = append(windows, first.AddDate(0, i, 0).Format(WindowLayout))
	}
	return windows
}

// MonthDivider returns the year-month token of a window start ("2025-01-01" -> "202501")
func MonthDivider(start string) string {
	if len(start) > 7 {
		start = start[:7]
	}
	return strings.ReplaceAll(start, "-", "")
}
