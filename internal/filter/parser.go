package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// monthNames maps English and German month names and abbreviations
var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January, "januar": time.January,
	"feb": time.February, "february": time.February, "februar": time.February,
	"mar": time.March, "march": time.March, "mär": time.March, "märz": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May, "mai": time.May,
	"jun": time.June, "june": time.June, "juni": time.June,
	"jul": time.July, "july": time.July, "juli": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October, "okt": time.October, "oktober": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December, "dez": time.December, "dezember": time.December,
}

const monthPattern = `([a-zä]+)\.?`

var (
	sameMonthRange  = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*(\d{1,2})$`)
	crossMonthRange = regexp.MustCompile(`(?i)^` + monthPattern + `\s+(\d{1,2})\s*-\s*` + monthPattern + `\s+(\d{1,2})$`)
	wholeMonth      = regexp.MustCompile(`(?i)^` + monthPattern + `$`)
	isoRange        = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})(?:\s*(?:\.\.|to)\s*(\d{4}-\d{2}-\d{2}))?$`)
)

// ParseDateRange parses a date range string into start and end times.
//
// Supported formats:
//   - "Mar 1-15" or "März 1-15" - Same month, different days
//   - "March 1 - April 15" - Different months
//   - "Mai" - Entire month
//   - "2025-03-01..2025-03-15" or a single "2025-03-01"
//
// Month names carry no year: a month before the month of now is taken to be in
// the next year, and a cross-month range whose end month precedes its start
// month ends in the year after its start.
//
// Times are in UTC; from is at the start of its day, to at the start of its
// last day.
func ParseDateRange(input string, now time.Time) (*time.Time, *time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil, fmt.Errorf("date range cannot be empty")
	}

	if m := isoRange.FindStringSubmatch(input); m != nil {
		from, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date: %s", m[1])
		}
		to := from
		if m[2] != "" {
			if to, err = time.Parse("2006-01-02", m[2]); err != nil {
				return nil, nil, fmt.Errorf("invalid date: %s", m[2])
			}
		}
		return checkOrder(from, to)
	}

	if m := sameMonthRange.FindStringSubmatch(input); m != nil {
		month, err := parseMonth(m[1])
		if err != nil {
			return nil, nil, err
		}
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[3])
		if err != nil {
			return nil, nil, err
		}

		year := yearForMonth(month, now)
		return checkOrder(date(year, month, day1), date(year, month, day2))
	}

	if m := crossMonthRange.FindStringSubmatch(input); m != nil {
		month1, err := parseMonth(m[1])
		if err != nil {
			return nil, nil, err
		}
		day1, err := parseDay(m[2])
		if err != nil {
			return nil, nil, err
		}
		month2, err := parseMonth(m[3])
		if err != nil {
			return nil, nil, err
		}
		day2, err := parseDay(m[4])
		if err != nil {
			return nil, nil, err
		}

		year1 := yearForMonth(month1, now)
		year2 := year1
		if month2 < month1 {
			year2++
		}
		return checkOrder(date(year1, month1, day1), date(year2, month2, day2))
	}

	if m := wholeMonth.FindStringSubmatch(input); m != nil {
		month, err := parseMonth(m[1])
		if err != nil {
			return nil, nil, err
		}

		year := yearForMonth(month, now)
		from := date(year, month, 1)
		to := from.AddDate(0, 1, -1)
		return &from, &to, nil
	}

	return nil, nil, fmt.Errorf("invalid date range format: %q (use 'Mar 1-15', 'March 1 - April 15', 'März' or '2025-03-01..2025-03-15')", input)
}

func checkOrder(from, to time.Time) (*time.Time, *time.Time, error) {
	if from.After(to) {
		return nil, nil, fmt.Errorf("start date must be before end date")
	}
	return &from, &to, nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func parseMonth(name string) (time.Month, error) {
	month, ok := monthNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("invalid month: %s", name)
	}
	return month, nil
}

func parseDay(s string) (int, error) {
	day, err := strconv.Atoi(s)
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("invalid day: %s", s)
	}
	return day, nil
}

// yearForMonth returns now's year, or the next one if month has already passed
func yearForMonth(month time.Month, now time.Time) int {
	if month < now.Month() {
		return now.Year() + 1
	}
	return now.Year()
}
