// Package dateparser extracts and validates calendar dates embedded in file names.
package dateparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateParseErrorType represents the type of date parsing error.
type DateParseErrorType string

const (
	InvalidFormat DateParseErrorType = "INVALID_FORMAT"
	InvalidDate   DateParseErrorType = "INVALID_DATE"
)

// DateParseError is returned by ParseISO for a date typed by the user.
// File names never produce it; the resolver just tries the next pattern.
type DateParseError struct {
	Type   DateParseErrorType
	Input  string
	Reason string
}

func (e *DateParseError) Error() string {
	switch e.Type {
	case InvalidFormat:
		return fmt.Sprintf("invalid date %q: want an ISO date such as 2024-03-15", e.Input)
	case InvalidDate:
		return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
	default:
		return fmt.Sprintf("date parse error: %s", e.Reason)
	}
}

// Date is a calendar-valid year, month and day. It carries no time zone.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ISO returns the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Compact returns the date as YYYYMMDD.
func (d Date) Compact() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return d.ISO()
}

// isoDatePattern matches the YYYY-MM-DD format strictly.
var isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// ParseISO parses a string in YYYY-MM-DD format and returns a Date.
// It validates the format strictly and checks that the date exists on the calendar.
func ParseISO(segment string) (Date, error) {
	matches := isoDatePattern.FindStringSubmatch(segment)
	if matches == nil {
		return Date{}, &DateParseError{Type: InvalidFormat, Input: segment}
	}

	year, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	day, _ := strconv.Atoi(matches[3])

	d, reason := NewDate(year, month, day)
	if reason != "" {
		return Date{}, &DateParseError{Type: InvalidDate, Input: segment, Reason: reason}
	}
	return d, nil
}

// NewDate validates the triple against the calendar. On failure it returns
// the zero Date and a human readable reason.
func NewDate(year, month, day int) (Date, string) {
	if year < 1 {
		return Date{}, fmt.Sprintf("year %04d is out of range", year)
	}
	if month < 1 || month > 12 {
		return Date{}, fmt.Sprintf("month %02d is out of range (01-12)", month)
	}
	maxDay := daysInMonth(year, month)
	if day < 1 || day > maxDay {
		return Date{}, fmt.Sprintf("day %02d is out of range for month %02d (01-%02d)", day, month, maxDay)
	}
	return Date{Year: year, Month: month, Day: day}, ""
}

var (
	monthAbbr = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	monthFull = [12]string{"January", "February", "March", "April", "May", "June", "July",
		"August", "September", "October", "November", "December"}

	abbrToNum = indexMonths(monthAbbr)
	fullToNum = indexMonths(monthFull)
)

func indexMonths(names [12]string) map[string]int {
	m := make(map[string]int, len(names))
	for i, n := range names {
		m[strings.ToLower(n)] = i + 1
	}
	return m
}

// MonthAbbr returns the three letter English abbreviation for month 1..12.
func MonthAbbr(month int) (string, bool) {
	if month < 1 || month > 12 {
		return "", false
	}
	return monthAbbr[month-1], true
}

// MonthNumber resolves a numeric, abbreviated or full month token to 1..12.
// Name lookups are case-insensitive.
func MonthNumber(token string) (int, bool) {
	if token == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return n, true
	}
	lower := strings.ToLower(token)
	if n, ok := abbrToNum[lower]; ok {
		return n, true
	}
	if n, ok := fullToNum[lower]; ok {
		return n, true
	}
	return 0, false
}

// daysInMonth returns the number of days in the given month for the given year.
func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// isLeapYear returns true if the given year is a leap year.
func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || (year%400 == 0)
}
