// Package fiscal provides the calendar arithmetic used by the depreciation engine:
// financial-year windows, leap years and inclusive day counts.
package fiscal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is an inclusive financial-year period.
type Window struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Days is the result of a day-count: days used within the window and
// the length of the year used as the proration denominator.
type Days struct {
	Used   int `json:"days_used"`
	InYear int `json:"days_in_year"`
}

// ForYear returns the Indian financial year starting 1 April of startYear.
func ForYear(startYear int) Window {
	return Window{
		Start: NewDate(startYear, time.April, 1),
		End:   NewDate(startYear+1, time.March, 31),
	}
}

// ParseYear accepts "2024", "2024-25", "2024-2025" and "FY2024-25".
func ParseYear(s string) (Window, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimPrefix(s, "FY")
	s = strings.TrimSpace(s)
	head, tail, hasTail := strings.Cut(s, "-")
	start, err := strconv.Atoi(head)
	if err != nil || start < 1900 || start > 9999 {
		return Window{}, fmt.Errorf("invalid financial year %q", s)
	}
	if hasTail {
		end, err := strconv.Atoi(tail)
		if err != nil {
			return Window{}, fmt.Errorf("invalid financial year %q", s)
		}
		want := start + 1
		if len(tail) == 2 {
			want %= 100
		}
		if end != want {
			return Window{}, fmt.Errorf("financial year %q must span consecutive years", s)
		}
	}
	return ForYear(start), nil
}

// Label formats the window as "FY2024-25".
func (w Window) Label() string {
	return fmt.Sprintf("FY%d-%02d", w.Start.Year(), w.End.Year()%100)
}

// Contains reports whether d falls inside the window, both ends inclusive.
func (w Window) Contains(d Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// DaysInYear is 366 when the calendar year in which the window ends is a leap year.
func (w Window) DaysInYear() int {
	if IsLeapYear(w.End.Year()) {
		return 366
	}
	return 365
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysUsed counts the days an asset is in use within w.
//
// A start date only moves the window forward; a start before the window never
// extends it. An end date is honoured only when it falls inside the window,
// so disposals in other years do not affect this year's proration.
func DaysUsed(start, end *Date, w Window) Days {
	days := Days{InYear: w.DaysInYear()}

	from := w.Start
	if Given(start) && start.After(w.Start) {
		from = *start
	}
	to := w.End
	if Given(end) && w.Contains(*end) {
		to = *end
	}

	if to.Before(from) {
		return days
	}
	days.Used = to.DaysSince(from) + 1
	return days
}
