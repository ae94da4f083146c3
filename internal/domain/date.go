package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a calendar date with no time-of-day or zone.
// Requests carry dates as MM/DD/YYYY; providers want ISO YYYY-MM-DD.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses an exact 10-character MM/DD/YYYY string.
// It returns false for any string that is not a real calendar date.
func ParseDate(s string) (Date, bool) {
	if len(s) != 10 || s[2] != '/' || s[5] != '/' {
		return Date{}, false
	}
	month, ok1 := atoiDigits(s[0:2])
	day, ok2 := atoiDigits(s[3:5])
	year, ok3 := atoiDigits(s[6:10])
	if !ok1 || !ok2 || !ok3 {
		return Date{}, false
	}
	if month < 1 || month > 12 || year < 0 {
		return Date{}, false
	}
	if day < 1 || day > DaysInMonth(month, year) {
		return Date{}, false
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// ValidDate reports whether s is a calendar-valid MM/DD/YYYY date.
func ValidDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month (1-12) of year.
func DaysInMonth(month, year int) int {
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// CompareDates returns -1, 0 or +1 as a is before, equal to, or after b.
func CompareDates(a, b Date) int {
	switch {
	case a.Year != b.Year:
		return sign(a.Year - b.Year)
	case a.Month != b.Month:
		return sign(a.Month - b.Month)
	default:
		return sign(a.Day - b.Day)
	}
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// String formats the date as MM/DD/YYYY.
func (d Date) String() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Month, d.Day, d.Year)
}

// MarshalJSON encodes the date in request form (MM/DD/YYYY).
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func atoiDigits(s string) (int, bool) {
	if !isDigits(s) {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}
