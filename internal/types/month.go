// Package types implements special types for Pocketguard.
package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonth is returned when a month or year is out of range.
var ErrInvalidMonth = errors.New("invalid month or year parameters")

// Month is a month in a specific year. It is the period a budget covers.
type Month time.Time

// NewMonth returns a new Month.
func NewMonth(year int, month time.Month) Month {
	return Month(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
}

// ParseMonth returns the Month for a calendar month number (1-12) and year.
func ParseMonth(month, year int) (Month, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("%w: month %d, year %d", ErrInvalidMonth, month, year)
	}

	return NewMonth(year, time.Month(month)), nil
}

// MonthOf returns the Month in which a time occurs, evaluated in UTC.
func MonthOf(t time.Time) Month {
	year, month, _ := t.UTC().Date()
	return NewMonth(year, month)
}

// String returns the time formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year(), m.Month())
}

// Year returns the year of the month.
func (m Month) Year() int {
	return time.Time(m).Year()
}

// Month returns the calendar month.
func (m Month) Month() time.Month {
	return time.Time(m).Month()
}

// Start returns the first instant of the month.
func (m Month) Start() time.Time {
	return time.Time(m)
}

// End returns the first instant of the following month.
func (m Month) End() time.Time {
	return time.Time(m).AddDate(0, 1, 0)
}

// LastDay returns the number of the last day in the month.
func (m Month) LastDay() int {
	return m.End().AddDate(0, 0, -1).Day()
}

// AddDate adds a specified amount of years and months.
func (m Month) AddDate(years, months int) Month {
	return Month(time.Time(m).AddDate(years, months, 0))
}

// Equal reports whether m and n represent the same month.
func (m Month) Equal(n Month) bool {
	return time.Time(m).Equal(time.Time(n))
}

// Contains reports whether the time instant is in the month.
func (m Month) Contains(t time.Time) bool {
	return MonthOf(t).Equal(m)
}

// DaysLeft returns the number of days remaining in the month after the day of now.
//
// It is 0 for every month that does not contain now.
func (m Month) DaysLeft(now time.Time) int {
	if !m.Contains(now) {
		return 0
	}

	return m.LastDay() - now.UTC().Day()
}
