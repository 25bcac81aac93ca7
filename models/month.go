package models

import (
	"fmt"
	"strings"
	"time"
)

// MonthSpec identifies one monthly TLC source file.
type MonthSpec struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (MonthSpec, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthSpec{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return MonthSpec{Year: t.Year(), Month: t.Month()}, nil
}

// ParseMonthRange parses an inclusive "START:END" range into ascending months.
// A single "YYYY-MM" is a one-month range.
func ParseMonthRange(s string) ([]MonthSpec, error) {
	startRaw, endRaw, found := strings.Cut(s, ":")
	if !found {
		endRaw = startRaw
	}

	start, err := ParseMonth(startRaw)
	if err != nil {
		return nil, err
	}
	end, err := ParseMonth(endRaw)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("invalid month range %q: end %s is before start %s", s, end, start)
	}

	var months []MonthSpec
	for m := start; !end.Before(m); m = m.Next() {
		months = append(months, m)
	}
	return months, nil
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) MonthSpec {
	return MonthSpec{Year: t.Year(), Month: t.Month()}
}

func (m MonthSpec) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Next returns the following month.
func (m MonthSpec) Next() MonthSpec {
	return MonthOf(m.FirstDay().AddDate(0, 1, 0))
}

// Before reports whether m is strictly earlier than other.
func (m MonthSpec) Before(other MonthSpec) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// FirstDay returns midnight UTC on the first day of the month.
func (m MonthSpec) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of calendar days in the month.
func (m MonthSpec) Days() int {
	return m.FirstDay().AddDate(0, 1, -1).Day()
}

// Contains reports whether t falls inside the month, using t's own wall clock.
func (m MonthSpec) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// JoinMonths renders months as a comma-separated list.
func JoinMonths(months []MonthSpec) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}
