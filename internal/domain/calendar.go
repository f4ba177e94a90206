package domain

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date formatted as 2006-01-02.
type Date string

const dateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// Time returns the date as midnight UTC.
func (d Date) Time() (time.Time, error) {
	return time.Parse(dateLayout, string(d))
}

// dateLayouts are the accepted spellings of a date-like value.
var dateLayouts = []string{
	dateLayout,
	"20060102",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate normalizes a date-like string to a Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return "", fmt.Errorf("parse date %q: unsupported layout", s)
}

// EligibleDates is the set of sessions on which an external timing signal is on.
type EligibleDates map[Date]struct{}

// NewEligibleDates builds the set from date-like strings.
func NewEligibleDates(values ...string) (EligibleDates, error) {
	set := make(EligibleDates, len(values))
	for i, v := range values {
		d, err := ParseDate(v)
		if err != nil {
			return nil, &SchemaError{Row: i, Column: "date", Reason: err.Error()}
		}
		set[d] = struct{}{}
	}
	return set, nil
}

// EligibleDatesOf builds the set from timestamps.
func EligibleDatesOf(times ...time.Time) EligibleDates {
	set := make(EligibleDates, len(times))
	for _, t := range times {
		set[DateOf(t)] = struct{}{}
	}
	return set
}

// Contains reports whether d is in the set.
func (s EligibleDates) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// CalendarLabels are the derived grouping labels of one timestamp.
type CalendarLabels struct {
	Year  string // 2020年
	Month string // 2020年01月
	Day   string // 2020-01-02
	Week  string // 2020年第01周
}

// LabelsOf derives calendar labels for t.
// The week number is the ISO week paired with the calendar year, so the last days
// of December can land in week 01 of the same year; historical reports group that way.
func LabelsOf(t time.Time) CalendarLabels {
	_, week := t.ISOWeek()
	return CalendarLabels{
		Year:  t.Format("2006年"),
		Month: t.Format("2006年01月"),
		Day:   t.Format(dateLayout),
		Week:  weekLabel(t.Year(), week),
	}
}

func weekLabel(year, week int) string {
	if week >= 10 {
		return fmt.Sprintf("%d年第%d周", year, week)
	}
	return fmt.Sprintf("%d年第0%d周", year, week)
}
