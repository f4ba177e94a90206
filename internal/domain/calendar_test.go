package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsOf(t *testing.T) {
	tests := []struct {
		in   time.Time
		want CalendarLabels
	}{
		{
			in:   time.Date(2020, 2, 6, 9, 45, 0, 0, time.UTC),
			want: CalendarLabels{Year: "2020年", Month: "2020年02月", Day: "2020-02-06", Week: "2020年第06周"},
		},
		{
			in:   time.Date(2020, 3, 20, 14, 15, 0, 0, time.UTC),
			want: CalendarLabels{Year: "2020年", Month: "2020年03月", Day: "2020-03-20", Week: "2020年第12周"},
		},
		{
			// ISO week 53 of 2020, labelled with calendar year 2021
			in:   time.Date(2021, 1, 1, 10, 0, 0, 0, time.UTC),
			want: CalendarLabels{Year: "2021年", Month: "2021年01月", Day: "2021-01-01", Week: "2021年第53周"},
		},
		{
			// ISO week 1 of 2025, labelled with calendar year 2024
			in:   time.Date(2024, 12, 30, 10, 0, 0, 0, time.UTC),
			want: CalendarLabels{Year: "2024年", Month: "2024年12月", Day: "2024-12-30", Week: "2024年第01周"},
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LabelsOf(tt.in), tt.in.String())
	}
}

func TestWeekLabelPadding(t *testing.T) {
	assert.Equal(t, "2020年第09周", weekLabel(2020, 9))
	assert.Equal(t, "2020年第10周", weekLabel(2020, 10))
	assert.Equal(t, "2020年第01周", weekLabel(2020, 1))
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2020-01-02", "20200102", "2020/01/02", "2020-01-02 13:30:00", "2020-01-02T13:30:00", " 2020-01-02 "} {
		d, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, Date("2020-01-02"), d, in)
	}

	_, err := ParseDate("02/01/2020")
	assert.Error(t, err)
}

func TestEligibleDates(t *testing.T) {
	set, err := NewEligibleDates("2020-01-02", "20200103")
	require.NoError(t, err)

	assert.True(t, set.Contains("2020-01-02"))
	assert.True(t, set.Contains("2020-01-03"))
	assert.False(t, set.Contains("2020-01-04"))

	_, err = NewEligibleDates("2020-01-02", "not a date")
	require.Error(t, err)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, 1, schemaErr.Row)

	fromTimes := EligibleDatesOf(time.Date(2020, 1, 2, 15, 0, 0, 0, time.UTC))
	assert.True(t, fromTimes.Contains("2020-01-02"))
}
