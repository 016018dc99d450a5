package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func TestExpandRecurrence(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		start    time.Time
		rule     *RecurrenceRule
		expected []time.Time
	}{
		{
			name:  "Daily every day for three occurrences",
			start: start,
			rule: &RecurrenceRule{
				Frequency:   FrequencyDaily,
				Interval:    1,
				Occurrences: intPtr(3),
			},
			expected: []time.Time{
				time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "Weekly every two weeks",
			start: start,
			rule: &RecurrenceRule{
				Frequency:   FrequencyWeekly,
				Interval:    2,
				Occurrences: intPtr(3),
			},
			expected: []time.Time{
				time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 29, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "Weekly days of week do not change the step",
			start: start,
			rule: &RecurrenceRule{
				Frequency:   FrequencyWeekly,
				Interval:    2,
				DaysOfWeek:  []int{1, 3, 5},
				Occurrences: intPtr(3),
			},
			expected: []time.Time{
				time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 29, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "Monthly from Jan 31 clamps to end of shorter months",
			start: time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
			rule: &RecurrenceRule{
				Frequency:   FrequencyMonthly,
				Interval:    1,
				Occurrences: intPtr(3),
			},
			expected: []time.Time{
				time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 2, 29, 9, 0, 0, 0, time.UTC),
				// Steps continue from the clamped date, not the original day.
				time.Date(2024, 3, 29, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "Yearly from a leap day clamps to Feb 28",
			start: time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
			rule: &RecurrenceRule{
				Frequency:   FrequencyYearly,
				Interval:    1,
				Occurrences: intPtr(2),
			},
			expected: []time.Time{
				time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
				time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "End date cuts the sequence short",
			start: start,
			rule: &RecurrenceRule{
				Frequency: FrequencyDaily,
				Interval:  1,
				EndDate:   timePtr(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)),
			},
			expected: []time.Time{
				time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
			},
		},
		{
			name:  "Candidate exactly on the end date is kept",
			start: start,
			rule: &RecurrenceRule{
				Frequency:   FrequencyDaily,
				Interval:    1,
				Occurrences: intPtr(5),
				EndDate:     timePtr(time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)),
			},
			expected: []time.Time{
				time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
				time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := ExpandRecurrence(tt.start, tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, dates)
		})
	}
}

func TestExpandRecurrenceDefaultCap(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	rule := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1}

	dates, err := ExpandRecurrence(start, rule)
	require.NoError(t, err)
	assert.Len(t, dates, DefaultOccurrenceCap)
	assert.Equal(t, start, dates[0])
	assert.Equal(t, start.AddDate(0, 0, DefaultOccurrenceCap-1), dates[len(dates)-1])
}

func TestExpandRecurrenceIsDeterministic(t *testing.T) {
	start := time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)
	rule := &RecurrenceRule{Frequency: FrequencyWeekly, Interval: 3, Occurrences: intPtr(7)}

	first, err := ExpandRecurrence(start, rule)
	require.NoError(t, err)
	second, err := ExpandRecurrence(start, rule)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExpandRecurrenceOccurrenceUpperBound(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	// A runaway count is rejected before any expansion work happens.
	huge := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, Occurrences: intPtr(2_000_000_000)}
	dates, err := ExpandRecurrence(start, huge)
	assert.Error(t, err)
	assert.Nil(t, dates)

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	justOver := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, Occurrences: intPtr(MaxOccurrences + 1)}
	assert.Error(t, justOver.Validate())

	atCap := &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, Occurrences: intPtr(MaxOccurrences)}
	assert.NoError(t, atCap.Validate())
}

func TestExpandRecurrenceRejectsInvalidRules(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rule *RecurrenceRule
	}{
		{name: "Nil rule", rule: nil},
		{name: "Zero interval", rule: &RecurrenceRule{Frequency: FrequencyDaily, Interval: 0}},
		{name: "Unknown frequency", rule: &RecurrenceRule{Frequency: "hourly", Interval: 1}},
		{name: "Zero occurrences", rule: &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, Occurrences: intPtr(0)}},
		{name: "Day of week out of range", rule: &RecurrenceRule{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := ExpandRecurrence(start, tt.rule)
			assert.Error(t, err)
			assert.Nil(t, dates)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}
