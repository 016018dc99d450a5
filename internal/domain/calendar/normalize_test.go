package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestNormalizeScheduleLegacyShape(t *testing.T) {
	scheduled := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	spec, err := NormalizeSchedule(ScheduleRequest{ScheduledDate: &scheduled})
	require.NoError(t, err)

	assert.Equal(t, scheduled, spec.StartDate)
	assert.Equal(t, scheduled.Add(30*time.Minute), spec.EndDate)
	assert.Equal(t, "UTC", spec.Timezone)
	assert.False(t, spec.AutoPublish)
	assert.Nil(t, spec.Recurrence)
}

func TestNormalizeScheduleRichShape(t *testing.T) {
	start := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	spec, err := NormalizeSchedule(ScheduleRequest{
		Scheduling: &SchedulingDetails{
			StartDate:   &start,
			EndDate:     &end,
			Timezone:    "America/New_York",
			AllDay:      true,
			AutoPublish: boolPtr(true),
			Priority:    PriorityCritical,
			Reminders:   []Reminder{{Type: ReminderTypeEmail, LeadMinutes: 60}},
			PublishSettings: &PublishSettings{
				OptimizeForEngagement: true,
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, start, spec.StartDate)
	assert.Equal(t, end, spec.EndDate)
	assert.Equal(t, "America/New_York", spec.Timezone)
	assert.True(t, spec.AllDay)
	assert.True(t, spec.AutoPublish)
	assert.Equal(t, PriorityCritical, spec.Priority)
	assert.Len(t, spec.Reminders, 1)
	assert.True(t, spec.PublishSettings.OptimizeForEngagement)
}

func TestNormalizeScheduleDefaultsEndDate(t *testing.T) {
	start := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	spec, err := NormalizeSchedule(ScheduleRequest{
		Scheduling: &SchedulingDetails{StartDate: &start},
	})
	require.NoError(t, err)

	assert.Equal(t, start.Add(30*time.Minute), spec.EndDate)
	assert.Equal(t, "UTC", spec.Timezone)
}

func TestNormalizeScheduleRichShapeWinsOverLegacy(t *testing.T) {
	richStart := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	legacy := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	spec, err := NormalizeSchedule(ScheduleRequest{
		Scheduling:    &SchedulingDetails{StartDate: &richStart},
		ScheduledDate: &legacy,
	})
	require.NoError(t, err)
	assert.Equal(t, richStart, spec.StartDate)
}

func TestNormalizeScheduleRejectsMalformedRequests(t *testing.T) {
	start := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := []struct {
		name string
		req  ScheduleRequest
	}{
		{name: "No date at all", req: ScheduleRequest{}},
		{
			name: "Scheduling without a start date",
			req:  ScheduleRequest{Scheduling: &SchedulingDetails{Timezone: "UTC"}},
		},
		{
			name: "End before start",
			req: ScheduleRequest{
				Scheduling: &SchedulingDetails{StartDate: &start, EndDate: &before},
			},
		},
		{
			name: "Unknown priority",
			req: ScheduleRequest{
				Scheduling: &SchedulingDetails{StartDate: &start, Priority: "urgent"},
			},
		},
		{
			name: "Invalid recurrence interval",
			req: ScheduleRequest{
				Scheduling: &SchedulingDetails{
					StartDate:  &start,
					Recurrence: &RecurrenceRule{Frequency: FrequencyDaily, Interval: 0},
				},
			},
		},
		{
			name: "Invalid reminder type",
			req: ScheduleRequest{
				Scheduling: &SchedulingDetails{
					StartDate: &start,
					Reminders: []Reminder{{Type: "sms", LeadMinutes: 10}},
				},
			},
		},
		{
			name: "Platform schedule missing platform",
			req: ScheduleRequest{
				Scheduling: &SchedulingDetails{
					StartDate:         &start,
					PlatformSchedules: []PlatformSchedule{{ScheduledDate: start}},
				},
			},
		},
		{
			name: "Platform schedule missing date",
			req: ScheduleRequest{
				Scheduling: &SchedulingDetails{
					StartDate:         &start,
					PlatformSchedules: []PlatformSchedule{{Platform: "twitter"}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NormalizeSchedule(tt.req)
			assert.Error(t, err)
			assert.Nil(t, spec)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}
