package calendar

import "time"

// defaultEventWindow is the publish window assumed when a schedule carries
// no explicit end date.
const defaultEventWindow = 30 * time.Minute

// SchedulingDetails is the rich inbound scheduling shape.
type SchedulingDetails struct {
	StartDate         *time.Time         `json:"start_date,omitempty"`
	EndDate           *time.Time         `json:"end_date,omitempty"`
	Timezone          string             `json:"timezone,omitempty"`
	AllDay            bool               `json:"all_day,omitempty"`
	AutoPublish       *bool              `json:"auto_publish,omitempty"`
	Priority          Priority           `json:"priority,omitempty"`
	PlatformSchedules []PlatformSchedule `json:"platform_schedules,omitempty"`
	Recurrence        *RecurrenceRule    `json:"recurrence,omitempty"`
	Reminders         []Reminder         `json:"reminders,omitempty"`
	PublishSettings   *PublishSettings   `json:"publish_settings,omitempty"`
}

// ScheduleRequest accepts either the rich scheduling object or the legacy
// single-timestamp shape older clients still send.
type ScheduleRequest struct {
	Scheduling    *SchedulingDetails `json:"scheduling,omitempty"`
	ScheduledDate *time.Time         `json:"scheduled_date,omitempty"`
}

// NormalizeSchedule converts an inbound scheduling request into the
// canonical ScheduleSpec consumed by the event factory. Legacy requests
// expand to a 30-minute UTC window with auto-publish off. All validation
// happens here, before any store write is attempted.
func NormalizeSchedule(req ScheduleRequest) (*ScheduleSpec, error) {
	spec := &ScheduleSpec{Timezone: "UTC"}

	switch {
	case req.Scheduling != nil && req.Scheduling.StartDate != nil:
		s := req.Scheduling
		spec.StartDate = *s.StartDate
		if s.EndDate != nil {
			spec.EndDate = *s.EndDate
		} else {
			spec.EndDate = spec.StartDate.Add(defaultEventWindow)
		}
		if s.Timezone != "" {
			spec.Timezone = s.Timezone
		}
		spec.AllDay = s.AllDay
		if s.AutoPublish != nil {
			spec.AutoPublish = *s.AutoPublish
		}
		spec.Priority = s.Priority
		spec.PlatformSchedules = s.PlatformSchedules
		spec.Recurrence = s.Recurrence
		spec.Reminders = s.Reminders
		if s.PublishSettings != nil {
			spec.PublishSettings = *s.PublishSettings
		}
	case req.ScheduledDate != nil:
		spec.StartDate = *req.ScheduledDate
		spec.EndDate = spec.StartDate.Add(defaultEventWindow)
	default:
		return nil, ErrMissingStartDate
	}

	if spec.EndDate.Before(spec.StartDate) {
		return nil, ErrInvalidTimeRange
	}
	if spec.Priority != "" && !isValidPriority(spec.Priority) {
		return nil, NewValidationError("invalid priority %q", spec.Priority)
	}
	if spec.Recurrence != nil {
		if err := spec.Recurrence.Validate(); err != nil {
			return nil, err
		}
	}
	for i := range spec.Reminders {
		if err := spec.Reminders[i].Validate(); err != nil {
			return nil, err
		}
	}
	for _, ps := range spec.PlatformSchedules {
		if ps.Platform == "" {
			return nil, NewValidationError("platform schedule entry is missing a platform")
		}
		if ps.ScheduledDate.IsZero() {
			return nil, NewValidationError("platform schedule for %q is missing a scheduled date", ps.Platform)
		}
	}
	return spec, nil
}
