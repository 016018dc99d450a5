package calendar

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type EventType string

const (
	EventTypeContentPublishing EventType = "content_publishing"
	EventTypeMeeting           EventType = "meeting"
	EventTypeReminder          EventType = "reminder"
	EventTypeDeadline          EventType = "deadline"
	EventTypeCustom            EventType = "custom"
)

type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
	EventStatusFailed    EventStatus = "failed"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type RecurrenceFrequency string

const (
	FrequencyDaily   RecurrenceFrequency = "daily"
	FrequencyWeekly  RecurrenceFrequency = "weekly"
	FrequencyMonthly RecurrenceFrequency = "monthly"
	FrequencyYearly  RecurrenceFrequency = "yearly"
)

type ReminderType string

const (
	ReminderTypeEmail   ReminderType = "email"
	ReminderTypePush    ReminderType = "push"
	ReminderTypeWebhook ReminderType = "webhook"
)

// StringArray represents a PostgreSQL string array column
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	return pq.StringArray(a).Value()
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(src interface{}) error {
	return (*pq.StringArray)(a).Scan(src)
}

// RecurrenceRule describes how a scheduled publish repeats.
//
// DaysOfWeek (0 = Sunday) is accepted and validated but does not constrain
// the weekly step: the expander advances by whole weeks regardless. Callers
// that need day-of-week-constrained weekly recurrence must post-filter.
type RecurrenceRule struct {
	Frequency   RecurrenceFrequency `json:"frequency"`
	Interval    int                 `json:"interval"`
	DaysOfWeek  []int               `json:"days_of_week,omitempty"`
	EndDate     *time.Time          `json:"end_date,omitempty"`
	Occurrences *int                `json:"occurrences,omitempty"`
}

// Reminder is a lead-time notification request attached to an event.
// Delivery is owned by another subsystem; this engine only stores it.
type Reminder struct {
	Type        ReminderType `json:"type"`
	LeadMinutes int          `json:"lead_minutes"`
}

// PublishSettings mirrors the user's publishing preferences onto each event.
type PublishSettings struct {
	OptimizeForEngagement bool `json:"optimize_for_engagement"`
	CrossPost             bool `json:"cross_post"`
}

// PlatformSchedule is a per-platform override inside a ScheduleSpec.
type PlatformSchedule struct {
	Platform      string    `json:"platform"`
	ScheduledDate time.Time `json:"scheduled_date"`
	CustomText    *string   `json:"custom_text,omitempty"`
	AutoPublish   *bool     `json:"auto_publish,omitempty"`
}

// ScheduleSpec is the canonical, normalized scheduling intent for a content
// item. It is a value object: never persisted as-is, only consumed by the
// event factory.
type ScheduleSpec struct {
	StartDate         time.Time
	EndDate           time.Time
	Timezone          string
	AllDay            bool
	AutoPublish       bool
	Priority          Priority
	PlatformSchedules []PlatformSchedule
	Recurrence        *RecurrenceRule
	Reminders         []Reminder
	PublishSettings   PublishSettings
}

// AnalyticsSnapshot holds engagement metrics written back by the reporting
// pipeline after an event is published.
type AnalyticsSnapshot struct {
	Impressions    int64   `json:"impressions"`
	Reach          int64   `json:"reach"`
	Engagement     int64   `json:"engagement"`
	Clicks         int64   `json:"clicks"`
	Shares         int64   `json:"shares"`
	ConversionRate float64 `json:"conversion_rate"`
}

// CalendarEvent is a single calendar entry. Events for one content item form
// a two-level tree: exactly one master (ParentEventID nil) plus per-platform
// and recurring-instance children referencing it.
type CalendarEvent struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID      uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index:idx_calendar_event_user"`
	Title       string      `json:"title" gorm:"type:varchar(255);not null"`
	Description string      `json:"description" gorm:"type:text"`
	StartDate   time.Time   `json:"start_date" gorm:"not null;index:idx_calendar_event_start"`
	EndDate     time.Time   `json:"end_date" gorm:"not null"`
	AllDay      bool        `json:"all_day" gorm:"not null;default:false"`
	Timezone    string      `json:"timezone" gorm:"type:varchar(64);not null;default:'UTC'"`
	EventType   EventType   `json:"event_type" gorm:"type:varchar(50);not null;default:'custom'"`
	Status      EventStatus `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`
	Priority    Priority    `json:"priority" gorm:"type:varchar(20);not null;default:'medium'"`

	ContentID     *uuid.UUID `json:"content_id,omitempty" gorm:"type:uuid;index:idx_calendar_event_content"`
	ParentEventID *uuid.UUID `json:"parent_event_id,omitempty" gorm:"type:uuid;index:idx_calendar_event_parent"`

	Platform        StringArray        `json:"platform" gorm:"type:varchar[]"`
	AutoPublish     bool               `json:"auto_publish" gorm:"not null;default:false"`
	PublishSettings PublishSettings    `json:"publish_settings" gorm:"serializer:json"`
	Recurrence      *RecurrenceRule    `json:"recurrence,omitempty" gorm:"serializer:json"`
	Reminders       []Reminder         `json:"reminders,omitempty" gorm:"serializer:json"`
	Analytics       *AnalyticsSnapshot `json:"analytics,omitempty" gorm:"serializer:json"`

	Tags        StringArray `json:"tags" gorm:"type:varchar[]"`
	Color       string      `json:"color,omitempty" gorm:"type:varchar(7)"`
	Notes       string      `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy   uuid.UUID   `json:"created_by" gorm:"type:uuid"`
	AISuggested bool        `json:"ai_suggested" gorm:"not null;default:false"`
	SuggestedBy string      `json:"suggested_by,omitempty" gorm:"type:varchar(50)"`

	CreatedAt time.Time `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:current_timestamp"`
}

func (CalendarEvent) TableName() string { return "calendar_events" }

// BeforeCreate hook for UUID generation
func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsMaster reports whether the event is the root of its content's tree.
func (e *CalendarEvent) IsMaster() bool { return e.ParentEventID == nil }

// ValidationError marks a malformed ScheduleSpec or request. It is surfaced
// before any store write is attempted.
type ValidationError struct {
	message string
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.message }

var (
	ErrInvalidTimeRange = NewValidationError("end date must not be before start date")
	ErrMissingStartDate = NewValidationError("either scheduling.start_date or a legacy scheduled_date is required")
)

// Validate checks the event's own invariants before persistence.
func (e *CalendarEvent) Validate() error {
	if e.Title == "" {
		return NewValidationError("title is required")
	}
	if e.EndDate.Before(e.StartDate) {
		return ErrInvalidTimeRange
	}
	if !isValidEventType(e.EventType) {
		return NewValidationError("invalid event type %q", e.EventType)
	}
	if !isValidStatus(e.Status) {
		return NewValidationError("invalid event status %q", e.Status)
	}
	if !isValidPriority(e.Priority) {
		return NewValidationError("invalid priority %q", e.Priority)
	}
	return nil
}

// Validate checks the rule's shape. The interval bound is load-bearing: the
// expander refuses rules this method rejects.
func (r *RecurrenceRule) Validate() error {
	if !isValidFrequency(r.Frequency) {
		return NewValidationError("invalid recurrence frequency %q", r.Frequency)
	}
	if r.Interval < 1 {
		return NewValidationError("recurrence interval must be at least 1")
	}
	if r.Occurrences != nil && *r.Occurrences < 1 {
		return NewValidationError("recurrence occurrences must be at least 1")
	}
	if r.Occurrences != nil && *r.Occurrences > MaxOccurrences {
		return NewValidationError("recurrence occurrences must not exceed %d", MaxOccurrences)
	}
	for _, d := range r.DaysOfWeek {
		if d < 0 || d > 6 {
			return NewValidationError("recurrence day of week %d out of range 0..6", d)
		}
	}
	return nil
}

func (r *Reminder) Validate() error {
	switch r.Type {
	case ReminderTypeEmail, ReminderTypePush, ReminderTypeWebhook:
	default:
		return NewValidationError("invalid reminder type %q", r.Type)
	}
	if r.LeadMinutes < 0 {
		return NewValidationError("reminder lead minutes must not be negative")
	}
	return nil
}

func isValidEventType(t EventType) bool {
	switch t {
	case EventTypeContentPublishing, EventTypeMeeting, EventTypeReminder,
		EventTypeDeadline, EventTypeCustom:
		return true
	}
	return false
}

func isValidStatus(s EventStatus) bool {
	switch s {
	case EventStatusScheduled, EventStatusPublished, EventStatusCancelled,
		EventStatusCompleted, EventStatusFailed:
		return true
	}
	return false
}

func isValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func isValidFrequency(f RecurrenceFrequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// neutralGray is the fallback color for unknown content types and platforms.
const neutralGray = "#9E9E9E"

var contentTypeColors = map[string]string{
	"article":     "#4CAF50",
	"blog_post":   "#8BC34A",
	"social_post": "#2196F3",
	"video":       "#F44336",
	"podcast":     "#9C27B0",
	"newsletter":  "#FF9800",
}

var platformColors = map[string]string{
	"instagram": "#E1306C",
	"twitter":   "#1DA1F2",
	"facebook":  "#1877F2",
	"linkedin":  "#0A66C2",
	"tiktok":    "#010101",
	"youtube":   "#FF0000",
}

// ColorForContentType returns the calendar color for a content type.
func ColorForContentType(contentType string) string {
	if c, ok := contentTypeColors[contentType]; ok {
		return c
	}
	return neutralGray
}

// ColorForPlatform returns the calendar color for a platform entry.
func ColorForPlatform(platform string) string {
	if c, ok := platformColors[platform]; ok {
		return c
	}
	return neutralGray
}
