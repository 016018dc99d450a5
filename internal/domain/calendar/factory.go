package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	platformChildWindow  = 15 * time.Minute
	recurringChildWindow = 30 * time.Minute

	tagRecurring      = "recurring"
	tagPlatformPrefix = "platform:"
)

// ContentRef carries the content fields the factory reads. The content item
// itself is owned by another subsystem; the factory does not check that it
// exists.
type ContentRef struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Type      string
	Platforms []string
	Tags      []string
}

// ChildResult records the outcome of one child event write.
type ChildResult struct {
	Event *CalendarEvent
	Err   error
}

// CreateResult is the structured outcome of an event tree creation. Child
// writes are best-effort: a failed child is recorded here instead of
// aborting its siblings, so callers can tell "3 of 3 created" from
// "1 of 3 created" without counting.
type CreateResult struct {
	Master   *CalendarEvent
	Children []ChildResult
}

// Events flattens the result into the created events in creation order:
// master, platform children, recurring children. Failed children are
// omitted.
func (r *CreateResult) Events() []CalendarEvent {
	events := make([]CalendarEvent, 0, 1+len(r.Children))
	if r.Master != nil {
		events = append(events, *r.Master)
	}
	for _, c := range r.Children {
		if c.Err == nil && c.Event != nil {
			events = append(events, *c.Event)
		}
	}
	return events
}

// FailedChildren returns the number of child writes that did not succeed.
func (r *CreateResult) FailedChildren() int {
	n := 0
	for _, c := range r.Children {
		if c.Err != nil {
			n++
		}
	}
	return n
}

// Factory turns a content item plus a canonical ScheduleSpec into the
// persisted calendar event tree.
//
// The tree is written as a sequence of independent store calls with no
// transaction around them: a store failure mid-sequence leaves the master
// plus whichever children were already written. That is a documented
// trade-off, not a bug to fix with transactions.
type Factory struct {
	store  Repository
	logger *zap.Logger
}

// NewFactory creates a new calendar event factory.
func NewFactory(store Repository, logger *zap.Logger) *Factory {
	return &Factory{store: store, logger: logger}
}

// CreateEventsForContent builds and persists the master event, one child per
// platform schedule entry, and one child per recurrence occurrence after the
// first. A master write failure is fatal; child write failures are logged
// and collected.
func (f *Factory) CreateEventsForContent(ctx context.Context, content ContentRef, spec *ScheduleSpec, userID uuid.UUID) (*CreateResult, error) {
	if spec == nil {
		return nil, NewValidationError("schedule spec is required")
	}

	// Expand before the first write so a bad rule surfaces as a validation
	// error with nothing persisted.
	var occurrences []time.Time
	if spec.Recurrence != nil {
		var err error
		occurrences, err = ExpandRecurrence(spec.StartDate, spec.Recurrence)
		if err != nil {
			return nil, err
		}
	}

	master, err := f.createMaster(ctx, content, spec, userID)
	if err != nil {
		return nil, err
	}

	result := &CreateResult{Master: master}

	for _, ps := range spec.PlatformSchedules {
		child := f.buildPlatformChild(master, content, spec, ps)
		created, err := f.store.Create(ctx, child)
		if err != nil {
			f.logger.Error("failed to create platform event, continuing with remaining entries",
				zap.String("content_id", content.ID.String()),
				zap.String("platform", ps.Platform),
				zap.Error(err))
			result.Children = append(result.Children, ChildResult{Err: err})
			continue
		}
		result.Children = append(result.Children, ChildResult{Event: created})
	}

	// Index 0 is the master's own date.
	if len(occurrences) > 0 {
		occurrences = occurrences[1:]
	}
	for _, occurrence := range occurrences {
		child := f.buildRecurringChild(master, content, spec, occurrence)
		created, err := f.store.Create(ctx, child)
		if err != nil {
			f.logger.Error("failed to create recurring event, continuing with remaining entries",
				zap.String("content_id", content.ID.String()),
				zap.Time("occurrence", occurrence),
				zap.Error(err))
			result.Children = append(result.Children, ChildResult{Err: err})
			continue
		}
		result.Children = append(result.Children, ChildResult{Event: created})
	}

	return result, nil
}

func (f *Factory) createMaster(ctx context.Context, content ContentRef, spec *ScheduleSpec, userID uuid.UUID) (*CalendarEvent, error) {
	priority := spec.Priority
	if priority == "" {
		// Master events default higher than their derived children.
		priority = PriorityHigh
	}

	contentID := content.ID
	master := &CalendarEvent{
		UserID:          userID,
		Title:           fmt.Sprintf("Publish: %s", content.Title),
		Description:     fmt.Sprintf("Scheduled publishing for content %q", content.Title),
		StartDate:       spec.StartDate,
		EndDate:         spec.EndDate,
		AllDay:          spec.AllDay,
		Timezone:        spec.Timezone,
		EventType:       EventTypeContentPublishing,
		Status:          EventStatusScheduled,
		Priority:        priority,
		ContentID:       &contentID,
		Platform:        StringArray(content.Platforms),
		AutoPublish:     spec.AutoPublish,
		PublishSettings: spec.PublishSettings,
		Recurrence:      spec.Recurrence,
		Reminders:       spec.Reminders,
		Tags:            StringArray(content.Tags),
		Color:           ColorForContentType(content.Type),
		CreatedBy:       userID,
	}
	if err := master.Validate(); err != nil {
		return nil, err
	}

	created, err := f.store.Create(ctx, master)
	if err != nil {
		return nil, fmt.Errorf("create master event for content %s: %w", content.ID, err)
	}
	return created, nil
}

func (f *Factory) buildPlatformChild(master *CalendarEvent, content ContentRef, spec *ScheduleSpec, ps PlatformSchedule) *CalendarEvent {
	autoPublish := spec.AutoPublish
	if ps.AutoPublish != nil {
		autoPublish = *ps.AutoPublish
	}
	notes := ""
	if ps.CustomText != nil {
		notes = *ps.CustomText
	}

	contentID := content.ID
	parentID := master.ID
	return &CalendarEvent{
		UserID:          master.UserID,
		Title:           fmt.Sprintf("%s on %s", content.Title, ps.Platform),
		Description:     fmt.Sprintf("Platform publish for content %q", content.Title),
		StartDate:       ps.ScheduledDate,
		EndDate:         ps.ScheduledDate.Add(platformChildWindow),
		Timezone:        spec.Timezone,
		EventType:       EventTypeContentPublishing,
		Status:          EventStatusScheduled,
		Priority:        PriorityMedium,
		ContentID:       &contentID,
		ParentEventID:   &parentID,
		Platform:        StringArray{ps.Platform},
		AutoPublish:     autoPublish,
		PublishSettings: spec.PublishSettings,
		Tags:            appendTag(content.Tags, tagPlatformPrefix+ps.Platform),
		Color:           ColorForPlatform(ps.Platform),
		Notes:           notes,
		CreatedBy:       master.CreatedBy,
	}
}

func (f *Factory) buildRecurringChild(master *CalendarEvent, content ContentRef, spec *ScheduleSpec, occurrence time.Time) *CalendarEvent {
	contentID := content.ID
	parentID := master.ID
	return &CalendarEvent{
		UserID:          master.UserID,
		Title:           master.Title,
		Description:     master.Description,
		StartDate:       occurrence,
		EndDate:         occurrence.Add(recurringChildWindow),
		AllDay:          spec.AllDay,
		Timezone:        spec.Timezone,
		EventType:       EventTypeContentPublishing,
		Status:          EventStatusScheduled,
		Priority:        PriorityMedium,
		ContentID:       &contentID,
		ParentEventID:   &parentID,
		Platform:        master.Platform,
		AutoPublish:     spec.AutoPublish,
		PublishSettings: spec.PublishSettings,
		Recurrence:      spec.Recurrence,
		Tags:            appendTag(content.Tags, tagRecurring),
		Color:           master.Color,
		CreatedBy:       master.CreatedBy,
	}
}

// RemoveEventsForContent deletes every calendar entry for the content item,
// master and children alike.
func (f *Factory) RemoveEventsForContent(ctx context.Context, contentID uuid.UUID) error {
	return f.store.RemoveByContentID(ctx, contentID)
}

// UpdateEventsForContent applies top-level schedule changes to the content's
// master event only. The child set is never regenerated or resized here;
// reschedules that must change children go through remove + create instead.
func (f *Factory) UpdateEventsForContent(ctx context.Context, contentID uuid.UUID, spec *ScheduleSpec) (*CalendarEvent, error) {
	if spec == nil {
		return nil, NewValidationError("schedule spec is required")
	}

	events, err := f.store.FindByContentID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no calendar events found for content %s", contentID)
	}

	master := &events[0]
	for i := range events {
		if events[i].IsMaster() {
			master = &events[i]
			break
		}
	}

	master.StartDate = spec.StartDate
	master.EndDate = spec.EndDate
	master.Timezone = spec.Timezone
	master.AllDay = spec.AllDay
	master.AutoPublish = spec.AutoPublish
	master.Reminders = spec.Reminders

	if err := master.Validate(); err != nil {
		return nil, err
	}
	return f.store.Update(ctx, master)
}

func appendTag(tags []string, tag string) StringArray {
	out := make(StringArray, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, tag)
}
