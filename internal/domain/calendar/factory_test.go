package calendar

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mock repository for testing. Create fails for events whose title contains
// any of the failTitles substrings, which lets tests force partial writes.
type mockRepository struct {
	events     []CalendarEvent
	failTitles []string
}

func (m *mockRepository) Create(ctx context.Context, event *CalendarEvent) (*CalendarEvent, error) {
	for _, s := range m.failTitles {
		if strings.Contains(event.Title, s) {
			return nil, errors.New("store write failed")
		}
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	m.events = append(m.events, *event)
	return event, nil
}

func (m *mockRepository) Update(ctx context.Context, event *CalendarEvent) (*CalendarEvent, error) {
	for i := range m.events {
		if m.events[i].ID == event.ID {
			m.events[i] = *event
			return event, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*CalendarEvent, error) {
	for i := range m.events {
		if m.events[i].ID == id {
			event := m.events[i]
			return &event, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRepository) FindByContentID(ctx context.Context, contentID uuid.UUID) ([]CalendarEvent, error) {
	var out []CalendarEvent
	for _, e := range m.events {
		if e.ContentID != nil && *e.ContentID == contentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]CalendarEvent, error) {
	var out []CalendarEvent
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepository) RemoveByContentID(ctx context.Context, contentID uuid.UUID) error {
	kept := m.events[:0]
	for _, e := range m.events {
		if e.ContentID == nil || *e.ContentID != contentID {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

func testContentRef() ContentRef {
	return ContentRef{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "Launch announcement",
		Type:      "social_post",
		Platforms: []string{"twitter", "linkedin"},
		Tags:      []string{"launch"},
	}
}

func TestCreateEventsForContentMasterOnly(t *testing.T) {
	repo := &mockRepository{}
	factory := NewFactory(repo, zap.NewNop())
	content := testContentRef()
	userID := uuid.New()

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	spec := &ScheduleSpec{
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Timezone:  "UTC",
	}

	result, err := factory.CreateEventsForContent(context.Background(), content, spec, userID)
	require.NoError(t, err)

	events := result.Events()
	require.Len(t, events, 1)
	assert.Zero(t, result.FailedChildren())

	master := result.Master
	require.NotNil(t, master)
	assert.True(t, master.IsMaster())
	assert.Equal(t, "Publish: Launch announcement", master.Title)
	assert.Equal(t, EventTypeContentPublishing, master.EventType)
	assert.Equal(t, EventStatusScheduled, master.Status)
	assert.Equal(t, PriorityHigh, master.Priority, "master priority defaults to high")
	assert.Equal(t, content.ID, *master.ContentID)
	assert.Equal(t, userID, master.UserID)
	assert.Equal(t, StringArray{"twitter", "linkedin"}, master.Platform)
	assert.Equal(t, ColorForContentType("social_post"), master.Color)
}

func TestCreateEventsForContentPlatformChildren(t *testing.T) {
	repo := &mockRepository{}
	factory := NewFactory(repo, zap.NewNop())
	content := testContentRef()
	userID := uuid.New()

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	twitterDate := start.Add(2 * time.Hour)
	linkedinDate := start.Add(4 * time.Hour)
	customText := "Short teaser for the feed"

	spec := &ScheduleSpec{
		StartDate:   start,
		EndDate:     start.Add(time.Hour),
		Timezone:    "UTC",
		AutoPublish: true,
		PlatformSchedules: []PlatformSchedule{
			{Platform: "twitter", ScheduledDate: twitterDate, CustomText: &customText},
			{Platform: "linkedin", ScheduledDate: linkedinDate, AutoPublish: boolPtr(false)},
		},
	}

	result, err := factory.CreateEventsForContent(context.Background(), content, spec, userID)
	require.NoError(t, err)
	require.Len(t, result.Events(), 3)

	master := result.Master
	require.Len(t, result.Children, 2)

	twitter := result.Children[0].Event
	require.NotNil(t, twitter)
	assert.Equal(t, master.ID, *twitter.ParentEventID)
	assert.Equal(t, content.ID, *twitter.ContentID)
	assert.Equal(t, twitterDate, twitter.StartDate)
	assert.Equal(t, twitterDate.Add(15*time.Minute), twitter.EndDate)
	assert.Equal(t, PriorityMedium, twitter.Priority)
	assert.Equal(t, StringArray{"twitter"}, twitter.Platform)
	assert.Contains(t, twitter.Tags, "platform:twitter")
	assert.Equal(t, customText, twitter.Notes)
	assert.True(t, twitter.AutoPublish, "inherits spec auto publish")
	assert.Equal(t, ColorForPlatform("twitter"), twitter.Color)

	linkedin := result.Children[1].Event
	require.NotNil(t, linkedin)
	assert.False(t, linkedin.AutoPublish, "per platform override wins")
	assert.Contains(t, linkedin.Tags, "platform:linkedin")
}

func TestCreateEventsForContentRecurringChildren(t *testing.T) {
	repo := &mockRepository{}
	factory := NewFactory(repo, zap.NewNop())
	content := testContentRef()
	userID := uuid.New()

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	spec := &ScheduleSpec{
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Timezone:  "UTC",
		Recurrence: &RecurrenceRule{
			Frequency:   FrequencyWeekly,
			Interval:    1,
			Occurrences: intPtr(4),
		},
	}

	result, err := factory.CreateEventsForContent(context.Background(), content, spec, userID)
	require.NoError(t, err)

	// Master covers the first occurrence; children cover the rest.
	events := result.Events()
	require.Len(t, events, 4)
	require.Len(t, result.Children, 3)

	for i, child := range result.Children {
		require.NoError(t, child.Err)
		expected := start.AddDate(0, 0, 7*(i+1))
		assert.Equal(t, expected, child.Event.StartDate)
		assert.Equal(t, expected.Add(30*time.Minute), child.Event.EndDate)
		assert.Equal(t, result.Master.ID, *child.Event.ParentEventID)
		assert.Contains(t, child.Event.Tags, "recurring")
		assert.Equal(t, result.Master.Color, child.Event.Color)
		require.NotNil(t, child.Event.Recurrence)
	}
}

func TestCreateEventsForContentBadRecurrenceWritesNothing(t *testing.T) {
	repo := &mockRepository{}
	factory := NewFactory(repo, zap.NewNop())
	content := testContentRef()

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	spec := &ScheduleSpec{
		StartDate:  start,
		EndDate:    start.Add(time.Hour),
		Timezone:   "UTC",
		Recurrence: &RecurrenceRule{Frequency: FrequencyDaily, Interval: 0},
	}

	result, err := factory.CreateEventsForContent(context.Background(), content, spec, uuid.New())
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, repo.events, "validation must surface before any write")
}

func TestCreateEventsForContentMasterFailureIsFatal(t *testing.T) {
	repo := &mockRepository{failTitles: []string{"Publish:"}}
	factory := NewFactory(repo, zap.NewNop())

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	spec := &ScheduleSpec{StartDate: start, EndDate: start.Add(time.Hour), Timezone: "UTC"}

	result, err := factory.CreateEventsForContent(context.Background(), testContentRef(), spec, uuid.New())
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, repo.events)
}

func TestCreateEventsForContentChildFailureIsPartial(t *testing.T) {
	// Only the twitter child fails; the master and the linkedin child land.
	repo := &mockRepository{failTitles: []string{"on twitter"}}
	factory := NewFactory(repo, zap.NewNop())
	content := testContentRef()

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	spec := &ScheduleSpec{
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Timezone:  "UTC",
		PlatformSchedules: []PlatformSchedule{
			{Platform: "twitter", ScheduledDate: start.Add(time.Hour)},
			{Platform: "linkedin", ScheduledDate: start.Add(2 * time.Hour)},
		},
	}

	result, err := factory.CreateEventsForContent(context.Background(), content, spec, uuid.New())
	require.NoError(t, err, "child failures must not abort the tree")

	assert.Equal(t, 1, result.FailedChildren())
	assert.Len(t, result.Events(), 2)
	assert.Len(t, repo.events, 2)
}

func TestUpdateEventsForContentTouchesMasterOnly(t *testing.T) {
	repo := &mockRepository{}
	factory := NewFactory(repo, zap.NewNop())
	content := testContentRef()
	userID := uuid.New()

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	spec := &ScheduleSpec{
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Timezone:  "UTC",
		PlatformSchedules: []PlatformSchedule{
			{Platform: "twitter", ScheduledDate: start.Add(time.Hour)},
		},
	}

	_, err := factory.CreateEventsForContent(context.Background(), content, spec, userID)
	require.NoError(t, err)

	newStart := start.AddDate(0, 0, 3)
	updated, err := factory.UpdateEventsForContent(context.Background(), content.ID, &ScheduleSpec{
		StartDate: newStart,
		EndDate:   newStart.Add(time.Hour),
		Timezone:  "Europe/Berlin",
	})
	require.NoError(t, err)

	assert.True(t, updated.IsMaster())
	assert.Equal(t, newStart, updated.StartDate)
	assert.Equal(t, "Europe/Berlin", updated.Timezone)

	events, err := repo.FindByContentID(context.Background(), content.ID)
	require.NoError(t, err)
	for _, e := range events {
		if !e.IsMaster() {
			assert.Equal(t, start.Add(time.Hour), e.StartDate, "children must stay untouched")
		}
	}
}

func TestUpdateEventsForContentNoEvents(t *testing.T) {
	factory := NewFactory(&mockRepository{}, zap.NewNop())

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	_, err := factory.UpdateEventsForContent(context.Background(), uuid.New(), &ScheduleSpec{
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Timezone:  "UTC",
	})
	assert.Error(t, err)
}

func TestRemoveEventsForContent(t *testing.T) {
	repo := &mockRepository{}
	factory := NewFactory(repo, zap.NewNop())
	content := testContentRef()

	start := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	spec := &ScheduleSpec{
		StartDate: start,
		EndDate:   start.Add(time.Hour),
		Timezone:  "UTC",
		Recurrence: &RecurrenceRule{
			Frequency:   FrequencyDaily,
			Interval:    1,
			Occurrences: intPtr(3),
		},
	}

	_, err := factory.CreateEventsForContent(context.Background(), content, spec, uuid.New())
	require.NoError(t, err)
	require.Len(t, repo.events, 3)

	require.NoError(t, factory.RemoveEventsForContent(context.Background(), content.ID))

	remaining, err := repo.FindByContentID(context.Background(), content.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
