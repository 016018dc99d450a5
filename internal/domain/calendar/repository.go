package calendar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the event store boundary. Range filtering for the optimal
// time scorer happens in memory after FindByUserID; no date-range query is
// part of this contract.
type Repository interface {
	Create(ctx context.Context, event *CalendarEvent) (*CalendarEvent, error)
	Update(ctx context.Context, event *CalendarEvent) (*CalendarEvent, error)
	FindByID(ctx context.Context, id uuid.UUID) (*CalendarEvent, error)
	FindByContentID(ctx context.Context, contentID uuid.UUID) ([]CalendarEvent, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]CalendarEvent, error)
	RemoveByContentID(ctx context.Context, contentID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new calendar event repository backed by gorm.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *CalendarEvent) (*CalendarEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}
	return event, nil
}

func (r *repository) Update(ctx context.Context, event *CalendarEvent) (*CalendarEvent, error) {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return nil, fmt.Errorf("update calendar event %s: %w", event.ID, err)
	}
	return event, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*CalendarEvent, error) {
	var event CalendarEvent
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) FindByContentID(ctx context.Context, contentID uuid.UUID) ([]CalendarEvent, error) {
	var events []CalendarEvent
	err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]CalendarEvent, error) {
	var events []CalendarEvent
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) RemoveByContentID(ctx context.Context, contentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Delete(&CalendarEvent{}).Error
}
