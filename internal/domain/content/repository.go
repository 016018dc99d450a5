package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the read-side the scheduling engine needs from the content
// subsystem, plus the status write used when archiving.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Content, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]Content, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new content repository instance.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*Content, error) {
	var item Content
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]Content, error) {
	var items []Content
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Content{}).
		Where("id = ?", id).
		Update("status", status).Error
}
