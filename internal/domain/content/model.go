package content

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
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

// Content is a plannable content item. The scheduling engine only reads the
// identity, platform, type, and tag fields; everything else belongs to the
// content authoring subsystem.
type Content struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index:idx_content_user"`
	Title       string         `json:"title" gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Type        string         `json:"type" gorm:"type:varchar(50);not null"`
	Status      Status         `json:"status" gorm:"type:varchar(20);not null;default:'draft'"`
	Platform    StringArray    `json:"platform" gorm:"type:varchar[]"`
	Tags        StringArray    `json:"tags" gorm:"type:varchar[]"`
	Metadata    datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;default:current_timestamp"`
	UpdatedAt   time.Time      `json:"updated_at" gorm:"not null;default:current_timestamp"`
}

func (Content) TableName() string { return "contents" }

// BeforeCreate hook for UUID generation
func (c *Content) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
