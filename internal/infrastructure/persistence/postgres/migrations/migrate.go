package migrations

import (
	"fmt"

	"github.com/DeMaestro5/Khronos-api-sub001/internal/domain/calendar"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/domain/content"
	"github.com/DeMaestro5/Khronos-api-sub001/internal/infrastructure/persistence/postgres/connection"
	"go.uber.org/zap"
)

// AutoMigrate creates or updates the schema for every domain model.
func AutoMigrate(db *connection.Database, log *zap.Logger) error {
	log.Info("Running database migrations")

	// uuid_generate_v4 defaults need the extension present.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	models := []interface{}{
		&content.Content{},
		&calendar.CalendarEvent{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Info("Database migrations completed")
	return nil
}
