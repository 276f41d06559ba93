package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/seatwise-io/seatwise/internal/infrastructure/persistence/models"
	"github.com/seatwise-io/seatwise/internal/shared/logger"
)

// AutoMigrateModels lists every persisted model in schema order.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.SubscriptionModel{},
		&models.SeatAssignmentModel{},
		&models.WebhookEventModel{},
		&models.EntitlementModel{},
		&models.OrgMemberModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the model structs. Used in
// development; production runs the versioned SQL scripts instead.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.automigrate"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	s.logger.Infow("starting auto migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("auto migration failed: %w", err)
	}

	s.logger.Infow("auto migration completed")
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
