package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Drafter5000/Drafter5000-sub000/internal/infrastructure/persistence/models"
	"github.com/Drafter5000/Drafter5000-sub000/internal/shared/logger"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PlanModel{},
		&models.BillingProfileModel{},
		&models.SubscriptionRecordModel{},
		&models.ArticleModel{},
	}
}

// GormAutoMigrateStrategy migrates the schema directly from the model
// structs. Development only.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy() Strategy {
	return &GormAutoMigrateStrategy{
		logger: logger.NewLogger().With("component", "migration.auto"),
	}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB, models ...interface{}) error {
	s.logger.Infow("starting gorm auto migration", "models_count", len(models))

	if err := db.AutoMigrate(models...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	s.logger.Infow("auto migration completed successfully")
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}
