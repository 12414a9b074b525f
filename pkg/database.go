package pkg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/models"
)

// InitDatabase opens the Postgres connection and runs schema migration.
// TranslateError is required so unique violations surface as
// gorm.ErrDuplicatedKey.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Silent
	if cfg.Environment != "production" {
		gormLogLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshSession{},
		&models.ApprovedEmail{},
		&models.TimetableEvent{},
		&models.EmailBatch{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
