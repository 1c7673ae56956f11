package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vintageCRM/domain"
	"vintageCRM/pkg/config"
)

// InitPostgres opens the tenant database and migrates the schema.
func InitPostgres(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates/updates the tables for every aggregate the pipeline owns.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&domain.Tenant{},
		&domain.Client{},
		&domain.Product{},
		&domain.Order{},
		&domain.Run{},
		&domain.Recommendation{},
		&domain.AuditViolation{},
		&domain.NextAction{},
		&domain.RunSummary{},
		&domain.CampaignDispatch{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
