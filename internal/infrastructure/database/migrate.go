package database

import (
	"github.com/thugpay/payments/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(&model.Payment{}); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	// Custom indexes GORM doesn't handle automatically. The partial
	// unique index keeps two records from claiming the same gateway
	// resource while allowing many records with no gateway id yet.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS unique_payments_gateway_id ON payments (gateway_id) WHERE gateway_id IS NOT NULL`).Error; err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (status)`).Error; err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}
