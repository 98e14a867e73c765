package database

import (
	"github.com/thugpay/payments/internal/adapter/repository"
	domainRepo "github.com/thugpay/payments/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Payment domainRepo.PaymentRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Payment: repository.NewPaymentRepository(db, logger),
	}
}
