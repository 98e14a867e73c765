package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thugpay/payments/internal/domain/model"
	"github.com/thugpay/payments/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if err != nil {
		r.logger.Error("Failed to create payment",
			zap.String("reference_id", payment.ReferenceID),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByReferenceID(ctx context.Context, referenceID string) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPaymentNotFound
		}
		r.logger.Error("Failed to get payment by reference ID",
			zap.String("reference_id", referenceID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) GetByGatewayID(ctx context.Context, gatewayID string) (*model.Payment, error) {
	var payment model.Payment

	err := r.db.WithContext(ctx).
		Where("gateway_id = ?", gatewayID).
		First(&payment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPaymentNotFound
		}
		r.logger.Error("Failed to get payment by gateway ID",
			zap.String("gateway_id", gatewayID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, referenceID string, update repository.StatusUpdate) error {
	updates := map[string]interface{}{
		"status": update.Status,
	}
	if update.PaymentURL != nil {
		updates["payment_url"] = *update.PaymentURL
	}
	if update.GatewayID != nil {
		updates["gateway_id"] = *update.GatewayID
	}
	if update.UpdatedAt.IsZero() {
		updates["updated_at"] = time.Now()
	} else {
		updates["updated_at"] = update.UpdatedAt
	}

	result := r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("reference_id = ?", referenceID).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to update payment status",
			zap.String("reference_id", referenceID),
			zap.String("status", update.Status),
			zap.Error(result.Error))
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return repository.ErrPaymentNotFound
	}

	return nil
}

func (r *paymentRepository) ListAll(ctx context.Context, limit, offset int) ([]*model.Payment, error) {
	var payments []*model.Payment

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error

	if err != nil {
		r.logger.Error("Failed to list payments", zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Payment, error) {
	var payments []*model.Payment

	err := r.db.WithContext(ctx).
		Where("customer_user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error

	if err != nil {
		r.logger.Error("Failed to list payments by user",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}

func (r *paymentRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*model.Payment, error) {
	var payments []*model.Payment

	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error

	if err != nil {
		r.logger.Error("Failed to list payments by status",
			zap.String("status", status),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, nil
}
