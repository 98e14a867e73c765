package repository

import (
	"context"
	"errors"
	"time"

	"github.com/thugpay/payments/internal/domain/model"
)

// ErrPaymentNotFound is returned when no record matches the given key.
var ErrPaymentNotFound = errors.New("payment not found")

// StatusUpdate carries the mutable fields of a status write. Status is
// always written; PaymentURL and GatewayID are only written when non-nil,
// which keeps reconciliation writes from clearing creation-time fields.
type StatusUpdate struct {
	Status     string
	PaymentURL *string
	GatewayID  *string
	// UpdatedAt lets callers pin the bump time; zero means now.
	UpdatedAt time.Time
}

// PaymentRepository is the access contract over the payment record store.
// ReferenceID is the primary key; GatewayID is a secondary lookup key with
// at most one reference per gateway resource.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByReferenceID(ctx context.Context, referenceID string) (*model.Payment, error)
	GetByGatewayID(ctx context.Context, gatewayID string) (*model.Payment, error)
	UpdateStatus(ctx context.Context, referenceID string, update StatusUpdate) error
	ListAll(ctx context.Context, limit, offset int) ([]*model.Payment, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Payment, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*model.Payment, error)
}
