package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods supported by the gateway. PIX payments are created as
// gateway orders; credit card payments as charges; hosted checkouts as
// checkout sessions.
const (
	MethodCreditCard = "CREDIT_CARD"
	MethodPix        = "PIX"
	MethodCheckout   = "CHECKOUT"
)

// Payment is the unit of truth for one payment attempt. ReferenceID is
// generated before any gateway call and is the idempotency key correlating
// the record to every external interaction; GatewayID is assigned by the
// gateway once the charge/order/checkout is accepted.
type Payment struct {
	ReferenceID      string          `gorm:"column:reference_id;primaryKey;size:36" json:"referenceId"`
	GatewayID        *string         `gorm:"column:gateway_id;size:100;index" json:"gatewayId,omitempty"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description      string          `json:"description,omitempty"`
	Status           string          `gorm:"size:50;not null" json:"status"`
	PaymentMethod    string          `gorm:"column:payment_method;size:20;not null" json:"paymentMethod"`
	PaymentURL       *string         `gorm:"column:payment_url" json:"paymentUrl,omitempty"`
	CustomerName     string          `gorm:"column:customer_name" json:"customerName,omitempty"`
	CustomerEmail    string          `gorm:"column:customer_email" json:"customerEmail,omitempty"`
	CustomerDocument string          `gorm:"column:customer_document" json:"customerDocument,omitempty"`
	CustomerUserID   string          `gorm:"column:customer_user_id;index" json:"customerUserId,omitempty"`
	CreatedAt        time.Time       `gorm:"default:now()" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"default:now()" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// StatusMessage returns the canonical reading of the stored status.
func (p *Payment) StatusMessage() string {
	return Normalize(p.Status)
}
