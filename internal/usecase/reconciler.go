package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/thugpay/payments/internal/domain/gateway"
	"github.com/thugpay/payments/internal/domain/model"
	"github.com/thugpay/payments/internal/domain/repository"
	"go.uber.org/zap"
)

// ErrInvalidNotification is returned when an inbound notification is
// missing the resource id or the event type.
var ErrInvalidNotification = errors.New("invalid notification payload")

// statusResolver is the resolver slice the reconciler depends on.
type statusResolver interface {
	ResolveStatus(ctx context.Context, gatewayID, hint string) (*gateway.StatusResponse, error)
}

// dispatcher is the notification slice the reconciler depends on.
// Dispatch runs detached from the calling request.
type dispatcher interface {
	DispatchAsync(referenceID, status string, payment *model.Payment)
}

// GatewayNotification is the inbound webhook shape the gateway posts on
// status events: a resource id plus an event type naming the resource
// kind. The notification body's own status field is never trusted; the
// gateway is re-queried instead.
type GatewayNotification struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Event struct {
		Type string `json:"type"`
	} `json:"event"`
}

// Reconciler applies the gateway's current view of a payment to the
// stored record and triggers downstream notification on change. It is
// the single writer of post-creation status transitions.
type Reconciler struct {
	repo     repository.PaymentRepository
	resolver statusResolver
	notifier dispatcher
	logger   *zap.Logger
}

// NewReconciler creates the reconciliation engine.
func NewReconciler(
	repo repository.PaymentRepository,
	resolver statusResolver,
	notifier dispatcher,
	logger *zap.Logger,
) *Reconciler {
	return &Reconciler{
		repo:     repo,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
	}
}

// CheckStatus is the pull path: load the record and, when the gateway has
// assigned a resource id, refresh the stored status from the gateway's
// answer. Resolver failures are swallowed so the caller gets the stored
// status rather than an error; a stale read beats a failed one. The
// updated_at timestamp only advances when the status actually changed.
func (r *Reconciler) CheckStatus(ctx context.Context, referenceID string) (*model.Payment, error) {
	payment, err := r.repo.GetByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	if payment.GatewayID == nil {
		return payment, nil
	}

	resp, err := r.resolver.ResolveStatus(ctx, *payment.GatewayID, payment.PaymentMethod)
	if err != nil {
		r.logger.Warn("Failed to refresh status from gateway",
			zap.String("reference_id", referenceID),
			zap.String("gateway_id", *payment.GatewayID),
			zap.Error(err))
		return payment, nil
	}

	current := resp.EffectiveStatus()
	if current == "" || current == payment.Status {
		return payment, nil
	}

	r.warnOnRegression(payment, current)

	now := time.Now()
	if err := r.repo.UpdateStatus(ctx, referenceID, repository.StatusUpdate{
		Status:    current,
		UpdatedAt: now,
	}); err != nil {
		return nil, err
	}

	payment.Status = current
	payment.UpdatedAt = now
	return payment, nil
}

// ProcessGatewayNotification is the push path. The notification only
// tells us which resource changed; the gateway is queried for the actual
// status, which makes duplicate and reordered deliveries converge on the
// same state. When the response echoes no reference id the record is
// deliberately looked up by the stored gateway id instead of dropping the
// notification, since the gateway id correlates just as unambiguously.
// A nil, nil return means the notification was absorbed without touching
// the record and the sender should still see success, so the gateway does
// not keep retrying deliveries we cannot use.
func (r *Reconciler) ProcessGatewayNotification(ctx context.Context, notif *GatewayNotification) (*model.Payment, error) {
	if notif == nil || notif.Data.ID == "" || notif.Event.Type == "" {
		return nil, ErrInvalidNotification
	}

	resp, err := r.resolver.ResolveStatus(ctx, notif.Data.ID, notif.Event.Type)
	if err != nil {
		r.logger.Warn("Could not resolve notified resource, ignoring notification",
			zap.String("gateway_id", notif.Data.ID),
			zap.String("event_type", notif.Event.Type),
			zap.Error(err))
		return nil, nil
	}

	status := resp.EffectiveStatus()
	if status == "" {
		r.logger.Warn("Notification response carries no status, ignoring",
			zap.String("gateway_id", notif.Data.ID))
		return nil, nil
	}

	// Correlate by the echoed reference id; when the gateway omits it,
	// fall back to the stored gateway id.
	var payment *model.Payment
	if referenceID := echoedReferenceID(resp); referenceID != "" {
		payment, err = r.repo.GetByReferenceID(ctx, referenceID)
	} else {
		payment, err = r.repo.GetByGatewayID(ctx, notif.Data.ID)
	}
	if errors.Is(err, repository.ErrPaymentNotFound) {
		r.logger.Warn("Notification references unknown payment, ignoring",
			zap.String("gateway_id", notif.Data.ID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	referenceID := payment.ReferenceID

	r.warnOnRegression(payment, status)

	// The gateway was just queried and is the source of truth on this
	// path, so the status is persisted without a diff check.
	now := time.Now()
	if err := r.repo.UpdateStatus(ctx, referenceID, repository.StatusUpdate{
		Status:    status,
		UpdatedAt: now,
	}); err != nil {
		return nil, err
	}

	payment.Status = status
	payment.UpdatedAt = now
	r.notifier.DispatchAsync(payment.ReferenceID, payment.Status, payment)

	r.logger.Info("Gateway notification applied",
		zap.String("reference_id", referenceID),
		zap.String("gateway_id", notif.Data.ID),
		zap.String("status", status))

	return payment, nil
}

// ProcessDirectWebhook is the legacy push variant: the caller posts the
// reference id and status directly and that status is trusted as-is, with
// no gateway round-trip. As on the notification path, an unknown
// reference is absorbed so a well-formed request always acks.
func (r *Reconciler) ProcessDirectWebhook(ctx context.Context, referenceID, status string) error {
	if referenceID == "" || status == "" {
		return ErrInvalidNotification
	}

	if err := r.repo.UpdateStatus(ctx, referenceID, repository.StatusUpdate{Status: status}); err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			r.logger.Warn("Webhook references unknown payment, ignoring",
				zap.String("reference_id", referenceID),
				zap.String("status", status))
			return nil
		}
		return err
	}

	payment, err := r.repo.GetByReferenceID(ctx, referenceID)
	if err != nil {
		r.logger.Error("Failed to reload payment after webhook update",
			zap.String("reference_id", referenceID),
			zap.Error(err))
		return nil
	}

	r.notifier.DispatchAsync(payment.ReferenceID, payment.Status, payment)
	return nil
}

// warnOnRegression flags status transitions away from PAID. The gateway
// is treated as authoritative so the write still happens, but a stale or
// forged signal downgrading a paid record is worth an operator's look.
func (r *Reconciler) warnOnRegression(payment *model.Payment, next string) {
	if model.Normalize(payment.Status) == model.StatusPaid && model.Normalize(next) != model.StatusPaid {
		r.logger.Warn("Payment status regressing from PAID",
			zap.String("reference_id", payment.ReferenceID),
			zap.String("from", payment.Status),
			zap.String("to", next))
	}
}

// echoedReferenceID extracts the reference our system sent at creation
// from a gateway response. Checkout charges are created with a "charge-"
// prefix on the reference, which is stripped to recover the record key.
func echoedReferenceID(resp *gateway.StatusResponse) string {
	ref := resp.ReferenceID
	if ref == "" && len(resp.Charges) > 0 {
		ref = resp.Charges[0].ReferenceID
	}
	return strings.TrimPrefix(ref, "charge-")
}
