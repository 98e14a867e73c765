package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/thugpay/payments/internal/domain/gateway"
	"github.com/thugpay/payments/internal/domain/model"
	"go.uber.org/zap"
)

// ErrGatewayUnreachable reports that no gateway query variant produced a
// usable answer for a resource id.
var ErrGatewayUnreachable = errors.New("gateway unreachable")

// statusSource is one gateway query variant. The resolver probes sources
// in priority order until one answers.
type statusSource interface {
	name() string
	fetch(ctx context.Context, id string) (*gateway.StatusResponse, error)
}

type chargeSource struct {
	client gateway.StatusClient
}

func (s chargeSource) name() string { return "charge" }

func (s chargeSource) fetch(ctx context.Context, id string) (*gateway.StatusResponse, error) {
	return s.client.GetCharge(ctx, id)
}

type orderSource struct {
	client gateway.StatusClient
}

func (s orderSource) name() string { return "order" }

func (s orderSource) fetch(ctx context.Context, id string) (*gateway.StatusResponse, error) {
	return s.client.GetOrder(ctx, id)
}

// StatusResolver decides which gateway query to issue for a resource id.
// A hint (stored payment method or a notification event type) selects the
// primary variant; the other variant is the fallback when the primary
// fails, since notification hints can be absent or wrong.
type StatusResolver struct {
	charge statusSource
	order  statusSource
	logger *zap.Logger
}

// NewStatusResolver creates a resolver over the charge and order query
// variants of the given client.
func NewStatusResolver(client gateway.StatusClient, logger *zap.Logger) *StatusResolver {
	return &StatusResolver{
		charge: chargeSource{client: client},
		order:  orderSource{client: client},
		logger: logger,
	}
}

// ResolveStatus fetches the gateway's current view of the resource. The
// first variant that answers without error wins; if both fail the
// resolution fails with ErrGatewayUnreachable wrapping the last error.
func (r *StatusResolver) ResolveStatus(ctx context.Context, gatewayID, hint string) (*gateway.StatusResponse, error) {
	sources := []statusSource{r.charge, r.order}
	if orderFirst(gatewayID, hint) {
		sources = []statusSource{r.order, r.charge}
	}

	var lastErr error
	for _, src := range sources {
		resp, err := src.fetch(ctx, gatewayID)
		if err == nil {
			return resp, nil
		}

		r.logger.Debug("Gateway status query failed",
			zap.String("source", src.name()),
			zap.String("gateway_id", gatewayID),
			zap.Error(err))
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %s: %v", ErrGatewayUnreachable, gatewayID, lastErr)
}

// orderFirst reports whether order semantics should be probed before
// charge semantics. PIX payments live behind orders; notification event
// types name the resource kind; PagBank order ids carry an ORDE_ prefix.
func orderFirst(gatewayID, hint string) bool {
	h := strings.ToUpper(hint)
	if h == model.MethodPix || strings.Contains(h, "ORDER") {
		return true
	}
	return strings.HasPrefix(strings.ToUpper(gatewayID), "ORDE_")
}
