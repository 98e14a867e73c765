package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/thugpay/payments/internal/usecase"
	"go.uber.org/zap"
)

// WebhookHandler receives status notifications: the gateway's own
// webhook (resource id + event type, re-queried against the gateway) and
// a direct variant for callers posting the status themselves.
type WebhookHandler struct {
	reconciler *usecase.Reconciler
	logger     *zap.Logger
}

func NewWebhookHandler(reconciler *usecase.Reconciler, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleGatewayNotification processes a gateway-initiated notification.
// Once the payload shape is valid the sender always sees success, even
// when the notification cannot be resolved or correlated; otherwise the
// gateway would retry deliveries we can never use.
func (h *WebhookHandler) HandleGatewayNotification(c echo.Context) error {
	var notif usecase.GatewayNotification
	if err := c.Bind(&notif); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid notification payload"})
	}

	h.logger.Info("Gateway notification received",
		zap.String("resource_id", notif.Data.ID),
		zap.String("event_type", notif.Event.Type))

	_, err := h.reconciler.ProcessGatewayNotification(c.Request().Context(), &notif)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidNotification) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
		}
		h.logger.Error("Failed to process gateway notification",
			zap.String("resource_id", notif.Data.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to process notification"})
	}

	return c.JSON(http.StatusOK, echo.Map{"received": true})
}

type directWebhookRequest struct {
	ID          string `json:"id"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
}

// HandleDirectWebhook processes the legacy variant where the caller
// posts the reference id and status directly, with no gateway
// round-trip.
func (h *WebhookHandler) HandleDirectWebhook(c echo.Context) error {
	var req directWebhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	err := h.reconciler.ProcessDirectWebhook(c.Request().Context(), req.ReferenceID, req.Status)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidNotification) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
		}
		h.logger.Error("Failed to process webhook",
			zap.String("reference_id", req.ReferenceID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to process webhook"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
