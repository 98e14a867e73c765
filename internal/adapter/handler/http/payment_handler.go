package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/thugpay/payments/internal/domain/model"
	"github.com/thugpay/payments/internal/domain/repository"
	"github.com/thugpay/payments/internal/infrastructure/gateway/pagbank"
	"github.com/thugpay/payments/internal/usecase"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	gateway    *pagbank.Client
	repo       repository.PaymentRepository
	reconciler *usecase.Reconciler
	logger     *zap.Logger
}

func NewPaymentHandler(
	gateway *pagbank.Client,
	repo repository.PaymentRepository,
	reconciler *usecase.Reconciler,
	logger *zap.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		gateway:    gateway,
		repo:       repo,
		reconciler: reconciler,
		logger:     logger,
	}
}

type cardRequest struct {
	Number       string `json:"number" validate:"required"`
	ExpMonth     string `json:"expMonth" validate:"required"`
	ExpYear      string `json:"expYear" validate:"required"`
	SecurityCode string `json:"securityCode" validate:"required"`
	HolderName   string `json:"holderName" validate:"required"`
}

type createCreditCardRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail"`
	CustomerDocument string          `json:"customerDocument"`
	CustomerUserID   string          `json:"customerUserId" validate:"required"`
	Card             *cardRequest    `json:"card" validate:"required"`
	Installments     int             `json:"installments"`
}

type createPixRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail"`
	CustomerDocument string          `json:"customerDocument"`
	CustomerUserID   string          `json:"customerUserId" validate:"required"`
	ExpirationHours  int             `json:"expirationHours"`
}

type createCheckoutRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
	CustomerName     string          `json:"customerName"`
	CustomerEmail    string          `json:"customerEmail"`
	CustomerDocument string          `json:"customerDocument"`
	CustomerUserID   string          `json:"customerUserId" validate:"required"`
	ExpiresAt        string          `json:"expiresAt"`
	RedirectURL      string          `json:"redirectUrl"`
}

// CreateCreditCardPayment creates the internal record and a gateway
// charge for a credit card payment.
func (h *PaymentHandler) CreateCreditCardPayment(c echo.Context) error {
	var req createCreditCardRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid amount"})
	}
	if req.Card.Number == "" || req.Card.ExpMonth == "" || req.Card.ExpYear == "" ||
		req.Card.SecurityCode == "" || req.Card.HolderName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Valid card information is required"})
	}

	ctx := c.Request().Context()

	payment := &model.Payment{
		ReferenceID:      uuid.New().String(),
		Amount:           req.Amount,
		Description:      req.Description,
		Status:           model.StatusPending,
		PaymentMethod:    model.MethodCreditCard,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerDocument: req.CustomerDocument,
		CustomerUserID:   req.CustomerUserID,
	}

	if err := h.repo.Create(ctx, payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create credit card payment"})
	}

	resp, err := h.gateway.CreateCharge(ctx, &pagbank.ChargeInput{
		ReferenceID: payment.ReferenceID,
		Amount:      req.Amount,
		Description: req.Description,
		Customer:    customerInput(req.CustomerName, req.CustomerEmail, req.CustomerDocument, req.CustomerUserID),
		Card: pagbank.Card{
			Number:       req.Card.Number,
			ExpMonth:     req.Card.ExpMonth,
			ExpYear:      req.Card.ExpYear,
			SecurityCode: req.Card.SecurityCode,
			HolderName:   req.Card.HolderName,
		},
		Installments: req.Installments,
	})
	if err != nil {
		h.logger.Error("Failed to create gateway charge",
			zap.String("reference_id", payment.ReferenceID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to create credit card payment",
			"message": err.Error(),
		})
	}

	status := resp.Status
	if status == "" {
		status = model.StatusPending
	}
	receiptURL := pagbank.ReceiptURL(resp)

	if err := h.applyCreation(ctx, payment.ReferenceID, status, receiptURL, resp.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create credit card payment"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"payment": echo.Map{
			"referenceId": payment.ReferenceID,
			"amount":      req.Amount,
			"status":      status,
			"chargeId":    resp.ID,
			"receiptUrl":  receiptURL,
		},
	})
}

// CreatePixPayment creates the internal record and a gateway order with a
// PIX QR code.
func (h *PaymentHandler) CreatePixPayment(c echo.Context) error {
	var req createPixRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid amount"})
	}

	ctx := c.Request().Context()

	payment := &model.Payment{
		ReferenceID:      uuid.New().String(),
		Amount:           req.Amount,
		Description:      req.Description,
		Status:           model.StatusPending,
		PaymentMethod:    model.MethodPix,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerDocument: req.CustomerDocument,
		CustomerUserID:   req.CustomerUserID,
	}

	if err := h.repo.Create(ctx, payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create PIX payment"})
	}

	resp, err := h.gateway.CreateOrder(ctx, &pagbank.OrderInput{
		ReferenceID:    payment.ReferenceID,
		Amount:         req.Amount,
		Description:    req.Description,
		Customer:       customerInput(req.CustomerName, req.CustomerEmail, req.CustomerDocument, req.CustomerUserID),
		ExpirationDate: pixExpiration(req.ExpirationHours),
	})
	if err != nil {
		h.logger.Error("Failed to create gateway order",
			zap.String("reference_id", payment.ReferenceID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to create PIX payment",
			"message": err.Error(),
		})
	}

	status := resp.EffectiveStatus()
	if status == "" {
		status = model.StatusPending
	}
	pix := pagbank.ExtractPixInfo(resp)

	if err := h.applyCreation(ctx, payment.ReferenceID, status, pix.QRCodeImage, resp.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create PIX payment"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"payment": echo.Map{
			"referenceId": payment.ReferenceID,
			"amount":      req.Amount,
			"status":      status,
			"orderId":     resp.ID,
			"pix":         pix,
		},
	})
}

// CreateCheckoutPayment creates the internal record and a hosted gateway
// checkout session. The record stays PENDING until the gateway reports
// payment on the session's charge.
func (h *PaymentHandler) CreateCheckoutPayment(c echo.Context) error {
	var req createCheckoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid amount"})
	}

	ctx := c.Request().Context()

	payment := &model.Payment{
		ReferenceID:      uuid.New().String(),
		Amount:           req.Amount,
		Description:      req.Description,
		Status:           model.StatusPending,
		PaymentMethod:    model.MethodCheckout,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerDocument: req.CustomerDocument,
		CustomerUserID:   req.CustomerUserID,
	}

	if err := h.repo.Create(ctx, payment); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create checkout payment"})
	}

	resp, err := h.gateway.CreateCheckout(ctx, &pagbank.CheckoutInput{
		ReferenceID: payment.ReferenceID,
		Amount:      req.Amount,
		Description: req.Description,
		Customer:    customerInput(req.CustomerName, req.CustomerEmail, req.CustomerDocument, req.CustomerUserID),
		RedirectURL: req.RedirectURL,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		h.logger.Error("Failed to create gateway checkout",
			zap.String("reference_id", payment.ReferenceID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Failed to create checkout payment",
			"message": err.Error(),
		})
	}

	checkoutURL := pagbank.CheckoutURL(resp)

	if err := h.applyCreation(ctx, payment.ReferenceID, model.StatusPending, checkoutURL, resp.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create checkout payment"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"payment": echo.Map{
			"referenceId": payment.ReferenceID,
			"amount":      req.Amount,
			"status":      model.StatusPending,
			"checkoutId":  resp.ID,
			"checkoutUrl": checkoutURL,
		},
	})
}

// GetPaymentStatus is the pull path: reconcile against the gateway and
// return the (possibly refreshed) record.
func (h *PaymentHandler) GetPaymentStatus(c echo.Context) error {
	referenceID := c.Param("referenceId")

	payment, err := h.reconciler.CheckStatus(c.Request().Context(), referenceID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Payment not found"})
		}
		h.logger.Error("Failed to check payment status",
			zap.String("reference_id", referenceID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get payment status"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"payment": paymentView(payment),
	})
}

func (h *PaymentHandler) GetAllPayments(c echo.Context) error {
	limit, offset := pagination(c)

	payments, err := h.repo.ListAll(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get payments"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"count":    len(payments),
		"payments": paymentViews(payments),
	})
}

func (h *PaymentHandler) GetUserPayments(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "User ID is required"})
	}
	limit, offset := pagination(c)

	payments, err := h.repo.ListByUserID(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get user payments"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"count":    len(payments),
		"payments": paymentViews(payments),
	})
}

func (h *PaymentHandler) GetPaymentsByStatus(c echo.Context) error {
	status := c.Param("status")
	if status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Status parameter is required"})
	}
	limit, offset := pagination(c)

	payments, err := h.repo.ListByStatus(c.Request().Context(), strings.ToUpper(status), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get payments by status"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"count":    len(payments),
		"status":   status,
		"payments": paymentViews(payments),
	})
}

// applyCreation records the outcome of the gateway creation call: the
// assigned gateway id, the initial gateway status and the payment URL
// (receipt, QR image or checkout page).
func (h *PaymentHandler) applyCreation(ctx context.Context, referenceID, status, paymentURL, gatewayID string) error {
	update := repository.StatusUpdate{
		Status:    status,
		GatewayID: &gatewayID,
	}
	if paymentURL != "" {
		update.PaymentURL = &paymentURL
	}

	if err := h.repo.UpdateStatus(ctx, referenceID, update); err != nil {
		h.logger.Error("Failed to record gateway creation result",
			zap.String("reference_id", referenceID),
			zap.String("gateway_id", gatewayID),
			zap.Error(err))
		return err
	}
	return nil
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func pagination(c echo.Context) (int, int) {
	limit := 100
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

func customerInput(name, email, document, userID string) pagbank.Customer {
	return pagbank.Customer{
		Name:     name,
		Email:    email,
		Document: document,
		UserID:   userID,
	}
}

// pixExpiration converts the caller's expirationHours into the absolute
// timestamp the gateway expects; zero defers to the gateway default.
func pixExpiration(hours int) string {
	if hours <= 0 {
		return ""
	}
	return time.Now().Add(time.Duration(hours) * time.Hour).Format(time.RFC3339)
}

func paymentView(p *model.Payment) echo.Map {
	return echo.Map{
		"referenceId":      p.ReferenceID,
		"amount":           p.Amount,
		"description":      p.Description,
		"status":           p.Status,
		"statusMessage":    p.StatusMessage(),
		"customerName":     p.CustomerName,
		"customerEmail":    p.CustomerEmail,
		"customerDocument": p.CustomerDocument,
		"customerUserId":   p.CustomerUserID,
		"paymentMethod":    p.PaymentMethod,
		"paymentUrl":       p.PaymentURL,
		"createdAt":        p.CreatedAt,
		"updatedAt":        p.UpdatedAt,
	}
}

func paymentViews(payments []*model.Payment) []echo.Map {
	views := make([]echo.Map, 0, len(payments))
	for _, p := range payments {
		views = append(views, paymentView(p))
	}
	return views
}
