package pagbank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/thugpay/payments/internal/config"
	"github.com/thugpay/payments/internal/domain/gateway"
	"go.uber.org/zap"
)

const (
	sandboxBaseURL    = "https://sandbox.api.pagseguro.com"
	productionBaseURL = "https://api.pagseguro.com"

	requestTimeout = 30 * time.Second
)

// Client is the PagBank REST API client. It covers charge, order and
// checkout creation along with the two status lookups reconciliation
// depends on.
type Client struct {
	baseURL         string
	token           string
	notificationURL string
	redirectURL     string
	client          *http.Client
	logger          *zap.Logger
}

// NewClient creates a PagBank client for the configured environment.
func NewClient(cfg *config.GatewayConfig, logger *zap.Logger) *Client {
	baseURL := productionBaseURL
	if cfg.Environment == "sandbox" {
		baseURL = sandboxBaseURL
	}

	return &Client{
		baseURL:         baseURL,
		token:           cfg.Token,
		notificationURL: cfg.NotificationURL,
		redirectURL:     cfg.RedirectURL,
		client:          &http.Client{Timeout: requestTimeout},
		logger:          logger,
	}
}

// CreateCharge creates a credit card charge.
// POST /charges
func (c *Client) CreateCharge(ctx context.Context, input *ChargeInput) (*gateway.StatusResponse, error) {
	return c.post(ctx, "/charges", c.chargePayload(input))
}

// CreateOrder creates a PIX order with a QR code.
// POST /orders
func (c *Client) CreateOrder(ctx context.Context, input *OrderInput) (*gateway.StatusResponse, error) {
	return c.post(ctx, "/orders", c.orderPayload(input))
}

// CreateCheckout creates a hosted checkout session.
// POST /checkouts
func (c *Client) CreateCheckout(ctx context.Context, input *CheckoutInput) (*gateway.StatusResponse, error) {
	return c.post(ctx, "/checkouts", c.checkoutPayload(input))
}

// GetCharge fetches the current state of a charge.
// GET /charges/{id}
func (c *Client) GetCharge(ctx context.Context, chargeID string) (*gateway.StatusResponse, error) {
	return c.get(ctx, "/charges/"+chargeID)
}

// GetOrder fetches the current state of an order.
// GET /orders/{id}
func (c *Client) GetOrder(ctx context.Context, orderID string) (*gateway.StatusResponse, error) {
	return c.get(ctx, "/orders/"+orderID)
}

func (c *Client) post(ctx context.Context, path string, payload any) (*gateway.StatusResponse, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway request: %w", err)
	}

	return c.do(req, path)
}

func (c *Client) get(ctx context.Context, path string) (*gateway.StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway request: %w", err)
	}

	return c.do(req, path)
}

func (c *Client) do(req *http.Request, path string) (*gateway.StatusResponse, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("PagBank request failed",
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, gateway.ErrResourceNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("PagBank API error",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("response", string(respBody)))

		var errResp struct {
			ErrorMessages []struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error_messages"`
		}
		json.Unmarshal(respBody, &errResp)

		apiErr := &gateway.Error{
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: "PagBank API request rejected",
			Details: string(respBody),
		}
		if len(errResp.ErrorMessages) > 0 {
			apiErr.Code = errResp.ErrorMessages[0].Code
			apiErr.Message = errResp.ErrorMessages[0].Description
		}
		return nil, apiErr
	}

	var result gateway.StatusResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse gateway response: %w", err)
	}

	c.logger.Debug("PagBank response received",
		zap.String("path", path),
		zap.String("id", result.ID),
		zap.String("status", result.Status))

	return &result, nil
}
