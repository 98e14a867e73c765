package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/thugpay/payments/internal/config"
	"github.com/thugpay/payments/internal/domain/model"
	"go.uber.org/zap"
)

// Outcome is the terminal result of a notification dispatch.
type Outcome string

const (
	OutcomeDelivered   Outcome = "delivered"
	OutcomeFailedFinal Outcome = "failed_final"
)

const (
	defaultRetryCount = 3
	defaultRetryDelay = 60 * time.Second
	defaultTimeout    = 10 * time.Second
)

// Notifier delivers payment status changes to the client system's webhook
// endpoint with bounded retries. Delivery is at-least-once; after the
// retry budget is spent the failure is logged and not re-queued.
type Notifier struct {
	url        string
	enabled    bool
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     *zap.Logger
	wg         sync.WaitGroup
}

// NewNotifier creates a notifier from configuration, applying the default
// retry budget when values are unset.
func NewNotifier(cfg *config.NotificationConfig, logger *zap.Logger) *Notifier {
	retryCount := cfg.RetryCount
	if retryCount <= 0 {
		retryCount = defaultRetryCount
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Notifier{
		url:        cfg.URL,
		enabled:    cfg.Enabled,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type statusEnvelope struct {
	Event         string         `json:"event"`
	ReferenceID   string         `json:"referenceId"`
	Status        string         `json:"status"`
	StatusMessage string         `json:"statusMessage"`
	Timestamp     string         `json:"timestamp"`
	Payment       *model.Payment `json:"payment"`
}

// Dispatch delivers a status-change event, retrying with the configured
// delay between attempts. When the notifier is disabled it reports
// Delivered without sending, so callers never branch on enablement.
func (n *Notifier) Dispatch(referenceID, status string, payment *model.Payment) Outcome {
	if !n.enabled {
		n.logger.Debug("Client webhook notifications are disabled",
			zap.String("reference_id", referenceID))
		return OutcomeDelivered
	}

	envelope := statusEnvelope{
		Event:         "payment_status_changed",
		ReferenceID:   referenceID,
		Status:        status,
		StatusMessage: model.Normalize(status),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Payment:       payment,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		n.logger.Error("Failed to encode notification envelope",
			zap.String("reference_id", referenceID),
			zap.Error(err))
		return OutcomeFailedFinal
	}

	for attempt := 1; attempt <= n.retryCount; attempt++ {
		err := n.send(body)
		if err == nil {
			n.logger.Info("Client webhook notification delivered",
				zap.String("reference_id", referenceID),
				zap.String("status", status),
				zap.Int("attempt", attempt))
			return OutcomeDelivered
		}

		n.logger.Warn("Client webhook notification attempt failed",
			zap.String("reference_id", referenceID),
			zap.Int("attempt", attempt),
			zap.Int("retry_count", n.retryCount),
			zap.Error(err))

		if attempt < n.retryCount {
			time.Sleep(n.retryDelay)
		}
	}

	n.logger.Error("Client webhook notification failed after all attempts",
		zap.String("reference_id", referenceID),
		zap.String("status", status),
		zap.Int("retry_count", n.retryCount))
	return OutcomeFailedFinal
}

// DispatchAsync runs Dispatch on its own goroutine so the triggering
// request never waits on delivery or its retry delays. The outcome is
// observable through logging only.
func (n *Notifier) DispatchAsync(referenceID, status string, payment *model.Payment) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.Dispatch(referenceID, status, payment)
	}()
}

// Wait blocks until all in-flight dispatches finish. Used on shutdown.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) send(body []byte) error {
	req, err := http.NewRequest(http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ThugPayments-API/1.0")
	req.Header.Set("X-Notification-Event", "payment_status_changed")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &unexpectedStatusError{code: resp.StatusCode}
	}
	return nil
}

type unexpectedStatusError struct {
	code int
}

func (e *unexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d", e.code)
}
