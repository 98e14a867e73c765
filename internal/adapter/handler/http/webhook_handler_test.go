package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/thugpay/payments/internal/domain/gateway"
	"github.com/thugpay/payments/internal/domain/model"
	"github.com/thugpay/payments/internal/domain/repository"
	"github.com/thugpay/payments/internal/usecase"
)

type stubRepo struct {
	payments      map[string]*model.Payment
	updates       int
	statusQueries []string
}

func (s *stubRepo) Create(ctx context.Context, payment *model.Payment) error {
	s.payments[payment.ReferenceID] = payment
	return nil
}

func (s *stubRepo) GetByReferenceID(ctx context.Context, referenceID string) (*model.Payment, error) {
	payment, ok := s.payments[referenceID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return payment, nil
}

func (s *stubRepo) GetByGatewayID(ctx context.Context, gatewayID string) (*model.Payment, error) {
	for _, payment := range s.payments {
		if payment.GatewayID != nil && *payment.GatewayID == gatewayID {
			return payment, nil
		}
	}
	return nil, repository.ErrPaymentNotFound
}

func (s *stubRepo) UpdateStatus(ctx context.Context, referenceID string, update repository.StatusUpdate) error {
	payment, ok := s.payments[referenceID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	payment.Status = update.Status
	s.updates++
	return nil
}

func (s *stubRepo) ListAll(ctx context.Context, limit, offset int) ([]*model.Payment, error) {
	return nil, nil
}

func (s *stubRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Payment, error) {
	return nil, nil
}

func (s *stubRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*model.Payment, error) {
	s.statusQueries = append(s.statusQueries, status)
	var matched []*model.Payment
	for _, payment := range s.payments {
		if payment.Status == status {
			matched = append(matched, payment)
		}
	}
	return matched, nil
}

type stubResolver struct {
	resp *gateway.StatusResponse
	err  error
}

func (s *stubResolver) ResolveStatus(ctx context.Context, gatewayID, hint string) (*gateway.StatusResponse, error) {
	return s.resp, s.err
}

type stubDispatcher struct {
	calls []string
}

func (s *stubDispatcher) DispatchAsync(referenceID, status string, payment *model.Payment) {
	s.calls = append(s.calls, referenceID+":"+status)
}

func webhookFixture(resolver *stubResolver) (*WebhookHandler, *stubRepo, *stubDispatcher) {
	gid := "ORDE_1"
	repo := &stubRepo{payments: map[string]*model.Payment{
		"R1": {ReferenceID: "R1", GatewayID: &gid, Status: model.StatusPending, PaymentMethod: model.MethodPix},
	}}
	dispatcher := &stubDispatcher{}
	reconciler := usecase.NewReconciler(repo, resolver, dispatcher, zap.NewNop())
	return NewWebhookHandler(reconciler, zap.NewNop()), repo, dispatcher
}

func postJSON(handler echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, handler(e.NewContext(req, rec))
}

func TestHandleGatewayNotification(t *testing.T) {
	t.Run("valid notification updates the record and acks", func(t *testing.T) {
		handler, repo, dispatcher := webhookFixture(&stubResolver{
			resp: &gateway.StatusResponse{ID: "ORDE_1", Status: "PAID", ReferenceID: "R1"},
		})

		rec, err := postJSON(handler.HandleGatewayNotification,
			`{"data":{"id":"ORDE_1"},"event":{"type":"ORDER.PAID"}}`)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"received":true`)
		assert.Equal(t, "PAID", repo.payments["R1"].Status)
		assert.Equal(t, []string{"R1:PAID"}, dispatcher.calls)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		handler, repo, _ := webhookFixture(&stubResolver{})

		rec, err := postJSON(handler.HandleGatewayNotification, `{"data":{"id":""},"event":{"type":"ORDER.PAID"}}`)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, repo.updates)
	})

	t.Run("unresolvable resource still acks without mutation", func(t *testing.T) {
		handler, repo, dispatcher := webhookFixture(&stubResolver{err: usecase.ErrGatewayUnreachable})

		rec, err := postJSON(handler.HandleGatewayNotification,
			`{"data":{"id":"GONE"},"event":{"type":"CHARGE.PAID"}}`)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, repo.updates)
		assert.Empty(t, dispatcher.calls)
	})
}

func TestHandleDirectWebhook(t *testing.T) {
	t.Run("valid webhook updates and acks", func(t *testing.T) {
		handler, repo, dispatcher := webhookFixture(&stubResolver{})

		rec, err := postJSON(handler.HandleDirectWebhook, `{"reference_id":"R1","status":"PAID"}`)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)
		assert.Equal(t, "PAID", repo.payments["R1"].Status)
		assert.Len(t, dispatcher.calls, 1)
	})

	t.Run("unknown reference still acks", func(t *testing.T) {
		handler, repo, dispatcher := webhookFixture(&stubResolver{})

		rec, err := postJSON(handler.HandleDirectWebhook, `{"reference_id":"missing","status":"PAID"}`)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, repo.updates)
		assert.Empty(t, dispatcher.calls)
	})

	t.Run("missing status is rejected before any mutation", func(t *testing.T) {
		handler, repo, _ := webhookFixture(&stubResolver{})

		rec, err := postJSON(handler.HandleDirectWebhook, `{"reference_id":"R1"}`)

		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, repo.updates)
	})
}
