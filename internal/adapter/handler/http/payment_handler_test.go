package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/thugpay/payments/internal/domain/model"
)

// Records store the gateway's raw status, so the filter must match it
// verbatim apart from casing.
func TestGetPaymentsByStatus_MatchesRawStoredStatus(t *testing.T) {
	repo := &stubRepo{payments: map[string]*model.Payment{
		"R1": {ReferenceID: "R1", Status: "PENDING", PaymentMethod: model.MethodCreditCard},
		"R2": {ReferenceID: "R2", Status: "WAITING", PaymentMethod: model.MethodPix},
	}}
	handler := NewPaymentHandler(nil, repo, nil, zap.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("status")
	c.SetParamValues("pending")

	assert.NoError(t, handler.GetPaymentsByStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"PENDING"}, repo.statusQueries)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), `"referenceId":"R1"`)
}
