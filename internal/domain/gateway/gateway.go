package gateway

import (
	"context"
	"errors"
)

// ErrResourceNotFound reports that the gateway knows nothing about the
// queried resource id.
var ErrResourceNotFound = errors.New("gateway resource not found")

// StatusClient is the slice of the gateway client used by status
// reconciliation: one lookup per resource kind.
type StatusClient interface {
	// GetCharge fetches the current state of a charge resource.
	GetCharge(ctx context.Context, chargeID string) (*StatusResponse, error)

	// GetOrder fetches the current state of an order resource. PIX
	// payments live behind order semantics.
	GetOrder(ctx context.Context, orderID string) (*StatusResponse, error)
}

// StatusResponse is the gateway's native view of a charge or order,
// reduced to the fields reconciliation consumes. ReferenceID echoes the
// reference_id sent at creation and is the primary way a blind
// notification is correlated back to an internal record.
type StatusResponse struct {
	ID          string   `json:"id"`
	Status      string   `json:"status"`
	ReferenceID string   `json:"reference_id"`
	Links       []Link   `json:"links,omitempty"`
	QRCodes     []QRCode `json:"qr_codes,omitempty"`
	Charges     []Charge `json:"charges,omitempty"`
}

// Charge is a nested charge inside an order response. Order status lives
// on its charges, not on the order envelope.
type Charge struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ReferenceID string `json:"reference_id"`
}

// Link is a HATEOAS link attached to gateway resources (receipt,
// checkout, QR code image).
type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Media string `json:"media,omitempty"`
	Type  string `json:"type,omitempty"`
}

// QRCode is the PIX QR code block of an order response.
type QRCode struct {
	ID             string `json:"id,omitempty"`
	Text           string `json:"text,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	Links          []Link `json:"links,omitempty"`
}

// EffectiveStatus returns the order's own status or, when absent, the
// status of its first charge. PagBank order payloads report payment state
// on the nested charge.
func (r *StatusResponse) EffectiveStatus() string {
	if r.Status != "" {
		return r.Status
	}
	if len(r.Charges) > 0 {
		return r.Charges[0].Status
	}
	return ""
}

// Error is a structured gateway API failure (non-2xx response).
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
