package pagbank

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/thugpay/payments/internal/domain/gateway"
)

// Customer identifies the paying customer on the gateway side.
type Customer struct {
	Name     string
	Email    string
	Document string
	UserID   string
}

// Card carries credit card data as received from the caller. It is sent
// to the gateway and never persisted.
type Card struct {
	Number       string
	ExpMonth     string
	ExpYear      string
	SecurityCode string
	HolderName   string
}

// ChargeInput is the data needed to create a credit card charge.
type ChargeInput struct {
	ReferenceID  string
	Amount       decimal.Decimal
	Description  string
	Customer     Customer
	Card         Card
	Installments int
}

// OrderInput is the data needed to create a PIX order.
type OrderInput struct {
	ReferenceID    string
	Amount         decimal.Decimal
	Description    string
	Customer       Customer
	ExpirationDate string
}

// CheckoutInput is the data needed to create a hosted checkout.
type CheckoutInput struct {
	ReferenceID string
	Amount      decimal.Decimal
	Description string
	Customer    Customer
	RedirectURL string
	ExpiresAt   string
}

type amountPayload struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency,omitempty"`
}

type customerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"tax_id"`
}

type itemPayload struct {
	ReferenceID string `json:"reference_id,omitempty"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	UnitAmount  int64  `json:"unit_amount"`
}

// minorUnits converts a decimal BRL amount to integer centavos, the unit
// the gateway wire format expects.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func (c *Client) chargePayload(input *ChargeInput) map[string]any {
	installments := input.Installments
	if installments < 1 {
		installments = 1
	}

	return map[string]any{
		"reference_id": input.ReferenceID,
		"description":  input.Description,
		"amount": amountPayload{
			Value:    minorUnits(input.Amount),
			Currency: "BRL",
		},
		"payment_method": map[string]any{
			"type":         "CREDIT_CARD",
			"installments": installments,
			"capture":      true,
			"card": map[string]any{
				"number":        input.Card.Number,
				"exp_month":     input.Card.ExpMonth,
				"exp_year":      input.Card.ExpYear,
				"security_code": input.Card.SecurityCode,
				"holder": map[string]any{
					"name": input.Card.HolderName,
				},
			},
		},
		"notification_urls": []string{c.notificationURL},
		"metadata": map[string]any{
			"customer_user_id": input.Customer.UserID,
		},
		"customer": customerPayload{
			Name:  input.Customer.Name,
			Email: input.Customer.Email,
			TaxID: input.Customer.Document,
		},
	}
}

func (c *Client) orderPayload(input *OrderInput) map[string]any {
	expiration := input.ExpirationDate
	if expiration == "" {
		expiration = defaultExpiration()
	}

	name := input.Description
	if name == "" {
		name = "Payment"
	}

	return map[string]any{
		"reference_id": input.ReferenceID,
		"customer": customerPayload{
			Name:  input.Customer.Name,
			Email: input.Customer.Email,
			TaxID: input.Customer.Document,
		},
		"metadata": map[string]any{
			"customer_user_id": input.Customer.UserID,
		},
		"items": []itemPayload{
			{
				Name:       name,
				Quantity:   1,
				UnitAmount: minorUnits(input.Amount),
			},
		},
		"qr_codes": []map[string]any{
			{
				"amount":          amountPayload{Value: minorUnits(input.Amount)},
				"expiration_date": expiration,
			},
		},
		"notification_urls": []string{c.notificationURL},
	}
}

func (c *Client) checkoutPayload(input *CheckoutInput) map[string]any {
	expiresAt := input.ExpiresAt
	if expiresAt == "" {
		expiresAt = defaultExpiration()
	}

	redirectURL := input.RedirectURL
	if redirectURL == "" {
		redirectURL = c.redirectURL
	}

	name := input.Description
	if name == "" {
		name = "Payment"
	}

	return map[string]any{
		"reference_id": input.ReferenceID,
		"customer": customerPayload{
			Name:  input.Customer.Name,
			Email: input.Customer.Email,
			TaxID: input.Customer.Document,
		},
		"items": []itemPayload{
			{
				ReferenceID: "item-" + input.ReferenceID,
				Name:        name,
				Quantity:    1,
				UnitAmount:  minorUnits(input.Amount),
			},
		},
		"notification_urls": []string{c.notificationURL},
		"charges": []map[string]any{
			{
				"reference_id": "charge-" + input.ReferenceID,
				"description":  name,
				"amount": amountPayload{
					Value:    minorUnits(input.Amount),
					Currency: "BRL",
				},
				"payment_method": map[string]any{
					"type":         "CREDIT_CARD",
					"installments": 1,
					"capture":      true,
				},
			},
		},
		"redirect_url": redirectURL,
		"expires_at":   expiresAt,
	}
}

func defaultExpiration() string {
	return time.Now().Add(24 * time.Hour).Format(time.RFC3339)
}

// ReceiptURL extracts the receipt link from a charge creation response.
func ReceiptURL(resp *gateway.StatusResponse) string {
	for _, link := range resp.Links {
		if link.Rel == "RECEIPT" || link.Rel == "RECEIPT_URL" {
			return link.Href
		}
	}
	return ""
}

// CheckoutURL extracts the hosted payment page link from a checkout
// creation response.
func CheckoutURL(resp *gateway.StatusResponse) string {
	for _, link := range resp.Links {
		if link.Rel == "PAY" || link.Rel == "CHECKOUT_URL" {
			return link.Href
		}
	}
	return ""
}

// PixInfo is the PIX payment data extracted from an order response.
type PixInfo struct {
	QRCode         string `json:"qrCode,omitempty"`
	QRCodeImage    string `json:"qrCodeImage,omitempty"`
	CopyPaste      string `json:"copyPaste,omitempty"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

// ExtractPixInfo pulls the QR code text, image link and expiration from
// an order creation response.
func ExtractPixInfo(resp *gateway.StatusResponse) PixInfo {
	var info PixInfo
	if len(resp.QRCodes) == 0 {
		return info
	}

	qr := resp.QRCodes[0]
	info.QRCode = qr.Text
	info.CopyPaste = qr.Text
	info.ExpirationDate = qr.ExpirationDate

	for _, link := range qr.Links {
		if link.Media != "image/png" && link.Type != "image/png" {
			continue
		}
		if link.Rel == "QRCODE" || link.Rel == "QR_CODE" || link.Rel == "qrcode" {
			info.QRCodeImage = link.Href
			break
		}
	}

	return info
}
