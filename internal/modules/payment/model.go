package payment

import (
	"time"

	"github.com/google/uuid"
)

// Payment is a settled amount recorded against an invoice. The invoice's
// amount_paid is derived as the sum of its payment rows, never adjusted
// directly, so recording a payment always flows through a recompute.
type Payment struct {
	ID        uuid.UUID `json:"id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
}

// RecordPaymentRequest is the payload for recording a payment.
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method,omitempty"` // defaults to cash
	Reference string  `json:"reference,omitempty"`
}
