package payment

import "context"

// Repository defines data access for payments.
type Repository interface {
	// Create persists a new payment row.
	Create(ctx context.Context, p *Payment) error

	// ListByInvoice returns all payments recorded against an invoice,
	// newest first.
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)
}
