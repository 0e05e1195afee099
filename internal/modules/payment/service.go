package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rekamteknik/fieldservice-backend/internal/modules/invoice"
)

// Recomputer re-derives the invoice's payment status and totals after a
// payment lands.
type Recomputer interface {
	Recompute(ctx context.Context, invoiceID string) (*invoice.Invoice, error)
}

// Service defines payment recording business logic.
type Service interface {
	// RecordPayment records a payment against an invoice and triggers the
	// invoice recompute that derives amount_paid and payment_status.
	RecordPayment(ctx context.Context, invoiceID string, req RecordPaymentRequest) (*Payment, error)

	// ListInvoicePayments returns all payments recorded against an invoice.
	ListInvoicePayments(ctx context.Context, invoiceID string) ([]*Payment, error)
}

type service struct {
	repo     Repository
	invoices Recomputer
}

// NewService creates a new payment service.
func NewService(repo Repository, invoices Recomputer) Service {
	return &service{repo: repo, invoices: invoices}
}

func (s *service) RecordPayment(ctx context.Context, invoiceID string, req RecordPaymentRequest) (*Payment, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be > 0")
	}
	uid, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}

	method := strings.ToLower(req.Method)
	if method == "" {
		method = "cash"
	}

	p := &Payment{
		ID:        uuid.New(),
		InvoiceID: uid,
		Amount:    req.Amount,
		Method:    method,
		Reference: req.Reference,
		PaidAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	if _, err := s.invoices.Recompute(ctx, invoiceID); err != nil {
		return nil, fmt.Errorf("payment recorded but invoice recompute failed: %w", err)
	}
	return p, nil
}

func (s *service) ListInvoicePayments(ctx context.Context, invoiceID string) ([]*Payment, error) {
	return s.repo.ListByInvoice(ctx, invoiceID)
}
