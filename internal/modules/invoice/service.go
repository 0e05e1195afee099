package invoice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service defines the invoice aggregate business logic. Every mutation of a
// child record (job, item, payment) ends in a recomputation of the parent's
// derived status and totals — the invoice is never updated incrementally.
type Service interface {
	// CreateInvoice creates a new invoice in draft.
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error)

	// GetInvoice retrieves a full invoice with its jobs and items.
	GetInvoice(ctx context.Context, id string) (*Invoice, error)

	// GetInvoiceByNumber retrieves an invoice by its human-readable number.
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)

	// ListCustomerInvoices returns all invoices for a customer.
	ListCustomerInvoices(ctx context.Context, customerID string) ([]*Invoice, error)

	// ListInvoicesByStatus returns all invoices in a given status.
	ListInvoicesByStatus(ctx context.Context, status string) ([]*Invoice, error)

	// Confirm moves a draft invoice into the derived lifecycle.
	Confirm(ctx context.Context, id string) (*Invoice, error)

	// UpdateStatus applies a manual transition (cancel, close).
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Invoice, error)

	// AddJob adds a service job to an invoice.
	AddJob(ctx context.Context, invoiceID string, req AddJobRequest) (*ServiceJob, error)

	// UpdateJobStatus advances a job through its state machine.
	UpdateJobStatus(ctx context.Context, jobID string, req UpdateJobStatusRequest) (*ServiceJob, error)

	// UpdateJobCost revises a job's costs.
	UpdateJobCost(ctx context.Context, jobID string, req UpdateJobCostRequest) (*ServiceJob, error)

	// AddItem adds a billable line item to an invoice.
	AddItem(ctx context.Context, invoiceID string, req AddItemRequest) (*InvoiceItem, error)

	// UpdateItem revises a line item.
	UpdateItem(ctx context.Context, itemID string, req UpdateItemRequest) (*InvoiceItem, error)

	// RemoveItem deletes a line item.
	RemoveItem(ctx context.Context, itemID string) error

	// Recompute rebuilds the invoice's derived status, totals and payment
	// status from its current children. Safe to call any number of times.
	Recompute(ctx context.Context, invoiceID string) (*Invoice, error)
}

type service struct {
	repo Repository
}

// NewService creates a new invoice service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if req.Discount < 0 {
		return nil, fmt.Errorf("discount cannot be negative")
	}
	if req.Tax < 0 {
		return nil, fmt.Errorf("tax cannot be negative")
	}

	inv := &Invoice{
		ID:             uuid.New(),
		InvoiceNumber:  generateInvoiceNumber(),
		InvoiceDate:    time.Now().UTC(),
		Status:         StatusDraft,
		PaymentStatus:  PaymentUnpaid,
		Discount:       req.Discount,
		Tax:            req.Tax,
		GrandTotal:     round2(-req.Discount + req.Tax),
		Notes:          req.Notes,
		ServiceAddress: req.ServiceAddress,
	}

	if req.CustomerID != "" {
		uid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", err)
		}
		inv.CustomerID = &uid
	}
	if req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date format, use RFC3339: %w", err)
		}
		inv.DueDate = &t
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to persist invoice: %w", err)
	}
	return inv, nil
}

func (s *service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.GetInvoiceByID(ctx, id)
}

func (s *service) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	return s.repo.GetInvoiceByNumber(ctx, number)
}

func (s *service) ListCustomerInvoices(ctx context.Context, customerID string) ([]*Invoice, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *service) ListInvoicesByStatus(ctx context.Context, status string) ([]*Invoice, error) {
	return s.repo.ListByStatus(ctx, strings.ToLower(status))
}

func (s *service) Confirm(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status != StatusDraft {
		return nil, fmt.Errorf("only draft invoices can be confirmed (current: %s)", inv.Status)
	}
	// Leave draft first so the recompute derives the lifecycle status.
	if err := s.repo.UpdateStatus(ctx, id, StatusPending); err != nil {
		return nil, err
	}
	return s.Recompute(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}

	next := InvoiceStatus(strings.ToLower(req.Status))
	if next != StatusCancelled && next != StatusClosed {
		return nil, fmt.Errorf("only cancelled and closed can be set manually, got %q", req.Status)
	}
	if inv.Status.IsTerminal() {
		return nil, fmt.Errorf("cannot transition invoice from %s to %s", inv.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	inv.Status = next
	return inv, nil
}

// ── Jobs ─────────────────────────────────────────────────────────────────────

func (s *service) AddJob(ctx context.Context, invoiceID string, req AddJobRequest) (*ServiceJob, error) {
	if req.Description == "" {
		return nil, fmt.Errorf("description is required")
	}
	inv, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status.IsTerminal() {
		return nil, fmt.Errorf("cannot add jobs to a %s invoice", inv.Status)
	}

	priority := JobPriority(strings.ToLower(req.Priority))
	switch priority {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
	case "":
		priority = PriorityNormal
	default:
		return nil, fmt.Errorf("invalid priority %q", req.Priority)
	}

	job := &ServiceJob{
		ID:             uuid.New(),
		InvoiceID:      inv.ID,
		Description:    req.Description,
		Status:         JobPending,
		Priority:       priority,
		RequiredSkills: req.RequiredSkills,
		ServiceCost:    req.ServiceCost,
		PartsCost:      req.PartsCost,
		TotalCost:      JobTotalCost(req.ServiceCost, req.PartsCost),
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist job: %w", err)
	}
	if _, err := s.Recompute(ctx, invoiceID); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *service) UpdateJobStatus(ctx context.Context, jobID string, req UpdateJobStatusRequest) (*ServiceJob, error) {
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}

	next := JobStatus(strings.ToLower(req.Status))
	if !CanTransitionJob(job.Status, next) {
		return nil, fmt.Errorf("cannot transition job from %s to %s", job.Status, next)
	}

	// A job carries an assignee exactly while it is assigned, in progress or
	// completed. Moving into that range without one would strand the job, so
	// pending jobs reach assigned only through the selector's commit, which
	// sets status and technician in one statement.
	if next.HasAssignee() && job.AssignedTechnician == nil {
		return nil, fmt.Errorf("cannot transition job to %s without an assigned technician", next)
	}
	clearAssignee := !next.HasAssignee()
	if err := s.repo.UpdateJobStatus(ctx, jobID, next, clearAssignee); err != nil {
		return nil, err
	}

	switch next {
	case JobCompleted:
		if err := s.repo.ReleaseJobAssignments(ctx, jobID, "completed"); err != nil {
			return nil, err
		}
		if job.AssignedTechnician != nil {
			if err := s.repo.IncrementCompletedJobs(ctx, job.AssignedTechnician.String()); err != nil {
				return nil, err
			}
		}
	case JobCancelled:
		if err := s.repo.ReleaseJobAssignments(ctx, jobID, "cancelled"); err != nil {
			return nil, err
		}
	case JobPending:
		if err := s.repo.ReleaseJobAssignments(ctx, jobID, "released"); err != nil {
			return nil, err
		}
	}

	if _, err := s.Recompute(ctx, job.InvoiceID.String()); err != nil {
		return nil, err
	}
	return s.repo.GetJobByID(ctx, jobID)
}

func (s *service) UpdateJobCost(ctx context.Context, jobID string, req UpdateJobCostRequest) (*ServiceJob, error) {
	if req.ServiceCost < 0 || req.PartsCost < 0 {
		return nil, fmt.Errorf("costs cannot be negative")
	}
	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("job not found: %w", err)
	}

	total := JobTotalCost(req.ServiceCost, req.PartsCost)
	if err := s.repo.UpdateJobCost(ctx, jobID, req.ServiceCost, req.PartsCost, total); err != nil {
		return nil, err
	}
	if _, err := s.Recompute(ctx, job.InvoiceID.String()); err != nil {
		return nil, err
	}
	return s.repo.GetJobByID(ctx, jobID)
}

// ── Line items ───────────────────────────────────────────────────────────────

func (s *service) AddItem(ctx context.Context, invoiceID string, req AddItemRequest) (*InvoiceItem, error) {
	if req.ProductName == "" {
		return nil, fmt.Errorf("product_name is required")
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be > 0")
	}
	inv, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	if inv.Status.IsTerminal() {
		return nil, fmt.Errorf("cannot add items to a %s invoice", inv.Status)
	}

	item := &InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   inv.ID,
		ProductName: req.ProductName,
		ProductSKU:  req.ProductSKU,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Discount:    req.Discount,
		TotalPrice:  ItemTotalPrice(req.Quantity, req.UnitPrice, req.Discount),
	}
	if req.ProductID != "" {
		uid, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		item.ProductID = &uid
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to persist item: %w", err)
	}
	if _, err := s.Recompute(ctx, invoiceID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, itemID string, req UpdateItemRequest) (*InvoiceItem, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}

	if req.ProductName != nil {
		if *req.ProductName == "" {
			return nil, fmt.Errorf("product_name is required")
		}
		item.ProductName = *req.ProductName
	}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be > 0")
		}
		item.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		if *req.UnitPrice < 0 {
			return nil, fmt.Errorf("unit_price cannot be negative")
		}
		item.UnitPrice = *req.UnitPrice
	}
	if req.Discount != nil {
		if *req.Discount < 0 {
			return nil, fmt.Errorf("discount cannot be negative")
		}
		item.Discount = *req.Discount
	}
	item.TotalPrice = ItemTotalPrice(item.Quantity, item.UnitPrice, item.Discount)

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	if _, err := s.Recompute(ctx, item.InvoiceID.String()); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, itemID string) error {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("item not found: %w", err)
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	_, err = s.Recompute(ctx, item.InvoiceID.String())
	return err
}

// ── Recomputation ────────────────────────────────────────────────────────────

// Recompute is the explicit replacement for the database triggers the original
// system relied on. It rebuilds totals and payment status from the children,
// then re-derives the lifecycle status unless the invoice is in a manual state
// (draft, cancelled, closed), which recomputation never overwrites.
func (s *service) Recompute(ctx context.Context, invoiceID string) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", err)
	}
	payments, err := s.repo.ListPaymentAmounts(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	totals := ComputeTotals(inv.Jobs, inv.Items, payments, inv.Discount, inv.Tax)
	payment := DerivePaymentStatus(totals.AmountPaid, totals.GrandTotal)

	status := inv.Status
	if !status.IsManual() {
		statuses := make([]JobStatus, 0, len(inv.Jobs))
		for _, j := range inv.Jobs {
			statuses = append(statuses, j.Status)
		}
		status = DeriveStatus(statuses, payment)
	}

	if err := s.repo.UpdateDerived(ctx, invoiceID, status, payment, totals); err != nil {
		return nil, fmt.Errorf("failed to write derived fields: %w", err)
	}

	inv.Status = status
	inv.PaymentStatus = payment
	inv.ServicesTotal = totals.ServicesTotal
	inv.ItemsTotal = totals.ItemsTotal
	inv.GrandTotal = totals.GrandTotal
	inv.AmountPaid = totals.AmountPaid
	return inv, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// generateInvoiceNumber creates a human-readable invoice number: INV-YYYYMMDD-XXXX
func generateInvoiceNumber() string {
	date := time.Now().UTC().Format("20060102")
	suffix := strings.ToUpper(uuid.New().String()[:4])
	return fmt.Sprintf("INV-%s-%s", date, suffix)
}
