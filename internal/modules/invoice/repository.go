package invoice

import "context"

// Repository defines data access for invoices, service jobs and line items.
type Repository interface {
	// CreateInvoice persists a new invoice.
	CreateInvoice(ctx context.Context, inv *Invoice) error

	// GetInvoiceByID retrieves an invoice with its jobs and items by UUID.
	GetInvoiceByID(ctx context.Context, id string) (*Invoice, error)

	// GetInvoiceByNumber retrieves an invoice by its human-readable number.
	GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error)

	// ListByCustomer returns all invoices for a customer, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]*Invoice, error)

	// ListByStatus returns all invoices in a given status.
	ListByStatus(ctx context.Context, status string) ([]*Invoice, error)

	// UpdateStatus sets an invoice's status directly (manual transitions only).
	UpdateStatus(ctx context.Context, id string, status InvoiceStatus) error

	// UpdateDerived writes the recomputed status, totals and payment status.
	UpdateDerived(ctx context.Context, id string, status InvoiceStatus, payment PaymentStatus, t Totals) error

	// CreateJob persists a new service job.
	CreateJob(ctx context.Context, job *ServiceJob) error

	// GetJobByID retrieves a single service job.
	GetJobByID(ctx context.Context, id string) (*ServiceJob, error)

	// UpdateJobStatus sets a job's status; when clearAssignee is true the
	// assigned technician reference is removed in the same statement.
	UpdateJobStatus(ctx context.Context, id string, status JobStatus, clearAssignee bool) error

	// UpdateJobCost revises a job's cost fields.
	UpdateJobCost(ctx context.Context, id string, serviceCost, partsCost, totalCost float64) error

	// ReleaseJobAssignments moves all active assignments on a job to the given
	// terminal status and stamps their release time.
	ReleaseJobAssignments(ctx context.Context, jobID string, status string) error

	// IncrementCompletedJobs bumps a technician's completed-job counter.
	IncrementCompletedJobs(ctx context.Context, employeeID string) error

	// CreateItem persists a new line item.
	CreateItem(ctx context.Context, item *InvoiceItem) error

	// GetItemByID retrieves a single line item.
	GetItemByID(ctx context.Context, id string) (*InvoiceItem, error)

	// UpdateItem revises a line item's quantity, pricing and totals.
	UpdateItem(ctx context.Context, item *InvoiceItem) error

	// DeleteItem removes a line item.
	DeleteItem(ctx context.Context, id string) error

	// ListPaymentAmounts returns the amounts of all payments recorded against
	// an invoice, for deriving amount_paid.
	ListPaymentAmounts(ctx context.Context, invoiceID string) ([]float64, error)
}
