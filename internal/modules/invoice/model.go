package invoice

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceStatus represents the lifecycle state of an invoice.
// pending/in_progress/completed/paid are derived from the invoice's jobs and
// payment state; draft/cancelled/closed are only reachable via manual actions.
type InvoiceStatus string

const (
	StatusDraft      InvoiceStatus = "draft"
	StatusPending    InvoiceStatus = "pending"
	StatusInProgress InvoiceStatus = "in_progress"
	StatusCompleted  InvoiceStatus = "completed"
	StatusPaid       InvoiceStatus = "paid"
	StatusCancelled  InvoiceStatus = "cancelled"
	StatusClosed     InvoiceStatus = "closed"
)

// IsManual reports whether the status is set by an operator action rather than
// derived from child records.
func (s InvoiceStatus) IsManual() bool {
	return s == StatusDraft || s == StatusCancelled || s == StatusClosed
}

// IsTerminal reports whether the invoice can no longer change state.
func (s InvoiceStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusClosed
}

// PaymentStatus tracks how much of the grand total has been settled.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// JobStatus represents the lifecycle state of a service job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobAssigned   JobStatus = "assigned"
	JobInProgress JobStatus = "in_progress"
	JobCompleted  JobStatus = "completed"
	JobCancelled  JobStatus = "cancelled"
)

// validJobTransitions defines the allowed job state machine.
var validJobTransitions = map[JobStatus][]JobStatus{
	JobPending:    {JobAssigned, JobCancelled},
	JobAssigned:   {JobInProgress, JobPending, JobCancelled},
	JobInProgress: {JobCompleted, JobCancelled},
	JobCompleted:  {},
	JobCancelled:  {},
}

// CanTransitionJob returns true if the transition from current to next is valid.
func CanTransitionJob(current, next JobStatus) bool {
	allowed, ok := validJobTransitions[current]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == next {
			return true
		}
	}
	return false
}

// HasAssignee reports whether a job in this status is allowed (and required)
// to carry an assigned technician.
func (s JobStatus) HasAssignee() bool {
	return s == JobAssigned || s == JobInProgress || s == JobCompleted
}

// JobPriority affects assignment scoring for urgent work.
type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityNormal JobPriority = "normal"
	PriorityHigh   JobPriority = "high"
	PriorityUrgent JobPriority = "urgent"
)

// Invoice is the parent billing record aggregating service jobs and line items.
// Status, totals and payment_status are derived fields: they are recomputed from
// the child records after every mutation and never adjusted in place.
type Invoice struct {
	ID             uuid.UUID      `json:"id"`
	InvoiceNumber  string         `json:"invoice_number"`
	CustomerID     *uuid.UUID     `json:"customer_id,omitempty"`
	InvoiceDate    time.Time      `json:"invoice_date"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	Status         InvoiceStatus  `json:"status"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
	ServicesTotal  float64        `json:"services_total"`
	ItemsTotal     float64        `json:"items_total"`
	Discount       float64        `json:"discount"`
	Tax            float64        `json:"tax"`
	GrandTotal     float64        `json:"grand_total"`
	AmountPaid     float64        `json:"amount_paid"`
	Notes          string         `json:"notes,omitempty"`
	ServiceAddress string         `json:"service_address,omitempty"`
	Jobs           []*ServiceJob  `json:"jobs,omitempty"`
	Items          []*InvoiceItem `json:"items,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ServiceJob is a unit of billable work within an invoice, assignable to a technician.
type ServiceJob struct {
	ID                 uuid.UUID   `json:"id"`
	InvoiceID          uuid.UUID   `json:"invoice_id"`
	Description        string      `json:"description"`
	Status             JobStatus   `json:"status"`
	Priority           JobPriority `json:"priority"`
	RequiredSkills     []string    `json:"required_skills"`
	AssignedTechnician *uuid.UUID  `json:"assigned_technician,omitempty"`
	ServiceCost        float64     `json:"service_cost"`
	PartsCost          float64     `json:"parts_cost"`
	TotalCost          float64     `json:"total_cost"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// InvoiceItem is a billable product line within an invoice.
type InvoiceItem struct {
	ID          uuid.UUID  `json:"id"`
	InvoiceID   uuid.UUID  `json:"invoice_id"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	ProductName string     `json:"product_name"`
	ProductSKU  string     `json:"product_sku,omitempty"`
	Description string     `json:"description,omitempty"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	Discount    float64    `json:"discount"`
	TotalPrice  float64    `json:"total_price"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CreateInvoiceRequest is the payload for creating a new invoice.
type CreateInvoiceRequest struct {
	CustomerID     string  `json:"customer_id,omitempty"`
	DueDate        string  `json:"due_date,omitempty"`
	Discount       float64 `json:"discount,omitempty"`
	Tax            float64 `json:"tax,omitempty"`
	Notes          string  `json:"notes,omitempty"`
	ServiceAddress string  `json:"service_address,omitempty"`
}

// AddJobRequest is the payload for adding a service job to an invoice.
type AddJobRequest struct {
	Description    string   `json:"description"`
	Priority       string   `json:"priority,omitempty"`
	RequiredSkills []string `json:"required_skills,omitempty"`
	ServiceCost    float64  `json:"service_cost,omitempty"`
	PartsCost      float64  `json:"parts_cost,omitempty"`
}

// UpdateJobStatusRequest is the payload for advancing a job's status.
type UpdateJobStatusRequest struct {
	Status string `json:"status"`
}

// UpdateJobCostRequest is the payload for revising a job's costs.
type UpdateJobCostRequest struct {
	ServiceCost float64 `json:"service_cost"`
	PartsCost   float64 `json:"parts_cost"`
}

// AddItemRequest is the payload for adding a line item to an invoice.
type AddItemRequest struct {
	ProductID   string  `json:"product_id,omitempty"`
	ProductName string  `json:"product_name"`
	ProductSKU  string  `json:"product_sku,omitempty"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Discount    float64 `json:"discount,omitempty"`
}

// UpdateItemRequest is the payload for revising a line item. Nil fields are
// left unchanged; a present zero is applied, so a discount can be reset.
type UpdateItemRequest struct {
	ProductName *string  `json:"product_name,omitempty"`
	Quantity    *int     `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Discount    *float64 `json:"discount,omitempty"`
}

// UpdateStatusRequest is the payload for a manual invoice transition (cancel, close).
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
