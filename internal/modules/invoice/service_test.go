package invoice

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps the aggregate in memory and applies derived writes the same
// way the Postgres repository does.
type fakeRepo struct {
	invoices  map[string]*Invoice
	jobs      map[string]*ServiceJob
	items     map[string]*InvoiceItem
	payments  map[string][]float64
	released  map[string]string // jobID → release status
	completed map[string]int    // employeeID → completed increments
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices:  map[string]*Invoice{},
		jobs:      map[string]*ServiceJob{},
		items:     map[string]*InvoiceItem{},
		payments:  map[string][]float64{},
		released:  map[string]string{},
		completed: map[string]int{},
	}
}

func (f *fakeRepo) CreateInvoice(ctx context.Context, inv *Invoice) error {
	f.invoices[inv.ID.String()] = inv
	return nil
}

func (f *fakeRepo) GetInvoiceByID(ctx context.Context, id string) (*Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, fmt.Errorf("invoice not found")
	}
	inv.Jobs = nil
	inv.Items = nil
	for _, j := range f.jobs {
		if j.InvoiceID == inv.ID {
			inv.Jobs = append(inv.Jobs, j)
		}
	}
	for _, it := range f.items {
		if it.InvoiceID == inv.ID {
			inv.Items = append(inv.Items, it)
		}
	}
	return inv, nil
}

func (f *fakeRepo) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	for _, inv := range f.invoices {
		if inv.InvoiceNumber == number {
			return f.GetInvoiceByID(ctx, inv.ID.String())
		}
	}
	return nil, fmt.Errorf("invoice not found")
}

func (f *fakeRepo) ListByCustomer(ctx context.Context, customerID string) ([]*Invoice, error) {
	return nil, nil
}

func (f *fakeRepo) ListByStatus(ctx context.Context, status string) ([]*Invoice, error) {
	return nil, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id string, status InvoiceStatus) error {
	f.invoices[id].Status = status
	return nil
}

func (f *fakeRepo) UpdateDerived(ctx context.Context, id string, status InvoiceStatus, payment PaymentStatus, t Totals) error {
	inv := f.invoices[id]
	inv.Status = status
	inv.PaymentStatus = payment
	inv.ServicesTotal = t.ServicesTotal
	inv.ItemsTotal = t.ItemsTotal
	inv.GrandTotal = t.GrandTotal
	inv.AmountPaid = t.AmountPaid
	return nil
}

func (f *fakeRepo) CreateJob(ctx context.Context, job *ServiceJob) error {
	f.jobs[job.ID.String()] = job
	return nil
}

func (f *fakeRepo) GetJobByID(ctx context.Context, id string) (*ServiceJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job not found")
	}
	return job, nil
}

func (f *fakeRepo) UpdateJobStatus(ctx context.Context, id string, status JobStatus, clearAssignee bool) error {
	job := f.jobs[id]
	job.Status = status
	if clearAssignee {
		job.AssignedTechnician = nil
	}
	return nil
}

func (f *fakeRepo) UpdateJobCost(ctx context.Context, id string, serviceCost, partsCost, totalCost float64) error {
	job := f.jobs[id]
	job.ServiceCost = serviceCost
	job.PartsCost = partsCost
	job.TotalCost = totalCost
	return nil
}

func (f *fakeRepo) ReleaseJobAssignments(ctx context.Context, jobID string, status string) error {
	f.released[jobID] = status
	return nil
}

func (f *fakeRepo) IncrementCompletedJobs(ctx context.Context, employeeID string) error {
	f.completed[employeeID]++
	return nil
}

func (f *fakeRepo) CreateItem(ctx context.Context, item *InvoiceItem) error {
	f.items[item.ID.String()] = item
	return nil
}

func (f *fakeRepo) GetItemByID(ctx context.Context, id string) (*InvoiceItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("item not found")
	}
	return item, nil
}

func (f *fakeRepo) UpdateItem(ctx context.Context, item *InvoiceItem) error {
	f.items[item.ID.String()] = item
	return nil
}

func (f *fakeRepo) DeleteItem(ctx context.Context, id string) error {
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) ListPaymentAmounts(ctx context.Context, invoiceID string) ([]float64, error) {
	return f.payments[invoiceID], nil
}

// confirmedInvoice creates an invoice and moves it out of draft.
func confirmedInvoice(t *testing.T, svc Service) *Invoice {
	t.Helper()
	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{})
	require.NoError(t, err)
	inv, err = svc.Confirm(context.Background(), inv.ID.String())
	require.NoError(t, err)
	return inv
}

func TestAddJob_RecomputesStatusAndTotals(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)

	_, err := svc.AddJob(context.Background(), inv.ID.String(), AddJobRequest{
		Description: "compressor replacement",
		ServiceCost: 120,
		PartsCost:   80,
	})
	require.NoError(t, err)

	got := repo.invoices[inv.ID.String()]
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, 200.0, got.ServicesTotal)
	assert.Equal(t, 200.0, got.GrandTotal)
}

func TestJobLifecycle_DrivesInvoiceStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)
	ctx := context.Background()

	job, err := svc.AddJob(ctx, inv.ID.String(), AddJobRequest{Description: "ac service"})
	require.NoError(t, err)

	// pending → assigned → in_progress → completed
	tech := uuid.New()
	job.AssignedTechnician = &tech
	_, err = svc.UpdateJobStatus(ctx, job.ID.String(), UpdateJobStatusRequest{Status: "assigned"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, repo.invoices[inv.ID.String()].Status)

	_, err = svc.UpdateJobStatus(ctx, job.ID.String(), UpdateJobStatusRequest{Status: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, repo.invoices[inv.ID.String()].Status)

	_, err = svc.UpdateJobStatus(ctx, job.ID.String(), UpdateJobStatusRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, repo.invoices[inv.ID.String()].Status)

	assert.Equal(t, "completed", repo.released[job.ID.String()])
	assert.Equal(t, 1, repo.completed[tech.String()])
}

func TestUpdateJobStatus_AssignedRequiresTechnician(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)
	ctx := context.Background()

	job, err := svc.AddJob(ctx, inv.ID.String(), AddJobRequest{Description: "ac service"})
	require.NoError(t, err)

	// The status endpoint alone cannot move a job into assigned; only a
	// selection commit sets the technician and the status together.
	_, err = svc.UpdateJobStatus(ctx, job.ID.String(), UpdateJobStatusRequest{Status: "assigned"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without an assigned technician")
	assert.Equal(t, JobPending, repo.jobs[job.ID.String()].Status)
	assert.Nil(t, repo.jobs[job.ID.String()].AssignedTechnician)
}

func TestUpdateJobStatus_InvalidTransition(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)

	job, err := svc.AddJob(context.Background(), inv.ID.String(), AddJobRequest{Description: "ac service"})
	require.NoError(t, err)

	_, err = svc.UpdateJobStatus(context.Background(), job.ID.String(), UpdateJobStatusRequest{Status: "completed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot transition")
}

func TestCancelJob_ClearsAssignee(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)
	ctx := context.Background()

	job, err := svc.AddJob(ctx, inv.ID.String(), AddJobRequest{Description: "ac service"})
	require.NoError(t, err)
	tech := uuid.New()
	job.AssignedTechnician = &tech
	_, err = svc.UpdateJobStatus(ctx, job.ID.String(), UpdateJobStatusRequest{Status: "assigned"})
	require.NoError(t, err)

	got, err := svc.UpdateJobStatus(ctx, job.ID.String(), UpdateJobStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	assert.Nil(t, got.AssignedTechnician)
	assert.Equal(t, "cancelled", repo.released[job.ID.String()])
	// The only job is cancelled, so the invoice derives as if it had none.
	assert.Equal(t, StatusPending, repo.invoices[inv.ID.String()].Status)
}

func TestRecompute_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)
	ctx := context.Background()

	_, err := svc.AddJob(ctx, inv.ID.String(), AddJobRequest{Description: "ac service", ServiceCost: 100})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, inv.ID.String(), AddItemRequest{ProductName: "freon", Quantity: 2, UnitPrice: 30})
	require.NoError(t, err)

	first, err := svc.Recompute(ctx, inv.ID.String())
	require.NoError(t, err)
	second, err := svc.Recompute(ctx, inv.ID.String())
	require.NoError(t, err)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.GrandTotal, second.GrandTotal)
	assert.Equal(t, 160.0, second.GrandTotal)
}

func TestRecompute_ManualStatusIsSticky(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, inv.ID.String(), UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	got, err := svc.Recompute(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestPayments_DrivePaymentAndInvoiceStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)
	ctx := context.Background()

	job, err := svc.AddJob(ctx, inv.ID.String(), AddJobRequest{Description: "ac service", ServiceCost: 100})
	require.NoError(t, err)
	tech := uuid.New()
	job.AssignedTechnician = &tech
	for _, status := range []string{"assigned", "in_progress", "completed"} {
		_, err = svc.UpdateJobStatus(ctx, job.ID.String(), UpdateJobStatusRequest{Status: status})
		require.NoError(t, err)
	}

	// Half paid: completed but only partially settled.
	repo.payments[inv.ID.String()] = []float64{50}
	got, err := svc.Recompute(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, PaymentPartial, got.PaymentStatus)
	assert.Equal(t, StatusCompleted, got.Status)

	// Fully paid: the invoice itself derives paid.
	repo.payments[inv.ID.String()] = []float64{50, 50}
	got, err = svc.Recompute(ctx, inv.ID.String())
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, got.PaymentStatus)
	assert.Equal(t, StatusPaid, got.Status)
}

func TestItemMutations_Recompute(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, inv.ID.String(), AddItemRequest{ProductName: "filter", Quantity: 4, UnitPrice: 10})
	require.NoError(t, err)
	assert.Equal(t, 40.0, repo.invoices[inv.ID.String()].ItemsTotal)

	_, err = svc.UpdateItem(ctx, item.ID.String(), UpdateItemRequest{Quantity: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 20.0, repo.invoices[inv.ID.String()].ItemsTotal)

	require.NoError(t, svc.RemoveItem(ctx, item.ID.String()))
	assert.Equal(t, 0.0, repo.invoices[inv.ID.String()].ItemsTotal)
}

func TestUpdateItem_ResetsDiscountToZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, inv.ID.String(), AddItemRequest{
		ProductName: "filter", Quantity: 2, UnitPrice: 25, Discount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 40.0, item.TotalPrice)

	// A present zero clears the discount; absent fields stay untouched.
	got, err := svc.UpdateItem(ctx, item.ID.String(), UpdateItemRequest{Discount: floatPtr(0)})
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.Discount)
	assert.Equal(t, 50.0, got.TotalPrice)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, 25.0, got.UnitPrice)
	assert.Equal(t, 50.0, repo.invoices[inv.ID.String()].ItemsTotal)
}

func TestUpdateItem_RejectsNegativeValues(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, inv.ID.String(), AddItemRequest{ProductName: "filter", Quantity: 1, UnitPrice: 10})
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, item.ID.String(), UpdateItemRequest{UnitPrice: floatPtr(-1)})
	require.Error(t, err)
	_, err = svc.UpdateItem(ctx, item.ID.String(), UpdateItemRequest{Quantity: intPtr(0)})
	require.Error(t, err)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestConfirm_OnlyFromDraft(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)

	_, err := svc.Confirm(context.Background(), inv.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only draft")
}

func TestUpdateStatus_RejectsDerivedStates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	inv := confirmedInvoice(t, svc)

	_, err := svc.UpdateStatus(context.Background(), inv.ID.String(), UpdateStatusRequest{Status: "completed"})
	require.Error(t, err)
}
