package invoice

import "testing"

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		jobs     []JobStatus
		payment  PaymentStatus
		expected InvoiceStatus
	}{
		{name: "no jobs unpaid", jobs: nil, payment: PaymentUnpaid, expected: StatusPending},
		{name: "no jobs paid", jobs: nil, payment: PaymentPaid, expected: StatusPaid},
		{name: "all pending", jobs: []JobStatus{JobPending, JobPending}, payment: PaymentUnpaid, expected: StatusPending},
		{name: "assigned counts as not started", jobs: []JobStatus{JobAssigned, JobPending}, payment: PaymentUnpaid, expected: StatusPending},
		{name: "one in progress", jobs: []JobStatus{JobInProgress, JobPending}, payment: PaymentUnpaid, expected: StatusInProgress},
		{name: "some completed", jobs: []JobStatus{JobCompleted, JobPending}, payment: PaymentUnpaid, expected: StatusInProgress},
		{name: "all completed unpaid", jobs: []JobStatus{JobCompleted, JobCompleted}, payment: PaymentUnpaid, expected: StatusCompleted},
		{name: "all completed partial", jobs: []JobStatus{JobCompleted}, payment: PaymentPartial, expected: StatusCompleted},
		{name: "all completed paid", jobs: []JobStatus{JobCompleted, JobCompleted}, payment: PaymentPaid, expected: StatusPaid},
		{name: "cancelled jobs are ignored", jobs: []JobStatus{JobCompleted, JobCancelled}, payment: PaymentUnpaid, expected: StatusCompleted},
		{name: "only cancelled jobs behaves as empty", jobs: []JobStatus{JobCancelled, JobCancelled}, payment: PaymentUnpaid, expected: StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.jobs, tt.payment)
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
			// The rule reads nothing but its inputs, so a second run over the
			// same multiset must agree with the first.
			if again := DeriveStatus(tt.jobs, tt.payment); again != got {
				t.Errorf("not idempotent: first %s, second %s", got, again)
			}
		})
	}
}

func TestDeriveStatus_ChildSetChangeRecomputes(t *testing.T) {
	// Paid invoice with all jobs completed derives paid; swapping one job for
	// a fresh pending job re-derives pending even though payment is untouched.
	paid := DeriveStatus([]JobStatus{JobCompleted, JobCompleted}, PaymentPaid)
	if paid != StatusPaid {
		t.Fatalf("expected paid, got %s", paid)
	}
	got := DeriveStatus([]JobStatus{JobCompleted, JobPending}, PaymentPaid)
	if got != StatusInProgress {
		t.Errorf("expected in_progress, got %s", got)
	}
	got = DeriveStatus([]JobStatus{JobPending}, PaymentPaid)
	if got != StatusPending {
		t.Errorf("expected pending, got %s", got)
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name       string
		amountPaid float64
		grandTotal float64
		expected   PaymentStatus
	}{
		{name: "nothing paid", amountPaid: 0, grandTotal: 100, expected: PaymentUnpaid},
		{name: "partially paid", amountPaid: 40, grandTotal: 100, expected: PaymentPartial},
		{name: "fully paid", amountPaid: 100, grandTotal: 100, expected: PaymentPaid},
		{name: "overpaid", amountPaid: 120, grandTotal: 100, expected: PaymentPaid},
		{name: "zero total zero paid", amountPaid: 0, grandTotal: 0, expected: PaymentUnpaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePaymentStatus(tt.amountPaid, tt.grandTotal)
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestComputeTotals(t *testing.T) {
	jobs := []*ServiceJob{
		{TotalCost: 150.50},
		{TotalCost: 49.50},
	}
	items := []*InvoiceItem{
		{TotalPrice: 80},
		{TotalPrice: 20.25},
	}
	payments := []float64{50, 25.75}

	got := ComputeTotals(jobs, items, payments, 10, 5)

	if got.ServicesTotal != 200 {
		t.Errorf("expected services_total 200, got %v", got.ServicesTotal)
	}
	if got.ItemsTotal != 100.25 {
		t.Errorf("expected items_total 100.25, got %v", got.ItemsTotal)
	}
	// grand_total = services + items − discount + tax
	if got.GrandTotal != 295.25 {
		t.Errorf("expected grand_total 295.25, got %v", got.GrandTotal)
	}
	if got.AmountPaid != 75.75 {
		t.Errorf("expected amount_paid 75.75, got %v", got.AmountPaid)
	}
}

func TestComputeTotals_EmptyChildren(t *testing.T) {
	got := ComputeTotals(nil, nil, nil, 0, 0)
	if got.ServicesTotal != 0 || got.ItemsTotal != 0 || got.GrandTotal != 0 || got.AmountPaid != 0 {
		t.Errorf("expected all-zero totals, got %+v", got)
	}

	// Discount and tax still apply with no children.
	got = ComputeTotals(nil, nil, nil, 5, 8)
	if got.GrandTotal != 3 {
		t.Errorf("expected grand_total 3, got %v", got.GrandTotal)
	}
}

func TestJobTotalCost(t *testing.T) {
	if got := JobTotalCost(120.10, 35.15); got != 155.25 {
		t.Errorf("expected 155.25, got %v", got)
	}
}

func TestItemTotalPrice(t *testing.T) {
	if got := ItemTotalPrice(3, 25, 5); got != 70 {
		t.Errorf("expected 70, got %v", got)
	}
	// Discount larger than the line never goes negative.
	if got := ItemTotalPrice(1, 10, 50); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
