package invoice

// Totals is the monetary rollup derived from an invoice's children.
type Totals struct {
	ServicesTotal float64
	ItemsTotal    float64
	GrandTotal    float64
	AmountPaid    float64
}

// DeriveStatus computes an invoice's lifecycle status from the statuses of its
// jobs and its payment state. The previous status is never an input: the rule is
// a total function of its arguments, so recomputing with unchanged inputs always
// yields the same result. Cancelled jobs are excluded before the rule applies.
func DeriveStatus(jobs []JobStatus, payment PaymentStatus) InvoiceStatus {
	var active []JobStatus
	for _, s := range jobs {
		if s != JobCancelled {
			active = append(active, s)
		}
	}

	if len(active) == 0 {
		if payment == PaymentPaid {
			return StatusPaid
		}
		return StatusPending
	}

	completed := 0
	started := false
	for _, s := range active {
		switch s {
		case JobCompleted:
			completed++
		case JobInProgress:
			started = true
		}
	}

	if completed == len(active) {
		if payment == PaymentPaid {
			return StatusPaid
		}
		return StatusCompleted
	}
	if started || completed > 0 {
		return StatusInProgress
	}
	return StatusPending
}

// DerivePaymentStatus classifies how much of the grand total has been settled.
func DerivePaymentStatus(amountPaid, grandTotal float64) PaymentStatus {
	if amountPaid <= 0 {
		return PaymentUnpaid
	}
	if amountPaid >= grandTotal {
		return PaymentPaid
	}
	return PaymentPartial
}

// ComputeTotals recomputes the monetary rollups from the current children.
// Totals are always rebuilt from scratch rather than incremented in place, so a
// missed delta update can never leave them drifted.
func ComputeTotals(jobs []*ServiceJob, items []*InvoiceItem, payments []float64, discount, tax float64) Totals {
	var t Totals
	for _, j := range jobs {
		t.ServicesTotal += j.TotalCost
	}
	for _, it := range items {
		t.ItemsTotal += it.TotalPrice
	}
	for _, p := range payments {
		t.AmountPaid += p
	}
	t.ServicesTotal = round2(t.ServicesTotal)
	t.ItemsTotal = round2(t.ItemsTotal)
	t.AmountPaid = round2(t.AmountPaid)
	t.GrandTotal = round2(t.ServicesTotal + t.ItemsTotal - discount + tax)
	return t
}

// JobTotalCost computes a job's billable total.
func JobTotalCost(serviceCost, partsCost float64) float64 {
	return round2(serviceCost + partsCost)
}

// ItemTotalPrice computes a line item's billable total.
func ItemTotalPrice(quantity int, unitPrice, discount float64) float64 {
	total := float64(quantity)*unitPrice - discount
	if total < 0 {
		total = 0
	}
	return round2(total)
}

func round2(v float64) float64 {
	if v < 0 {
		return -float64(int(-v*100+0.5)) / 100
	}
	return float64(int(v*100+0.5)) / 100
}
