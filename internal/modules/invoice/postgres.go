package invoice

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the Postgres-backed invoice repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const invoiceColumns = `id, invoice_number, customer_id, invoice_date, due_date, status, payment_status,
       services_total, items_total, discount, tax, grand_total, amount_paid,
       notes, service_address, created_at, updated_at`

const jobColumns = `id, invoice_id, description, status, priority, required_skills, assigned_technician,
       service_cost, parts_cost, total_cost, created_at, updated_at`

func (r *postgresRepo) CreateInvoice(ctx context.Context, inv *Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices
		  (id, invoice_number, customer_id, invoice_date, due_date, status, payment_status,
		   services_total, items_total, discount, tax, grand_total, amount_paid, notes, service_address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		inv.ID, inv.InvoiceNumber, inv.CustomerID, inv.InvoiceDate, inv.DueDate,
		inv.Status, inv.PaymentStatus, inv.ServicesTotal, inv.ItemsTotal,
		inv.Discount, inv.Tax, inv.GrandTotal, inv.AmountPaid,
		nullableText(inv.Notes), nullableText(inv.ServiceAddress))
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetInvoiceByID(ctx context.Context, id string) (*Invoice, error) {
	inv, err := r.scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id=$1`, id))
	if err != nil {
		return nil, err
	}
	return r.loadChildren(ctx, inv)
}

func (r *postgresRepo) GetInvoiceByNumber(ctx context.Context, number string) (*Invoice, error) {
	inv, err := r.scanInvoice(r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_number=$1`, number))
	if err != nil {
		return nil, err
	}
	return r.loadChildren(ctx, inv)
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]*Invoice, error) {
	return r.queryInvoices(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
}

func (r *postgresRepo) ListByStatus(ctx context.Context, status string) ([]*Invoice, error) {
	return r.queryInvoices(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE status=$1 ORDER BY created_at DESC`, status)
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status InvoiceStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
	return err
}

func (r *postgresRepo) UpdateDerived(ctx context.Context, id string, status InvoiceStatus, payment PaymentStatus, t Totals) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET status=$1, payment_status=$2, services_total=$3, items_total=$4,
		    grand_total=$5, amount_paid=$6, updated_at=$7
		WHERE id=$8`,
		status, payment, t.ServicesTotal, t.ItemsTotal, t.GrandTotal, t.AmountPaid, time.Now(), id)
	return err
}

// ── Jobs ─────────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateJob(ctx context.Context, job *ServiceJob) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO service_jobs
		  (id, invoice_id, description, status, priority, required_skills,
		   assigned_technician, service_cost, parts_cost, total_cost)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		job.ID, job.InvoiceID, job.Description, job.Status, job.Priority,
		pq.Array(job.RequiredSkills), job.AssignedTechnician,
		job.ServiceCost, job.PartsCost, job.TotalCost)
	if err != nil {
		return fmt.Errorf("insert service_job: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetJobByID(ctx context.Context, id string) (*ServiceJob, error) {
	return scanJob(r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM service_jobs WHERE id=$1`, id))
}

func (r *postgresRepo) UpdateJobStatus(ctx context.Context, id string, status JobStatus, clearAssignee bool) error {
	var err error
	if clearAssignee {
		_, err = r.db.ExecContext(ctx,
			`UPDATE service_jobs SET status=$1, assigned_technician=NULL, updated_at=$2 WHERE id=$3`,
			status, time.Now(), id)
	} else {
		_, err = r.db.ExecContext(ctx,
			`UPDATE service_jobs SET status=$1, updated_at=$2 WHERE id=$3`,
			status, time.Now(), id)
	}
	return err
}

func (r *postgresRepo) UpdateJobCost(ctx context.Context, id string, serviceCost, partsCost, totalCost float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE service_jobs SET service_cost=$1, parts_cost=$2, total_cost=$3, updated_at=$4 WHERE id=$5`,
		serviceCost, partsCost, totalCost, time.Now(), id)
	return err
}

func (r *postgresRepo) ReleaseJobAssignments(ctx context.Context, jobID string, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE assignments SET status=$1, released_at=$2 WHERE job_id=$3 AND status='active'`,
		status, time.Now(), jobID)
	return err
}

func (r *postgresRepo) IncrementCompletedJobs(ctx context.Context, employeeID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE employees SET total_jobs_completed = total_jobs_completed + 1, updated_at=$1 WHERE id=$2`,
		time.Now(), employeeID)
	return err
}

// ── Line items ───────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateItem(ctx context.Context, item *InvoiceItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoice_items
		  (id, invoice_id, product_id, product_name, product_sku, description,
		   quantity, unit_price, discount, total_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		item.ID, item.InvoiceID, item.ProductID, item.ProductName,
		nullableText(item.ProductSKU), nullableText(item.Description),
		item.Quantity, item.UnitPrice, item.Discount, item.TotalPrice)
	if err != nil {
		return fmt.Errorf("insert invoice_item: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetItemByID(ctx context.Context, id string) (*InvoiceItem, error) {
	return scanItem(r.db.QueryRowContext(ctx, `
		SELECT id, invoice_id, product_id, product_name, product_sku, description,
		       quantity, unit_price, discount, total_price, created_at, updated_at
		FROM invoice_items WHERE id=$1`, id))
}

func (r *postgresRepo) UpdateItem(ctx context.Context, item *InvoiceItem) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invoice_items
		SET product_name=$1, quantity=$2, unit_price=$3, discount=$4, total_price=$5, updated_at=$6
		WHERE id=$7`,
		item.ProductName, item.Quantity, item.UnitPrice, item.Discount,
		item.TotalPrice, time.Now(), item.ID)
	return err
}

func (r *postgresRepo) DeleteItem(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM invoice_items WHERE id=$1`, id)
	return err
}

func (r *postgresRepo) ListPaymentAmounts(ctx context.Context, invoiceID string) ([]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount FROM payments WHERE invoice_id=$1`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var amounts []float64
	for rows.Next() {
		var a float64
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		amounts = append(amounts, a)
	}
	return amounts, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) loadChildren(ctx context.Context, inv *Invoice) (*Invoice, error) {
	jobs, err := r.listJobs(ctx, inv.ID.String())
	if err != nil {
		return nil, err
	}
	inv.Jobs = jobs

	items, err := r.listItems(ctx, inv.ID.String())
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *postgresRepo) listJobs(ctx context.Context, invoiceID string) ([]*ServiceJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM service_jobs WHERE invoice_id=$1 ORDER BY created_at ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var jobs []*ServiceJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *postgresRepo) listItems(ctx context.Context, invoiceID string) ([]*InvoiceItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, product_id, product_name, product_sku, description,
		       quantity, unit_price, discount, total_price, created_at, updated_at
		FROM invoice_items WHERE invoice_id=$1 ORDER BY created_at ASC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*InvoiceItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresRepo) scanInvoice(row rowScanner) (*Invoice, error) {
	inv := &Invoice{}
	var notes, address sql.NullString
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.CustomerID, &inv.InvoiceDate, &inv.DueDate,
		&inv.Status, &inv.PaymentStatus, &inv.ServicesTotal, &inv.ItemsTotal,
		&inv.Discount, &inv.Tax, &inv.GrandTotal, &inv.AmountPaid,
		&notes, &address, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.Notes = notes.String
	inv.ServiceAddress = address.String
	return inv, nil
}

func (r *postgresRepo) queryInvoices(ctx context.Context, query string, args ...interface{}) ([]*Invoice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []*Invoice
	for rows.Next() {
		inv, err := r.scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanJob(row rowScanner) (*ServiceJob, error) {
	job := &ServiceJob{}
	var skills pq.StringArray
	err := row.Scan(
		&job.ID, &job.InvoiceID, &job.Description, &job.Status, &job.Priority,
		&skills, &job.AssignedTechnician, &job.ServiceCost, &job.PartsCost,
		&job.TotalCost, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	job.RequiredSkills = skills
	return job, nil
}

func scanItem(row rowScanner) (*InvoiceItem, error) {
	item := &InvoiceItem{}
	var sku, desc sql.NullString
	err := row.Scan(
		&item.ID, &item.InvoiceID, &item.ProductID, &item.ProductName, &sku, &desc,
		&item.Quantity, &item.UnitPrice, &item.Discount, &item.TotalPrice,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.ProductSKU = sku.String
	item.Description = desc.String
	return item, nil
}

func nullableText(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
