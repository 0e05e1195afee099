package payment

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the Postgres-backed payment repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (id, invoice_id, amount, method, reference, paid_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.InvoiceID, p.Amount, p.Method, nullableText(p.Reference), p.PaidAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, invoice_id, amount, method, reference, paid_at
		FROM payments WHERE invoice_id=$1 ORDER BY paid_at DESC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Payment
	for rows.Next() {
		p := &Payment{}
		var ref sql.NullString
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &ref, &p.PaidAt); err != nil {
			return nil, err
		}
		p.Reference = ref.String
		out = append(out, p)
	}
	return out, rows.Err()
}

func nullableText(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
