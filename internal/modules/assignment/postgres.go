package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the Postgres-backed assignment repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) FetchRoster(ctx context.Context) ([]*TechnicianProfile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, status, rating, total_jobs_completed
		FROM employees WHERE role='technician' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*TechnicianProfile)
	var roster []*TechnicianProfile
	for rows.Next() {
		p := &TechnicianProfile{Skills: map[string]string{}}
		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &p.Rating, &p.CompletedJobs); err != nil {
			return nil, err
		}
		byID[p.ID] = p
		roster = append(roster, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return roster, nil
	}

	skillRows, err := r.db.QueryContext(ctx,
		`SELECT employee_id, skill_name, proficiency FROM employee_skills`)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var id uuid.UUID
		var name, proficiency string
		if err := skillRows.Scan(&id, &name, &proficiency); err != nil {
			return nil, err
		}
		if p, ok := byID[id]; ok {
			p.Skills[name] = proficiency
		}
	}
	return roster, skillRows.Err()
}

// workloadQuery aggregates, per technician, the count of active assignments
// and whether any of them is bound to a different invoice that is neither
// terminal nor paid.
const workloadQuery = `
	SELECT a.employee_id,
	       COUNT(*) AS active_assignments,
	       BOOL_OR(i.id <> $1
	               AND i.status NOT IN ('cancelled','closed','paid')
	               AND i.payment_status <> 'paid') AS has_blocking_order
	FROM assignments a
	JOIN service_jobs j ON j.id = a.job_id
	JOIN invoices i ON i.id = j.invoice_id
	WHERE a.status = 'active'`

func (r *postgresRepo) FetchWorkload(ctx context.Context, excludeInvoiceID string) (map[uuid.UUID]WorkloadFacts, error) {
	rows, err := r.db.QueryContext(ctx,
		workloadQuery+` GROUP BY a.employee_id`, normalizeExclude(excludeInvoiceID))
	if err != nil {
		return nil, fmt.Errorf("query workload: %w", err)
	}
	defer rows.Close()

	facts := make(map[uuid.UUID]WorkloadFacts)
	for rows.Next() {
		var id uuid.UUID
		var f WorkloadFacts
		if err := rows.Scan(&id, &f.ActiveAssignments, &f.HasBlockingOrder); err != nil {
			return nil, err
		}
		facts[id] = f
	}
	return facts, rows.Err()
}

func (r *postgresRepo) FetchWorkloadFor(ctx context.Context, technicianID, excludeInvoiceID string) (WorkloadFacts, error) {
	var f WorkloadFacts
	err := r.db.QueryRowContext(ctx,
		workloadQuery+` AND a.employee_id = $2 GROUP BY a.employee_id`,
		normalizeExclude(excludeInvoiceID), technicianID).
		Scan(new(uuid.UUID), &f.ActiveAssignments, &f.HasBlockingOrder)
	if errors.Is(err, sql.ErrNoRows) {
		return WorkloadFacts{}, nil
	}
	if err != nil {
		return WorkloadFacts{}, fmt.Errorf("query workload for %s: %w", technicianID, err)
	}
	return f, nil
}

// CommitAssignment is the only mutating step of a selection. The job update is
// conditional on the job still being pending, so two racing selections cannot
// both claim it.
func (r *postgresRepo) CommitAssignment(ctx context.Context, jobID string, technicianID uuid.UUID, score float64) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var invoiceID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		UPDATE service_jobs
		SET status='assigned', assigned_technician=$1, updated_at=$2
		WHERE id=$3 AND status='pending'
		RETURNING invoice_id`,
		technicianID, time.Now(), jobID).Scan(&invoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrJobConflict
	}
	if err != nil {
		return "", fmt.Errorf("claim job: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assignments (id, job_id, employee_id, role, status, score)
		VALUES ($1,$2,$3,'lead','active',$4)`,
		uuid.New(), jobID, technicianID, score)
	if err != nil {
		return "", fmt.Errorf("insert assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return invoiceID.String(), nil
}

func (r *postgresRepo) ListJobAssignments(ctx context.Context, jobID string) ([]*Assignment, error) {
	return r.queryAssignments(ctx, `
		SELECT id, job_id, employee_id, role, status, score, assigned_at, released_at
		FROM assignments WHERE job_id=$1 ORDER BY assigned_at DESC`, jobID)
}

func (r *postgresRepo) ListTechnicianAssignments(ctx context.Context, technicianID string) ([]*Assignment, error) {
	return r.queryAssignments(ctx, `
		SELECT id, job_id, employee_id, role, status, score, assigned_at, released_at
		FROM assignments WHERE employee_id=$1 ORDER BY assigned_at DESC`, technicianID)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) queryAssignments(ctx context.Context, query string, args ...interface{}) ([]*Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Assignment
	for rows.Next() {
		a := &Assignment{}
		if err := rows.Scan(&a.ID, &a.JobID, &a.EmployeeID, &a.Role, &a.Status,
			&a.Score, &a.AssignedAt, &a.ReleasedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// normalizeExclude turns an absent order id into the nil UUID so the SQL
// comparison against i.id never matches a real invoice.
func normalizeExclude(invoiceID string) string {
	if invoiceID == "" {
		return uuid.Nil.String()
	}
	return invoiceID
}
