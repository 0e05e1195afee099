package technician

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates the Postgres-backed roster repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, t *Technician) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, phone, role, status, rating, total_jobs_completed, avatar_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		t.ID, t.Name, nullableText(t.Email), nullableText(t.Phone),
		t.Role, t.Status, t.Rating, t.TotalJobsCompleted, nullableText(t.AvatarURL))
	if err != nil {
		return fmt.Errorf("insert employee: %w", err)
	}

	for _, sk := range t.Skills {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO employee_skills (employee_id, skill_name, proficiency)
			VALUES ($1,$2,$3)`,
			t.ID, sk.Name, sk.Proficiency)
		if err != nil {
			return fmt.Errorf("insert skill: %w", err)
		}
	}
	return tx.Commit()
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Technician, error) {
	t := &Technician{}
	var email, phone, avatar sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, status, rating, total_jobs_completed, avatar_url, created_at, updated_at
		FROM employees WHERE id=$1`, id).
		Scan(&t.ID, &t.Name, &email, &phone, &t.Role, &t.Status, &t.Rating,
			&t.TotalJobsCompleted, &avatar, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Email = email.String
	t.Phone = phone.String
	t.AvatarURL = avatar.String

	t.Skills, err = r.listSkills(ctx, id)
	return t, err
}

func (r *postgresRepo) List(ctx context.Context, status string) ([]*Technician, error) {
	query := `SELECT id, name, email, phone, role, status, rating, total_jobs_completed, avatar_url, created_at, updated_at
	          FROM employees WHERE role='technician'`
	args := []interface{}{}
	if status != "" {
		query += ` AND status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Technician
	for rows.Next() {
		t := &Technician{}
		var email, phone, avatar sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &email, &phone, &t.Role, &t.Status,
			&t.Rating, &t.TotalJobsCompleted, &avatar, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Email = email.String
		t.Phone = phone.String
		t.AvatarURL = avatar.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range out {
		if t.Skills, err = r.listSkills(ctx, t.ID.String()); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status TechnicianStatus) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE employees SET status=$1, updated_at=$2 WHERE id=$3`,
		status, time.Now(), id)
	return err
}

func (r *postgresRepo) ReplaceSkills(ctx context.Context, id string, skills []Skill) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM employee_skills WHERE employee_id=$1`, id); err != nil {
		return fmt.Errorf("delete skills: %w", err)
	}
	for _, sk := range skills {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO employee_skills (employee_id, skill_name, proficiency)
			VALUES ($1,$2,$3)`, id, sk.Name, sk.Proficiency)
		if err != nil {
			return fmt.Errorf("insert skill: %w", err)
		}
	}
	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *postgresRepo) listSkills(ctx context.Context, employeeID string) ([]Skill, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT skill_name, proficiency FROM employee_skills
		WHERE employee_id=$1 ORDER BY skill_name ASC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var skills []Skill
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.Name, &sk.Proficiency); err != nil {
			return nil, err
		}
		skills = append(skills, sk)
	}
	return skills, rows.Err()
}

func nullableText(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
