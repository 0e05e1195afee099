package technician

import "context"

// Repository defines data access for the technician roster.
type Repository interface {
	// Create persists a new technician and their skills atomically.
	Create(ctx context.Context, t *Technician) error

	// GetByID retrieves a technician with their skills.
	GetByID(ctx context.Context, id string) (*Technician, error)

	// List returns all technicians, optionally filtered by status.
	List(ctx context.Context, status string) ([]*Technician, error)

	// UpdateStatus changes a technician's roster status.
	UpdateStatus(ctx context.Context, id string, status TechnicianStatus) error

	// ReplaceSkills swaps a technician's full skill set in a transaction.
	ReplaceSkills(ctx context.Context, id string, skills []Skill) error
}
