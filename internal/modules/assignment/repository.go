package assignment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the reads and the single conditional write the selector
// needs. Roster and workload are multi-reader shared state; only
// CommitAssignment mutates, and only the one job row it targets.
type Repository interface {
	// FetchRoster returns every technician with their skill set.
	FetchRoster(ctx context.Context) ([]*TechnicianProfile, error)

	// FetchWorkload returns per-technician workload facts in one snapshot.
	// The given invoice is excluded from the sequential-work check so
	// re-assigning within the same order cannot block itself.
	FetchWorkload(ctx context.Context, excludeInvoiceID string) (map[uuid.UUID]WorkloadFacts, error)

	// FetchWorkloadFor re-reads one technician's facts, used to re-validate
	// the winning candidate immediately before commit.
	FetchWorkloadFor(ctx context.Context, technicianID, excludeInvoiceID string) (WorkloadFacts, error)

	// CommitAssignment atomically moves the job from pending to assigned and
	// records the assignment. Returns ErrJobConflict when the job was no
	// longer pending. On success it returns the job's invoice id so the
	// caller can trigger downstream recomputation.
	CommitAssignment(ctx context.Context, jobID string, technicianID uuid.UUID, score float64) (invoiceID string, err error)

	// ListJobAssignments returns all assignments recorded for a job.
	ListJobAssignments(ctx context.Context, jobID string) ([]*Assignment, error)

	// ListTechnicianAssignments returns all assignments held by a technician.
	ListTechnicianAssignments(ctx context.Context, technicianID string) ([]*Assignment, error)
}
