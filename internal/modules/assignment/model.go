package assignment

import (
	"time"

	"github.com/google/uuid"
)

// TechnicianProfile is the read-only roster view the engine scores against.
type TechnicianProfile struct {
	ID            uuid.UUID         `json:"id"`
	Name          string            `json:"name"`
	Status        string            `json:"status"` // available|on_job|off_duty|locked
	Rating        float64           `json:"rating"`
	CompletedJobs int               `json:"completed_jobs"`
	Skills        map[string]string `json:"skills"` // skill name → proficiency
}

// WorkloadFacts summarises a technician's current commitments at scoring time.
type WorkloadFacts struct {
	// ActiveAssignments is the number of assignments currently held.
	ActiveAssignments int `json:"active_assignments"`
	// HasBlockingOrder is true when the technician holds an active assignment
	// on a different invoice that is neither terminal nor paid — the
	// sequential-work constraint.
	HasBlockingOrder bool `json:"has_blocking_order"`
}

// ScoreBreakdown is the result of scoring one technician for one job.
type ScoreBreakdown struct {
	SkillsMatch  float64 `json:"skills_match"`
	Availability float64 `json:"availability"`
	Workload     float64 `json:"workload"`
	RatingBonus  float64 `json:"rating_bonus"`
	Total        float64 `json:"total"`
}

// ScoredTechnician is a ranked candidate with its score and eligibility verdict.
type ScoredTechnician struct {
	TechnicianID uuid.UUID      `json:"technician_id"`
	Name         string         `json:"name"`
	Score        ScoreBreakdown `json:"score"`
	Eligible     bool           `json:"eligible"`
	Reason       string         `json:"reason,omitempty"`
}

// Assignment binds a technician to a service job.
type Assignment struct {
	ID         uuid.UUID  `json:"id"`
	JobID      uuid.UUID  `json:"job_id"`
	EmployeeID uuid.UUID  `json:"employee_id"`
	Role       string     `json:"role"`
	Status     string     `json:"status"` // active|completed|cancelled|released
	Score      float64    `json:"score"`
	AssignedAt time.Time  `json:"assigned_at"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

// AssignRequest triggers technician selection for a job. When JobID is empty
// the call is a dry run and only returns the ranked recommendations.
type AssignRequest struct {
	JobID          string   `json:"job_id,omitempty"`
	OrderID        string   `json:"order_id,omitempty"` // invoice excluded from the sequential-work check
	RequiredSkills []string `json:"required_skills,omitempty"`
	Priority       string   `json:"priority,omitempty"` // low|normal|high|urgent
}

// AssignResponse is the structured outcome of a selection. An absent eligible
// candidate is reported here as data, never as an error.
type AssignResponse struct {
	Success            bool                `json:"success"`
	Assigned           bool                `json:"assigned"`
	AssignedTechnician *ScoredTechnician   `json:"assigned_technician,omitempty"`
	Recommendations    []*ScoredTechnician `json:"recommendations"`
	Message            string              `json:"message,omitempty"`
}
