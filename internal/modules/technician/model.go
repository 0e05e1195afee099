package technician

import (
	"time"

	"github.com/google/uuid"
)

// TechnicianStatus represents a technician's roster state.
type TechnicianStatus string

const (
	StatusAvailable TechnicianStatus = "available"
	StatusOnJob     TechnicianStatus = "on_job"
	StatusOffDuty   TechnicianStatus = "off_duty"
	StatusLocked    TechnicianStatus = "locked"
)

// ValidStatus reports whether s is one of the roster states.
func ValidStatus(s TechnicianStatus) bool {
	switch s {
	case StatusAvailable, StatusOnJob, StatusOffDuty, StatusLocked:
		return true
	}
	return false
}

// Proficiency levels a technician can hold for a skill.
const (
	ProficiencyBasic        = "basic"
	ProficiencyIntermediate = "intermediate"
	ProficiencyAdvanced     = "advanced"
	ProficiencyExpert       = "expert"
)

// ValidProficiency reports whether p is a known proficiency level.
func ValidProficiency(p string) bool {
	switch p {
	case ProficiencyBasic, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyExpert:
		return true
	}
	return false
}

// Technician is an employee on the service roster. The assignment engine
// reads this data but never writes it; status and skills are managed here.
type Technician struct {
	ID                 uuid.UUID        `json:"id"`
	Name               string           `json:"name"`
	Email              string           `json:"email,omitempty"`
	Phone              string           `json:"phone,omitempty"`
	Role               string           `json:"role"`
	Status             TechnicianStatus `json:"status"`
	Rating             float64          `json:"rating"`
	TotalJobsCompleted int              `json:"total_jobs_completed"`
	AvatarURL          string           `json:"avatar_url,omitempty"`
	Skills             []Skill          `json:"skills,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Skill is one named capability with a proficiency level.
type Skill struct {
	Name        string `json:"name"`
	Proficiency string `json:"proficiency"`
}

// CreateTechnicianRequest is the payload for adding a technician to the roster.
type CreateTechnicianRequest struct {
	Name   string  `json:"name"`
	Email  string  `json:"email,omitempty"`
	Phone  string  `json:"phone,omitempty"`
	Rating float64 `json:"rating,omitempty"`
	Skills []Skill `json:"skills,omitempty"`
}

// UpdateStatusRequest is the payload for changing a technician's roster status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// SetSkillsRequest replaces a technician's skill set.
type SetSkillsRequest struct {
	Skills []Skill `json:"skills"`
}
