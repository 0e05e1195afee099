package technician

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service defines roster management business logic.
type Service interface {
	CreateTechnician(ctx context.Context, req CreateTechnicianRequest) (*Technician, error)
	GetTechnician(ctx context.Context, id string) (*Technician, error)
	ListTechnicians(ctx context.Context, status string) ([]*Technician, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Technician, error)
	SetSkills(ctx context.Context, id string, req SetSkillsRequest) (*Technician, error)
}

type service struct{ repo Repository }

// NewService creates a new technician service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateTechnician(ctx context.Context, req CreateTechnicianRequest) (*Technician, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if req.Rating < 0 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 0 and 5")
	}
	skills, err := normalizeSkills(req.Skills)
	if err != nil {
		return nil, err
	}

	t := &Technician{
		ID:     uuid.New(),
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   "technician",
		Status: StatusAvailable,
		Rating: req.Rating,
		Skills: skills,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to persist technician: %w", err)
	}
	return t, nil
}

func (s *service) GetTechnician(ctx context.Context, id string) (*Technician, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListTechnicians(ctx context.Context, status string) ([]*Technician, error) {
	status = strings.ToLower(status)
	if status != "" && !ValidStatus(TechnicianStatus(status)) {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	return s.repo.List(ctx, status)
}

func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*Technician, error) {
	next := TechnicianStatus(strings.ToLower(req.Status))
	if !ValidStatus(next) {
		return nil, fmt.Errorf("invalid status %q", req.Status)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("technician not found: %w", err)
	}
	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetSkills(ctx context.Context, id string, req SetSkillsRequest) (*Technician, error) {
	skills, err := normalizeSkills(req.Skills)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("technician not found: %w", err)
	}
	if err := s.repo.ReplaceSkills(ctx, id, skills); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// normalizeSkills lowercases names and proficiencies and validates levels.
func normalizeSkills(skills []Skill) ([]Skill, error) {
	out := make([]Skill, 0, len(skills))
	for _, sk := range skills {
		name := strings.ToLower(strings.TrimSpace(sk.Name))
		if name == "" {
			return nil, fmt.Errorf("skill name is required")
		}
		prof := strings.ToLower(strings.TrimSpace(sk.Proficiency))
		if prof == "" {
			prof = ProficiencyBasic
		}
		if !ValidProficiency(prof) {
			return nil, fmt.Errorf("invalid proficiency %q for skill %q", sk.Proficiency, sk.Name)
		}
		out = append(out, Skill{Name: name, Proficiency: prof})
	}
	return out, nil
}
