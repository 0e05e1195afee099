package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rekamteknik/fieldservice-backend/internal/modules/invoice"
)

// maxRecommendations bounds the ranked list returned to callers.
const maxRecommendations = 5

// StatusRecomputer is the downstream aggregator notified after a successful
// commit. Control flows one way: the aggregator never calls back into the
// selector.
type StatusRecomputer interface {
	Recompute(ctx context.Context, invoiceID string) (*invoice.Invoice, error)
}

// Service defines the assignment engine business logic.
type Service interface {
	// Assign scores and ranks the roster for a job and, unless the request is
	// a dry run, commits the top eligible candidate.
	Assign(ctx context.Context, req AssignRequest) (*AssignResponse, error)

	// ListJobAssignments returns the assignment history of a job.
	ListJobAssignments(ctx context.Context, jobID string) ([]*Assignment, error)

	// ListTechnicianAssignments returns a technician's assignment history.
	ListTechnicianAssignments(ctx context.Context, technicianID string) ([]*Assignment, error)
}

type service struct {
	repo     Repository
	invoices StatusRecomputer
}

// NewService creates a new assignment service.
func NewService(repo Repository, invoices StatusRecomputer) Service {
	return &service{repo: repo, invoices: invoices}
}

// Assign runs the full selection pipeline: roster fetch → workload fetch →
// score → rank → filter → conditional commit. Absence of an eligible
// candidate is a normal business outcome reported in the response, not an
// error; only an empty roster or upstream failures surface as errors.
func (s *service) Assign(ctx context.Context, req AssignRequest) (*AssignResponse, error) {
	priority := strings.ToLower(req.Priority)
	if priority == "" {
		priority = "normal"
	}

	roster, err := s.repo.FetchRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	if len(roster) == 0 {
		return nil, ErrNoTechnicians
	}

	workload, err := s.repo.FetchWorkload(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workload: %w", err)
	}

	candidates := make([]*ScoredTechnician, 0, len(roster))
	for _, p := range roster {
		facts := workload[p.ID]
		eligible, reason := Eligible(*p, facts)
		candidates = append(candidates, &ScoredTechnician{
			TechnicianID: p.ID,
			Name:         p.Name,
			Score:        Score(*p, facts, req.RequiredSkills, priority),
			Eligible:     eligible,
			Reason:       reason,
		})
	}
	rankCandidates(candidates)

	resp := &AssignResponse{
		Success:         true,
		Recommendations: topCandidates(candidates, maxRecommendations),
	}

	if req.JobID == "" {
		resp.Message = "dry run: no job_id supplied, returning recommendations only"
		return resp, nil
	}

	eligible := FilterEligible(candidates)
	if len(eligible) == 0 {
		resp.Message = "no eligible technicians"
		return resp, nil
	}

	// Scoring ran against a snapshot that may already be stale, so the winner
	// is re-validated right before the conditional commit. If eligibility was
	// lost in between, selection falls back to the next candidate exactly once.
	for attempt, cand := range eligible {
		if attempt > 1 {
			break
		}

		facts, err := s.repo.FetchWorkloadFor(ctx, cand.TechnicianID.String(), req.OrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-validate candidate: %w", err)
		}
		if facts.HasBlockingOrder {
			cand.Eligible = false
			cand.Reason = "became ineligible before commit"
			continue
		}

		invoiceID, err := s.repo.CommitAssignment(ctx, req.JobID, cand.TechnicianID, cand.Score.Total)
		if errors.Is(err, ErrJobConflict) {
			resp.Message = "job was already assigned by a concurrent request"
			return resp, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to commit assignment: %w", err)
		}

		if _, err := s.invoices.Recompute(ctx, invoiceID); err != nil {
			return nil, fmt.Errorf("assignment committed but invoice recompute failed: %w", err)
		}

		resp.Assigned = true
		resp.AssignedTechnician = cand
		resp.Message = fmt.Sprintf("assigned to %s", cand.Name)
		return resp, nil
	}

	resp.Message = "no eligible technicians"
	return resp, nil
}

func (s *service) ListJobAssignments(ctx context.Context, jobID string) ([]*Assignment, error) {
	return s.repo.ListJobAssignments(ctx, jobID)
}

func (s *service) ListTechnicianAssignments(ctx context.Context, technicianID string) ([]*Assignment, error) {
	return s.repo.ListTechnicianAssignments(ctx, technicianID)
}

func topCandidates(candidates []*ScoredTechnician, n int) []*ScoredTechnician {
	if len(candidates) < n {
		n = len(candidates)
	}
	return candidates[:n]
}
