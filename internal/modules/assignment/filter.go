package assignment

import (
	"sort"
	"strings"
)

// Eligible reports whether a technician may legally be committed to new work,
// with a human-readable reason when they may not. This is the authoritative
// gate before commit, kept separate from the score penalty on purpose: any
// code path that ranks without filtering still sees the penalised score, and
// any path that skips ranking still hits this filter.
func Eligible(p TechnicianProfile, w WorkloadFacts) (bool, string) {
	if strings.ToLower(p.Status) == "locked" {
		return false, "technician is locked"
	}
	if w.HasBlockingOrder {
		return false, "has unfinished work on another order"
	}
	return true, ""
}

// FilterEligible returns only the candidates that passed the eligibility gate,
// preserving order.
func FilterEligible(candidates []*ScoredTechnician) []*ScoredTechnician {
	var out []*ScoredTechnician
	for _, c := range candidates {
		if c.Eligible {
			out = append(out, c)
		}
	}
	return out
}

// rankCandidates sorts by total score descending. Equal scores fall back to
// technician id ascending so a selection is reproducible regardless of the
// order the roster was fetched in.
func rankCandidates(candidates []*ScoredTechnician) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score.Total != candidates[j].Score.Total {
			return candidates[i].Score.Total > candidates[j].Score.Total
		}
		return candidates[i].TechnicianID.String() < candidates[j].TechnicianID.String()
	})
}
