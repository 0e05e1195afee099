package assignment

import "strings"

// Scoring bands. Each component contributes a bounded amount so no single
// factor can dominate the ranking.
const (
	skillsBaseline = 20.0 // flat score when the job lists no required skills
	skillsBand     = 30.0
	skillsCap      = 40.0 // band plus proficiency bonuses, capped

	availabilityAvailable = 35.0
	availabilityOnJob     = 15.0
	availabilityOffDuty   = 5.0
	availabilityLocked    = 0.0
	availabilityUnknown   = 10.0

	// sequentialWorkPenalty overrides availability for a technician who still
	// has unfinished work on another invoice. The eligibility filter is the
	// authoritative gate; this penalty additionally keeps such technicians
	// non-competitive in any ranking that skips the filter.
	sequentialWorkPenalty = -50.0

	urgentPriorityBoost = 10.0
	highPriorityBoost   = 5.0

	workloadBand          = 25.0
	workloadPerAssignment = 5.0
)

var proficiencyBonus = map[string]float64{
	"expert":       5,
	"advanced":     3,
	"intermediate": 1,
	"basic":        0,
}

// Score rates one technician for one job. Pure and deterministic: identical
// inputs always produce an identical breakdown.
func Score(p TechnicianProfile, w WorkloadFacts, requiredSkills []string, priority string) ScoreBreakdown {
	b := ScoreBreakdown{
		SkillsMatch:  skillsMatchScore(p.Skills, requiredSkills),
		Availability: availabilityScore(p.Status, w, priority),
		Workload:     workloadScore(w.ActiveAssignments),
		RatingBonus:  p.Rating,
	}
	b.Total = round2(b.SkillsMatch + b.Availability + b.Workload + b.RatingBonus)
	return b
}

// skillsMatchScore scores the fraction of required skills the technician
// covers, plus a proficiency bonus per matched skill. When the job lists no
// skills every technician gets the same flat baseline, so the absence of
// requirements neither penalises nor rewards anyone.
func skillsMatchScore(skills map[string]string, required []string) float64 {
	if len(required) == 0 {
		return skillsBaseline
	}

	matched := 0
	bonus := 0.0
	for _, req := range required {
		best, found := 0.0, false
		for name, prof := range skills {
			if !matchesSkill(name, req) {
				continue
			}
			found = true
			if b := proficiencyBonus[strings.ToLower(prof)]; b > best {
				best = b
			}
		}
		if found {
			matched++
			bonus += best
		}
	}

	score := skillsBand*float64(matched)/float64(len(required)) + bonus
	if score > skillsCap {
		score = skillsCap
	}
	return round2(score)
}

// matchesSkill compares skill names by case-insensitive substring containment
// in both directions, so "ac" matches "ac split" and vice versa.
func matchesSkill(have, want string) bool {
	have = strings.ToLower(strings.TrimSpace(have))
	want = strings.ToLower(strings.TrimSpace(want))
	if have == "" || want == "" {
		return false
	}
	return strings.Contains(have, want) || strings.Contains(want, have)
}

func availabilityScore(status string, w WorkloadFacts, priority string) float64 {
	// The sequential-work constraint overrides everything else.
	if w.HasBlockingOrder {
		return sequentialWorkPenalty
	}

	var base float64
	switch strings.ToLower(status) {
	case "available":
		base = availabilityAvailable
	case "on_job":
		base = availabilityOnJob
	case "off_duty":
		base = availabilityOffDuty
	case "locked":
		base = availabilityLocked
	default:
		base = availabilityUnknown
	}

	// Urgent work boosts technicians who can actually start now.
	if strings.ToLower(status) == "available" {
		switch strings.ToLower(priority) {
		case "urgent":
			base += urgentPriorityBoost
		case "high":
			base += highPriorityBoost
		}
	}
	return base
}

// workloadScore decreases monotonically with the number of active assignments
// and bottoms out at zero.
func workloadScore(activeAssignments int) float64 {
	score := workloadBand - workloadPerAssignment*float64(activeAssignments)
	if score < 0 {
		score = 0
	}
	return score
}

func round2(v float64) float64 {
	if v < 0 {
		return -float64(int(-v*100+0.5)) / 100
	}
	return float64(int(v*100+0.5)) / 100
}
