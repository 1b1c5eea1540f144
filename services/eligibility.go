package services

import (
	"fmt"

	"capbot-api/config"
)

// Ineligibility reason strings. Fixed so callers and tests can match on them.
const (
	ReasonInactive        = "reviewer is inactive"
	ReasonConflict        = "conflict of interest: reviewer owns or supervises this submission"
	ReasonAlreadyAssigned = "already assigned to this submission"
)

// EligibilityConstraints are the thresholds one suggestion or assignment
// request is evaluated under: the configured defaults, optionally
// tightened per request.
type EligibilityConstraints struct {
	MinSkillScore             float64
	MaxWorkload               int
	PrioritizeHighPerformance bool
	MinPerformanceScore       float64
	MinOnTimeRate             float64
	MinQualityRating          float64
}

// ConstraintsFromConfig seeds constraints from the matching config.
func ConstraintsFromConfig(cfg config.MatchingConfig) EligibilityConstraints {
	return EligibilityConstraints{
		MinSkillScore:       cfg.MinSkillScore,
		MaxWorkload:         cfg.MaxWorkload,
		MinPerformanceScore: cfg.MinPerformanceScore,
		MinOnTimeRate:       cfg.MinOnTimeRate,
		MinQualityRating:    cfg.MinQualityRating,
	}
}

// ApplyRequest overlays per-request overrides onto the defaults.
func (ec EligibilityConstraints) ApplyRequest(req *AutoAssignRequest) EligibilityConstraints {
	if req == nil {
		return ec
	}
	if req.MinSkillScore != nil {
		ec.MinSkillScore = *req.MinSkillScore
	}
	if req.MaxWorkload != nil {
		ec.MaxWorkload = *req.MaxWorkload
	}
	ec.PrioritizeHighPerformance = req.PrioritizeHighPerformance
	if req.MinPerformanceScore != nil {
		ec.MinPerformanceScore = *req.MinPerformanceScore
	}
	if req.MinOnTimeRate != nil {
		ec.MinOnTimeRate = *req.MinOnTimeRate
	}
	if req.MinQualityRating != nil {
		ec.MinQualityRating = *req.MinQualityRating
	}
	return ec
}

// SubmissionContext carries the facts about a submission that eligibility
// needs: who must not review it and who already does. For topic-level
// suggestions (no submission yet) only the supervisor is known.
type SubmissionContext struct {
	SubmissionID      int
	OwnerID           int
	SupervisorID      int
	AssignedReviewers map[int]bool
}

// EligibilityFilter applies the assignment rules to a scored candidate.
type EligibilityFilter struct {
	constraints EligibilityConstraints
}

func NewEligibilityFilter(constraints EligibilityConstraints) *EligibilityFilter {
	return &EligibilityFilter{constraints: constraints}
}

// Evaluate runs every rule in order and records every failure on the
// breakdown. It deliberately does not stop at the first failed rule: the
// considered-reviewers output reports all reasons at once.
func (f *EligibilityFilter) Evaluate(b *ScoreBreakdown, sctx *SubmissionContext) {
	var reasons []string

	if !b.Candidate.IsActive {
		reasons = append(reasons, ReasonInactive)
	}

	if sctx != nil {
		if b.Candidate.UserID == sctx.OwnerID || b.Candidate.UserID == sctx.SupervisorID {
			reasons = append(reasons, ReasonConflict)
		}
		if sctx.AssignedReviewers[b.Candidate.UserID] {
			reasons = append(reasons, ReasonAlreadyAssigned)
		}
	}

	if b.Candidate.ActiveAssignments > f.constraints.MaxWorkload {
		reasons = append(reasons, fmt.Sprintf("workload %d exceeds maximum of %d active assignments",
			b.Candidate.ActiveAssignments, f.constraints.MaxWorkload))
	}

	if f.constraints.PrioritizeHighPerformance {
		if b.Performance.Score < f.constraints.MinPerformanceScore {
			reasons = append(reasons, fmt.Sprintf("performance score %.2f below required %.2f",
				b.Performance.Score, f.constraints.MinPerformanceScore))
		}
		if b.Performance.OnTimeRate < f.constraints.MinOnTimeRate {
			reasons = append(reasons, fmt.Sprintf("on-time rate %.2f below required %.2f",
				b.Performance.OnTimeRate, f.constraints.MinOnTimeRate))
		}
		if b.Performance.QualityRating < f.constraints.MinQualityRating {
			reasons = append(reasons, fmt.Sprintf("quality rating %.2f below required %.2f",
				b.Performance.QualityRating, f.constraints.MinQualityRating))
		}
	}

	if b.SkillMatch.Overall < f.constraints.MinSkillScore {
		reasons = append(reasons, fmt.Sprintf("skill-match score %.2f below required %.2f",
			b.SkillMatch.Overall, f.constraints.MinSkillScore))
	}

	b.Eligible = len(reasons) == 0
	b.IneligibilityReasons = reasons
}
