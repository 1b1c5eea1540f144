package services

import (
	"sort"

	"capbot-api/config"
)

// CandidateRanker folds skill, performance and workload into one overall
// score and orders candidates deterministically.
type CandidateRanker struct {
	cfg config.MatchingConfig
}

func NewCandidateRanker(cfg config.MatchingConfig) *CandidateRanker {
	return &CandidateRanker{cfg: cfg}
}

// WorkloadScore decreases monotonically with the number of active
// assignments, so candidates with spare capacity rank higher.
func (r *CandidateRanker) WorkloadScore(activeAssignments, maxWorkload int) float64 {
	if maxWorkload <= 0 {
		maxWorkload = 1
	}
	load := float64(activeAssignments) / float64(maxWorkload)
	if load > 1 {
		load = 1
	}
	return r.cfg.ScaleMax * (1 - load)
}

// Combine fills in the workload and overall scores of a breakdown.
func (r *CandidateRanker) Combine(b *ScoreBreakdown, maxWorkload int) {
	b.WorkloadScore = r.WorkloadScore(b.Candidate.ActiveAssignments, maxWorkload)
	b.OverallScore = r.cfg.SkillWeight*b.SkillMatch.Overall +
		r.cfg.PerformanceWeight*b.Performance.Score +
		r.cfg.WorkloadWeight*b.WorkloadScore
}

// Rank sorts the considered list in place and returns the top-N eligible
// candidates. Ties break by skill score, then lower workload, then
// ascending reviewer id so results are reproducible.
func (r *CandidateRanker) Rank(considered []ScoreBreakdown, topN int) []ScoreBreakdown {
	sort.SliceStable(considered, func(i, j int) bool {
		a, b := considered[i], considered[j]
		if a.OverallScore != b.OverallScore {
			return a.OverallScore > b.OverallScore
		}
		if a.SkillMatch.Overall != b.SkillMatch.Overall {
			return a.SkillMatch.Overall > b.SkillMatch.Overall
		}
		if a.Candidate.ActiveAssignments != b.Candidate.ActiveAssignments {
			return a.Candidate.ActiveAssignments < b.Candidate.ActiveAssignments
		}
		return a.Candidate.UserID < b.Candidate.UserID
	})

	var top []ScoreBreakdown
	for _, b := range considered {
		if !b.Eligible {
			continue
		}
		top = append(top, b)
		if topN > 0 && len(top) == topN {
			break
		}
	}
	return top
}
