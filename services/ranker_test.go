package services

import (
	"math"
	"testing"

	"capbot-api/config"
)

func TestWorkloadScoreDecreases(t *testing.T) {
	ranker := NewCandidateRanker(config.DefaultMatchingConfig())

	prev := ranker.WorkloadScore(0, 5)
	if prev != 5.0 {
		t.Fatalf("expected idle reviewer to score the full scale, got %f", prev)
	}
	for active := 1; active <= 5; active++ {
		score := ranker.WorkloadScore(active, 5)
		if score >= prev {
			t.Fatalf("workload score must strictly decrease: %d active gave %f after %f", active, score, prev)
		}
		prev = score
	}
	if prev != 0 {
		t.Fatalf("expected a full reviewer to score 0, got %f", prev)
	}
}

func TestWorkloadScoreSaturates(t *testing.T) {
	ranker := NewCandidateRanker(config.DefaultMatchingConfig())

	if score := ranker.WorkloadScore(12, 5); score != 0 {
		t.Fatalf("expected overloaded reviewer to floor at 0, got %f", score)
	}
	if score := ranker.WorkloadScore(0, 0); score < 0 {
		t.Fatalf("zero max workload must not produce a negative score, got %f", score)
	}
}

func TestCombineWeights(t *testing.T) {
	cfg := config.DefaultMatchingConfig()
	ranker := NewCandidateRanker(cfg)

	b := ScoreBreakdown{
		Candidate:   ReviewerCandidate{ActiveAssignments: 2},
		SkillMatch:  SkillMatchResult{Overall: 4.0},
		Performance: PerformanceResult{Score: 3.0},
	}
	ranker.Combine(&b, 5)

	wantWorkload := cfg.ScaleMax * (1 - 2.0/5.0)
	if math.Abs(b.WorkloadScore-wantWorkload) > 1e-9 {
		t.Fatalf("unexpected workload score: got %f want %f", b.WorkloadScore, wantWorkload)
	}
	want := cfg.SkillWeight*4.0 + cfg.PerformanceWeight*3.0 + cfg.WorkloadWeight*wantWorkload
	if math.Abs(b.OverallScore-want) > 1e-9 {
		t.Fatalf("unexpected overall score: got %f want %f", b.OverallScore, want)
	}
}

func rankedBreakdown(userID int, overall, skill float64, active int, eligible bool) ScoreBreakdown {
	return ScoreBreakdown{
		Candidate:    ReviewerCandidate{UserID: userID, ActiveAssignments: active},
		SkillMatch:   SkillMatchResult{Overall: skill},
		OverallScore: overall,
		Eligible:     eligible,
	}
}

func TestRankOrdersByOverallScore(t *testing.T) {
	ranker := NewCandidateRanker(config.DefaultMatchingConfig())

	considered := []ScoreBreakdown{
		rankedBreakdown(1, 2.0, 2.0, 0, true),
		rankedBreakdown(2, 4.5, 2.0, 0, true),
		rankedBreakdown(3, 3.0, 2.0, 0, true),
	}
	top := ranker.Rank(considered, 0)
	if len(top) != 3 {
		t.Fatalf("expected 3 eligible, got %d", len(top))
	}
	if top[0].Candidate.UserID != 2 || top[1].Candidate.UserID != 3 || top[2].Candidate.UserID != 1 {
		t.Fatalf("unexpected order: %d %d %d", top[0].Candidate.UserID, top[1].Candidate.UserID, top[2].Candidate.UserID)
	}
}

func TestRankTieBreaks(t *testing.T) {
	ranker := NewCandidateRanker(config.DefaultMatchingConfig())

	// Same overall: higher skill wins, then lighter workload, then lower id.
	considered := []ScoreBreakdown{
		rankedBreakdown(9, 3.0, 2.0, 2, true),
		rankedBreakdown(5, 3.0, 3.0, 2, true),
		rankedBreakdown(7, 3.0, 2.0, 1, true),
		rankedBreakdown(3, 3.0, 2.0, 2, true),
	}
	top := ranker.Rank(considered, 0)
	want := []int{5, 7, 3, 9}
	for i, id := range want {
		if top[i].Candidate.UserID != id {
			t.Fatalf("position %d: got user %d want %d", i, top[i].Candidate.UserID, id)
		}
	}
}

func TestRankExcludesIneligible(t *testing.T) {
	ranker := NewCandidateRanker(config.DefaultMatchingConfig())

	considered := []ScoreBreakdown{
		rankedBreakdown(1, 5.0, 5.0, 0, false),
		rankedBreakdown(2, 1.0, 1.0, 0, true),
	}
	top := ranker.Rank(considered, 0)
	if len(top) != 1 || top[0].Candidate.UserID != 2 {
		t.Fatalf("expected only the eligible candidate, got %+v", top)
	}

	// The considered slice itself keeps the ineligible entry, sorted.
	if considered[0].Candidate.UserID != 1 {
		t.Fatalf("expected ineligible top scorer to stay first in considered, got %d", considered[0].Candidate.UserID)
	}
}

func TestRankTopN(t *testing.T) {
	ranker := NewCandidateRanker(config.DefaultMatchingConfig())

	considered := []ScoreBreakdown{
		rankedBreakdown(1, 1.0, 1.0, 0, true),
		rankedBreakdown(2, 2.0, 2.0, 0, true),
		rankedBreakdown(3, 3.0, 3.0, 0, true),
		rankedBreakdown(4, 4.0, 4.0, 0, true),
	}
	top := ranker.Rank(considered, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 results, got %d", len(top))
	}
	if top[0].Candidate.UserID != 4 || top[1].Candidate.UserID != 3 {
		t.Fatalf("unexpected top-2: %d %d", top[0].Candidate.UserID, top[1].Candidate.UserID)
	}
}
