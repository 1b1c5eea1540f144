package services

import (
	"math"
	"testing"

	"capbot-api/config"
)

func floatPtr(v float64) *float64 { return &v }

func TestScoreZeroCompletedGetsDefault(t *testing.T) {
	cfg := config.DefaultMatchingConfig()
	scorer := NewPerformanceScorer(cfg)

	// A brand-new reviewer must receive the neutral default, never a
	// zero that would bury them in the ranking.
	result := scorer.Score(ReviewerCandidate{CompletedAssignments: 0})
	if result.Score != cfg.DefaultPerformanceScore {
		t.Fatalf("expected default score %f, got %f", cfg.DefaultPerformanceScore, result.Score)
	}
	if !result.IsDefault {
		t.Fatal("expected IsDefault to be set")
	}
	if result.Score == 0 {
		t.Fatal("default score must not be zero")
	}
}

func TestScoreZeroCompletedIgnoresStats(t *testing.T) {
	cfg := config.DefaultMatchingConfig()
	scorer := NewPerformanceScorer(cfg)

	// Stats left over from a cleared history do not override the default.
	result := scorer.Score(ReviewerCandidate{
		CompletedAssignments: 0,
		QualityRating:        floatPtr(5.0),
		OnTimeRate:           floatPtr(1.0),
	})
	if result.Score != cfg.DefaultPerformanceScore {
		t.Fatalf("expected default score %f, got %f", cfg.DefaultPerformanceScore, result.Score)
	}
	if result.QualityRating != 5.0 {
		t.Fatalf("expected raw quality still reported, got %f", result.QualityRating)
	}
}

func TestScoreCompositeWeights(t *testing.T) {
	cfg := config.DefaultMatchingConfig()
	scorer := NewPerformanceScorer(cfg)

	result := scorer.Score(ReviewerCandidate{
		CompletedAssignments: 12,
		QualityRating:        floatPtr(4.0),
		OnTimeRate:           floatPtr(0.9),
		AverageScoreGiven:    floatPtr(2.5), // exactly the midpoint, full calibration
	})

	want := cfg.QualityWeight*4.0 + cfg.OnTimeWeight*0.9*cfg.ScaleMax + cfg.AvgScoreWeight*1.0*cfg.ScaleMax
	if math.Abs(result.Score-want) > 1e-9 {
		t.Fatalf("unexpected composite: got %f want %f", result.Score, want)
	}
	if result.IsDefault {
		t.Fatal("earned score must not be flagged as default")
	}
}

func TestScoreCalibrationPenalizesExtremes(t *testing.T) {
	scorer := NewPerformanceScorer(config.DefaultMatchingConfig())

	base := ReviewerCandidate{
		CompletedAssignments: 5,
		QualityRating:        floatPtr(3.0),
		OnTimeRate:           floatPtr(0.8),
	}

	calibrated := base
	calibrated.AverageScoreGiven = floatPtr(2.5)
	harsh := base
	harsh.AverageScoreGiven = floatPtr(0.0)
	generous := base
	generous.AverageScoreGiven = floatPtr(5.0)

	mid := scorer.Score(calibrated).Score
	if low := scorer.Score(harsh).Score; low >= mid {
		t.Fatalf("expected harsh grader %f below calibrated %f", low, mid)
	}
	if high := scorer.Score(generous).Score; high >= mid {
		t.Fatalf("expected generous grader %f below calibrated %f", high, mid)
	}
}

func TestScoreMissingStatsFallToNeutral(t *testing.T) {
	cfg := config.DefaultMatchingConfig()
	scorer := NewPerformanceScorer(cfg)

	result := scorer.Score(ReviewerCandidate{CompletedAssignments: 3})
	if result.QualityRating != cfg.ScaleMax/2 {
		t.Fatalf("expected neutral quality %f, got %f", cfg.ScaleMax/2, result.QualityRating)
	}
	if result.OnTimeRate != 0.5 {
		t.Fatalf("expected neutral on-time rate 0.5, got %f", result.OnTimeRate)
	}
	if result.Score <= 0 || result.Score > cfg.ScaleMax {
		t.Fatalf("score %f out of bounds", result.Score)
	}
}

func TestScoreClampsOutOfRangeInputs(t *testing.T) {
	cfg := config.DefaultMatchingConfig()
	scorer := NewPerformanceScorer(cfg)

	result := scorer.Score(ReviewerCandidate{
		CompletedAssignments: 1,
		QualityRating:        floatPtr(99.0),
		OnTimeRate:           floatPtr(2.0),
		AverageScoreGiven:    floatPtr(-1.0),
	})
	if result.QualityRating != cfg.ScaleMax {
		t.Fatalf("expected quality clamped to %f, got %f", cfg.ScaleMax, result.QualityRating)
	}
	if result.OnTimeRate != 1.0 {
		t.Fatalf("expected on-time rate clamped to 1, got %f", result.OnTimeRate)
	}
	if result.AverageScoreGiven != 0 {
		t.Fatalf("expected average-given clamped to 0, got %f", result.AverageScoreGiven)
	}
	if result.Score < 0 || result.Score > cfg.ScaleMax {
		t.Fatalf("score %f out of bounds", result.Score)
	}
}
