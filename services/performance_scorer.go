package services

import (
	"capbot-api/config"
)

// PerformanceScorer turns a candidate's historical stats into one bounded
// score. Missing stats fall back to neutral midpoints so a reviewer with a
// thin history is not scored as if failing.
type PerformanceScorer struct {
	cfg config.MatchingConfig
}

func NewPerformanceScorer(cfg config.MatchingConfig) *PerformanceScorer {
	return &PerformanceScorer{cfg: cfg}
}

// Score computes the composite performance score. A reviewer with zero
// completed assignments receives the configured default instead of an
// earned score, but the raw components are still reported.
func (p *PerformanceScorer) Score(c ReviewerCandidate) PerformanceResult {
	scaleMid := p.cfg.ScaleMax / 2

	quality := valueOr(c.QualityRating, scaleMid)
	onTime := valueOr(c.OnTimeRate, 0.5)
	avgGiven := valueOr(c.AverageScoreGiven, scaleMid)

	quality = clamp(quality, 0, p.cfg.ScaleMax)
	onTime = clamp(onTime, 0, 1)
	avgGiven = clamp(avgGiven, 0, p.cfg.ScaleMax)

	result := PerformanceResult{
		QualityRating:     quality,
		OnTimeRate:        onTime,
		AverageScoreGiven: avgGiven,
	}

	if c.CompletedAssignments == 0 {
		result.Score = p.cfg.DefaultPerformanceScore
		result.IsDefault = true
		return result
	}

	// Average-score-given rewards calibrated grading: full credit at the
	// scale midpoint, falling off toward the extremes.
	calibration := 1 - abs(avgGiven-scaleMid)/scaleMid

	score := p.cfg.QualityWeight*quality +
		p.cfg.OnTimeWeight*onTime*p.cfg.ScaleMax +
		p.cfg.AvgScoreWeight*calibration*p.cfg.ScaleMax

	result.Score = clamp(score, 0, p.cfg.ScaleMax)
	return result
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
