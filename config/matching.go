package config

import (
	"os"
	"strconv"
	"time"
)

// MatchingConfig holds every threshold and weight used by the reviewer
// matching engine. It is threaded explicitly through the services so test
// code can inject its own values instead of relying on ambient state.
type MatchingConfig struct {
	// Scale ceiling for every sub-score (skill, performance, workload).
	ScaleMax float64

	// Per-field weights for the skill-match score.
	TitleWeight       float64
	CategoryWeight    float64
	DescriptionWeight float64

	// Weights combining the sub-scores into the overall score.
	SkillWeight       float64
	PerformanceWeight float64
	WorkloadWeight    float64

	// Weights inside the performance composite.
	QualityWeight  float64
	OnTimeWeight   float64
	AvgScoreWeight float64

	// Score given to reviewers with no completed assignments yet.
	DefaultPerformanceScore float64

	// Eligibility thresholds.
	MinSkillScore float64
	MaxWorkload   int

	// Sub-thresholds applied only when a request sets PrioritizeHighPerformance.
	MinPerformanceScore float64
	MinOnTimeRate       float64
	MinQualityRating    float64

	// Upper bound on a single call to the AI explanation collaborator.
	ExplainTimeout time.Duration
}

// DefaultMatchingConfig returns the built-in weights. Tests use this
// directly; production goes through LoadMatchingConfig.
func DefaultMatchingConfig() MatchingConfig {
	return MatchingConfig{
		ScaleMax:                5.0,
		TitleWeight:             0.5,
		CategoryWeight:          0.3,
		DescriptionWeight:       0.2,
		SkillWeight:             0.5,
		PerformanceWeight:       0.3,
		WorkloadWeight:          0.2,
		QualityWeight:           0.5,
		OnTimeWeight:            0.3,
		AvgScoreWeight:          0.2,
		DefaultPerformanceScore: 3.0,
		MinSkillScore:           0.5,
		MaxWorkload:             5,
		MinPerformanceScore:     3.5,
		MinOnTimeRate:           0.7,
		MinQualityRating:        3.0,
		ExplainTimeout:          10 * time.Second,
	}
}

// LoadMatchingConfig reads overrides from environment variables, falling
// back to the defaults for anything unset.
func LoadMatchingConfig() MatchingConfig {
	cfg := DefaultMatchingConfig()

	cfg.MinSkillScore = envFloat("MATCH_MIN_SKILL_SCORE", cfg.MinSkillScore)
	cfg.MaxWorkload = envInt("MATCH_MAX_WORKLOAD", cfg.MaxWorkload)
	cfg.DefaultPerformanceScore = envFloat("MATCH_DEFAULT_PERFORMANCE", cfg.DefaultPerformanceScore)
	cfg.MinPerformanceScore = envFloat("MATCH_MIN_PERFORMANCE", cfg.MinPerformanceScore)
	cfg.MinOnTimeRate = envFloat("MATCH_MIN_ONTIME_RATE", cfg.MinOnTimeRate)
	cfg.MinQualityRating = envFloat("MATCH_MIN_QUALITY", cfg.MinQualityRating)

	if secs := envInt("MATCH_EXPLAIN_TIMEOUT_SECONDS", 0); secs > 0 {
		cfg.ExplainTimeout = time.Duration(secs) * time.Second
	}

	return cfg
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
