package services

import (
	"time"

	"capbot-api/models"
)

// TopicSignature is the read-only snapshot of a topic's text fields that a
// suggestion request scores against. It is resolved once per request (see
// ResolveTopicSignature) so the fallback between submission, topic version
// and topic lives in a single place.
type TopicSignature struct {
	TopicID        int    `json:"topic_id"`
	TopicVersionID int    `json:"topic_version_id,omitempty"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Objectives     string `json:"objectives"`
}

// ReviewerCandidate is the per-request snapshot of a reviewer. Workload is
// re-read from active assignment rows on every request rather than cached.
type ReviewerCandidate struct {
	UserID               int                    `json:"user_id"`
	FullName             string                 `json:"full_name"`
	Email                string                 `json:"email"`
	IsActive             bool                   `json:"is_active"`
	Skills               []models.ReviewerSkill `json:"skills"`
	ActiveAssignments    int                    `json:"active_assignments"`
	CompletedAssignments int                    `json:"completed_assignments"`
	AverageScoreGiven    *float64               `json:"average_score_given,omitempty"`
	OnTimeRate           *float64               `json:"on_time_rate,omitempty"`
	QualityRating        *float64               `json:"quality_rating,omitempty"`
}

// TokenMatch records one field token that matched a skill tag, with its
// contribution to the field score. Kept for explainability output.
type TokenMatch struct {
	Token        string  `json:"token"`
	SkillTag     string  `json:"skill_tag"`
	Contribution float64 `json:"contribution"`
}

// FieldMatch is the per-field slice of a skill-match score.
type FieldMatch struct {
	Field         string       `json:"field"`
	Score         float64      `json:"score"`
	MatchedTokens []TokenMatch `json:"matched_tokens,omitempty"`
}

// SkillMatchResult is the full skill-match verdict for one candidate.
type SkillMatchResult struct {
	Overall       float64      `json:"overall"`
	Fields        []FieldMatch `json:"fields"`
	MatchedSkills []string     `json:"matched_skills"`
}

// PerformanceResult is the composite performance score with the raw
// components it was built from. Components are always populated, even when
// the underlying stats were null.
type PerformanceResult struct {
	Score             float64 `json:"score"`
	QualityRating     float64 `json:"quality_rating"`
	OnTimeRate        float64 `json:"on_time_rate"`
	AverageScoreGiven float64 `json:"average_score_given"`
	IsDefault         bool    `json:"is_default"`
}

// ScoreBreakdown is one candidate's complete scoring record, eligible or
// not. Built fresh per suggestion request and never persisted.
type ScoreBreakdown struct {
	Candidate            ReviewerCandidate `json:"candidate"`
	SkillMatch           SkillMatchResult  `json:"skill_match"`
	Performance          PerformanceResult `json:"performance"`
	WorkloadScore        float64           `json:"workload_score"`
	OverallScore         float64           `json:"overall_score"`
	Eligible             bool              `json:"eligible"`
	IneligibilityReasons []string          `json:"ineligibility_reasons,omitempty"`
}

// ReviewerAssignmentInput is one entry of an explicit assignment request.
type ReviewerAssignmentInput struct {
	ReviewerID      int        `json:"reviewer_id" binding:"required"`
	AssignmentType  string     `json:"assignment_type"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	SkillMatchScore *float64   `json:"skill_match_score,omitempty"`
}

// AutoAssignRequest asks the engine to pick and commit reviewers itself.
type AutoAssignRequest struct {
	SubmissionID              int        `json:"submission_id" binding:"required"`
	RequestedReviewers        int        `json:"requested_reviewers" binding:"required"`
	AssignmentType            string     `json:"assignment_type"`
	Deadline                  *time.Time `json:"deadline,omitempty"`
	MinSkillScore             *float64   `json:"min_skill_score,omitempty"`
	MaxWorkload               *int       `json:"max_workload,omitempty"`
	PrioritizeHighPerformance bool       `json:"prioritize_high_performance"`
	MinPerformanceScore       *float64   `json:"min_performance_score,omitempty"`
	MinOnTimeRate             *float64   `json:"min_on_time_rate,omitempty"`
	MinQualityRating          *float64   `json:"min_quality_rating,omitempty"`
}

// AssignedReviewer pairs a committed assignment with the candidate
// snapshot it was ranked from.
type AssignedReviewer struct {
	Assignment models.ReviewAssignment `json:"assignment"`
	Candidate  *ScoreBreakdown         `json:"candidate,omitempty"`
}

// AssignmentEntryError is a per-entry commit failure. The batch keeps
// going; these never abort the call.
type AssignmentEntryError struct {
	ReviewerID int    `json:"reviewer_id"`
	Reason     string `json:"reason"`
}

// AssignmentResultSet is the single authoritative output shape for both
// explicit and auto assignment.
type AssignmentResultSet struct {
	SubmissionID        int                    `json:"submission_id"`
	RequestedReviewers  int                    `json:"requested_reviewers"`
	AssignedCount       int                    `json:"assigned_count"`
	IsFullyAssigned     bool                   `json:"is_fully_assigned"`
	AssignedReviewers   []AssignedReviewer     `json:"assigned_reviewers"`
	ConsideredReviewers []ScoreBreakdown       `json:"considered_reviewers,omitempty"`
	Errors              []AssignmentEntryError `json:"errors,omitempty"`
	Warnings            []string               `json:"warnings,omitempty"`
}

// SuggestionResult is the ranked suggestion output for one topic.
type SuggestionResult struct {
	Topic               TopicSignature   `json:"topic"`
	Suggestions         []ScoreBreakdown `json:"suggestions"`
	ConsideredReviewers []ScoreBreakdown `json:"considered_reviewers"`
	Explanation         *string          `json:"explanation,omitempty"`
}

// TopicSuggestionItem is one entry of a bulk suggestion response. Err is
// set when that topic could not be resolved; the batch itself never fails.
type TopicSuggestionItem struct {
	TopicID int               `json:"topic_id"`
	Result  *SuggestionResult `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
}
