package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"capbot-api/config"
	"capbot-api/models"

	"gorm.io/gorm"
)

var (
	ErrTopicNotFound      = errors.New("topic not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidRequest     = errors.New("invalid request")
)

// newExplainerFunc is swapped out in tests.
var newExplainerFunc = func(ctx context.Context) (Explainer, error) {
	return NewGeminiExplainer(ctx)
}

// SuggestionService is the orchestrator: it resolves the topic signature,
// loads reviewer snapshots, scores and ranks them, and optionally attaches
// an AI narrative.
type SuggestionService struct {
	db        *gorm.DB
	cfg       config.MatchingConfig
	matcher   *SkillMatcher
	scorer    *PerformanceScorer
	ranker    *CandidateRanker
	explainer Explainer
}

func NewSuggestionService(db *gorm.DB, cfg config.MatchingConfig) *SuggestionService {
	if db == nil {
		db = config.DB
	}
	return &SuggestionService{
		db:      db,
		cfg:     cfg,
		matcher: NewSkillMatcher(cfg),
		scorer:  NewPerformanceScorer(cfg),
		ranker:  NewCandidateRanker(cfg),
	}
}

// SetExplainer injects the narrative collaborator. When unset, one is
// created lazily the first time a caller asks for an explanation.
func (s *SuggestionService) SetExplainer(e Explainer) {
	s.explainer = e
}

// SuggestForTopic returns ranked reviewer suggestions for a topic's
// current version.
func (s *SuggestionService) SuggestForTopic(ctx context.Context, topicID, maxSuggestions int, usePrompt bool) (*SuggestionResult, error) {
	if topicID <= 0 {
		return nil, fmt.Errorf("%w: topic id is required", ErrInvalidRequest)
	}

	sig, supervisorID, err := s.resolveTopic(topicID)
	if err != nil {
		return nil, err
	}

	sctx := &SubmissionContext{SupervisorID: supervisorID}
	return s.suggest(ctx, *sig, sctx, nil, maxSuggestions, usePrompt)
}

// SuggestForSubmission returns ranked suggestions scoped to a submission's
// current topic version, excluding reviewers already assigned to it.
func (s *SuggestionService) SuggestForSubmission(ctx context.Context, submissionID, maxSuggestions int, usePrompt bool) (*SuggestionResult, error) {
	if submissionID <= 0 {
		return nil, fmt.Errorf("%w: submission id is required", ErrInvalidRequest)
	}

	sig, sctx, err := s.ResolveSubmission(submissionID)
	if err != nil {
		return nil, err
	}

	return s.suggest(ctx, *sig, sctx, nil, maxSuggestions, usePrompt)
}

// SuggestForTopics is the bulk variant. A topic that cannot be resolved is
// reported on its item; the batch itself always succeeds.
func (s *SuggestionService) SuggestForTopics(ctx context.Context, topicIDs []int, maxSuggestions int, usePrompt bool) []TopicSuggestionItem {
	items := make([]TopicSuggestionItem, 0, len(topicIDs))
	for _, id := range topicIDs {
		item := TopicSuggestionItem{TopicID: id}
		result, err := s.SuggestForTopic(ctx, id, maxSuggestions, usePrompt)
		if err != nil {
			item.Error = err.Error()
		} else {
			item.Result = result
		}
		items = append(items, item)
	}
	return items
}

// Suggest scores and ranks candidates for an already-resolved signature.
// AssignmentService reuses this for auto-assignment with request-level
// constraint overrides.
func (s *SuggestionService) Suggest(ctx context.Context, sig TopicSignature, sctx *SubmissionContext, req *AutoAssignRequest, maxSuggestions int, usePrompt bool) (*SuggestionResult, error) {
	return s.suggest(ctx, sig, sctx, req, maxSuggestions, usePrompt)
}

func (s *SuggestionService) suggest(ctx context.Context, sig TopicSignature, sctx *SubmissionContext, req *AutoAssignRequest, maxSuggestions int, usePrompt bool) (*SuggestionResult, error) {
	candidates, err := s.loadCandidates()
	if err != nil {
		return nil, err
	}

	constraints := ConstraintsFromConfig(s.cfg).ApplyRequest(req)
	filter := NewEligibilityFilter(constraints)

	considered := make([]ScoreBreakdown, 0, len(candidates))
	for _, c := range candidates {
		b := ScoreBreakdown{
			Candidate:   c,
			SkillMatch:  s.matcher.Match(sig, c.Skills),
			Performance: s.scorer.Score(c),
		}
		s.ranker.Combine(&b, constraints.MaxWorkload)
		filter.Evaluate(&b, sctx)
		considered = append(considered, b)
	}

	top := s.ranker.Rank(considered, maxSuggestions)

	result := &SuggestionResult{
		Topic:               sig,
		Suggestions:         top,
		ConsideredReviewers: considered,
	}

	if usePrompt && len(top) > 0 {
		result.Explanation = s.explain(ctx, sig, top)
	}

	return result, nil
}

// explain is best effort: any failure, including a timeout, degrades to a
// nil explanation.
func (s *SuggestionService) explain(ctx context.Context, sig TopicSignature, top []ScoreBreakdown) *string {
	explainer := s.explainer
	if explainer == nil {
		e, err := newExplainerFunc(ctx)
		if err != nil {
			log.Printf("suggestion: explainer unavailable: %v", err)
			return nil
		}
		s.explainer = e
		explainer = e
	}

	explainCtx, cancel := context.WithTimeout(ctx, s.cfg.ExplainTimeout)
	defer cancel()

	text, err := explainer.Explain(explainCtx, sig, top)
	if err != nil {
		log.Printf("suggestion: explanation failed: %v", err)
		return nil
	}
	return &text
}

// resolveTopic produces the signature for a bare topic: the approved
// current version's text when one exists, the topic's own fields otherwise.
func (s *SuggestionService) resolveTopic(topicID int) (*TopicSignature, int, error) {
	var topic models.Topic
	err := s.db.Preload("Category").Preload("CurrentVersion").
		Where("topic_id = ? AND delete_at IS NULL", topicID).
		First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTopicNotFound
		}
		return nil, 0, fmt.Errorf("failed to load topic %d: %w", topicID, err)
	}

	sig := buildSignature(&topic, topic.CurrentVersion)
	return &sig, topic.SupervisorID, nil
}

// ResolveSubmission resolves the topic signature a submission should be
// scored against (submission's version, falling back to the topic's
// current version, then the topic itself) together with the submission
// facts eligibility needs.
func (s *SuggestionService) ResolveSubmission(submissionID int) (*TopicSignature, *SubmissionContext, error) {
	var submission models.Submission
	err := s.db.Preload("TopicVersion").
		Preload("Topic").Preload("Topic.Category").Preload("Topic.CurrentVersion").
		Where("submission_id = ? AND delete_at IS NULL", submissionID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSubmissionNotFound
		}
		return nil, nil, fmt.Errorf("failed to load submission %d: %w", submissionID, err)
	}

	version := submission.TopicVersion
	if version == nil {
		version = submission.Topic.CurrentVersion
	}
	sig := buildSignature(&submission.Topic, version)

	assigned, err := s.activeReviewerIDs(submissionID)
	if err != nil {
		return nil, nil, err
	}

	sctx := &SubmissionContext{
		SubmissionID:      submissionID,
		OwnerID:           submission.SubmittedBy,
		SupervisorID:      submission.Topic.SupervisorID,
		AssignedReviewers: assigned,
	}
	return &sig, sctx, nil
}

func buildSignature(topic *models.Topic, version *models.TopicVersion) TopicSignature {
	sig := TopicSignature{
		TopicID:     topic.TopicID,
		Title:       topic.Title,
		Description: topic.Description,
		Objectives:  topic.Objectives,
	}
	if topic.Category != nil {
		sig.Category = topic.Category.CategoryName
	}
	if version != nil {
		sig.TopicVersionID = version.TopicVersionID
		if strings.TrimSpace(version.Title) != "" {
			sig.Title = version.Title
		}
		if strings.TrimSpace(version.Description) != "" {
			sig.Description = version.Description
		}
		if strings.TrimSpace(version.Objectives) != "" {
			sig.Objectives = version.Objectives
		}
	}
	return sig
}

// loadCandidates reads a fresh snapshot of every lecturer, skills and
// performance included, plus their current active-assignment counts.
// Workload is always derived from assignment rows, never from a cached
// counter, so concurrent suggestion calls cannot see drifted numbers.
func (s *SuggestionService) loadCandidates() ([]ReviewerCandidate, error) {
	var users []models.User
	err := s.db.Preload("Skills", "delete_at IS NULL").Preload("Performance").
		Where("role_id = ? AND delete_at IS NULL", models.RoleLecturer).
		Order("user_id ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reviewer candidates: %w", err)
	}

	workloads, err := s.activeWorkloads()
	if err != nil {
		return nil, err
	}

	candidates := make([]ReviewerCandidate, 0, len(users))
	for _, u := range users {
		c := ReviewerCandidate{
			UserID:            u.UserID,
			FullName:          strings.TrimSpace(u.UserFname + " " + u.UserLname),
			Email:             u.Email,
			IsActive:          u.IsActive,
			Skills:            u.Skills,
			ActiveAssignments: workloads[u.UserID],
		}
		if u.Performance != nil {
			c.CompletedAssignments = u.Performance.CompletedAssignments
			c.AverageScoreGiven = u.Performance.AverageScoreGiven
			c.OnTimeRate = u.Performance.OnTimeRate
			c.QualityRating = u.Performance.QualityRating
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (s *SuggestionService) activeWorkloads() (map[int]int, error) {
	type workloadRow struct {
		ReviewerID int
		Total      int
	}

	var rows []workloadRow
	err := s.db.Model(&models.ReviewAssignment{}).
		Select("reviewer_id, COUNT(*) AS total").
		Where("status <> ? AND delete_at IS NULL", models.AssignmentStatusCompleted).
		Group("reviewer_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reviewer workloads: %w", err)
	}

	workloads := make(map[int]int, len(rows))
	for _, r := range rows {
		workloads[r.ReviewerID] = r.Total
	}
	return workloads, nil
}

func (s *SuggestionService) activeReviewerIDs(submissionID int) (map[int]bool, error) {
	var ids []int
	err := s.db.Model(&models.ReviewAssignment{}).
		Where("submission_id = ? AND status <> ? AND delete_at IS NULL", submissionID, models.AssignmentStatusCompleted).
		Pluck("reviewer_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active reviewers for submission %d: %w", submissionID, err)
	}

	assigned := make(map[int]bool, len(ids))
	for _, id := range ids {
		assigned[id] = true
	}
	return assigned, nil
}
