package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"capbot-api/config"
	"capbot-api/models"

	"gorm.io/gorm"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInvalidTransition  = errors.New("invalid assignment status transition")
	ErrNotReviewer        = errors.New("assignment belongs to another reviewer")
)

// AssignmentService commits reviewer assignments and owns the assignment
// lifecycle. Commits are per entry: each reviewer gets its own transaction
// so one failed entry never rolls back the rest of the batch.
type AssignmentService struct {
	db          *gorm.DB
	cfg         config.MatchingConfig
	suggestions *SuggestionService
	notifier    *NotifierService

	// notify is swapped out in tests.
	notify func(a *models.ReviewAssignment)
}

func NewAssignmentService(db *gorm.DB, cfg config.MatchingConfig) *AssignmentService {
	if db == nil {
		db = config.DB
	}
	s := &AssignmentService{
		db:          db,
		cfg:         cfg,
		suggestions: NewSuggestionService(db, cfg),
		notifier:    NewNotifierService(db),
	}
	s.notify = s.notifyAssigned
	return s
}

// Suggestions exposes the orchestrator this service commits from.
func (s *AssignmentService) Suggestions() *SuggestionService {
	return s.suggestions
}

// AssignExplicit commits a caller-supplied reviewer list. Eligibility
// rules 1-3 are re-checked per entry at commit time because scores from an
// earlier suggestion call may be stale. Partial success is normal: the
// result carries both created assignments and per-entry errors.
func (s *AssignmentService) AssignExplicit(ctx context.Context, submissionID, assignedBy int, entries []ReviewerAssignmentInput) (*AssignmentResultSet, error) {
	if submissionID <= 0 {
		return nil, fmt.Errorf("%w: submission id is required", ErrInvalidRequest)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: at least one reviewer is required", ErrInvalidRequest)
	}

	_, sctx, err := s.suggestions.ResolveSubmission(submissionID)
	if err != nil {
		return nil, err
	}

	result := &AssignmentResultSet{
		SubmissionID:       submissionID,
		RequestedReviewers: len(entries),
		AssignedReviewers:  []AssignedReviewer{},
	}

	for _, entry := range entries {
		assignment, skipReason, err := s.commitOne(ctx, sctx, entry, assignedBy)
		if err != nil {
			return nil, err
		}
		if skipReason != "" {
			result.Errors = append(result.Errors, AssignmentEntryError{
				ReviewerID: entry.ReviewerID,
				Reason:     skipReason,
			})
			continue
		}
		result.AssignedReviewers = append(result.AssignedReviewers, AssignedReviewer{Assignment: *assignment})
		result.AssignedCount++
		s.notify(assignment)
	}

	result.IsFullyAssigned = result.AssignedCount == result.RequestedReviewers
	return result, nil
}

// AutoAssign ranks candidates for the submission's topic and commits the
// top RequestedReviewers through the same per-entry path as
// AssignExplicit. IsFullyAssigned reflects actual commits, not the ranked
// candidate count: a candidate can still lose the commit-time race.
func (s *AssignmentService) AutoAssign(ctx context.Context, req *AutoAssignRequest, assignedBy int) (*AssignmentResultSet, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrInvalidRequest)
	}
	if req.SubmissionID <= 0 {
		return nil, fmt.Errorf("%w: submission id is required", ErrInvalidRequest)
	}
	if req.RequestedReviewers <= 0 {
		return nil, fmt.Errorf("%w: requested reviewer count must be positive", ErrInvalidRequest)
	}

	sig, sctx, err := s.suggestions.ResolveSubmission(req.SubmissionID)
	if err != nil {
		return nil, err
	}

	suggestion, err := s.suggestions.Suggest(ctx, *sig, sctx, req, req.RequestedReviewers, false)
	if err != nil {
		return nil, err
	}

	result := &AssignmentResultSet{
		SubmissionID:        req.SubmissionID,
		RequestedReviewers:  req.RequestedReviewers,
		AssignedReviewers:   []AssignedReviewer{},
		ConsideredReviewers: suggestion.ConsideredReviewers,
	}

	assignmentType := req.AssignmentType
	if assignmentType == "" {
		assignmentType = models.AssignmentTypePrimary
	}

	// Commit in ranked order so the strongest candidates take the slots.
	for i := range suggestion.Suggestions {
		candidate := suggestion.Suggestions[i]
		score := candidate.SkillMatch.Overall
		entry := ReviewerAssignmentInput{
			ReviewerID:      candidate.Candidate.UserID,
			AssignmentType:  assignmentType,
			Deadline:        req.Deadline,
			SkillMatchScore: &score,
		}

		assignment, skipReason, err := s.commitOne(ctx, sctx, entry, assignedBy)
		if err != nil {
			return nil, err
		}
		if skipReason != "" {
			result.Errors = append(result.Errors, AssignmentEntryError{
				ReviewerID: entry.ReviewerID,
				Reason:     skipReason,
			})
			continue
		}
		result.AssignedReviewers = append(result.AssignedReviewers, AssignedReviewer{
			Assignment: *assignment,
			Candidate:  &candidate,
		})
		result.AssignedCount++
		s.notify(assignment)
	}

	result.IsFullyAssigned = result.AssignedCount == result.RequestedReviewers
	if len(suggestion.Suggestions) < req.RequestedReviewers {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"only %d of %d requested reviewers passed eligibility",
			len(suggestion.Suggestions), req.RequestedReviewers))
	}

	return result, nil
}

// commitOne runs the transactional validate-then-create path for a single
// reviewer. A failed validation or a lost uniqueness race produces a skip
// reason, never an error: only infrastructure failures propagate.
func (s *AssignmentService) commitOne(ctx context.Context, sctx *SubmissionContext, entry ReviewerAssignmentInput, assignedBy int) (*models.ReviewAssignment, string, error) {
	if entry.ReviewerID <= 0 {
		return nil, "reviewer id is required", nil
	}

	assignmentType := entry.AssignmentType
	if assignmentType == "" {
		assignmentType = models.AssignmentTypePrimary
	}
	switch assignmentType {
	case models.AssignmentTypePrimary, models.AssignmentTypeSecondary, models.AssignmentTypeAdditional:
	default:
		return nil, fmt.Sprintf("unknown assignment type %q", entry.AssignmentType), nil
	}

	now := time.Now()
	assignment := models.ReviewAssignment{
		SubmissionID:    sctx.SubmissionID,
		ReviewerID:      entry.ReviewerID,
		AssignedBy:      assignedBy,
		AssignmentType:  assignmentType,
		SkillMatchScore: entry.SkillMatchScore,
		Deadline:        entry.Deadline,
		Status:          models.AssignmentStatusAssigned,
		AssignedAt:      now,
		CreateAt:        &now,
	}

	var skipReason string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reviewer models.User
		if err := tx.Where("user_id = ? AND delete_at IS NULL", entry.ReviewerID).First(&reviewer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				skipReason = "reviewer not found"
				return nil
			}
			return err
		}
		if !reviewer.IsActive {
			skipReason = ReasonInactive
			return nil
		}
		if reviewer.UserID == sctx.OwnerID || reviewer.UserID == sctx.SupervisorID {
			skipReason = ReasonConflict
			return nil
		}

		// Check-then-insert inside the transaction; the unique index on
		// (submission_id, reviewer_id, status <> completed) backs it up
		// against a concurrent committer.
		var existing int64
		err := tx.Model(&models.ReviewAssignment{}).
			Where("submission_id = ? AND reviewer_id = ? AND status <> ? AND delete_at IS NULL",
				sctx.SubmissionID, entry.ReviewerID, models.AssignmentStatusCompleted).
			Count(&existing).Error
		if err != nil {
			return err
		}
		if existing > 0 {
			skipReason = ReasonAlreadyAssigned
			return nil
		}

		return tx.Create(&assignment).Error
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			// Lost the race to a concurrent call. Normal outcome.
			return nil, ReasonAlreadyAssigned, nil
		}
		return nil, "", fmt.Errorf("failed to commit assignment for reviewer %d: %w", entry.ReviewerID, err)
	}
	if skipReason != "" {
		return nil, skipReason, nil
	}

	return &assignment, "", nil
}

func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

// notifyAssigned is fire-and-forget relative to the assignment
// transaction: it runs after commit and its failure changes nothing.
func (s *AssignmentService) notifyAssigned(a *models.ReviewAssignment) {
	deadline := "no deadline"
	if a.Deadline != nil {
		deadline = a.Deadline.Format("2006-01-02")
	}
	message := fmt.Sprintf("You have been assigned as %s reviewer on submission #%d (deadline: %s)",
		a.AssignmentType, a.SubmissionID, deadline)
	s.notifier.Notify(a.ReviewerID, "New review assignment", message, "info", &a.SubmissionID, &a.AssignmentID)
}

// StartReview moves an assignment to in_progress on behalf of its reviewer.
func (s *AssignmentService) StartReview(ctx context.Context, assignmentID, reviewerID int) (*models.ReviewAssignment, error) {
	return s.transition(ctx, assignmentID, reviewerID, models.AssignmentStatusInProgress, nil, nil)
}

// CompleteReview files the review and moves the assignment to its terminal
// state. Works from assigned or in_progress, overdue or not: a late review
// still completes.
func (s *AssignmentService) CompleteReview(ctx context.Context, assignmentID, reviewerID int, score float64, comment string) (*models.ReviewAssignment, error) {
	if score < 0 || score > s.cfg.ScaleMax {
		return nil, fmt.Errorf("%w: review score must be between 0 and %.0f", ErrInvalidRequest, s.cfg.ScaleMax)
	}

	assignment, err := s.transition(ctx, assignmentID, reviewerID, models.AssignmentStatusCompleted, &score, &comment)
	if err != nil {
		return nil, err
	}

	if err := s.recordCompletion(assignment, score); err != nil {
		// Stats upkeep is secondary to the completed review itself.
		log.Printf("assignment: failed to update performance stats for reviewer %d: %v", reviewerID, err)
	}

	return assignment, nil
}

func (s *AssignmentService) transition(ctx context.Context, assignmentID, reviewerID int, next string, score *float64, comment *string) (*models.ReviewAssignment, error) {
	var assignment models.ReviewAssignment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ? AND delete_at IS NULL", assignmentID).First(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAssignmentNotFound
			}
			return err
		}
		if assignment.ReviewerID != reviewerID {
			return ErrNotReviewer
		}
		if !models.CanTransition(assignment.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, assignment.Status, next)
		}

		now := time.Now()
		assignment.Status = next
		assignment.UpdateAt = &now
		switch next {
		case models.AssignmentStatusInProgress:
			assignment.StartedAt = &now
		case models.AssignmentStatusCompleted:
			assignment.CompletedAt = &now
			assignment.ReviewScore = score
			if comment != nil && *comment != "" {
				assignment.ReviewComment = comment
			}
		}

		return tx.Save(&assignment).Error
	})
	if err != nil {
		return nil, err
	}

	return &assignment, nil
}

// recordCompletion folds a finished review into the reviewer's rolling
// stats. On-time means completed before the deadline; an assignment with
// no deadline counts as on time.
func (s *AssignmentService) recordCompletion(a *models.ReviewAssignment, score float64) error {
	onTime := 1.0
	if a.Deadline != nil && a.CompletedAt != nil && a.CompletedAt.After(*a.Deadline) {
		onTime = 0.0
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var perf models.ReviewerPerformance
		err := tx.Where("user_id = ?", a.ReviewerID).First(&perf).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			perf = models.ReviewerPerformance{UserID: a.ReviewerID}
		}

		n := float64(perf.CompletedAssignments)
		newRate := (valueOr(perf.OnTimeRate, 0)*n + onTime) / (n + 1)
		newAvg := (valueOr(perf.AverageScoreGiven, 0)*n + score) / (n + 1)
		now := time.Now()

		perf.CompletedAssignments++
		perf.OnTimeRate = &newRate
		perf.AverageScoreGiven = &newAvg
		perf.UpdateAt = &now

		return tx.Save(&perf).Error
	})
}

// ListForReviewer returns a reviewer's assignments, newest first.
func (s *AssignmentService) ListForReviewer(reviewerID int) ([]models.ReviewAssignment, error) {
	var assignments []models.ReviewAssignment
	err := s.db.Preload("Submission").Preload("Submission.Topic").
		Where("reviewer_id = ? AND delete_at IS NULL", reviewerID).
		Order("assigned_at DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for reviewer %d: %w", reviewerID, err)
	}
	return assignments, nil
}

// ListForSubmission returns every assignment on a submission.
func (s *AssignmentService) ListForSubmission(submissionID int) ([]models.ReviewAssignment, error) {
	var assignments []models.ReviewAssignment
	err := s.db.Preload("Reviewer").
		Where("submission_id = ? AND delete_at IS NULL", submissionID).
		Order("assigned_at ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for submission %d: %w", submissionID, err)
	}
	return assignments, nil
}
