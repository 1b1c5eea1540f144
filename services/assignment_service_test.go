package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"capbot-api/config"
	"capbot-api/models"
)

var (
	submissionCols = []string{"submission_id", "topic_id", "topic_version_id", "phase_id", "submitted_by", "status"}
	topicCols      = []string{"topic_id", "title", "description", "objectives", "category_id", "supervisor_id", "current_version_id"}
	userCols       = []string{"user_id", "user_fname", "user_lname", "email", "role_id", "is_active"}
	countCols      = []string{"count(*)"}
)

// resolveSubmissionSteps scripts submission 12, owned by user 3 and
// supervised by user 2, with no reviewers assigned yet.
func resolveSubmissionSteps() []*queryStep {
	return []*queryStep{
		expectQuery("FROM `submissions`", submissionCols,
			[]driver.Value{int64(12), int64(90), nil, int64(1), int64(3), "pending"}),
		expectQuery("FROM `topics`", topicCols,
			[]driver.Value{int64(90), "Golang backend service", "", "", nil, int64(2), nil}),
		expectQuery("FROM `review_assignments`", []string{"reviewer_id"}),
	}
}

func activeUserRow(id int) []driver.Value {
	return []driver.Value{int64(id), "Test", "Reviewer", "reviewer@example.edu", int64(models.RoleLecturer), true}
}

func newAssignmentServiceForTest(t *testing.T, steps []*queryStep) (*AssignmentService, *scriptedDB, *[]int, func()) {
	t.Helper()
	db, state, cleanup := newScriptedGormDB(t, steps)

	svc := NewAssignmentService(db, config.DefaultMatchingConfig())
	var notified []int
	svc.notify = func(a *models.ReviewAssignment) {
		notified = append(notified, a.ReviewerID)
	}
	return svc, state, &notified, cleanup
}

func TestAssignExplicitValidation(t *testing.T) {
	svc, _, _, cleanup := newAssignmentServiceForTest(t, nil)
	defer cleanup()

	if _, err := svc.AssignExplicit(context.Background(), 0, 1, []ReviewerAssignmentInput{{ReviewerID: 7}}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing submission id, got %v", err)
	}
	if _, err := svc.AssignExplicit(context.Background(), 12, 1, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for empty entries, got %v", err)
	}
}

func TestAssignExplicitPartialSuccess(t *testing.T) {
	steps := resolveSubmissionSteps()
	// Reviewer 7 commits cleanly.
	steps = append(steps,
		expectQuery("FROM `users`", userCols, activeUserRow(7)),
		expectQuery("count", countCols, []driver.Value{int64(0)}),
		expectExec("INSERT INTO `review_assignments`"),
	)
	// Reviewer 8 is already on the submission.
	steps = append(steps,
		expectQuery("FROM `users`", userCols, activeUserRow(8)),
		expectQuery("count", countCols, []driver.Value{int64(1)}),
	)

	svc, state, notified, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	result, err := svc.AssignExplicit(context.Background(), 12, 2, []ReviewerAssignmentInput{
		{ReviewerID: 7},
		{ReviewerID: 8},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RequestedReviewers != 2 || result.AssignedCount != 1 {
		t.Fatalf("expected 1 of 2 assigned, got %d of %d", result.AssignedCount, result.RequestedReviewers)
	}
	if result.IsFullyAssigned {
		t.Fatal("partial batch must not report fully assigned")
	}
	if len(result.AssignedReviewers) != 1 || result.AssignedReviewers[0].Assignment.ReviewerID != 7 {
		t.Fatalf("unexpected assigned reviewers: %+v", result.AssignedReviewers)
	}
	if result.AssignedReviewers[0].Assignment.Status != models.AssignmentStatusAssigned {
		t.Fatalf("new assignment must enter at assigned, got %s", result.AssignedReviewers[0].Assignment.Status)
	}
	if len(result.Errors) != 1 || result.Errors[0].ReviewerID != 8 || result.Errors[0].Reason != ReasonAlreadyAssigned {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(*notified) != 1 || (*notified)[0] != 7 {
		t.Fatalf("expected only reviewer 7 notified, got %v", *notified)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestAssignExplicitDuplicateKeyRace(t *testing.T) {
	steps := resolveSubmissionSteps()
	// Count sees nothing, but a concurrent committer wins the insert.
	steps = append(steps,
		expectQuery("FROM `users`", userCols, activeUserRow(7)),
		expectQuery("count", countCols, []driver.Value{int64(0)}),
		expectExecErr("INSERT INTO `review_assignments`",
			errors.New("Error 1062 (23000): Duplicate entry '12-7' for key 'uq_active_reviewer'")),
	)

	svc, state, notified, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	result, err := svc.AssignExplicit(context.Background(), 12, 2, []ReviewerAssignmentInput{{ReviewerID: 7}})
	if err != nil {
		t.Fatalf("a lost uniqueness race must not fail the batch: %v", err)
	}
	if result.AssignedCount != 0 {
		t.Fatalf("expected nothing assigned, got %d", result.AssignedCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].Reason != ReasonAlreadyAssigned {
		t.Fatalf("expected already-assigned skip, got %+v", result.Errors)
	}
	if len(*notified) != 0 {
		t.Fatalf("skipped entry must not notify, got %v", *notified)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestAssignExplicitSkipsConflictAndInactive(t *testing.T) {
	steps := resolveSubmissionSteps()
	// Reviewer 3 owns the submission.
	steps = append(steps,
		expectQuery("FROM `users`", userCols, activeUserRow(3)),
	)
	// Reviewer 9 is deactivated.
	steps = append(steps,
		expectQuery("FROM `users`", userCols,
			[]driver.Value{int64(9), "Gone", "Lecturer", "gone@example.edu", int64(models.RoleLecturer), false}),
	)

	svc, state, _, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	result, err := svc.AssignExplicit(context.Background(), 12, 2, []ReviewerAssignmentInput{
		{ReviewerID: 3},
		{ReviewerID: 9},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AssignedCount != 0 || len(result.Errors) != 2 {
		t.Fatalf("expected both entries skipped, got %+v", result)
	}
	if result.Errors[0].Reason != ReasonConflict {
		t.Fatalf("expected conflict reason, got %q", result.Errors[0].Reason)
	}
	if result.Errors[1].Reason != ReasonInactive {
		t.Fatalf("expected inactive reason, got %q", result.Errors[1].Reason)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestAssignExplicitRejectsUnknownType(t *testing.T) {
	steps := resolveSubmissionSteps()

	svc, state, _, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	result, err := svc.AssignExplicit(context.Background(), 12, 2, []ReviewerAssignmentInput{
		{ReviewerID: 7, AssignmentType: "tertiary"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AssignedCount != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected a single skip, got %+v", result)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestAutoAssignShortfall(t *testing.T) {
	steps := resolveSubmissionSteps()
	// Two lecturers; 8 is inactive and has no skills, so only 7 is eligible.
	steps = append(steps,
		expectQuery("FROM `users`", userCols,
			activeUserRow(7),
			[]driver.Value{int64(8), "Idle", "Lecturer", "idle@example.edu", int64(models.RoleLecturer), false}),
		expectQuery("FROM `reviewer_performances`",
			[]string{"user_id", "completed_assignments", "average_score_given", "on_time_rate", "quality_rating"},
			[]driver.Value{int64(7), int64(5), 2.5, 0.9, 4.0}),
		expectQuery("FROM `reviewer_skills`",
			[]string{"skill_id", "user_id", "skill_tag", "proficiency_level"},
			[]driver.Value{int64(1), int64(7), "golang", int64(5)}),
		expectQuery("FROM `review_assignments`", []string{"reviewer_id", "total"},
			[]driver.Value{int64(7), int64(1)}),
	)
	// Commit the single eligible candidate.
	steps = append(steps,
		expectQuery("FROM `users`", userCols, activeUserRow(7)),
		expectQuery("count", countCols, []driver.Value{int64(0)}),
		expectExec("INSERT INTO `review_assignments`"),
	)

	svc, state, notified, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	result, err := svc.AutoAssign(context.Background(), &AutoAssignRequest{
		SubmissionID:       12,
		RequestedReviewers: 2,
	}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AssignedCount != 1 || result.IsFullyAssigned {
		t.Fatalf("expected a partial auto-assignment, got %+v", result)
	}
	if len(result.AssignedReviewers) != 1 || result.AssignedReviewers[0].Assignment.ReviewerID != 7 {
		t.Fatalf("unexpected assigned reviewers: %+v", result.AssignedReviewers)
	}
	if result.AssignedReviewers[0].Candidate == nil {
		t.Fatal("auto-assigned reviewer must carry its candidate breakdown")
	}
	if result.AssignedReviewers[0].Assignment.SkillMatchScore == nil {
		t.Fatal("auto-assigned reviewer must carry its skill-match score")
	}
	if len(result.ConsideredReviewers) != 2 {
		t.Fatalf("expected both lecturers in considered output, got %d", len(result.ConsideredReviewers))
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected a shortfall warning, got %v", result.Warnings)
	}
	if len(*notified) != 1 || (*notified)[0] != 7 {
		t.Fatalf("expected reviewer 7 notified, got %v", *notified)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestAutoAssignValidation(t *testing.T) {
	svc, _, _, cleanup := newAssignmentServiceForTest(t, nil)
	defer cleanup()

	if _, err := svc.AutoAssign(context.Background(), nil, 1); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for nil request, got %v", err)
	}
	if _, err := svc.AutoAssign(context.Background(), &AutoAssignRequest{SubmissionID: 12}, 1); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for zero reviewer count, got %v", err)
	}
}

var assignmentCols = []string{
	"assignment_id", "submission_id", "reviewer_id", "assigned_by",
	"assignment_type", "status", "deadline", "assigned_at",
}

func assignmentRow(id, reviewerID int, status string, deadline driver.Value) []driver.Value {
	return []driver.Value{
		int64(id), int64(12), int64(reviewerID), int64(2),
		models.AssignmentTypePrimary, status, deadline, time.Now().Add(-48 * time.Hour),
	}
}

func TestStartReview(t *testing.T) {
	steps := []*queryStep{
		expectQuery("FROM `review_assignments`", assignmentCols,
			assignmentRow(5, 7, models.AssignmentStatusAssigned, nil)),
		expectExec("UPDATE `review_assignments`"),
	}
	svc, state, _, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	assignment, err := svc.StartReview(context.Background(), 5, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assignment.Status != models.AssignmentStatusInProgress {
		t.Fatalf("expected in_progress, got %s", assignment.Status)
	}
	if assignment.StartedAt == nil {
		t.Fatal("expected started_at to be stamped")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestStartReviewWrongReviewer(t *testing.T) {
	steps := []*queryStep{
		expectQuery("FROM `review_assignments`", assignmentCols,
			assignmentRow(5, 9, models.AssignmentStatusAssigned, nil)),
	}
	svc, state, _, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	if _, err := svc.StartReview(context.Background(), 5, 7); !errors.Is(err, ErrNotReviewer) {
		t.Fatalf("expected ErrNotReviewer, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestStartReviewNotFound(t *testing.T) {
	steps := []*queryStep{
		expectQuery("FROM `review_assignments`", assignmentCols),
	}
	svc, state, _, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	if _, err := svc.StartReview(context.Background(), 404, 7); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestTransitionNeverMovesBackwards(t *testing.T) {
	steps := []*queryStep{
		expectQuery("FROM `review_assignments`", assignmentCols,
			assignmentRow(5, 7, models.AssignmentStatusCompleted, nil)),
	}
	svc, state, _, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	if _, err := svc.StartReview(context.Background(), 5, 7); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of completed, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestCompleteReview(t *testing.T) {
	steps := []*queryStep{
		expectQuery("FROM `review_assignments`", assignmentCols,
			assignmentRow(5, 7, models.AssignmentStatusInProgress, nil)),
		expectExec("UPDATE `review_assignments`"),
		// Rolling performance stats update.
		expectQuery("FROM `reviewer_performances`",
			[]string{"user_id", "completed_assignments", "average_score_given", "on_time_rate"},
			[]driver.Value{int64(7), int64(1), 4.0, 1.0}),
		expectExec("UPDATE `reviewer_performances`"),
	}
	svc, state, _, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	assignment, err := svc.CompleteReview(context.Background(), 5, 7, 4.5, "solid work")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assignment.Status != models.AssignmentStatusCompleted {
		t.Fatalf("expected completed, got %s", assignment.Status)
	}
	if assignment.CompletedAt == nil {
		t.Fatal("expected completed_at to be stamped")
	}
	if assignment.ReviewScore == nil || *assignment.ReviewScore != 4.5 {
		t.Fatalf("unexpected review score: %v", assignment.ReviewScore)
	}
	if assignment.ReviewComment == nil || *assignment.ReviewComment != "solid work" {
		t.Fatalf("unexpected review comment: %v", assignment.ReviewComment)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestCompleteReviewAcceptsLateSubmission(t *testing.T) {
	// Past the deadline the review still completes; overdue is a display
	// overlay, not a state.
	yesterday := time.Now().Add(-24 * time.Hour)
	steps := []*queryStep{
		expectQuery("FROM `review_assignments`", assignmentCols,
			assignmentRow(5, 7, models.AssignmentStatusAssigned, yesterday)),
		expectExec("UPDATE `review_assignments`"),
		expectQuery("FROM `reviewer_performances`",
			[]string{"user_id", "completed_assignments", "average_score_given", "on_time_rate"},
			[]driver.Value{int64(7), int64(1), 4.0, 1.0}),
		expectExec("UPDATE `reviewer_performances`"),
	}
	svc, state, _, cleanup := newAssignmentServiceForTest(t, steps)
	defer cleanup()

	assignment, err := svc.CompleteReview(context.Background(), 5, 7, 3.0, "")
	if err != nil {
		t.Fatalf("late completion must succeed: %v", err)
	}
	if assignment.Status != models.AssignmentStatusCompleted {
		t.Fatalf("expected completed, got %s", assignment.Status)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatal(err)
	}
}

func TestCompleteReviewScoreBounds(t *testing.T) {
	svc, _, _, cleanup := newAssignmentServiceForTest(t, nil)
	defer cleanup()

	if _, err := svc.CompleteReview(context.Background(), 5, 7, -1, ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for negative score, got %v", err)
	}
	if _, err := svc.CompleteReview(context.Background(), 5, 7, 5.5, ""); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for score above scale, got %v", err)
	}
}
