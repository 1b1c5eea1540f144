package models

import "time"

// ReviewAssignment status values. An assignment enters at "assigned" and
// only moves forward; "completed" is the single terminal state. Overdue is
// not a stored status: it is derived from the deadline (see IsOverdue) so
// a late review can still complete normally.
const (
	AssignmentStatusAssigned   = "assigned"
	AssignmentStatusInProgress = "in_progress"
	AssignmentStatusCompleted  = "completed"

	// Display-only overlay, never written to the status column.
	AssignmentStatusOverdue = "overdue"
)

// Assignment types.
const (
	AssignmentTypePrimary    = "primary"
	AssignmentTypeSecondary  = "secondary"
	AssignmentTypeAdditional = "additional"
)

// ReviewAssignment ties a reviewer to a submission. Rows are soft-deleted
// only, never removed, so the assignment history stays auditable.
type ReviewAssignment struct {
	AssignmentID    int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubmissionID    int        `gorm:"column:submission_id" json:"submission_id"`
	ReviewerID      int        `gorm:"column:reviewer_id" json:"reviewer_id"`
	AssignedBy      int        `gorm:"column:assigned_by" json:"assigned_by"`
	AssignmentType  string     `gorm:"column:assignment_type" json:"assignment_type"`
	SkillMatchScore *float64   `gorm:"column:skill_match_score" json:"skill_match_score,omitempty"`
	Deadline        *time.Time `gorm:"column:deadline" json:"deadline,omitempty"`
	Status          string     `gorm:"column:status" json:"status"`
	AssignedAt      time.Time  `gorm:"column:assigned_at" json:"assigned_at"`
	StartedAt       *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt     *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ReviewScore     *float64   `gorm:"column:review_score" json:"review_score,omitempty"`
	ReviewComment   *string    `gorm:"column:review_comment" json:"review_comment,omitempty"`
	CreateAt        *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt        *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Submission Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	Reviewer   User       `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Assigner   User       `gorm:"foreignKey:AssignedBy" json:"assigner,omitempty"`
}

func (ReviewAssignment) TableName() string {
	return "review_assignments"
}

// IsTerminal reports whether the stored status is terminal.
func (a *ReviewAssignment) IsTerminal() bool {
	return a.Status == AssignmentStatusCompleted
}

// IsOverdue reports whether the assignment has blown its deadline without
// being completed. An assignment with no deadline is never overdue.
func (a *ReviewAssignment) IsOverdue(now time.Time) bool {
	if a.Deadline == nil || a.IsTerminal() {
		return false
	}
	return now.After(*a.Deadline)
}

// EffectiveStatus is the status presented to clients: the stored status
// overlaid with the overdue predicate.
func (a *ReviewAssignment) EffectiveStatus(now time.Time) string {
	if a.IsOverdue(now) {
		return AssignmentStatusOverdue
	}
	return a.Status
}

// CanTransition reports whether moving the stored status to next is a
// legal forward transition.
func CanTransition(current, next string) bool {
	switch current {
	case AssignmentStatusAssigned:
		return next == AssignmentStatusInProgress || next == AssignmentStatusCompleted
	case AssignmentStatusInProgress:
		return next == AssignmentStatusCompleted
	default:
		return false
	}
}
