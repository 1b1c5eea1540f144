package models

import "time"

// Submission status values.
const (
	SubmissionPending          = "pending"
	SubmissionUnderReview      = "under_review"
	SubmissionApproved         = "approved"
	SubmissionRejected         = "rejected"
	SubmissionRevisionRequired = "revision_required"
)

// Submission is a topic version filed into a phase for peer review.
type Submission struct {
	SubmissionID     int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber string     `gorm:"column:submission_number" json:"submission_number"`
	TopicID          int        `gorm:"column:topic_id" json:"topic_id"`
	TopicVersionID   *int       `gorm:"column:topic_version_id" json:"topic_version_id,omitempty"`
	PhaseID          int        `gorm:"column:phase_id" json:"phase_id"`
	SubmittedBy      int        `gorm:"column:submitted_by" json:"submitted_by"`
	Status           string     `gorm:"column:status" json:"status"`
	SubmissionRound  int        `gorm:"column:submission_round" json:"submission_round"`
	SubmittedAt      *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Topic        Topic         `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	TopicVersion *TopicVersion `gorm:"foreignKey:TopicVersionID" json:"topic_version,omitempty"`
	Phase        Phase         `gorm:"foreignKey:PhaseID" json:"phase,omitempty"`
	Submitter    User          `gorm:"foreignKey:SubmittedBy" json:"submitter,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}
