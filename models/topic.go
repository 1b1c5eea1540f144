package models

import "time"

type Topic struct {
	TopicID          int        `gorm:"primaryKey;column:topic_id" json:"topic_id"`
	Title            string     `gorm:"column:title" json:"title"`
	Description      string     `gorm:"column:description" json:"description"`
	Objectives       string     `gorm:"column:objectives" json:"objectives"`
	CategoryID       *int       `gorm:"column:category_id" json:"category_id,omitempty"`
	SupervisorID     int        `gorm:"column:supervisor_id" json:"supervisor_id"`
	SemesterID       int        `gorm:"column:semester_id" json:"semester_id"`
	MaxStudents      int        `gorm:"column:max_students" json:"max_students"`
	IsApproved       bool       `gorm:"column:is_approved" json:"is_approved"`
	CurrentVersionID *int       `gorm:"column:current_version_id" json:"current_version_id,omitempty"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Category       *TopicCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Supervisor     User           `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
	Semester       Semester       `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
	CurrentVersion *TopicVersion  `gorm:"foreignKey:CurrentVersionID" json:"current_version,omitempty"`
	Versions       []TopicVersion `gorm:"foreignKey:TopicID" json:"versions,omitempty"`
}

type TopicCategory struct {
	CategoryID   int        `gorm:"primaryKey;column:category_id" json:"category_id"`
	CategoryName string     `gorm:"column:category_name" json:"category_name"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TopicVersion status values.
const (
	TopicVersionDraft     = "draft"
	TopicVersionSubmitted = "submitted"
	TopicVersionApproved  = "approved"
	TopicVersionRejected  = "rejected"
)

// TopicVersion is an immutable snapshot of a topic's text fields. Edits
// create a new version; the topic's current_version_id points at the
// latest approved one.
type TopicVersion struct {
	TopicVersionID int        `gorm:"primaryKey;column:topic_version_id" json:"topic_version_id"`
	TopicID        int        `gorm:"column:topic_id" json:"topic_id"`
	VersionNumber  int        `gorm:"column:version_number" json:"version_number"`
	Title          string     `gorm:"column:title" json:"title"`
	Description    string     `gorm:"column:description" json:"description"`
	Objectives     string     `gorm:"column:objectives" json:"objectives"`
	Status         string     `gorm:"column:status" json:"status"`
	CreatedBy      int        `gorm:"column:created_by" json:"created_by"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Topic *Topic `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}

func (TopicCategory) TableName() string {
	return "topic_categories"
}

func (TopicVersion) TableName() string {
	return "topic_versions"
}
