package models

import "time"

type Semester struct {
	SemesterID int        `gorm:"primaryKey;column:semester_id" json:"semester_id"`
	Term       string     `gorm:"column:term" json:"term"` // e.g. "1", "2", "summer"
	Year       int        `gorm:"column:year" json:"year"`
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
	StartDate  *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate    *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Phases []Phase `gorm:"foreignKey:SemesterID" json:"phases,omitempty"`
}

// Phase is one stage of the capstone workflow inside a semester
// (proposal, review, defense). Submissions are filed into a phase.
type Phase struct {
	PhaseID    int        `gorm:"primaryKey;column:phase_id" json:"phase_id"`
	SemesterID int        `gorm:"column:semester_id" json:"semester_id"`
	PhaseName  string     `gorm:"column:phase_name" json:"phase_name"`
	PhaseOrder int        `gorm:"column:phase_order" json:"phase_order"`
	StartDate  *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate    *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Semester) TableName() string {
	return "semesters"
}

func (Phase) TableName() string {
	return "phases"
}
