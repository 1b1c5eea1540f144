package models

import (
	"time"
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Prefix    *string    `gorm:"column:prefix" json:"prefix,omitempty"`
	UserFname string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname string     `gorm:"column:user_lname" json:"user_lname"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	RoleID    int        `gorm:"column:role_id" json:"role_id"`
	IsActive  bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role        Role                 `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Skills      []ReviewerSkill      `gorm:"foreignKey:UserID" json:"skills,omitempty"`
	Performance *ReviewerPerformance `gorm:"foreignKey:UserID" json:"performance,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// Role IDs as seeded in the roles table.
const (
	RoleStudent   = 1
	RoleLecturer  = 2
	RoleModerator = 3
	RoleAdmin     = 4
)

// ReviewerSkill is one declared competency tag of a lecturer, with a
// self-assessed proficiency level on a 1-5 scale.
type ReviewerSkill struct {
	SkillID          int        `gorm:"primaryKey;column:skill_id" json:"skill_id"`
	UserID           int        `gorm:"column:user_id" json:"user_id"`
	SkillTag         string     `gorm:"column:skill_tag" json:"skill_tag"`
	ProficiencyLevel int        `gorm:"column:proficiency_level" json:"proficiency_level"`
	CreateAt         *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// ReviewerPerformance is the rolling track record of a reviewer. Rates and
// ratings are nullable because a brand-new reviewer has no history yet.
type ReviewerPerformance struct {
	UserID               int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	CompletedAssignments int        `gorm:"column:completed_assignments" json:"completed_assignments"`
	AverageScoreGiven    *float64   `gorm:"column:average_score_given" json:"average_score_given,omitempty"`
	OnTimeRate           *float64   `gorm:"column:on_time_rate" json:"on_time_rate,omitempty"`
	QualityRating        *float64   `gorm:"column:quality_rating" json:"quality_rating,omitempty"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (ReviewerSkill) TableName() string {
	return "reviewer_skills"
}

func (ReviewerPerformance) TableName() string {
	return "reviewer_performances"
}
