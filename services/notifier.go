package services

import (
	"fmt"
	"html"
	"log"
	"time"

	"capbot-api/config"
	"capbot-api/models"

	"gorm.io/gorm"
)

// NotifierService creates in-app notification rows and sends an email copy
// when the user has an address. Everything here is best effort: a failed
// notification must never fail the operation that triggered it.
type NotifierService struct {
	db *gorm.DB

	// sendMailFunc is swapped out in tests.
	sendMailFunc func(to []string, subject, html string) error
}

func NewNotifierService(db *gorm.DB) *NotifierService {
	if db == nil {
		db = config.DB
	}
	return &NotifierService{db: db, sendMailFunc: config.SendMail}
}

// Notify writes the notification row synchronously and dispatches the
// email copy in the background.
func (n *NotifierService) Notify(userID int, title, message, typ string, submissionID, assignmentID *int) {
	if userID == 0 {
		return
	}

	notif := models.Notification{
		UserID:   uint(userID),
		Title:    title,
		Message:  message,
		Type:     typ,
		IsRead:   false,
		CreateAt: time.Now(),
	}
	if submissionID != nil {
		id := uint(*submissionID)
		notif.RelatedSubmissionID = &id
	}
	if assignmentID != nil {
		id := uint(*assignmentID)
		notif.RelatedAssignmentID = &id
	}

	if err := n.db.Create(&notif).Error; err != nil {
		log.Printf("notifier: failed to create notification for user %d: %v", userID, err)
		return
	}

	if n.sendMailFunc != nil {
		go n.sendEmailCopy(userID, title, message)
	}
}

func (n *NotifierService) sendEmailCopy(userID int, title, message string) {
	var user models.User
	if err := n.db.Select("email").Where("user_id = ? AND delete_at IS NULL", userID).First(&user).Error; err != nil {
		return
	}
	if user.Email == "" {
		return
	}

	body := fmt.Sprintf("<p>%s</p>", html.EscapeString(message))
	if err := n.sendMailFunc([]string{user.Email}, title, body); err != nil {
		log.Printf("notifier: failed to email user %d: %v", userID, err)
	}
}

// HasAssignmentNotification reports whether a notification of the given
// type already exists for this user and assignment. The overdue sweeper
// uses it to avoid repeating itself every tick.
func (n *NotifierService) HasAssignmentNotification(userID, assignmentID int, typ string) (bool, error) {
	var count int64
	err := n.db.Model(&models.Notification{}).
		Where("user_id = ? AND related_assignment_id = ? AND type = ?", userID, assignmentID, typ).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
