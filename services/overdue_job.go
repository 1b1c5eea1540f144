package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"capbot-api/config"
	"capbot-api/models"

	"gorm.io/gorm"
)

// OverdueSweeper periodically looks for assignments past their deadline
// and notifies the reviewer and the assigner. It only reads assignment
// rows and applies the overdue predicate; it never writes a status, so the
// lifecycle transitions stay the single source of truth.
type OverdueSweeper struct {
	db       *gorm.DB
	notifier *NotifierService
	interval time.Duration
	stop     chan struct{}
}

func NewOverdueSweeper(db *gorm.DB, interval time.Duration) *OverdueSweeper {
	if db == nil {
		db = config.DB
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &OverdueSweeper{
		db:       db,
		notifier: NewNotifierService(db),
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or the context ends.
func (s *OverdueSweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n, err := s.SweepOnce(ctx); err != nil {
					log.Printf("overdue sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("overdue sweep: flagged %d assignments", n)
				}
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *OverdueSweeper) Stop() {
	close(s.stop)
}

// SweepOnce finds currently overdue assignments and sends the one-off
// notifications. Returns the number of overdue assignments seen.
func (s *OverdueSweeper) SweepOnce(ctx context.Context) (int, error) {
	now := time.Now()

	var assignments []models.ReviewAssignment
	err := s.db.WithContext(ctx).
		Where("deadline IS NOT NULL AND deadline < ? AND status <> ? AND delete_at IS NULL",
			now, models.AssignmentStatusCompleted).
		Find(&assignments).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load overdue assignments: %w", err)
	}

	overdue := 0
	for i := range assignments {
		a := &assignments[i]
		if !a.IsOverdue(now) {
			continue
		}
		overdue++
		s.notifyOverdueOnce(a)
	}

	return overdue, nil
}

// notifyOverdueOnce warns the reviewer and the assigner, each at most once
// per assignment. Dedup rides on the warning notification already
// existing for the assignment.
func (s *OverdueSweeper) notifyOverdueOnce(a *models.ReviewAssignment) {
	message := fmt.Sprintf("Review assignment on submission #%d passed its deadline (%s)",
		a.SubmissionID, a.Deadline.Format("2006-01-02"))

	for _, userID := range []int{a.ReviewerID, a.AssignedBy} {
		if userID == 0 {
			continue
		}
		already, err := s.notifier.HasAssignmentNotification(userID, a.AssignmentID, "warning")
		if err != nil {
			log.Printf("overdue sweep: dedup check failed for user %d: %v", userID, err)
			continue
		}
		if already {
			continue
		}
		s.notifier.Notify(userID, "Review assignment overdue", message, "warning", &a.SubmissionID, &a.AssignmentID)
	}
}
