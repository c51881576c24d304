// services/cleanup.go
package services

import (
	"log"
	"time"

	"codepath-backend/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// CleanupService runs the timer-driven maintenance around the gamification
// core: closing abandoned study sessions and pruning old read notifications.
type CleanupService struct {
	DB *gorm.DB
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{DB: db}
}

const staleSessionAfter = 30 * time.Minute

func (s *CleanupService) StartMaintenanceScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 15 minutes: close study sessions with no recent heartbeat
	_, _ = sched.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-staleSessionAfter)
			result := s.DB.Model(&models.StudySession{}).
				Where("ended_at IS NULL AND last_seen_at < ?", cutoff).
				Update("ended_at", gorm.Expr("last_seen_at"))
			if result.Error != nil {
				log.Printf("[cleanup] closing stale sessions failed: %v", result.Error)
				return
			}
			if result.RowsAffected > 0 {
				log.Printf("[cleanup] closed %d stale study sessions", result.RowsAffected)
			}
		}),
	)

	// Daily: drop read notifications older than 90 days
	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().AddDate(0, 0, -90)
			result := s.DB.
				Where("read = ? AND created_at < ?", true, cutoff).
				Delete(&models.Notification{})
			if result.Error != nil {
				log.Printf("[cleanup] pruning notifications failed: %v", result.Error)
				return
			}
			if result.RowsAffected > 0 {
				log.Printf("[cleanup] pruned %d read notifications", result.RowsAffected)
			}
		}),
	)
}
