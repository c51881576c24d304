package services

import (
	"fmt"
	"log"

	"codepath-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// XPResult describes one ledger grant: how much was added, the new running
// total, and whether the grant crossed a level threshold.
type XPResult struct {
	XPGained   int64 `json:"xp_gained"`
	NewTotalXP int64 `json:"new_total_xp"`
	OldLevel   int   `json:"old_level"`
	NewLevel   int   `json:"new_level"`
	LeveledUp  bool  `json:"leveled_up"`
}

type XPService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewXPService(db *gorm.DB, notifier Notifier) *XPService {
	return &XPService{DB: db, Notifier: notifier}
}

// AddXP appends one history row and bumps the user's total in a single
// transaction, both land or neither does. The balance update is an additive
// column expression so concurrent grants for the same user never clobber
// each other.
func (s *XPService) AddXP(userID string, amount int64, reason string) (*XPResult, error) {
	var res *XPResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		r, err := s.addXP(tx, userID, amount, reason)
		if err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyLevelUp(userID, res)
	return res, nil
}

// addXP is the tx-scoped grant, shared with the streak tracker so a login's
// field updates and its XP land atomically.
func (s *XPService) addXP(tx *gorm.DB, userID string, amount int64, reason string) (*XPResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("xp amount must be positive, got %d", amount)
	}

	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	oldLevel := CalculateLevel(user.TotalXP)

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", amount)).Error; err != nil {
		return nil, fmt.Errorf("increment total_xp for %s: %w", userID, err)
	}

	var newTotal int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Pluck("total_xp", &newTotal).Error; err != nil {
		return nil, err
	}

	entry := models.XPHistory{
		ID:       uuid.NewString(),
		UserID:   userID,
		XPGained: amount,
		Reason:   reason,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("append xp history for %s: %w", userID, err)
	}

	newLevel := CalculateLevel(newTotal)
	return &XPResult{
		XPGained:   amount,
		NewTotalXP: newTotal,
		OldLevel:   oldLevel,
		NewLevel:   newLevel,
		LeveledUp:  newLevel > oldLevel,
	}, nil
}

// notifyLevelUp emits the level-up notification after the grant committed.
// Notification failures are logged, never surfaced to the grant path.
func (s *XPService) notifyLevelUp(userID string, res *XPResult) {
	if res == nil || !res.LeveledUp || s.Notifier == nil {
		return
	}
	title := fmt.Sprintf("Level %d reached!", res.NewLevel)
	msg := fmt.Sprintf("You advanced from level %d to level %d.", res.OldLevel, res.NewLevel)
	if err := s.Notifier.Notify(userID, models.NotificationLevelUp, title, msg); err != nil {
		log.Printf("[xp] level-up notification failed for user %s: %v", userID, err)
	}
}

// GetXPHistory returns the most recent entries, newest first.
func (s *XPService) GetXPHistory(userID string, limit int) ([]models.XPHistory, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	var entries []models.XPHistory
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
