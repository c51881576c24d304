package services

import (
	"fmt"
	"log"
	"time"

	"codepath-backend/models"

	"gorm.io/gorm"
)

// LoginResult reports the streak state after a daily-login call. XP is nil
// when the user had already logged in today (idempotent no-op).
type LoginResult struct {
	AlreadyLoggedToday bool      `json:"already_logged_today"`
	CurrentStreak      int       `json:"current_streak"`
	LongestStreak      int       `json:"longest_streak"`
	StreakBonus        int64     `json:"streak_bonus"`
	XP                 *XPResult `json:"xp,omitempty"`
}

type StreakService struct {
	DB     *gorm.DB
	XP     *XPService
	Config XPConfig

	// Now is swappable so day-boundary transitions can be driven in tests.
	Now func() time.Time
}

func NewStreakService(db *gorm.DB, xp *XPService, cfg XPConfig) *StreakService {
	return &StreakService{DB: db, XP: xp, Config: cfg, Now: time.Now}
}

// utcDate strips the time component. All streak comparisons are UTC calendar
// dates; a client's local midnight does not matter.
func utcDate(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// ProcessDailyLogin advances the consecutive-day counter and grants the daily
// XP with its streak bonus. Calling it again on the same calendar day changes
// nothing. Streak fields and the XP grant commit in one transaction.
func (s *StreakService) ProcessDailyLogin(userID string) (*LoginResult, error) {
	today := utcDate(s.Now())

	var res LoginResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}

		if user.LastLoginDate != nil && utcDate(*user.LastLoginDate).Equal(today) {
			res = LoginResult{
				AlreadyLoggedToday: true,
				CurrentStreak:      user.CurrentStreak,
				LongestStreak:      user.LongestStreak,
			}
			return nil
		}

		streak := 1
		if user.LastLoginDate != nil {
			daysSinceLast := int(today.Sub(utcDate(*user.LastLoginDate)).Hours() / 24)
			if daysSinceLast == 1 {
				streak = user.CurrentStreak + 1
			}
		}

		longest := user.LongestStreak
		if streak > longest {
			longest = streak
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"current_streak":  streak,
			"longest_streak":  longest,
			"last_login_date": today,
		}).Error; err != nil {
			return fmt.Errorf("update streak for %s: %w", userID, err)
		}

		bonus := int64(streak) * s.Config.StreakBonusPerDay
		if bonus > s.Config.StreakBonusCap {
			bonus = s.Config.StreakBonusCap
		}

		xp, err := s.XP.addXP(tx, userID, s.Config.DailyLogin+bonus, "daily_login")
		if err != nil {
			return err
		}

		res = LoginResult{
			CurrentStreak: streak,
			LongestStreak: longest,
			StreakBonus:   bonus,
			XP:            xp,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.XP != nil {
		s.XP.notifyLevelUp(userID, res.XP)
		s.notifyDailyXP(userID, &res)
	}
	return &res, nil
}

// notifyDailyXP records the day's grant so clients can surface the streak
// bonus. Failures are logged, never surfaced to the login path.
func (s *StreakService) notifyDailyXP(userID string, res *LoginResult) {
	if s.XP.Notifier == nil {
		return
	}
	title := fmt.Sprintf("+%d XP for logging in", res.XP.XPGained)
	msg := fmt.Sprintf("Day %d of your streak earned a %d XP bonus.", res.CurrentStreak, res.StreakBonus)
	if err := s.XP.Notifier.Notify(userID, models.NotificationXPGained, title, msg); err != nil {
		log.Printf("[streak] daily xp notification failed for user %s: %v", userID, err)
	}
}
