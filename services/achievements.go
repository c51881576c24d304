package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"codepath-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementService struct {
	DB       *gorm.DB
	XP       *XPService
	Stats    StatsProvider
	Notifier Notifier
}

func NewAchievementService(db *gorm.DB, xp *XPService, stats StatsProvider, notifier Notifier) *AchievementService {
	return &AchievementService{DB: db, XP: xp, Stats: stats, Notifier: notifier}
}

// AchievementWithStatus annotates a catalog entry with the caller's unlock state.
type AchievementWithStatus struct {
	models.Achievement
	IsUnlocked bool       `json:"is_unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

type AchievementStats struct {
	Total             int64 `json:"total"`
	Unlocked          int64 `json:"unlocked"`
	Locked            int64 `json:"locked"`
	CompletionPercent int   `json:"completion_percent"`
	XPFromUnlocks     int64 `json:"xp_from_achievements"`
}

// statValue extracts the statistic an achievement's requirement kind gates on.
// Returns false for a kind the evaluator does not know, so a bad catalog row
// never unlocks anything.
func statValue(stats *UserStats, kind models.RequirementType) (float64, bool) {
	switch kind {
	case models.ReqLessonsCompleted:
		return float64(stats.LessonsCompleted), true
	case models.ReqQuizzesCompleted:
		return float64(stats.QuizzesCompleted), true
	case models.ReqPackagesCompleted:
		return float64(stats.PackagesCompleted), true
	case models.ReqStreakDays:
		return float64(stats.CurrentStreak), true
	case models.ReqTotalXP:
		return float64(stats.TotalXP), true
	case models.ReqPerfectQuizzes:
		return float64(stats.PerfectQuizzes), true
	case models.ReqStudyHours:
		return stats.StudyHours, true
	}
	return 0, false
}

// CollectStats assembles the full statistics snapshot: aggregates from the
// provider, streak and XP straight off the user row.
func (s *AchievementService) CollectStats(userID string) (*UserStats, error) {
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}

	stats := &UserStats{
		CurrentStreak: user.CurrentStreak,
		TotalXP:       user.TotalXP,
	}

	var err error
	if stats.LessonsCompleted, err = s.Stats.LessonsCompleted(userID); err != nil {
		return nil, fmt.Errorf("lessons completed: %w", err)
	}
	if stats.QuizzesCompleted, err = s.Stats.QuizzesCompleted(userID); err != nil {
		return nil, fmt.Errorf("quizzes completed: %w", err)
	}
	if stats.PerfectQuizzes, err = s.Stats.PerfectQuizzes(userID); err != nil {
		return nil, fmt.Errorf("perfect quizzes: %w", err)
	}
	if stats.PackagesCompleted, err = s.Stats.PackagesCompleted(userID); err != nil {
		return nil, fmt.Errorf("packages completed: %w", err)
	}
	if stats.StudyHours, err = s.Stats.StudyHours(userID); err != nil {
		return nil, fmt.Errorf("study hours: %w", err)
	}
	return stats, nil
}

// CheckAndUnlock evaluates every still-locked achievement against the user's
// current statistics and unlocks the ones that newly qualify. A failure on
// one candidate is logged and does not stop the rest; a duplicate-key insert
// (two requests racing) is treated as already unlocked.
func (s *AchievementService) CheckAndUnlock(userID string) ([]models.Achievement, error) {
	stats, err := s.CollectStats(userID)
	if err != nil {
		return nil, err
	}

	var locked []models.Achievement
	if err := s.DB.
		Where("id NOT IN (SELECT achievement_id FROM user_achievements WHERE user_id = ?)", userID).
		Find(&locked).Error; err != nil {
		return nil, fmt.Errorf("fetch locked achievements: %w", err)
	}

	unlocked := []models.Achievement{}
	for _, a := range locked {
		value, ok := statValue(stats, a.RequirementType)
		if !ok {
			log.Printf("[achievements] unknown requirement type %q on %s, skipping", a.RequirementType, a.Code)
			continue
		}
		if value < a.RequirementValue {
			continue
		}

		ua := models.UserAchievement{
			ID:            uuid.NewString(),
			UserID:        userID,
			AchievementID: a.ID,
		}
		if err := s.DB.Create(&ua).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue // lost a race, already unlocked
			}
			log.Printf("[achievements] failed to unlock %s for user %s: %v", a.Code, userID, err)
			continue
		}

		if a.XPReward > 0 {
			if _, err := s.XP.AddXP(userID, a.XPReward, "achievement_"+a.Code); err != nil {
				log.Printf("[achievements] reward XP failed for %s (user %s): %v", a.Code, userID, err)
			}
		}

		if s.Notifier != nil {
			title := "Achievement unlocked: " + a.Name
			if err := s.Notifier.Notify(userID, models.NotificationAchievementUnlocked, title, a.Description); err != nil {
				log.Printf("[achievements] unlock notification failed for %s: %v", a.Code, err)
			}
		}

		unlocked = append(unlocked, a)
	}
	return unlocked, nil
}

// GetUserAchievements returns the whole catalog annotated with unlock state,
// unlocked entries first, then by category and requirement value.
func (s *AchievementService) GetUserAchievements(userID string) ([]AchievementWithStatus, error) {
	var catalog []models.Achievement
	if err := s.DB.Order("category ASC, requirement_value ASC").Find(&catalog).Error; err != nil {
		return nil, err
	}

	var unlocks []models.UserAchievement
	if err := s.DB.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		return nil, err
	}
	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, ua := range unlocks {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	result := make([]AchievementWithStatus, 0, len(catalog))
	for _, a := range catalog {
		entry := AchievementWithStatus{Achievement: a}
		if at, ok := unlockedAt[a.ID]; ok {
			entry.IsUnlocked = true
			t := at
			entry.UnlockedAt = &t
		}
		result = append(result, entry)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].IsUnlocked && !result[j].IsUnlocked
	})
	return result, nil
}

func (s *AchievementService) GetUserAchievementStats(userID string) (*AchievementStats, error) {
	var total, unlocked int64
	if err := s.DB.Model(&models.Achievement{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Count(&unlocked).Error; err != nil {
		return nil, err
	}

	// underscore escaped so only the reward-grant prefix matches, not any
	// single character
	var xpFromUnlocks int64
	if err := s.DB.Model(&models.XPHistory{}).
		Where(`user_id = ? AND reason LIKE ? ESCAPE '\'`, userID, `achievement\_%`).
		Select("COALESCE(SUM(xp_gained), 0)").
		Scan(&xpFromUnlocks).Error; err != nil {
		return nil, err
	}

	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(unlocked) / float64(total) * 100))
	}

	return &AchievementStats{
		Total:             total,
		Unlocked:          unlocked,
		Locked:            total - unlocked,
		CompletionPercent: percent,
		XPFromUnlocks:     xpFromUnlocks,
	}, nil
}
