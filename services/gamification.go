package services

import (
	"errors"
	"fmt"
	"log"

	"codepath-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GamificationResult is the consolidated payload handed back to controllers:
// everything needed to render XP gain, level-up and unlock toasts.
// NewLevel is nil unless the event crossed a threshold.
type GamificationResult struct {
	XPGained     int64                `json:"xp_gained"`
	NewTotalXP   int64                `json:"new_total_xp"`
	LeveledUp    bool                 `json:"leveled_up"`
	NewLevel     *int                 `json:"new_level"`
	Achievements []models.Achievement `json:"achievements"`
}

// DailyLoginResult extends the consolidated payload with streak state.
type DailyLoginResult struct {
	GamificationResult
	AlreadyLoggedToday bool  `json:"already_logged_today"`
	CurrentStreak      int   `json:"current_streak"`
	LongestStreak      int   `json:"longest_streak"`
	StreakBonus        int64 `json:"streak_bonus"`
}

// GamificationService is the single entry point controllers call per domain
// event. Within one call the XP grant happens before the level comparison,
// which happens before achievements are re-evaluated.
type GamificationService struct {
	DB           *gorm.DB
	XP           *XPService
	Streak       *StreakService
	Achievements *AchievementService
	Config       XPConfig
}

func NewGamificationService(db *gorm.DB, xp *XPService, streak *StreakService, achievements *AchievementService, cfg XPConfig) *GamificationService {
	return &GamificationService{DB: db, XP: xp, Streak: streak, Achievements: achievements, Config: cfg}
}

// LessonCompleted marks the lesson done and grants LESSON_COMPLETE XP.
// Re-completing an already-finished lesson returns current state without a
// second grant.
func (s *GamificationService) LessonCompleted(userID, lessonID string) (*GamificationResult, error) {
	var lesson models.Lesson
	if err := s.DB.Where("id = ?", lessonID).First(&lesson).Error; err != nil {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, err)
	}

	var xpRes *XPResult
	alreadyCompleted := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		progress := models.LessonProgress{
			ID:       uuid.NewString(),
			UserID:   userID,
			LessonID: lessonID,
		}
		if err := tx.Create(&progress).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				alreadyCompleted = true
				return nil
			}
			return fmt.Errorf("record lesson progress: %w", err)
		}
		r, err := s.XP.addXP(tx, userID, s.Config.LessonComplete, "lesson_complete")
		if err != nil {
			return err
		}
		xpRes = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyCompleted {
		return s.currentState(userID)
	}
	s.XP.notifyLevelUp(userID, xpRes)
	return s.finalize(userID, xpRes)
}

// QuizCompleted records the attempt and grants QUIZ_COMPLETE XP, with the
// PERFECT_QUIZ bonus as its own ledger entry when the score is 100.
func (s *GamificationService) QuizCompleted(userID, quizID string, score, timeSpentSeconds int) (*GamificationResult, error) {
	if score < 0 || score > 100 {
		return nil, fmt.Errorf("score must be between 0 and 100, got %d", score)
	}
	var quiz models.Quiz
	if err := s.DB.Where("id = ?", quizID).First(&quiz).Error; err != nil {
		return nil, fmt.Errorf("quiz %s: %w", quizID, err)
	}

	var combined *XPResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		attempt := models.QuizAttempt{
			ID:               uuid.NewString(),
			UserID:           userID,
			QuizID:           quizID,
			Score:            score,
			TimeSpentSeconds: timeSpentSeconds,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return fmt.Errorf("record quiz attempt: %w", err)
		}

		base, err := s.XP.addXP(tx, userID, s.Config.QuizComplete, "quiz_complete")
		if err != nil {
			return err
		}
		combined = base

		if score == 100 {
			bonus, err := s.XP.addXP(tx, userID, s.Config.PerfectQuizBonus, "perfect_quiz")
			if err != nil {
				return err
			}
			combined = &XPResult{
				XPGained:   base.XPGained + bonus.XPGained,
				NewTotalXP: bonus.NewTotalXP,
				OldLevel:   base.OldLevel,
				NewLevel:   bonus.NewLevel,
				LeveledUp:  bonus.NewLevel > base.OldLevel,
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.XP.notifyLevelUp(userID, combined)
	return s.finalize(userID, combined)
}

// PackageCompleted grants PACKAGE_COMPLETE XP on first completion of a
// technology package.
func (s *GamificationService) PackageCompleted(userID, packageID string) (*GamificationResult, error) {
	var pkg models.TechPackage
	if err := s.DB.Where("id = ?", packageID).First(&pkg).Error; err != nil {
		return nil, fmt.Errorf("package %s: %w", packageID, err)
	}

	var xpRes *XPResult
	alreadyCompleted := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		progress := models.PackageProgress{
			ID:        uuid.NewString(),
			UserID:    userID,
			PackageID: packageID,
		}
		if err := tx.Create(&progress).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				alreadyCompleted = true
				return nil
			}
			return fmt.Errorf("record package progress: %w", err)
		}
		r, err := s.XP.addXP(tx, userID, s.Config.PackageComplete, "package_complete")
		if err != nil {
			return err
		}
		xpRes = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyCompleted {
		return s.currentState(userID)
	}
	s.XP.notifyLevelUp(userID, xpRes)
	return s.finalize(userID, xpRes)
}

// DailyLogin delegates to the streak tracker, then re-checks achievements
// when XP was actually granted.
func (s *GamificationService) DailyLogin(userID string) (*DailyLoginResult, error) {
	login, err := s.Streak.ProcessDailyLogin(userID)
	if err != nil {
		return nil, err
	}

	res := DailyLoginResult{
		AlreadyLoggedToday: login.AlreadyLoggedToday,
		CurrentStreak:      login.CurrentStreak,
		LongestStreak:      login.LongestStreak,
		StreakBonus:        login.StreakBonus,
	}

	if login.AlreadyLoggedToday {
		state, err := s.currentState(userID)
		if err != nil {
			return nil, err
		}
		res.GamificationResult = *state
		return &res, nil
	}

	consolidated, err := s.finalize(userID, login.XP)
	if err != nil {
		return nil, err
	}
	res.GamificationResult = *consolidated
	return &res, nil
}

// finalize re-checks achievements after a grant and folds any reward XP into
// the consolidated payload. An evaluator failure degrades gracefully: the XP
// result still reaches the caller.
func (s *GamificationService) finalize(userID string, xpRes *XPResult) (*GamificationResult, error) {
	unlocked, err := s.Achievements.CheckAndUnlock(userID)
	if err != nil {
		log.Printf("[gamification] achievement check failed for user %s: %v", userID, err)
		unlocked = []models.Achievement{}
	}

	startTotal := xpRes.NewTotalXP - xpRes.XPGained

	finalTotal := xpRes.NewTotalXP
	if len(unlocked) > 0 {
		var user models.User
		if err := s.DB.Where("id = ?", userID).First(&user).Error; err == nil {
			finalTotal = user.TotalXP
		}
	}

	newLevel := CalculateLevel(finalTotal)
	result := &GamificationResult{
		XPGained:     finalTotal - startTotal,
		NewTotalXP:   finalTotal,
		LeveledUp:    newLevel > xpRes.OldLevel,
		Achievements: unlocked,
	}
	if result.LeveledUp {
		result.NewLevel = &newLevel
	}
	return result, nil
}

// currentState builds a no-grant payload for idempotent repeats.
func (s *GamificationService) currentState(userID string) (*GamificationResult, error) {
	var user models.User
	if err := s.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("user %s: %w", userID, err)
	}
	return &GamificationResult{
		NewTotalXP:   user.TotalXP,
		Achievements: []models.Achievement{},
	}, nil
}
