package services

import (
	"os"
	"strconv"
)

// XPConfig defines how much XP each domain event is worth.
// Constructed explicitly and injected, never read from a global.
type XPConfig struct {
	LessonComplete    int64
	QuizComplete      int64
	PerfectQuizBonus  int64
	PackageComplete   int64
	DailyLogin        int64
	StreakBonusPerDay int64
	// StreakBonusCap bounds the daily streak bonus. Tunable: the right value
	// for very long streaks (>100 days) has never been validated in practice.
	StreakBonusCap int64
}

var DefaultXPConfig = XPConfig{
	LessonComplete:    50,
	QuizComplete:      30,
	PerfectQuizBonus:  20,
	PackageComplete:   200,
	DailyLogin:        10,
	StreakBonusPerDay: 2,
	StreakBonusCap:    50,
}

// LoadXPConfig returns the defaults with any XP_* env overrides applied.
func LoadXPConfig() XPConfig {
	cfg := DefaultXPConfig
	overrideInt64(&cfg.LessonComplete, "XP_LESSON_COMPLETE")
	overrideInt64(&cfg.QuizComplete, "XP_QUIZ_COMPLETE")
	overrideInt64(&cfg.PerfectQuizBonus, "XP_PERFECT_QUIZ_BONUS")
	overrideInt64(&cfg.PackageComplete, "XP_PACKAGE_COMPLETE")
	overrideInt64(&cfg.DailyLogin, "XP_DAILY_LOGIN")
	overrideInt64(&cfg.StreakBonusPerDay, "XP_STREAK_BONUS_PER_DAY")
	overrideInt64(&cfg.StreakBonusCap, "XP_STREAK_BONUS_CAP")
	return cfg
}

func overrideInt64(dst *int64, key string) {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v >= 0 {
			*dst = v
		}
	}
}
