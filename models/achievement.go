package models

import (
	"time"
)

// AchievementCategory groups catalog entries for display ordering.
type AchievementCategory string

const (
	CategoryBeginner AchievementCategory = "beginner"
	CategoryProgress AchievementCategory = "progress"
	CategoryMastery  AchievementCategory = "mastery"
	CategorySocial   AchievementCategory = "social"
	CategoryStreak   AchievementCategory = "streak"
	CategorySpecial  AchievementCategory = "special"
)

// RequirementType is the closed set of statistics an achievement can gate on.
// Every kind is a simple "statistic >= requirement_value" threshold.
type RequirementType string

const (
	ReqLessonsCompleted  RequirementType = "lessons_completed"
	ReqQuizzesCompleted  RequirementType = "quizzes_completed"
	ReqPackagesCompleted RequirementType = "packages_completed"
	ReqStreakDays        RequirementType = "streak_days"
	ReqTotalXP           RequirementType = "total_xp"
	ReqPerfectQuizzes    RequirementType = "perfect_quizzes"
	ReqStudyHours        RequirementType = "study_hours"
)

// RequirementTypes lists every valid kind, for validation on the admin path.
var RequirementTypes = []RequirementType{
	ReqLessonsCompleted,
	ReqQuizzesCompleted,
	ReqPackagesCompleted,
	ReqStreakDays,
	ReqTotalXP,
	ReqPerfectQuizzes,
	ReqStudyHours,
}

// Achievement: static catalog entry (seeded at startup, editable by admins)
type Achievement struct {
	ID               string              `gorm:"primaryKey;type:uuid" json:"id"`
	Code             string              `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FIRST_LESSON"
	Name             string              `gorm:"not null" json:"name"`
	Description      string              `json:"description"`
	IconURL          string              `gorm:"type:text" json:"icon_url"`
	Category         AchievementCategory `gorm:"type:varchar(16);not null;index" json:"category"`
	RequirementType  RequirementType     `gorm:"type:varchar(32);not null" json:"requirement_type"`
	RequirementValue float64             `gorm:"not null" json:"requirement_value"`
	XPReward         int64               `gorm:"default:0" json:"xp_reward"`
	CreatedAt        time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement: unlock record, at most one per (user, achievement).
// The composite unique index is what makes unlocking race-safe.
type UserAchievement struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string    `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"autoCreateTime" json:"unlocked_at"`

	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}

// DefaultAchievements seeds the catalog on first boot (matched by Code).
var DefaultAchievements = []Achievement{
	{
		Code:             "FIRST_LESSON",
		Name:             "First Steps",
		Description:      "Complete your first lesson",
		Category:         CategoryBeginner,
		RequirementType:  ReqLessonsCompleted,
		RequirementValue: 1,
		XPReward:         25,
	},
	{
		Code:             "FIRST_QUIZ",
		Name:             "Quiz Rookie",
		Description:      "Complete your first quiz",
		Category:         CategoryBeginner,
		RequirementType:  ReqQuizzesCompleted,
		RequirementValue: 1,
		XPReward:         25,
	},
	{
		Code:             "LESSONS_10",
		Name:             "Getting Serious",
		Description:      "Complete 10 lessons",
		Category:         CategoryProgress,
		RequirementType:  ReqLessonsCompleted,
		RequirementValue: 10,
		XPReward:         50,
	},
	{
		Code:             "LESSONS_50",
		Name:             "Knowledge Seeker",
		Description:      "Complete 50 lessons",
		Category:         CategoryProgress,
		RequirementType:  ReqLessonsCompleted,
		RequirementValue: 50,
		XPReward:         150,
	},
	{
		Code:             "QUIZZES_25",
		Name:             "Quiz Enthusiast",
		Description:      "Complete 25 quizzes",
		Category:         CategoryProgress,
		RequirementType:  ReqQuizzesCompleted,
		RequirementValue: 25,
		XPReward:         100,
	},
	{
		Code:             "FIRST_PACKAGE",
		Name:             "Package Pioneer",
		Description:      "Finish a full technology package",
		Category:         CategoryProgress,
		RequirementType:  ReqPackagesCompleted,
		RequirementValue: 1,
		XPReward:         100,
	},
	{
		Code:             "PACKAGES_5",
		Name:             "Polyglot",
		Description:      "Finish 5 technology packages",
		Category:         CategoryMastery,
		RequirementType:  ReqPackagesCompleted,
		RequirementValue: 5,
		XPReward:         500,
	},
	{
		Code:             "PERFECT_QUIZ",
		Name:             "Perfectionist",
		Description:      "Score 100% on a quiz",
		Category:         CategoryMastery,
		RequirementType:  ReqPerfectQuizzes,
		RequirementValue: 1,
		XPReward:         50,
	},
	{
		Code:             "PERFECT_10",
		Name:             "Flawless",
		Description:      "Score 100% on 10 quizzes",
		Category:         CategoryMastery,
		RequirementType:  ReqPerfectQuizzes,
		RequirementValue: 10,
		XPReward:         250,
	},
	{
		Code:             "STREAK_3",
		Name:             "Warming Up",
		Description:      "Log in 3 days in a row",
		Category:         CategoryStreak,
		RequirementType:  ReqStreakDays,
		RequirementValue: 3,
		XPReward:         30,
	},
	{
		Code:             "STREAK_7",
		Name:             "Week Warrior",
		Description:      "Log in 7 days in a row",
		Category:         CategoryStreak,
		RequirementType:  ReqStreakDays,
		RequirementValue: 7,
		XPReward:         75,
	},
	{
		Code:             "STREAK_30",
		Name:             "Unstoppable",
		Description:      "Log in 30 days in a row",
		Category:         CategoryStreak,
		RequirementType:  ReqStreakDays,
		RequirementValue: 30,
		XPReward:         300,
	},
	{
		Code:             "XP_1000",
		Name:             "Rising Star",
		Description:      "Earn 1,000 XP",
		Category:         CategoryProgress,
		RequirementType:  ReqTotalXP,
		RequirementValue: 1000,
		XPReward:         100,
	},
	{
		Code:             "XP_10000",
		Name:             "Veteran",
		Description:      "Earn 10,000 XP",
		Category:         CategoryMastery,
		RequirementType:  ReqTotalXP,
		RequirementValue: 10000,
		XPReward:         0,
	},
	{
		Code:             "STUDY_10H",
		Name:             "Night Owl",
		Description:      "Study for 10 hours total",
		Category:         CategorySpecial,
		RequirementType:  ReqStudyHours,
		RequirementValue: 10,
		XPReward:         100,
	},
	{
		Code:             "STUDY_100H",
		Name:             "Scholar",
		Description:      "Study for 100 hours total",
		Category:         CategorySpecial,
		RequirementType:  ReqStudyHours,
		RequirementValue: 100,
		XPReward:         500,
	},
}
