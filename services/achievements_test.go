package services

import (
	"testing"

	"codepath-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCheckAndUnlockByLessonCount(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	createAchievement(t, stack.db, "LESSONS_3", models.ReqLessonsCompleted, 3, 0)

	completeLessons(t, stack.db, user.ID, 2)
	unlocked, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	assert.Empty(t, unlocked, "two lessons must not satisfy a three-lesson requirement")

	completeLessons(t, stack.db, user.ID, 1)
	unlocked, err = stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "LESSONS_3", unlocked[0].Code)
}

func TestCheckAndUnlockIsIdempotent(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	createAchievement(t, stack.db, "FIRST_LESSON", models.ReqLessonsCompleted, 1, 0)

	completeLessons(t, stack.db, user.ID, 1)
	first, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	assert.Empty(t, second, "an unlocked achievement is never re-evaluated")

	var count int64
	require.NoError(t, stack.db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUnlockGrantsRewardXP(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	createAchievement(t, stack.db, "FIRST_LESSON", models.ReqLessonsCompleted, 1, 50)

	completeLessons(t, stack.db, user.ID, 1)
	unlocked, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)

	var stored models.User
	require.NoError(t, stack.db.Where("id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, int64(50), stored.TotalXP)

	var entry models.XPHistory
	require.NoError(t, stack.db.Where("user_id = ?", user.ID).First(&entry).Error)
	assert.Equal(t, "achievement_FIRST_LESSON", entry.Reason)
	assert.Equal(t, int64(50), entry.XPGained)
}

func TestZeroRewardUnlockGrantsNoXP(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	createAchievement(t, stack.db, "FIRST_LESSON", models.ReqLessonsCompleted, 1, 0)

	completeLessons(t, stack.db, user.ID, 1)
	unlocked, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)

	var historyCount int64
	require.NoError(t, stack.db.Model(&models.XPHistory{}).Where("user_id = ?", user.ID).Count(&historyCount).Error)
	assert.Equal(t, int64(0), historyCount)
}

func TestUnlockByTotalXP(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	createAchievement(t, stack.db, "XP_100", models.ReqTotalXP, 100, 0)

	_, err := stack.xp.AddXP(user.ID, 100, "lesson_complete")
	require.NoError(t, err)

	unlocked, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "XP_100", unlocked[0].Code)
}

func TestUnknownRequirementTypeIsSkipped(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	createAchievement(t, stack.db, "MYSTERY", models.RequirementType("moon_phase"), 1, 0)
	createAchievement(t, stack.db, "FIRST_LESSON", models.ReqLessonsCompleted, 1, 0)

	// the bad catalog row must not stop the valid sibling from unlocking
	completeLessons(t, stack.db, user.ID, 1)
	unlocked, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "FIRST_LESSON", unlocked[0].Code)
}

// Two requests evaluating the same user can race on the unlock insert. The
// loser hits the unique index, treats the achievement as already unlocked,
// skips its reward and keeps evaluating the remaining candidates.
func TestUnlockRaceLoserSkipsRewardAndContinues(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	racy := createAchievement(t, stack.db, "FIRST_LESSON", models.ReqLessonsCompleted, 1, 50)
	createAchievement(t, stack.db, "LESSON_OPENER", models.ReqLessonsCompleted, 1, 0)
	completeLessons(t, stack.db, user.ID, 1)

	// slip a competing unlock in just before ours lands
	raced := false
	err := stack.db.Callback().Create().Before("gorm:create").Register("competing_unlock", func(tx *gorm.DB) {
		ua, ok := tx.Statement.Dest.(*models.UserAchievement)
		if !ok || raced || ua.AchievementID != racy.ID {
			return
		}
		raced = true
		competing := models.UserAchievement{
			ID:            uuid.NewString(),
			UserID:        user.ID,
			AchievementID: racy.ID,
		}
		require.NoError(t, stack.db.Create(&competing).Error)
	})
	require.NoError(t, err)

	unlocked, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)
	require.True(t, raced, "the competing insert must have fired")
	require.Len(t, unlocked, 1, "only the uncontested sibling counts as newly unlocked")
	assert.Equal(t, "LESSON_OPENER", unlocked[0].Code)

	// exactly one unlock row per achievement, and no reward for the lost race
	var count int64
	require.NoError(t, stack.db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	var stored models.User
	require.NoError(t, stack.db.Where("id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, int64(0), stored.TotalXP)
}

func TestGetUserAchievementsAnnotatesUnlocks(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	createAchievement(t, stack.db, "FIRST_LESSON", models.ReqLessonsCompleted, 1, 0)
	createAchievement(t, stack.db, "LESSONS_10", models.ReqLessonsCompleted, 10, 0)

	completeLessons(t, stack.db, user.ID, 1)
	_, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)

	list, err := stack.achievements.GetUserAchievements(user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	// unlocked entries sort first
	assert.Equal(t, "FIRST_LESSON", list[0].Code)
	assert.True(t, list[0].IsUnlocked)
	require.NotNil(t, list[0].UnlockedAt)

	assert.Equal(t, "LESSONS_10", list[1].Code)
	assert.False(t, list[1].IsUnlocked)
	assert.Nil(t, list[1].UnlockedAt)
}

func TestGetUserAchievementStats(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	createAchievement(t, stack.db, "FIRST_LESSON", models.ReqLessonsCompleted, 1, 50)
	createAchievement(t, stack.db, "LESSONS_10", models.ReqLessonsCompleted, 10, 0)
	createAchievement(t, stack.db, "LESSONS_50", models.ReqLessonsCompleted, 50, 0)

	completeLessons(t, stack.db, user.ID, 1)
	_, err := stack.achievements.CheckAndUnlock(user.ID)
	require.NoError(t, err)

	// a reason that merely resembles the reward prefix must not count
	lookalike := models.XPHistory{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		XPGained: 500,
		Reason:   "achievements_weekly",
	}
	require.NoError(t, stack.db.Create(&lookalike).Error)

	stats, err := stack.achievements.GetUserAchievementStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Unlocked)
	assert.Equal(t, int64(2), stats.Locked)
	assert.Equal(t, 33, stats.CompletionPercent)
	assert.Equal(t, int64(50), stats.XPFromUnlocks)
}

func TestCollectStatsReadsProfileAndAggregates(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)

	require.NoError(t, stack.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"total_xp":       250,
		"current_streak": 4,
	}).Error)
	completeLessons(t, stack.db, user.ID, 2)

	stats, err := stack.achievements.CollectStats(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), stats.TotalXP)
	assert.Equal(t, 4, stats.CurrentStreak)
	assert.Equal(t, int64(2), stats.LessonsCompleted)
}
