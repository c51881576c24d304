package services

import (
	"testing"
	"time"

	"codepath-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginOn(t *testing.T, stack *testStack, userID string, day time.Time) *LoginResult {
	t.Helper()

	stack.streak.Now = func() time.Time { return day }
	res, err := stack.streak.ProcessDailyLogin(userID)
	require.NoError(t, err)
	return res
}

func TestFirstLoginStartsStreak(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)

	res := loginOn(t, stack, user.ID, dayUTC(2026, time.March, 1))
	assert.False(t, res.AlreadyLoggedToday)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 1, res.LongestStreak)
	require.NotNil(t, res.XP)
	assert.Equal(t, stack.cfg.DailyLogin+stack.cfg.StreakBonusPerDay, res.XP.XPGained)
}

func TestSameDayLoginIsIdempotent(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	day := dayUTC(2026, time.March, 1)

	first := loginOn(t, stack, user.ID, day)
	require.NotNil(t, first.XP)

	// later the same calendar day, different clock time
	again := loginOn(t, stack, user.ID, day.Add(9*time.Hour))
	assert.True(t, again.AlreadyLoggedToday)
	assert.Equal(t, 1, again.CurrentStreak)
	assert.Nil(t, again.XP)

	var stored models.User
	require.NoError(t, stack.db.Where("id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, first.XP.NewTotalXP, stored.TotalXP, "no second grant on the same day")
}

func TestConsecutiveDayExtendsStreak(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)

	loginOn(t, stack, user.ID, dayUTC(2026, time.March, 1))
	res := loginOn(t, stack, user.ID, dayUTC(2026, time.March, 2))

	assert.Equal(t, 2, res.CurrentStreak)
	assert.Equal(t, 2, res.LongestStreak)
	assert.Equal(t, int64(4), res.StreakBonus)
}

func TestMissedDayResetsStreakKeepsLongest(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)

	loginOn(t, stack, user.ID, dayUTC(2026, time.March, 1))
	loginOn(t, stack, user.ID, dayUTC(2026, time.March, 2))

	// day 3 missed
	res := loginOn(t, stack, user.ID, dayUTC(2026, time.March, 4))
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 2, res.LongestStreak, "longest streak survives the reset")

	var stored models.User
	require.NoError(t, stack.db.Where("id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, 1, stored.CurrentStreak)
	assert.Equal(t, 2, stored.LongestStreak)
}

func TestStreakBonusIsCapped(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)

	// seed a long-running streak directly
	yesterday := dayUTC(2026, time.February, 28)
	require.NoError(t, stack.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"current_streak":  40,
		"longest_streak":  40,
		"last_login_date": yesterday,
	}).Error)

	res := loginOn(t, stack, user.ID, dayUTC(2026, time.March, 1))
	assert.Equal(t, 41, res.CurrentStreak)
	assert.Equal(t, stack.cfg.StreakBonusCap, res.StreakBonus)
	require.NotNil(t, res.XP)
	assert.Equal(t, stack.cfg.DailyLogin+stack.cfg.StreakBonusCap, res.XP.XPGained)
}

func TestDailyLoginEmitsXPNotification(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)
	day := dayUTC(2026, time.March, 1)

	loginOn(t, stack, user.ID, day)

	var notifications []models.Notification
	require.NoError(t, stack.db.Where("user_id = ? AND type = ?", user.ID, models.NotificationXPGained).Find(&notifications).Error)
	require.Len(t, notifications, 1)

	// a repeat on the same day grants nothing and must not notify again
	loginOn(t, stack, user.ID, day.Add(6*time.Hour))
	require.NoError(t, stack.db.Where("user_id = ? AND type = ?", user.ID, models.NotificationXPGained).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestStreakGrantWritesLedgerRow(t *testing.T) {
	stack := newTestStack(t)
	user := createUser(t, stack.db)

	loginOn(t, stack, user.ID, dayUTC(2026, time.March, 1))

	var entries []models.XPHistory
	require.NoError(t, stack.db.Where("user_id = ?", user.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "daily_login", entries[0].Reason)
}
