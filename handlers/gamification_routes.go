// handlers/gamification_routes.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"codepath-backend/middleware"
	"codepath-backend/models"
	"codepath-backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func SetupGamificationRoutes(app *fiber.App, gamification *services.GamificationService, xp *services.XPService, achievements *services.AchievementService) {
	securedGroup := app.Group("/s", middleware.AuthRequired())

	securedGroup.Post("/lessons/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := gamification.LessonCompleted(userID, c.Params("id"))
		if err != nil {
			return gamificationError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Post("/quizzes/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			Score            int `json:"score"`
			TimeSpentSeconds int `json:"time_spent_seconds"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Score < 0 || req.Score > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "score must be between 0 and 100"})
		}

		result, err := gamification.QuizCompleted(userID, c.Params("id"), req.Score, req.TimeSpentSeconds)
		if err != nil {
			return gamificationError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Post("/packages/:id/complete", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := gamification.PackageCompleted(userID, c.Params("id"))
		if err != nil {
			return gamificationError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Post("/login/daily", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		result, err := gamification.DailyLogin(userID)
		if err != nil {
			return gamificationError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Get("/user/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var user models.User
		if err := gamification.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			return gamificationError(c, err)
		}
		stats, err := achievements.CollectStats(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to aggregate statistics",
				"cause": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"total_xp":          user.TotalXP,
			"level":             services.CalculateLevel(user.TotalXP),
			"xp_for_next_level": services.XPForNextLevel(user.TotalXP),
			"current_streak":    user.CurrentStreak,
			"longest_streak":    user.LongestStreak,
			"last_login_date":   user.LastLoginDate,
			"stats":             stats,
		})
	})

	securedGroup.Get("/user/progress/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		entries, err := xp.GetXPHistory(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get XP history",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"history": entries})
	})

	securedGroup.Get("/user/achievements", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		list, err := achievements.GetUserAchievements(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get achievements",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"achievements": list})
	})

	securedGroup.Get("/user/achievements/stats", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		stats, err := achievements.GetUserAchievementStats(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to get achievement stats",
				"cause": err.Error(),
			})
		}
		return c.JSON(stats)
	})

	// Explicit re-evaluation, e.g. after a backfill. Idempotent.
	securedGroup.Post("/achievements/check", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		unlocked, err := achievements.CheckAndUnlock(userID)
		if err != nil {
			return gamificationError(c, err)
		}
		return c.JSON(fiber.Map{"unlocked": unlocked})
	})

	securedGroup.Post("/sessions/heartbeat", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		return studySessionHeartbeat(c, gamification.DB, userID)
	})
}

// studySessionHeartbeat extends the user's open study session or starts a
// new one. Sessions feed the study_hours statistic.
func studySessionHeartbeat(c *fiber.Ctx, db *gorm.DB, userID string) error {
	now := time.Now().UTC()

	var session models.StudySession
	err := db.Where("user_id = ? AND ended_at IS NULL", userID).
		Order("started_at DESC").
		First(&session).Error

	switch {
	case err == nil:
		elapsed := int(now.Sub(session.LastSeenAt).Seconds())
		// A gap longer than the heartbeat window means the client went away;
		// close the old session instead of counting idle time.
		if elapsed > 30*60 {
			db.Model(&session).Updates(map[string]interface{}{"ended_at": session.LastSeenAt})
			return startStudySession(c, db, userID, now)
		}
		if err := db.Model(&session).Updates(map[string]interface{}{
			"last_seen_at":     now,
			"duration_seconds": gorm.Expr("duration_seconds + ?", elapsed),
		}).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update session"})
		}
		return c.JSON(fiber.Map{"session_id": session.ID, "duration_seconds": session.DurationSeconds + elapsed})
	case errors.Is(err, gorm.ErrRecordNotFound):
		return startStudySession(c, db, userID, now)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load session"})
	}
}

func startStudySession(c *fiber.Ctx, db *gorm.DB, userID string, now time.Time) error {
	session := models.StudySession{
		ID:         uuid.NewString(),
		UserID:     userID,
		LastSeenAt: now,
	}
	if err := db.Create(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to start session"})
	}
	return c.JSON(fiber.Map{"session_id": session.ID, "duration_seconds": 0})
}

// gamificationError maps storage misses to 404 and everything else to 500.
func gamificationError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "gamification update failed",
		"cause": err.Error(),
	})
}
