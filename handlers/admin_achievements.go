// handlers/admin_achievements.go
package handlers

import (
	"errors"
	"fmt"

	"codepath-backend/middleware"
	"codepath-backend/models"
	"codepath-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func validRequirementType(kind models.RequirementType) bool {
	for _, rt := range models.RequirementTypes {
		if kind == rt {
			return true
		}
	}
	return false
}

// SetupAdminAchievementRoutes manages the static achievement catalog.
// Unlock records are never touched here, only the evaluator creates those.
func SetupAdminAchievementRoutes(app *fiber.App, db *gorm.DB) {
	adminGroup := app.Group("/s/admin/achievements", middleware.AuthRequired(), middleware.AdminRequired())

	adminGroup.Get("/", func(c *fiber.Ctx) error {
		var catalog []models.Achievement
		if err := db.Order("category ASC, requirement_value ASC").Find(&catalog).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch catalog"})
		}
		return c.JSON(catalog)
	})

	adminGroup.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Code             string                     `json:"code"`
			Name             string                     `json:"name"`
			Description      string                     `json:"description"`
			Category         models.AchievementCategory `json:"category"`
			RequirementType  models.RequirementType     `json:"requirement_type"`
			RequirementValue float64                    `json:"requirement_value"`
			XPReward         int64                      `json:"xp_reward"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Code == "" || req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code and name are required"})
		}
		if !validRequirementType(req.RequirementType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("unknown requirement type %q", req.RequirementType),
			})
		}
		if req.RequirementValue <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "requirement value must be positive"})
		}
		if req.XPReward < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "xp reward must not be negative"})
		}

		achievement := models.Achievement{
			ID:               uuid.NewString(),
			Code:             req.Code,
			Name:             req.Name,
			Description:      req.Description,
			Category:         req.Category,
			RequirementType:  req.RequirementType,
			RequirementValue: req.RequirementValue,
			XPReward:         req.XPReward,
		}
		if err := db.Create(&achievement).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "achievement code already exists"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create achievement"})
		}
		return c.Status(fiber.StatusCreated).JSON(achievement)
	})

	adminGroup.Put("/:id", func(c *fiber.Ctx) error {
		var achievement models.Achievement
		if err := db.Where("id = ?", c.Params("id")).First(&achievement).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "achievement not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
		}

		var req struct {
			Name             *string                     `json:"name"`
			Description      *string                     `json:"description"`
			Category         *models.AchievementCategory `json:"category"`
			RequirementType  *models.RequirementType     `json:"requirement_type"`
			RequirementValue *float64                    `json:"requirement_value"`
			XPReward         *int64                      `json:"xp_reward"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		if req.Name != nil {
			achievement.Name = *req.Name
		}
		if req.Description != nil {
			achievement.Description = *req.Description
		}
		if req.Category != nil {
			achievement.Category = *req.Category
		}
		if req.RequirementType != nil {
			if !validRequirementType(*req.RequirementType) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": fmt.Sprintf("unknown requirement type %q", *req.RequirementType),
				})
			}
			achievement.RequirementType = *req.RequirementType
		}
		if req.RequirementValue != nil {
			if *req.RequirementValue <= 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "requirement value must be positive"})
			}
			achievement.RequirementValue = *req.RequirementValue
		}
		if req.XPReward != nil {
			if *req.XPReward < 0 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "xp reward must not be negative"})
			}
			achievement.XPReward = *req.XPReward
		}

		if err := db.Save(&achievement).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update achievement"})
		}
		return c.JSON(achievement)
	})

	adminGroup.Post("/:id/icon", func(c *fiber.Ctx) error {
		var achievement models.Achievement
		if err := db.Where("id = ?", c.Params("id")).First(&achievement).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "achievement not found"})
		}

		fileHeader, err := c.FormFile("icon")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "icon file is required"})
		}

		url, err := utils.UploadAchievementIcon(fileHeader, achievement.ID)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrUnsupportedIconType):
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			case errors.Is(err, utils.ErrStorageNotConfigured):
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "icon uploads are disabled"})
			default:
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "icon upload failed",
					"cause": err.Error(),
				})
			}
		}

		if err := db.Model(&achievement).Update("icon_url", url).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save icon URL"})
		}
		return c.JSON(fiber.Map{"icon_url": url})
	})
}
