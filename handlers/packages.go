// handlers/packages.go
package handlers

import (
	"errors"

	"codepath-backend/middleware"
	"codepath-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func SetupPackageRoutes(app *fiber.App, db *gorm.DB) {
	// Public catalog
	app.Get("/packages", func(c *fiber.Ctx) error {
		var packages []models.TechPackage
		if err := db.Where("published = ?", true).Order("name ASC").Find(&packages).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch packages"})
		}
		return c.JSON(packages)
	})

	app.Get("/packages/:slug", func(c *fiber.Ctx) error {
		var pkg models.TechPackage
		err := db.Where("slug = ? AND published = ?", c.Params("slug"), true).
			Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Preload("Quizzes", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			First(&pkg).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "package not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch package"})
		}
		return c.JSON(pkg)
	})

	// Admin catalog management
	adminGroup := app.Group("/s/admin/packages", middleware.AuthRequired(), middleware.AdminRequired())

	adminGroup.Post("/", func(c *fiber.Ctx) error {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Published   bool   `json:"published"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
		}

		pkg := models.TechPackage{
			ID:          uuid.NewString(),
			Name:        req.Name,
			Slug:        slug.Make(req.Name),
			Description: req.Description,
			Published:   req.Published,
		}
		if err := db.Create(&pkg).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "a package with this name already exists"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create package"})
		}
		return c.Status(fiber.StatusCreated).JSON(pkg)
	})

	adminGroup.Post("/:id/lessons", func(c *fiber.Ctx) error {
		var req struct {
			Title    string `json:"title"`
			Position int    `json:"position"`
			Content  string `json:"content"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
		}

		var pkg models.TechPackage
		if err := db.Where("id = ?", c.Params("id")).First(&pkg).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "package not found"})
		}

		lesson := models.Lesson{
			ID:        uuid.NewString(),
			PackageID: pkg.ID,
			Title:     req.Title,
			Position:  req.Position,
			Content:   req.Content,
		}
		if err := db.Create(&lesson).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create lesson"})
		}
		return c.Status(fiber.StatusCreated).JSON(lesson)
	})

	adminGroup.Post("/:id/quizzes", func(c *fiber.Ctx) error {
		var req struct {
			Title    string `json:"title"`
			Position int    `json:"position"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Title == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
		}

		var pkg models.TechPackage
		if err := db.Where("id = ?", c.Params("id")).First(&pkg).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "package not found"})
		}

		quiz := models.Quiz{
			ID:        uuid.NewString(),
			PackageID: pkg.ID,
			Title:     req.Title,
			Position:  req.Position,
		}
		if err := db.Create(&quiz).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create quiz"})
		}
		return c.Status(fiber.StatusCreated).JSON(quiz)
	})
}
