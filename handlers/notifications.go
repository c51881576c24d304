// handlers/notifications.go
package handlers

import (
	"errors"
	"strconv"

	"codepath-backend/middleware"
	"codepath-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupNotificationRoutes(app *fiber.App, notifications *services.NotificationService) {
	securedGroup := app.Group("/s/notifications", middleware.AuthRequired())

	securedGroup.Get("/", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		unreadOnly := c.Query("unread") == "true"
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		list, err := notifications.List(userID, unreadOnly, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch notifications"})
		}
		return c.JSON(fiber.Map{"notifications": list})
	})

	securedGroup.Post("/:id/read", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		if err := notifications.MarkRead(userID, c.Params("id")); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mark read"})
		}
		return c.JSON(fiber.Map{"message": "OK"})
	})

	securedGroup.Post("/read-all", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		marked, err := notifications.MarkAllRead(userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to mark notifications read"})
		}
		return c.JSON(fiber.Map{"message": "OK", "marked_count": marked})
	})
}
