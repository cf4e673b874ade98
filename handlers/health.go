package handlers

import (
	"game-catalog-sync/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupHealthRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Welcome to the Game Catalog API"})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/db-health", func(c *fiber.Ctx) error {
		status := "up"
		if err := database.Ping(c.UserContext(), db); err != nil {
			status = "down"
		}
		return c.JSON(fiber.Map{"database": status})
	})
}
