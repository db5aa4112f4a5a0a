package routes

import (
	"consumable-app/config"
	"consumable-app/controllers"
	"consumable-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controllers.NewAuthController(db)

	api := app.Group(config.MAIN_ROUTES + "/auth")
	api.Post("/login", authController.Login)
	api.Get("/me", middleware.AuthMiddleware, authController.Me)
	api.Post("/logout", middleware.AuthMiddleware, authController.Logout)
}
