package routes

import (
	"consumable-app/config"
	"consumable-app/controllers"
	"consumable-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupHistoryRoutes(app *fiber.App, db *gorm.DB) {
	historyController := controllers.NewHistoryController(db)

	api := app.Group(config.MAIN_ROUTES+"/history", middleware.AuthMiddleware)
	api.Get("/", historyController.GetHistory)
	api.Get("/departments", historyController.Departments)
}
