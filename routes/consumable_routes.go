package routes

import (
	"consumable-app/config"
	"consumable-app/controllers"
	"consumable-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupConsumableRoutes(app *fiber.App, db *gorm.DB) {
	consumableController := controllers.NewConsumableController(db)

	api := app.Group(config.MAIN_ROUTES+"/consumables", middleware.AuthMiddleware)
	api.Post("/", consumableController.CreateConsumable)
	api.Get("/", consumableController.GetConsumables)
	api.Get("/:id", consumableController.GetConsumableByID)
	api.Put("/:id", consumableController.UpdateConsumable)
	api.Delete("/:id", consumableController.DeleteConsumable)
	api.Post("/:id/image", consumableController.UploadImage)
}
