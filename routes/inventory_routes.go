package routes

import (
	"consumable-app/config"
	"consumable-app/controllers"
	"consumable-app/middleware"
	"consumable-app/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupInventoryRoutes(app *fiber.App, db *gorm.DB, stock *repositories.StockRepository) {
	inventoryController := controllers.NewInventoryController(db, stock)

	api := app.Group(config.MAIN_ROUTES+"/inventory", middleware.AuthMiddleware)
	api.Get("/", inventoryController.GetInventory)
	api.Get("/filter-options", inventoryController.FilterOptions)
	api.Get("/export", inventoryController.ExportInventory)
	api.Post("/outbound", inventoryController.CreateOutbound)
	api.Post("/inbound", inventoryController.CreateInbound)
	api.Post("/dispatch-inbound", inventoryController.DispatchInbound)
}
