package routes

import (
	"consumable-app/config"
	"consumable-app/controllers"
	"consumable-app/middleware"
	"consumable-app/repositories"

	"github.com/gofiber/fiber/v2"
)

func SetupOrderRoutes(app *fiber.App, orders *repositories.OrderRepository) {
	orderController := controllers.NewOrderController(orders)

	api := app.Group(config.MAIN_ROUTES+"/orders", middleware.AuthMiddleware)
	api.Post("/", orderController.CreateOrder)
	api.Get("/", orderController.GetOrders)
	api.Get("/low-stock", orderController.CheckLowStock)
	api.Post("/auto-create", orderController.AutoCreateOrders)
	api.Get("/:id", orderController.GetOrderByID)
	api.Put("/:id/status", orderController.UpdateOrderStatus)
	api.Delete("/:id", orderController.DeleteOrder)
}
