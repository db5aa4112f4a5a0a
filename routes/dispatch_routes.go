package routes

import (
	"consumable-app/config"
	"consumable-app/controllers"
	"consumable-app/mailer"
	"consumable-app/middleware"
	"consumable-app/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Dispatch routes are role-gated: staging needs 班長, editing staged items
// needs 係長, creating and sending purchase orders needs 課長 or an
// approve_dispatch override.
func SetupDispatchRoutes(app *fiber.App, db *gorm.DB, dispatch *repositories.DispatchRepository, m *mailer.Mailer) {
	dispatchController := controllers.NewDispatchController(dispatch, m)
	perms := &middleware.PermissionMiddleware{DB: db}

	api := app.Group(config.MAIN_ROUTES+"/dispatch", middleware.AuthMiddleware)
	api.Get("/items", dispatchController.GetPreparedItems)
	api.Post("/items", perms.RequireRole(3), dispatchController.AddToDispatch)
	api.Post("/items/direct", perms.RequireRole(3), dispatchController.AddDirect)
	api.Put("/items/:id", perms.RequireRole(4), dispatchController.UpdatePreparedItem)

	api.Post("/orders", perms.RequireApprover(), dispatchController.CreateDispatchOrder)
	api.Get("/orders", dispatchController.GetDispatchOrders)
	api.Get("/orders/:id", dispatchController.GetDispatchOrderByID)
	api.Get("/orders/:id/pdf", dispatchController.ViewPDF)
	api.Get("/orders/:id/pdf/download", dispatchController.DownloadPDF)
	api.Post("/orders/:id/send", perms.RequireApprover(), dispatchController.SendDispatchOrder)
}
