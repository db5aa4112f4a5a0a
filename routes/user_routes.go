package routes

import (
	"consumable-app/config"
	"consumable-app/controllers"
	"consumable-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// User management is restricted to システム管理者.
func SetupUserRoutes(app *fiber.App, db *gorm.DB) {
	userController := controllers.NewUserController(db)
	perms := &middleware.PermissionMiddleware{DB: db}

	api := app.Group(config.MAIN_ROUTES+"/users", middleware.AuthMiddleware, perms.RequireRole(7))
	api.Post("/", userController.CreateUser)
	api.Get("/", userController.GetUsers)
	api.Get("/roles", userController.GetRoles)
	api.Post("/overrides", userController.GrantOverride)
	api.Delete("/overrides/:id", userController.RevokeOverride)
	api.Put("/:id", userController.UpdateUser)
	api.Delete("/:id", userController.DeleteUser)
}
