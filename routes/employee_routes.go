package routes

import (
	"consumable-app/config"
	"consumable-app/controllers"
	"consumable-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupEmployeeRoutes(app *fiber.App, db *gorm.DB) {
	employeeController := controllers.NewEmployeeController(db)

	api := app.Group(config.MAIN_ROUTES+"/employees", middleware.AuthMiddleware)
	api.Post("/", employeeController.CreateEmployee)
	api.Get("/", employeeController.GetEmployees)
	api.Put("/:id", employeeController.UpdateEmployee)
	api.Delete("/:id", employeeController.DeleteEmployee)
}
