package controllers

import (
	"errors"

	"consumable-app/apperr"
	"consumable-app/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EmployeeController manages the name list used by outbound and inbound entry
// screens. Employees here are not login users.
type EmployeeController struct {
	DB *gorm.DB
}

func NewEmployeeController(db *gorm.DB) *EmployeeController {
	return &EmployeeController{DB: db}
}

type EmployeeInput struct {
	Name       string `json:"name"`
	Department string `json:"department"`
	IsActive   *bool  `json:"is_active"`
}

func (c *EmployeeController) CreateEmployee(ctx *fiber.Ctx) error {
	var input EmployeeInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if input.Name == "" {
		return apperr.Respond(ctx, apperr.Validationf("氏名は必須です"))
	}

	employee := models.Employee{
		Name:       input.Name,
		Department: input.Department,
		IsActive:   true,
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}
	if err := c.DB.Create(&employee).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create employee",
		})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Employee created successfully",
		"data":    employee,
	})
}

func (c *EmployeeController) GetEmployees(ctx *fiber.Ctx) error {
	var employees []models.Employee
	query := c.DB.Order("department ASC, name ASC")
	if ctx.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	if department := ctx.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}
	if err := query.Find(&employees).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch employees",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    employees,
	})
}

func (c *EmployeeController) UpdateEmployee(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var employee models.Employee
	if err := c.DB.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("従業員が見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}

	var input EmployeeInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if input.Name != "" {
		employee.Name = input.Name
	}
	if input.Department != "" {
		employee.Department = input.Department
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}

	if err := c.DB.Save(&employee).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update employee",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Employee updated successfully",
		"data":    employee,
	})
}

func (c *EmployeeController) DeleteEmployee(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var employee models.Employee
	if err := c.DB.First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("従業員が見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}
	if err := c.DB.Delete(&employee).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete employee",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Employee deleted successfully",
	})
}
