package controllers

import (
	"errors"

	"consumable-app/apperr"
	"consumable-app/models"
	"consumable-app/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

type UserInput struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	RoleIDs  []uint `json:"role_ids"`
}

func (c *UserController) CreateUser(ctx *fiber.Ctx) error {
	var input UserInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to hash password",
		})
	}

	var roles []models.Role
	if len(input.RoleIDs) > 0 {
		if err := c.DB.Where("id IN ?", input.RoleIDs).Find(&roles).Error; err != nil {
			return apperr.Respond(ctx, err)
		}
	}

	user := models.User{
		Username: input.Username,
		Password: string(hashed),
		FullName: input.FullName,
		Email:    input.Email,
		IsActive: true,
		Roles:    roles,
	}
	if err := c.DB.Create(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create user",
			"error":   err.Error(),
		})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "User created successfully",
		"data":    user,
	})
}

func (c *UserController) GetUsers(ctx *fiber.Ctx) error {
	var users []models.User
	if err := c.DB.Preload("Roles").Order("username ASC").Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch users",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    users,
	})
}

type UserUpdateInput struct {
	Password string `json:"password" validate:"omitempty,min=6"`
	FullName string `json:"full_name"`
	Email    string `json:"email" validate:"omitempty,email"`
	IsActive *bool  `json:"is_active"`
	RoleIDs  []uint `json:"role_ids"`
}

func (c *UserController) UpdateUser(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var user models.User
	if err := c.DB.Preload("Roles").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("ユーザーが見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}

	var input UserUpdateInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to hash password",
			})
		}
		user.Password = string(hashed)
	}
	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update user",
		})
	}

	if input.RoleIDs != nil {
		var roles []models.Role
		if err := c.DB.Where("id IN ?", input.RoleIDs).Find(&roles).Error; err != nil {
			return apperr.Respond(ctx, err)
		}
		if err := c.DB.Model(&user).Association("Roles").Replace(roles); err != nil {
			return apperr.Respond(ctx, err)
		}
	}

	c.DB.Preload("Roles").First(&user, user.ID)
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "User updated successfully",
		"data":    user,
	})
}

func (c *UserController) DeleteUser(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var user models.User
	if err := c.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("ユーザーが見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}
	if err := c.DB.Delete(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete user",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully",
	})
}

func (c *UserController) GetRoles(ctx *fiber.Ctx) error {
	var roles []models.Role
	if err := c.DB.Order("priority ASC").Find(&roles).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch roles",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    roles,
	})
}

type OverrideInput struct {
	UserID     uint   `json:"user_id" validate:"required"`
	Capability string `json:"capability" validate:"required"`
}

// GrantOverride gives one user one capability outside the role ladder, e.g.
// approve_dispatch for a designated deputy.
func (c *UserController) GrantOverride(ctx *fiber.Ctx) error {
	var input OverrideInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}
	if input.Capability != services.CapApproveDispatch {
		return apperr.Respond(ctx, apperr.Validationf("不明な権限です: %s", input.Capability))
	}

	var user models.User
	if err := c.DB.First(&user, input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("ユーザーが見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}

	var existing models.RoleOverride
	err := c.DB.Where("user_id = ? AND capability = ?", input.UserID, input.Capability).First(&existing).Error
	if err == nil {
		return ctx.JSON(fiber.Map{
			"success": true,
			"message": "Override already granted",
			"data":    existing,
		})
	}

	override := models.RoleOverride{UserID: input.UserID, Capability: input.Capability}
	if err := c.DB.Create(&override).Error; err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Override granted",
		"data":    override,
	})
}

func (c *UserController) RevokeOverride(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	res := c.DB.Delete(&models.RoleOverride{}, id)
	if res.Error != nil {
		return apperr.Respond(ctx, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Respond(ctx, apperr.NotFoundf("権限設定が見つかりません"))
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Override revoked",
	})
}
