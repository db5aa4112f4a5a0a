package controllers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"consumable-app/apperr"
	"consumable-app/config"
	"consumable-app/controllers/idgen"
	"consumable-app/models"
	"consumable-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/exp/rand"
	"gorm.io/gorm"
)

type ConsumableController struct {
	DB *gorm.DB
}

func NewConsumableController(db *gorm.DB) *ConsumableController {
	return &ConsumableController{DB: db}
}

type ConsumableInput struct {
	Code            string  `json:"code" validate:"required"`
	OrderCode       string  `json:"order_code"`
	Name            string  `json:"name" validate:"required"`
	Category        string  `json:"category"`
	Unit            string  `json:"unit"`
	StockQuantity   int     `json:"stock_quantity" validate:"gte=0"`
	SafetyStock     int     `json:"safety_stock" validate:"gte=0"`
	UnitPrice       float64 `json:"unit_price" validate:"gte=0"`
	OrderUnit       int     `json:"order_unit" validate:"gte=0"`
	SupplierID      *uint   `json:"supplier_id"`
	StorageLocation string  `json:"storage_location"`
	Note            string  `json:"note"`
}

func (c *ConsumableController) CreateConsumable(ctx *fiber.Ctx) error {
	var input ConsumableInput
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
	if input.OrderUnit <= 0 {
		input.OrderUnit = 1
	}

	item := models.Consumable{
		Code:            input.Code,
		OrderCode:       input.OrderCode,
		Name:            input.Name,
		Category:        input.Category,
		Unit:            input.Unit,
		StockQuantity:   input.StockQuantity,
		SafetyStock:     input.SafetyStock,
		UnitPrice:       input.UnitPrice,
		OrderUnit:       input.OrderUnit,
		SupplierID:      input.SupplierID,
		StorageLocation: input.StorageLocation,
		OrderStatus:     models.ConsumableNotOrdered,
		ShortageStatus:  utils.CalculateShortageStatus(input.StockQuantity, input.SafetyStock),
		Note:            input.Note,
	}
	if err := c.DB.Create(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create consumable",
			"error":   err.Error(),
		})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Consumable created successfully",
		"data":    item,
	})
}

func (c *ConsumableController) GetConsumables(ctx *fiber.Ctx) error {
	var items []models.Consumable
	query := c.DB.Preload("Supplier")

	if category := ctx.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := ctx.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	if err := query.Order("code ASC").Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch consumables",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    items,
	})
}

func (c *ConsumableController) GetConsumableByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var item models.Consumable
	if err := c.DB.Preload("Supplier").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("品目が見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    item,
	})
}

// UpdateConsumable edits master data. The shortage flag is recomputed whenever
// stock or safety stock changes; the order flag is workflow-owned and never
// touched here.
func (c *ConsumableController) UpdateConsumable(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var item models.Consumable
	if err := c.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("品目が見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}

	var input ConsumableInput
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
	if input.OrderUnit <= 0 {
		input.OrderUnit = 1
	}

	item.Code = input.Code
	item.OrderCode = input.OrderCode
	item.Name = input.Name
	item.Category = input.Category
	item.Unit = input.Unit
	item.StockQuantity = input.StockQuantity
	item.SafetyStock = input.SafetyStock
	item.UnitPrice = input.UnitPrice
	item.OrderUnit = input.OrderUnit
	item.SupplierID = input.SupplierID
	item.StorageLocation = input.StorageLocation
	item.Note = input.Note
	item.ShortageStatus = utils.CalculateShortageStatus(item.StockQuantity, item.SafetyStock)

	if err := c.DB.Save(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update consumable",
			"error":   err.Error(),
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Consumable updated successfully",
		"data":    item,
	})
}

func (c *ConsumableController) DeleteConsumable(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var item models.Consumable
	if err := c.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("品目が見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}
	if err := c.DB.Delete(&item).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete consumable",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Consumable deleted successfully",
	})
}

// UploadImage stores an image for the consumable under a collision-free
// generated filename and records its relative path.
func (c *ConsumableController) UploadImage(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var item models.Consumable
	if err := c.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Respond(ctx, apperr.NotFoundf("品目が見つかりません"))
		}
		return apperr.Respond(ctx, err)
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Image file is required",
		})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Only image files are allowed (png, jpg, jpeg, gif, webp)",
		})
	}

	filename := fmt.Sprintf("%d_%04d%s", idgen.GenerateID(), rand.Intn(10000), ext)
	savePath := filepath.Join(config.ImagesFolder, filename)
	if err := ctx.SaveFile(file, savePath); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save image",
		})
	}

	item.ImagePath = filepath.ToSlash(filepath.Join("images", filename))
	if err := c.DB.Model(&item).Update("image_path", item.ImagePath).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to update image path",
		})
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "Image uploaded successfully",
		"data": fiber.Map{
			"image_path": item.ImagePath,
		},
	})
}
