package controllers

import (
	"fmt"
	"time"

	"consumable-app/apperr"
	"consumable-app/models"
	"consumable-app/repositories"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type InventoryController struct {
	DB    *gorm.DB
	Stock *repositories.StockRepository
}

func NewInventoryController(db *gorm.DB, stock *repositories.StockRepository) *InventoryController {
	return &InventoryController{DB: db, Stock: stock}
}

type inventoryRow struct {
	models.Consumable
	SupplierName    string `json:"supplier_name"`
	PendingQuantity int    `json:"pending_quantity"`
	OrderedQuantity int    `json:"ordered_quantity"`
}

// GetInventory is the main stock screen: consumables with supplier names and,
// per item, the quantities still sitting in open requests.
func (c *InventoryController) GetInventory(ctx *fiber.Ctx) error {
	query := c.DB.Model(&models.Consumable{}).Preload("Supplier")

	if code := ctx.Query("qr_code"); code != "" {
		query = query.Where("code = ?", code)
	}
	if search := ctx.Query("search_text"); search != "" {
		like := "%" + search + "%"
		query = query.Where("code LIKE ? OR name LIKE ? OR storage_location LIKE ?", like, like, like)
	}
	if status := ctx.Query("order_status"); status != "" {
		query = query.Where("order_status = ?", status)
	}
	if status := ctx.Query("shortage_status"); status != "" {
		query = query.Where("shortage_status = ?", status)
	}
	if category := ctx.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var items []models.Consumable
	if err := query.Order("code ASC").Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch inventory",
		})
	}

	// Open request quantities per consumable, one query per bucket.
	type qtyRow struct {
		ConsumableID uint
		Total        int
	}
	sumByStatus := func(statuses []models.OrderStatus) map[uint]int {
		var rows []qtyRow
		c.DB.Model(&models.Order{}).
			Select("consumable_id, SUM(quantity) AS total").
			Where("status IN ?", statuses).
			Group("consumable_id").
			Scan(&rows)
		out := make(map[uint]int, len(rows))
		for _, r := range rows {
			out[r.ConsumableID] = r.Total
		}
		return out
	}
	pending := sumByStatus([]models.OrderStatus{models.OrderStatusRequested, models.OrderStatusPrepared})
	ordered := sumByStatus([]models.OrderStatus{models.OrderStatusOrdered})

	rows := make([]inventoryRow, len(items))
	for i, item := range items {
		rows[i] = inventoryRow{
			Consumable:      item,
			PendingQuantity: pending[item.ID],
			OrderedQuantity: ordered[item.ID],
		}
		if item.Supplier != nil {
			rows[i].SupplierName = item.Supplier.Name
		}
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

type movementRequest struct {
	Code       string `json:"code"`
	Quantity   int    `json:"quantity"`
	Person     string `json:"person"`
	Department string `json:"department"`
	Note       string `json:"note"`
}

func (c *InventoryController) CreateOutbound(ctx *fiber.Ctx) error {
	var req movementRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Code == "" || req.Person == "" {
		return apperr.Respond(ctx, apperr.Validationf("商品コードと担当者は必須です"))
	}

	newStock, err := c.Stock.RecordOutbound(repositories.MovementInput{
		Code:       req.Code,
		Quantity:   req.Quantity,
		Person:     req.Person,
		Department: req.Department,
		Note:       req.Note,
	})
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "出庫を記録しました",
		"data": fiber.Map{
			"new_stock": newStock,
		},
	})
}

func (c *InventoryController) CreateInbound(ctx *fiber.Ctx) error {
	var req movementRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Code == "" || req.Person == "" {
		return apperr.Respond(ctx, apperr.Validationf("商品コードと担当者は必須です"))
	}

	newStock, err := c.Stock.RecordInbound(repositories.MovementInput{
		Code:        req.Code,
		Quantity:    req.Quantity,
		Person:      req.Person,
		Department:  req.Department,
		Note:        req.Note,
		InboundType: models.InboundTypeManual,
	})
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "入庫を記録しました",
		"data": fiber.Map{
			"new_stock": newStock,
		},
	})
}

type dispatchInboundRequest struct {
	DispatchOrderID uint   `json:"dispatch_order_id"`
	Person          string `json:"person"`
	Department      string `json:"department"`
	Note            string `json:"note"`
}

// DispatchInbound receives a whole purchase order back into stock in one shot.
func (c *InventoryController) DispatchInbound(ctx *fiber.Ctx) error {
	var req dispatchInboundRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.DispatchOrderID == 0 || req.Person == "" {
		return apperr.Respond(ctx, apperr.Validationf("注文書IDと担当者は必須です"))
	}

	result, err := c.Stock.DispatchInbound(req.DispatchOrderID, req.Person, req.Department, req.Note)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("%d件の入庫を記録しました", result.InboundCount),
		"data":    result,
	})
}

// FilterOptions feeds the inventory screen's dropdowns.
func (c *InventoryController) FilterOptions(ctx *fiber.Ctx) error {
	var categories []string
	c.DB.Model(&models.Consumable{}).
		Distinct("category").
		Where("category != ''").
		Order("category ASC").
		Pluck("category", &categories)

	return ctx.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"categories": categories,
			"order_statuses": []models.ConsumableOrderStatus{
				models.ConsumableNotOrdered,
				models.ConsumableRequested,
				models.ConsumablePrepared,
				models.ConsumableOrdered,
				models.ConsumableReceived,
			},
			"shortage_statuses": []models.ShortageStatus{
				models.ShortageOut,
				models.ShortageLow,
				models.ShortageOK,
			},
		},
	})
}

// ExportInventory streams the full stock list as an xlsx download.
func (c *InventoryController) ExportInventory(ctx *fiber.Ctx) error {
	var items []models.Consumable
	if err := c.DB.Preload("Supplier").Order("code ASC").Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch inventory",
		})
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "在庫一覧"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"コード", "発注コード", "品名", "カテゴリ", "単位", "在庫数", "安全在庫", "単価", "発注単位", "購入先", "保管場所", "発注状況", "在庫状況", "備考"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, item := range items {
		supplierName := ""
		if item.Supplier != nil {
			supplierName = item.Supplier.Name
		}
		values := []interface{}{
			item.Code, item.OrderCode, item.Name, item.Category, item.Unit,
			item.StockQuantity, item.SafetyStock, item.UnitPrice, item.OrderUnit,
			supplierName, item.StorageLocation, string(item.OrderStatus),
			string(item.ShortageStatus), item.Note,
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("inventory_%s.xlsx", time.Now().Format("20060102_150405"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to generate Excel file",
		})
	}
	return ctx.Send(buf.Bytes())
}
