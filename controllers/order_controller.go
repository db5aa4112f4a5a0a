package controllers

import (
	"fmt"
	"strconv"

	"consumable-app/apperr"
	"consumable-app/models"
	"consumable-app/repositories"

	"github.com/gofiber/fiber/v2"
)

type OrderController struct {
	Orders *repositories.OrderRepository
}

func NewOrderController(orders *repositories.OrderRepository) *OrderController {
	return &OrderController{Orders: orders}
}

type createOrderRequest struct {
	Code       string `json:"code"`
	Quantity   int    `json:"quantity"`
	Requester  string `json:"requester"`
	Deadline   string `json:"deadline"`
	Note       string `json:"note"`
	SupplierID *uint  `json:"supplier_id"`
}

func (c *OrderController) CreateOrder(ctx *fiber.Ctx) error {
	var req createOrderRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	order, err := c.Orders.CreateOrder(repositories.CreateOrderInput{
		Code:       req.Code,
		Quantity:   req.Quantity,
		Requester:  req.Requester,
		Deadline:   req.Deadline,
		Note:       req.Note,
		SupplierID: req.SupplierID,
		OrderType:  models.OrderTypeManual,
	})
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "注文依頼を作成しました",
		"data":    order,
	})
}

func (c *OrderController) GetOrders(ctx *fiber.Ctx) error {
	filter := repositories.OrderFilter{
		OrderType: ctx.Query("order_type"),
		Status:    ctx.Query("status"),
		Requester: ctx.Query("requester"),
		DateFrom:  ctx.Query("date_from"),
		DateTo:    ctx.Query("date_to"),
		SortBy:    ctx.Query("sort_by"),
		SortOrder: ctx.Query("sort_order"),
	}
	if raw := ctx.Query("supplier_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			supplierID := uint(id)
			filter.SupplierID = &supplierID
		}
	}

	rows, err := c.Orders.ListOrders(filter)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

func (c *OrderController) GetOrderByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	detail, err := c.Orders.GetOrder(uint(id))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    detail,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (c *OrderController) UpdateOrderStatus(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var req updateStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if err := c.Orders.UpdateStatus(uint(id), models.OrderStatus(req.Status)); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "ステータスを更新しました",
	})
}

func (c *OrderController) DeleteOrder(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	if err := c.Orders.DeleteOrder(uint(id)); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "注文依頼を削除しました",
	})
}

// CheckLowStock lists consumables at or below safety stock with a suggested
// reorder quantity for each.
func (c *OrderController) CheckLowStock(ctx *fiber.Ctx) error {
	items, err := c.Orders.LowStock()
	if err != nil {
		return apperr.Respond(ctx, err)
	}

	type lowStockRow struct {
		models.Consumable
		SuggestedQuantity int `json:"suggested_quantity"`
	}
	rows := make([]lowStockRow, len(items))
	for i, item := range items {
		rows[i] = lowStockRow{
			Consumable:        item,
			SuggestedQuantity: repositories.ReorderQuantity(item.StockQuantity, item.SafetyStock, item.OrderUnit),
		}
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

type autoCreateRequest struct {
	Requester string `json:"requester"`
}

func (c *OrderController) AutoCreateOrders(ctx *fiber.Ctx) error {
	var req autoCreateRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	created, err := c.Orders.AutoCreateOrders(req.Requester)
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("%d件の注文依頼を自動作成しました", created),
		"data": fiber.Map{
			"created_count": created,
		},
	})
}
