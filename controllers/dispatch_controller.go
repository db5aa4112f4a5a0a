package controllers

import (
	"consumable-app/apperr"
	"consumable-app/mailer"
	"consumable-app/repositories"

	"github.com/gofiber/fiber/v2"
)

type DispatchController struct {
	Dispatch *repositories.DispatchRepository
	Mailer   *mailer.Mailer
}

func NewDispatchController(dispatch *repositories.DispatchRepository, m *mailer.Mailer) *DispatchController {
	return &DispatchController{Dispatch: dispatch, Mailer: m}
}

// GetPreparedItems shows the 発注準備 pool grouped by supplier.
func (c *DispatchController) GetPreparedItems(ctx *fiber.Ctx) error {
	groups, err := c.Dispatch.PreparedBySupplier()
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    groups,
	})
}

type addToDispatchRequest struct {
	OrderID uint `json:"order_id"`
}

func (c *DispatchController) AddToDispatch(ctx *fiber.Ctx) error {
	var req addToDispatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.OrderID == 0 {
		return apperr.Respond(ctx, apperr.Validationf("注文依頼IDは必須です"))
	}

	if err := c.Dispatch.AddOrderToDispatch(req.OrderID); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "発注準備に追加しました",
	})
}

type addDirectRequest struct {
	ConsumableID uint   `json:"consumable_id"`
	Quantity     int    `json:"quantity"`
	Deadline     string `json:"deadline"`
	Note         string `json:"note"`
}

func (c *DispatchController) AddDirect(ctx *fiber.Ctx) error {
	var req addDirectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	createdBy, _ := ctx.Locals("fullName").(string)
	order, err := c.Dispatch.AddDirect(repositories.AddDirectInput{
		ConsumableID: req.ConsumableID,
		Quantity:     req.Quantity,
		Deadline:     req.Deadline,
		Note:         req.Note,
		CreatedBy:    createdBy,
	})
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "発注準備に追加しました",
		"data":    order,
	})
}

type updateItemRequest struct {
	Quantity *int    `json:"quantity"`
	Deadline *string `json:"deadline"`
	Note     *string `json:"note"`
}

func (c *DispatchController) UpdatePreparedItem(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var req updateItemRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	order, err := c.Dispatch.UpdatePreparedItem(uint(id), repositories.UpdatePreparedInput{
		Quantity: req.Quantity,
		Deadline: req.Deadline,
		Note:     req.Note,
	})
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "アイテムを更新しました",
		"data":    order,
	})
}

type createDispatchRequest struct {
	SupplierID uint   `json:"supplier_id"`
	ItemIDs    []uint `json:"item_ids"`
	Note       string `json:"note"`
}

// CreateDispatchOrder consolidates the selected staged requests into a
// numbered purchase order.
func (c *DispatchController) CreateDispatchOrder(ctx *fiber.Ctx) error {
	var req createDispatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.SupplierID == 0 {
		return apperr.Respond(ctx, apperr.Validationf("購入先IDは必須です"))
	}

	createdBy, _ := ctx.Locals("fullName").(string)
	dispatch, err := c.Dispatch.CreateDispatchOrder(repositories.CreateDispatchInput{
		SupplierID: req.SupplierID,
		ItemIDs:    req.ItemIDs,
		Note:       req.Note,
		CreatedBy:  createdBy,
	})
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "注文書を作成しました: " + dispatch.OrderNumber,
		"data":    dispatch,
	})
}

func (c *DispatchController) GetDispatchOrders(ctx *fiber.Ctx) error {
	rows, err := c.Dispatch.ListDispatchOrders()
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    rows,
	})
}

func (c *DispatchController) GetDispatchOrderByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	detail, err := c.Dispatch.GetDispatchOrder(uint(id))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"data":    detail,
	})
}

// ViewPDF streams the purchase order PDF inline, rendering it first if needed.
func (c *DispatchController) ViewPDF(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	path, orderNumber, err := c.Dispatch.GetOrGeneratePDF(uint(id))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	ctx.Set("Content-Type", "application/pdf")
	ctx.Set("Content-Disposition", `inline; filename="`+orderNumber+`.pdf"`)
	return ctx.SendFile(path)
}

func (c *DispatchController) DownloadPDF(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	path, orderNumber, err := c.Dispatch.GetOrGeneratePDF(uint(id))
	if err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.Download(path, orderNumber+".pdf")
}

type sendRequest struct {
	Email string `json:"email"`
}

// SendDispatchOrder emails the PDF to the supplier and marks the order 送信済.
// An explicit email in the request overrides the supplier master address.
func (c *DispatchController) SendDispatchOrder(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid ID",
		})
	}

	var req sendRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	detail, err := c.Dispatch.GetDispatchOrder(uint(id))
	if err != nil {
		return apperr.Respond(ctx, err)
	}

	to := req.Email
	if to == "" {
		to = detail.SupplierEmail
	}
	if to == "" {
		return apperr.Respond(ctx, apperr.Validationf("送信先メールアドレスが設定されていません"))
	}

	path, _, err := c.Dispatch.GetOrGeneratePDF(uint(id))
	if err != nil {
		return apperr.Respond(ctx, err)
	}

	if err := c.Mailer.SendPurchaseOrder(mailer.PurchaseOrderMail{
		To:            to,
		OrderNumber:   detail.OrderNumber,
		SupplierName:  detail.SupplierName,
		ContactPerson: detail.SupplierContact,
		PDFPath:       path,
	}); err != nil {
		return apperr.Respond(ctx, err)
	}

	if err := c.Dispatch.MarkSent(uint(id), to); err != nil {
		return apperr.Respond(ctx, err)
	}
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": "注文書を送信しました: " + detail.OrderNumber,
	})
}
