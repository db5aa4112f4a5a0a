package repositories

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"consumable-app/apperr"
	"consumable-app/models"
	"consumable-app/pdfgen"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DispatchRepository struct {
	db        *gorm.DB
	logger    *zap.Logger
	pdf       *pdfgen.Generator
	pdfFolder string
}

func NewDispatchRepository(db *gorm.DB, logger *zap.Logger, pdf *pdfgen.Generator, pdfFolder string) *DispatchRepository {
	return &DispatchRepository{db: db, logger: logger, pdf: pdf, pdfFolder: pdfFolder}
}

// AddOrderToDispatch moves a 依頼中 request into the 発注準備 staging pool.
func (r *DispatchRepository) AddOrderToDispatch(orderID uint) error {
	var order models.Order
	if err := r.db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("注文依頼が見つかりません")
		}
		return err
	}
	if order.Status != models.OrderStatusRequested {
		return apperr.Validationf("依頼中の注文のみ発注準備に移動できます（現在: %s）", order.Status)
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", models.OrderStatusPrepared).Error; err != nil {
			return err
		}
		return tx.Model(&models.Consumable{}).
			Where("id = ?", order.ConsumableID).
			Update("order_status", models.ConsumablePrepared).Error
	})
}

type AddDirectInput struct {
	ConsumableID uint
	Quantity     int
	Deadline     string
	Note         string
	CreatedBy    string
}

// AddDirect stages a consumable straight into 発注準備 without an intermediate
// 依頼中 request.
func (r *DispatchRepository) AddDirect(in AddDirectInput) (*models.Order, error) {
	if in.Quantity <= 0 {
		return nil, apperr.Validationf("数量は1以上を入力してください")
	}
	if in.Deadline == "" {
		in.Deadline = "通常"
	}

	var item models.Consumable
	if err := r.db.First(&item, in.ConsumableID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("品目が見つかりません")
		}
		return nil, err
	}
	if item.SupplierID == nil {
		return nil, apperr.Validationf("購入先が設定されていません")
	}

	order := models.Order{
		ConsumableID:  item.ID,
		Code:          item.Code,
		OrderCode:     item.OrderCode,
		Name:          item.Name,
		Quantity:      in.Quantity,
		Unit:          item.Unit,
		UnitPrice:     item.UnitPrice,
		TotalAmount:   float64(in.Quantity) * item.UnitPrice,
		Deadline:      in.Deadline,
		RequesterName: in.CreatedBy,
		SupplierID:    item.SupplierID,
		Note:          in.Note,
		Status:        models.OrderStatusPrepared,
		OrderType:     models.OrderTypeDirect,
		RequestedDate: time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Model(&models.Consumable{}).
			Where("id = ?", item.ID).
			Update("order_status", models.ConsumablePrepared).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type PreparedItem struct {
	ID          uint    `json:"id"`
	Code        string  `json:"code"`
	OrderCode   string  `json:"order_code"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	TotalAmount float64 `json:"total_amount"`
	Deadline    string  `json:"deadline"`
	OrderType   string  `json:"order_type"`
	Note        string  `json:"note"`
}

type PreparedGroup struct {
	SupplierID    uint           `json:"supplier_id"`
	SupplierName  string         `json:"supplier_name"`
	SupplierEmail string         `json:"supplier_email"`
	Items         []PreparedItem `json:"items"`
}

// PreparedBySupplier returns the 発注準備 pool grouped per supplier, ready for
// review before consolidation.
func (r *DispatchRepository) PreparedBySupplier() ([]PreparedGroup, error) {
	type row struct {
		PreparedItem
		SupplierID    uint
		SupplierName  string
		SupplierEmail string
	}
	var rows []row
	err := r.db.Table("orders").
		Select("orders.id, orders.code, orders.order_code, orders.name, orders.quantity, "+
			"orders.unit, orders.unit_price, orders.total_amount, orders.deadline, "+
			"orders.order_type, orders.note, orders.supplier_id, "+
			"suppliers.name AS supplier_name, suppliers.email AS supplier_email").
		Joins("JOIN suppliers ON suppliers.id = orders.supplier_id").
		Where("orders.status = ? AND orders.deleted_at IS NULL", models.OrderStatusPrepared).
		Order("suppliers.name ASC, orders.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := []PreparedGroup{}
	for _, row := range rows {
		if len(groups) == 0 || groups[len(groups)-1].SupplierID != row.SupplierID {
			groups = append(groups, PreparedGroup{
				SupplierID:    row.SupplierID,
				SupplierName:  row.SupplierName,
				SupplierEmail: row.SupplierEmail,
			})
		}
		groups[len(groups)-1].Items = append(groups[len(groups)-1].Items, row.PreparedItem)
	}
	return groups, nil
}

type UpdatePreparedInput struct {
	Quantity *int
	Deadline *string
	Note     *string
}

// UpdatePreparedItem edits a staged request before consolidation. The total is
// recomputed from the stored snapshot price, never from the live consumable.
func (r *DispatchRepository) UpdatePreparedItem(id uint, in UpdatePreparedInput) (*models.Order, error) {
	if in.Quantity == nil && in.Deadline == nil && in.Note == nil {
		return nil, apperr.Validationf("更新する項目がありません")
	}
	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, apperr.Validationf("数量は1以上を入力してください")
	}

	var order models.Order
	if err := r.db.Where("id = ? AND status = ?", id, models.OrderStatusPrepared).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("発注準備中のアイテムが見つかりません")
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Quantity != nil {
		updates["quantity"] = *in.Quantity
		updates["total_amount"] = float64(*in.Quantity) * order.UnitPrice
	}
	if in.Deadline != nil {
		updates["deadline"] = *in.Deadline
	}
	if in.Note != nil {
		updates["note"] = *in.Note
	}
	if err := r.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type CreateDispatchInput struct {
	SupplierID uint
	ItemIDs    []uint
	Note       string
	CreatedBy  string
}

// nextOrderNumber bumps today's row in order_sequences inside the transaction
// and formats PO-YYYYMMDD-NNN. The upsert keeps concurrent consolidations from
// ever reading the same sequence value.
func nextOrderNumber(tx *gorm.DB, now time.Time) (string, error) {
	seqDate := now.Format("20060102")
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "seq_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_seq": gorm.Expr("last_seq + 1"),
		}),
	}).Create(&models.OrderSequence{SeqDate: seqDate, LastSeq: 1}).Error
	if err != nil {
		return "", err
	}

	var seq models.OrderSequence
	if err := tx.Where("seq_date = ?", seqDate).First(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%s-%03d", seqDate, seq.LastSeq), nil
}

// CreateDispatchOrder consolidates a supplier's staged requests into one
// numbered purchase order. Item IDs that are not 発注準備 or belong to another
// supplier are dropped without complaint; the order, its item snapshots, and
// the status flip of the source requests commit atomically. PDF rendering
// happens after commit and its failure never undoes the order.
func (r *DispatchRepository) CreateDispatchOrder(in CreateDispatchInput) (*models.DispatchOrder, error) {
	if len(in.ItemIDs) == 0 {
		return nil, apperr.Validationf("アイテムが選択されていません")
	}

	var dispatch models.DispatchOrder
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var supplier models.Supplier
		if err := tx.First(&supplier, in.SupplierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("購入先が見つかりません")
			}
			return err
		}

		now := time.Now()
		orderNumber, err := nextOrderNumber(tx, now)
		if err != nil {
			return err
		}

		var orders []models.Order
		if err := tx.
			Where("id IN ? AND status = ? AND supplier_id = ?",
				in.ItemIDs, models.OrderStatusPrepared, in.SupplierID).
			Find(&orders).Error; err != nil {
			return err
		}
		if len(orders) == 0 {
			return apperr.NotFoundf("有効なアイテムが見つかりません")
		}

		var totalAmount float64
		for _, o := range orders {
			totalAmount += o.TotalAmount
		}

		dispatch = models.DispatchOrder{
			OrderNumber:  orderNumber,
			SupplierID:   supplier.ID,
			SupplierName: supplier.Name,
			TotalItems:   len(orders),
			TotalAmount:  totalAmount,
			Status:       models.DispatchStatusUnsent,
			CreatedBy:    in.CreatedBy,
			Note:         in.Note,
		}
		if err := tx.Create(&dispatch).Error; err != nil {
			return err
		}

		orderIDs := make([]uint, 0, len(orders))
		for _, o := range orders {
			consumableID := o.ConsumableID
			item := models.DispatchOrderItem{
				DispatchOrderID: dispatch.ID,
				ConsumableID:    &consumableID,
				Code:            o.Code,
				OrderCode:       o.OrderCode,
				Name:            o.Name,
				Quantity:        o.Quantity,
				Unit:            o.Unit,
				UnitPrice:       o.UnitPrice,
				TotalAmount:     o.TotalAmount,
				Deadline:        o.Deadline,
				Note:            o.Note,
				OriginalOrderID: o.ID,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			orderIDs = append(orderIDs, o.ID)
		}

		return tx.Model(&models.Order{}).
			Where("id IN ?", orderIDs).
			Updates(map[string]interface{}{
				"status":       models.OrderStatusOrdered,
				"ordered_date": now,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	if _, err := r.generatePDF(&dispatch); err != nil {
		r.logger.Warn("purchase order pdf generation failed",
			zap.String("order_number", dispatch.OrderNumber),
			zap.Error(err))
	}
	return &dispatch, nil
}

// dailyCountAt returns the order's rank among the supplier's dispatch orders
// created the same calendar day, counting up to and including createdAt. The
// rank is stable, so regenerated PDFs show the same number.
func (r *DispatchRepository) dailyCountAt(supplierID uint, createdAt time.Time) (int, error) {
	dayStart := time.Date(createdAt.Year(), createdAt.Month(), createdAt.Day(), 0, 0, 0, 0, createdAt.Location())
	var count int64
	err := r.db.Model(&models.DispatchOrder{}).
		Where("supplier_id = ? AND created_at >= ? AND created_at <= ?", supplierID, dayStart, createdAt).
		Count(&count).Error
	return int(count), err
}

func (r *DispatchRepository) generatePDF(dispatch *models.DispatchOrder) (string, error) {
	var items []models.DispatchOrderItem
	if err := r.db.Where("dispatch_order_id = ?", dispatch.ID).Find(&items).Error; err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", apperr.NotFoundf("注文書に商品が見つかりません")
	}

	var supplier models.Supplier
	if err := r.db.First(&supplier, dispatch.SupplierID).Error; err != nil {
		return "", err
	}

	dailyCount, err := r.dailyCountAt(dispatch.SupplierID, dispatch.CreatedAt)
	if err != nil {
		return "", err
	}

	lines := make([]pdfgen.LineItem, len(items))
	for i, it := range items {
		lines[i] = pdfgen.LineItem{
			Code:        it.Code,
			OrderCode:   it.OrderCode,
			Name:        it.Name,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			UnitPrice:   it.UnitPrice,
			TotalAmount: it.TotalAmount,
			Deadline:    it.Deadline,
			Note:        it.Note,
		}
	}

	data, err := r.pdf.Render(pdfgen.PurchaseOrderData{
		OrderNumber:   dispatch.OrderNumber,
		SupplierName:  dispatch.SupplierName,
		ContactPerson: supplier.Contact,
		CreatedBy:     dispatch.CreatedBy,
		CreatedAt:     dispatch.CreatedAt,
		DailyCount:    dailyCount,
		Note:          dispatch.Note,
		Items:         lines,
	})
	if err != nil {
		return "", err
	}

	path := filepath.Join(r.pdfFolder, dispatch.OrderNumber+".pdf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	if err := r.db.Model(dispatch).Update("pdf_path", path).Error; err != nil {
		return "", err
	}
	dispatch.PDFPath = &path
	return path, nil
}

// GetOrGeneratePDF returns the order's PDF path, rendering it on demand when
// the stored path is missing or the file disappeared. Idempotent.
func (r *DispatchRepository) GetOrGeneratePDF(id uint) (string, string, error) {
	var dispatch models.DispatchOrder
	if err := r.db.First(&dispatch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", apperr.NotFoundf("注文書が見つかりません")
		}
		return "", "", err
	}

	if dispatch.PDFPath != nil && *dispatch.PDFPath != "" {
		if _, err := os.Stat(*dispatch.PDFPath); err == nil {
			return *dispatch.PDFPath, dispatch.OrderNumber, nil
		}
	}

	path, err := r.generatePDF(&dispatch)
	if err != nil {
		return "", "", err
	}
	return path, dispatch.OrderNumber, nil
}

type DispatchRow struct {
	ID           uint       `json:"id"`
	OrderNumber  string     `json:"order_number"`
	SupplierID   uint       `json:"supplier_id"`
	SupplierName string     `json:"supplier_name"`
	TotalItems   int        `json:"total_items"`
	TotalAmount  float64    `json:"total_amount"`
	Status       string     `json:"status"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	SentAt       *time.Time `json:"sent_at"`
	SentEmail    string     `json:"sent_email"`
	HasPDF       bool       `json:"has_pdf"`
}

func (r *DispatchRepository) ListDispatchOrders() ([]DispatchRow, error) {
	var orders []models.DispatchOrder
	if err := r.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	rows := make([]DispatchRow, len(orders))
	for i, o := range orders {
		rows[i] = DispatchRow{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			SupplierID:   o.SupplierID,
			SupplierName: o.SupplierName,
			TotalItems:   o.TotalItems,
			TotalAmount:  o.TotalAmount,
			Status:       string(o.Status),
			CreatedBy:    o.CreatedBy,
			CreatedAt:    o.CreatedAt,
			SentAt:       o.SentAt,
			SentEmail:    o.SentEmail,
			HasPDF:       o.PDFPath != nil && *o.PDFPath != "",
		}
	}
	return rows, nil
}

type DispatchDetail struct {
	models.DispatchOrder
	SupplierEmail   string                     `json:"supplier_email"`
	SupplierContact string                     `json:"supplier_contact"`
	Items           []models.DispatchOrderItem `json:"items"`
}

func (r *DispatchRepository) GetDispatchOrder(id uint) (*DispatchDetail, error) {
	var dispatch models.DispatchOrder
	if err := r.db.First(&dispatch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("注文書が見つかりません")
		}
		return nil, err
	}

	detail := &DispatchDetail{DispatchOrder: dispatch}
	if err := r.db.Where("dispatch_order_id = ?", id).Find(&detail.Items).Error; err != nil {
		return nil, err
	}

	var supplier models.Supplier
	if err := r.db.First(&supplier, dispatch.SupplierID).Error; err == nil {
		detail.SupplierEmail = supplier.Email
		detail.SupplierContact = supplier.Contact
	}
	return detail, nil
}

// MarkSent records a successful email delivery.
func (r *DispatchRepository) MarkSent(id uint, email string) error {
	now := time.Now()
	return r.db.Model(&models.DispatchOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.DispatchStatusSent,
			"sent_at":    now,
			"sent_email": email,
		}).Error
}
