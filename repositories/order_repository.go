package repositories

import (
	"errors"
	"fmt"
	"math"
	"time"

	"consumable-app/apperr"
	"consumable-app/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type CreateOrderInput struct {
	Code       string
	Quantity   int
	Requester  string
	Deadline   string
	Note       string
	SupplierID *uint
	OrderType  models.OrderType
}

// CreateOrder records a purchase request, snapshotting name, unit and unit
// price from the consumable at this instant. Prices are never re-derived.
func (r *OrderRepository) CreateOrder(in CreateOrderInput) (*models.Order, error) {
	if in.Code == "" || in.Requester == "" {
		return nil, apperr.Validationf("必須パラメータが不足しています")
	}
	if in.Quantity <= 0 {
		return nil, apperr.Validationf("数量は1以上を入力してください")
	}
	if in.Deadline == "" {
		in.Deadline = "通常"
	}
	if in.OrderType == "" {
		in.OrderType = models.OrderTypeManual
	}
	if !in.OrderType.Valid() {
		return nil, apperr.Validationf("無効な依頼種別です: %s", in.OrderType)
	}

	var item models.Consumable
	if err := r.db.Where("code = ?", in.Code).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("品目が見つかりません: %s", in.Code)
		}
		return nil, err
	}

	supplierID := in.SupplierID
	if supplierID == nil {
		supplierID = item.SupplierID
	}
	if supplierID == nil {
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
		RequesterName: in.Requester,
		SupplierID:    supplierID,
		Note:          in.Note,
		Status:        models.OrderStatusRequested,
		OrderType:     in.OrderType,
		RequestedDate: time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Model(&models.Consumable{}).
			Where("id = ?", item.ID).
			Update("order_status", models.ConsumableRequested).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type OrderFilter struct {
	OrderType  string
	Status     string
	SupplierID *uint
	Requester  string
	DateFrom   string
	DateTo     string
	SortBy     string
	SortOrder  string
}

type OrderRow struct {
	ID            uint       `json:"id"`
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Quantity      int        `json:"quantity"`
	Unit          string     `json:"unit"`
	UnitPrice     float64    `json:"unit_price"`
	TotalAmount   float64    `json:"total_amount"`
	Deadline      string     `json:"deadline"`
	RequesterName string     `json:"requester_name"`
	SupplierID    *uint      `json:"supplier_id"`
	SupplierName  string     `json:"supplier_name"`
	Status        string     `json:"status"`
	OrderType     string     `json:"order_type"`
	RequestedDate time.Time  `json:"requested_date"`
	OrderedDate   *time.Time `json:"ordered_date"`
	Note          string     `json:"note"`
}

// Columns a caller may sort by. Anything else silently falls back to
// requested_date DESC; identifiers are never interpolated from the request.
var allowedSortColumns = map[string]string{
	"requested_date": "orders.requested_date",
	"status":         "orders.status",
	"supplier_name":  "supplier_name",
	"requester_name": "orders.requester_name",
	"total_amount":   "orders.total_amount",
}

func (r *OrderRepository) ListOrders(f OrderFilter) ([]OrderRow, error) {
	query := r.db.Table("orders").
		Select("orders.id, orders.code, orders.name, orders.quantity, orders.unit, "+
			"orders.unit_price, orders.total_amount, orders.deadline, orders.requester_name, "+
			"orders.supplier_id, suppliers.name AS supplier_name, orders.status, "+
			"orders.order_type, orders.requested_date, orders.ordered_date, orders.note").
		Joins("LEFT JOIN suppliers ON suppliers.id = orders.supplier_id").
		Where("orders.deleted_at IS NULL")

	if f.OrderType != "" {
		query = query.Where("orders.order_type = ?", f.OrderType)
	}
	if f.Status != "" {
		query = query.Where("orders.status = ?", f.Status)
	}
	if f.SupplierID != nil {
		query = query.Where("orders.supplier_id = ?", *f.SupplierID)
	}
	if f.Requester != "" {
		query = query.Where("orders.requester_name LIKE ?", "%"+f.Requester+"%")
	}
	if from, err := time.ParseInLocation("2006-01-02", f.DateFrom, time.Local); err == nil {
		query = query.Where("orders.requested_date >= ?", from)
	}
	if to, err := time.ParseInLocation("2006-01-02", f.DateTo, time.Local); err == nil {
		query = query.Where("orders.requested_date < ?", to.AddDate(0, 0, 1))
	}

	column, ok := allowedSortColumns[f.SortBy]
	if ok {
		direction := "ASC"
		if f.SortOrder == "" || f.SortOrder == "desc" || f.SortOrder == "DESC" {
			direction = "DESC"
		}
		query = query.Order(column + " " + direction)
	} else {
		query = query.Order("orders.requested_date DESC")
	}

	var rows []OrderRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

type OrderDetail struct {
	OrderRow
	ConsumableID    uint   `json:"consumable_id"`
	SupplierContact string `json:"supplier_contact"`
	SupplierPhone   string `json:"supplier_phone"`
	SupplierEmail   string `json:"supplier_email"`
}

func (r *OrderRepository) GetOrder(id uint) (*OrderDetail, error) {
	var detail OrderDetail
	err := r.db.Table("orders").
		Select("orders.id, orders.consumable_id, orders.code, orders.name, orders.quantity, "+
			"orders.unit, orders.unit_price, orders.total_amount, orders.deadline, "+
			"orders.requester_name, orders.supplier_id, suppliers.name AS supplier_name, "+
			"suppliers.contact AS supplier_contact, suppliers.phone AS supplier_phone, "+
			"suppliers.email AS supplier_email, orders.status, orders.order_type, "+
			"orders.requested_date, orders.ordered_date, orders.note").
		Joins("LEFT JOIN suppliers ON suppliers.id = orders.supplier_id").
		Where("orders.id = ? AND orders.deleted_at IS NULL", id).
		Scan(&detail).Error
	if err != nil {
		return nil, err
	}
	if detail.ID == 0 {
		return nil, apperr.NotFoundf("注文依頼が見つかりません")
	}
	return &detail, nil
}

// UpdateStatus changes a request's status. Only two statuses touch the owning
// consumable: 発注済 marks it ordered, 完了 resets it to 未発注. The asymmetry
// mirrors the observed workflow.
func (r *OrderRepository) UpdateStatus(id uint, newStatus models.OrderStatus) error {
	if !newStatus.Valid() {
		return apperr.Validationf("無効なステータスです: %s", newStatus)
	}

	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("注文依頼が見つかりません")
		}
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Update("status", newStatus).Error; err != nil {
			return err
		}
		switch newStatus {
		case models.OrderStatusOrdered:
			return tx.Model(&models.Consumable{}).
				Where("id = ?", order.ConsumableID).
				Update("order_status", models.ConsumableOrdered).Error
		case models.OrderStatusDone:
			return tx.Model(&models.Consumable{}).
				Where("id = ?", order.ConsumableID).
				Update("order_status", models.ConsumableNotOrdered).Error
		}
		return nil
	})
}

// DeleteOrder removes a request and unconditionally resets the consumable's
// order flag, even when sibling requests remain for the same consumable.
func (r *OrderRepository) DeleteOrder(id uint) error {
	var order models.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("注文依頼が見つかりません")
		}
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&order).Error; err != nil {
			return err
		}
		return tx.Model(&models.Consumable{}).
			Where("id = ?", order.ConsumableID).
			Update("order_status", models.ConsumableNotOrdered).Error
	})
}

func (r *OrderRepository) LowStock() ([]models.Consumable, error) {
	var items []models.Consumable
	err := r.db.
		Where("stock_quantity <= safety_stock AND order_status != ?", models.ConsumableOrdered).
		Order("(stock_quantity - safety_stock) ASC").
		Find(&items).Error
	return items, err
}

// ReorderQuantity rounds the shortfall against twice the safety stock up to
// the next order-unit multiple, guaranteeing the result restocks to at least
// 2x safety stock and is never below one order unit.
func ReorderQuantity(stock, safetyStock, orderUnit int) int {
	if orderUnit <= 0 {
		orderUnit = 1
	}
	need := safetyStock*2 - stock
	qty := int(math.Ceil(float64(need)/float64(orderUnit)+1)) * orderUnit
	if qty < orderUnit {
		return orderUnit
	}
	return qty
}

// AutoCreateOrders sweeps every consumable at or below its safety stock that
// is not already ordered and raises one 自動 request per item.
func (r *OrderRepository) AutoCreateOrders(requester string) (int, error) {
	if requester == "" {
		requester = "システム自動"
	}

	var items []models.Consumable
	if err := r.db.
		Where("stock_quantity <= safety_stock AND order_status != ?", models.ConsumableOrdered).
		Find(&items).Error; err != nil {
		return 0, err
	}

	created := 0
	for _, item := range items {
		quantity := ReorderQuantity(item.StockQuantity, item.SafetyStock, item.OrderUnit)
		order := models.Order{
			ConsumableID:  item.ID,
			Code:          item.Code,
			OrderCode:     item.OrderCode,
			Name:          item.Name,
			Quantity:      quantity,
			Unit:          item.Unit,
			UnitPrice:     item.UnitPrice,
			TotalAmount:   float64(quantity) * item.UnitPrice,
			Deadline:      "通常",
			RequesterName: requester,
			SupplierID:    item.SupplierID,
			Note:          fmt.Sprintf("自動発注依頼（在庫: %d, 安全在庫: %d）", item.StockQuantity, item.SafetyStock),
			Status:        models.OrderStatusRequested,
			OrderType:     models.OrderTypeAuto,
			RequestedDate: time.Now(),
		}

		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			return tx.Model(&models.Consumable{}).
				Where("id = ?", item.ID).
				Update("order_status", models.ConsumableRequested).Error
		})
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
