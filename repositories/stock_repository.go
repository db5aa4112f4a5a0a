package repositories

import (
	"errors"
	"fmt"
	"time"

	"consumable-app/apperr"
	"consumable-app/models"
	"consumable-app/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StockRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStockRepository(db *gorm.DB, logger *zap.Logger) *StockRepository {
	return &StockRepository{db: db, logger: logger}
}

type MovementInput struct {
	Code        string
	Quantity    int
	Person      string
	Department  string
	Note        string
	InboundType string
}

// RecordOutbound inserts an immutable outbound-history row and decrements the
// stock in one transaction. The decrement is a single guarded UPDATE so two
// concurrent outbounds cannot both pass the stock check.
func (r *StockRepository) RecordOutbound(in MovementInput) (int, error) {
	if in.Quantity <= 0 {
		return 0, apperr.Validationf("数量は1以上を入力してください")
	}

	var newStock int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var item models.Consumable
		if err := tx.Where("code = ?", in.Code).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("商品が見つかりません: %s", in.Code)
			}
			return err
		}

		res := tx.Model(&models.Consumable{}).
			Where("id = ? AND stock_quantity >= ?", item.ID, in.Quantity).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", in.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: 在庫が不足しています（在庫 %d, 出庫 %d）",
				apperr.ErrInsufficientStock, item.StockQuantity, in.Quantity)
		}

		history := models.OutboundHistory{
			ConsumableID:       item.ID,
			Code:               item.Code,
			Name:               item.Name,
			Quantity:           in.Quantity,
			EmployeeName:       in.Person,
			EmployeeDepartment: in.Department,
			UnitPrice:          item.UnitPrice,
			TotalAmount:        float64(in.Quantity) * item.UnitPrice,
			Note:               in.Note,
			OutboundDate:       time.Now(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		// Row stays locked until commit, so re-reading for the shortage
		// recompute is safe.
		if err := tx.First(&item, item.ID).Error; err != nil {
			return err
		}
		newStock = item.StockQuantity
		status := utils.CalculateShortageStatus(item.StockQuantity, item.SafetyStock)
		return tx.Model(&item).Update("shortage_status", status).Error
	})
	return newStock, err
}

// RecordInbound is the symmetric inbound operation. InboundType distinguishes
// manual receipts from dispatch-order receipts in the history.
func (r *StockRepository) RecordInbound(in MovementInput) (int, error) {
	if in.Quantity <= 0 {
		return 0, apperr.Validationf("数量は1以上を入力してください")
	}
	if in.InboundType == "" {
		in.InboundType = models.InboundTypeManual
	}

	var newStock int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var item models.Consumable
		if err := tx.Where("code = ?", in.Code).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("商品が見つかりません: %s", in.Code)
			}
			return err
		}
		stock, err := r.inboundTx(tx, &item, in, nil)
		if err != nil {
			return err
		}
		newStock = stock
		return nil
	})
	return newStock, err
}

// inboundTx applies one inbound movement inside an existing transaction.
// orderStatus, when non-nil, also advances the consumable's order flag.
func (r *StockRepository) inboundTx(tx *gorm.DB, item *models.Consumable, in MovementInput, orderStatus *models.ConsumableOrderStatus) (int, error) {
	history := models.InboundHistory{
		ConsumableID:       item.ID,
		Code:               item.Code,
		Name:               item.Name,
		Quantity:           in.Quantity,
		EmployeeName:       in.Person,
		EmployeeDepartment: in.Department,
		UnitPrice:          item.UnitPrice,
		TotalAmount:        float64(in.Quantity) * item.UnitPrice,
		Note:               in.Note,
		InboundType:        in.InboundType,
		InboundDate:        time.Now(),
	}
	if err := tx.Create(&history).Error; err != nil {
		return 0, err
	}

	res := tx.Model(&models.Consumable{}).
		Where("id = ?", item.ID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", in.Quantity))
	if res.Error != nil {
		return 0, res.Error
	}

	if err := tx.First(item, item.ID).Error; err != nil {
		return 0, err
	}
	updates := map[string]interface{}{
		"shortage_status": utils.CalculateShortageStatus(item.StockQuantity, item.SafetyStock),
	}
	if orderStatus != nil {
		updates["order_status"] = *orderStatus
	}
	if err := tx.Model(item).Updates(updates).Error; err != nil {
		return 0, err
	}
	return item.StockQuantity, nil
}

type DispatchInboundResult struct {
	InboundCount int      `json:"inbound_count"`
	Errors       []string `json:"errors,omitempty"`
}

// DispatchInbound receives every line item of a dispatch order back into
// stock. Items without a consumable reference are skipped silently; per-item
// failures are collected and do not abort the batch. Only when nothing at all
// could be received does the operation fail.
func (r *StockRepository) DispatchInbound(dispatchOrderID uint, person, department, note string) (*DispatchInboundResult, error) {
	var items []models.DispatchOrderItem
	if err := r.db.
		Where("dispatch_order_id = ? AND consumable_id IS NOT NULL", dispatchOrderID).
		Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.NotFoundf("注文書に商品が見つかりません")
	}

	if note == "" {
		note = fmt.Sprintf("注文書一括入庫（注文書ID: %d）", dispatchOrderID)
	}

	result := &DispatchInboundResult{}
	received := models.ConsumableReceived

	for _, it := range items {
		err := r.db.Transaction(func(tx *gorm.DB) error {
			var item models.Consumable
			if err := tx.First(&item, *it.ConsumableID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFoundf("商品が見つかりません")
				}
				return err
			}
			_, err := r.inboundTx(tx, &item, MovementInput{
				Code:        it.Code,
				Quantity:    it.Quantity,
				Person:      person,
				Department:  department,
				Note:        note,
				InboundType: models.InboundTypeDispatch,
			}, &received)
			return err
		})
		if err != nil {
			r.logger.Warn("dispatch inbound item failed",
				zap.Uint("dispatch_order_id", dispatchOrderID),
				zap.String("code", it.Code),
				zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("%s(%s): %s", it.Name, it.Code, err.Error()))
			continue
		}
		result.InboundCount++
	}

	if result.InboundCount == 0 {
		return result, fmt.Errorf("すべての商品の入庫に失敗しました")
	}

	if err := r.db.Model(&models.DispatchOrder{}).
		Where("id = ?", dispatchOrderID).
		Update("status", models.DispatchStatusReceived).Error; err != nil {
		return result, err
	}

	// Advance the source requests still sitting at 発注済 for the touched
	// consumables.
	err := r.db.Model(&models.Order{}).
		Where("status = ? AND consumable_id IN (?)",
			models.OrderStatusOrdered,
			r.db.Model(&models.DispatchOrderItem{}).
				Select("consumable_id").
				Where("dispatch_order_id = ? AND consumable_id IS NOT NULL", dispatchOrderID),
		).
		Update("status", models.OrderStatusReceived).Error
	return result, err
}
