package repositories

import (
	"errors"
	"testing"
	"time"

	"consumable-app/apperr"
	"consumable-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordOutbound(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db, zap.NewNop())
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)

	newStock, err := repo.RecordOutbound(MovementInput{
		Code:       item.Code,
		Quantity:   4,
		Person:     "佐藤",
		Department: "製造課",
	})
	require.NoError(t, err)
	assert.Equal(t, 6, newStock)

	var history models.OutboundHistory
	require.NoError(t, db.Where("consumable_id = ?", item.ID).First(&history).Error)
	assert.Equal(t, 4, history.Quantity)
	assert.Equal(t, float64(400), history.TotalAmount)
	assert.Equal(t, "佐藤", history.EmployeeName)

	var updated models.Consumable
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, models.ShortageOK, updated.ShortageStatus)
}

// Taking exactly the remaining stock succeeds and lands on 欠品; one more unit
// is refused without touching stock or history.
func TestRecordOutboundBoundary(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db, zap.NewNop())
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 5, 5, &supplier.ID)

	_, err := repo.RecordOutbound(MovementInput{Code: item.Code, Quantity: 6, Person: "佐藤"})
	assert.True(t, errors.Is(err, apperr.ErrInsufficientStock))

	var untouched models.Consumable
	require.NoError(t, db.First(&untouched, item.ID).Error)
	assert.Equal(t, 5, untouched.StockQuantity)
	var histories int64
	db.Model(&models.OutboundHistory{}).Count(&histories)
	assert.Equal(t, int64(0), histories)

	newStock, err := repo.RecordOutbound(MovementInput{Code: item.Code, Quantity: 5, Person: "佐藤"})
	require.NoError(t, err)
	assert.Equal(t, 0, newStock)

	var drained models.Consumable
	require.NoError(t, db.First(&drained, item.ID).Error)
	assert.Equal(t, models.ShortageOut, drained.ShortageStatus)
}

// A low-stock item drained to zero moves from 要注意 straight to 欠品.
func TestRecordOutboundDrainsLowStockItem(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db, zap.NewNop())
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 5, 10, &supplier.ID)
	require.NoError(t, db.Model(item).Update("shortage_status", models.ShortageLow).Error)

	newStock, err := repo.RecordOutbound(MovementInput{Code: item.Code, Quantity: 5, Person: "佐藤"})
	require.NoError(t, err)
	assert.Equal(t, 0, newStock)

	var updated models.Consumable
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, models.ShortageOut, updated.ShortageStatus)
}

func TestRecordOutboundValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db, zap.NewNop())

	_, err := repo.RecordOutbound(MovementInput{Code: "C-001", Quantity: 0, Person: "佐藤"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = repo.RecordOutbound(MovementInput{Code: "NOPE", Quantity: 1, Person: "佐藤"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRecordInbound(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db, zap.NewNop())
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 0, 5, &supplier.ID)

	newStock, err := repo.RecordInbound(MovementInput{
		Code:     item.Code,
		Quantity: 8,
		Person:   "鈴木",
	})
	require.NoError(t, err)
	assert.Equal(t, 8, newStock)

	var history models.InboundHistory
	require.NoError(t, db.Where("consumable_id = ?", item.ID).First(&history).Error)
	assert.Equal(t, models.InboundTypeManual, history.InboundType)

	var updated models.Consumable
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, models.ShortageOK, updated.ShortageStatus)
}

func TestDispatchInbound(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db, zap.NewNop())
	supplier := createSupplier(t, db, "山田商事")
	itemA := createConsumable(t, db, "C-A", 0, 5, &supplier.ID)
	itemB := createConsumable(t, db, "C-B", 3, 5, &supplier.ID)

	dispatch := models.DispatchOrder{
		OrderNumber:  "PO-20260101-001",
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Status:       models.DispatchStatusSent,
	}
	require.NoError(t, db.Create(&dispatch).Error)

	orderA := models.Order{ConsumableID: itemA.ID, Code: itemA.Code, Name: itemA.Name, Quantity: 10,
		Status: models.OrderStatusOrdered, RequestedDate: time.Now()}
	require.NoError(t, db.Create(&orderA).Error)

	items := []models.DispatchOrderItem{
		{DispatchOrderID: dispatch.ID, ConsumableID: &itemA.ID, Code: itemA.Code, Name: itemA.Name, Quantity: 10, UnitPrice: 100, OriginalOrderID: orderA.ID},
		{DispatchOrderID: dispatch.ID, ConsumableID: &itemB.ID, Code: itemB.Code, Name: itemB.Name, Quantity: 7, UnitPrice: 100},
		// Legacy row with no consumable reference: skipped without an error.
		{DispatchOrderID: dispatch.ID, ConsumableID: nil, Code: "C-GONE", Name: "廃番品", Quantity: 3},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}

	result, err := repo.DispatchInbound(dispatch.ID, "鈴木", "資材課", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.InboundCount)
	assert.Empty(t, result.Errors)

	var a, b models.Consumable
	require.NoError(t, db.First(&a, itemA.ID).Error)
	require.NoError(t, db.First(&b, itemB.ID).Error)
	assert.Equal(t, 10, a.StockQuantity)
	assert.Equal(t, 10, b.StockQuantity)
	assert.Equal(t, models.ConsumableReceived, a.OrderStatus)

	var refreshed models.DispatchOrder
	require.NoError(t, db.First(&refreshed, dispatch.ID).Error)
	assert.Equal(t, models.DispatchStatusReceived, refreshed.Status)

	var refreshedOrder models.Order
	require.NoError(t, db.First(&refreshedOrder, orderA.ID).Error)
	assert.Equal(t, models.OrderStatusReceived, refreshedOrder.Status)

	var inboundRows []models.InboundHistory
	require.NoError(t, db.Find(&inboundRows).Error)
	require.Len(t, inboundRows, 2)
	for _, row := range inboundRows {
		assert.Equal(t, models.InboundTypeDispatch, row.InboundType)
		assert.Contains(t, row.Note, "注文書一括入庫")
	}
}

func TestDispatchInboundEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db, zap.NewNop())

	_, err := repo.DispatchInbound(12345, "鈴木", "", "")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

// When a referenced consumable row has been hard-deleted the item is reported
// in errors but the rest of the batch still lands.
func TestDispatchInboundPartialFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewStockRepository(db, zap.NewNop())
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-A", 0, 5, &supplier.ID)

	dispatch := models.DispatchOrder{
		OrderNumber:  "PO-20260101-002",
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		Status:       models.DispatchStatusSent,
	}
	require.NoError(t, db.Create(&dispatch).Error)

	missingID := uint(99999)
	items := []models.DispatchOrderItem{
		{DispatchOrderID: dispatch.ID, ConsumableID: &item.ID, Code: item.Code, Name: item.Name, Quantity: 5},
		{DispatchOrderID: dispatch.ID, ConsumableID: &missingID, Code: "C-MISS", Name: "消えた品目", Quantity: 2},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}

	result, err := repo.DispatchInbound(dispatch.ID, "鈴木", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.InboundCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "C-MISS")
}
