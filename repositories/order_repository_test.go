package repositories

import (
	"errors"
	"testing"

	"consumable-app/apperr"
	"consumable-app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderSnapshotsPrice(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)

	order, err := repo.CreateOrder(CreateOrderInput{
		Code:      item.Code,
		Quantity:  3,
		Requester: "佐藤",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(100), order.UnitPrice)
	assert.Equal(t, float64(300), order.TotalAmount)
	assert.Equal(t, models.OrderStatusRequested, order.Status)
	assert.Equal(t, "通常", order.Deadline)

	// Master price changes must not leak into the recorded request.
	require.NoError(t, db.Model(&models.Consumable{}).Where("id = ?", item.ID).Update("unit_price", 999).Error)
	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, float64(100), stored.UnitPrice)

	var updated models.Consumable
	require.NoError(t, db.First(&updated, item.ID).Error)
	assert.Equal(t, models.ConsumableRequested, updated.OrderStatus)
}

func TestCreateOrderValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	supplier := createSupplier(t, db, "山田商事")
	createConsumable(t, db, "C-001", 10, 5, &supplier.ID)
	createConsumable(t, db, "C-002", 10, 5, nil)

	_, err := repo.CreateOrder(CreateOrderInput{Code: "", Quantity: 1, Requester: "佐藤"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = repo.CreateOrder(CreateOrderInput{Code: "C-001", Quantity: 0, Requester: "佐藤"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = repo.CreateOrder(CreateOrderInput{Code: "NOPE", Quantity: 1, Requester: "佐藤"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	// No supplier on the item and none supplied.
	_, err = repo.CreateOrder(CreateOrderInput{Code: "C-002", Quantity: 1, Requester: "佐藤"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	// Explicit supplier override fills the gap.
	order, err := repo.CreateOrder(CreateOrderInput{Code: "C-002", Quantity: 1, Requester: "佐藤", SupplierID: &supplier.ID})
	require.NoError(t, err)
	assert.Equal(t, supplier.ID, *order.SupplierID)
}

func TestListOrdersSortFallback(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)

	for i := 0; i < 3; i++ {
		_, err := repo.CreateOrder(CreateOrderInput{Code: item.Code, Quantity: i + 1, Requester: "佐藤"})
		require.NoError(t, err)
	}

	// A hostile sort column is ignored, not interpolated.
	rows, err := repo.ListOrders(OrderFilter{SortBy: "requested_date; DROP TABLE orders"})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = repo.ListOrders(OrderFilter{SortBy: "total_amount", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Quantity)
	assert.Equal(t, 3, rows[2].Quantity)

	rows, err = repo.ListOrders(OrderFilter{Status: string(models.OrderStatusRequested)})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "山田商事", rows[0].SupplierName)
}

func TestUpdateStatusSideEffects(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)

	order, err := repo.CreateOrder(CreateOrderInput{Code: item.Code, Quantity: 2, Requester: "佐藤"})
	require.NoError(t, err)

	consumableStatus := func() models.ConsumableOrderStatus {
		var c models.Consumable
		require.NoError(t, db.First(&c, item.ID).Error)
		return c.OrderStatus
	}

	// 却下 leaves the consumable flag alone.
	require.NoError(t, repo.UpdateStatus(order.ID, models.OrderStatusRejected))
	assert.Equal(t, models.ConsumableRequested, consumableStatus())

	require.NoError(t, repo.UpdateStatus(order.ID, models.OrderStatusOrdered))
	assert.Equal(t, models.ConsumableOrdered, consumableStatus())

	require.NoError(t, repo.UpdateStatus(order.ID, models.OrderStatusDone))
	assert.Equal(t, models.ConsumableNotOrdered, consumableStatus())

	err = repo.UpdateStatus(order.ID, models.OrderStatus("怪しい状態"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	err = repo.UpdateStatus(99999, models.OrderStatusDone)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

// Deleting one request resets the consumable flag even when a sibling request
// for the same item is still open.
func TestDeleteOrderResetsFlagUnconditionally(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	supplier := createSupplier(t, db, "山田商事")
	item := createConsumable(t, db, "C-001", 10, 5, &supplier.ID)

	first, err := repo.CreateOrder(CreateOrderInput{Code: item.Code, Quantity: 1, Requester: "佐藤"})
	require.NoError(t, err)
	_, err = repo.CreateOrder(CreateOrderInput{Code: item.Code, Quantity: 2, Requester: "鈴木"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteOrder(first.ID))

	var c models.Consumable
	require.NoError(t, db.First(&c, item.ID).Error)
	assert.Equal(t, models.ConsumableNotOrdered, c.OrderStatus)

	var remaining int64
	db.Model(&models.Order{}).Count(&remaining)
	assert.Equal(t, int64(1), remaining)
}

func TestReorderQuantity(t *testing.T) {
	// stock 2, safety 10, unit 5: shortfall against 2x safety is 18,
	// rounded up to the next multiple above gives 25.
	assert.Equal(t, 25, ReorderQuantity(2, 10, 5))

	assert.Equal(t, 1, ReorderQuantity(100, 5, 1))
	assert.Equal(t, 5, ReorderQuantity(100, 5, 5))
	assert.Equal(t, 11, ReorderQuantity(0, 5, 1))
	assert.Equal(t, 10, ReorderQuantity(0, 4, 2))

	// Non-positive order units behave as 1.
	assert.Equal(t, 11, ReorderQuantity(0, 5, 0))
	assert.Equal(t, 11, ReorderQuantity(0, 5, -3))
}

func TestAutoCreateOrders(t *testing.T) {
	db := newTestDB(t)
	repo := NewOrderRepository(db)
	supplier := createSupplier(t, db, "山田商事")

	low := createConsumable(t, db, "C-LOW", 2, 10, &supplier.ID)
	require.NoError(t, db.Model(low).Updates(map[string]interface{}{"order_unit": 5}).Error)
	createConsumable(t, db, "C-OK", 50, 10, &supplier.ID)
	alreadyOrdered := createConsumable(t, db, "C-ORD", 1, 10, &supplier.ID)
	require.NoError(t, db.Model(alreadyOrdered).Update("order_status", models.ConsumableOrdered).Error)

	created, err := repo.AutoCreateOrders("")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var order models.Order
	require.NoError(t, db.Where("consumable_id = ?", low.ID).First(&order).Error)
	assert.Equal(t, 25, order.Quantity)
	assert.Equal(t, models.OrderTypeAuto, order.OrderType)
	assert.Equal(t, "システム自動", order.RequesterName)
	assert.Contains(t, order.Note, "自動発注依頼")

	// Only 発注済 stops the sweep; a 依頼中 item is picked up again.
	created, err = repo.AutoCreateOrders("")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	require.NoError(t, db.Model(low).Update("order_status", models.ConsumableOrdered).Error)
	created, err = repo.AutoCreateOrders("")
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}
